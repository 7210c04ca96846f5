package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	UploadsDir  string

	ClaimGenerator string
	MaxBodyBytes   int64

	SigningPrivateKeyBase64  string
	SigningPrivateKeySeedHex string

	PolicyPath string

	RateLimitRequests      int
	RateLimitWindowSeconds int
	RateLimitMaxKeys       int
	RateLimitFailClosed    bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:                 addr,
		PostgresDSN:              os.Getenv("POSTGRES_DSN"),
		UploadsDir:               envDefault("UPLOADS_DIR", "uploads"),
		ClaimGenerator:           envDefault("CLAIM_GENERATOR", "provd"),
		MaxBodyBytes:             envInt64Default("MAX_BODY_BYTES", 10<<20),
		SigningPrivateKeyBase64:  os.Getenv("SIGNING_PRIVATE_KEY_BASE64"),
		SigningPrivateKeySeedHex: os.Getenv("SIGNING_PRIVATE_KEY_SEED_HEX"),
		PolicyPath:               os.Getenv("POLICY_PATH"),
		RateLimitRequests:        envIntDefault("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindowSeconds:   envIntDefault("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitMaxKeys:         envIntDefault("RATE_LIMIT_MAX_KEYS", 10000),
		RateLimitFailClosed:      envBoolDefault("RATE_LIMIT_FAIL_CLOSED", false),
		RedisAddr:                os.Getenv("REDIS_ADDR"),
		RedisPassword:            os.Getenv("REDIS_PASSWORD"),
		RedisDB:                  envIntDefault("REDIS_DB", 0),
	}
}

func (c Config) RateLimitWindow() time.Duration {
	if c.RateLimitWindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envInt64Default(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "No":
		return false
	default:
		return def
	}
}
