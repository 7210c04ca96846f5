package http

import (
	"context"
	"net/http"
	"time"

	"provd/internal/config"
	"provd/internal/domain"
	"provd/internal/infra/blobfs"
	"provd/internal/infra/db"
	"provd/internal/infra/policyopa"
	"provd/internal/infra/ratelimit"
	"provd/internal/infra/signer"
	"provd/internal/infra/store"
	"provd/internal/usecase"

	"github.com/gin-gonic/gin"
)

type Server struct {
	cfg config.Config
	r   *gin.Engine
	svc *usecase.ManifestService

	storeMode string

	rateLimiter         domain.RateLimiter
	rateLimitRequests   int
	rateLimitWindow     time.Duration
	rateLimitFailClosed bool
}

// NewServer wires the full dependency graph from config: the signing
// service, the record store (postgres when the db store carries a
// connection, in-memory otherwise), the uploads blob store, the optional
// policy gate, and the rate limiter.
func NewServer(cfg config.Config, dbStore *db.Store) (*Server, error) {
	signingSvc, err := signer.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	var records usecase.RecordStore
	storeMode := "memory"
	if dbStore != nil && dbStore.DB != nil {
		records = db.NewRecordRepository(dbStore.DB)
		storeMode = "db"
	} else {
		records = store.NewMemory()
	}

	blobs, err := blobfs.New(cfg.UploadsDir)
	if err != nil {
		return nil, err
	}

	var policy usecase.PolicyEngine
	if cfg.PolicyPath != "" {
		engine, err := policyopa.NewEngineFromPath(context.Background(), cfg.PolicyPath)
		if err != nil {
			return nil, err
		}
		policy = engine
	}

	svc := &usecase.ManifestService{
		Builder: usecase.NewManifestBuilder(cfg.ClaimGenerator, nil),
		Signer:  signingSvc,
		Records: records,
		Blobs:   blobs,
		Policy:  policy,
	}

	var limiter domain.RateLimiter
	if cfg.RateLimitRequests > 0 {
		if cfg.RedisAddr != "" {
			limiter, err = ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, nil)
			if err != nil {
				return nil, err
			}
		} else {
			limiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{MaxKeys: cfg.RateLimitMaxKeys})
		}
	}

	return NewServerWithDeps(cfg, ServerDeps{
		Service:     svc,
		RateLimiter: limiter,
		StoreMode:   storeMode,
	}), nil
}

type ServerDeps struct {
	Service     *usecase.ManifestService
	RateLimiter domain.RateLimiter
	StoreMode   string
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:                 cfg,
		r:                   r,
		svc:                 deps.Service,
		storeMode:           deps.StoreMode,
		rateLimiter:         deps.RateLimiter,
		rateLimitRequests:   cfg.RateLimitRequests,
		rateLimitWindow:     cfg.RateLimitWindow(),
		rateLimitFailClosed: cfg.RateLimitFailClosed,
	}
	if s.storeMode == "" {
		s.storeMode = "memory"
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": s.storeMode})
	})

	manifests := s.r.Group("/manifests")
	manifests.Use(maxBodyBytes(s.cfg.MaxBodyBytes), s.rateLimitMiddleware())
	{
		manifests.POST("", s.handleCreate)
		manifests.POST("/update", s.handleUpdate)
		manifests.GET("/:id/validate", s.handleValidateByID)
		manifests.POST("/validate", s.handleValidateByFile)
	}

	s.r.NoRoute(func(c *gin.Context) {
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
}

func (s *Server) Run() error {
	return s.r.Run(s.cfg.HTTPAddr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.r
}

func maxBodyBytes(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
