package db

import (
	"fmt"
	"log"

	"provd/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Store struct {
	DB *gorm.DB
}

// NewStore connects to postgres when a DSN is configured and migrates the
// record table. Without a DSN the store comes back with a nil DB and the
// server falls back to the in-memory table.
func NewStore(cfg config.Config) (*Store, error) {
	if cfg.PostgresDSN == "" {
		log.Printf("POSTGRES_DSN not set; using in-memory manifest store.")
		return &Store{DB: nil}, nil
	}

	gdb, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := gdb.AutoMigrate(&ManifestRecordModel{}); err != nil {
		return nil, fmt.Errorf("migrate manifest records: %w", err)
	}

	return &Store{DB: gdb}, nil
}
