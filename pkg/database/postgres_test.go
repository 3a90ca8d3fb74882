package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/wonny/tokenscout/pkg/config"
)

func TestNewDisabled(t *testing.T) {
	_, err := New(&config.Config{})
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("Expected ErrDisabled, got %v", err)
	}
}

func TestNewInvalidURL(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{URL: "://not a url"}}

	if _, err := New(cfg); err == nil {
		t.Fatal("Expected parse error for invalid URL")
	}
}

func TestEnsureSchemaAndHealth(t *testing.T) {
	// Skip if DATABASE_URL is not set
	if testing.Short() || os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	status, err := db.HealthCheck(ctx)
	if err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}

	if !status.Healthy {
		t.Error("Expected healthy status")
	}

	if status.Stats.MaxConns != int32(cfg.Database.MaxConns) {
		t.Errorf("Expected MaxConns %d, got %d", cfg.Database.MaxConns, status.Stats.MaxConns)
	}
}
