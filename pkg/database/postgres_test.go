package database

import (
	"context"
	"strings"
	"testing"
)

func TestPostgresConfig_DSN(t *testing.T) {
	cfg := &PostgresConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "app",
		Password: "secret",
		Database: "events",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	for _, part := range []string{"host=db.internal", "port=5433", "user=app", "dbname=events", "sslmode=require"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("DSN missing %q: %s", part, dsn)
		}
	}
}

func TestNewPostgres_NilConfig(t *testing.T) {
	if _, err := NewPostgres(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}
