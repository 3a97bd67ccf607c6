package redis

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestConfig_Addr(t *testing.T) {
	cfg := &Config{Host: "cache.internal", Port: 6380}
	if got := cfg.Addr(); got != "cache.internal:6380" {
		t.Errorf("Addr() = %q, want %q", got, "cache.internal:6380")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Addr() != "localhost:6379" {
		t.Errorf("default addr = %q, want localhost:6379", cfg.Addr())
	}
	if cfg.PoolSize <= 0 {
		t.Error("default pool size must be positive")
	}
	if cfg.MaxRetries < 0 {
		t.Error("default max retries must not be negative")
	}
}

func TestNewClient_Unreachable(t *testing.T) {
	cfg := &Config{
		Host:          "localhost",
		Port:          1, // nothing listens here
		DialTimeout:   100 * time.Millisecond,
		MaxRetries:    1,
		RetryInterval: 10 * time.Millisecond,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := NewClient(ctx, cfg)
	if err == nil {
		client.Close()
		t.Fatal("expected connection error, got nil")
	}
}

// liveClient connects to a local Redis when REDIS_TEST is set,
// skipping the test otherwise.
func liveClient(t *testing.T) *Client {
	t.Helper()
	if os.Getenv("REDIS_TEST") == "" {
		t.Skip("REDIS_TEST not set")
	}

	cfg := DefaultConfig()
	cfg.MaxRetries = 0
	client, err := NewClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestClient_GetSetRoundTrip(t *testing.T) {
	client := liveClient(t)
	ctx := context.Background()

	key := "test:roundtrip:" + time.Now().Format("150405.000")
	if err := client.SetString(ctx, key, "payload", time.Minute); err != nil {
		t.Fatalf("SetString: %v", err)
	}

	val, err := client.GetString(ctx, key)
	if err != nil {
		t.Fatalf("GetString: %v", err)
	}
	if val != "payload" {
		t.Errorf("GetString = %q, want %q", val, "payload")
	}
}

func TestClient_GetString_MissingKey(t *testing.T) {
	client := liveClient(t)

	val, err := client.GetString(context.Background(), "test:never:written")
	if err != nil {
		t.Fatalf("GetString on missing key: %v", err)
	}
	if val != "" {
		t.Errorf("missing key must read as empty, got %q", val)
	}
}

func TestClient_HealthCheck(t *testing.T) {
	client := liveClient(t)

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}
}
