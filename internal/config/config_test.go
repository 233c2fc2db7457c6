package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
redis:
  addr: localhost:6379
  ttl: 2m
exam:
  ttl: 30s
submission:
  requirePublished: true
recalculation:
  concurrency: 4
  batchSize: 50
cors:
  allowedOrigins: ["http://localhost:3000"]
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected server/redis config %+v", cfg)
	}
	if !cfg.Submission.RequirePublished || cfg.Recalculation.Concurrency != 4 || cfg.Recalculation.BatchSize != 50 {
		t.Fatalf("unexpected scoring config %+v", cfg)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 {
		t.Fatalf("expected one allowed origin, got %v", cfg.CORS.AllowedOrigins)
	}
	if d := TTLDuration(cfg.Exam.TTL, time.Minute); d != 30*time.Second {
		t.Fatalf("expected 30s exam ttl, got %v", d)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if d := TTLDuration("", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback for empty, got %v", d)
	}
	if d := TTLDuration("soon", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback for invalid, got %v", d)
	}
}
