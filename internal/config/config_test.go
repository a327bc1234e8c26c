package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Port != 5000 {
		t.Errorf("api port = %d", cfg.API.Port)
	}
	if cfg.API.MaxBodyBytes != 5<<20 {
		t.Errorf("max body bytes = %d", cfg.API.MaxBodyBytes)
	}
	if cfg.Redis.Addr() != "localhost:6379" {
		t.Errorf("redis addr = %q", cfg.Redis.Addr())
	}
	if cfg.MinIO.Bucket != "reports" {
		t.Errorf("bucket = %q", cfg.MinIO.Bucket)
	}
	if cfg.Extract.Model != "gemini-2.5-flash" {
		t.Errorf("model = %q", cfg.Extract.Model)
	}
	if cfg.Clamd.Addr != "" {
		t.Errorf("clamd should default to disabled, got %q", cfg.Clamd.Addr)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "8080")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("ASSETS_FETCH_TIMEOUT_SECS", "3")
	t.Setenv("MINIO_BUCKET", "artifacts")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("api port = %d", cfg.API.Port)
	}
	if cfg.Redis.Addr() != "redis.internal:6379" {
		t.Errorf("redis addr = %q", cfg.Redis.Addr())
	}
	if cfg.Assets.FetchTimeout().Seconds() != 3 {
		t.Errorf("fetch timeout = %v", cfg.Assets.FetchTimeout())
	}
	if cfg.MinIO.Bucket != "artifacts" {
		t.Errorf("bucket = %q", cfg.MinIO.Bucket)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("API_PORT", "-1")
	if _, err := Load(); err == nil {
		t.Fatal("negative port should fail validation")
	}
}
