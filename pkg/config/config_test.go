package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/resourcemap/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() error: %v", err)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
[layout]
aspect_ratio = 2.0
engine = "none"

[cache]
backend = "redis"
redis_addr = "localhost:6379"
ttl = "36h"

[server]
cors_origins = ["http://localhost:3000"]
`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Layout.AspectRatio != 2 {
		t.Errorf("AspectRatio = %v, want 2", cfg.Layout.AspectRatio)
	}
	if cfg.Layout.Engine != EngineNone {
		t.Errorf("Engine = %s, want none", cfg.Layout.Engine)
	}
	if cfg.Layout.OffsetMode != "two-level" {
		t.Errorf("OffsetMode = %s, default should survive", cfg.Layout.OffsetMode)
	}
	if cfg.Cache.TTL.Duration != 36*time.Hour {
		t.Errorf("TTL = %v, want 36h", cfg.Cache.TTL)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %s, default should survive", cfg.Server.Addr)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if opts := cfg.Cache.Options(); opts.Backend != "redis" || opts.RedisAddr != "localhost:6379" {
		t.Errorf("Options() = %+v", opts)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		text string
		code errors.Code
	}{
		{"syntax", `[layout`, errors.ErrCodeInvalidConfig},
		{"bad ttl", "[cache]\nttl = \"soon\"", errors.ErrCodeInvalidConfig},
		{"zero aspect", "[layout]\naspect_ratio = 0.0", errors.ErrCodeInvalidAspectRatio},
		{"engine", "[layout]\nengine = \"elk\"", errors.ErrCodeInvalidConfig},
		{"offset mode", "[layout]\noffset_mode = \"three\"", errors.ErrCodeInvalidConfig},
		{"backend", "[cache]\nbackend = \"s3\"", errors.ErrCodeInvalidConfig},
		{"redis without addr", "[cache]\nbackend = \"redis\"", errors.ErrCodeInvalidConfig},
		{"mongo without uri", "[cache]\nbackend = \"mongo\"", errors.ErrCodeInvalidConfig},
		{"sampling", "[telemetry]\nsampling_rate = 1.5", errors.ErrCodeInvalidConfig},
		{"endpoint scheme", "[telemetry]\nendpoint = \"collector:4318\"", errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			if !errors.Is(err, tt.code) {
				t.Errorf("Parse() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"RESOURCEMAP_ASPECT_RATIO":  "1.5",
		"RESOURCEMAP_CACHE_BACKEND": "memory",
		"RESOURCEMAP_CACHE_SIZE":    "64",
		"RESOURCEMAP_CACHE_TTL":     "1h",
		"RESOURCEMAP_CACHE_PREFIX":  "blue",
		"RESOURCEMAP_CORS_ORIGINS":  "https://a.example, https://b.example,",
		"RESOURCEMAP_OTEL_ENDPOINT": "http://collector:4318",
	}
	cfg := Default()
	err := cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if err != nil {
		t.Fatalf("applyEnv() error: %v", err)
	}
	if cfg.Layout.AspectRatio != 1.5 {
		t.Errorf("AspectRatio = %v, want 1.5", cfg.Layout.AspectRatio)
	}
	if cfg.Cache.Backend != CacheMemory || cfg.Cache.Size != 64 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Cache.TTL.Duration != time.Hour {
		t.Errorf("TTL = %v, want 1h", cfg.Cache.TTL)
	}
	if cfg.Cache.KeyPrefix != "blue" {
		t.Errorf("KeyPrefix = %q, want blue", cfg.Cache.KeyPrefix)
	}
	if len(cfg.Server.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v, want 2 entries", cfg.Server.CORSOrigins)
	}
	if cfg.Telemetry.Endpoint != "http://collector:4318" {
		t.Errorf("Endpoint = %s", cfg.Telemetry.Endpoint)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(func(k string) (string, bool) {
		if k == EnvPrefix+"CACHE_SIZE" {
			return "lots", true
		}
		return "", false
	})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("applyEnv() error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server]\naddr = \":9999\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RESOURCEMAP_ENGINE", "none")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Addr = %s, want :9999", cfg.Server.Addr)
	}
	if cfg.Layout.Engine != EngineNone {
		t.Errorf("Engine = %s, env should override", cfg.Layout.Engine)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	tests := []struct {
		name    string
		dotenv  string // empty means no .env file
		wantErr bool
	}{
		{"missing", "", false},
		{"valid", "RESOURCEMAP_TEST_DOTENV=1\n", false},
		{"malformed", "RESOURCEMAP-BROKEN=1\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.dotenv != "" {
				if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(tt.dotenv), 0644); err != nil {
					t.Fatal(err)
				}
			}
			t.Chdir(dir)
			t.Setenv("XDG_CONFIG_HOME", dir)

			_, err := Load("")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}
