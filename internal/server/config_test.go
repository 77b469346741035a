package server

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/msme-risk/pkg/constants"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != constants.DefaultServerAddress {
		t.Fatalf("expected default address, got %q", cfg.Address)
	}
	if cfg.Data.Path != constants.DefaultDataFile {
		t.Fatalf("expected default data path, got %q", cfg.Data.Path)
	}
	if cfg.Cache.Policy != constants.CachePolicyNever {
		t.Fatalf("expected default cache policy, got %q", cfg.Cache.Policy)
	}
	if cfg.PortfolioSizeBytes() != 0 {
		t.Fatalf("expected unlimited portfolio size, got %d", cfg.PortfolioSizeBytes())
	}
	if cfg.Logging.Level != "" || cfg.Logging.Format != "" || cfg.Logging.OutputFile != "" {
		t.Fatalf("expected empty logging defaults, got %+v", cfg.Logging)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server-config.yaml")

	contents := []byte(`address: 127.0.0.1:9000
data:
  path: /srv/loans.csv
maxPortfolioSize: 2M
cache:
  policy: ttl
  ttl: 10m
logging:
  level: debug
  format: console
  outputFile: /tmp/server.log
cors:
  allowedOrigins: ["https://dashboard.example"]
rateLimit:
  requestsPerSecond: 5
`)
	if err := os.WriteFile(path, contents, 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != "127.0.0.1:9000" {
		t.Fatalf("expected address override, got %s", cfg.Address)
	}
	if cfg.Data.Path != "/srv/loans.csv" {
		t.Fatalf("expected data path override, got %s", cfg.Data.Path)
	}
	if cfg.PortfolioSizeBytes() != 2*1024*1024 {
		t.Fatalf("expected portfolio size override, got %d", cfg.PortfolioSizeBytes())
	}
	if cfg.Cache.Policy != constants.CachePolicyTTL || cfg.Cache.TTL != 10*time.Minute {
		t.Fatalf("expected ttl cache of 10m, got %+v", cfg.Cache)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("expected logging format console, got %s", cfg.Logging.Format)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "https://dashboard.example" {
		t.Fatalf("unexpected CORS origins %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.RateLimit.RequestsPerSecond != 5 || cfg.RateLimit.Burst != constants.DefaultRateLimitBurst {
		t.Fatalf("expected rate limit 5/s with default burst, got %+v", cfg.RateLimit)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name        string
		contents    string
		errContains string
	}{
		{"Invalid YAML", "address: [unterminated", "failed to parse server config"},
		{"Invalid size", "maxPortfolioSize: invalid", "invalid size"},
		{"Unknown cache policy", "cache:\n  policy: hourly\n", "cache.policy must be one of"},
		{"TTL without duration", "cache:\n  policy: ttl\n", "cache.ttl is required"},
		{"Negative rate", "rateLimit:\n  requestsPerSecond: -1\n", "rateLimit.requestsPerSecond must be at least 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.contents), 0600); err != nil {
				t.Fatalf("failed to write temp config: %v", err)
			}

			_, err := LoadConfig(path)
			if err == nil {
				t.Fatal("expected error but got nil")
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Fatalf("error %q does not contain %q", err.Error(), tt.errContains)
			}
		})
	}
}

func TestSetDataPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetDataPath("  ")
	if cfg.Data.Path != constants.DefaultDataFile {
		t.Fatalf("expected blank override to be ignored, got %s", cfg.Data.Path)
	}
	cfg.SetDataPath("other.csv")
	if cfg.Data.Path != "other.csv" {
		t.Fatalf("expected data path override, got %s", cfg.Data.Path)
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"":          0,
		"1024":      1024,
		"512b":      512,
		"256K":      256 * 1024,
		"1m":        1024 * 1024,
		"3MB":       3 * 1024 * 1024,
		"2G":        2 * 1024 * 1024 * 1024,
		"  4096   ": 4096,
	}

	for input, expected := range tests {
		got, err := ParseSize(input)
		if err != nil {
			t.Fatalf("ParseSize(%q) returned error: %v", input, err)
		}
		if got != expected {
			t.Fatalf("ParseSize(%q) = %d, expected %d", input, got, expected)
		}
	}

	if _, err := ParseSize("1TB"); err == nil {
		t.Fatal("expected error for unsupported unit")
	}
	if _, err := ParseSize("abc"); err == nil {
		t.Fatal("expected error for invalid number")
	}
}
