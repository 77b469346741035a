package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/iwvelando/msme-risk/internal/config"
	"github.com/iwvelando/msme-risk/pkg/constants"
	"github.com/iwvelando/msme-risk/pkg/validation"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address          string               `yaml:"address"`
	Data             config.DataConfig    `yaml:"data"`
	MaxPortfolioSize string               `yaml:"maxPortfolioSize"`
	Cache            config.CacheConfig   `yaml:"cache"`
	Logging          config.LoggingConfig `yaml:"logging"`
	CORS             CORSConfig           `yaml:"cors"`
	RateLimit        RateLimitConfig      `yaml:"rateLimit"`
	portfolioBytes   int64
}

// CORSConfig enables cross-origin requests from the listed origins.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// RateLimitConfig caps API requests per second across all clients.
// A zero rate disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond" validate:"gte=0"`
	Burst             int     `yaml:"burst" validate:"gte=0"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Address: constants.DefaultServerAddress,
		Data:    config.DataConfig{Path: constants.DefaultDataFile},
		Cache:   config.CacheConfig{Policy: constants.CachePolicyNever},
	}
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read server config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse server config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PortfolioSizeBytes returns the maximum portfolio file size in bytes;
// zero means unlimited.
func (c *Config) PortfolioSizeBytes() int64 {
	return c.portfolioBytes
}

// SetDataPath overrides the configured portfolio path.
func (c *Config) SetDataPath(path string) {
	if strings.TrimSpace(path) != "" {
		c.Data.Path = path
	}
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	if c.Data.Path == "" {
		c.Data.Path = constants.DefaultDataFile
	}
	if c.Cache.Policy == "" {
		c.Cache.Policy = constants.CachePolicyNever
	}
	if c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = constants.DefaultRateLimitBurst
	}

	if err := validation.Struct(c); err != nil {
		return err
	}

	sizeStr := strings.TrimSpace(c.MaxPortfolioSize)
	if sizeStr == "" {
		c.portfolioBytes = 0
		return nil
	}
	bytes, err := ParseSize(sizeStr)
	if err != nil {
		return err
	}
	c.portfolioBytes = bytes
	return nil
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	case "G", "GB":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
