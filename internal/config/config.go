// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/iwvelando/msme-risk/internal/portfolio"
	"github.com/iwvelando/msme-risk/pkg/constants"
	"github.com/iwvelando/msme-risk/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for the msme-risk CLI. The CLI
// loads the portfolio once per run, so it has no cache section.
type Configuration struct {
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Filters FilterConfig  `yaml:"filters" mapstructure:"filters"`
	Logging LoggingConfig `yaml:"logging,omitempty" mapstructure:"logging"`
	Output  OutputConfig  `yaml:"output,omitempty" mapstructure:"output"`
}

// DataConfig locates the portfolio file.
type DataConfig struct {
	Path string `yaml:"path" mapstructure:"path" validate:"required"`
}

// CacheConfig selects the server's portfolio cache invalidation policy.
type CacheConfig struct {
	Policy string        `yaml:"policy" mapstructure:"policy" validate:"omitempty,oneof=never ttl mtime"`
	TTL    time.Duration `yaml:"ttl" mapstructure:"ttl" validate:"required_if=Policy ttl"`
}

// FilterConfig holds the default selection. An empty list selects every value.
type FilterConfig struct {
	Regions []string `yaml:"regions" mapstructure:"regions"`
	Sectors []string `yaml:"sectors" mapstructure:"sectors"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error"` // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format" validate:"omitempty,oneof=json console"`              // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"`                                                // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format" validate:"omitempty,oneof=pretty csv json xlsx"` // pretty, csv, json, xlsx
	File   string `yaml:"file,omitempty" mapstructure:"file"`                                                      // optional, stdout when empty
}

// Default returns the configuration used when no file is present.
func Default() *Configuration {
	return &Configuration{
		Data: DataConfig{Path: constants.DefaultDataFile},
		Output: OutputConfig{
			Format: constants.OutputFormatPretty,
		},
	}
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. A missing file yields the defaults. Environment
// variables prefixed with MSME_ (e.g. MSME_DATA_PATH) override file values.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file, %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file, %w", err)
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

func setDefaults(v *viper.Viper) {
	defaults := Default()
	v.SetDefault("data.path", defaults.Data.Path)
	v.SetDefault("filters.regions", []string{})
	v.SetDefault("filters.sectors", []string{})
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("output.file", "")
}

// Validate checks field values against their allowed ranges.
func (c *Configuration) Validate() error {
	return validation.Struct(c)
}

// CachePolicy converts a cache section into a portfolio cache policy.
func CachePolicy(c CacheConfig) portfolio.Policy {
	return portfolio.Policy{Mode: c.Policy, TTL: c.TTL}
}

// Selection converts the default filters into a portfolio selection.
func (c *Configuration) Selection() portfolio.Selection {
	var sel portfolio.Selection
	if len(c.Filters.Regions) > 0 {
		sel.Regions = portfolio.NewSet(c.Filters.Regions...)
	}
	if len(c.Filters.Sectors) > 0 {
		sel.Sectors = portfolio.NewSet(c.Filters.Sectors...)
	}
	return sel
}
