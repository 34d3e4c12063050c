// Package config loads runtime configuration from environment variables and
// an optional YAML config file.
//
// Configuration hierarchy (highest to lowest priority):
//  1. CLI flags
//  2. Environment variables (NEXUS_*)
//  3. Config file
//  4. Defaults
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration shared by all components.
type Config struct {
	Bucket        string `mapstructure:"bucket" yaml:"bucket"`
	MetadataTable string `mapstructure:"metadata_table" yaml:"metadata_table"`
	Environment   string `mapstructure:"environment" yaml:"environment"`

	SFTP     SFTPConfig     `mapstructure:"sftp" yaml:"sftp"`
	Insight  InsightConfig  `mapstructure:"insight" yaml:"insight"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Analyzer AnalyzerConfig `mapstructure:"analyzer" yaml:"analyzer"`
}

// SFTPConfig describes the vendor SFTP endpoint.
type SFTPConfig struct {
	Host         string `mapstructure:"host" yaml:"host"`
	Port         int    `mapstructure:"port" yaml:"port"`
	Username     string `mapstructure:"username" yaml:"username"`
	RemotePath   string `mapstructure:"remote_path" yaml:"remote_path"`
	KeyParameter string `mapstructure:"key_parameter" yaml:"key_parameter"`
}

// InsightConfig configures the LLM insight provider.
type InsightConfig struct {
	Provider        string `mapstructure:"provider" yaml:"provider"`
	Model           string `mapstructure:"model" yaml:"model"`
	APIKeyParameter string `mapstructure:"api_key_parameter" yaml:"api_key_parameter"`
	MaxTokens       int    `mapstructure:"max_tokens" yaml:"max_tokens"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// AnalyzerConfig configures the weekly analysis job.
type AnalyzerConfig struct {
	WindowDays      int `mapstructure:"window_days" yaml:"window_days"`
	DownloadWorkers int `mapstructure:"download_workers" yaml:"download_workers"`
}

// Default returns the baseline configuration before viper overlays.
func Default() *Config {
	return &Config{
		Environment: "prod",
		SFTP: SFTPConfig{
			Port:         22,
			RemotePath:   "/data",
			KeyParameter: "/nexus-ena/sftp-private-key",
		},
		Insight: InsightConfig{
			Provider:        "anthropic",
			Model:           "claude-3-sonnet-20240229",
			APIKeyParameter: "/nexus-ena/claude-api-key",
			MaxTokens:       4000,
			TimeoutSeconds:  120,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Analyzer: AnalyzerConfig{
			WindowDays:      7,
			DownloadWorkers: 4,
		},
	}
}

// Load builds the effective configuration from defaults, the viper-managed
// config file, and NEXUS_* environment variables.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()

	v.SetEnvPrefix("NEXUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind the keys we read so AutomaticEnv sees them without a config file.
	for _, key := range []string{
		"bucket", "metadata_table", "environment",
		"sftp.host", "sftp.port", "sftp.username", "sftp.remote_path", "sftp.key_parameter",
		"insight.provider", "insight.model", "insight.api_key_parameter",
		"insight.max_tokens", "insight.timeout_seconds",
		"server.addr",
		"analyzer.window_days", "analyzer.download_workers",
	} {
		_ = v.BindEnv(key)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate checks the values every component requires. Missing required
// configuration aborts startup immediately.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("bucket is required (NEXUS_BUCKET)")
	}
	if c.MetadataTable == "" {
		return fmt.Errorf("metadata_table is required (NEXUS_METADATA_TABLE)")
	}
	return nil
}

// ValidateSFTP checks the additional values the SFTP collector requires.
func (c *Config) ValidateSFTP() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.SFTP.Host == "" {
		return fmt.Errorf("sftp.host is required (NEXUS_SFTP_HOST)")
	}
	if c.SFTP.Username == "" {
		return fmt.Errorf("sftp.username is required (NEXUS_SFTP_USERNAME)")
	}
	return nil
}
