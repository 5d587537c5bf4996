package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration. Values come from an
// optional YAML file overridden by MFS_-prefixed environment variables.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Sources  SourcesConfig  `yaml:"sources" envconfig:"SOURCES"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// SourcesConfig describes the upstream publications the adapter chain reads.
type SourcesConfig struct {
	// PortalURL is the statistics landing page carrying the HTML table.
	PortalURL string `yaml:"portal_url" envconfig:"PORTAL_URL" validate:"url"`
	// WorkbookURL is the monthly XLSX bulletin republishing the same table.
	WorkbookURL string `yaml:"workbook_url" envconfig:"WORKBOOK_URL" validate:"url"`
	// FetchTimeout bounds each adapter's fetch; exceeding it is treated as
	// source-unavailable, never as a hang.
	FetchTimeout time.Duration `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT" validate:"gt=0"`
	// RequestsPerSecond throttles outbound fetches against the portal.
	RequestsPerSecond float64 `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND" validate:"gt=0"`
	// RenderWithBrowser switches the portal fetch to a headless browser for
	// pages assembled client-side.
	RenderWithBrowser bool `yaml:"render_with_browser" envconfig:"RENDER_WITH_BROWSER"`
}

// PipelineConfig controls normalization and fallback behavior.
type PipelineConfig struct {
	// AllowFallback permits the embedded static dataset when every live
	// source fails. Disabled, chain exhaustion is a terminal failure.
	AllowFallback bool `yaml:"allow_fallback" envconfig:"ALLOW_FALLBACK"`
	// DropRateThreshold is the fraction of undated/unreadable rows above
	// which normalization escalates to a schema error.
	DropRateThreshold float64 `yaml:"drop_rate_threshold" envconfig:"DROP_RATE_THRESHOLD" validate:"gte=0,lte=1"`
	// ManualHistoryFile optionally points at a long-format CSV whose rows
	// override normalized values per (period, category). Empty disables the
	// overlay.
	ManualHistoryFile string `yaml:"manual_history_file" envconfig:"MANUAL_HISTORY_FILE"`
}

// PathsConfig contains filesystem locations for produced artifacts.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// Load reads configuration, layered lowest to highest precedence: built-in
// defaults, the optional YAML file, then MFS_-prefixed environment
// variables. The merged result is validated before use.
func Load() (*Config, error) {
	cfg := *Default()

	if path := configFilePath(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Environment takes precedence; absent variables leave the merged
	// values untouched.
	if err := envconfig.Process("MFS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration with struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// EnsureDirectories creates the artifact directories if missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.ReportsDir, c.Paths.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// configFilePath returns the first config file found in the usual locations.
func configFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	if env := os.Getenv("MFS_CONFIG_FILE"); env != "" {
		locations = append([]string{env}, locations...)
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns the built-in configuration used when Load is not viable
// (tests, ad-hoc tooling).
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/mfspulse.log",
		},
		Sources: SourcesConfig{
			PortalURL:         "https://www.bb.org.bd/en/index.php/financialactivity/mfsdata",
			WorkbookURL:       "https://www.bb.org.bd/fnansys/paymentsys/mfs_bulletin_latest.xlsx",
			FetchTimeout:      30 * time.Second,
			RequestsPerSecond: 1,
		},
		Pipeline: PipelineConfig{
			AllowFallback:     true,
			DropRateThreshold: 0.5,
		},
		Paths: PathsConfig{
			DataDir:    "data",
			ReportsDir: "data/reports",
			LogsDir:    "logs",
		},
	}
}
