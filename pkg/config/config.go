package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

var GlobalConfig *Config

// Config global configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Redis    RedisConfig    `yaml:"redis"`
	Logger   LoggerConfig   `yaml:"logger"`
	GitHub   GitHubConfig   `yaml:"github"`
	BigQuery BigQueryConfig `yaml:"bigquery"`
	Registry RegistryConfig `yaml:"registry"`
	Ingest   IngestConfig   `yaml:"ingest"`
}

// ServerConfig server configuration
type ServerConfig struct {
	Port   int    `yaml:"port"`
	Mode   string `yaml:"mode"`    // debug, release
	APIKey string `yaml:"api_key"` // bearer token for the admin API (if empty, auth is disabled)
}

// MySQLConfig MySQL configuration
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// RedisConfig Redis configuration
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LoggerConfig logger configuration
type LoggerConfig struct {
	Level  string           `yaml:"level"`  // debug, info, warn, error
	Output string           `yaml:"output"` // console, file, both
	File   LoggerFileConfig `yaml:"file"`
}

// LoggerFileConfig logger file configuration
type LoggerFileConfig struct {
	Path string `yaml:"path"`
}

// GitHubConfig GitHub search API configuration
type GitHubConfig struct {
	Token          string `yaml:"token"`            // overridden by GITHUB_TOKEN when set
	BaseURL        string `yaml:"base_url"`
	RequestDelayMs int    `yaml:"request_delay_ms"` // pause between search calls, stays under 30 req/min
	MaxRetries     int    `yaml:"max_retries"`      // rate-limit retries per call
}

// BigQueryConfig GH Archive BigQuery configuration
type BigQueryConfig struct {
	ProjectID       string `yaml:"project_id"` // empty disables the archive backfill endpoint
	CredentialsFile string `yaml:"credentials_file"`
	Dataset         string `yaml:"dataset"`
}

// RegistryConfig package registry download APIs
type RegistryConfig struct {
	NpmBaseURL     string `yaml:"npm_base_url"`
	PyPIBaseURL    string `yaml:"pypi_base_url"`
	RequestDelayMs int    `yaml:"request_delay_ms"`
}

// IngestConfig ingestion run limits
type IngestConfig struct {
	MaxBackfillDays     int `yaml:"max_backfill_days"`      // exhaustive backfill range cap
	MaxFastBackfillDays int `yaml:"max_fast_backfill_days"` // sparse/package backfill range cap
	MaxDaysPerCollect   int `yaml:"max_days_per_collect"`   // catch-up days per scheduled run
}

// Init initializes configuration
func Init() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}

	applyDefaults(&cfg)

	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.GitHub.Token = token
	}

	GlobalConfig = &cfg
	return nil
}

// applyDefaults fills zero or invalid values with safe defaults
func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.GitHub.BaseURL == "" {
		cfg.GitHub.BaseURL = "https://api.github.com"
	}
	if cfg.GitHub.RequestDelayMs <= 0 {
		cfg.GitHub.RequestDelayMs = 2100
	}
	if cfg.GitHub.MaxRetries <= 0 {
		cfg.GitHub.MaxRetries = 3
	}
	if cfg.BigQuery.Dataset == "" {
		cfg.BigQuery.Dataset = "githubarchive"
	}
	if cfg.Registry.NpmBaseURL == "" {
		cfg.Registry.NpmBaseURL = "https://api.npmjs.org"
	}
	if cfg.Registry.PyPIBaseURL == "" {
		cfg.Registry.PyPIBaseURL = "https://pypistats.org"
	}
	if cfg.Registry.RequestDelayMs <= 0 {
		cfg.Registry.RequestDelayMs = 500
	}
	if cfg.Ingest.MaxBackfillDays <= 0 {
		cfg.Ingest.MaxBackfillDays = 30
	}
	if cfg.Ingest.MaxFastBackfillDays <= 0 {
		cfg.Ingest.MaxFastBackfillDays = 60
	}
	if cfg.Ingest.MaxDaysPerCollect <= 0 {
		cfg.Ingest.MaxDaysPerCollect = 3
	}
}
