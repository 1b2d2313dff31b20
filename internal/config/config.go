package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Suitability/internal/fuzzy"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Hermes   HermesConfig   `yaml:"hermes"`
	Engine   EngineConfig   `yaml:"engine"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type EngineConfig struct {
	// RuleBasePath empty means the embedded MRTA rule base.
	RuleBasePath          string   `yaml:"rule_base_path"`
	// Resolution is capped at fuzzy.MaxResolution.
	Resolution            int      `yaml:"resolution"`
	UnconstrainedStrength float64  `yaml:"unconstrained_strength"`
	DefaultOutput         *float64 `yaml:"default_output"`
	BatchWorkers          int      `yaml:"batch_workers"`
	ReloadIntervalMs      int      `yaml:"reload_interval_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ReloadInterval is zero when rule-base file polling is disabled.
func (c *Config) ReloadInterval() time.Duration {
	return time.Duration(c.Engine.ReloadIntervalMs) * time.Millisecond
}

func (c *Config) EngineOptions() fuzzy.Options {
	return fuzzy.Options{
		Resolution:            c.Engine.Resolution,
		UnconstrainedStrength: c.Engine.UnconstrainedStrength,
		DefaultOutput:         c.Engine.DefaultOutput,
	}
}

func Load(path string) (*Config, error) {
	defaults := fuzzy.DefaultOptions()
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Hermes: HermesConfig{
			URL: "nats://localhost:4222",
		},
		Engine: EngineConfig{
			Resolution:            defaults.Resolution,
			UnconstrainedStrength: defaults.UnconstrainedStrength,
			BatchWorkers:          4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SUITABILITY_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("SUITABILITY_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("SUITABILITY_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("SUITABILITY_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("SUITABILITY_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("SUITABILITY_RULE_BASE_PATH"); v != "" {
		cfg.Engine.RuleBasePath = v
	}
	if v := os.Getenv("SUITABILITY_RESOLUTION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.Resolution = n
		}
	}
	if v := os.Getenv("SUITABILITY_UNCONSTRAINED_STRENGTH"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.UnconstrainedStrength = f
		}
	}
	if v := os.Getenv("SUITABILITY_DEFAULT_OUTPUT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.DefaultOutput = &f
		}
	}
	if v := os.Getenv("SUITABILITY_BATCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.BatchWorkers = n
		}
	}
	if v := os.Getenv("SUITABILITY_RELOAD_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.ReloadIntervalMs = n
		}
	}
	if v := os.Getenv("SUITABILITY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SUITABILITY_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
