// Package config loads application configuration from file and
// environment and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. The core algorithm
// exposes exactly three tunables (classifier threshold, quality accept
// threshold, locale profile); everything else configures the layers
// around it.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Classifier ClassifierConfig `yaml:"classifier" mapstructure:"classifier"`
	Quality    QualityConfig    `yaml:"quality" mapstructure:"quality"`
	Locale     LocaleConfig     `yaml:"locale" mapstructure:"locale"`
	Gazetteer  GazetteerConfig  `yaml:"gazetteer" mapstructure:"gazetteer"`
	Enhancer   EnhancerConfig   `yaml:"enhancer" mapstructure:"enhancer"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ClassifierConfig configures the page classifier decision threshold.
type ClassifierConfig struct {
	CategoryThreshold float64 `yaml:"category_threshold" mapstructure:"category_threshold"`
}

// QualityConfig configures the quality gate.
type QualityConfig struct {
	AcceptThreshold int `yaml:"accept_threshold" mapstructure:"accept_threshold"`
	// GenericLocationPenalty controls whether a bare-city location is a
	// warning (0) or also costs points.
	GenericLocationPenalty int `yaml:"generic_location_penalty" mapstructure:"generic_location_penalty"`
}

// LocaleConfig selects the currency/locale profile.
type LocaleConfig struct {
	// ProfilePath points at a YAML profile; empty uses the built-in
	// Naira profile.
	ProfilePath string `yaml:"profile_path" mapstructure:"profile_path"`
}

// GazetteerConfig selects the area gazetteer.
type GazetteerConfig struct {
	// Path points at a YAML area file; empty uses the embedded default.
	Path string `yaml:"path" mapstructure:"path"`
}

// EnhancerConfig configures the optional NLP enhancement layer.
type EnhancerConfig struct {
	// Mode is auto, llm, pattern or off.
	Mode string `yaml:"mode" mapstructure:"mode"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// PipelineConfig configures batch processing.
type PipelineConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port      int     `yaml:"port" mapstructure:"port"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("REALTORS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "realtors.db")
	v.SetDefault("classifier.category_threshold", 0.60)
	v.SetDefault("quality.accept_threshold", 40)
	v.SetDefault("quality.generic_location_penalty", 0)
	v.SetDefault("enhancer.mode", "auto")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("pipeline.workers", 8)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 10)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration for the given run mode ("process"
// or "serve") and returns a combined error listing every problem.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}
	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required for postgres")
	}

	if c.Classifier.CategoryThreshold < 0 || c.Classifier.CategoryThreshold > 1 {
		problems = append(problems, "classifier.category_threshold must be between 0 and 1")
	}
	if c.Quality.AcceptThreshold < 0 || c.Quality.AcceptThreshold > 100 {
		problems = append(problems, "quality.accept_threshold must be between 0 and 100")
	}

	switch c.Enhancer.Mode {
	case "off", "pattern", "llm", "auto":
	default:
		problems = append(problems, "enhancer.mode must be off, pattern, llm or auto")
	}
	if c.Enhancer.Mode == "llm" && c.Anthropic.Key == "" {
		problems = append(problems, "anthropic.key is required for enhancer.mode llm")
	}

	if c.Pipeline.Workers < 1 || c.Pipeline.Workers > 64 {
		problems = append(problems, "pipeline.workers must be between 1 and 64")
	}

	switch mode {
	case "process":
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Server.RateLimit <= 0 {
			problems = append(problems, "server.rate_limit must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
