// Package config loads and validates extractor configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/contract-extractor/internal/llm/gemini"
	"github.com/JakeFAU/contract-extractor/internal/source/gcs"
	"github.com/JakeFAU/contract-extractor/internal/source/local"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Source   SourceConfig   `mapstructure:"source"`
	Executor ExecutorConfig `mapstructure:"executor"`
	Gemini   gemini.Config  `mapstructure:"gemini"`
	Output   OutputConfig   `mapstructure:"output"`
	DB       DBConfig       `mapstructure:"db"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls the optional status HTTP server.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// SourceConfig selects where the batch's documents come from.
type SourceConfig struct {
	// Kind is "local" or "gcs".
	Kind  string       `mapstructure:"kind"`
	Local local.Config `mapstructure:"local"`
	GCS   gcs.Config   `mapstructure:"gcs"`
}

// ExecutorConfig governs worker pool and retry behavior.
type ExecutorConfig struct {
	MaxWorkers        int     `mapstructure:"max_workers"`
	MaxRetries        int     `mapstructure:"max_retries"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds"`
	RateLimitRPS      float64 `mapstructure:"rate_limit_rps"`
	Sequential        bool    `mapstructure:"sequential"`
}

// RetryDelay returns the base backoff as a duration.
func (c ExecutorConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// OutputConfig sets where and how results are written.
type OutputConfig struct {
	CSVPath  string `mapstructure:"csv_path"`
	XLSXPath string `mapstructure:"xlsx_path"`
}

// DBConfig controls the optional Postgres result store.
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	BatchTable  string `mapstructure:"batch_table"`
	ResultTable string `mapstructure:"result_table"`
}

// PubSubConfig holds metadata for publish-subscribe notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EXTRACTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// bindLegacyEnv keeps the short environment names earlier deployments used.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("executor.max_workers", "EXTRACTOR_EXECUTOR_MAX_WORKERS", "MAX_WORKERS")
	_ = v.BindEnv("executor.max_retries", "EXTRACTOR_EXECUTOR_MAX_RETRIES", "MAX_RETRIES")
	_ = v.BindEnv("executor.retry_delay_seconds", "EXTRACTOR_EXECUTOR_RETRY_DELAY_SECONDS", "RETRY_DELAY")
	_ = v.BindEnv("gemini.api_key", "EXTRACTOR_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("gemini.two_call_for_pdfs", "EXTRACTOR_GEMINI_TWO_CALL_FOR_PDFS", "USE_TWO_CALL_FOR_PDFS")
	_ = v.BindEnv("gemini.always_two_call", "EXTRACTOR_GEMINI_ALWAYS_TWO_CALL", "ALWAYS_USE_TWO_CALL")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("source.kind", "local")
	v.SetDefault("source.local.dir", "sample_contracts")
	v.SetDefault("source.gcs.prefix", "")
	v.SetDefault("executor.max_workers", 10)
	v.SetDefault("executor.max_retries", 3)
	v.SetDefault("executor.retry_delay_seconds", 2)
	v.SetDefault("executor.rate_limit_rps", 0)
	v.SetDefault("executor.sequential", false)
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.two_call_for_pdfs", true)
	v.SetDefault("gemini.always_two_call", false)
	v.SetDefault("output.csv_path", "sirion_metadata.csv")
	v.SetDefault("output.xlsx_path", "")
	v.SetDefault("db.batch_table", "extraction_batches")
	v.SetDefault("db.result_table", "extraction_results")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Enabled && c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0 when the server is enabled")
	}
	switch c.Source.Kind {
	case "local", "gcs", "memory":
	default:
		return fmt.Errorf("source.kind must be local or gcs, got %q", c.Source.Kind)
	}
	if c.Source.Kind == "gcs" && c.Source.GCS.Bucket == "" {
		return fmt.Errorf("source.gcs.bucket is required for the gcs source")
	}
	if c.Executor.MaxWorkers <= 0 {
		return fmt.Errorf("executor.max_workers must be > 0")
	}
	if c.Executor.MaxRetries < 0 {
		return fmt.Errorf("executor.max_retries must be >= 0")
	}
	if c.Executor.RetryDelaySeconds < 0 {
		return fmt.Errorf("executor.retry_delay_seconds must be >= 0")
	}
	if c.PubSub.TopicName != "" && c.PubSub.ProjectID == "" {
		return fmt.Errorf("pubsub.project_id is required when pubsub.topic_name is set")
	}
	return nil
}
