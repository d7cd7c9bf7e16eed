// Package config loads the application's configuration from a config file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/review-bot/internal/logger"
)

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Config holds the application's configuration values.
type Config struct {
	Server   ServerConfig  `mapstructure:"server"`
	Logging  logger.Config `mapstructure:"logging"`
	AI       AIConfig      `mapstructure:"ai"`
	Review   ReviewConfig  `mapstructure:"review"`
	Output   OutputConfig  `mapstructure:"output"`
	Git      GitConfig     `mapstructure:"git"`
	Database DBConfig      `mapstructure:"database"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	AllowedOrigin   string        `mapstructure:"allowed_origin"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AIConfig configures the text-generation service. The API key is handed to
// the generator constructor and never stored in package-level state.
type AIConfig struct {
	LLMProvider    string        `mapstructure:"llm_provider"`
	GeneratorModel string        `mapstructure:"generator_model"`
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	OllamaHost     string        `mapstructure:"ollama_host"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	Temperature    float64       `mapstructure:"temperature"`
	SystemPrompt   string        `mapstructure:"system_prompt"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type ReviewConfig struct {
	Branch          string `mapstructure:"branch"`
	GuidelinesFile  string `mapstructure:"guidelines_file"`
	WatchGuidelines bool   `mapstructure:"watch_guidelines"`
	Recursive       bool   `mapstructure:"recursive"`
	FailFast        bool   `mapstructure:"fail_fast"`
	WorkDir         string `mapstructure:"work_dir"`
}

type OutputConfig struct {
	ArchiveDir string `mapstructure:"archive_dir"`
}

type GitConfig struct {
	Token string `mapstructure:"token"`
}

type DBConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslmode"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// LoadConfig reads configuration from config.yaml and RB_* environment
// variables using the process-wide Viper instance, so flags bound by the CLI
// take part in the precedence chain.
func LoadConfig() (*Config, error) {
	return Load(viper.GetViper())
}

// Load reads the configuration like Read and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	cfg, err := Read(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read sets defaults on v, reads the config file if one exists and overlays
// the environment. The result is not validated, so commands that never call
// the LLM can run without an API key.
func Read(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// An explicit file set by the caller wins over the search paths.
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("RB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Accept the providers' conventional variable names as well.
	if err := v.BindEnv("ai.api_key", "RB_AI_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind api key env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		slog.Debug("no config file found, using defaults and environment", "error", ErrConfigNotFound)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origin", "http://localhost:3000")
	v.SetDefault("server.request_timeout", 10*time.Minute)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.file", "")

	v.SetDefault("ai.llm_provider", "openai")
	v.SetDefault("ai.generator_model", "gpt-3.5-turbo")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.ollama_host", "http://localhost:11434")
	v.SetDefault("ai.max_tokens", 500)
	v.SetDefault("ai.temperature", 0.0)
	v.SetDefault("ai.system_prompt", "You are a code reviewer.")
	v.SetDefault("ai.request_timeout", 2*time.Minute)

	v.SetDefault("review.branch", "main")
	v.SetDefault("review.guidelines_file", "")
	v.SetDefault("review.watch_guidelines", false)
	v.SetDefault("review.recursive", false)
	v.SetDefault("review.fail_fast", true)
	v.SetDefault("review.work_dir", "")

	v.SetDefault("output.archive_dir", "")
	v.SetDefault("git.token", "")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "reviewbot")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "reviewbot")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 5*time.Minute)
}

// Validate checks the whole configuration and reports the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("%w: server.port must be set", ErrInvalidConfig)
	}
	if err := c.AI.Validate(); err != nil {
		return err
	}
	if c.Database.Enabled {
		if c.Database.Host == "" || c.Database.Database == "" {
			return fmt.Errorf("%w: database.host and database.database must be set when the database is enabled", ErrInvalidConfig)
		}
	}
	return nil
}

// Validate checks the text-generation settings.
func (c *AIConfig) Validate() error {
	switch c.LLMProvider {
	case "openai", "gemini":
		if c.APIKey == "" {
			return fmt.Errorf("%w: ai.api_key must be set for provider %q", ErrInvalidConfig, c.LLMProvider)
		}
	case "ollama":
		if c.OllamaHost == "" {
			return fmt.Errorf("%w: ai.ollama_host must be set for provider ollama", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unsupported LLM provider %q", ErrInvalidConfig, c.LLMProvider)
	}
	if c.GeneratorModel == "" {
		return fmt.Errorf("%w: ai.generator_model must be set", ErrInvalidConfig)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("%w: ai.max_tokens must be positive, got %d", ErrInvalidConfig, c.MaxTokens)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: ai.temperature must be between 0 and 2, got %v", ErrInvalidConfig, c.Temperature)
	}
	return nil
}
