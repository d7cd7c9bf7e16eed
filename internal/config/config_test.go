package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  AIConfig
		wantErr bool
	}{
		{
			name: "Valid openai config",
			config: AIConfig{
				LLMProvider:    "openai",
				GeneratorModel: "gpt-3.5-turbo",
				APIKey:         "sk-test",
				MaxTokens:      500,
			},
			wantErr: false,
		},
		{
			name: "Valid ollama config without key",
			config: AIConfig{
				LLMProvider:    "ollama",
				GeneratorModel: "gemma3:latest",
				OllamaHost:     "http://localhost:11434",
				MaxTokens:      500,
			},
			wantErr: false,
		},
		{
			name: "Missing API key for gemini",
			config: AIConfig{
				LLMProvider:    "gemini",
				GeneratorModel: "gemini-2.5-flash",
				MaxTokens:      500,
			},
			wantErr: true,
		},
		{
			name: "Unsupported provider",
			config: AIConfig{
				LLMProvider:    "davinci",
				GeneratorModel: "text-davinci-003",
				APIKey:         "sk-test",
				MaxTokens:      500,
			},
			wantErr: true,
		},
		{
			name: "Zero max tokens",
			config: AIConfig{
				LLMProvider:    "openai",
				GeneratorModel: "gpt-3.5-turbo",
				APIKey:         "sk-test",
			},
			wantErr: true,
		},
		{
			name: "Temperature out of range",
			config: AIConfig{
				LLMProvider:    "openai",
				GeneratorModel: "gpt-3.5-turbo",
				APIKey:         "sk-test",
				MaxTokens:      500,
				Temperature:    3,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_DefaultsAndEnvironment(t *testing.T) {
	t.Setenv("RB_AI_API_KEY", "sk-env")
	t.Setenv("RB_REVIEW_FAIL_FAST", "false")
	t.Setenv("RB_SERVER_PORT", "9090")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "http://localhost:3000", cfg.Server.AllowedOrigin)
	assert.Equal(t, "openai", cfg.AI.LLMProvider)
	assert.Equal(t, "gpt-3.5-turbo", cfg.AI.GeneratorModel)
	assert.Equal(t, "sk-env", cfg.AI.APIKey)
	assert.Equal(t, 500, cfg.AI.MaxTokens)
	assert.Zero(t, cfg.AI.Temperature)
	assert.Equal(t, "You are a code reviewer.", cfg.AI.SystemPrompt)
	assert.Equal(t, 2*time.Minute, cfg.AI.RequestTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Server.RequestTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "main", cfg.Review.Branch)
	assert.False(t, cfg.Review.FailFast)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_ProviderKeyFallback(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "sk-openai", cfg.AI.APIKey)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("RB_AI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := Load(viper.New())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg, err := Read(viper.New())
	require.NoError(t, err)
	assert.Empty(t, cfg.AI.APIKey)
	assert.Equal(t, "openai", cfg.AI.LLMProvider)
}

func TestLoad_ServerShutdownTimeout(t *testing.T) {
	t.Setenv("RB_AI_API_KEY", "sk-env")
	t.Setenv("RB_SERVER_SHUTDOWN_TIMEOUT", "45s")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
ai:
  llm_provider: ollama
  generator_model: codellama
review:
  recursive: true
database:
  enabled: true
  host: db.internal
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	t.Chdir(dir)

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.AI.LLMProvider)
	assert.Equal(t, "codellama", cfg.AI.GeneratorModel)
	assert.True(t, cfg.Review.Recursive)
	assert.True(t, cfg.Review.FailFast)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review-bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"7070\"\nai:\n  api_key: sk-file\nreview:\n  work_dir: /var/tmp/reviews\n"), 0o600))

	v := viper.New()
	v.SetConfigFile(path)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "sk-file", cfg.AI.APIKey)
	assert.Equal(t, "/var/tmp/reviews", cfg.Review.WorkDir)
}
