package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      App      `mapstructure:"app"`
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	AI       AI       `mapstructure:"ai"`
	Images   Images   `mapstructure:"images"`
	Worker   Worker   `mapstructure:"worker"`
	PostHog  PostHog  `mapstructure:"posthog"`
}

// App holds general application configuration
type App struct {
	Debug   bool   `mapstructure:"debug"`
	DataDir string `mapstructure:"data_dir"`
}

// Server holds HTTP server configuration
type Server struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	RequestTimeout string   `mapstructure:"request_timeout"`
}

// Database holds storage configuration. Driver selects the repository
// implementation: "sqlite" or "postgres".
type Database struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// AI holds provider selection and per-provider settings
type AI struct {
	DefaultProvider string          `mapstructure:"default_provider"`
	DefaultModel    string          `mapstructure:"default_model"`
	DefaultStyle    string          `mapstructure:"default_style"`
	ImageProvider   string          `mapstructure:"image_provider"`
	Gemini          GeminiConfig    `mapstructure:"gemini"`
	OpenAI          OpenAIConfig    `mapstructure:"openai"`
	Anthropic       AnthropicConfig `mapstructure:"anthropic"`
	Ollama          OllamaConfig    `mapstructure:"ollama"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	ImageModel string `mapstructure:"image_model"`
	BaseURL    string `mapstructure:"base_url"`
	Timeout    string `mapstructure:"timeout"`
}

// AnthropicConfig holds Anthropic configuration
type AnthropicConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
	Version string `mapstructure:"version"`
	Timeout string `mapstructure:"timeout"`
}

// OllamaConfig holds local Ollama configuration
type OllamaConfig struct {
	Host    string `mapstructure:"host"`
	Model   string `mapstructure:"model"`
	Timeout string `mapstructure:"timeout"`
}

// Images holds illustration generation configuration
type Images struct {
	OutputDirectory string `mapstructure:"output_directory"`
	Size            string `mapstructure:"size"`
	Style           string `mapstructure:"style"`
}

// Worker holds background pool configuration
type Worker struct {
	Count     int `mapstructure:"count"`
	QueueSize int `mapstructure:"queue_size"`
}

// PostHog holds product analytics configuration
type PostHog struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	Host    string `mapstructure:"host"`
}

var globalConfig *Config

// Load loads the configuration from .env, config file, and environment
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	// Configure viper
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".scholarly")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.data_dir", ".scholarly")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"*"})
	viper.SetDefault("server.request_timeout", "60s")

	// Database defaults
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", filepath.Join(".scholarly", "scholarly.db"))

	// AI defaults
	viper.SetDefault("ai.default_provider", "demo")
	viper.SetDefault("ai.default_style", "newsletter")
	viper.SetDefault("ai.image_provider", "openai")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash-preview-05-20")
	viper.SetDefault("ai.openai.model", "gpt-4o-mini")
	viper.SetDefault("ai.openai.image_model", "gpt-image-1")
	viper.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("ai.openai.timeout", "60s")
	viper.SetDefault("ai.anthropic.model", "claude-3-5-haiku-latest")
	viper.SetDefault("ai.anthropic.base_url", "https://api.anthropic.com")
	viper.SetDefault("ai.anthropic.version", "2023-06-01")
	viper.SetDefault("ai.anthropic.timeout", "60s")
	viper.SetDefault("ai.ollama.host", "http://localhost:11434")
	viper.SetDefault("ai.ollama.model", "llama3.2")
	viper.SetDefault("ai.ollama.timeout", "120s")

	// Image defaults
	viper.SetDefault("images.output_directory", "images")
	viper.SetDefault("images.size", "1024x1024")
	viper.SetDefault("images.style", "natural")

	// Worker defaults
	viper.SetDefault("worker.count", 4)
	viper.SetDefault("worker.queue_size", 64)

	// PostHog defaults
	viper.SetDefault("posthog.enabled", false)
	viper.SetDefault("posthog.host", "https://us.i.posthog.com")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("ai.openai.api_key", []string{
		"OPENAI_API_KEY",
	})

	bindEnvKeys("ai.anthropic.api_key", []string{
		"ANTHROPIC_API_KEY",
	})

	bindEnvKeys("ai.ollama.host", []string{
		"OLLAMA_HOST",
	})

	bindEnvKeys("database.dsn", []string{
		"DATABASE_URL",
		"SCHOLARLY_DATABASE_DSN",
	})

	bindEnvKeys("database.driver", []string{
		"SCHOLARLY_DATABASE_DRIVER",
	})

	bindEnvKeys("posthog.api_key", []string{
		"POSTHOG_API_KEY",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"SCHOLARLY_DEBUG",
	})

	bindEnvKeys("ai.default_provider", []string{
		"SCHOLARLY_AI_PROVIDER",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	if config.App.DataDir != "" {
		config.App.DataDir = expandPath(config.App.DataDir)
	}
	if config.Images.OutputDirectory != "" {
		config.Images.OutputDirectory = expandPath(config.Images.OutputDirectory)
	}
	if config.Database.Driver == "sqlite" && config.Database.DSN != "" {
		config.Database.DSN = expandPath(config.Database.DSN)
	}

	durations := map[string]string{
		"server.request_timeout": config.Server.RequestTimeout,
		"ai.openai.timeout":      config.AI.OpenAI.Timeout,
		"ai.anthropic.timeout":   config.AI.Anthropic.Timeout,
		"ai.ollama.timeout":      config.AI.Ollama.Timeout,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig ensures required configuration is present
func validateConfig(config *Config) error {
	var errors []string

	switch config.Database.Driver {
	case "sqlite", "postgres":
	default:
		errors = append(errors, fmt.Sprintf("Unknown database driver: %s. Supported: sqlite, postgres", config.Database.Driver))
	}

	if config.Database.Driver == "postgres" && config.Database.DSN == "" {
		errors = append(errors, "Postgres requires a DSN. Set DATABASE_URL or database.dsn in config file")
	}

	switch config.AI.DefaultProvider {
	case "openai", "anthropic", "gemini", "ollama", "demo", "":
	default:
		errors = append(errors, fmt.Sprintf("Unknown AI provider: %s. Supported: openai, anthropic, gemini, ollama, demo", config.AI.DefaultProvider))
	}

	if config.PostHog.Enabled && config.PostHog.APIKey == "" {
		errors = append(errors, "PostHog is enabled but missing API key. Set POSTHOG_API_KEY")
	}

	if config.Worker.Count < 1 {
		errors = append(errors, "worker.count must be at least 1")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Convenience getters for commonly used configuration values
func GetApp() App           { return Get().App }
func GetServer() Server     { return Get().Server }
func GetDatabase() Database { return Get().Database }
func GetAI() AI             { return Get().AI }
func GetImages() Images     { return Get().Images }
func GetWorker() Worker     { return Get().Worker }
func GetPostHog() PostHog   { return Get().PostHog }

// Specific convenience getters for frequently accessed values
func GetGeminiAPIKey() string    { return Get().AI.Gemini.APIKey }
func GetOpenAIAPIKey() string    { return Get().AI.OpenAI.APIKey }
func GetAnthropicAPIKey() string { return Get().AI.Anthropic.APIKey }
func GetDefaultProvider() string { return Get().AI.DefaultProvider }
func GetDefaultModel() string    { return Get().AI.DefaultModel }
func GetDefaultStyle() string    { return Get().AI.DefaultStyle }
func IsDebugMode() bool          { return Get().App.Debug }

/// ListenAddr returns the host:port the HTTP server should bind.
func (s Server) ListenAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RequestTimeoutDuration parses the configured request timeout, falling back
// to 60 seconds on a missing or malformed value.
func (s Server) RequestTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(s.RequestTimeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
