package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/newthinker/alphapulse/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig              `mapstructure:"server"`
	Polygon   PolygonConfig             `mapstructure:"polygon"`
	LLM       LLMConfig                 `mapstructure:"llm"`
	Notifiers map[string]NotifierConfig `mapstructure:"notifiers"`
	Demo      DemoConfig                `mapstructure:"demo"`
	Archive   ArchiveConfig             `mapstructure:"archive"`
	Metrics   MetricsConfig             `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
}

// PolygonConfig holds market data provider settings. An empty APIKey
// switches every market client to mock data.
type PolygonConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit int           `mapstructure:"rate_limit"` // requests per minute
}

type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float64       `mapstructure:"temperature"`
	Gemini      GeminiConfig  `mapstructure:"gemini"`
	Claude      ClaudeConfig  `mapstructure:"claude"`
	OpenAI      OpenAIConfig  `mapstructure:"openai"`
	Ollama      OllamaConfig  `mapstructure:"ollama"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OllamaConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

type NotifierConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	URL      string `mapstructure:"url"`
	// Email notifier fields
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
	// Webhook notifier fields
	Headers map[string]string `mapstructure:"headers"`
}

// DemoConfig holds the timings of the simulated discovery flow.
type DemoConfig struct {
	DiscoveryEnabled bool          `mapstructure:"discovery_enabled"`
	DiscoveryDelay   time.Duration `mapstructure:"discovery_delay"`
	ToastDuration    time.Duration `mapstructure:"toast_duration"`
	SearchDebounce   time.Duration `mapstructure:"search_debounce"`
}

// ArchiveConfig selects where market snapshots are written.
type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "none", "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	Keep int      `mapstructure:"keep"` // Snapshots retained, 0 keeps all
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from defaults, an optional .env file, the
// environment and, when path is non-empty, a config file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.api_key", "")

	v.SetDefault("polygon.api_key", "")
	v.SetDefault("polygon.base_url", d.Polygon.BaseURL)
	v.SetDefault("polygon.timeout", d.Polygon.Timeout)
	v.SetDefault("polygon.rate_limit", d.Polygon.RateLimit)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", d.LLM.Gemini.Model)
	v.SetDefault("llm.claude.api_key", "")
	v.SetDefault("llm.claude.model", "")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", "")
	v.SetDefault("llm.ollama.endpoint", d.LLM.Ollama.Endpoint)
	v.SetDefault("llm.ollama.model", "")

	v.SetDefault("demo.discovery_enabled", d.Demo.DiscoveryEnabled)
	v.SetDefault("demo.discovery_delay", d.Demo.DiscoveryDelay)
	v.SetDefault("demo.toast_duration", d.Demo.ToastDuration)
	v.SetDefault("demo.search_debounce", d.Demo.SearchDebounce)

	v.SetDefault("archive.type", d.Archive.Type)
	v.SetDefault("archive.path", d.Archive.Path)
	v.SetDefault("archive.keep", d.Archive.Keep)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Polygon: PolygonConfig{
			BaseURL:   "https://api.polygon.io",
			Timeout:   10 * time.Second,
			RateLimit: 5,
		},
		LLM: LLMConfig{
			Timeout:     60 * time.Second,
			Temperature: 0.4,
			Gemini: GeminiConfig{
				Model: "gemini-2.5-flash",
			},
			Ollama: OllamaConfig{
				Endpoint: "http://localhost:11434",
			},
		},
		Demo: DemoConfig{
			DiscoveryEnabled: true,
			DiscoveryDelay:   10 * time.Second,
			ToastDuration:    6 * time.Second,
			SearchDebounce:   300 * time.Millisecond,
		},
		Archive: ArchiveConfig{
			Type: "none",
			Path: "./data/archive",
			Keep: 30,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Polygon.RateLimit < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("polygon rate_limit cannot be negative, got %d", c.Polygon.RateLimit))
	}

	if c.Demo.DiscoveryDelay < 0 || c.Demo.ToastDuration < 0 || c.Demo.SearchDebounce < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("demo durations cannot be negative"))
	}

	// LLM validation - if provider set, check config exists
	switch c.LLM.Provider {
	case "":
	case "gemini":
		if c.LLM.Gemini.APIKey == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("gemini api_key required when provider is gemini"))
		}
	case "claude":
		if c.LLM.Claude.APIKey == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("claude api_key required when provider is claude"))
		}
	case "openai":
		if c.LLM.OpenAI.APIKey == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("openai api_key required when provider is openai"))
		}
	case "ollama":
		if c.LLM.Ollama.Endpoint == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("ollama endpoint required when provider is ollama"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}

	switch c.Archive.Type {
	case "", "none":
	case "localfs":
		if c.Archive.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("archive path required when type is localfs"))
		}
	case "s3":
		if c.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("archive s3 bucket required when type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown archive type %q", c.Archive.Type))
	}
	if c.Archive.Keep < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("archive keep must be >= 0, got %d", c.Archive.Keep))
	}

	return nil
}
