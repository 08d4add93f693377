// Package config loads service settings from defaults, an optional YAML file,
// .env and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"

	EnvPrefix = "JUSTPLANIT"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Store     StoreConfig     `mapstructure:"store"`
	Sessions  SessionsConfig  `mapstructure:"sessions"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	WebDir          string        `mapstructure:"web_dir"`
}

type LLMConfig struct {
	Provider        string        `mapstructure:"provider"`
	BaseURL         string        `mapstructure:"base_url"`
	APIKey          string        `mapstructure:"api_key"`
	AnthropicAPIKey string        `mapstructure:"anthropic_api_key"`
	Model           string        `mapstructure:"model"`
	SiteURL         string        `mapstructure:"site_url"`
	AppTitle        string        `mapstructure:"app_title"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type SessionsConfig struct {
	Capacity int           `mapstructure:"capacity"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
	Insecure     bool   `mapstructure:"insecure"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.web_dir", "")

	v.SetDefault("llm.provider", ProviderOpenRouter)
	v.SetDefault("llm.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.anthropic_api_key", "")
	v.SetDefault("llm.model", "deepseek/deepseek-chat-v3.1:free")
	v.SetDefault("llm.site_url", "")
	v.SetDefault("llm.app_title", "JustPlanIt")
	v.SetDefault("llm.timeout", 120*time.Second)

	v.SetDefault("store.path", "data/justplanit.db")

	v.SetDefault("sessions.capacity", 256)
	v.SetDefault("sessions.timeout", 3*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.service_name", "justplanit")
	v.SetDefault("telemetry.insecure", false)
}

// Load reads .env (if present), then the optional config file at path, then
// environment overrides. JUSTPLANIT_<SECTION>_<KEY> overrides any key; the
// conventional OPENROUTER_API_KEY, ANTHROPIC_API_KEY and PORT are honoured too.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", "OPENROUTER_API_KEY")
	_ = v.BindEnv("llm.anthropic_api_key", EnvPrefix+"_LLM_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" && os.Getenv(EnvPrefix+"_SERVER_ADDR") == "" {
		cfg.Server.Addr = ":" + port
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	return &cfg, nil
}

// Validate checks what is needed to call the completion endpoint.
func (c *Config) Validate() error {
	var errs []error
	switch c.LLM.Provider {
	case ProviderOpenRouter:
		if strings.TrimSpace(c.LLM.APIKey) == "" {
			errs = append(errs, errors.New("llm.api_key (or OPENROUTER_API_KEY) is required for the openrouter provider"))
		}
	case ProviderAnthropic:
		if strings.TrimSpace(c.LLM.AnthropicAPIKey) == "" {
			errs = append(errs, errors.New("llm.anthropic_api_key (or ANTHROPIC_API_KEY) is required for the anthropic provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown llm.provider %q", c.LLM.Provider))
	}
	if c.LLM.Timeout < 0 {
		errs = append(errs, errors.New("llm.timeout must not be negative"))
	}
	if c.Sessions.Capacity <= 0 {
		errs = append(errs, errors.New("sessions.capacity must be positive"))
	}
	return errors.Join(errs...)
}
