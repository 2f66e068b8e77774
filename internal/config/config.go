package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the typed view of configs/config.yml plus environment overrides.
type Config struct {
	Port      string `mapstructure:"port"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	DB struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"db"`

	Credentials struct {
		Path   string `mapstructure:"path"`
		Digest string `mapstructure:"digest"`
	} `mapstructure:"credentials"`

	Auth struct {
		SigningKey string        `mapstructure:"signing_key"`
		SessionTTL time.Duration `mapstructure:"session_ttl"`
	} `mapstructure:"auth"`

	Gemini struct {
		APIKey          string        `mapstructure:"api_key"`
		Model           string        `mapstructure:"model"`
		BaseURL         string        `mapstructure:"base_url"`
		Timeout         time.Duration `mapstructure:"timeout"`
		Temperature     float32       `mapstructure:"temperature"`
		TopP            float32       `mapstructure:"top_p"`
		TopK            float32       `mapstructure:"top_k"`
		MaxOutputTokens int32         `mapstructure:"max_output_tokens"`
	} `mapstructure:"gemini"`

	Speech struct {
		BaseURL string        `mapstructure:"base_url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"speech"`

	Upload struct {
		MaxBytes int64 `mapstructure:"max_bytes"`
	} `mapstructure:"upload"`

	Janitor struct {
		Interval time.Duration `mapstructure:"interval"`
	} `mapstructure:"janitor"`

	CORS struct {
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"cors"`
}

var errMissingSigningKey = errors.New("auth.signing_key must be set")

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("db.path", "mediscan.db")
	v.SetDefault("credentials.path", "users.csv")
	v.SetDefault("credentials.digest", "sha256")
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.session_ttl", 12*time.Hour)
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.base_url", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.timeout", 60*time.Second)
	v.SetDefault("gemini.temperature", 0.4)
	v.SetDefault("gemini.top_p", 1.0)
	v.SetDefault("gemini.top_k", 32)
	v.SetDefault("gemini.max_output_tokens", 4096)
	v.SetDefault("speech.base_url", "https://translate.google.com/translate_tts")
	v.SetDefault("speech.timeout", 30*time.Second)
	v.SetDefault("upload.max_bytes", 10<<20)
	v.SetDefault("janitor.interval", time.Minute)
	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// Load reads .env (if present), then config.yml from the given directories,
// then MEDISCAN_* environment variables. GEMINI_API_KEY is honoured as well.
func Load(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("mediscan")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("gemini.api_key", "MEDISCAN_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind gemini api key: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Auth.SigningKey) == "" {
		return errMissingSigningKey
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be positive, got %s", c.Auth.SessionTTL)
	}
	if c.Janitor.Interval <= 0 {
		return fmt.Errorf("janitor.interval must be positive, got %s", c.Janitor.Interval)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload.max_bytes must be positive, got %d", c.Upload.MaxBytes)
	}
	return nil
}
