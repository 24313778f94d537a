package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application. Values are read by
// viper from an optional config file or from environment variables; env
// vars win.
type Config struct {
	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`

	// WebhookURL switches the bot into webhook mode when set. Empty
	// means long polling.
	WebhookURL string `mapstructure:"WEBHOOK_URL"`

	// Port is where the health endpoint (and the webhook, when enabled)
	// listens.
	Port int `mapstructure:"PORT"`

	// FetchTimeoutSeconds bounds every outbound page and API request.
	FetchTimeoutSeconds int `mapstructure:"FETCH_TIMEOUT_SECONDS"`

	// APIBaseURL overrides the wtg.com.ua API host, mainly for tests.
	APIBaseURL string `mapstructure:"WTG_API_BASE_URL"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
}

// FetchTimeout returns the configured fetch timeout as a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Register keys so AutomaticEnv picks them up even without a file.
	viper.SetDefault("TELEGRAM_BOT_TOKEN", "")
	viper.SetDefault("WEBHOOK_URL", "")
	viper.SetDefault("PORT", 10000)
	viper.SetDefault("FETCH_TIMEOUT_SECONDS", 10)
	viper.SetDefault("WTG_API_BASE_URL", "")
	viper.SetDefault("LOG_LEVEL", "info")

	if err = viper.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars may carry everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err = viper.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if config.TelegramBotToken == "" {
		return Config{}, fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	if config.Port <= 0 {
		config.Port = 10000
	}
	if config.FetchTimeoutSeconds <= 0 {
		config.FetchTimeoutSeconds = 10
	}

	return config, nil
}
