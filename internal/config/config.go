package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort            int     `mapstructure:"APP_PORT"`
	DatabasePath       string  `mapstructure:"DATABASE_PATH"`
	APIKey             string  `mapstructure:"API_KEY"`
	APIBaseURL         string  `mapstructure:"API_BASE_URL"`
	LogLevel           string  `mapstructure:"LOG_LEVEL"`
	DefaultTemperature float64 `mapstructure:"DEFAULT_TEMPERATURE"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8000)
	viper.SetDefault("DATABASE_PATH", "./data/kodechat.db")
	viper.SetDefault("API_KEY", "")
	viper.SetDefault("API_BASE_URL", "https://api.kodekey.ai/v1")
	viper.SetDefault("LOG_LEVEL", "INFO")
	viper.SetDefault("DEFAULT_TEMPERATURE", 0.7)

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
