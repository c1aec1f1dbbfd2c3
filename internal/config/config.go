package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds the connection settings for the AnythingLLM server
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Load resolves configuration from defaults, an optional llmspace.yaml
// config file and environment variables, in that order of precedence.
// Command-line flags are applied on top by the CLI.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("Endpoint", "http://localhost:3001")
	v.SetDefault("Timeout", 30*time.Second)

	v.AutomaticEnv()

	envMappings := map[string]string{
		"Endpoint": "ANYTHINGLLM_ENDPOINT",
		"APIKey":   "ANYTHINGLLM_API_KEY",
		"Timeout":  "ANYTHINGLLM_TIMEOUT",
	}
	for configKey, envVar := range envMappings {
		if err := v.BindEnv(configKey, envVar); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment variable %s for %s", envVar, configKey)
		}
	}

	v.SetConfigName("llmspace")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.llmspace")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Debug().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if config.Endpoint == "" {
		return nil, fmt.Errorf("no API endpoint configured: set --endpoint or ANYTHINGLLM_ENDPOINT")
	}

	return &config, nil
}
