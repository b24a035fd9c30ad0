package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/sgladkov/admoderation/internal/queue"
)

// envPrefix is the prefix for environment variable overrides, e.g.
// MODERATION_SERVER_PORT or MODERATION_DATABASE_URL.
const envPrefix = "MODERATION"

// Load reads configuration from an optional config.yaml and from
// environment variables, with the environment taking precedence.
// Returns a populated Config struct or an error if loading or validation
// fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; the environment carries the
		// required values in that case.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")

	// Registering the key makes AutomaticEnv visible to Unmarshal even
	// when no config file sets it.
	v.SetDefault("database.url", "")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.moderation_topic", queue.DefaultModerationTopic)
	v.SetDefault("kafka.dead_letter_topic", queue.DefaultDeadLetterTopic)
	v.SetDefault("kafka.group_id", queue.DefaultGroupID)

	v.SetDefault("worker.max_attempts", 3)
	v.SetDefault("worker.retry_delay", 5*time.Second)
	v.SetDefault("worker.model_path", "moderation_model.json")
	v.SetDefault("worker.model_seed", 42)
}
