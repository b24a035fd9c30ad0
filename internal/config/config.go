package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups shared by the server and the
// worker binaries.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"    validate:"required"`
	Kafka    KafkaConfig    `mapstructure:"kafka"    validate:"required"`
	Worker   WorkerConfig   `mapstructure:"worker"   validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database related settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// RedisConfig contains the prediction cache connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"   validate:"min=0"`
}

// KafkaConfig contains the message queue settings.
type KafkaConfig struct {
	Brokers         []string `mapstructure:"brokers"           validate:"required,min=1"`
	ModerationTopic string   `mapstructure:"moderation_topic"  validate:"required"`
	DeadLetterTopic string   `mapstructure:"dead_letter_topic" validate:"required"`
	GroupID         string   `mapstructure:"group_id"          validate:"required"`
}

// WorkerConfig contains the consumer-side processing settings.
type WorkerConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" validate:"required,min=1"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"  validate:"required"`
	ModelPath   string        `mapstructure:"model_path"`
	ModelSeed   int64         `mapstructure:"model_seed"`
}
