// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	RabbitMQ      RabbitConfig       `mapstructure:"rabbitmq"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Models        ModelsConfig       `mapstructure:"models"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Metrics       MetricsConfig      `mapstructure:"metrics"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// RabbitConfig describes the consume side of the broker: one queue bound to
// a direct exchange, prefetch capped so a worker holds a single
// unacknowledged message at a time.
type RabbitConfig struct {
	URL           string `mapstructure:"url"`
	Exchange      string `mapstructure:"exchange"`
	ExchangeType  string `mapstructure:"exchange_type"`
	Queue         string `mapstructure:"queue"`
	RoutingKey    string `mapstructure:"routing_key"`
	PrefetchCount int    `mapstructure:"prefetch_count"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RedisConfig backs the optional idempotency guard; an empty address
// disables it.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig describes the report blob store.
type StorageConfig struct {
	Region string `mapstructure:"region"`
	Bucket string `mapstructure:"bucket"`
}

// ModelsConfig points at the serialized predictor artifacts. The artifacts
// are re-read on every analysis call, so paths may be swapped under a
// running worker.
type ModelsConfig struct {
	LogisticPath string `mapstructure:"logistic_path"`
	LinearPath   string `mapstructure:"linear_path"`
}

// NotificationConfig holds settings for report-lifecycle notifications.
type NotificationConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Region    string `mapstructure:"region"`
	TopicARN  string `mapstructure:"topic_arn"`
	AlertFrom string `mapstructure:"alert_from"`
	AlertTo   string `mapstructure:"alert_to"`
}

// MetricsConfig holds the /metrics endpoint settings.
type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
