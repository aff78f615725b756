// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig         `mapstructure:"app"`
	Bot          BotConfig         `mapstructure:"bot"`
	Server       ServerConfig      `mapstructure:"server"`
	Database     DatabaseConfig    `mapstructure:"database"`
	Catalog      CatalogConfig     `mapstructure:"catalog"`
	Orders       OrdersConfig      `mapstructure:"orders"`
	Integrations IntegrationConfig `mapstructure:"integrations"`
	Logging      LoggingConfig     `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

const (
	StorageRedis    = "redis"
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// BotConfig holds conversation settings.
type BotConfig struct {
	ScenarioFile string `mapstructure:"scenario_file"`
	Scenario     string `mapstructure:"scenario"`
	Storage      string `mapstructure:"storage"`       // redis | memory
	SessionTTL   int    `mapstructure:"session_ttl"`   // milliseconds
	QueueSize    int    `mapstructure:"queue_size"`    // pending events
	EventTimeout int    `mapstructure:"event_timeout"` // milliseconds
}

// ServerConfig configures the HTTP and WebSocket listener.
type ServerConfig struct {
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
}

// DatabaseConfig groups the backing stores.
type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

// PostgresConfig configures the catalog and orders database.
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

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// ElasticsearchConfig configures the order search index.
type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

// RedisConfig configures the session store.
type RedisConfig struct {
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// CatalogConfig describes where flights live and how they are generated.
type CatalogConfig struct {
	Source      string         `mapstructure:"source"` // postgres | memory
	HorizonDays int            `mapstructure:"horizon_days"`
	Timezone    string         `mapstructure:"timezone"`
	Rules       []ScheduleRule `mapstructure:"rules"`
}

// ScheduleRule is one recurrence rule as written in the config file.
// Kind is daily, weekly or monthly.
type ScheduleRule struct {
	Kind        string  `mapstructure:"kind"`
	Origin      string  `mapstructure:"origin"`
	Destination string  `mapstructure:"destination"`
	Time        string  `mapstructure:"time"`
	Price       float64 `mapstructure:"price"`
	Weekdays    []int   `mapstructure:"weekdays"`
	Monthdays   []int   `mapstructure:"monthdays"`
}

// Location resolves the catalog timezone, falling back to local time.
func (c CatalogConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("catalog.timezone: %w", err)
	}
	return loc, nil
}

// OrdersConfig selects the sinks a completed order is written to.
// The log sink is always on.
type OrdersConfig struct {
	Postgres      bool `mapstructure:"postgres"`
	Elasticsearch bool `mapstructure:"elasticsearch"`
	SMS           bool `mapstructure:"sms"`
}

// IntegrationConfig holds settings for external services.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SNS    struct {
			SenderID string `mapstructure:"sender_id"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
