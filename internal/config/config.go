// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported DB_DRIVER values.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds all runtime configuration values.
type Config struct {
	AppPort     string
	DBDriver    string
	DatabaseDSN string
	DBUser      string
	DBPassword  string
	DBServer    string
	DBPort      string
	DBName      string
	DBSSLMode   string
	SQLitePath  string
	DBLogLevel  string
	RabbitMQURL string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("DB_USER", "")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_SERVER", "")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "showtrack.db")
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("RABBITMQ_URL", "")
}

// Load reads .env (when present) and the environment into a Config.
func Load(v *viper.Viper) (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment only")
	}

	SetDefaults(v)
	v.AutomaticEnv()

	cfg := FromViper(v)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromViper builds a Config from the values currently held by v.
func FromViper(v *viper.Viper) Config {
	return Config{
		AppPort:     v.GetString("APP_PORT"),
		DBDriver:    strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN: v.GetString("DATABASE_DSN"),
		DBUser:      v.GetString("DB_USER"),
		DBPassword:  v.GetString("DB_PASSWORD"),
		DBServer:    v.GetString("DB_SERVER"),
		DBPort:      v.GetString("DB_PORT"),
		DBName:      v.GetString("DB_NAME"),
		DBSSLMode:   v.GetString("DB_SSLMODE"),
		SQLitePath:  v.GetString("SQLITE_PATH"),
		DBLogLevel:  strings.ToLower(v.GetString("DB_LOG_LEVEL")),
		RabbitMQURL: v.GetString("RABBITMQ_URL"),
	}
}

// Validate reports missing or inconsistent settings.
func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres:
		if c.DatabaseDSN != "" {
			return nil
		}
		var missing []string
		for key, val := range map[string]string{
			"DB_USER":     c.DBUser,
			"DB_PASSWORD": c.DBPassword,
			"DB_SERVER":   c.DBServer,
			"DB_PORT":     c.DBPort,
			"DB_NAME":     c.DBName,
		} {
			if val == "" {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return fmt.Errorf("missing database settings (set DATABASE_DSN or %s)", strings.Join(missing, ", "))
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

// PostgresDSN returns DATABASE_DSN when set, otherwise a postgres URL composed from
// the individual DB_* settings with the credentials escaped.
func (c Config) PostgresDSN() string {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   c.DBServer + ":" + c.DBPort,
		Path:   "/" + c.DBName,
	}
	if c.DBSSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.DBSSLMode}}.Encode()
	}
	return u.String()
}
