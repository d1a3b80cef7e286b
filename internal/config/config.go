package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Config holds the settings of the contacts service. They are read from the environment, which
// the binaries seed from an optional .env file.
type Config struct {
	Port       string
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	GinLogging bool
	LogLevel   string
}

// Load reads the configuration from the environment and falls back to defaults for unset
// variables.
//
// Usage example:
// > PORT=8080 DBHOST=localhost:3306 DBUSER=dirk DBPWD=bullo92 DBNAME=test LOG_LEVEL=debug
func Load() (Config, error) {
	cfg := Config{
		Port:       getEnv("PORT", "8080"),
		DBHost:     getEnv("DBHOST", "localhost:3306"),
		DBUser:     os.Getenv("DBUSER"),
		DBPassword: os.Getenv("DBPWD"),
		DBName:     getEnv("DBNAME", "test"),
		GinLogging: !strings.EqualFold(os.Getenv("GIN_LOGGING"), "off"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("could not parse PORT env variable: %w", err)
	}
	return cfg, nil
}

// DSN returns the data source name for the MySQL driver. Updates report the rows they found
// rather than the rows they changed, so that an update without effect is not taken for a missing
// contact.
func (c Config) DSN() string {
	dsn := mysql.NewConfig()
	dsn.User = c.DBUser
	dsn.Passwd = c.DBPassword
	dsn.Net = "tcp"
	dsn.Addr = c.DBHost
	dsn.DBName = c.DBName
	dsn.ParseTime = true
	dsn.ClientFoundRows = true
	return dsn.FormatDSN()
}

// Addr returns the listen address of the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
