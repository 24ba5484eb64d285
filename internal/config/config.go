package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Market    MarketConfig
	Scheduler SchedulerConfig
	Admin     AdminConfig
	Account   AccountConfig
	Logging   LoggingConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// MarketConfig pins the operating timezone and the NAV data source.
// All calendar arithmetic uses Location explicitly; nothing in the system
// relies on the ambient process timezone.
type MarketConfig struct {
	Timezone      string
	Location      *time.Location
	NavAPIBaseURL string
}

// SchedulerConfig holds the cron specs for the periodic jobs.
type SchedulerConfig struct {
	Enabled bool
	// NavSyncSpec refreshes fund NAVs from the external source.
	NavSyncSpec string
	// InstallmentSpec triggers the due-installment engine pass.
	InstallmentSpec string
	// Workers bounds concurrent per-user execution inside one engine pass.
	Workers int
}

// AdminConfig holds credentials for the admin endpoints.
type AdminConfig struct {
	APIKey string
	// FernetKey encrypts secrets stored in system settings.
	FernetKey string
}

// AccountConfig holds defaults for new paper accounts.
type AccountConfig struct {
	StartingBalance float64
}

// LoggingConfig holds log output configuration.
type LoggingConfig struct {
	Level   string
	Console bool
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/paper_trading.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Market: MarketConfig{
			Timezone:      getEnv("MARKET_TIMEZONE", "Asia/Kolkata"),
			NavAPIBaseURL: getEnv("NAV_API_BASE_URL", "https://api.mfapi.in"),
		},
		Scheduler: SchedulerConfig{
			Enabled:         getEnvBool("SCHEDULER_ENABLED", true),
			NavSyncSpec:     getEnv("SCHEDULER_NAV_SYNC_SPEC", "0 21 * * *"),
			InstallmentSpec: getEnv("SCHEDULER_INSTALLMENT_SPEC", "30 21 * * *"),
			Workers:         getEnvInt("SCHEDULER_WORKERS", 4),
		},
		Admin: AdminConfig{
			APIKey:    getEnv("INTERNAL_API_KEY", ""),
			FernetKey: getEnv("FERNET_KEY", ""),
		},
		Account: AccountConfig{
			StartingBalance: getEnvFloat("ACCOUNT_STARTING_BALANCE", 100000),
		},
		Logging: LoggingConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Console: getEnvBool("LOG_CONSOLE", true),
		},
	}

	loc, err := time.LoadLocation(config.Market.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid MARKET_TIMEZONE %q: %w", config.Market.Timezone, err)
	}
	config.Market.Location = loc

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}
