// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"tradax-ledger/pkg/db" // Import db package for its Config struct

	"github.com/joho/godotenv"
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort string
	DB         db.Config
	// OracleURL points at an external price feed. Empty means the built-in
	// static price table is used.
	OracleURL string
}

// LoadConfig loads configuration from the environment, with a best-effort
// read of a local .env file first. Missing variables fall back to local
// development defaults.
func LoadConfig() (*AppConfig, error) {
	_ = godotenv.Load() // .env is optional

	serverPort := getEnv("SERVER_PORT", "8080")

	dbHost := getEnv("DB_HOST", "localhost")
	dbPortStr := getEnv("DB_PORT", "5432")
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	dbUser := getEnv("DB_USER", "user")
	dbPassword := getEnv("DB_PASSWORD", "password")
	dbName := getEnv("DB_NAME", "ledgerdb")
	dbSSLMode := getEnv("DB_SSLMODE", "disable")

	return &AppConfig{
		ServerPort: serverPort,
		DB: db.Config{
			Host:     dbHost,
			Port:     dbPort,
			User:     dbUser,
			Password: dbPassword,
			DBName:   dbName,
			SSLMode:  dbSSLMode,
		},
		OracleURL: os.Getenv("ORACLE_URL"),
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
