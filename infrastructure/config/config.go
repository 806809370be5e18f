package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion       string
	SecondaryRegion string // optional mirror region for aggregate writes
	DynamoDBTable   string // shared invite-links table

	// Authentication
	APIKey string

	// Pacing delay between accounts, milliseconds
	UpdateDelayMS int

	// Feature flags
	EnableCORS bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		AWSRegion:       getEnv("AMAZON_REGION", ""),
		SecondaryRegion: getEnv("AMAZON_SECONDARY_REGION", ""),
		DynamoDBTable:   getEnv("AMAZON_DYNAMODB_TABLE", ""),

		APIKey: getEnv("API_KEY", ""),

		UpdateDelayMS: getEnvInt("UPDATE_DELAY_MS", 1000),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.DynamoDBTable == "" {
		return fmt.Errorf("AMAZON_DYNAMODB_TABLE is required")
	}
	return nil
}

// UpdateDelay returns the pacing delay between accounts
func (c *Config) UpdateDelay() time.Duration {
	return time.Duration(c.UpdateDelayMS) * time.Millisecond
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
