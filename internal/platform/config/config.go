package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL     string
	Port            string
	IsProduction    bool
	WebRoot         string // Root of the writable web directory holding uploads
	SubmitRateLimit string // ulule/limiter format, e.g. "30-M"
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("WEB_ROOT", "wwwroot")
	viper.SetDefault("SUBMIT_RATE_LIMIT", "30-M")

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:     viper.GetString("PGSQL_URL"),
		Port:            viper.GetString("PORT"),
		IsProduction:    viper.GetBool("IS_PRODUCTION"),
		WebRoot:         viper.GetString("WEB_ROOT"),
		SubmitRateLimit: viper.GetString("SUBMIT_RATE_LIMIT"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	if cfg.WebRoot == "" {
		cfg.WebRoot = "wwwroot"
		log.Printf("Warning: WEB_ROOT environment variable not set. Defaulting to %s\n", cfg.WebRoot)
	}

	return cfg, nil
}
