package config

import "os"

// Config holds all application configuration
type Config struct {
	Port         string
	DatabaseFile string
	BotToken     string
	PublicURL    string
	WebAppURL    string
	CertDir      string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		DatabaseFile: getEnv("DATABASE_FILE", "./data/campuslink.sqlite3"),
		BotToken:     getEnv("BOT_TOKEN", ""),
		PublicURL:    getEnv("PUBLIC_URL", "http://localhost:8080"),
		WebAppURL:    getEnv("WEBAPP_URL", "http://localhost:8080"),
		CertDir:      getEnv("CERT_DIR", "./certificates"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
