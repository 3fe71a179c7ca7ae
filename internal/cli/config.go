package cli

import (
	"os"
)

// Config holds CLI configuration
type Config struct {
	ServerURL     string
	RefreshSecret string
	Output        string
	Verbose       bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:     getEnvOrDefault("TRESMIL_SERVER", "http://localhost:3002"),
		RefreshSecret: os.Getenv("TRESMIL_REFRESH_SECRET"),
		Output:        "text",
		Verbose:       false,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
