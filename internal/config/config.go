package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Scryfall ScryfallConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string   `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port        int      `envconfig:"SERVER_PORT" default:"8080"`
	DBPath      string   `envconfig:"DB_PATH" default:"binder.db"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
}

// AuthConfig holds session signing settings.
type AuthConfig struct {
	JWTSecret string `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`
}

// ScryfallConfig holds card database client settings.
type ScryfallConfig struct {
	BaseURL string `envconfig:"SCRYFALL_BASE_URL" default:"https://api.scryfall.com"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}
