// internal/config/config.go
package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the runtime configuration of the extraction service.
type Config struct {
	Port        string `envconfig:"PORT" default:"8083"`
	GinMode     string `envconfig:"GIN_MODE" default:"release"`
	MaxUploadMB int64  `envconfig:"MAX_UPLOAD_MB" default:"64"`
}

// Load reads the configuration from the environment, honoring a local
// .env file when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("extraction", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
