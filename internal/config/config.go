// Package config reads the console's configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/celerix-dev/ministranci-console/pkg/sdk"
)

// Config is everything the console binaries need.
type Config struct {
	API sdk.Config

	HTTPPort   string        `env:"CONSOLE_HTTP_PORT" envDefault:"7002"`
	DataDir    string        `env:"CONSOLE_DATA_DIR" envDefault:"./data"`
	DisableTLS bool          `env:"CONSOLE_DISABLE_TLS" envDefault:"false"`
	SessionKey string        `env:"CONSOLE_SESSION_KEY"`
	SessionTTL time.Duration `env:"CONSOLE_SESSION_TTL" envDefault:"12h"`
	ViewerRole string        `env:"CONSOLE_VIEWER_ROLE" envDefault:"admin"`
	LogLevel   string        `env:"CONSOLE_LOG_LEVEL" envDefault:"info"`
	LogFormat  string        `env:"CONSOLE_LOG_FORMAT" envDefault:"json"`
}

// Load reads the given .env files, if they exist, and then parses the
// environment. Variables already set in the environment win over the files.
func Load(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
