package sdk

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
)

// Config locates the backend and the account the console acts as.
type Config struct {
	BaseURL  string        `env:"MINISTRANCI_API_URL" envDefault:"http://localhost:5000"`
	Username string        `env:"MINISTRANCI_API_USER"`
	Password string        `env:"MINISTRANCI_API_PASSWORD"`
	Timeout  time.Duration `env:"MINISTRANCI_API_TIMEOUT"`
}

// FromEnv connects using MINISTRANCI_API_* environment variables.
// A zero timeout means requests never time out on the client side.
func FromEnv(ctx context.Context, logger *zap.Logger) (*Client, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse backend env: %w", err)
	}
	return Connect(ctx, cfg, logger)
}
