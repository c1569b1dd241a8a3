package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the bot and the admin API read from the
// environment. Secrets (bot token, JWT secret, admin password) have no
// defaults on purpose.
type Config struct {
	BotToken        string `env:"BOT_TOKEN,required"`
	AdminID         int64  `env:"ADMIN_ID,required"`
	ChannelUsername string `env:"CHANNEL_USERNAME" envDefault:"@GarajHub_uz"`
	DatabasePath    string `env:"DATABASE_PATH" envDefault:"data.sqlite"`

	HTTPPort      string `env:"PORT" envDefault:"3000"`
	JWTSecret     string `env:"JWT_SECRET,required"`
	AdminUser     string `env:"ADMIN_PANEL_USER" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PANEL_PASSWORD,required"`

	// Minimum delay between two broadcast sends, to stay under the
	// Telegram per-bot rate limit.
	BroadcastInterval time.Duration `env:"BROADCAST_INTERVAL" envDefault:"50ms"`
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
