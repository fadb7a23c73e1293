package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	MongoDBURI  string `env:"MONGODB_URI,required"`
	MongoDBName string `env:"MONGODB_DATABASE_NAME" envDefault:"sportmate"`

	AccessTokenSecret string        `env:"ACCESS_TOKEN_SECRET,required"`
	AccessTokenTTL    time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"720h"`

	ExpoPushURL string `env:"EXPO_PUSH_URL"`

	// Optional ops alerting; error logs are mirrored to this chat when both
	// are set.
	TelegramBotToken  string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramLogChatID int64  `env:"TELEGRAM_LOG_CHAT_ID"`

	Debug bool `env:"DEBUG"`
}

// Load reads .env (when present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
