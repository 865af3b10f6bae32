package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	OTP   OTPConfig
	Mongo MongoConfig
	Redis RedisConfig
	SMS   SMSConfig
}

type AuthConfig struct {
	JWTSecret        string        `env:"JWT_SECRET"`
	RefreshSecret    string        `env:"JWT_REFRESH_SECRET"`
	AccessTokenTTL   time.Duration `env:"ACCESS_TOKEN_TTL,  default=24h"`
	RefreshTokenTTL  time.Duration `env:"REFRESH_TOKEN_TTL, default=168h"`
	OTPRequiredLogin bool          `env:"OTP_REQUIRED_FOR_LOGIN, default=false"`
}

type OTPConfig struct {
	CodeTTL    time.Duration `env:"OTP_TTL,         default=5m"`
	RateWindow time.Duration `env:"OTP_RATE_WINDOW, default=1h"`
	RateMax    int           `env:"OTP_RATE_MAX,    default=3"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=marketplace"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SMSConfig struct {
	Workers int `env:"SMS_WORKERS, default=4"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
