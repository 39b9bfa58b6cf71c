package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

const (
	SessionStoreCookie = "cookie"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Env      string `env:"APP_ENV" env-default:"local"`
	HTTPAddr string `env:"HTTP_ADDR" env-default:":8080"`
	GinMode  string `env:"GIN_MODE" env-default:"debug"`
	LogLevel string `env:"LOG_LEVEL" env-default:""`

	Database DatabaseConfig
	Session  SessionConfig
	OpenAI   OpenAIConfig
}

type DatabaseConfig struct {
	Driver     string `env:"DB_DRIVER" env-default:"sqlite"`
	Host       string `env:"DB_HOST" env-default:"localhost"`
	Port       string `env:"DB_PORT" env-default:"3306"`
	User       string `env:"DB_USER" env-default:"toondo"`
	Password   string `env:"DB_PASSWORD" env-default:"toondo"`
	Name       string `env:"DB_NAME" env-default:"toondo"`
	SQLitePath string `env:"SQLITE_PATH" env-default:"toondo.db"`
}

type SessionConfig struct {
	Secret    string `env:"SESSION_SECRET" env-default:"default-secret-key-change-me"`
	Store     string `env:"SESSION_STORE" env-default:"cookie"`
	RedisHost string `env:"REDIS_HOST" env-default:"localhost"`
	RedisPort string `env:"REDIS_PORT" env-default:"6379"`
	MaxAge    int    `env:"SESSION_MAX_AGE" env-default:"604800"`
}

type OpenAIConfig struct {
	APIKey string `env:"OPENAI_API_KEY" env-default:""`
	Model  string `env:"OPENAI_MODEL" env-default:"gpt-4o"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	cfg := new(Config)
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown env: %s", c.Env)
	}

	switch c.Database.Driver {
	case DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("unknown database driver: %s", c.Database.Driver)
	}

	switch c.Session.Store {
	case SessionStoreCookie, SessionStoreRedis:
	default:
		return fmt.Errorf("unknown session store: %s", c.Session.Store)
	}

	return nil
}

// IsProduction reports whether cookies should be marked secure.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProd || c.GinMode == "release"
}
