package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Lockout LockoutConfig
	Import  ImportConfig
}

type MongoConfig struct {
	URI             string        `env:"MONGO_URI,              default=mongodb://localhost:27017"`
	Database        string        `env:"MONGO_DB,               default=identity"`
	UsersCollection string        `env:"MONGO_USERS_COLLECTION, default=users"`
	RolesCollection string        `env:"MONGO_ROLES_COLLECTION, default=roles"`
	Timeout         time.Duration `env:"MONGO_TIMEOUT,          default=10s"`
}

// RedisConfig is optional: an empty Addr disables the create guard.
type RedisConfig struct {
	Addr          string        `env:"REDIS_ADDR"`
	Password      string        `env:"REDIS_PASSWORD"`
	DB            int           `env:"REDIS_DB,        default=0"`
	CreateLockTTL time.Duration `env:"CREATE_LOCK_TTL, default=10s"`
}

type LockoutConfig struct {
	MaxFailedAttempts int           `env:"LOCKOUT_MAX_FAILED_ATTEMPTS, default=5"`
	Duration          time.Duration `env:"LOCKOUT_DURATION,            default=5m"`
}

type ImportConfig struct {
	Workers int `env:"IMPORT_WORKERS, default=4"`
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through the given lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	return &cfg, nil
}
