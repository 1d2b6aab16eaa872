package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET, required"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,  default=5m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL, default=24h"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=*"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Bootstrap BootstrapConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017/?replicaSet=rs0"`
	Database string `env:"MONGO_DB,  default=report_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// BootstrapConfig names an admin account ensured at startup. Both fields must
// be set for it to take effect.
type BootstrapConfig struct {
	AdminEmail    string `env:"BOOTSTRAP_ADMIN_EMAIL"`
	AdminPassword string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
}

// Enabled reports whether a bootstrap admin was configured.
func (b BootstrapConfig) Enabled() bool {
	return b.AdminEmail != "" && b.AdminPassword != ""
}

// IsDevelopment reports whether the service runs with ENV=development.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := load(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, fmt.Errorf("token lifetimes must be positive")
	}
	return &cfg, nil
}
