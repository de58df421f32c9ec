package config

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth      AuthConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Cascade   CascadeConfig
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=24h"`
	// Empty disables admin self-registration.
	AdminRegistrationKey string `env:"ADMIN_REGISTRATION_KEY"`
}

type MongoConfig struct {
	URI          string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database     string        `env:"MONGO_DB,      default=eventboard"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT, default=5s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,        default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=10"`
}

type RateLimitConfig struct {
	Max    int           `env:"RATE_LIMIT_MAX,    default=20"`
	Window time.Duration `env:"RATE_LIMIT_WINDOW, default=1m"`
	// CIDRs of reverse proxies whose X-Forwarded-For is believed. Empty
	// means clients are keyed by the socket peer address.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// ProxyNets parses TrustedProxies. A bare IP is taken as a single host.
func (r RateLimitConfig) ProxyNets() ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(r.TrustedProxies))
	for _, raw := range r.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			ip := net.ParseIP(raw)
			if ip == nil {
				return nil, fmt.Errorf("TRUSTED_PROXIES: invalid address %q", raw)
			}
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			raw = fmt.Sprintf("%s/%d", raw, bits)
		}
		_, n, err := net.ParseCIDR(raw)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		nets = append(nets, n)
	}
	return nets, nil
}

type CascadeConfig struct {
	Workers     int `env:"CASCADE_WORKERS,      default=4"`
	MaxAttempts int `env:"CASCADE_MAX_ATTEMPTS, default=5"`
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if len(cfg.Auth.JWTSecret) < 16 {
		return nil, fmt.Errorf("config: JWT_SECRET must be at least 16 bytes")
	}
	if _, err := cfg.RateLimit.ProxyNets(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
