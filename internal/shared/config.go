package shared

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"prod"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	MetricsAddr string `env:"METRICS_ADDR"`
	Store       string `env:"STORE" envDefault:"mysql"`

	// client IPs come from forwarding headers only when set
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS"`

	MySQL MySQL `envPrefix:"MYSQL_"`
	Redis Redis `envPrefix:"REDIS_"`

	CacheTTLSeconds int `env:"CACHE_TTL_SECONDS" envDefault:"300"`

	JWTSecret  string        `env:"JWT_SECRET"`
	JWTTTL     time.Duration `env:"JWT_TTL" envDefault:"1h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`

	EmailDomain string `env:"EMAIL_DOMAIN" envDefault:"@queensu.ca"`
	BackendURL  string `env:"BACKEND_URL" envDefault:"http://localhost:8080"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	Mail Mail

	ModerationExtraWords []string `env:"MODERATION_EXTRA_WORDS" envSeparator:","`
	AuthRatePerMinute    int      `env:"AUTH_RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	SeedWorkers          int      `env:"SEED_WORKERS" envDefault:"4"`
}

type MySQL struct {
	DSN          string        `env:"DSN" envDefault:"root:root@tcp(localhost:3306)/qrate?charset=utf8mb4"`
	MaxOpenConns int           `env:"MAX_OPEN_CONNS" envDefault:"50"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"2500ms"`
}

type Redis struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type Mail struct {
	SendGridKey  string `env:"SENDGRID_API_KEY"`
	SendGridHost string `env:"SENDGRID_HOST" envDefault:"https://api.sendgrid.com"`
	From         string `env:"MAIL_FROM" envDefault:"no-reply@qrate.app"`
	FromName     string `env:"MAIL_FROM_NAME" envDefault:"QRate"`
	RPS          int    `env:"MAIL_RPS" envDefault:"5"`
}

func (c Config) CacheTTL() time.Duration { return time.Duration(c.CacheTTLSeconds) * time.Second }

func (c Config) Dev() bool { return c.AppEnv == "dev" }

// Load reads an optional .env file, then the process environment.
// Variables already set in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

func Parse() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	if err := c.validate(); err != nil {
		return Config{}, err
	}

	if c.Mail.SendGridKey == "" {
		log.Warn().Msg("SENDGRID_API_KEY is empty; verification mail will be logged")
	}
	return c, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case StoreMySQL, StoreMemory:
	default:
		return fmt.Errorf("STORE must be %q or %q, got %q", StoreMySQL, StoreMemory, c.Store)
	}
	if c.JWTSecret == "" {
		if !c.Dev() {
			return errors.New("JWT_SECRET is required outside dev")
		}
		log.Warn().Msg("JWT_SECRET is empty; using an insecure dev secret")
		c.JWTSecret = "dev-secret-change-me"
	}
	if !strings.HasPrefix(c.EmailDomain, "@") {
		c.EmailDomain = "@" + c.EmailDomain
	}
	c.BackendURL = strings.TrimRight(c.BackendURL, "/")
	c.FrontendURL = strings.TrimRight(c.FrontendURL, "/")
	return nil
}
