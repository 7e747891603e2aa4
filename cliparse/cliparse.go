package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	BaseURL      string
	AdminKeySalt string

	// Mail relay. An empty SMTPHost means vote links are logged, not sent.
	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	MailFrom        string
	MailTimeout     time.Duration
	MailConcurrency int

	RateLimitRPS   float64
	RateLimitBurst int

	// TrustProxy makes client IPs come from X-Real-IP / X-Forwarded-For.
	// Only safe when every request passes through a proxy that sets them.
	TrustProxy bool
}

// MailEnabled reports whether an SMTP relay is configured.
func (c Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// ParseFlags validates flags and falls back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("meeting-vote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "Externally visible base URL for vote links")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")

	// Mail relay
	fs.StringVar(&cfg.SMTPHost, "smtp-host", "", "SMTP relay host")
	fs.IntVar(&cfg.SMTPPort, "smtp-port", 0, "SMTP relay port")
	fs.StringVar(&cfg.MailFrom, "mail-from", "", "Sender address")
	fs.DurationVar(&cfg.MailTimeout, "mail-timeout", 0, "SMTP dial/send timeout")
	fs.IntVar(&cfg.MailConcurrency, "mail-concurrency", 0, "Parallel notification sends")
	fs.BoolVar(&cfg.TrustProxy, "trust-proxy", false, "Take client IPs from proxy headers")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	var err error
	if cfg.Port == 0 {
		if cfg.Port, err = envInt("PORT", 5000); err != nil {
			return Config{}, err
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DatabaseSQLite
		}
	}
	cfg.DatabaseType = strings.ToLower(cfg.DatabaseType)
	if cfg.DatabaseType != DatabaseSQLite && cfg.DatabaseType != DatabasePostgres {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == DatabasePostgres {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = "file:vote.db"
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("BASE_URL")
	}
	if cfg.BaseURL == "" {
		// Render.com sets this for web services
		cfg.BaseURL = os.Getenv("RENDER_EXTERNAL_URL")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + strconv.Itoa(cfg.Port)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.SMTPHost == "" {
		cfg.SMTPHost = os.Getenv("SMTP_HOST")
	}
	if cfg.SMTPPort == 0 {
		if cfg.SMTPPort, err = envInt("SMTP_PORT", 587); err != nil {
			return Config{}, err
		}
	}
	if cfg.MailFrom == "" {
		cfg.MailFrom = os.Getenv("EMAIL_FROM")
	}
	cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
	if cfg.SMTPUsername == "" {
		cfg.SMTPUsername = cfg.MailFrom
	}
	cfg.SMTPPassword = os.Getenv("EMAIL_PASSWORD")
	if cfg.MailEnabled() && cfg.MailFrom == "" {
		return Config{}, errors.New("EMAIL_FROM required when SMTP_HOST is set")
	}

	if cfg.MailTimeout == 0 {
		cfg.MailTimeout = 15 * time.Second
		if v := os.Getenv("MAIL_TIMEOUT"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, errors.New("invalid MAIL_TIMEOUT env variable")
			}
			cfg.MailTimeout = d
		}
	}
	if cfg.MailConcurrency == 0 {
		if cfg.MailConcurrency, err = envInt("MAIL_CONCURRENCY", 1); err != nil {
			return Config{}, err
		}
	}
	if cfg.MailConcurrency < 1 {
		return Config{}, errors.New("mail concurrency must be at least 1")
	}

	cfg.RateLimitRPS = 5
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, errors.New("invalid RATE_LIMIT_RPS env variable")
		}
		cfg.RateLimitRPS = rps
	}
	if cfg.RateLimitBurst, err = envInt("RATE_LIMIT_BURST", 10); err != nil {
		return Config{}, err
	}

	if !cfg.TrustProxy {
		if v := os.Getenv("TRUST_PROXY"); v != "" {
			if cfg.TrustProxy, err = strconv.ParseBool(v); err != nil {
				return Config{}, errors.New("invalid TRUST_PROXY env variable")
			}
		}
	}

	return cfg, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}
