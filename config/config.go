package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Port     int    `env:"PORT" envDefault:"8080"`

	DBDriver string `env:"DB_DRIVER" envDefault:"postgres"`
	DBDSN    string `env:"DB_DSN"`

	JWTSecret     string        `env:"JWT_SECRET,required"`
	JWTExpiration time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`
	CookieSecret  string        `env:"COOKIE_SECRET,required"`
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"false"`

	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	PublicURL   string `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`

	SMTPHost        string        `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort        int           `env:"SMTP_PORT" envDefault:"465"`
	SMTPUsername    string        `env:"SMTP_USERNAME"`
	SMTPPassword    string        `env:"SMTP_PASSWORD"`
	SMTPSSL         bool          `env:"SMTP_SSL" envDefault:"true"`
	MailFromName    string        `env:"MAIL_FROM_NAME" envDefault:"Pixelatee"`
	MailFromAddress string        `env:"MAIL_FROM_ADDRESS" envDefault:"info@pixelatee.com"`
	MailSendTimeout time.Duration `env:"MAIL_SEND_TIMEOUT" envDefault:"30s"`

	UploadDir   string `env:"UPLOAD_DIR" envDefault:"public"`
	UploadMaxMB int64  `env:"UPLOAD_MAX_MB" envDefault:"2"`
	TemplateDir string `env:"TEMPLATE_DIR"` // empty uses the embedded layouts

	DispatchSchedule string        `env:"DISPATCH_SCHEDULE" envDefault:"*/5 * * * *"`
	DispatchLockTTL  time.Duration `env:"DISPATCH_LOCK_TTL" envDefault:"10m"`
	RedisURL         string        `env:"REDIS_URL"`

	// Optional; when set, admin emails must belong to this domain.
	AdminEmailDomain string `env:"ADMIN_EMAIL_DOMAIN"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	ExposeInternalErrors bool `env:"EXPOSE_INTERNAL_ERRORS" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the listen address.
func (c Config) ServerAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// UseRedisLock returns true if the dispatch lock should live in Redis.
func (c Config) UseRedisLock() bool {
	return c.RedisURL != ""
}

// UploadMaxBytes returns the upload size limit in bytes.
func (c Config) UploadMaxBytes() int64 {
	return c.UploadMaxMB << 20
}

// MailFrom returns the formatted sender, e.g. `"Pixelatee" <info@pixelatee.com>`.
func (c Config) MailFrom() string {
	return fmt.Sprintf("%q <%s>", c.MailFromName, c.MailFromAddress)
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if err := checkSecret("JWT_SECRET", c.JWTSecret); err != nil {
		return err
	}
	if err := checkSecret("COOKIE_SECRET", c.CookieSecret); err != nil {
		return err
	}

	switch c.DBDriver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER must be one of %s, %s, %s; got %q",
			DriverPostgres, DriverMySQL, DriverSQLite, c.DBDriver)
	}

	if c.MailSendTimeout <= 0 {
		return fmt.Errorf("MAIL_SEND_TIMEOUT must be positive")
	}
	if !strings.HasPrefix(c.FrontendURL, "http://") && !strings.HasPrefix(c.FrontendURL, "https://") {
		return fmt.Errorf("FRONTEND_URL must be an http(s) origin, got %q", c.FrontendURL)
	}
	if c.DispatchLockTTL <= c.MailSendTimeout {
		return fmt.Errorf("DISPATCH_LOCK_TTL must be longer than MAIL_SEND_TIMEOUT")
	}
	if c.UploadMaxMB <= 0 {
		return fmt.Errorf("UPLOAD_MAX_MB must be positive")
	}
	c.AdminEmailDomain = strings.TrimPrefix(strings.TrimSpace(c.AdminEmailDomain), "@")
	return nil
}
