// AngelaMos | 2026
// config.go

package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	Auth      AuthConfig      `koanf:"auth"`
	JWT       JWTConfig       `koanf:"jwt"`
	Mail      MailConfig      `koanf:"mail"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

// AuthConfig carries the verification-challenge parameters. They are
// explicit fields handed to the token codec at construction so tests can
// inject deterministic values; nothing reads the environment at call time.
type AuthConfig struct {
	VerificationMode   string        `koanf:"verification_mode"`
	VerificationExpiry time.Duration `koanf:"verification_expiry"`
	BaseURL            string        `koanf:"base_url"`
}

type JWTConfig struct {
	Secret   string        `koanf:"secret"`
	Expire   time.Duration `koanf:"expire"`
	Issuer   string        `koanf:"issuer"`
	Audience string        `koanf:"audience"`
}

type MailConfig struct {
	Driver    string `koanf:"driver"`
	Host      string `koanf:"host"`
	Port      int    `koanf:"port"`
	Username  string `koanf:"username"`
	Password  string `koanf:"password"`
	FromName  string `koanf:"from_name"`
	FromEmail string `koanf:"from_email"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

var (
	cfg  *Config
	once sync.Once
)

func Load(configPath string) (*Config, error) {
	var loadErr error

	once.Do(func() {
		cfg, loadErr = load(configPath)
	})

	if loadErr != nil {
		return nil, loadErr
	}

	return cfg, nil
}

func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call Load() first")
	}
	return cfg
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	// Legacy knob kept for parity with older deployments: expiry given as a
	// bare minute count instead of a duration string.
	if minutes := k.Int("auth.verification_expiry_minutes"); minutes > 0 {
		if err := k.Set(
			"auth.verification_expiry",
			(time.Duration(minutes) * time.Minute).String(),
		); err != nil {
			return nil, fmt.Errorf("set verification expiry: %w", err)
		}
	}

	c := &Config{}
	if err := k.Unmarshal("", c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "Identity Service",
		"app.version":     "1.0.0",
		"app.environment": "development",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",

		"redis.pool_size":      10,
		"redis.min_idle_conns": 5,

		"auth.verification_mode":   "otp",
		"auth.verification_expiry": "15m",
		"auth.base_url":            "http://localhost:3000",

		"jwt.expire":   "168h",
		"jwt.issuer":   "identity-service",
		"jwt.audience": "identity-service-api",

		"mail.driver":    "console",
		"mail.port":      587,
		"mail.from_name": "Identity Service",

		"rate_limit.requests": 100,
		"rate_limit.window":   "1m",
		"rate_limit.burst":    20,

		"cors.allowed_origins": []string{"http://localhost:3000"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "identity-service",
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                      "database.url",
	"REDIS_URL":                         "redis.url",
	"ENVIRONMENT":                       "app.environment",
	"HOST":                              "server.host",
	"PORT":                              "server.port",
	"LOG_LEVEL":                         "log.level",
	"LOG_FORMAT":                        "log.format",
	"APP_BASE_URL":                      "auth.base_url",
	"EMAIL_VERIFICATION_MODE":           "auth.verification_mode",
	"EMAIL_VERIFICATION_EXPIRY_MINUTES": "auth.verification_expiry_minutes",
	"JWT_SECRET":                        "jwt.secret",
	"JWT_EXPIRES_IN":                    "jwt.expire",
	"JWT_ISSUER":                        "jwt.issuer",
	"JWT_AUDIENCE":                      "jwt.audience",
	"MAIL_DRIVER":                       "mail.driver",
	"SMTP_HOST":                         "mail.host",
	"SMTP_PORT":                         "mail.port",
	"SMTP_USER":                         "mail.username",
	"SMTP_PASS":                         "mail.password",
	"SMTP_NAME":                         "mail.from_name",
	"SMTP_EMAIL":                        "mail.from_email",
	"RATE_LIMIT_REQUESTS":               "rate_limit.requests",
	"RATE_LIMIT_WINDOW":                 "rate_limit.window",
	"RATE_LIMIT_BURST":                  "rate_limit.burst",
	"OTEL_ENDPOINT":                     "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT":       "otel.endpoint",
	"OTEL_SERVICE_NAME":                 "otel.service_name",
	"OTEL_ENABLED":                      "otel.enabled",
	"OTEL_INSECURE":                     "otel.insecure",
	"OTEL_SAMPLE_RATE":                  "otel.sample_rate",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

func validate(c *Config) error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Auth.VerificationMode != "otp" && c.Auth.VerificationMode != "token" {
		return fmt.Errorf(
			"auth.verification_mode must be \"otp\" or \"token\", got %q",
			c.Auth.VerificationMode,
		)
	}

	if c.Auth.VerificationExpiry <= 0 {
		return fmt.Errorf("auth.verification_expiry must be positive")
	}

	if c.Auth.BaseURL == "" {
		return fmt.Errorf("auth.base_url is required")
	}

	switch c.Mail.Driver {
	case "console":
	case "smtp":
		if c.Mail.Host == "" {
			return fmt.Errorf("SMTP_HOST is required when mail.driver is smtp")
		}
		if c.Mail.FromEmail == "" {
			return fmt.Errorf("SMTP_EMAIL is required when mail.driver is smtp")
		}
	default:
		return fmt.Errorf(
			"mail.driver must be \"console\" or \"smtp\", got %q",
			c.Mail.Driver,
		)
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.App.Environment == "production" {
		if c.Otel.Enabled && c.Otel.Insecure {
			return fmt.Errorf("OTEL_INSECURE must be false in production")
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
