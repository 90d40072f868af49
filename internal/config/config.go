package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix         = "WHISPERBOX_"
	defaultConfigPath = "config/config.yaml"
	resetPasswordPath = "reset-password"
)

type AppConfig struct {
	// BaseURL is the public address of the web client. Links in emails are
	// built from it, never from request input.
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
}

// ResetPasswordURL is the client page linked from password reset emails, or
// "" when no base URL is configured.
func (a AppConfig) ResetPasswordURL() string {
	if a.BaseURL == "" {
		return ""
	}
	link, err := url.JoinPath(a.BaseURL, resetPasswordPath)
	if err != nil {
		return ""
	}
	return link
}

type ServerConfig struct {
	Port int    `yaml:"port" env:"PORT"`
	Mode string `yaml:"mode" env:"MODE"` // gin mode: debug, release, test
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DRIVER"` // postgres | memory
	DSN    string `yaml:"url" env:"URL"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

type EmailConfig struct {
	Provider       string `yaml:"provider" env:"PROVIDER"` // smtp | sendgrid | log
	SMTPHost       string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort       int    `yaml:"smtp_port" env:"SMTP_PORT"`
	SMTPUser       string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPassword   string `yaml:"smtp_password" env:"SMTP_PASSWORD"`
	SendgridAPIKey string `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
	FromEmail      string `yaml:"from_email" env:"FROM_EMAIL"`
	FromName       string `yaml:"from_name" env:"FROM_NAME"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"TOKEN_TTL"`
}

type OTPConfig struct {
	TTL           time.Duration `yaml:"ttl" env:"TTL"`
	SweepSchedule string        `yaml:"sweep_schedule" env:"SWEEP_SCHEDULE"`
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests" env:"REQUESTS"`
	Window   time.Duration `yaml:"window" env:"WINDOW"`
}

type MessagesConfig struct {
	MaxLength int `yaml:"max_length" env:"MAX_LENGTH"`
}

type SentryConfig struct {
	DSN         string `yaml:"dsn" env:"DSN"`
	Environment string `yaml:"environment" env:"ENVIRONMENT"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
}

type Config struct {
	Env       string          `yaml:"env" env:"ENV"`
	App       AppConfig       `yaml:"app" envPrefix:"APP_"`
	Server    ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	Database  DatabaseConfig  `yaml:"database" envPrefix:"DATABASE_"`
	Redis     RedisConfig     `yaml:"redis" envPrefix:"REDIS_"`
	Email     EmailConfig     `yaml:"email" envPrefix:"EMAIL_"`
	Auth      AuthConfig      `yaml:"auth" envPrefix:"AUTH_"`
	OTP       OTPConfig       `yaml:"otp" envPrefix:"OTP_"`
	RateLimit RateLimitConfig `yaml:"ratelimit" envPrefix:"RATELIMIT_"`
	Messages  MessagesConfig  `yaml:"messages" envPrefix:"MESSAGES_"`
	Sentry    SentryConfig    `yaml:"sentry" envPrefix:"SENTRY_"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`

	// ConfigPath points at the YAML file; only settable from the environment.
	ConfigPath string `yaml:"-" env:"CONFIG"`
}

// Defaults returns the values used for anything neither the environment nor
// the YAML file set.
func Defaults() *Config {
	return &Config{
		Env:      "development",
		Server:   ServerConfig{Port: 8080, Mode: "release"},
		Database: DatabaseConfig{Driver: "postgres"},
		Email: EmailConfig{
			Provider: "log",
			SMTPPort: 587,
			FromName: "Whisperbox",
		},
		Auth:      AuthConfig{TokenTTL: 24 * time.Hour},
		OTP:       OTPConfig{TTL: 30 * time.Minute, SweepSchedule: "@every 15m"},
		RateLimit: RateLimitConfig{Requests: 20, Window: time.Minute},
		Messages:  MessagesConfig{MaxLength: 1000},
		Log:       LogConfig{Level: "info"},
	}
}

// Load builds the configuration from the environment (optionally seeded from
// a .env file), the YAML file and Defaults, in that order of precedence.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	envCfg, err := parseEnv()
	if err != nil {
		return nil, err
	}

	path := envCfg.ConfigPath
	if path == "" {
		path = defaultConfigPath
	}
	fileCfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	return build(envCfg, fileCfg)
}

func build(layers ...*Config) (*Config, error) {
	cfg := new(Config)
	for _, layer := range append(layers, Defaults()) {
		if layer == nil {
			continue
		}
		if err := mergo.Merge(cfg, layer); err != nil {
			return nil, fmt.Errorf("merge config: %w", err)
		}
	}
	return cfg, cfg.Validate()
}

func parseEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	return cfg, nil
}

// loadFile reads the YAML config. A missing file is not an error.
func loadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return parseYAML(f)
}

func parseYAML(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse yaml config: %w", err)
	}
	return &cfg, nil
}
