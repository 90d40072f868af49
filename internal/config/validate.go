package config

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	ErrMissingJWTSecret   = errors.New("auth.jwt_secret is required")
	ErrMissingDatabaseURL = errors.New("database.url is required for the postgres driver")
	ErrUnknownDriver      = errors.New("unknown database driver")
	ErrUnknownProvider    = errors.New("unknown email provider")
	ErrMissingSender      = errors.New("email.from_email is required")
	ErrInvalidOTPTTL      = errors.New("otp.ttl must be positive")
	ErrInvalidBaseURL     = errors.New("app.base_url must be an absolute http(s) URL")
)

func (c *Config) Validate() error {
	var errs []error

	if c.Auth.JWTSecret == "" {
		errs = append(errs, ErrMissingJWTSecret)
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.DSN == "" {
			errs = append(errs, ErrMissingDatabaseURL)
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownDriver, c.Database.Driver))
	}

	switch c.Email.Provider {
	case "smtp", "sendgrid":
		if c.Email.FromEmail == "" {
			errs = append(errs, ErrMissingSender)
		}
	case "log":
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownProvider, c.Email.Provider))
	}

	if c.App.BaseURL != "" {
		u, err := url.Parse(c.App.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.App.BaseURL))
		}
	}

	if c.OTP.TTL <= 0 {
		errs = append(errs, ErrInvalidOTPTTL)
	}

	return errors.Join(errs...)
}
