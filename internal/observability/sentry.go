package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"whisperbox/internal/config"
)

const flushTimeout = 2 * time.Second

// InitSentry configures the global Sentry client. It returns false without
// error when no DSN is configured.
func InitSentry(cfg config.SentryConfig, environment string) (bool, error) {
	if cfg.DSN == "" {
		return false, nil
	}
	if cfg.Environment != "" {
		environment = cfg.Environment
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      environment,
		AttachStacktrace: true,
		TracesSampleRate: 0.1,
	})
	if err != nil {
		return false, fmt.Errorf("init sentry: %w", err)
	}
	return true, nil
}

func Flush() {
	sentry.Flush(flushTimeout)
}

// CaptureError reports err from code running outside an HTTP request.
func CaptureError(ctx context.Context, component string, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", component)
		hub.CaptureException(err)
	})
}

func AddBreadcrumb(ctx context.Context, category, message string, level sentry.Level) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.AddBreadcrumb(&sentry.Breadcrumb{
		Category:  category,
		Message:   message,
		Level:     level,
		Timestamp: time.Now(),
	}, nil)
}
