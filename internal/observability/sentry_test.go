package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whisperbox/internal/config"
)

func TestInitSentry_Disabled(t *testing.T) {
	enabled, err := InitSentry(config.SentryConfig{}, "test")
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestInitSentry_BadDSN(t *testing.T) {
	_, err := InitSentry(config.SentryConfig{DSN: "::not a dsn"}, "test")
	assert.Error(t, err)
}

func TestCaptureError(t *testing.T) {
	var events []*sentry.Event
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn: "https://key@sentry.example.com/1",
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			events = append(events, event)
			return nil
		},
	})
	require.NoError(t, err)
	hub := sentry.NewHub(client, sentry.NewScope())
	ctx := sentry.SetHubOnContext(context.Background(), hub)

	AddBreadcrumb(ctx, "sweeper", "sweep started", sentry.LevelInfo)
	CaptureError(ctx, "sweeper", errors.New("db down"))

	require.Len(t, events, 1)
	event := events[0]
	assert.Equal(t, "sweeper", event.Tags["component"])
	require.NotEmpty(t, event.Exception)
	assert.Equal(t, "db down", event.Exception[0].Value)
	require.Len(t, event.Breadcrumbs, 1)
	assert.Equal(t, "sweep started", event.Breadcrumbs[0].Message)
}
