package middleware

import (
	"strconv"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// TelemetryMiddleware attaches a Sentry hub to every request and re-panics
// after reporting so gin.Recovery still answers 500.
func TelemetryMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic: true,
	})
}

// RecordError reports an infrastructure failure on the request's Sentry hub.
// It is a no-op when Sentry is not configured.
func RecordError(c *gin.Context, err error) {
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("route", c.FullPath())
			if v, ok := c.Get(ContextUserID); ok {
				if id, ok := v.(int); ok {
					scope.SetUser(sentry.User{ID: strconv.Itoa(id)})
				}
			}
			hub.CaptureException(err)
		})
		if span := sentry.TransactionFromContext(c.Request.Context()); span != nil {
			span.Status = sentry.SpanStatusInternalError
		}
	}
	_ = c.Error(err)
}
