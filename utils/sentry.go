package utils

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
)

// LogAndReportSentryError logs the error with its stack, then sends it to sentry tagged with
// the caller. Cancellations are only logged.
func LogAndReportSentryError(ctx context.Context, err error) {
	logger := LoggerFromContext(ctx)
	logger.ErrorContext(ctx, fmt.Sprintf("%+v", err))

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		logger.DebugContext(ctx, fmt.Sprintf("Deadline exceeded or context canceled: %v", err))
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		if creds, found := CredentialsFromCtx(ctx); found {
			scope.SetTag("role", creds.Role.String())
			identity := creds.ActorIdentity
			switch {
			case identity.SocioId != "":
				scope.SetUser(sentry.User{ID: "socio:" + identity.SocioId, Name: identity.Name})
			case identity.UserId != "":
				scope.SetUser(sentry.User{ID: identity.UserId, Email: identity.Email, Name: identity.Name})
			}
		}
		hub.CaptureException(err)
	})
}
