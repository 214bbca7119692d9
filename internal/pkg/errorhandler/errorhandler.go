package errorhandler

import (
	"context"
	"net/http"

	"github.com/payflow/payflow-api/internal/pkg/logger"
	"github.com/payflow/payflow-api/internal/pkg/response"
)

// HandleError logs the error with the request-scoped logger and writes the
// error envelope. 5xx are logged at error level, the rest at warn.
func HandleError(ctx context.Context, w http.ResponseWriter, status int, code, message string, err error) {
	l := logger.FromContext(ctx)
	event := l.Warn()
	if status >= http.StatusInternalServerError {
		event = l.Error()
	}
	if err != nil {
		event = event.Err(err)
	}
	event.
		Str("error_code", code).
		Int("status_code", status).
		Msg(message)

	response.Error(w, status, code, message)
}

// Internal logs err and responds with a generic 500.
func Internal(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	logger.FromContext(ctx).Error().Err(err).Msg(msg)
	response.InternalError(w)
}

// ValidationFailed logs field errors and responds with 422.
func ValidationFailed(ctx context.Context, w http.ResponseWriter, fieldErrors map[string]string) {
	logger.FromContext(ctx).Debug().
		Interface("validation_errors", fieldErrors).
		Msg("Validation error")
	response.ValidationError(w, fieldErrors)
}

// LogDatabaseError logs database errors with context
func LogDatabaseError(ctx context.Context, operation string, err error) {
	logger.FromContext(ctx).Error().
		Str("operation", operation).
		Err(err).
		Msg("Database error")
}
