package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/payflow/payflow-api/internal/pkg/logger"
	"github.com/payflow/payflow-api/internal/pkg/metrics"
	"github.com/payflow/payflow-api/internal/pkg/response"
)

// Recover turns a handler panic into a 500 envelope. http.ErrAbortHandler is
// re-raised so net/http can abort the connection quietly.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			metrics.HTTPPanics.Inc()
			logger.FromContext(r.Context()).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("handler panicked")
			response.InternalError(w)
		}()

		next.ServeHTTP(w, r)
	})
}
