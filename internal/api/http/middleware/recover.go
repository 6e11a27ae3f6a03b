package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/dtroode/taskboard-server/internal/api/http/response"
	"github.com/dtroode/taskboard-server/internal/logger"
)

// Recover turns a panic into a 500 envelope. Panic details are logged, never
// sent to the client.
func Recover(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("HTTP: panic recovered",
					"method", r.Method,
					"path", r.URL.Path,
					"panic", fmt.Sprint(rec),
					"stack", string(debug.Stack()))
				response.Error(w, r, nil, fmt.Errorf("panic: %v", rec))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
