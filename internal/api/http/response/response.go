// Package response writes the JSON envelope every endpoint answers with.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dtroode/taskboard-server/internal/apperrors"
	"github.com/dtroode/taskboard-server/internal/logger"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes value with the given status code.
func JSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// Success writes a successful envelope.
func Success(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// Error writes err as a failed envelope. Errors without an APIError in their
// chain are logged and reported as a generic internal error.
func Error(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	apiErr, ok := apperrors.As(err)
	if !ok {
		apiErr = apperrors.NewErrInternalServerError(err)
	}

	if apiErr.Kind == apperrors.KindInternal && log != nil {
		log.Error("HTTP: request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err.Error())
	}

	JSON(w, apiErr.HTTPStatus(), Envelope{Success: false, Message: apiErr.Message})
}
