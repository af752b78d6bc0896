// Package response writes the JSON envelope used by every catalog endpoint.
// Huma operations get it through the API's response transformer; plain
// net/http handlers (rate limiting, panics, unmatched routes) use the
// writers here so clients see one shape either way.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
)

// Version is the envelope version reported in the "v" field.
const Version = 1

// Envelope wraps a successful response body.
type Envelope struct {
	V       int  `json:"v" doc:"Envelope version"`
	Success bool `json:"success" doc:"Always true"`
	Data    any  `json:"data" doc:"Response payload"`
}

// ErrorEnvelope wraps an error response body.
type ErrorEnvelope struct {
	V       int    `json:"v" doc:"Envelope version"`
	Success bool   `json:"success" doc:"Always false"`
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Wrap returns the success envelope for data.
func Wrap(data any) Envelope {
	return Envelope{V: Version, Success: true, Data: data}
}

// WrapError returns the error envelope.
func WrapError(code, message string, details any) ErrorEnvelope {
	return ErrorEnvelope{V: Version, Success: false, Code: code, Message: message, Details: details}
}

func write(w http.ResponseWriter, status int, body any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil && logger != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// JSON writes data in a success envelope.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	write(w, status, Wrap(data), logger)
}

// Error writes an error envelope with the given status and code.
func Error(w http.ResponseWriter, status int, code domainerrors.Code, message string, logger *slog.Logger) {
	write(w, status, WrapError(string(code), message, nil), logger)
}

// NotFound writes a 404 for routes that match no operation.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusNotFound, domainerrors.CodeNotFound, message, logger)
}

// MethodNotAllowed writes a 405.
func MethodNotAllowed(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusMethodNotAllowed, domainerrors.CodeMethodNotAllowed, message, logger)
}

// TooManyRequests writes a 429 with a Retry-After header rounded up to
// whole seconds.
func TooManyRequests(w http.ResponseWriter, retryAfter time.Duration, logger *slog.Logger) {
	secs := int((retryAfter + time.Second - 1) / time.Second)
	w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
	Error(w, http.StatusTooManyRequests, domainerrors.CodeRateLimited, "too many requests, try again later", logger)
}

// InternalError writes a 500.
func InternalError(w http.ResponseWriter, logger *slog.Logger) {
	Error(w, http.StatusInternalServerError, domainerrors.CodeInternal, "internal server error", logger)
}

// HandleError writes err using its domain code and status. Errors without
// a code become a generic 500 and are logged.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if domainerrors.As(err, &domainErr) {
		write(w, domainErr.HTTPStatus(), WrapError(string(domainErr.Code), domainErr.Message, domainErr.Details), logger)
		return
	}

	if logger != nil {
		logger.Error("unhandled error", "error", err)
	}
	InternalError(w, logger)
}
