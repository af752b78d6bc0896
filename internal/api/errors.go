package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
	"github.com/listenupapp/catalog-server/internal/store"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return &APIError{
					status:  domainErr.HTTPStatus(),
					Code:    string(domainErr.Code),
					Message: domainErr.Message,
					Details: domainErr.Details,
				}
			}

			if isNotFoundError(err) {
				return &APIError{
					status:  http.StatusNotFound,
					Code:    string(domainerrors.CodeNotFound),
					Message: err.Error(),
				}
			}
		}

		// huma reports schema violations as 422; this API reports every
		// invalid request as 400 VALIDATION.
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}

		return &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
			Details: fieldErrors(errs),
		}
	}
}

// isNotFoundError checks for store "not found" errors that escaped a service.
func isNotFoundError(err error) bool {
	var storeErr *store.Error
	return errors.As(err, &storeErr) && storeErr.HTTPCode() == http.StatusNotFound
}

// fieldErrors converts huma's per-location details. It returns nil, not an
// empty slice, so the details field is omitted when there are none.
func fieldErrors(errs []error) any {
	var out []domainerrors.FieldError
	for _, err := range errs {
		var detail *huma.ErrorDetail
		if errors.As(err, &detail) {
			out = append(out, domainerrors.FieldError{Field: detail.Location, Message: detail.Message})
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(domainerrors.CodeValidation)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusMethodNotAllowed:
		return string(domainerrors.CodeMethodNotAllowed)
	case http.StatusConflict:
		return string(domainerrors.CodeConflict)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimited)
	default:
		return string(domainerrors.CodeInternal)
	}
}
