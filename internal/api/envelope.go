package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/catalog-server/internal/http/response"
)

// EnvelopeVersion is the "v" field of every response envelope.
const EnvelopeVersion = response.Version

// EnvelopeTransformer wraps every huma response body in the catalog
// envelope: {v, success, data} on success and {v, success, code, message,
// details} on error.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch body := v.(type) {
	case *APIError:
		return response.WrapError(body.Code, body.Message, body.Details), nil
	case *huma.ErrorModel:
		var details any
		if len(body.Errors) > 0 {
			details = body.Errors
		}
		return response.WrapError(statusToCode(body.Status), body.Detail, details), nil
	case response.Envelope, response.ErrorEnvelope:
		return v, nil
	default:
		return response.Wrap(v), nil
	}
}
