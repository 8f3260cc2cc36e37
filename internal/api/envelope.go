package api

import (
	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/shelfieapp/shelfie-server/internal/errors"
	"github.com/shelfieapp/shelfie-server/internal/http/response"
)

// EnvelopeVersion is the version of the response envelope.
const EnvelopeVersion = response.EnvelopeVersion

// EnvelopeTransformer wraps every huma response body in the
// {v, success, data, error} envelope. Error bodies arrive as *APIError.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if len(status) > 0 && status[0] >= '4' {
		switch e := v.(type) {
		case *APIError:
			return response.Fail(response.ErrorBody{
				Code:    e.Code,
				Message: e.Message,
				Details: e.Details,
			}), nil
		case error:
			return response.Fail(response.ErrorBody{
				Code:    string(domainerrors.CodeInternal),
				Message: e.Error(),
			}), nil
		}
	}

	if env, ok := v.(response.Envelope); ok {
		return env, nil
	}
	return response.Ok(v), nil
}
