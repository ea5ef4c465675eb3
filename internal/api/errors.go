package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/ArturoRiosMock/CRMAIRE/internal/errors"
	"github.com/ArturoRiosMock/CRMAIRE/internal/store"
)

// APIError is the error body of every failed request. The message is
// rendered under "error", matching what browser clients read.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Message string `json:"error" doc:"Human-readable error message"`
	Code    string `json:"code,omitempty" doc:"Machine-readable error code"`
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

// RegisterErrorHandler makes huma render domain and store errors as APIError.
// Call it after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			if apiErr, ok := fromError(err); ok {
				return apiErr
			}
		}

		// huma's own request validation errors carry field details.
		var details []string
		for _, err := range errs {
			if err != nil {
				details = append(details, err.Error())
			}
		}
		apiErr := &APIError{
			status:  status,
			Code:    string(statusToCode(status)),
			Message: message,
		}
		if len(details) > 0 {
			apiErr.Details = details
		}
		return apiErr
	}
}

// fromError converts domain and store errors. Other errors are not matched.
func fromError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return &APIError{
			status:  domainErr.HTTPStatus(),
			Code:    string(domainErr.Code),
			Message: domainErr.Message,
			Details: domainErr.Details,
		}, true
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		return &APIError{
			status:  storeErr.HTTPCode(),
			Code:    string(statusToCode(storeErr.HTTPCode())),
			Message: storeErr.Message,
		}, true
	}
	return nil, false
}

// toAPIError turns any handler error into a StatusError. Unknown errors
// become a 500 carrying fallback as the message.
func toAPIError(err error, fallback string) *APIError {
	if apiErr, ok := fromError(err); ok {
		return apiErr
	}
	return &APIError{
		status:  http.StatusInternalServerError,
		Code:    string(domainerrors.CodeInternal),
		Message: fallback,
	}
}

// statusToCode maps HTTP status codes to domain error codes.
func statusToCode(status int) domainerrors.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domainerrors.CodeValidation
	case http.StatusNotFound:
		return domainerrors.CodeNotFound
	case http.StatusConflict:
		return domainerrors.CodeConflict
	case http.StatusServiceUnavailable:
		return domainerrors.CodeUnavailable
	default:
		return domainerrors.CodeInternal
	}
}
