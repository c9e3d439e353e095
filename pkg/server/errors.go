package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	faroserrors "github.com/faroslabs/faros/pkg/errors"
	"github.com/faroslabs/faros/pkg/serializer"
)

// ErrorResponse is the JSON error envelope every failed API request
// returns.
type ErrorResponse struct {
	Code      string         `json:"code" yaml:"code"`
	Message   string         `json:"message" yaml:"message"`
	Details   map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	RequestID string         `json:"requestId" yaml:"requestId"`
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
	Retryable bool           `json:"retryable" yaml:"retryable"`
}

// HTTPStatusFromCode maps classified error codes to HTTP statuses.
func HTTPStatusFromCode(code faroserrors.ErrorCode) int {
	switch code {
	case faroserrors.ErrCodeInvalidRequest, faroserrors.ErrCodeInvalidSelector:
		return http.StatusBadRequest
	case faroserrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case faroserrors.ErrCodeNotFound:
		return http.StatusNotFound
	case faroserrors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case faroserrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case faroserrors.ErrCodeAPIUnavailable:
		return http.StatusBadGateway
	case faroserrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case faroserrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// retryableFromCode reports whether a client may usefully retry.
func retryableFromCode(code faroserrors.ErrorCode) bool {
	switch code {
	case faroserrors.ErrCodeTimeout,
		faroserrors.ErrCodeUnavailable,
		faroserrors.ErrCodeAPIUnavailable,
		faroserrors.ErrCodeRateLimitExceeded,
		faroserrors.ErrCodeInternal:
		return true
	}
	return false
}

// mergeDetails folds two detail maps, the second winning on key ties.
// Both empty collapses to nil so the field is omitted from the JSON.
func mergeDetails(a, b map[string]any) map[string]any {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	merged := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range b {
		merged[k] = v
	}
	return merged
}

// WriteError writes the error envelope with an explicit status and
// code.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code faroserrors.ErrorCode, message string, retryable bool, details map[string]any) {

	requestID := RequestIDFromContext(r.Context())
	if requestID == "" {
		requestID = uuid.New().String()
	}

	errResp := ErrorResponse{
		Code:      string(code),
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	}

	serializer.RespondJSON(w, statusCode, errResp)
}

// WriteErrorFromErr writes an envelope derived from err: classified
// errors carry their own status, message and details; anything else
// becomes an internal error with the fallback message.
func WriteErrorFromErr(w http.ResponseWriter, r *http.Request, err error, fallback string, details map[string]any) {
	var classified *faroserrors.Error
	if errors.As(err, &classified) {
		merged := mergeDetails(classified.Details, details)
		if classified.Cause != nil {
			if merged == nil {
				merged = map[string]any{}
			}
			merged["error"] = classified.Cause.Error()
		}
		WriteError(w, r, HTTPStatusFromCode(classified.Code), classified.Code,
			classified.Message, retryableFromCode(classified.Code), merged)
		return
	}

	merged := mergeDetails(details, map[string]any{"error": err.Error()})
	WriteError(w, r, http.StatusInternalServerError, faroserrors.ErrCodeInternal,
		fallback, retryableFromCode(faroserrors.ErrCodeInternal), merged)
}
