// Package http exposes the JSON API.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"kesef/internal/core"
	"kesef/internal/log"
)

// JSONResponseBuilder assembles a {"success": ..., ...} response body.
type JSONResponseBuilder struct {
	statusCode int
	fields     map[string]any
	headers    map[string]string
}

// NewJSONResponse starts a successful 200 response.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		fields:     map[string]any{"success": true},
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Field(name string, value any) *JSONResponseBuilder {
	b.fields[name] = value
	return b
}

func (b *JSONResponseBuilder) Message(msg string) *JSONResponseBuilder {
	return b.Field("message", msg)
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.fields)
}

// ErrorResponse is a failed response carrying message.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	b := NewJSONResponse().Status(statusCode).Message(message)
	b.fields["success"] = false
	return b
}

var badRequestErrors = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidDate,
	core.ErrInvalidType,
	core.ErrDescriptionTooLong,
	core.ErrInvalidLocation,
	core.ErrInvalidName,
	core.ErrInvalidEmail,
	core.ErrWeakPassword,
	core.ErrInvalidGoal,
	core.ErrInvalidFrequency,
}

// statusFor maps a service error to a status code and a client-safe
// message. Unknown errors become 500 without detail.
func statusFor(err error) (int, string) {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, err.Error()
		}
	}
	switch {
	case errors.Is(err, core.ErrMissingUser):
		return http.StatusUnauthorized, "user id is required"
	case errors.Is(err, core.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden, "access denied"
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, core.ErrEmailTaken):
		return http.StatusConflict, "email is already registered"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// writeError logs server-side failures and writes the mapped response.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(),
			"Request failed", err, log.ErrorTypeInternal, op, nil)
	}
	ErrorResponse(status, msg).Write(w)
}
