// Package httpx provides HTTP request and response utilities shared by all
// handlers. Every outward-facing result uses a uniform envelope.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gatewarden/gatewarden/internal/shared"
)

// Envelope is the uniform response shape for every endpoint.
type Envelope struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Data       any                 `json:"data,omitempty"`
	Errors     []shared.FieldError `json:"errors,omitempty"`
	Page       *int                `json:"page,omitempty"`
	Limit      *int                `json:"limit,omitempty"`
	TotalData  *int                `json:"total_data,omitempty"`
	TotalPages *int                `json:"total_pages,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// OK sends a success envelope with the given payload.
func OK(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// Paginated sends a success envelope carrying list metadata.
func Paginated(w http.ResponseWriter, message string, data any, p shared.Pagination) {
	JSON(w, http.StatusOK, Envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Page:       &p.Page,
		Limit:      &p.Limit,
		TotalData:  &p.TotalData,
		TotalPages: &p.TotalPages,
	})
}

// Fail sends a failure envelope with the given message.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: false, Message: message})
}

// DecodeJSON decodes the JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return shared.ErrBadRequest
		}
		return err
	}
	return nil
}
