package resp

import (
	"encoding/json"
	"net/http"

	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/ecode"
)

// Exception represents the response structure.
type Exception struct {
	Status  int    `json:"status,omitempty"`  // HTTP status
	Code    int    `json:"code,omitempty"`    // Business code
	Message string `json:"message,omitempty"` // Message
	Errors  any    `json:"errors,omitempty"`  // Validation errors
	Data    any    `json:"data,omitempty"`    // Response data
}

// Success handles success responses.
func Success(w http.ResponseWriter, data ...any) {
	WithStatusCode(w, http.StatusOK, data...)
}

// WithStatusCode handles success responses with custom status code.
func WithStatusCode(w http.ResponseWriter, statusCode int, data ...any) {
	var payload any
	if len(data) > 0 {
		payload = data[0]
	}
	if payload == nil {
		payload = map[string]any{"message": ecode.Text(ecode.OK)}
	}
	writeJSON(w, statusCode, payload)
}

// Fail handles failure responses.
func Fail(w http.ResponseWriter, r *Exception) {
	if r == nil {
		r = &Exception{
			Status:  http.StatusInternalServerError,
			Code:    ecode.ServerErr,
			Message: ecode.Text(ecode.ServerErr),
		}
	}

	status := r.Status
	if status == 0 {
		status = http.StatusBadRequest
	}
	code := r.Code
	if code == 0 {
		code = ecode.RequestErr
	}
	message := r.Message
	if message == "" {
		message = ecode.Text(code)
	}

	writeJSON(w, status, &Exception{
		Code:    code,
		Message: message,
		Errors:  r.Errors,
	})
}

// writeJSON writes the response with the specified status code.
func writeJSON(w http.ResponseWriter, code int, res any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		http.Error(w, "Failed to encode JSON response", http.StatusInternalServerError)
	}
}
