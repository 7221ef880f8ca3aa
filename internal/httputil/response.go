package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// MaxRequestBodyBytes caps inbound JSON bodies. Model uploads are base64 text,
// so the cap is generous.
const MaxRequestBodyBytes = 64 << 20

// ErrorResponse is the error body returned by every handler.
type ErrorResponse struct {
	Detail any `json:"detail"`
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes {"detail": detail}.
func WriteError(w http.ResponseWriter, status int, detail any) {
	WriteJSON(w, status, ErrorResponse{Detail: detail})
}

// BadRequest writes a 400.
func BadRequest(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusBadRequest, msg)
}

// InternalError writes a 500.
func InternalError(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusInternalServerError, msg)
}

// ServiceUnavailable writes a 503.
func ServiceUnavailable(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusServiceUnavailable, msg)
}

// DecodeJSON decodes the request body into v, writing a 400 and returning
// false on failure.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		BadRequest(w, "request body required")
		return false
	}

	body, err := ReadAllStrict(r.Body, MaxRequestBodyBytes)
	if err != nil {
		WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		BadRequest(w, "request body required")
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		BadRequest(w, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	return true
}
