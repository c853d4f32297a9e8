package utils

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform JSON response body. Every handler reply carries a
// success flag and a message; entity payloads ride alongside under their own
// keys.
type Envelope map[string]any

// Success builds a positive envelope.
func Success(message string) Envelope {
	return Envelope{"success": true, "message": message}
}

// Failure builds a negative envelope.
func Failure(message string) Envelope {
	return Envelope{"success": false, "message": message}
}

// With attaches an extra payload key and returns the envelope for chaining.
func (e Envelope) With(key string, value any) Envelope {
	e[key] = value
	return e
}

// RespondJSON writes payload as JSON with the given status code.
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
