// Package httputil centralizes JSON response writing so every handler emits
// the same envelopes and every domain error maps to the same status.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "toursales/pkg/domain-errors"
)

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the public error envelope
// {"error": message}. Internal errors are reported with a fixed message so
// persistence details never leak to callers.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	WriteJSON(w, dErrors.ToHTTPStatus(code), map[string]string{
		"error": dErrors.MessageOf(err),
	})
}
