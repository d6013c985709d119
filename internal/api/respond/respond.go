// SPDX-License-Identifier: MIT

// Package respond writes the small JSON bodies returned by guards and handlers.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/ManuGH/siteguard/internal/log"
)

// ErrorBody is the canonical error payload: {"error": "..."}.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.L().Error().
			Err(err).
			Int(log.FieldStatus, status).
			Msg("failed to encode json response")
	}
}

// Error writes {"error": msg} with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}
