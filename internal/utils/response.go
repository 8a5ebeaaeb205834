package utils

import (
	"encoding/json"
	"log"
	"net/http"
)

// Payload is the envelope every endpoint answers with: a success flag, a
// human-readable message, and an optional data object. Internal error detail
// never goes into Message; it is logged server-side instead.
type Payload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSONResponse writes the envelope with the given status code.
func JSONResponse(w http.ResponseWriter, status int, payload Payload) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}
