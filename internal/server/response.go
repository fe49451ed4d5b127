package server

import (
	"encoding/json"
	"net/http"
)

// Success is the envelope written for successful requests.
type Success struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Failure is the envelope written for rejected or failed requests.
type Failure struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// RespondJSON writes payload as JSON with the given status code.
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// RespondSuccess writes a [Success] envelope.
func RespondSuccess(w http.ResponseWriter, status int, message string, data any) {
	RespondJSON(w, status, Success{Status: status, Message: message, Data: data})
}

// RespondError writes a [Failure] envelope. data is omitted when nil.
func RespondError(w http.ResponseWriter, status int, message string, data any) {
	RespondJSON(w, status, Failure{Status: status, Message: message, Data: data})
}
