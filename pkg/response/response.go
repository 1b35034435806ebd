// Package response writes the API's JSON envelope.
//
// Every endpoint answers with the same shape:
//
//	{"success": true,  "message": "...", "data": ...}
//	{"success": false, "message": "...", "error": "..."}
package response

import (
	"encoding/json"
	"net/http"

	"github.com/chefbazaar/backend/pkg/apperr"
)

type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 envelope with data.
func Success(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, envelope{Success: true, Data: data})
}

// SuccessMessage sends a 200 envelope with a message and data.
func SuccessMessage(w http.ResponseWriter, message string, data interface{}) {
	write(w, http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

// Created sends a 201 envelope with a message and data.
func Created(w http.ResponseWriter, message string, data interface{}) {
	write(w, http.StatusCreated, envelope{Success: true, Message: message, Data: data})
}

// Error sends an error envelope with the given status and message.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Success: false, Message: message})
}

// FromError translates a service error into the envelope the API contract
// promises, using the apperr taxonomy for the status code.
func FromError(w http.ResponseWriter, message string, err error) {
	status := apperr.HTTPStatus(err)
	body := envelope{Success: false, Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	write(w, status, body)
}

// ValidationError sends a 400 with field-level error messages.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusBadRequest, envelope{
		Success: false,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// Unauthorized sends the 401 the auth gate emits.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized Access!")
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Forbidden"
	}
	Error(w, http.StatusForbidden, message)
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Not found"
	}
	Error(w, http.StatusNotFound, message)
}
