package httpx

import (
	"encoding/json"
	"net/http"
)

// Error codes shared by handlers and middleware.
const (
	CodeUnauthenticated  = "unauthenticated"
	CodeForbidden        = "forbidden"
	CodeNotFound         = "not_found"
	CodeInvalidRequest   = "invalid_request"
	CodeMissingHeaders   = "missing_headers"
	CodeInvalidSignature = "invalid_signature"
	CodeInvalidEvent     = "invalid_event"
	CodeTooLarge         = "payload_too_large"
	CodeUnavailable      = "unavailable"
	CodeInternal         = "internal_error"
)

type APIError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, APIError{Error: msg, Code: code})
}
