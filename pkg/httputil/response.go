package httputil

import (
	"encoding/json"
	"net/http"
)

// Envelope status values
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusError   = "error"
)

// InternalErrorMessage is the only message clients see for unexpected failures
const InternalErrorMessage = "Internal Server Error"

// Response is the JSON envelope shared by every endpoint. Payload fields are
// omitted when unset.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	User    interface{} `json:"user,omitempty"`
	Users   interface{} `json:"users,omitempty"`
	Token   string      `json:"token,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a 200 response, forcing the success status
func WriteSuccess(w http.ResponseWriter, resp Response) error {
	resp.Status = StatusSuccess
	return WriteJSON(w, http.StatusOK, resp)
}

// WriteSuccessMessage writes a 200 response carrying only a message
func WriteSuccessMessage(w http.ResponseWriter, message string) error {
	return WriteSuccess(w, Response{Message: message})
}

// WriteFailed writes a client error with the failed status
func WriteFailed(w http.ResponseWriter, code int, message string) {
	_ = WriteJSON(w, code, Response{Status: StatusFailed, Message: message})
}

// WriteValidationFailed writes a 400 carrying per-field errors
func WriteValidationFailed(w http.ResponseWriter, message string, fieldErrors interface{}) {
	_ = WriteJSON(w, http.StatusBadRequest, Response{
		Status:  StatusFailed,
		Message: message,
		Errors:  fieldErrors,
	})
}

// WriteBadRequest writes a bad request error (400)
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteFailed(w, http.StatusBadRequest, message)
}

// WriteUnauthorized writes an unauthorized error (401)
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteFailed(w, http.StatusUnauthorized, message)
}

// WriteNotFound writes a not found error (404)
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteFailed(w, http.StatusNotFound, message)
}

// WriteTooManyRequests writes a rate limit error (429)
func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteFailed(w, http.StatusTooManyRequests, message)
}

// WriteInternalError writes a generic 500. The cause must be logged by the caller.
func WriteInternalError(w http.ResponseWriter) {
	_ = WriteJSON(w, http.StatusInternalServerError, Response{
		Status:  StatusError,
		Message: InternalErrorMessage,
	})
}
