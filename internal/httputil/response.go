package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/templatehub/template-manager/internal/logging"
)

// ErrorResponse is the JSON error envelope every handler returns. Code is a
// stable machine-readable identifier; Error is for humans.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// RespondJSON writes data as a JSON body with the given status. Encoding
// failures happen after the status line is committed, so they are logged
// rather than surfaced to the client.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Default().Error("failed to encode JSON response", "error", err.Error())
	}
}

// RespondError writes an ErrorResponse carrying only a message.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message}, statusCode)
}

// RespondErrorWithCode writes an ErrorResponse with a machine-readable code.
func RespondErrorWithCode(w http.ResponseWriter, message string, code string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message, Code: code}, statusCode)
}
