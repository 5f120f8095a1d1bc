package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/wabisaby/cloudplatform-dashboard/internal/model"
)

// SendJSON sends a JSON response with the given status code
func SendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// SendError sends an error response
func SendError(w http.ResponseWriter, message string, statusCode int) {
	SendJSON(w, statusCode, model.Response{
		Success: false,
		Message: message,
	})
}

// SendSuccess sends a success response
func SendSuccess(w http.ResponseWriter, data interface{}) {
	SendStatus(w, http.StatusOK, data)
}

// SendStatus sends a success response with a non-default status code
func SendStatus(w http.ResponseWriter, statusCode int, data interface{}) {
	SendJSON(w, statusCode, model.Response{
		Success: true,
		Data:    data,
	})
}

// decodeJSON decodes a request body into v
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
