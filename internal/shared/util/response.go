package util

import (
	"encoding/json"
	"net/http"

	"restaurant-waste/internal/shared/apperrors"
)

func ResponseInJson(w http.ResponseWriter, statusCode int, object interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(object)
}

// ErrResponseInJson maps err to a status code. Server errors never leak
// their message to the client.
func ErrResponseInJson(w http.ResponseWriter, err error) {
	statusCode := apperrors.CheckError(err)

	body := map[string]string{"error": err.Error()}
	if statusCode >= http.StatusInternalServerError {
		body["error"] = "internal server error"
	}
	if current, ok := apperrors.CurrentState(err); ok {
		body["current_status"] = current
	}

	ResponseInJson(w, statusCode, body)
}

func WriteJSONError(w http.ResponseWriter, message string, status int) {
	ResponseInJson(w, status, map[string]string{"error": message})
}

// DecodeJSON decodes a request body and rejects unknown fields.
func DecodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return apperrors.Validation("invalid JSON body: %v", err)
	}
	return nil
}
