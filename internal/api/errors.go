package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"travelagency/pkg/apperr"
)

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeEnvelope(w, status, APIError{Code: code, Message: message})
}

// WriteAppError maps a typed error onto the envelope. Validation errors keep
// the offending field and value so the admin sees them verbatim.
func WriteAppError(w http.ResponseWriter, err error) {
	e := APIError{Code: apperr.Code(err), Message: apperr.PublicMessage(err)}
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		e.Field = ve.Field
		e.Value = ve.Value
	}
	writeEnvelope(w, apperr.HTTPStatus(err), e)
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeEnvelope(w http.ResponseWriter, status int, e APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorEnvelope{Error: e})
}
