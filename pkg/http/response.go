package http

import (
	"encoding/json"
	"net/http"

	apperrors "tablebook/pkg/errors"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

// envelope wraps successful payloads; Count is set only for lists.
type envelope struct {
	Data  any  `json:"data"`
	Count *int `json:"count,omitempty"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError maps err onto its AppError status. Anything else is reported as
// an opaque internal error so causes never reach the client.
func WriteError(w http.ResponseWriter, err error) {
	appErr := apperrors.AsAppError(err)
	WriteJSON(w, appErr.StatusCode(), ErrorResponse{
		Code:    appErr.Code,
		Error:   appErr.Message,
		Details: appErr.Details,
	})
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, envelope{Data: data})
}

func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, envelope{Data: data})
}

func WriteList(w http.ResponseWriter, data any, count int) {
	WriteJSON(w, http.StatusOK, envelope{Data: data, Count: &count})
}
