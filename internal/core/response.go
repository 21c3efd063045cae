package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"skyglass/internal/types"
)

// MessageResponse is the request-validation error body: {"error":"<message>"}.
type MessageResponse struct {
	Error string `json:"error"`
}

// ErrorResponse is the upstream/transport error body:
// {"error":true,"info":"<message>"}.
type ErrorResponse struct {
	Error bool   `json:"error"`
	Info  string `json:"info"`
}

// marshalFailureBody is written when a payload cannot be encoded.
const marshalFailureBody = `{"error":true,"info":"failed to marshal response"}`

// JSON marshals data and writes it with the given status. If marshalling
// fails it writes a 500 instead.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(marshalFailureBody))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Raw writes an already-encoded JSON body unchanged.
func Raw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Error writes err in the proxy's wire format:
//   - validation_* AppErrors become {"error":"<message>"}.
//   - other AppErrors become {"error":true,"info":"<message>"} with the
//     status from the error code.
//   - anything else is a 500 with a generic message; internal details are
//     never exposed.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		JSON(w, r, http.StatusInternalServerError, ErrorResponse{Error: true, Info: "an unexpected error occurred"})
		return
	}

	if strings.HasPrefix(string(appErr.Code), "validation_") {
		JSON(w, r, appErr.HTTPStatus(), MessageResponse{Error: appErr.Message})
		return
	}
	JSON(w, r, appErr.HTTPStatus(), ErrorResponse{Error: true, Info: appErr.Message})
}
