package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Veraticus/mailvet/internal/common"
)

// Error codes.
const (
	CodeBadRequest       = "bad_request"
	CodeEmptyInput       = "empty_input"
	CodeNoData           = "no_data"
	CodeInvalidSelection = "invalid_selection"
	CodeTooLarge         = "too_large"
	CodeTimeout          = "timeout"
	CodeInternal         = "internal"
)

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

var errBadRequest = errors.New("bad request")

// classifyError maps an error onto a status code and error code.
func classifyError(err error) (int, string) {
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &maxBytesErr), errors.Is(err, common.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, CodeTooLarge
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, CodeBadRequest
	case errors.Is(err, common.ErrEmptyInput):
		return http.StatusUnprocessableEntity, CodeEmptyInput
	case errors.Is(err, common.ErrNoData):
		return http.StatusUnprocessableEntity, CodeNoData
	case errors.Is(err, common.ErrInvalidSelection), errors.Is(err, common.ErrInvalidBatchSize):
		return http.StatusBadRequest, CodeInvalidSelection
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, CodeTimeout
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// respondError logs err through the request logger and writes a JSON error body.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classifyError(err)

	if status == http.StatusInternalServerError {
		common.LogError(r.Context(), err, "request failed", common.Fields{
			"path":   r.URL.Path,
			"method": r.Method,
		})
	} else {
		common.Logger(r.Context()).Warn("request error",
			"path", r.URL.Path,
			"method", r.Method,
			"status", status,
			"code", code,
			"error", err.Error())
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}

	writeJSONStatus(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    code,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}
