package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/channelhub/internal/common"
)

const (
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeUploadFailed   = "UPLOAD_FAILED"
	ErrCodeTooLarge       = "PAYLOAD_TOO_LARGE"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

// Response wraps every successful payload.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeOK(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, Response{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, message)
}

func unauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func payloadTooLarge(w http.ResponseWriter, message string) {
	writeError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, message)
}

func internalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, "An internal error occurred")
}

// errorStatus maps a service error kind to its HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch kind := common.KindOf(err); {
	case errors.Is(kind, common.ErrValidation):
		return http.StatusBadRequest, ErrCodeInvalidRequest
	case errors.Is(kind, common.ErrConflict):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(kind, common.ErrAuth):
		return http.StatusUnauthorized, ErrCodeUnauthorized
	case errors.Is(kind, common.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(kind, common.ErrUpload):
		return http.StatusInternalServerError, ErrCodeUploadFailed
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}

// serviceError writes err as an error response. Internal errors keep their
// cause in the log and show a generic message.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)

	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err, "cause", errors.Unwrap(err))
	}

	if code == ErrCodeInternal {
		internalError(w)
		return
	}

	writeError(w, status, code, err.Error())
}
