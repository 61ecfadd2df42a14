// Package response writes JSON bodies and is the one place request errors
// are logged.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"ftlnomad/internal/apperrors"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Code      int    `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

// Error logs err and writes it with the status its type maps to.
func Error(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	errorType := apperrors.GetType(err)
	status := StatusFor(errorType)
	logError(logger, r, err, errorType, status)
	writeError(w, errorType, clientMessage(err, errorType), status)
}

// clientMessage drops the wrapped cause of internal and unavailable errors,
// which can name files or hosts. The full error is only logged.
func clientMessage(err error, errorType apperrors.Type) string {
	switch errorType {
	case apperrors.TypeInternal, apperrors.TypeUnavailable:
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == errorType {
			return appErr.Message
		}
		return http.StatusText(StatusFor(errorType))
	}
	return err.Error()
}

// ErrorWithMessage is Error with a client-facing message that differs from
// the logged one.
func ErrorWithMessage(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, clientMessage string) {
	errorType := apperrors.GetType(err)
	status := StatusFor(errorType)
	logError(logger, r, err, errorType, status)
	writeError(w, errorType, clientMessage, status)
}

func StatusFor(errorType apperrors.Type) int {
	switch errorType {
	case apperrors.TypeNotFound:
		return http.StatusNotFound
	case apperrors.TypeValidation:
		return http.StatusBadRequest
	case apperrors.TypeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case apperrors.TypeRateLimited:
		return http.StatusTooManyRequests
	case apperrors.TypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func logError(logger *slog.Logger, r *http.Request, err error, errorType apperrors.Type, status int) {
	l := logger.With(
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", requestID(r),
		"error_type", errorType,
		"status_code", status,
	)
	switch errorType {
	case apperrors.TypeNotFound, apperrors.TypeValidation, apperrors.TypeMethodNotAllowed:
		l.Debug("Request rejected", "error", err)
	case apperrors.TypeRateLimited, apperrors.TypeUnavailable:
		l.Warn("Request not served", "error", err)
	default:
		l.Error("Internal server error", "error", err)
	}
}

func requestID(r *http.Request) string {
	return r.Header.Get(RequestIDHeader)
}

// RequestIDHeader carries the request id set by the middleware.
const RequestIDHeader = "X-Request-ID"

func writeError(w http.ResponseWriter, errorType apperrors.Type, message string, status int) {
	JSON(w, status, ErrorResponse{
		Error:     string(errorType),
		Message:   message,
		Code:      status,
		RequestID: w.Header().Get(RequestIDHeader),
	})
}

// JSON writes data with the given status. Encoding errors are dropped because
// the status line has already been sent.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}
