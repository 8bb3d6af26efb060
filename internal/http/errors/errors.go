package errors

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

func InternalError(w http.ResponseWriter, r *http.Request, err error, message string) {
	LogError(r, message, err)

	// Return generic error to client
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func BadRequestError(w http.ResponseWriter, r *http.Request, err error, clientMessage string) {
	logf(r.Context(), "WARN", "bad request", err)
	http.Error(w, clientMessage, http.StatusBadRequest)
}

func LogError(r *http.Request, message string, err error) {
	logf(r.Context(), "ERROR", message, err)
}

// LogWarn records a recoverable failure, such as a backend call whose outcome was already reported to the user.
func LogWarn(r *http.Request, message string, err error) {
	logf(r.Context(), "WARN", message, err)
}

func LogInfo(r *http.Request, message string) {
	requestID := middleware.GetReqID(r.Context())

	if requestID != "" {
		log.Printf("[INFO] RequestID=%s: %s", requestID, message)
	} else {
		log.Printf("[INFO] %s", message)
	}
}

func logf(ctx context.Context, level, message string, err error) {
	requestID := middleware.GetReqID(ctx)

	if requestID != "" {
		log.Printf("[%s] RequestID=%s: %s: %v", level, requestID, message, err)
	} else {
		log.Printf("[%s] %s: %v", level, message, err)
	}
}
