package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/activity-directory/internal/application"
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	return responder{logger: defaultLogger(logger)}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError maps application errors onto HTTP statuses.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	var vErr *application.ValidationError
	switch {
	case err == nil:
		r.writeError(ctx, w, http.StatusInternalServerError, "")
	case errors.As(err, &vErr):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			Message: vErr.Error(),
			Errors:  vErr.FieldErrors,
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeError(ctx, w, http.StatusNotFound, "Activity not found")
	case errors.Is(err, application.ErrAlreadySignedUp):
		r.writeError(ctx, w, http.StatusBadRequest, "Student is already signed up for this activity")
	case errors.Is(err, application.ErrNotSignedUp):
		r.writeError(ctx, w, http.StatusBadRequest, "Student is not signed up for this activity")
	case errors.Is(err, application.ErrActivityFull):
		r.writeError(ctx, w, http.StatusConflict, "Activity is full")
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeError(ctx, w, http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		r.writeError(ctx, w, http.StatusServiceUnavailable, "")
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "error", err)
		r.writeError(ctx, w, http.StatusInternalServerError, "")
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	return requestScopedLogger(ctx, r.logger).With("handler", "responder")
}

type errorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}
