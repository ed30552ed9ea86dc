package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/activity-directory/internal/application"
	"github.com/example/activity-directory/internal/persistence"
)

type activityService interface {
	List(ctx context.Context, filter application.ActivityFilter) ([]persistence.Activity, error)
	Get(ctx context.Context, name string) (persistence.Activity, error)
	Signup(ctx context.Context, params application.SignupParams) (persistence.Activity, error)
	Unregister(ctx context.Context, params application.SignupParams) (persistence.Activity, error)
}

// ActivityHandler serves the activity listing and participant endpoints.
type ActivityHandler struct {
	service   activityService
	responder responder
	logger    *slog.Logger
}

func NewActivityHandler(service activityService, logger *slog.Logger) *ActivityHandler {
	base := defaultLogger(logger)
	return &ActivityHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ActivityHandler) log(r *http.Request, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(r, h.logger, "ActivityHandler", operation, attrs...)
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	filter := application.ActivityFilter{
		Day:             query.Get("day"),
		StartsAtOrAfter: query.Get("start_time"),
		EndsAtOrBefore:  query.Get("end_time"),
	}

	activities, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.log(r, "List", "error_kind", application.ErrorKind(err)).WarnContext(r.Context(), "failed to list activities", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := make([]activityDTO, 0, len(activities))
	for _, a := range activities {
		resp = append(resp, toActivityDTO(a))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *ActivityHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	activity, err := h.service.Get(r.Context(), r.PathValue("name"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toActivityDTO(activity))
}

func (h *ActivityHandler) Signup(w http.ResponseWriter, r *http.Request) {
	h.changeParticipants(w, r, "Signup")
}

func (h *ActivityHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	h.changeParticipants(w, r, "Unregister")
}

func (h *ActivityHandler) changeParticipants(w http.ResponseWriter, r *http.Request, operation string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	params := application.SignupParams{
		Activity: r.PathValue("name"),
		Email:    strings.TrimSpace(r.URL.Query().Get("email")),
	}
	logger := h.log(r, operation, "activity", params.Activity)

	var err error
	var message string
	if operation == "Signup" {
		_, err = h.service.Signup(r.Context(), params)
		message = fmt.Sprintf("Signed up %s for %s", params.Email, params.Activity)
	} else {
		_, err = h.service.Unregister(r.Context(), params)
		message = fmt.Sprintf("Unregistered %s from %s", params.Email, params.Activity)
	}
	if err != nil {
		logger.WarnContext(r.Context(), "participant change rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, messageResponse{Message: message})
}

type scheduleDetailsDTO struct {
	Days      []string `json:"days"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
}

type activityDTO struct {
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Schedule        string             `json:"schedule"`
	ScheduleDetails scheduleDetailsDTO `json:"schedule_details"`
	MaxParticipants int                `json:"max_participants"`
	Participants    []string           `json:"participants"`
}

func toActivityDTO(a persistence.Activity) activityDTO {
	days := a.ScheduleDetails.Days
	if days == nil {
		days = []string{}
	}
	participants := a.Participants
	if participants == nil {
		participants = []string{}
	}
	return activityDTO{
		Name:        a.Name,
		Description: a.Description,
		Schedule:    a.Schedule,
		ScheduleDetails: scheduleDetailsDTO{
			Days:      days,
			StartTime: a.ScheduleDetails.StartTime,
			EndTime:   a.ScheduleDetails.EndTime,
		},
		MaxParticipants: a.MaxParticipants,
		Participants:    participants,
	}
}
