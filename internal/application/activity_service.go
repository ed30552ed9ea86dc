package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/example/activity-directory/internal/persistence"
)

const participantsField = "participants"

// ActivityService lists activities and manages their participant lists.
// Capacity and duplicate signups are enforced here; the collection accepts any push.
type ActivityService struct {
	activities persistence.Collection
	logger     *slog.Logger

	// participantsMu makes the read-check-update of a signup or unregister
	// atomic within this process.
	participantsMu sync.Mutex
}

// NewActivityService wires dependencies for the activity service.
func NewActivityService(activities persistence.Collection) *ActivityService {
	return NewActivityServiceWithLogger(activities, nil)
}

// NewActivityServiceWithLogger constructs an ActivityService with a specified logger.
func NewActivityServiceWithLogger(activities persistence.Collection, logger *slog.Logger) *ActivityService {
	return &ActivityService{activities: activities, logger: defaultLogger(logger)}
}

func (s *ActivityService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ActivityService", operation, attrs...)
}

// List returns the activities matching filter in storage order.
func (s *ActivityService) List(ctx context.Context, filter ActivityFilter) ([]persistence.Activity, error) {
	if s == nil || s.activities == nil {
		return nil, fmt.Errorf("activity collection not configured")
	}

	query, vErr := buildActivityQuery(filter)
	if vErr.HasErrors() {
		return nil, vErr
	}

	var activities []persistence.Activity
	for doc, err := range s.activities.Find(ctx, query) {
		if err != nil {
			return nil, err
		}
		activity, err := persistence.DecodeActivity(doc)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, nil
}

func buildActivityQuery(filter ActivityFilter) (persistence.Filter, *ValidationError) {
	vErr := &ValidationError{}
	var query persistence.Filter

	if day := strings.TrimSpace(filter.Day); day != "" {
		canonical, ok := canonicalWeekday(day)
		if !ok {
			vErr.add("day", "must be a weekday name")
		} else {
			query = append(query, persistence.In("schedule_details.days", canonical))
		}
	}
	if start := strings.TrimSpace(filter.StartsAtOrAfter); start != "" {
		if !validClock(start) {
			vErr.add("start_time", "must use HH:MM")
		} else {
			query = append(query, persistence.Gte("schedule_details.start_time", start))
		}
	}
	if end := strings.TrimSpace(filter.EndsAtOrBefore); end != "" {
		if !validClock(end) {
			vErr.add("end_time", "must use HH:MM")
		} else {
			query = append(query, persistence.Lte("schedule_details.end_time", end))
		}
	}
	return query, vErr
}

func canonicalWeekday(day string) (string, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), day) {
			return d.String(), true
		}
	}
	return "", false
}

// validClock accepts zero padded 24 hour times, the only format that orders
// correctly as a string.
func validClock(value string) bool {
	if len(value) != len("15:04") {
		return false
	}
	_, err := time.Parse("15:04", value)
	return err == nil
}

// Get returns one activity by name.
func (s *ActivityService) Get(ctx context.Context, name string) (persistence.Activity, error) {
	if s == nil || s.activities == nil {
		return persistence.Activity{}, fmt.Errorf("activity collection not configured")
	}
	doc, err := s.activities.FindOne(ctx, name)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Activity{}, ErrNotFound
		}
		return persistence.Activity{}, err
	}
	return persistence.DecodeActivity(doc)
}

// Signup adds params.Email to the activity's participants.
func (s *ActivityService) Signup(ctx context.Context, params SignupParams) (activity persistence.Activity, err error) {
	if s == nil || s.activities == nil {
		return persistence.Activity{}, fmt.Errorf("activity collection not configured")
	}
	name, email, vErr := normalizeSignup(params)

	logger := s.loggerWith(ctx, "Signup", "activity", name, "email", email)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "signup rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "signup recorded", "participants", len(activity.Participants))
	}()

	if vErr.HasErrors() {
		err = vErr
		return
	}

	s.participantsMu.Lock()
	defer s.participantsMu.Unlock()

	current, err := s.Get(ctx, name)
	if err != nil {
		return
	}
	if current.HasParticipant(email) {
		err = ErrAlreadySignedUp
		return
	}
	if current.MaxParticipants > 0 && len(current.Participants) >= current.MaxParticipants {
		err = ErrActivityFull
		return
	}

	if err = s.apply(ctx, name, persistence.PushValue(participantsField, email)); err != nil {
		return
	}
	activity, err = s.Get(ctx, name)
	return
}

// Unregister removes params.Email from the activity's participants.
func (s *ActivityService) Unregister(ctx context.Context, params SignupParams) (activity persistence.Activity, err error) {
	if s == nil || s.activities == nil {
		return persistence.Activity{}, fmt.Errorf("activity collection not configured")
	}
	name, email, vErr := normalizeSignup(params)

	logger := s.loggerWith(ctx, "Unregister", "activity", name, "email", email)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "unregister rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "participant removed", "participants", len(activity.Participants))
	}()

	if vErr.HasErrors() {
		err = vErr
		return
	}

	s.participantsMu.Lock()
	defer s.participantsMu.Unlock()

	current, err := s.Get(ctx, name)
	if err != nil {
		return
	}
	if !current.HasParticipant(email) {
		err = ErrNotSignedUp
		return
	}

	if err = s.apply(ctx, name, persistence.PullValue(participantsField, email)); err != nil {
		return
	}
	activity, err = s.Get(ctx, name)
	return
}

func (s *ActivityService) apply(ctx context.Context, name string, update persistence.Update) error {
	res, err := s.activities.UpdateOne(ctx, name, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizeSignup(params SignupParams) (string, string, *ValidationError) {
	name := strings.TrimSpace(params.Activity)
	email := strings.ToLower(strings.TrimSpace(params.Email))

	vErr := &ValidationError{}
	if name == "" {
		vErr.add("activity", "is required")
	}
	vErr.merge(validateEmail(email))
	return name, email, vErr
}

func validateEmail(email string) *ValidationError {
	vErr := &ValidationError{}
	if email == "" {
		vErr.add("email", "is required")
		return vErr
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		vErr.add("email", "must be a valid address")
	}
	return vErr
}
