package testfixtures

import (
	"fmt"
	"sync/atomic"

	"github.com/example/activity-directory/internal/persistence"
)

var (
	activityCounter uint64
	teacherCounter  uint64
)

// ---------------------------- Activity fixtures ----------------------------

// ActivityFixture represents a deterministic activity record that can be
// stored in any collection.
type ActivityFixture struct {
	Name            string
	Description     string
	Schedule        string
	Days            []string
	StartTime       string
	EndTime         string
	MaxParticipants int
	Participants    []string
}

// ActivityOption configures the generated activity fixture.
type ActivityOption func(*ActivityFixture)

// NewActivityFixture returns a deterministic activity fixture with optional overrides.
func NewActivityFixture(opts ...ActivityOption) ActivityFixture {
	idx := atomic.AddUint64(&activityCounter, 1)
	fixture := ActivityFixture{
		Name:            fmt.Sprintf("Activity %03d", idx),
		Description:     fmt.Sprintf("Fixture activity %03d", idx),
		Schedule:        "Mondays, 3:30 PM - 4:30 PM",
		Days:            []string{"Monday"},
		StartTime:       "15:30",
		EndTime:         "16:30",
		MaxParticipants: 10,
		Participants:    []string{},
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithActivityName overrides the generated name, which is also the record key.
func WithActivityName(name string) ActivityOption {
	return func(f *ActivityFixture) {
		f.Name = name
	}
}

// WithActivityDays sets the weekdays the activity meets on.
func WithActivityDays(days ...string) ActivityOption {
	return func(f *ActivityFixture) {
		f.Days = append([]string(nil), days...)
	}
}

// WithActivityTimes sets the "HH:MM" start and end times.
func WithActivityTimes(start, end string) ActivityOption {
	return func(f *ActivityFixture) {
		f.StartTime = start
		f.EndTime = end
	}
}

// WithActivityCapacity overrides max_participants.
func WithActivityCapacity(capacity int) ActivityOption {
	return func(f *ActivityFixture) {
		f.MaxParticipants = capacity
	}
}

// WithActivityParticipants sets the participant emails.
func WithActivityParticipants(emails ...string) ActivityOption {
	return func(f *ActivityFixture) {
		f.Participants = append([]string{}, emails...)
	}
}

// Persistence returns the fixture as a persistence.Activity value.
func (f ActivityFixture) Persistence() persistence.Activity {
	return persistence.Activity{
		Name:        f.Name,
		Description: f.Description,
		Schedule:    f.Schedule,
		ScheduleDetails: persistence.ScheduleDetails{
			Days:      append([]string(nil), f.Days...),
			StartTime: f.StartTime,
			EndTime:   f.EndTime,
		},
		MaxParticipants: f.MaxParticipants,
		Participants:    append([]string{}, f.Participants...),
	}
}

// Document returns the fixture in stored document form.
func (f ActivityFixture) Document() persistence.Document {
	return persistence.ActivityDocument(f.Persistence())
}

// ---------------------------- Teacher fixtures -----------------------------

// TeacherFixture represents a deterministic teacher account. Password is kept
// in clear text so tests can authenticate; Document hashes it.
type TeacherFixture struct {
	Username    string
	DisplayName string
	Password    string
	Role        persistence.Role
}

// TeacherOption configures the generated teacher fixture.
type TeacherOption func(*TeacherFixture)

// NewTeacherFixture returns a deterministic teacher fixture with optional overrides.
func NewTeacherFixture(opts ...TeacherOption) TeacherFixture {
	idx := atomic.AddUint64(&teacherCounter, 1)
	fixture := TeacherFixture{
		Username:    fmt.Sprintf("teacher%03d", idx),
		DisplayName: fmt.Sprintf("Teacher %03d", idx),
		Password:    fmt.Sprintf("secret-%03d", idx),
		Role:        persistence.RoleTeacher,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithTeacherUsername overrides the generated username.
func WithTeacherUsername(username string) TeacherOption {
	return func(f *TeacherFixture) {
		f.Username = username
	}
}

// WithTeacherPassword overrides the clear text password.
func WithTeacherPassword(password string) TeacherOption {
	return func(f *TeacherFixture) {
		f.Password = password
	}
}

// WithTeacherRole sets the account role.
func WithTeacherRole(role persistence.Role) TeacherOption {
	return func(f *TeacherFixture) {
		f.Role = role
	}
}

// Document returns the fixture in stored form with its password hashed by
// FastPasswordHasher.
func (f TeacherFixture) Document() (persistence.Document, error) {
	hash, err := FastPasswordHasher(f.Password)
	if err != nil {
		return nil, err
	}
	return persistence.TeacherDocument(persistence.Teacher{
		Username:     f.Username,
		DisplayName:  f.DisplayName,
		PasswordHash: hash,
		Role:         f.Role,
	}), nil
}
