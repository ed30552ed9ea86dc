package application

import "errors"

var (
	// ErrNotFound is returned when the requested activity or teacher does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrInvalidCredentials is returned when a username/password pair does not verify.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrAlreadySignedUp is returned when the email is already a participant.
	ErrAlreadySignedUp = errors.New("application: already signed up")
	// ErrNotSignedUp is returned when unregistering an email that is not a participant.
	ErrNotSignedUp = errors.New("application: not signed up")
	// ErrActivityFull is returned when an activity has reached max_participants.
	ErrActivityFull = errors.New("application: activity is full")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}
