package application

// ActivityFilter narrows activity listings. Empty fields do not filter.
type ActivityFilter struct {
	// Day is a weekday name such as "Monday".
	Day string
	// StartsAtOrAfter is an "HH:MM" lower bound on the start time.
	StartsAtOrAfter string
	// EndsAtOrBefore is an "HH:MM" upper bound on the end time.
	EndsAtOrBefore string
}

// SignupParams identifies a participant of an activity.
type SignupParams struct {
	Activity string
	Email    string
}

// AuthenticateParams carries teacher login credentials.
type AuthenticateParams struct {
	Username string
	Password string
}
