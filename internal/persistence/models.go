package persistence

// Role identifies the privileges attached to a teacher account.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleTeacher || r == RoleAdmin
}

// ScheduleDetails is the structured form of an activity schedule.
// Times use the zero padded "HH:MM" format so they order lexicographically.
type ScheduleDetails struct {
	Days      []string `bson:"days" json:"days"`
	StartTime string   `bson:"start_time" json:"start_time"`
	EndTime   string   `bson:"end_time" json:"end_time"`
}

// Activity represents an extracurricular activity keyed by its name.
type Activity struct {
	Name            string          `bson:"_id" json:"name"`
	Description     string          `bson:"description" json:"description"`
	Schedule        string          `bson:"schedule" json:"schedule"`
	ScheduleDetails ScheduleDetails `bson:"schedule_details" json:"schedule_details"`
	MaxParticipants int             `bson:"max_participants" json:"max_participants"`
	Participants    []string        `bson:"participants" json:"participants"`
}

// HasParticipant reports whether the email is already signed up.
func (a Activity) HasParticipant(email string) bool {
	for _, p := range a.Participants {
		if p == email {
			return true
		}
	}
	return false
}

// Teacher represents a staff account keyed by username. PasswordHash always
// holds an encoded hash, never the clear text password.
type Teacher struct {
	Username     string `bson:"_id" json:"username"`
	DisplayName  string `bson:"display_name" json:"display_name"`
	PasswordHash string `bson:"password" json:"-"`
	Role         Role   `bson:"role" json:"role"`
}
