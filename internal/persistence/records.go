package persistence

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// ActivityDocument converts an activity into the document stored under its name.
func ActivityDocument(a Activity) Document {
	return Document{
		IDField:       a.Name,
		"description": a.Description,
		"schedule":    a.Schedule,
		"schedule_details": map[string]any{
			"days":       stringsToList(a.ScheduleDetails.Days),
			"start_time": a.ScheduleDetails.StartTime,
			"end_time":   a.ScheduleDetails.EndTime,
		},
		"max_participants": a.MaxParticipants,
		"participants":     stringsToList(a.Participants),
	}
}

// TeacherDocument converts a teacher into the document stored under its username.
func TeacherDocument(t Teacher) Document {
	return Document{
		IDField:        t.Username,
		"username":     t.Username,
		"display_name": t.DisplayName,
		"password":     t.PasswordHash,
		"role":         string(t.Role),
	}
}

// DecodeActivity maps a stored document onto an Activity.
func DecodeActivity(doc Document) (Activity, error) {
	var a Activity
	if err := decode(doc, &a); err != nil {
		return Activity{}, fmt.Errorf("decode activity: %w", err)
	}
	if a.Participants == nil {
		a.Participants = []string{}
	}
	return a, nil
}

// DecodeTeacher maps a stored document onto a Teacher.
func DecodeTeacher(doc Document) (Teacher, error) {
	var t Teacher
	if err := decode(doc, &t); err != nil {
		return Teacher{}, fmt.Errorf("decode teacher: %w", err)
	}
	return t, nil
}

func decode(doc Document, target any) error {
	raw, err := bson.Marshal(map[string]any(doc))
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, target)
}

func stringsToList(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
