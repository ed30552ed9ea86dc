package seed

import "github.com/example/activity-directory/internal/persistence"

var initialActivities = []persistence.Activity{
	{
		Name:        "Chess Club",
		Description: "Learn strategies and compete in chess tournaments",
		Schedule:    "Mondays and Fridays, 3:15 PM - 4:45 PM",
		ScheduleDetails: persistence.ScheduleDetails{
			Days:      []string{"Monday", "Friday"},
			StartTime: "15:15",
			EndTime:   "16:45",
		},
		MaxParticipants: 12,
		Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
	},
	{
		Name:        "Programming Class",
		Description: "Learn programming fundamentals and build software projects",
		Schedule:    "Tuesdays and Thursdays, 7:00 AM - 8:00 AM",
		ScheduleDetails: persistence.ScheduleDetails{
			Days:      []string{"Tuesday", "Thursday"},
			StartTime: "07:00",
			EndTime:   "08:00",
		},
		MaxParticipants: 20,
		Participants:    []string{"emma@mergington.edu", "sophia@mergington.edu"},
	},
	{
		Name:        "Morning Fitness",
		Description: "Early morning physical training and exercises",
		Schedule:    "Mondays, Wednesdays, Fridays, 6:30 AM - 7:45 AM",
		ScheduleDetails: persistence.ScheduleDetails{
			Days:      []string{"Monday", "Wednesday", "Friday"},
			StartTime: "06:30",
			EndTime:   "07:45",
		},
		MaxParticipants: 30,
		Participants:    []string{"john@mergington.edu", "olivia@mergington.edu"},
	},
	{
		Name:        "Soccer Team",
		Description: "Join the school soccer team and compete in matches",
		Schedule:    "Tuesdays and Thursdays, 3:30 PM - 5:30 PM",
		ScheduleDetails: persistence.ScheduleDetails{
			Days:      []string{"Tuesday", "Thursday"},
			StartTime: "15:30",
			EndTime:   "17:30",
		},
		MaxParticipants: 22,
		Participants:    []string{"liam@mergington.edu", "noah@mergington.edu"},
	},
	{
		Name:        "Basketball Team",
		Description: "Practice and compete in basketball tournaments",
		Schedule:    "Wednesdays and Fridays, 3:15 PM - 5:00 PM",
		ScheduleDetails: persistence.ScheduleDetails{
			Days:      []string{"Wednesday", "Friday"},
			StartTime: "15:15",
			EndTime:   "17:00",
		},
		MaxParticipants: 15,
		Participants:    []string{"ava@mergington.edu", "mia@mergington.edu"},
	},
	{
		Name:        "Art Club",
		Description: "Explore various art techniques and create masterpieces",
		Schedule:    "Thursdays, 3:15 PM - 5:00 PM",
		ScheduleDetails: persistence.ScheduleDetails{
			Days:      []string{"Thursday"},
			StartTime: "15:15",
			EndTime:   "17:00",
		},
		MaxParticipants: 15,
		Participants:    []string{"amelia@mergington.edu", "harper@mergington.edu"},
	},
	{
		Name:        "Drama Club",
		Description: "Act, direct, and produce plays and performances",
		Schedule:    "Mondays and Wednesdays, 3:30 PM - 5:30 PM",
		ScheduleDetails: persistence.ScheduleDetails{
			Days:      []string{"Monday", "Wednesday"},
			StartTime: "15:30",
			EndTime:   "17:30",
		},
		MaxParticipants: 20,
		Participants:    []string{"ella@mergington.edu", "scarlett@mergington.edu"},
	},
	{
		Name:        "Math Club",
		Description: "Solve challenging problems and prepare for math competitions",
		Schedule:    "Tuesdays, 7:15 AM - 8:00 AM",
		ScheduleDetails: persistence.ScheduleDetails{
			Days:      []string{"Tuesday"},
			StartTime: "07:15",
			EndTime:   "08:00",
		},
		MaxParticipants: 10,
		Participants:    []string{"james@mergington.edu", "benjamin@mergington.edu"},
	},
	{
		Name:        "Debate Team",
		Description: "Develop public speaking and argumentation skills",
		Schedule:    "Fridays, 3:30 PM - 5:30 PM",
		ScheduleDetails: persistence.ScheduleDetails{
			Days:      []string{"Friday"},
			StartTime: "15:30",
			EndTime:   "17:30",
		},
		MaxParticipants: 12,
		Participants:    []string{"charlotte@mergington.edu", "amelia@mergington.edu"},
	},
	{
		Name:        "Weekend Robotics Workshop",
		Description: "Build and program robots in our state-of-the-art workshop",
		Schedule:    "Saturdays, 10:00 AM - 2:00 PM",
		ScheduleDetails: persistence.ScheduleDetails{
			Days:      []string{"Saturday"},
			StartTime: "10:00",
			EndTime:   "14:00",
		},
		MaxParticipants: 15,
		Participants:    []string{"ethan@mergington.edu", "oliver@mergington.edu"},
	},
	{
		Name:        "Science Olympiad",
		Description: "Weekend science competition preparation for regional and state events",
		Schedule:    "Saturdays, 1:00 PM - 4:00 PM",
		ScheduleDetails: persistence.ScheduleDetails{
			Days:      []string{"Saturday"},
			StartTime: "13:00",
			EndTime:   "16:00",
		},
		MaxParticipants: 18,
		Participants:    []string{"isabella@mergington.edu", "lucas@mergington.edu"},
	},
	{
		Name:        "Sunday Chess Tournament",
		Description: "Weekly tournament for serious chess players with rankings",
		Schedule:    "Sundays, 2:00 PM - 5:00 PM",
		ScheduleDetails: persistence.ScheduleDetails{
			Days:      []string{"Sunday"},
			StartTime: "14:00",
			EndTime:   "17:00",
		},
		MaxParticipants: 16,
		Participants:    []string{"william@mergington.edu", "jacob@mergington.edu"},
	},
	{
		Name:        "Manga Maniacs",
		Description: "Explore the fantastic stories of the most interesting characters from Japanese Manga (graphic novels).",
		Schedule:    "Tuesdays, 7:00 PM - 8:30 PM",
		ScheduleDetails: persistence.ScheduleDetails{
			Days:      []string{"Tuesday"},
			StartTime: "19:00",
			EndTime:   "20:30",
		},
		MaxParticipants: 15,
		Participants:    []string{},
	},
}

// TeacherSeed is a teacher account before its password is hashed.
type TeacherSeed struct {
	Username    string
	DisplayName string
	Password    string
	Role        persistence.Role
}

var initialTeachers = []TeacherSeed{
	{Username: "mrodriguez", DisplayName: "Ms. Rodriguez", Password: "art123", Role: persistence.RoleTeacher},
	{Username: "mchen", DisplayName: "Mr. Chen", Password: "chess456", Role: persistence.RoleTeacher},
	{Username: "principal", DisplayName: "Principal Martinez", Password: "admin789", Role: persistence.RoleAdmin},
}

// Activities returns a fresh copy of the initial activity records in seeding order.
func Activities() []persistence.Activity {
	out := make([]persistence.Activity, len(initialActivities))
	for i, a := range initialActivities {
		a.ScheduleDetails.Days = append([]string(nil), a.ScheduleDetails.Days...)
		a.Participants = append([]string{}, a.Participants...)
		out[i] = a
	}
	return out
}

// Teachers returns the initial teacher accounts with clear text passwords.
func Teachers() []TeacherSeed {
	return append([]TeacherSeed(nil), initialTeachers...)
}
