package application_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/example/activity-directory/internal/application"
	"github.com/example/activity-directory/internal/persistence"
	"github.com/example/activity-directory/internal/testfixtures"
)

func activityNames(activities []persistence.Activity) []string {
	names := make([]string, len(activities))
	for i, a := range activities {
		names[i] = a.Name
	}
	return names
}

func TestActivityServiceList(t *testing.T) {
	svc := testfixtures.NewServiceFactory(t).NewActivityService()
	ctx := context.Background()

	all, err := svc.List(ctx, application.ActivityFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(all) != 13 || all[0].Name != "Chess Club" {
		t.Fatalf("unexpected listing: %v", activityNames(all))
	}

	cases := []struct {
		name   string
		filter application.ActivityFilter
		want   []string
	}{
		{
			name:   "day is case insensitive",
			filter: application.ActivityFilter{Day: "monday"},
			want:   []string{"Chess Club", "Morning Fitness", "Drama Club"},
		},
		{
			name:   "weekend",
			filter: application.ActivityFilter{Day: "Saturday"},
			want:   []string{"Weekend Robotics Workshop", "Science Olympiad"},
		},
		{
			name:   "ends before school",
			filter: application.ActivityFilter{EndsAtOrBefore: "08:00"},
			want:   []string{"Programming Class", "Morning Fitness", "Math Club"},
		},
		{
			name:   "tuesday evening",
			filter: application.ActivityFilter{Day: "Tuesday", StartsAtOrAfter: "18:00"},
			want:   []string{"Manga Maniacs"},
		},
		{
			name:   "no match",
			filter: application.ActivityFilter{Day: "Sunday", StartsAtOrAfter: "15:00"},
			want:   nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.List(ctx, tc.filter)
			if err != nil {
				t.Fatalf("List returned error: %v", err)
			}
			if names := activityNames(got); !slices.Equal(names, tc.want) {
				t.Fatalf("List(%+v) = %v, want %v", tc.filter, names, tc.want)
			}
		})
	}
}

func TestActivityServiceListRejectsBadFilter(t *testing.T) {
	svc := testfixtures.NewServiceFactory(t).NewActivityService()

	_, err := svc.List(context.Background(), application.ActivityFilter{
		Day:             "Funday",
		StartsAtOrAfter: "3pm",
		EndsAtOrBefore:  "9:00",
	})
	var vErr *application.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"day", "start_time", "end_time"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Fatalf("expected %s to be reported, got %v", field, vErr.FieldErrors)
		}
	}
}

func TestActivityServiceGet(t *testing.T) {
	svc := testfixtures.NewServiceFactory(t).NewActivityService()

	chess, err := svc.Get(context.Background(), "Chess Club")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if chess.MaxParticipants != 12 || !chess.HasParticipant("michael@mergington.edu") {
		t.Fatalf("unexpected activity: %+v", chess)
	}

	if _, err := svc.Get(context.Background(), "Underwater Basket Weaving"); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestActivityServiceSignupAndUnregister(t *testing.T) {
	svc := testfixtures.NewServiceFactory(t).NewActivityService()
	ctx := context.Background()
	params := application.SignupParams{Activity: "Manga Maniacs", Email: " Kenji@Mergington.edu "}

	activity, err := svc.Signup(ctx, params)
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if !slices.Equal(activity.Participants, []string{"kenji@mergington.edu"}) {
		t.Fatalf("unexpected participants after signup: %v", activity.Participants)
	}

	if _, err := svc.Signup(ctx, params); !errors.Is(err, application.ErrAlreadySignedUp) {
		t.Fatalf("expected ErrAlreadySignedUp, got %v", err)
	}

	activity, err = svc.Unregister(ctx, params)
	if err != nil {
		t.Fatalf("Unregister returned error: %v", err)
	}
	if len(activity.Participants) != 0 {
		t.Fatalf("expected no participants, got %v", activity.Participants)
	}

	if _, err := svc.Unregister(ctx, params); !errors.Is(err, application.ErrNotSignedUp) {
		t.Fatalf("expected ErrNotSignedUp, got %v", err)
	}
}

func TestActivityServiceSignupRespectsCapacity(t *testing.T) {
	factory := testfixtures.NewServiceFactory(t, testfixtures.WithoutSeed())
	factory.AddActivities(t, testfixtures.NewActivityFixture(
		testfixtures.WithActivityName("Tiny Club"),
		testfixtures.WithActivityCapacity(1),
		testfixtures.WithActivityParticipants("first@mergington.edu"),
	))
	svc := factory.NewActivityService()

	_, err := svc.Signup(context.Background(), application.SignupParams{Activity: "Tiny Club", Email: "second@mergington.edu"})
	if !errors.Is(err, application.ErrActivityFull) {
		t.Fatalf("expected ErrActivityFull, got %v", err)
	}
}

// slowReads widens the gap between reading an activity and updating it.
type slowReads struct {
	persistence.Collection
}

func (s slowReads) FindOne(ctx context.Context, id string) (persistence.Document, error) {
	time.Sleep(2 * time.Millisecond)
	return s.Collection.FindOne(ctx, id)
}

func TestActivityServiceConcurrentSignupsRespectCapacity(t *testing.T) {
	factory := testfixtures.NewServiceFactory(t, testfixtures.WithoutSeed())
	factory.AddActivities(t, testfixtures.NewActivityFixture(
		testfixtures.WithActivityName("Tiny Club"),
		testfixtures.WithActivityCapacity(3),
		testfixtures.WithActivityParticipants("first@mergington.edu"),
	))
	svc := application.NewActivityService(slowReads{factory.Activities})

	const students = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := range students {
		wg.Add(1)
		go func() {
			defer wg.Done()
			email := fmt.Sprintf("student%d@mergington.edu", i%10)
			_, err := svc.Signup(context.Background(), application.SignupParams{Activity: "Tiny Club", Email: email})
			switch {
			case err == nil:
				mu.Lock()
				accepted++
				mu.Unlock()
			case errors.Is(err, application.ErrActivityFull), errors.Is(err, application.ErrAlreadySignedUp):
			default:
				t.Errorf("unexpected signup error: %v", err)
			}
		}()
	}
	wg.Wait()

	activity, err := svc.Get(context.Background(), "Tiny Club")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if accepted != 2 || len(activity.Participants) != 3 {
		t.Fatalf("expected 2 accepted signups and 3 participants, got %d and %v", accepted, activity.Participants)
	}
	seen := map[string]bool{}
	for _, p := range activity.Participants {
		if seen[p] {
			t.Fatalf("duplicate participant %s in %v", p, activity.Participants)
		}
		seen[p] = true
	}
}

func TestActivityServiceSignupValidation(t *testing.T) {
	svc := testfixtures.NewServiceFactory(t).NewActivityService()
	ctx := context.Background()

	cases := map[string]application.SignupParams{
		"missing activity": {Email: "ada@mergington.edu"},
		"missing email":    {Activity: "Chess Club"},
		"malformed email":  {Activity: "Chess Club", Email: "not-an-address"},
		"display name":     {Activity: "Chess Club", Email: "Ada <ada@mergington.edu>"},
	}
	for name, params := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Signup(ctx, params)
			var vErr *application.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	if _, err := svc.Signup(ctx, application.SignupParams{Activity: "Knitting", Email: "ada@mergington.edu"}); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown activity, got %v", err)
	}
}

func TestActivityServiceWithoutCollection(t *testing.T) {
	var svc *application.ActivityService
	if _, err := svc.List(context.Background(), application.ActivityFilter{}); err == nil {
		t.Fatal("expected error from nil service")
	}
	if _, err := application.NewActivityService(nil).Signup(context.Background(), application.SignupParams{}); err == nil {
		t.Fatal("expected error from service without a collection")
	}
}
