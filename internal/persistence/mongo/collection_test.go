package mongo_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/activity-directory/internal/persistence"
	"github.com/example/activity-directory/internal/persistence/mongo"
)

func TestConnect_UnreachableServer(t *testing.T) {
	start := time.Now()
	_, err := mongo.Connect(context.Background(), "mongodb://127.0.0.1:1/?connect=direct", "directory_test", 200*time.Millisecond)
	require.Error(t, err)
	require.Less(t, time.Since(start), 5*time.Second)
}

// TestCollection_Behaviour runs against a live server when
// DIRECTORY_TEST_MONGO_URI is set.
func TestCollection_Behaviour(t *testing.T) {
	uri := os.Getenv("DIRECTORY_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("DIRECTORY_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	client, err := mongo.Connect(ctx, uri, fmt.Sprintf("directory_test_%d", time.Now().UnixNano()), 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	c := client.Collection("activities")
	_, err = c.InsertOne(ctx, persistence.ActivityDocument(persistence.Activity{
		Name:            "Chess Club",
		ScheduleDetails: persistence.ScheduleDetails{Days: []string{"Monday", "Friday"}, StartTime: "15:15", EndTime: "16:45"},
		MaxParticipants: 12,
		Participants:    []string{"michael@mergington.edu"},
	}))
	require.NoError(t, err)

	docs, err := persistence.Collect(c.Find(ctx, persistence.Where(persistence.In("schedule_details.days", "Monday"))))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	res, err := c.UpdateOne(ctx, "Chess Club", persistence.PushValue("participants", "daniel@mergington.edu"))
	require.NoError(t, err)
	require.EqualValues(t, 1, res.ModifiedCount)

	doc, err := c.FindOne(ctx, "Chess Club")
	require.NoError(t, err)
	activity, err := persistence.DecodeActivity(doc)
	require.NoError(t, err)
	require.Equal(t, []string{"michael@mergington.edu", "daniel@mergington.edu"}, activity.Participants)

	_, err = c.FindOne(ctx, "missing")
	require.ErrorIs(t, err, persistence.ErrNotFound)
}
