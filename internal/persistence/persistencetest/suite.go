// Package persistencetest holds a behaviour suite every persistence.Collection
// implementation must pass.
package persistencetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/activity-directory/internal/persistence"
)

// Factory returns an empty collection for one subtest.
type Factory func(t *testing.T) persistence.Collection

// Run exercises insert, lookup, query, update and count semantics against
// fresh collections produced by newCollection.
func Run(t *testing.T, newCollection Factory) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty collection", func(t *testing.T) {
		c := newCollection(t)

		n, err := c.CountDocuments(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)

		docs, err := persistence.Collect(c.Find(ctx, nil))
		require.NoError(t, err)
		assert.Empty(t, docs)

		_, err = c.FindOne(ctx, "missing")
		assert.ErrorIs(t, err, persistence.ErrNotFound)
	})

	t.Run("insert then find one restores the identifier", func(t *testing.T) {
		c := newCollection(t)

		res, err := c.InsertOne(ctx, activity("Chess Club", []string{"Monday", "Friday"}, "15:15", "16:45", "michael@mergington.edu"))
		require.NoError(t, err)
		assert.True(t, res.Acknowledged)
		assert.Equal(t, "Chess Club", res.InsertedID)

		doc, err := c.FindOne(ctx, "Chess Club")
		require.NoError(t, err)
		got, err := persistence.DecodeActivity(doc)
		require.NoError(t, err)
		assert.Equal(t, "Chess Club", got.Name)
		assert.Equal(t, "Desc Chess Club", got.Description)
		assert.Equal(t, 12, got.MaxParticipants)
		assert.Equal(t, []string{"Monday", "Friday"}, got.ScheduleDetails.Days)
		assert.Equal(t, []string{"michael@mergington.edu"}, got.Participants)
	})

	t.Run("insert without identifier is not acknowledged", func(t *testing.T) {
		c := newCollection(t)

		res, err := c.InsertOne(ctx, persistence.Document{"description": "orphan"})
		require.NoError(t, err)
		assert.False(t, res.Acknowledged)

		n, err := c.CountDocuments(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("insert replaces existing keys and keeps order", func(t *testing.T) {
		c := newCollection(t)

		for _, name := range []string{"Chess Club", "Art Club", "Math Club"} {
			_, err := c.InsertOne(ctx, activity(name, []string{"Monday"}, "15:00", "16:00"))
			require.NoError(t, err)
		}
		replacement := activity("Chess Club", []string{"Friday"}, "15:00", "16:00")
		replacement["description"] = "replaced"
		_, err := c.InsertOne(ctx, replacement)
		require.NoError(t, err)

		docs, err := persistence.Collect(c.Find(ctx, nil))
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, []string{"Chess Club", "Art Club", "Math Club"}, ids(docs))
		assert.Equal(t, "replaced", docs[0]["description"])
	})

	t.Run("find applies every condition", func(t *testing.T) {
		c := newCollection(t)
		insertAll(t, c,
			activity("Chess Club", []string{"Monday", "Friday"}, "15:15", "16:45"),
			activity("Programming Class", []string{"Tuesday", "Thursday"}, "07:00", "08:00"),
			activity("Drama Club", []string{"Monday", "Wednesday"}, "15:30", "17:30"),
			persistence.Document{"_id": "Unscheduled"},
		)

		monday, err := persistence.Collect(c.Find(ctx, persistence.Where(persistence.In("schedule_details.days", "Monday"))))
		require.NoError(t, err)
		assert.Equal(t, []string{"Chess Club", "Drama Club"}, ids(monday))

		afternoon, err := persistence.Collect(c.Find(ctx, persistence.Where(
			persistence.Gte("schedule_details.start_time", "15:00"),
			persistence.Lte("schedule_details.end_time", "17:00"),
		)))
		require.NoError(t, err)
		assert.Equal(t, []string{"Chess Club"}, ids(afternoon))

		n, err := c.CountDocuments(ctx, persistence.Where(persistence.Eq("schedule_details.days", "Tuesday")))
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("find is restartable and returns copies", func(t *testing.T) {
		c := newCollection(t)
		insertAll(t, c, activity("Art Club", []string{"Thursday"}, "15:15", "17:00", "amelia@mergington.edu"))

		seq := c.Find(ctx, nil)
		first, err := persistence.Collect(seq)
		require.NoError(t, err)
		first[0]["participants"] = []any{}

		second, err := persistence.Collect(seq)
		require.NoError(t, err)
		require.Len(t, second, 1)
		assert.Equal(t, []any{"amelia@mergington.edu"}, second[0]["participants"])
	})

	t.Run("find rejects unsupported operators", func(t *testing.T) {
		c := newCollection(t)
		_, err := persistence.Collect(c.Find(ctx, persistence.Filter{{Path: "description", Op: "$regex", Operand: "x"}}))
		assert.ErrorIs(t, err, persistence.ErrUnsupportedOperator)
	})

	t.Run("push appends in order and allows duplicates", func(t *testing.T) {
		c := newCollection(t)
		insertAll(t, c, activity("Math Club", []string{"Tuesday"}, "07:15", "08:00"))

		for range 3 {
			res, err := c.UpdateOne(ctx, "Math Club", persistence.PushValue("participants", "james@mergington.edu"))
			require.NoError(t, err)
			assert.EqualValues(t, 1, res.ModifiedCount)
		}
		_, err := c.UpdateOne(ctx, "Math Club", persistence.PushValue("waitlist", "ben@mergington.edu"))
		require.NoError(t, err)

		doc, err := c.FindOne(ctx, "Math Club")
		require.NoError(t, err)
		assert.Equal(t, []any{"james@mergington.edu", "james@mergington.edu", "james@mergington.edu"}, doc["participants"])
		assert.Equal(t, []any{"ben@mergington.edu"}, doc["waitlist"])
	})

	t.Run("pull removes the first occurrence and counts key existence", func(t *testing.T) {
		c := newCollection(t)
		insertAll(t, c, activity("Debate Team", []string{"Friday"}, "15:30", "17:30", "a@mergington.edu", "b@mergington.edu", "a@mergington.edu"))

		res, err := c.UpdateOne(ctx, "Debate Team", persistence.PullValue("participants", "a@mergington.edu"))
		require.NoError(t, err)
		assert.EqualValues(t, 1, res.ModifiedCount)

		res, err = c.UpdateOne(ctx, "Debate Team", persistence.PullValue("participants", "nobody@mergington.edu"))
		require.NoError(t, err)
		assert.EqualValues(t, 1, res.MatchedCount)
		assert.EqualValues(t, 1, res.ModifiedCount)

		doc, err := c.FindOne(ctx, "Debate Team")
		require.NoError(t, err)
		assert.Equal(t, []any{"b@mergington.edu", "a@mergington.edu"}, doc["participants"])
	})

	t.Run("update on a missing key modifies nothing", func(t *testing.T) {
		c := newCollection(t)

		res, err := c.UpdateOne(ctx, "Ghost Club", persistence.PushValue("participants", "x@mergington.edu"))
		require.NoError(t, err)
		assert.Zero(t, res.MatchedCount)
		assert.Zero(t, res.ModifiedCount)

		_, err = c.FindOne(ctx, "Ghost Club")
		assert.ErrorIs(t, err, persistence.ErrNotFound)
	})
}

func activity(name string, days []string, start, end string, participants ...string) persistence.Document {
	if participants == nil {
		participants = []string{}
	}
	return persistence.ActivityDocument(persistence.Activity{
		Name:        name,
		Description: "Desc " + name,
		Schedule:    name + " schedule",
		ScheduleDetails: persistence.ScheduleDetails{
			Days:      days,
			StartTime: start,
			EndTime:   end,
		},
		MaxParticipants: 12,
		Participants:    participants,
	})
}

func insertAll(t *testing.T, c persistence.Collection, docs ...persistence.Document) {
	t.Helper()
	for _, doc := range docs {
		res, err := c.InsertOne(context.Background(), doc)
		require.NoError(t, err)
		require.True(t, res.Acknowledged)
	}
}

func ids(docs []persistence.Document) []string {
	out := make([]string, 0, len(docs))
	for _, doc := range docs {
		id, _ := doc.ID()
		out = append(out, id)
	}
	return out
}
