package persistence_test

import (
	"errors"
	"testing"

	"github.com/example/activity-directory/internal/persistence"
	"go.mongodb.org/mongo-driver/bson"
)

func scheduleDoc(days []any, start, end string) persistence.Document {
	return persistence.Document{
		"_id": "Chess Club",
		"schedule_details": map[string]any{
			"days":       days,
			"start_time": start,
			"end_time":   end,
		},
		"max_participants": 12,
	}
}

func TestParseFilter(t *testing.T) {
	t.Parallel()

	t.Run("bare times use range defaults", func(t *testing.T) {
		t.Parallel()

		filter, err := persistence.ParseFilter(map[string]any{
			"schedule_details.start_time": "15:00",
			"schedule_details.end_time":   "17:00",
			"schedule_details.days":       "Monday",
		})
		if err != nil {
			t.Fatalf("ParseFilter failed: %v", err)
		}
		want := map[string]persistence.Operator{
			"schedule_details.days":       persistence.OpEq,
			"schedule_details.end_time":   persistence.OpLte,
			"schedule_details.start_time": persistence.OpGte,
		}
		if len(filter) != len(want) {
			t.Fatalf("expected %d conditions, got %d", len(want), len(filter))
		}
		for _, c := range filter {
			if want[c.Path] != c.Op {
				t.Fatalf("unexpected operator %s for %s", c.Op, c.Path)
			}
		}
	})

	t.Run("operator documents", func(t *testing.T) {
		t.Parallel()

		filter, err := persistence.ParseFilter(map[string]any{
			"schedule_details.days": map[string]any{"$in": []string{"Monday", "Friday"}},
		})
		if err != nil {
			t.Fatalf("ParseFilter failed: %v", err)
		}
		if len(filter) != 1 || filter[0].Op != persistence.OpIn {
			t.Fatalf("unexpected filter: %#v", filter)
		}
	})

	t.Run("rejects unsupported operators", func(t *testing.T) {
		t.Parallel()

		_, err := persistence.ParseFilter(map[string]any{
			"description": map[string]any{"$regex": "chess"},
		})
		if !errors.Is(err, persistence.ErrUnsupportedOperator) {
			t.Fatalf("expected ErrUnsupportedOperator, got %v", err)
		}
	})

	t.Run("rejects malformed paths", func(t *testing.T) {
		t.Parallel()

		for _, path := range []string{"", "$or", "schedule_details..days", "schedule_details."} {
			_, err := persistence.ParseFilter(map[string]any{path: "x"})
			if !errors.Is(err, persistence.ErrUnsupportedPath) {
				t.Fatalf("expected ErrUnsupportedPath for %q, got %v", path, err)
			}
		}
	})

	t.Run("rejects $in without a list", func(t *testing.T) {
		t.Parallel()

		_, err := persistence.ParseFilter(map[string]any{
			"schedule_details.days": map[string]any{"$in": "Monday"},
		})
		if !errors.Is(err, persistence.ErrInvalidOperand) {
			t.Fatalf("expected ErrInvalidOperand, got %v", err)
		}
	})

	t.Run("empty query", func(t *testing.T) {
		t.Parallel()

		filter, err := persistence.ParseFilter(nil)
		if err != nil || len(filter) != 0 {
			t.Fatalf("expected empty filter, got %#v (%v)", filter, err)
		}
	})
}

func TestFilter_Match(t *testing.T) {
	t.Parallel()

	doc := scheduleDoc([]any{"Monday", "Friday"}, "15:15", "16:45")

	cases := []struct {
		name   string
		filter persistence.Filter
		want   bool
	}{
		{"empty filter", nil, true},
		{"in with one listed day", persistence.Where(persistence.In("schedule_details.days", "Sunday", "Monday")), true},
		{"in without listed days", persistence.Where(persistence.In("schedule_details.days", "Tuesday")), false},
		{"bare day", persistence.Where(persistence.Eq("schedule_details.days", "Friday")), true},
		{"start at boundary", persistence.Where(persistence.Gte("schedule_details.start_time", "15:15")), true},
		{"start too early", persistence.Where(persistence.Gte("schedule_details.start_time", "15:30")), false},
		{"end at boundary", persistence.Where(persistence.Lte("schedule_details.end_time", "16:45")), true},
		{"end too late", persistence.Where(persistence.Lte("schedule_details.end_time", "16:00")), false},
		{"numeric comparison", persistence.Where(persistence.Gte("max_participants", 10)), true},
		{"numeric equality across types", persistence.Where(persistence.Eq("max_participants", int64(12))), true},
		{"identifier", persistence.Where(persistence.Eq("_id", "Chess Club")), true},
		{"all conditions must hold", persistence.Where(
			persistence.In("schedule_details.days", "Monday"),
			persistence.Gte("schedule_details.start_time", "16:00"),
		), false},
		{"missing field", persistence.Where(persistence.Eq("room", "A1")), false},
		{"string against number", persistence.Where(persistence.Gte("max_participants", "10")), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filter.Match(doc); got != tc.want {
				t.Fatalf("Match = %v, want %v", got, tc.want)
			}
		})
	}

	t.Run("record without schedule details never matches", func(t *testing.T) {
		bare := persistence.Document{"_id": "Mystery"}
		for _, f := range []persistence.Filter{
			persistence.Where(persistence.In("schedule_details.days", "Monday")),
			persistence.Where(persistence.Gte("schedule_details.start_time", "00:00")),
			persistence.Where(persistence.Lte("schedule_details.end_time", "23:59")),
		} {
			if f.Match(bare) {
				t.Fatalf("expected %#v not to match", f)
			}
		}
	})
}

func TestFilter_Validate(t *testing.T) {
	t.Parallel()

	bad := persistence.Filter{{Path: "description", Op: "$regex", Operand: "x"}}
	if err := bad.Validate(); !errors.Is(err, persistence.ErrUnsupportedOperator) {
		t.Fatalf("expected ErrUnsupportedOperator, got %v", err)
	}
	good := persistence.Where(persistence.In("schedule_details.days", "Monday"))
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFilter_BSON(t *testing.T) {
	t.Parallel()

	filter := persistence.Where(
		persistence.Gte("schedule_details.start_time", "15:00"),
		persistence.In("schedule_details.days", "Monday"),
		persistence.Lte("schedule_details.start_time", "18:00"),
	)
	got := filter.BSON()
	want := bson.D{
		{Key: "schedule_details.start_time", Value: bson.D{
			{Key: "$gte", Value: "15:00"},
			{Key: "$lte", Value: "18:00"},
		}},
		{Key: "schedule_details.days", Value: bson.D{
			{Key: "$in", Value: bson.A{"Monday"}},
		}},
	}
	gotRaw, err := bson.Marshal(got)
	if err != nil {
		t.Fatalf("marshal got: %v", err)
	}
	wantRaw, err := bson.Marshal(want)
	if err != nil {
		t.Fatalf("marshal want: %v", err)
	}
	if string(gotRaw) != string(wantRaw) {
		t.Fatalf("unexpected BSON filter: %v", got)
	}
}
