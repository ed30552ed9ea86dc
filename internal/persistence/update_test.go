package persistence_test

import (
	"reflect"
	"testing"

	"github.com/example/activity-directory/internal/persistence"
)

func TestUpdate_Apply(t *testing.T) {
	t.Parallel()

	t.Run("push appends and creates lists", func(t *testing.T) {
		t.Parallel()

		body := map[string]any{"participants": []any{"a@mergington.edu"}}
		persistence.Update{Push: []persistence.FieldValue{
			{Field: "participants", Value: "b@mergington.edu"},
			{Field: "waitlist", Value: "c@mergington.edu"},
		}}.Apply(body)

		if want := []any{"a@mergington.edu", "b@mergington.edu"}; !reflect.DeepEqual(body["participants"], want) {
			t.Fatalf("unexpected participants: %#v", body["participants"])
		}
		if want := []any{"c@mergington.edu"}; !reflect.DeepEqual(body["waitlist"], want) {
			t.Fatalf("unexpected waitlist: %#v", body["waitlist"])
		}
	})

	t.Run("pull removes the first occurrence only", func(t *testing.T) {
		t.Parallel()

		body := map[string]any{"participants": []string{"a", "b", "a"}}
		persistence.PullValue("participants", "a").Apply(body)
		if want := []any{"b", "a"}; !reflect.DeepEqual(body["participants"], want) {
			t.Fatalf("unexpected participants: %#v", body["participants"])
		}
	})

	t.Run("pull of missing values is a no-op", func(t *testing.T) {
		t.Parallel()

		body := map[string]any{"participants": []any{"a"}}
		persistence.Update{Pull: []persistence.FieldValue{
			{Field: "participants", Value: "z"},
			{Field: "missing", Value: "a"},
		}}.Apply(body)
		if want := []any{"a"}; !reflect.DeepEqual(body["participants"], want) {
			t.Fatalf("unexpected participants: %#v", body["participants"])
		}
		if _, ok := body["missing"]; ok {
			t.Fatalf("pull must not create fields")
		}
	})

	t.Run("push runs before pull", func(t *testing.T) {
		t.Parallel()

		body := map[string]any{}
		persistence.Update{
			Push: []persistence.FieldValue{{Field: "participants", Value: "a"}},
			Pull: []persistence.FieldValue{{Field: "participants", Value: "a"}},
		}.Apply(body)
		if list, _ := body["participants"].([]any); len(list) != 0 {
			t.Fatalf("expected push then pull to leave an empty list, got %#v", body["participants"])
		}
	})

	t.Run("non-list fields are left alone", func(t *testing.T) {
		t.Parallel()

		body := map[string]any{"description": "text"}
		persistence.PushValue("description", "more").Apply(body)
		if body["description"] != "text" {
			t.Fatalf("unexpected description: %#v", body["description"])
		}
	})
}

func TestParseUpdate(t *testing.T) {
	t.Parallel()

	update := persistence.ParseUpdate(map[string]any{
		"$push": map[string]any{"participants": "a"},
		"$pull": map[string]any{"participants": "b"},
		"$set":  map[string]any{"description": "ignored"},
	})
	if len(update.Push) != 1 || update.Push[0].Value != "a" {
		t.Fatalf("unexpected push clauses: %#v", update.Push)
	}
	if len(update.Pull) != 1 || update.Pull[0].Value != "b" {
		t.Fatalf("unexpected pull clauses: %#v", update.Pull)
	}

	if !persistence.ParseUpdate(map[string]any{"$inc": map[string]any{"n": 1}}).IsZero() {
		t.Fatalf("expected unsupported operators to be ignored")
	}
}
