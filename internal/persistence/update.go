package persistence

import (
	"sort"

	"go.mongodb.org/mongo-driver/bson"
)

// FieldValue pairs a top level field name with a value.
type FieldValue struct {
	Field string
	Value any
}

// Update describes list mutations applied by Collection.UpdateOne. Push
// clauses run before Pull clauses.
type Update struct {
	Push []FieldValue
	Pull []FieldValue
}

// PushValue returns an update appending value to the list in field.
func PushValue(field string, value any) Update {
	return Update{Push: []FieldValue{{Field: field, Value: value}}}
}

// PullValue returns an update removing value from the list in field.
func PullValue(field string, value any) Update {
	return Update{Pull: []FieldValue{{Field: field, Value: value}}}
}

// IsZero reports whether the update has no clauses.
func (u Update) IsZero() bool {
	return len(u.Push) == 0 && len(u.Pull) == 0
}

// ParseUpdate converts the mapping form {"$push": {...}, "$pull": {...}}.
// Other update operators are ignored.
func ParseUpdate(update map[string]any) Update {
	return Update{
		Push: parseClauses(update["$push"]),
		Pull: parseClauses(update["$pull"]),
	}
}

func parseClauses(raw any) []FieldValue {
	fields, ok := asMap(raw)
	if !ok || len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]FieldValue, 0, len(names))
	for _, name := range names {
		out = append(out, FieldValue{Field: name, Value: fields[name]})
	}
	return out
}

// Apply mutates body in place. A push onto a missing field creates a one
// element list; a pull removes only the first equal element. Clauses naming a
// field that holds a non-list value are skipped.
func (u Update) Apply(body map[string]any) {
	for _, p := range u.Push {
		current, ok := body[p.Field]
		if !ok {
			body[p.Field] = []any{Normalize(p.Value)}
			continue
		}
		list, ok := asList(current)
		if !ok {
			continue
		}
		body[p.Field] = append(list, Normalize(p.Value))
	}
	for _, p := range u.Pull {
		current, ok := body[p.Field]
		if !ok {
			continue
		}
		list, ok := asList(current)
		if !ok {
			continue
		}
		for i, item := range list {
			if valuesEqual(item, p.Value) {
				body[p.Field] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
	}
}

// BSON renders the update as a MongoDB update document.
func (u Update) BSON() bson.D {
	out := bson.D{}
	if len(u.Push) > 0 {
		push := bson.D{}
		for _, p := range u.Push {
			push = append(push, bson.E{Key: p.Field, Value: p.Value})
		}
		out = append(out, bson.E{Key: "$push", Value: push})
	}
	if len(u.Pull) > 0 {
		pull := bson.D{}
		for _, p := range u.Pull {
			pull = append(pull, bson.E{Key: p.Field, Value: p.Value})
		}
		out = append(out, bson.E{Key: "$pull", Value: pull})
	}
	return out
}
