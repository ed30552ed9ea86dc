package persistence

import (
	"encoding/json"
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is the record view exchanged with collections: a mapping from
// field name to value. Nested documents are map[string]any and lists are []any
// once a document has passed through Normalize.
type Document map[string]any

// ID returns the record key carried in the _id field.
func (d Document) ID() (string, bool) {
	id, ok := d[IDField].(string)
	return id, ok
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = Normalize(v)
	}
	return out
}

// Lookup resolves a dotted path such as "schedule_details.days".
func (d Document) Lookup(path string) (any, bool) {
	var current any = map[string]any(d)
	for _, segment := range strings.Split(path, ".") {
		fields, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = fields[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Normalize deep copies a value, converting driver specific containers into
// map[string]any and []any so every backend shares one record shape.
func Normalize(v any) any {
	switch value := v.(type) {
	case nil:
		return nil
	case Document:
		return normalizeMap(value)
	case map[string]any:
		return normalizeMap(value)
	case primitive.M:
		return normalizeMap(value)
	case primitive.D:
		out := make(map[string]any, len(value))
		for _, e := range value {
			out[e.Key] = Normalize(e.Value)
		}
		return out
	case json.Number:
		if i, err := value.Int64(); err == nil {
			return i
		}
		if f, err := value.Float64(); err == nil {
			return f
		}
		return value.String()
	case string, bool, int, int32, int64, float64:
		return value
	}
	if list, ok := asList(v); ok {
		out := make([]any, len(list))
		for i, item := range list {
			out[i] = Normalize(item)
		}
		return out
	}
	return v
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Normalize(v)
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Document:
		return m, true
	case primitive.M:
		return m, true
	}
	return nil, false
}

// asList returns the elements of any slice or array value. Strings and byte
// slices are not lists.
func asList(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return list, true
	case primitive.A:
		return list, true
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out, true
	case []byte, string, nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// valuesEqual compares scalars by value so that 12, int32(12) and 12.0 are equal.
func valuesEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		return ok && sa == sb
	}
	return reflect.DeepEqual(Normalize(a), Normalize(b))
}

// compareValues orders two strings or two numbers. The boolean is false when
// the values are not comparable.
func compareValues(a, b any) (int, bool) {
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(sa, sb), true
	}
	fa, ok := toFloat(a)
	if !ok {
		return 0, false
	}
	fb, ok := toFloat(b)
	if !ok {
		return 0, false
	}
	switch {
	case fa < fb:
		return -1, true
	case fa > fb:
		return 1, true
	}
	return 0, true
}
