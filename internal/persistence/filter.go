package persistence

import (
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Operator names a comparison understood by the query interpreter.
type Operator string

const (
	OpEq  Operator = "$eq"
	OpIn  Operator = "$in"
	OpGte Operator = "$gte"
	OpLte Operator = "$lte"
)

func (op Operator) valid() bool {
	switch op {
	case OpEq, OpIn, OpGte, OpLte:
		return true
	}
	return false
}

// defaultOperators maps paths whose bare values mean something other than
// equality. A bare start time selects activities starting at or after it and a
// bare end time selects activities ending at or before it.
var defaultOperators = map[string]Operator{
	"schedule_details.start_time": OpGte,
	"schedule_details.end_time":   OpLte,
}

// Condition is a single {path, operator, operand} test against a document.
type Condition struct {
	Path    string
	Op      Operator
	Operand any
}

// Filter is a conjunction of conditions. The zero value matches every document.
type Filter []Condition

// Eq matches documents whose field equals value, or whose list field contains it.
func Eq(path string, value any) Condition {
	return Condition{Path: path, Op: OpEq, Operand: value}
}

// In matches documents whose field (or any element of a list field) is one of values.
func In(path string, values ...any) Condition {
	return Condition{Path: path, Op: OpIn, Operand: values}
}

// Gte matches documents whose field orders at or after value.
func Gte(path string, value any) Condition {
	return Condition{Path: path, Op: OpGte, Operand: value}
}

// Lte matches documents whose field orders at or before value.
func Lte(path string, value any) Condition {
	return Condition{Path: path, Op: OpLte, Operand: value}
}

// Where builds a filter from conditions.
func Where(conditions ...Condition) Filter {
	return Filter(conditions)
}

// ParseFilter converts the mapping form of a query, for example
//
//	{"schedule_details.days": {"$in": ["Monday"]}, "schedule_details.start_time": "15:00"}
//
// into a Filter. Paths are processed in sorted order so the result is stable.
func ParseFilter(query map[string]any) (Filter, error) {
	if len(query) == 0 {
		return nil, nil
	}
	paths := make([]string, 0, len(query))
	for path := range query {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	filter := make(Filter, 0, len(paths))
	for _, path := range paths {
		if err := validatePath(path); err != nil {
			return nil, err
		}
		raw := query[path]
		operators, ok := asMap(raw)
		if !ok {
			op, ok := defaultOperators[path]
			if !ok {
				op = OpEq
			}
			filter = append(filter, Condition{Path: path, Op: op, Operand: raw})
			continue
		}

		names := make([]string, 0, len(operators))
		for name := range operators {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			op := Operator(name)
			if !op.valid() {
				return nil, fmt.Errorf("%w: %s on %s", ErrUnsupportedOperator, name, path)
			}
			operand := operators[name]
			if op == OpIn {
				list, ok := asList(operand)
				if !ok {
					return nil, fmt.Errorf("%w: %s on %s expects a list", ErrInvalidOperand, name, path)
				}
				operand = list
			}
			filter = append(filter, Condition{Path: path, Op: op, Operand: operand})
		}
	}
	return filter, nil
}

// Validate checks every condition for a supported path, operator and operand.
func (f Filter) Validate() error {
	for _, c := range f {
		if err := validatePath(c.Path); err != nil {
			return err
		}
		if !c.Op.valid() {
			return fmt.Errorf("%w: %s on %s", ErrUnsupportedOperator, c.Op, c.Path)
		}
		if c.Op == OpIn {
			if _, ok := asList(c.Operand); !ok {
				return fmt.Errorf("%w: %s on %s expects a list", ErrInvalidOperand, c.Op, c.Path)
			}
		}
	}
	return nil
}

func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty path", ErrUnsupportedPath)
	}
	if strings.HasPrefix(path, "$") {
		return fmt.Errorf("%w: %s", ErrUnsupportedPath, path)
	}
	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return fmt.Errorf("%w: %s", ErrUnsupportedPath, path)
		}
	}
	return nil
}

// Match reports whether the document satisfies every condition.
func (f Filter) Match(doc Document) bool {
	for _, c := range f {
		if !c.Match(doc) {
			return false
		}
	}
	return true
}

// Match evaluates the condition against a document. A missing field never matches.
func (c Condition) Match(doc Document) bool {
	value, ok := doc.Lookup(c.Path)
	if !ok {
		return false
	}
	if list, ok := asList(value); ok {
		for _, item := range list {
			if c.matchScalar(item) {
				return true
			}
		}
		return false
	}
	return c.matchScalar(value)
}

func (c Condition) matchScalar(value any) bool {
	switch c.Op {
	case OpEq:
		return valuesEqual(value, c.Operand)
	case OpIn:
		candidates, _ := asList(c.Operand)
		for _, candidate := range candidates {
			if valuesEqual(value, candidate) {
				return true
			}
		}
		return false
	case OpGte:
		cmp, ok := compareValues(value, c.Operand)
		return ok && cmp >= 0
	case OpLte:
		cmp, ok := compareValues(value, c.Operand)
		return ok && cmp <= 0
	}
	return false
}

// BSON renders the filter as a MongoDB query document. Conditions on the same
// path are merged into one operator document.
func (f Filter) BSON() bson.D {
	out := bson.D{}
	index := make(map[string]int, len(f))
	for _, c := range f {
		operand := c.Operand
		if c.Op == OpIn {
			list, _ := asList(operand)
			operand = bson.A(list)
		}
		if i, ok := index[c.Path]; ok {
			ops := out[i].Value.(bson.D)
			out[i].Value = append(ops, bson.E{Key: string(c.Op), Value: operand})
			continue
		}
		index[c.Path] = len(out)
		out = append(out, bson.E{Key: c.Path, Value: bson.D{{Key: string(c.Op), Value: operand}}})
	}
	return out
}
