package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnknownField is returned when input names a field the entity does not expose.
	ErrUnknownField = errors.New("unknown filter field")

	// ErrInvalidValue is returned when a filter value has the wrong kind.
	ErrInvalidValue = errors.New("invalid filter value")
)

// Kind is the logical type of a filterable column
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindString
)

// String returns the GraphQL filter type name for the kind.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "IntFilter"
	case KindFloat:
		return "FloatFilter"
	case KindString:
		return "StringFilter"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Field describes one filterable column
type Field struct {
	Name   string // input name, e.g. "userId"
	Column string // SQL column, e.g. "user_id"
	Kind   Kind
}

// Entity describes the filterable columns of a table, in declaration order.
type Entity struct {
	Name   string
	Table  string
	Fields []Field
}

// Field looks up a field by its input name or column name.
func (e *Entity) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name || f.Column == name {
			return f, true
		}
	}
	return Field{}, false
}

// Decode builds a Node from loosely typed input such as GraphQL argument maps or
// decoded JSON. The resulting field order follows the entity declaration, not the
// input map.
func (e *Entity) Decode(input map[string]any) (*Node, error) {
	node := &Node{}
	if input == nil {
		return node, nil
	}

	for key := range input {
		if key == "and" || key == "or" {
			continue
		}
		if _, ok := e.Field(key); !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, e.Name, key)
		}
	}

	for _, f := range e.Fields {
		raw, ok := input[f.Name]
		if !ok {
			raw, ok = input[f.Column]
		}
		if !ok || raw == nil {
			continue
		}
		ops, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s must be an object, got %T", ErrInvalidValue, e.Name, f.Name, raw)
		}
		p, err := decodePredicate(f, ops)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", e.Name, f.Name, err)
		}
		node.Where(f.Column, p)
	}

	var err error
	if node.And, err = e.decodeList(input["and"], "and"); err != nil {
		return nil, err
	}
	if node.Or, err = e.decodeList(input["or"], "or"); err != nil {
		return nil, err
	}
	return node, nil
}

func (e *Entity) decodeList(raw any, key string) ([]*Node, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s must be a list, got %T", ErrInvalidValue, e.Name, key, raw)
	}

	nodes := make([]*Node, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s[%d] must be an object, got %T", ErrInvalidValue, e.Name, key, i, item)
		}
		child, err := e.Decode(m)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, child)
	}
	return nodes, nil
}

func decodePredicate(f Field, ops map[string]any) (Predicate, error) {
	switch f.Kind {
	case KindInt:
		var p IntFilter
		targets := map[string]**int32{
			"equals": &p.Equals, "gt": &p.Gt, "lt": &p.Lt, "gte": &p.Gte, "lte": &p.Lte,
		}
		for name, v := range ops {
			dst, ok := targets[name]
			if !ok {
				return nil, fmt.Errorf("%w: operator %q on %s", ErrUnknownField, name, f.Kind)
			}
			if v == nil {
				continue
			}
			n, err := toInt32(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			*dst = &n
		}
		return p, nil

	case KindFloat:
		var p FloatFilter
		targets := map[string]**float64{
			"equals": &p.Equals, "gt": &p.Gt, "lt": &p.Lt, "gte": &p.Gte, "lte": &p.Lte,
		}
		for name, v := range ops {
			dst, ok := targets[name]
			if !ok {
				return nil, fmt.Errorf("%w: operator %q on %s", ErrUnknownField, name, f.Kind)
			}
			if v == nil {
				continue
			}
			n, err := toFloat64(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			*dst = &n
		}
		return p, nil

	case KindString:
		var p StringFilter
		targets := map[string]**string{
			"equals":              &p.Equals,
			"contains":            &p.Contains,
			"startsWith":          &p.StartsWith,
			"endsWith":            &p.EndsWith,
			"containsInsensitive": &p.ContainsInsensitive,
		}
		for name, v := range ops {
			dst, ok := targets[name]
			if !ok {
				return nil, fmt.Errorf("%w: operator %q on %s", ErrUnknownField, name, f.Kind)
			}
			if v == nil {
				continue
			}
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s expects a string, got %T", ErrInvalidValue, name, v)
			}
			*dst = &s
		}
		return p, nil
	}

	return nil, fmt.Errorf("%w: unsupported kind %s", ErrInvalidValue, f.Kind)
}

func toInt32(v any) (int32, error) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int32:
		return x, nil
	case int64:
		n = x
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrInvalidValue, x)
		}
		if x < math.MinInt32 || x > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %v overflows Int", ErrInvalidValue, x)
		}
		return int32(x), nil
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s is not an integer", ErrInvalidValue, x)
		}
		n = i
	default:
		return 0, fmt.Errorf("%w: expected an integer, got %T", ErrInvalidValue, v)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d overflows Int", ErrInvalidValue, n)
	}
	return int32(n), nil
}

func toFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s is not a number", ErrInvalidValue, x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: expected a number, got %T", ErrInvalidValue, v)
	}
}
