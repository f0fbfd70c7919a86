// Package bind coerces filter parameters into driver values before they are
// attached to a statement's positional placeholders.
package bind

import (
	"database/sql"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Kind classifies how a value is bound.
type Kind int

const (
	BindNull Kind = iota
	BindInt32
	BindInt64
	BindFloat64
	BindTimestamp
	BindText
	BindBool
)

var kindNames = [...]string{
	BindNull:      "null",
	BindInt32:     "int4",
	BindInt64:     "int8",
	BindFloat64:   "float8",
	BindTimestamp: "timestamptz",
	BindText:      "text",
	BindBool:      "bool",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Args binds params in order. The result has the same length as params and
// position i always holds the coerced params[i].
func Args(params []any) []any {
	out := make([]any, len(params))
	for i, p := range params {
		out[i] = Value(p)
	}
	return out
}

// Value coerces a single parameter.
func Value(v any) any {
	_, out := coerce(v)
	return out
}

// KindOf reports how v would be bound.
func KindOf(v any) Kind {
	k, _ := coerce(v)
	return k
}

// Kinds returns the bind kind of every parameter.
func Kinds(params []any) []Kind {
	out := make([]Kind, len(params))
	for i, p := range params {
		out[i] = KindOf(p)
	}
	return out
}

func coerce(v any) (Kind, any) {
	switch x := v.(type) {
	case nil:
		return null()
	case int:
		return integer(int64(x))
	case int8:
		return integer(int64(x))
	case int16:
		return integer(int64(x))
	case int32:
		return BindInt32, x
	case int64:
		return integer(x)
	case uint8:
		return integer(int64(x))
	case uint16:
		return integer(int64(x))
	case uint32:
		return integer(int64(x))
	case float32:
		return BindFloat64, float64(x)
	case float64:
		return BindFloat64, x
	case json.Number:
		if i, err := strconv.ParseInt(string(x), 10, 64); err == nil {
			return integer(i)
		}
		if f, err := x.Float64(); err == nil {
			return BindFloat64, f
		}
		return text(string(x))
	case string:
		return text(x)
	case bool:
		return BindBool, x
	case time.Time:
		return BindTimestamp, x.UTC()
	default:
		return null()
	}
}

// integer binds as int4, widening to int8 when the value does not fit.
func integer(i int64) (Kind, any) {
	if i < math.MinInt32 || i > math.MaxInt32 {
		return BindInt64, i
	}
	return BindInt32, int32(i)
}

// text binds RFC 3339 strings as timestamptz and anything else as text.
func text(s string) (Kind, any) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return BindTimestamp, t.UTC()
	}
	return BindText, s
}

func null() (Kind, any) {
	return BindNull, sql.NullString{}
}
