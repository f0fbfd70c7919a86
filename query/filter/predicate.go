// Package filter provides the filter tree accepted by list queries.
package filter

import "fmt"

// Operator is a comparison operator a predicate can emit
type Operator string

const (
	OpEquals Operator = "="
	OpGt     Operator = ">"
	OpLt     Operator = "<"
	OpGte    Operator = ">="
	OpLte    Operator = "<="
	OpLike   Operator = "LIKE"
	OpILike  Operator = "ILIKE"
)

// Condition is a single column comparison with its bind value.
// Value is already transformed (LIKE patterns carry their wildcards).
type Condition struct {
	Op    Operator
	Value any
}

// Predicate is a per-column comparison set. The set of implementations is closed:
// IntFilter, FloatFilter and StringFilter.
type Predicate interface {
	// Conditions returns the conditions for every operator that is set, in
	// declaration order. All of them are AND'ed by the caller.
	Conditions() []Condition
	isPredicate()
}

// IntFilter holds optional comparisons against an integer column
type IntFilter struct {
	Equals *int32
	Gt     *int32
	Lt     *int32
	Gte    *int32
	Lte    *int32
}

func (IntFilter) isPredicate() {}

// Conditions implements Predicate.
func (f IntFilter) Conditions() []Condition {
	var conds []Condition
	add := func(op Operator, v *int32) {
		if v != nil {
			conds = append(conds, Condition{Op: op, Value: int64(*v)})
		}
	}
	add(OpEquals, f.Equals)
	add(OpGt, f.Gt)
	add(OpLt, f.Lt)
	add(OpGte, f.Gte)
	add(OpLte, f.Lte)
	return conds
}

// FloatFilter holds optional comparisons against a floating point column
type FloatFilter struct {
	Equals *float64
	Gt     *float64
	Lt     *float64
	Gte    *float64
	Lte    *float64
}

func (FloatFilter) isPredicate() {}

// Conditions implements Predicate.
func (f FloatFilter) Conditions() []Condition {
	var conds []Condition
	add := func(op Operator, v *float64) {
		if v != nil {
			conds = append(conds, Condition{Op: op, Value: *v})
		}
	}
	add(OpEquals, f.Equals)
	add(OpGt, f.Gt)
	add(OpLt, f.Lt)
	add(OpGte, f.Gte)
	add(OpLte, f.Lte)
	return conds
}

// StringFilter holds optional comparisons against a text column
type StringFilter struct {
	Equals              *string
	Contains            *string
	StartsWith          *string
	EndsWith            *string
	ContainsInsensitive *string
}

func (StringFilter) isPredicate() {}

// Conditions implements Predicate.
func (f StringFilter) Conditions() []Condition {
	var conds []Condition
	if f.Equals != nil {
		conds = append(conds, Condition{Op: OpEquals, Value: *f.Equals})
	}
	if f.Contains != nil {
		conds = append(conds, Condition{Op: OpLike, Value: fmt.Sprintf("%%%s%%", *f.Contains)})
	}
	if f.StartsWith != nil {
		conds = append(conds, Condition{Op: OpLike, Value: fmt.Sprintf("%s%%", *f.StartsWith)})
	}
	if f.EndsWith != nil {
		conds = append(conds, Condition{Op: OpLike, Value: fmt.Sprintf("%%%s", *f.EndsWith)})
	}
	if f.ContainsInsensitive != nil {
		conds = append(conds, Condition{Op: OpILike, Value: fmt.Sprintf("%%%s%%", *f.ContainsInsensitive)})
	}
	return conds
}

// Int returns a pointer to v, for building IntFilter literals.
func Int(v int32) *int32 { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
