package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Condition constrains one query attribute: either a single required value
// or an ordered set of acceptable alternatives produced by relaxation.
type Condition struct {
	scalar Value
	set    []Value
}

// Scalar builds an exact-match condition.
func Scalar(v Value) Condition {
	return Condition{scalar: v}
}

// AnyOf builds a set condition matching any of the given values. The slice
// is copied; an empty or nil slice yields a condition matching nothing.
func AnyOf(values []Value) Condition {
	set := make([]Value, len(values))
	copy(set, values)
	return Condition{set: set}
}

// IsSet reports whether the condition holds a value set rather than a
// single scalar.
func (c Condition) IsSet() bool { return c.set != nil }

// Scalar returns the single required value, if the condition holds one.
func (c Condition) Scalar() (Value, bool) {
	if c.set != nil || c.scalar == nil {
		return nil, false
	}
	return c.scalar, true
}

// Values returns the acceptable values as a fresh slice.
func (c Condition) Values() []Value {
	if c.set != nil {
		out := make([]Value, len(c.set))
		copy(out, c.set)
		return out
	}
	if c.scalar == nil {
		return nil
	}
	return []Value{c.scalar}
}

// Matches reports whether a dataset cell satisfies the condition.
func (c Condition) Matches(v Value) bool {
	if c.set != nil {
		for _, alt := range c.set {
			if alt.Equal(v) {
				return true
			}
		}
		return false
	}
	return c.scalar != nil && c.scalar.Equal(v)
}

func (c Condition) String() string {
	if c.set == nil {
		if c.scalar == nil {
			return "<empty>"
		}
		return c.scalar.String()
	}
	parts := make([]string, 0, len(c.set))
	for _, v := range c.set {
		parts = append(parts, v.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Binding pairs an attribute with its required value, used to build queries
// in a fixed attribute order.
type Binding struct {
	Attr  string
	Value Value
}

// Query is an ordered mapping from attribute names to conditions. Queries
// are immutable; WithCondition derives a modified copy.
type Query struct {
	attrs []string
	conds map[string]Condition
}

// NewQuery builds a query from ordered bindings. Attribute names must be
// unique and non-empty and every value non-nil.
func NewQuery(bindings ...Binding) (Query, error) {
	q := Query{
		attrs: make([]string, 0, len(bindings)),
		conds: make(map[string]Condition, len(bindings)),
	}
	for _, b := range bindings {
		if b.Attr == "" {
			return Query{}, WrapError(ErrInvalidInput, "build query", fmt.Errorf("empty attribute name"))
		}
		if _, dup := q.conds[b.Attr]; dup {
			return Query{}, WrapError(ErrInvalidInput, "build query", fmt.Errorf("duplicate attribute %q", b.Attr))
		}
		if b.Value == nil {
			return Query{}, WrapError(ErrInvalidInput, "build query", fmt.Errorf("attribute %q has no value", b.Attr))
		}
		q.attrs = append(q.attrs, b.Attr)
		q.conds[b.Attr] = Scalar(b.Value)
	}
	return q, nil
}

func (q Query) Len() int { return len(q.attrs) }

// Attributes returns the attribute names in query order.
func (q Query) Attributes() []string {
	out := make([]string, len(q.attrs))
	copy(out, q.attrs)
	return out
}

func (q Query) Condition(attr string) (Condition, bool) {
	c, ok := q.conds[attr]
	return c, ok
}

// WithCondition derives a copy of the query with one condition replaced.
// An attribute not yet present is appended in last position.
func (q Query) WithCondition(attr string, c Condition) Query {
	next := Query{
		attrs: make([]string, len(q.attrs), len(q.attrs)+1),
		conds: make(map[string]Condition, len(q.conds)+1),
	}
	copy(next.attrs, q.attrs)
	for k, v := range q.conds {
		next.conds[k] = v
	}
	if _, ok := next.conds[attr]; !ok {
		next.attrs = append(next.attrs, attr)
	}
	next.conds[attr] = c
	return next
}

// Expr renders the query as an AND-joined filter expression: scalar
// conditions as equalities with strings single-quoted, set conditions as
// membership tests over bracketed lists.
func (q Query) Expr() string {
	parts := make([]string, 0, len(q.attrs))
	for _, attr := range q.attrs {
		c := q.conds[attr]
		if c.set == nil {
			parts = append(parts, attr+" == "+exprLiteral(c.scalar))
			continue
		}
		alts := make([]string, 0, len(c.set))
		for _, v := range c.set {
			alts = append(alts, exprLiteral(v))
		}
		parts = append(parts, attr+" in ["+strings.Join(alts, ", ")+"]")
	}
	return strings.Join(parts, " and ")
}

func exprLiteral(v Value) string {
	if t, ok := v.(Text); ok {
		return "'" + strings.ReplaceAll(string(t), "'", `\'`) + "'"
	}
	return v.String()
}

type queryBindingJSON struct {
	Attr  string `json:"attr"`
	Value any    `json:"value"`
}

// MarshalJSON renders the query as an ordered array of attribute bindings,
// set conditions as JSON arrays.
func (q Query) MarshalJSON() ([]byte, error) {
	out := make([]queryBindingJSON, 0, len(q.attrs))
	for _, attr := range q.attrs {
		c := q.conds[attr]
		var payload any
		if c.set != nil {
			vals := make([]any, 0, len(c.set))
			for _, v := range c.set {
				vals = append(vals, valueToJSON(v))
			}
			payload = vals
		} else {
			payload = valueToJSON(c.scalar)
		}
		out = append(out, queryBindingJSON{Attr: attr, Value: payload})
	}
	return json.Marshal(out)
}

func (q *Query) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw []queryBindingJSON
	if err := dec.Decode(&raw); err != nil {
		return WrapError(ErrInvalidInput, "decode query", err)
	}
	next := Query{
		attrs: make([]string, 0, len(raw)),
		conds: make(map[string]Condition, len(raw)),
	}
	for _, b := range raw {
		if b.Attr == "" {
			return WrapError(ErrInvalidInput, "decode query", fmt.Errorf("empty attribute name"))
		}
		if _, dup := next.conds[b.Attr]; dup {
			return WrapError(ErrInvalidInput, "decode query", fmt.Errorf("duplicate attribute %q", b.Attr))
		}
		cond, err := conditionFromJSON(b.Value)
		if err != nil {
			return fmt.Errorf("attribute %q: %w", b.Attr, err)
		}
		next.attrs = append(next.attrs, b.Attr)
		next.conds[b.Attr] = cond
	}
	*q = next
	return nil
}

func conditionFromJSON(raw any) (Condition, error) {
	if list, ok := raw.([]any); ok {
		vals := make([]Value, 0, len(list))
		for _, item := range list {
			v, err := valueFromJSON(item)
			if err != nil {
				return Condition{}, err
			}
			vals = append(vals, v)
		}
		return AnyOf(vals), nil
	}
	v, err := valueFromJSON(raw)
	if err != nil {
		return Condition{}, err
	}
	return Scalar(v), nil
}
