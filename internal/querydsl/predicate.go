// Package querydsl composes optional filter criteria into a single predicate
// and translates it to SQL or evaluates it in memory.
//
// A predicate is a conjunction of conditions. There is no OR and no negation:
// every condition added to a Builder narrows the result.
package querydsl

import (
	"fmt"
	"strings"
)

// Field names a filterable/sortable attribute of a record
type Field string

// Operator is the comparison a condition applies to its field
type Operator string

const (
	// OpContainsFold matches when the field contains the value, ignoring case
	OpContainsFold Operator = "containsFold"
	// OpLessThan matches when the field is strictly less than the value
	OpLessThan Operator = "lessThan"
	// OpEqual matches when the field equals the value
	OpEqual Operator = "equal"
)

// Condition is a single predicate fragment bound to one field
type Condition struct {
	Field    Field
	Operator Operator
	Value    any
}

// String renders the condition for logs
func (c Condition) String() string {
	return fmt.Sprintf("%s %s %v", c.Field, c.Operator, c.Value)
}

// Record exposes field values for in-memory evaluation. ok is false when the
// record has no value for the field (the SQL NULL case).
type Record interface {
	FieldValue(field Field) (value any, ok bool)
}

// Predicate is the AND of its conditions. The zero value is the identity
// predicate and matches every record.
type Predicate struct {
	conditions []Condition
}

// All returns the identity predicate
func All() Predicate {
	return Predicate{}
}

// Conditions returns a copy of the conditions in insertion order
func (p Predicate) Conditions() []Condition {
	out := make([]Condition, len(p.conditions))
	copy(out, p.conditions)
	return out
}

// IsIdentity reports whether p has no conditions
func (p Predicate) IsIdentity() bool {
	return len(p.conditions) == 0
}

// String renders the predicate for logs
func (p Predicate) String() string {
	if p.IsIdentity() {
		return "TRUE"
	}
	parts := make([]string, len(p.conditions))
	for i, c := range p.conditions {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}

// Matches evaluates p against r. A condition on a field the record has no
// value for does not match.
func (p Predicate) Matches(r Record) bool {
	for _, c := range p.conditions {
		if !c.Matches(r) {
			return false
		}
	}
	return true
}

// Matches evaluates a single condition against r
func (c Condition) Matches(r Record) bool {
	value, ok := r.FieldValue(c.Field)
	if !ok || value == nil {
		return false
	}

	switch c.Operator {
	case OpContainsFold:
		haystack, ok1 := value.(string)
		needle, ok2 := c.Value.(string)
		if !ok1 || !ok2 {
			return false
		}
		return strings.Contains(Lower(haystack), Lower(needle))
	case OpLessThan:
		cmp, ok := Compare(value, c.Value)
		return ok && cmp < 0
	case OpEqual:
		cmp, ok := Compare(value, c.Value)
		return ok && cmp == 0
	default:
		return false
	}
}

// Lower is the case rule of OpContainsFold. SQL stores lower the input with it
// and the column with an equivalent database function, so every store matches
// the same records.
func Lower(s string) string {
	return strings.ToLower(s)
}
