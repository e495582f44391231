package querydsl

import (
	"reflect"
	"strings"
	"time"
)

// Builder accumulates conditions for optional criteria. Absent values are
// skipped, so a builder fed only absent values builds the identity predicate.
//
// A Builder is meant for one request. Call Reset before reusing it.
type Builder struct {
	conditions []Condition
}

// NewBuilder returns an empty builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends fn(*value) to b when value is present. A nil pointer and a
// blank string (of any string type) are absent.
func Add[T any](b *Builder, value *T, fn func(T) Condition) *Builder {
	if value == nil || !present(*value) {
		return b
	}
	b.conditions = append(b.conditions, fn(*value))
	return b
}

// AddCondition appends an already built condition
func (b *Builder) AddCondition(c Condition) *Builder {
	b.conditions = append(b.conditions, c)
	return b
}

// Len returns the number of accumulated conditions
func (b *Builder) Len() int {
	return len(b.conditions)
}

// Build returns the AND of the accumulated conditions. The returned predicate
// does not share memory with the builder.
func (b *Builder) Build() Predicate {
	if len(b.conditions) == 0 {
		return All()
	}
	conditions := make([]Condition, len(b.conditions))
	copy(conditions, b.conditions)
	return Predicate{conditions: conditions}
}

// Reset drops all accumulated conditions
func (b *Builder) Reset() *Builder {
	b.conditions = b.conditions[:0]
	return b
}

func present(v any) bool {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return strings.TrimSpace(rv.String()) != ""
	}
	return true
}

// ContainsFold builds case-insensitive substring conditions on field
func ContainsFold(field Field) func(string) Condition {
	return func(v string) Condition {
		return Condition{Field: field, Operator: OpContainsFold, Value: strings.TrimSpace(v)}
	}
}

// Before builds "field < date" conditions
func Before(field Field) func(time.Time) Condition {
	return LessThan[time.Time](field)
}

// LessThan builds "field < value" conditions
func LessThan[T any](field Field) func(T) Condition {
	return func(v T) Condition {
		return Condition{Field: field, Operator: OpLessThan, Value: v}
	}
}

// Equal builds "field = value" conditions
func Equal[T any](field Field) func(T) Condition {
	return func(v T) Condition {
		return Condition{Field: field, Operator: OpEqual, Value: v}
	}
}
