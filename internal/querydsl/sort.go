package querydsl

import (
	"fmt"
	"strings"
)

// Direction is a sort direction
type Direction string

const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

// ParseDirection parses "asc"/"desc" in any case. An empty string is ascending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ASC":
		return Ascending, nil
	case "DESC":
		return Descending, nil
	default:
		return "", fmt.Errorf("invalid sort direction %q: must be asc or desc", s)
	}
}

// Valid reports whether d is ASC or DESC
func (d Direction) Valid() bool {
	return d == Ascending || d == Descending
}

// Order is one sort key
type Order struct {
	Field     Field     `validate:"required"`
	Direction Direction `validate:"oneof=ASC DESC"`
}

// Asc sorts field ascending
func Asc(field Field) Order {
	return Order{Field: field, Direction: Ascending}
}

// Desc sorts field descending
func Desc(field Field) Order {
	return Order{Field: field, Direction: Descending}
}

// String renders the order as "field,dir"
func (o Order) String() string {
	return fmt.Sprintf("%s,%s", o.Field, strings.ToLower(string(o.Direction)))
}

// Window bounds a result set. Limit 0 means no upper bound.
type Window struct {
	Sort   []Order
	Limit  int
	Offset int
}

// WithTiebreaker returns sort with an ascending key on unique appended, unless
// unique is already one of the keys. Ordering by a unique key last makes the
// order total, so offset windows partition the result without gaps or repeats.
func WithTiebreaker(sort []Order, unique Field) []Order {
	out := make([]Order, 0, len(sort)+1)
	out = append(out, sort...)
	for _, o := range sort {
		if o.Field == unique {
			return out
		}
	}
	return append(out, Asc(unique))
}
