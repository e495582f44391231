package querydsl

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnMap resolves fields to SQL column expressions. Only mapped fields can
// be filtered or sorted on, which keeps caller input out of the SQL text.
type ColumnMap map[Field]string

// Dialect holds the SQL differences between stores
type Dialect struct {
	// Placeholder renders the n-th (1-based) bind parameter
	Placeholder func(n int) string
	// Bind converts a condition value before it is passed to the driver; nil keeps it as is
	Bind func(v any) any
	// Lower names the lower-casing SQL function; empty means LOWER
	Lower string
}

// Postgres numbers parameters $1, $2, ...
var Postgres = Dialect{
	Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
}

// QuestionMark uses positional ? parameters (SQLite, MySQL)
var QuestionMark = Dialect{
	Placeholder: func(int) string { return "?" },
}

// Where translates p into a boolean SQL expression. Parameters are numbered
// from start+1. The identity predicate translates to "1 = 1".
func Where(p Predicate, cols ColumnMap, d Dialect, start int) (string, []any, error) {
	if p.IsIdentity() {
		return "1 = 1", nil, nil
	}

	lower := d.Lower
	if lower == "" {
		lower = "LOWER"
	}

	clauses := make([]string, 0, len(p.conditions))
	args := make([]any, 0, len(p.conditions))
	n := start

	for _, c := range p.conditions {
		column, ok := cols[c.Field]
		if !ok {
			return "", nil, fmt.Errorf("querydsl: field %q cannot be filtered", c.Field)
		}

		n++
		ph := d.Placeholder(n)

		switch c.Operator {
		case OpContainsFold:
			s, ok := c.Value.(string)
			if !ok {
				return "", nil, fmt.Errorf("querydsl: %s on %q needs a string, got %T", c.Operator, c.Field, c.Value)
			}
			clauses = append(clauses, fmt.Sprintf(`%s(%s) LIKE %s ESCAPE '\'`, lower, column, ph))
			args = append(args, "%"+escapeLike(Lower(s))+"%")
		case OpLessThan:
			clauses = append(clauses, fmt.Sprintf("%s < %s", column, ph))
			args = append(args, bind(d, c.Value))
		case OpEqual:
			clauses = append(clauses, fmt.Sprintf("%s = %s", column, ph))
			args = append(args, bind(d, c.Value))
		default:
			return "", nil, fmt.Errorf("querydsl: unsupported operator %q", c.Operator)
		}
	}

	return strings.Join(clauses, " AND "), args, nil
}

// OrderBy translates sort keys into an ORDER BY clause. NULLs sort last in
// ascending order and first in descending order on every dialect. Empty sort
// yields an empty string.
func OrderBy(sort []Order, cols ColumnMap) (string, error) {
	if len(sort) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(sort))
	for _, o := range sort {
		column, ok := cols[o.Field]
		if !ok {
			return "", fmt.Errorf("querydsl: field %q cannot be sorted", o.Field)
		}
		switch o.Direction {
		case Ascending:
			keys = append(keys, column+" ASC NULLS LAST")
		case Descending:
			keys = append(keys, column+" DESC NULLS FIRST")
		default:
			return "", fmt.Errorf("querydsl: invalid direction %q for %q", o.Direction, o.Field)
		}
	}

	return "ORDER BY " + strings.Join(keys, ", "), nil
}

func bind(d Dialect, v any) any {
	if d.Bind == nil {
		return v
	}
	return d.Bind(v)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
