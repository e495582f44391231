package querydsl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testColumns = ColumnMap{
	fieldID:    "u.id",
	fieldFirst: "u.firstname",
	fieldLast:  "u.lastname",
	fieldBirth: "u.birth_date",
}

func TestWhere_Identity(t *testing.T) {
	clause, args, err := Where(All(), testColumns, Postgres, 0)
	require.NoError(t, err)
	assert.Equal(t, "1 = 1", clause)
	assert.Empty(t, args)
}

func TestWhere_Postgres(t *testing.T) {
	cutoff := time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC)
	p := NewBuilder().
		AddCondition(ContainsFold(fieldFirst)("Ov")).
		AddCondition(Before(fieldBirth)(cutoff)).
		Build()

	clause, args, err := Where(p, testColumns, Postgres, 2)
	require.NoError(t, err)
	assert.Equal(t, `LOWER(u.firstname) LIKE $3 ESCAPE '\' AND u.birth_date < $4`, clause)
	assert.Equal(t, []any{"%ov%", cutoff}, args)
}

func TestWhere_QuestionMarkWithBind(t *testing.T) {
	d := QuestionMark
	d.Bind = func(v any) any {
		if tm, ok := v.(time.Time); ok {
			return tm.Format("2006-01-02")
		}
		return v
	}
	p := NewBuilder().
		AddCondition(Equal[int64](fieldID)(7)).
		AddCondition(Before(fieldBirth)(time.Date(2001, 2, 3, 0, 0, 0, 0, time.UTC))).
		Build()

	clause, args, err := Where(p, testColumns, d, 0)
	require.NoError(t, err)
	assert.Equal(t, "u.id = ? AND u.birth_date < ?", clause)
	assert.Equal(t, []any{int64(7), "2001-02-03"}, args)
}

func TestWhere_EscapesLikeWildcards(t *testing.T) {
	p := NewBuilder().AddCondition(ContainsFold(fieldLast)(`50%_A\b`)).Build()

	_, args, err := Where(p, testColumns, Postgres, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{`%50\%\_a\\b%`}, args)
}

func TestWhere_Errors(t *testing.T) {
	_, _, err := Where(NewBuilder().AddCondition(ContainsFold("password")("x")).Build(), testColumns, Postgres, 0)
	assert.Error(t, err)

	_, _, err = Where(NewBuilder().AddCondition(Condition{Field: fieldFirst, Operator: OpContainsFold, Value: 5}).Build(), testColumns, Postgres, 0)
	assert.Error(t, err)

	_, _, err = Where(NewBuilder().AddCondition(Condition{Field: fieldFirst, Operator: "like"}).Build(), testColumns, Postgres, 0)
	assert.Error(t, err)
}

func TestOrderBy(t *testing.T) {
	clause, err := OrderBy(nil, testColumns)
	require.NoError(t, err)
	assert.Empty(t, clause)

	clause, err = OrderBy([]Order{Desc(fieldLast), Asc(fieldID)}, testColumns)
	require.NoError(t, err)
	assert.Equal(t, "ORDER BY u.lastname DESC NULLS FIRST, u.id ASC NULLS LAST", clause)

	_, err = OrderBy([]Order{Asc("password")}, testColumns)
	assert.Error(t, err)

	_, err = OrderBy([]Order{{Field: fieldID, Direction: "UP"}}, testColumns)
	assert.Error(t, err)
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{"": Ascending, "asc": Ascending, " DESC ": Descending, "Desc": Descending} {
		got, err := ParseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseDirection("sideways")
	assert.Error(t, err)
}

func TestWithTiebreaker(t *testing.T) {
	assert.Equal(t, []Order{Asc(fieldID)}, WithTiebreaker(nil, fieldID))

	sort := []Order{Desc(fieldLast)}
	got := WithTiebreaker(sort, fieldID)
	assert.Equal(t, []Order{Desc(fieldLast), Asc(fieldID)}, got)
	assert.Len(t, sort, 1)

	already := []Order{Desc(fieldID), Asc(fieldLast)}
	assert.Equal(t, already, WithTiebreaker(already, fieldID))

	assert.Equal(t, "lastName,desc", Desc(fieldLast).String())
}
