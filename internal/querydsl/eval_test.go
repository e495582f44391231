package querydsl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ids(rs []row) []int64 {
	out := make([]int64, len(rs))
	for i, r := range rs {
		out[i] = r[fieldID].(int64)
	}
	return out
}

func TestApply_SortsWithNullOrdering(t *testing.T) {
	d := func(y int) time.Time { return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC) }
	records := []row{
		{fieldID: int64(1), fieldLast: "b", fieldBirth: d(1990)},
		{fieldID: int64(2), fieldLast: "a"},
		{fieldID: int64(3), fieldLast: "b", fieldBirth: d(1980)},
		{fieldID: int64(4), fieldLast: "a", fieldBirth: d(2000)},
	}

	asc := Apply(records, All(), Window{Sort: []Order{Asc(fieldBirth), Asc(fieldID)}})
	assert.Equal(t, []int64{3, 1, 4, 2}, ids(asc))

	desc := Apply(records, All(), Window{Sort: []Order{Desc(fieldBirth), Asc(fieldID)}})
	assert.Equal(t, []int64{2, 4, 1, 3}, ids(desc))

	multi := Apply(records, All(), Window{Sort: []Order{Asc(fieldLast), Desc(fieldID)}})
	assert.Equal(t, []int64{4, 2, 3, 1}, ids(multi))

	assert.Equal(t, int64(1), records[0][fieldID], "input is not reordered")
}

func TestApply_Window(t *testing.T) {
	records := make([]row, 0, 5)
	for i := int64(5); i >= 1; i-- {
		records = append(records, row{fieldID: i, fieldFirst: "x"})
	}
	sort := []Order{Asc(fieldID)}

	assert.Equal(t, []int64{1, 2}, ids(Apply(records, All(), Window{Sort: sort, Limit: 2})))
	assert.Equal(t, []int64{3, 4}, ids(Apply(records, All(), Window{Sort: sort, Limit: 2, Offset: 2})))
	assert.Equal(t, []int64{5}, ids(Apply(records, All(), Window{Sort: sort, Limit: 2, Offset: 4})))
	assert.Empty(t, Apply(records, All(), Window{Sort: sort, Limit: 2, Offset: 6}))
	assert.Len(t, Apply(records, All(), Window{Sort: sort}), 5)
}

func TestFilterAndCount(t *testing.T) {
	records := []row{
		{fieldID: int64(1), fieldLast: "Ivanov"},
		{fieldID: int64(2), fieldLast: "Smith"},
		{fieldID: int64(3), fieldLast: "Petrova"},
	}
	p := NewBuilder().AddCondition(ContainsFold(fieldLast)("OV")).Build()

	assert.Equal(t, []int64{1, 3}, ids(Filter(records, p)))
	assert.Equal(t, int64(2), Count(records, p))
	assert.Equal(t, int64(3), Count(records, All()))
}
