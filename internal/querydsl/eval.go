package querydsl

import (
	"slices"
)

// CompareRecords orders a and b by sort. A missing value sorts after every
// present value, so NULLs come last ascending and first descending, matching
// the ORDER BY that OrderBy emits.
func CompareRecords(a, b Record, sort []Order) int {
	for _, o := range sort {
		c := compareField(a, b, o.Field)
		if o.Direction == Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

func compareField(a, b Record, f Field) int {
	va, okA := a.FieldValue(f)
	vb, okB := b.FieldValue(f)
	okA = okA && va != nil
	okB = okB && vb != nil

	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}

	c, _ := Compare(va, vb)
	return c
}

// Filter returns the records matching p in their original order
func Filter[R Record](records []R, p Predicate) []R {
	out := make([]R, 0, len(records))
	for _, r := range records {
		if p.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// Apply filters records by p, sorts them by w.Sort and cuts the window. The
// input slice is not modified.
func Apply[R Record](records []R, p Predicate, w Window) []R {
	matched := Filter(records, p)
	slices.SortStableFunc(matched, func(a, b R) int {
		return CompareRecords(a, b, w.Sort)
	})

	if w.Offset >= len(matched) {
		return matched[:0]
	}
	if w.Offset > 0 {
		matched = matched[w.Offset:]
	}
	if w.Limit > 0 && w.Limit < len(matched) {
		matched = matched[:w.Limit]
	}
	return matched
}

// Count returns the number of records matching p
func Count[R Record](records []R, p Predicate) int64 {
	var n int64
	for _, r := range records {
		if p.Matches(r) {
			n++
		}
	}
	return n
}
