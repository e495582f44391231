package querydsl

import (
	"reflect"
	"strings"
	"time"
)

// Compare orders two field values. ok is false when the values are of
// incomparable kinds. Named string and integer types (enums, ids) compare by
// their underlying value.
func Compare(a, b any) (cmp int, ok bool) {
	if ta, isTime := asTime(a); isTime {
		tb, isTime := asTime(b)
		if !isTime {
			return 0, false
		}
		return ta.Compare(tb), true
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() {
		return 0, false
	}

	switch {
	case isString(va) && isString(vb):
		return strings.Compare(va.String(), vb.String()), true
	case isInt(va) && isInt(vb):
		return compareOrdered(va.Int(), vb.Int()), true
	case isNumber(va) && isNumber(vb):
		return compareOrdered(toFloat(va), toFloat(vb)), true
	default:
		return 0, false
	}
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	default:
		return time.Time{}, false
	}
}

func isString(v reflect.Value) bool {
	return v.Kind() == reflect.String
}

func isInt(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isNumber(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return isInt(v)
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default:
		return float64(v.Int())
	}
}

func compareOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
