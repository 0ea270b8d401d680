package storage

import "strings"

// Compare orders two canonical values. Numbers compare numerically, other
// values as strings. NULL sorts before everything.
func Compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}

	if x, ok := a.(bool); ok {
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	}

	return strings.Compare(toString(a), toString(b))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// Matches reports whether row satisfies every filter, using SQL semantics:
// comparisons against NULL are false except Eq with a nil value.
func Matches(row Row, filters []Filter) bool {
	for _, f := range filters {
		if !matchOne(row[f.Field], f) {
			return false
		}
	}
	return true
}

func matchOne(value any, f Filter) bool {
	switch f.Op {
	case OpEq:
		if f.Value == nil {
			return value == nil
		}
		return value != nil && Compare(value, f.Value) == 0
	case OpIn:
		if value == nil {
			return false
		}
		for _, v := range f.Values {
			if v != nil && Compare(value, v) == 0 {
				return true
			}
		}
		return false
	}

	if value == nil || f.Value == nil {
		return false
	}
	c := Compare(value, f.Value)
	switch f.Op {
	case OpLt:
		return c < 0
	case OpGte:
		return c >= 0
	case OpLte:
		return c <= 0
	}
	return false
}
