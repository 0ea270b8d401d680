package storage

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/julianstephens/maestro/internal/utils"
)

// Row is one record: column name to nil, string, int64, float64 or bool.
// Timestamp columns hold their stored text.
type Row map[string]any

// Clone returns a shallow copy.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns a text value, or "" for NULL.
func (r Row) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// OptString returns a text value, or nil for NULL.
func (r Row) OptString(field string) *string {
	s, ok := r[field].(string)
	if !ok {
		return nil
	}
	return &s
}

// Int returns an integer value, or 0 for NULL.
func (r Row) Int(field string) int {
	switch v := r[field].(type) {
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// OptFloat returns a numeric value, or nil for NULL.
func (r Row) OptFloat(field string) *float64 {
	switch v := r[field].(type) {
	case float64:
		return &v
	case int64:
		f := float64(v)
		return &f
	}
	return nil
}

// Bool returns a boolean value, false for NULL.
func (r Row) Bool(field string) bool {
	b, _ := r[field].(bool)
	return b
}

// Time parses a timestamp column.
func (r Row) Time(field string) (time.Time, error) {
	s, ok := r[field].(string)
	if !ok {
		return time.Time{}, fmt.Errorf("failed to parse %s: missing value", field)
	}
	t, err := utils.ParseTimestamp(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", field, err)
	}
	return t, nil
}

// OptTime parses a nullable timestamp column.
func (r Row) OptTime(field string) (*time.Time, error) {
	if r[field] == nil {
		return nil, nil
	}
	t, err := r.Time(field)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Normalize converts a Go value into the canonical form for a column kind.
// Pointers are dereferenced (nil pointers become NULL), named string and
// number types are unwrapped, and time.Time values are rendered as stored
// timestamps.
func Normalize(kind Kind, value any) (any, error) {
	value = canonical(value)
	if value == nil {
		return nil, nil
	}

	switch kind {
	case KindText:
		if v, ok := value.(string); ok {
			return v, nil
		}
		return nil, fmt.Errorf("expected text, got %T", value)
	case KindTimestamp:
		switch v := value.(type) {
		case time.Time:
			return utils.FormatTimestamp(v), nil
		case string:
			t, err := utils.ParseTimestamp(v)
			if err != nil {
				return nil, err
			}
			return utils.FormatTimestamp(t), nil
		}
		return nil, fmt.Errorf("expected timestamp, got %T", value)
	case KindInt:
		switch v := value.(type) {
		case int64:
			return v, nil
		case float64:
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("expected integer, got %v", v)
			}
			return int64(v), nil
		}
		return nil, fmt.Errorf("expected integer, got %T", value)
	case KindFloat:
		switch v := value.(type) {
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, nil
			}
			return v, nil
		case int64:
			return float64(v), nil
		}
		return nil, fmt.Errorf("expected number, got %T", value)
	case KindBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case int64:
			return v != 0, nil
		}
		return nil, fmt.Errorf("expected boolean, got %T", value)
	}
	return nil, fmt.Errorf("unsupported column kind %d", kind)
}

// Decode converts a value read from a SQL driver into the canonical form.
func Decode(kind Kind, raw any) (any, error) {
	if b, ok := raw.([]byte); ok {
		raw = string(b)
	}
	if raw == nil {
		return nil, nil
	}
	switch kind {
	case KindBool:
		if s, ok := raw.(string); ok {
			return strconv.ParseBool(s)
		}
	case KindInt:
		if s, ok := raw.(string); ok {
			return strconv.ParseInt(s, 10, 64)
		}
	case KindFloat:
		if s, ok := raw.(string); ok {
			return strconv.ParseFloat(s, 64)
		}
	case KindTimestamp:
		if t, ok := raw.(time.Time); ok {
			return utils.FormatTimestamp(t), nil
		}
	}
	return Normalize(kind, raw)
}

// canonical reduces value to nil, string, int64, float64, bool or time.Time.
func canonical(value any) any {
	if value == nil {
		return nil
	}
	if t, ok := value.(time.Time); ok {
		return t
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		return canonical(rv.Elem().Interface())
	}

	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Bool:
		return rv.Bool()
	}
	return value
}

// NormalizeRow validates every field of row against the collection schema.
func (c *Collection) NormalizeRow(row Row) (Row, error) {
	out := make(Row, len(row))
	for field, value := range row {
		col, err := c.Column(field)
		if err != nil {
			return nil, err
		}
		v, err := Normalize(col.Kind, value)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", c.Name, field, err)
		}
		out[field] = v
	}
	return out, nil
}

// NormalizeFilters validates filter fields and values against the schema.
func (c *Collection) NormalizeFilters(filters []Filter) ([]Filter, error) {
	out := make([]Filter, len(filters))
	for i, f := range filters {
		col, err := c.Column(f.Field)
		if err != nil {
			return nil, err
		}
		nf := Filter{Field: f.Field, Op: f.Op}
		switch f.Op {
		case OpIn:
			nf.Values = make([]any, len(f.Values))
			for j, v := range f.Values {
				if nf.Values[j], err = Normalize(col.Kind, v); err != nil {
					return nil, fmt.Errorf("filter %s: %w", f.Field, err)
				}
			}
		case OpEq, OpLt, OpGte, OpLte:
			if nf.Value, err = Normalize(col.Kind, f.Value); err != nil {
				return nil, fmt.Errorf("filter %s: %w", f.Field, err)
			}
		default:
			return nil, fmt.Errorf("unsupported filter op %q", f.Op)
		}
		out[i] = nf
	}
	return out, nil
}
