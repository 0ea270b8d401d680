// Package storage defines the row-store contract the repository is built on:
// named collections of flat rows, read through AND-ed filter lists and
// written with insert, update and delete calls that are each atomic.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrUniqueViolation is returned when a write collides with a unique index.
	ErrUniqueViolation = errors.New("unique constraint violated")
	// ErrUnknownCollection is returned for collections outside the schema.
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrUnknownField is returned for fields a collection does not define.
	ErrUnknownField = errors.New("unknown field")
	// ErrUnfiltered guards Update and Delete calls that would touch every row.
	ErrUnfiltered = errors.New("refusing to modify a collection without filters")
)

// Provider is a row store. Implementations live in the memory, sqlite and
// postgres sub-packages.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Rows
	Select(ctx context.Context, q Query) ([]Row, error)
	Insert(ctx context.Context, collection string, row Row) (Row, error)
	Update(ctx context.Context, collection string, filters []Filter, values Row) (int, error)
	Delete(ctx context.Context, collection string, filters []Filter) (int, error)

	// Utils
	GetConfigPath() string
	Driver() string
}

// Op is a filter comparison.
type Op string

const (
	OpEq  Op = "eq"
	OpIn  Op = "in"
	OpLt  Op = "lt"
	OpGte Op = "gte"
	OpLte Op = "lte"
)

// Filter restricts a query to rows whose Field satisfies Op against Value
// (or, for OpIn, any of Values). Eq with a nil Value matches NULL.
type Filter struct {
	Field  string
	Op     Op
	Value  any
	Values []any
}

func Eq(field string, value any) Filter  { return Filter{Field: field, Op: OpEq, Value: value} }
func Lt(field string, value any) Filter  { return Filter{Field: field, Op: OpLt, Value: value} }
func Gte(field string, value any) Filter { return Filter{Field: field, Op: OpGte, Value: value} }
func Lte(field string, value any) Filter { return Filter{Field: field, Op: OpLte, Value: value} }

// In matches rows whose field equals any of values. An empty list matches nothing.
func In[T any](field string, values []T) Filter {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return Filter{Field: field, Op: OpIn, Values: vs}
}

// Query selects rows from one collection. Limit 0 means no limit.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// From starts a query on collection.
func From(collection string) Query {
	return Query{Collection: collection}
}

// Where appends filters.
func (q Query) Where(filters ...Filter) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), filters...)
	return q
}

// Order sets the sort field and direction.
func (q Query) Order(field string, descending bool) Query {
	q.OrderBy = field
	q.Descending = descending
	return q
}

// Take limits the number of rows returned.
func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}
