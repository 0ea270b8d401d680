package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Dialect captures what differs between the SQL backends.
type Dialect struct {
	Name string
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string
	// BindBool converts a boolean argument for the driver.
	BindBool func(bool) any
	// MapError translates driver errors, e.g. unique violations.
	MapError func(error) error
}

type builder struct {
	d    Dialect
	sb   strings.Builder
	args []any
}

func (b *builder) bind(v any) string {
	if x, ok := v.(bool); ok && b.d.BindBool != nil {
		v = b.d.BindBool(x)
	}
	b.args = append(b.args, v)
	return b.d.Placeholder(len(b.args))
}

func quote(ident string) string {
	return `"` + ident + `"`
}

func (b *builder) where(filters []Filter) {
	if len(filters) == 0 {
		return
	}
	clauses := make([]string, 0, len(filters))
	for _, f := range filters {
		col := quote(f.Field)
		switch f.Op {
		case OpEq:
			if f.Value == nil {
				clauses = append(clauses, col+" IS NULL")
			} else {
				clauses = append(clauses, col+" = "+b.bind(f.Value))
			}
		case OpIn:
			if len(f.Values) == 0 {
				clauses = append(clauses, "1 = 0")
				continue
			}
			ph := make([]string, len(f.Values))
			for i, v := range f.Values {
				ph[i] = b.bind(v)
			}
			clauses = append(clauses, col+" IN ("+strings.Join(ph, ", ")+")")
		case OpLt:
			clauses = append(clauses, col+" < "+b.bind(f.Value))
		case OpGte:
			clauses = append(clauses, col+" >= "+b.bind(f.Value))
		case OpLte:
			clauses = append(clauses, col+" <= "+b.bind(f.Value))
		}
	}
	b.sb.WriteString(" WHERE ")
	b.sb.WriteString(strings.Join(clauses, " AND "))
}

// BuildSelect renders a validated query. It returns the selected columns in order.
func BuildSelect(d Dialect, q Query) (string, []any, []Column, error) {
	c, err := Lookup(q.Collection)
	if err != nil {
		return "", nil, nil, err
	}
	filters, err := c.NormalizeFilters(q.Filters)
	if err != nil {
		return "", nil, nil, err
	}

	b := &builder{d: d}
	cols := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		cols[i] = quote(col.Name)
	}
	fmt.Fprintf(&b.sb, "SELECT %s FROM %s", strings.Join(cols, ", "), quote(c.Name))
	b.where(filters)

	if q.OrderBy != "" {
		if _, err := c.Column(q.OrderBy); err != nil {
			return "", nil, nil, err
		}
		dir := "ASC"
		if q.Descending {
			dir = "DESC"
		}
		fmt.Fprintf(&b.sb, " ORDER BY %s %s", quote(q.OrderBy), dir)
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b.sb, " LIMIT %d", q.Limit)
	}
	return b.sb.String(), b.args, c.Columns, nil
}

// PrepareInsert normalizes row and fills generated fields: a uuid id and
// created_at/updated_at for timestamped collections.
func PrepareInsert(collection string, row Row, now time.Time) (*Collection, Row, error) {
	c, err := Lookup(collection)
	if err != nil {
		return nil, nil, err
	}
	out, err := c.NormalizeRow(row)
	if err != nil {
		return nil, nil, err
	}
	if c.Key == "id" && out["id"] == nil {
		out["id"] = uuid.New().String()
	}
	if c.Timestamps {
		stamp, _ := Normalize(KindTimestamp, now)
		if out["created_at"] == nil {
			out["created_at"] = stamp
		}
		if out["updated_at"] == nil {
			out["updated_at"] = stamp
		}
	}
	for _, col := range c.Columns {
		if _, ok := out[col.Name]; !ok {
			out[col.Name] = nil
		}
	}
	return c, out, nil
}

// PrepareUpdate normalizes values and filters, stamping updated_at.
func PrepareUpdate(collection string, filters []Filter, values Row, now time.Time) (*Collection, []Filter, Row, error) {
	c, err := Lookup(collection)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(filters) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: update %s", ErrUnfiltered, collection)
	}
	nf, err := c.NormalizeFilters(filters)
	if err != nil {
		return nil, nil, nil, err
	}
	nv, err := c.NormalizeRow(values)
	if err != nil {
		return nil, nil, nil, err
	}
	if c.Timestamps {
		if _, ok := nv["updated_at"]; !ok {
			nv["updated_at"], _ = Normalize(KindTimestamp, now)
		}
	}
	return c, nf, nv, nil
}

// PrepareDelete validates a delete.
func PrepareDelete(collection string, filters []Filter) (*Collection, []Filter, error) {
	c, err := Lookup(collection)
	if err != nil {
		return nil, nil, err
	}
	if len(filters) == 0 {
		return nil, nil, fmt.Errorf("%w: delete %s", ErrUnfiltered, collection)
	}
	nf, err := c.NormalizeFilters(filters)
	if err != nil {
		return nil, nil, err
	}
	return c, nf, nil
}

// SQLRows runs row-store operations against a database/sql handle.
type SQLRows struct {
	DB      *sql.DB
	Dialect Dialect
	// Now is the clock used for generated timestamps.
	Now func() time.Time
}

func (s SQLRows) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s SQLRows) mapError(err error) error {
	if err != nil && s.Dialect.MapError != nil {
		return s.Dialect.MapError(err)
	}
	return err
}

// Select runs q and decodes every row.
func (s SQLRows) Select(ctx context.Context, q Query) ([]Row, error) {
	query, args, cols, err := BuildSelect(s.Dialect, q)
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var out []Row
	raw := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			v, err := Decode(col.Kind, raw[i])
			if err != nil {
				return nil, fmt.Errorf("failed to decode %s.%s: %w", q.Collection, col.Name, err)
			}
			row[col.Name] = v
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Insert writes row and returns it with generated fields filled.
func (s SQLRows) Insert(ctx context.Context, collection string, row Row) (Row, error) {
	c, out, err := PrepareInsert(collection, row, s.now())
	if err != nil {
		return nil, err
	}

	b := &builder{d: s.Dialect}
	names := c.ColumnNames()
	cols := make([]string, len(names))
	ph := make([]string, len(names))
	for i, name := range names {
		cols[i] = quote(name)
		ph[i] = b.bind(out[name])
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quote(c.Name), strings.Join(cols, ", "), strings.Join(ph, ", "))

	if _, err := s.DB.ExecContext(ctx, query, b.args...); err != nil {
		return nil, s.mapError(err)
	}
	return out, nil
}

// Update sets values on every row matching filters and returns the count.
func (s SQLRows) Update(ctx context.Context, collection string, filters []Filter, values Row) (int, error) {
	c, nf, nv, err := PrepareUpdate(collection, filters, values, s.now())
	if err != nil {
		return 0, err
	}

	b := &builder{d: s.Dialect}
	sets := make([]string, 0, len(nv))
	for _, name := range c.ColumnNames() {
		if v, ok := nv[name]; ok {
			sets = append(sets, quote(name)+" = "+b.bind(v))
		}
	}
	if len(sets) == 0 {
		return 0, fmt.Errorf("update %s: no values to set", collection)
	}
	fmt.Fprintf(&b.sb, "UPDATE %s SET %s", quote(c.Name), strings.Join(sets, ", "))
	b.where(nf)

	return s.exec(ctx, b)
}

// Delete removes every row matching filters and returns the count.
func (s SQLRows) Delete(ctx context.Context, collection string, filters []Filter) (int, error) {
	c, nf, err := PrepareDelete(collection, filters)
	if err != nil {
		return 0, err
	}

	b := &builder{d: s.Dialect}
	fmt.Fprintf(&b.sb, "DELETE FROM %s", quote(c.Name))
	b.where(nf)

	return s.exec(ctx, b)
}

func (s SQLRows) exec(ctx context.Context, b *builder) (int, error) {
	res, err := s.DB.ExecContext(ctx, b.sb.String(), b.args...)
	if err != nil {
		return 0, s.mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
