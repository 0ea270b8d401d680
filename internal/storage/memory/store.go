// Package memory is an in-process row store with the same filtering,
// ordering and uniqueness behaviour as the SQL stores.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/maestro/internal/constants"
	"github.com/julianstephens/maestro/internal/storage"
)

type Store struct {
	mu     sync.RWMutex
	tables map[string][]storage.Row
	now    func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{now: time.Now}
}

// NewWithClock returns an empty store that stamps rows using now.
func NewWithClock(now func() time.Time) *Store {
	return &Store{now: now}
}

func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tables == nil {
		s.tables = make(map[string][]storage.Row)
	}
	return nil
}

func (s *Store) Load() error {
	return s.Init()
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) GetConfigPath() string {
	return constants.MemoryConfigPath
}

func (s *Store) Driver() string {
	return "memory"
}

func (s *Store) table(name string) []storage.Row {
	if s.tables == nil {
		s.tables = make(map[string][]storage.Row)
	}
	return s.tables[name]
}

func (s *Store) Select(ctx context.Context, q storage.Query) ([]storage.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := storage.Lookup(q.Collection)
	if err != nil {
		return nil, err
	}
	filters, err := c.NormalizeFilters(q.Filters)
	if err != nil {
		return nil, err
	}
	if q.OrderBy != "" {
		if _, err := c.Column(q.OrderBy); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	var out []storage.Row
	for _, row := range s.table(c.Name) {
		if storage.Matches(row, filters) {
			out = append(out, row.Clone())
		}
	}
	s.mu.RUnlock()

	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			cmp := storage.Compare(out[i][q.OrderBy], out[j][q.OrderBy])
			if q.Descending {
				return cmp > 0
			}
			return cmp < 0
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) Insert(ctx context.Context, collection string, row storage.Row) (storage.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, out, err := storage.PrepareInsert(collection, row, s.now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := append(append([]storage.Row(nil), s.table(c.Name)...), out)
	if err := checkUnique(c, next); err != nil {
		return nil, err
	}
	s.tables[c.Name] = next
	return out.Clone(), nil
}

func (s *Store) Update(ctx context.Context, collection string, filters []storage.Filter, values storage.Row) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c, nf, nv, err := storage.PrepareUpdate(collection, filters, values, s.now())
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.table(c.Name)
	next := make([]storage.Row, len(current))
	affected := 0
	for i, row := range current {
		if !storage.Matches(row, nf) {
			next[i] = row
			continue
		}
		updated := row.Clone()
		for k, v := range nv {
			updated[k] = v
		}
		next[i] = updated
		affected++
	}
	if affected == 0 {
		return 0, nil
	}
	if err := checkUnique(c, next); err != nil {
		return 0, err
	}
	s.tables[c.Name] = next
	return affected, nil
}

func (s *Store) Delete(ctx context.Context, collection string, filters []storage.Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c, nf, err := storage.PrepareDelete(collection, filters)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.table(c.Name)
	kept := make([]storage.Row, 0, len(current))
	for _, row := range current {
		if !storage.Matches(row, nf) {
			kept = append(kept, row)
		}
	}
	s.tables[c.Name] = kept
	return len(current) - len(kept), nil
}

func checkUnique(c *storage.Collection, rows []storage.Row) error {
	indexes := append([]storage.UniqueIndex{{Name: c.Name + "_pkey", Fields: []string{c.Key}}}, c.Unique...)
	for _, idx := range indexes {
		seen := make(map[string]bool, len(rows))
		for _, row := range rows {
			key := idx.UniqueKey(row)
			if key == "" {
				continue
			}
			if seen[key] {
				return fmt.Errorf("%w: %s", storage.ErrUniqueViolation, idx.Name)
			}
			seen[key] = true
		}
	}
	return nil
}
