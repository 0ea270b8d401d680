package storage

import (
	"context"
	"fmt"
)

// Copy inserts every row of src into dst, collection by collection in
// dependency order, keeping ids and timestamps. It returns the number of
// rows copied per collection. dst is expected to be empty.
func Copy(ctx context.Context, dst, src Provider) (map[string]int, error) {
	counts := make(map[string]int)
	for _, name := range Collections() {
		rows, err := src.Select(ctx, From(name))
		if err != nil {
			return counts, fmt.Errorf("failed to read %s: %w", name, err)
		}
		for _, row := range rows {
			if _, err := dst.Insert(ctx, name, row); err != nil {
				return counts, fmt.Errorf("failed to copy %s row: %w", name, err)
			}
		}
		counts[name] = len(rows)
	}
	return counts, nil
}
