package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/maestro/internal/storage"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	clock := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	s := NewWithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return s
}

func insert(t *testing.T, s *Store, collection string, row storage.Row) storage.Row {
	t.Helper()
	out, err := s.Insert(context.Background(), collection, row)
	if err != nil {
		t.Fatalf("Insert(%s) failed: %v", collection, err)
	}
	return out
}

func TestInsertFillsGeneratedFields(t *testing.T) {
	s := setupStore(t)
	row := insert(t, s, storage.Outcomes, storage.Row{"title": "Play piano", "status": "active"})

	if row.String("id") == "" {
		t.Error("expected generated id")
	}
	if row.String("created_at") != "2026-01-12T09:00:01.000Z" {
		t.Errorf("created_at = %q", row.String("created_at"))
	}
	if row.String("updated_at") != row.String("created_at") {
		t.Errorf("updated_at = %q, want created_at", row.String("updated_at"))
	}
	if v, ok := row["category"]; !ok || v != nil {
		t.Errorf("missing columns should be stored as NULL, got %v (present %v)", v, ok)
	}
}

func TestInsertRejectsUnknownField(t *testing.T) {
	s := setupStore(t)
	_, err := s.Insert(context.Background(), storage.Outcomes, storage.Row{"title": "x", "colour": "red"})
	if !errors.Is(err, storage.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	_, err = s.Insert(context.Background(), "habits", storage.Row{"name": "x"})
	if !errors.Is(err, storage.ErrUnknownCollection) {
		t.Fatalf("expected ErrUnknownCollection, got %v", err)
	}
}

func TestSelectFiltersOrderAndLimit(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	for _, l := range []struct {
		conf     int
		loggedAt string
	}{
		{3, "2026-01-10T10:00:00.000Z"},
		{5, "2026-01-12T10:00:00.000Z"},
		{1, "2026-01-11T10:00:00.000Z"},
	} {
		insert(t, s, storage.SkillLogs, storage.Row{
			"skill_item_id": "skill-1",
			"confidence":    l.conf,
			"logged_at":     l.loggedAt,
		})
	}
	insert(t, s, storage.SkillLogs, storage.Row{"skill_item_id": "skill-2", "confidence": 2, "logged_at": "2026-01-12T11:00:00.000Z"})

	rows, err := s.Select(ctx, storage.From(storage.SkillLogs).
		Where(storage.Eq("skill_item_id", "skill-1")).
		Order("logged_at", true).
		Take(2))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Int("confidence") != 5 || rows[1].Int("confidence") != 1 {
		t.Errorf("unexpected order: %v, %v", rows[0]["confidence"], rows[1]["confidence"])
	}

	rows, err = s.Select(ctx, storage.From(storage.SkillLogs).Where(
		storage.Gte("logged_at", "2026-01-11T00:00:00.000Z"),
		storage.Lt("logged_at", "2026-01-12T11:00:00.000Z"),
	))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("range filter: expected 2 rows, got %d", len(rows))
	}
}

func TestSelectInFilter(t *testing.T) {
	s := setupStore(t)
	a := insert(t, s, storage.Outcomes, storage.Row{"title": "A"})
	insert(t, s, storage.Outcomes, storage.Row{"title": "B"})
	c := insert(t, s, storage.Outcomes, storage.Row{"title": "C"})

	rows, err := s.Select(context.Background(), storage.From(storage.Outcomes).
		Where(storage.In("id", []string{a.String("id"), c.String("id")})))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(rows))
	}

	rows, err = s.Select(context.Background(), storage.From(storage.Outcomes).
		Where(storage.In("id", []string{})))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("empty In should match nothing, got %d", len(rows))
	}
}

func TestSelectNullEquality(t *testing.T) {
	s := setupStore(t)
	insert(t, s, storage.SkillLogs, storage.Row{"skill_item_id": "s", "confidence": 3, "logged_at": "2026-01-12T10:00:00.000Z"})
	insert(t, s, storage.SkillLogs, storage.Row{"skill_item_id": "s", "action_log_id": "a1", "confidence": 4, "logged_at": "2026-01-12T10:00:00.000Z"})

	rows, err := s.Select(context.Background(), storage.From(storage.SkillLogs).Where(storage.Eq("action_log_id", nil)))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Int("confidence") != 3 {
		t.Errorf("expected only the unlinked log, got %v", rows)
	}
}

func TestSelectReturnsCopies(t *testing.T) {
	s := setupStore(t)
	insert(t, s, storage.Outcomes, storage.Row{"title": "Original"})

	rows, _ := s.Select(context.Background(), storage.From(storage.Outcomes))
	rows[0]["title"] = "Mutated"

	rows, _ = s.Select(context.Background(), storage.From(storage.Outcomes))
	if rows[0].String("title") != "Original" {
		t.Errorf("store leaked internal row, title = %q", rows[0].String("title"))
	}
}

func TestActionLogUniquePerOutputAndDate(t *testing.T) {
	s := setupStore(t)
	insert(t, s, storage.ActionLogs, storage.Row{"output_id": "o1", "action_date": "2026-01-12", "completed": 1, "total": 1})

	_, err := s.Insert(context.Background(), storage.ActionLogs, storage.Row{"output_id": "o1", "action_date": "2026-01-12", "completed": 0, "total": 1})
	if !errors.Is(err, storage.ErrUniqueViolation) {
		t.Fatalf("expected ErrUniqueViolation, got %v", err)
	}

	insert(t, s, storage.ActionLogs, storage.Row{"output_id": "o1", "action_date": "2026-01-13", "completed": 0, "total": 1})
}

func TestSkillNameUniqueAmongLiveSkills(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	first := insert(t, s, storage.SkillItems, storage.Row{"outcome_id": "oc", "name": "Scales", "stage": "active", "initial_confidence": 3})

	_, err := s.Insert(ctx, storage.SkillItems, storage.Row{"outcome_id": "oc", "name": "scales", "stage": "review", "initial_confidence": 3})
	if !errors.Is(err, storage.ErrUniqueViolation) {
		t.Fatalf("expected case-insensitive ErrUniqueViolation, got %v", err)
	}

	insert(t, s, storage.SkillItems, storage.Row{"outcome_id": "other", "name": "Scales", "stage": "active", "initial_confidence": 3})

	if _, err := s.Update(ctx, storage.SkillItems, []storage.Filter{storage.Eq("id", first.String("id"))}, storage.Row{"stage": "archived"}); err != nil {
		t.Fatalf("archive failed: %v", err)
	}
	insert(t, s, storage.SkillItems, storage.Row{"outcome_id": "oc", "name": "Scales", "stage": "active", "initial_confidence": 3})

	_, err = s.Update(ctx, storage.SkillItems, []storage.Filter{storage.Eq("id", first.String("id"))}, storage.Row{"stage": "active"})
	if !errors.Is(err, storage.ErrUniqueViolation) {
		t.Fatalf("reviving a duplicate should fail, got %v", err)
	}
	rows, _ := s.Select(ctx, storage.From(storage.SkillItems).Where(storage.Eq("id", first.String("id"))))
	if rows[0].String("stage") != "archived" {
		t.Errorf("failed update must not be applied, stage = %q", rows[0].String("stage"))
	}
}

func TestUpdateStampsUpdatedAt(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	row := insert(t, s, storage.Outcomes, storage.Row{"title": "Before"})

	n, err := s.Update(ctx, storage.Outcomes, []storage.Filter{storage.Eq("id", row.String("id"))}, storage.Row{"title": "After"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 row affected, got %d", n)
	}

	rows, _ := s.Select(ctx, storage.From(storage.Outcomes))
	if rows[0].String("title") != "After" {
		t.Errorf("title = %q", rows[0].String("title"))
	}
	if rows[0].String("updated_at") == row.String("updated_at") {
		t.Error("expected updated_at to change")
	}
	if rows[0].String("created_at") != row.String("created_at") {
		t.Error("created_at must not change")
	}
}

func TestUnfilteredWritesAreRejected(t *testing.T) {
	s := setupStore(t)
	insert(t, s, storage.Outcomes, storage.Row{"title": "Keep"})

	if _, err := s.Update(context.Background(), storage.Outcomes, nil, storage.Row{"title": "x"}); !errors.Is(err, storage.ErrUnfiltered) {
		t.Errorf("Update: expected ErrUnfiltered, got %v", err)
	}
	if _, err := s.Delete(context.Background(), storage.Outcomes, nil); !errors.Is(err, storage.ErrUnfiltered) {
		t.Errorf("Delete: expected ErrUnfiltered, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	for _, id := range []string{"a1", "a2"} {
		insert(t, s, storage.SkillLogs, storage.Row{"skill_item_id": "s", "action_log_id": id, "confidence": 3, "logged_at": "2026-01-12T10:00:00.000Z"})
	}

	n, err := s.Delete(ctx, storage.SkillLogs, []storage.Filter{storage.Eq("action_log_id", "a1")})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 row deleted, got %d", n)
	}
	rows, _ := s.Select(ctx, storage.From(storage.SkillLogs))
	if len(rows) != 1 || rows[0].String("action_log_id") != "a2" {
		t.Errorf("unexpected remaining rows: %v", rows)
	}
}

func TestCancelledContext(t *testing.T) {
	s := setupStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Select(ctx, storage.From(storage.Outcomes)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
