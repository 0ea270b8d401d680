package storage

import (
	"fmt"
	"strings"
)

// Kind is the storage type of a column.
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindFloat
	KindBool
	// KindTimestamp columns hold fixed-width UTC text, see constants.TimestampFormat.
	KindTimestamp
)

// Column describes one field of a collection.
type Column struct {
	Name string
	Kind Kind
}

// UniqueIndex mirrors a unique index of the SQL schema for the memory store.
// Applies, when set, limits the index to matching rows (a partial index).
type UniqueIndex struct {
	Name     string
	Fields   []string
	FoldCase bool
	Applies  func(Row) bool
}

// Collection is a whitelisted table.
type Collection struct {
	Name string
	// Key is the primary key field. Inserts generate it when it is "id".
	Key        string
	Timestamps bool
	Columns    []Column
	Unique     []UniqueIndex
}

// Collection names
const (
	Outcomes   = "outcomes"
	Outputs    = "outputs"
	ActionLogs = "action_logs"
	SkillItems = "skill_items"
	SkillLogs  = "skill_logs"
	Settings   = "settings"
)

// SkillNameIndex is the partial unique index on live skill names.
const SkillNameIndex = "skill_items_outcome_name_live_unique_idx"

func timestamped(cols ...Column) []Column {
	return append(cols, Column{"created_at", KindTimestamp}, Column{"updated_at", KindTimestamp})
}

var schema = map[string]*Collection{
	Outcomes: {
		Name: Outcomes, Key: "id", Timestamps: true,
		Columns: timestamped(
			Column{"id", KindText},
			Column{"title", KindText},
			Column{"category", KindText},
			Column{"status", KindText},
		),
	},
	Outputs: {
		Name: Outputs, Key: "id", Timestamps: true,
		Columns: timestamped(
			Column{"id", KindText},
			Column{"outcome_id", KindText},
			Column{"description", KindText},
			Column{"frequency_type", KindText},
			Column{"frequency_value", KindInt},
			Column{"schedule_weekdays", KindText},
			Column{"is_starter", KindBool},
			Column{"status", KindText},
			Column{"sort_order", KindInt},
		),
	},
	ActionLogs: {
		Name: ActionLogs, Key: "id", Timestamps: true,
		Columns: timestamped(
			Column{"id", KindText},
			Column{"output_id", KindText},
			Column{"action_date", KindText},
			Column{"completed", KindInt},
			Column{"total", KindInt},
			Column{"notes", KindText},
		),
		Unique: []UniqueIndex{{Name: "action_logs_output_date_unique_idx", Fields: []string{"output_id", "action_date"}}},
	},
	SkillItems: {
		Name: SkillItems, Key: "id", Timestamps: true,
		Columns: timestamped(
			Column{"id", KindText},
			Column{"outcome_id", KindText},
			Column{"name", KindText},
			Column{"stage", KindText},
			Column{"target_label", KindText},
			Column{"target_value", KindFloat},
			Column{"initial_confidence", KindInt},
			Column{"graduation_suppressed_at", KindTimestamp},
		),
		Unique: []UniqueIndex{{
			Name:     SkillNameIndex,
			Fields:   []string{"outcome_id", "name"},
			FoldCase: true,
			Applies:  func(r Row) bool { return r["stage"] != "archived" },
		}},
	},
	SkillLogs: {
		Name: SkillLogs, Key: "id", Timestamps: true,
		Columns: timestamped(
			Column{"id", KindText},
			Column{"skill_item_id", KindText},
			Column{"action_log_id", KindText},
			Column{"confidence", KindInt},
			Column{"target_result", KindFloat},
			Column{"logged_at", KindTimestamp},
		),
	},
	Settings: {
		Name: Settings, Key: "key",
		Columns: []Column{{"key", KindText}, {"value", KindText}},
	},
}

// Lookup returns the schema of a collection.
func Lookup(name string) (*Collection, error) {
	c, ok := schema[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	return c, nil
}

// Collections lists every collection name in dependency order.
func Collections() []string {
	return []string{Outcomes, Outputs, ActionLogs, SkillItems, SkillLogs, Settings}
}

// Column returns the named column.
func (c *Collection) Column(name string) (Column, error) {
	for _, col := range c.Columns {
		if col.Name == name {
			return col, nil
		}
	}
	return Column{}, fmt.Errorf("%w: %s.%s", ErrUnknownField, c.Name, name)
}

// ColumnNames returns the column names in declaration order.
func (c *Collection) ColumnNames() []string {
	names := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		names[i] = col.Name
	}
	return names
}

// UniqueKey renders the index key of row, or "" when the index does not apply.
func (u UniqueIndex) UniqueKey(row Row) string {
	if u.Applies != nil && !u.Applies(row) {
		return ""
	}
	parts := make([]string, len(u.Fields))
	for i, f := range u.Fields {
		v := fmt.Sprint(row[f])
		if u.FoldCase {
			v = strings.ToLower(v)
		}
		parts[i] = v
	}
	return strings.Join(parts, "\x00")
}
