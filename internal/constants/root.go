package constants

// FrequencyType describes how often an output recurs
type FrequencyType string

// SkillStage is the lifecycle state of a skill item
type SkillStage string

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	AppName             = "maestro"
	DefaultKeyringUser  = "database-connection"
	DefaultConfigPath   = "~/.config/maestro/maestro.db"
	DefaultSettingsPath = "~/.config/maestro/config.yaml"
	MemoryConfigPath    = ":memory:"
	Version             = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimestampFormat is the fixed-width UTC layout used for stored timestamps.
	// Lexical order of values in this layout equals chronological order.
	TimestampFormat = "2006-01-02T15:04:05.000Z"

	// Frequency types
	FrequencyDaily          FrequencyType = "daily"
	FrequencyFixedWeekly    FrequencyType = "fixed_weekly"
	FrequencyFlexibleWeekly FrequencyType = "flexible_weekly"

	// Skill stages
	StageActive   SkillStage = "active"
	StageReview   SkillStage = "review"
	StageArchived SkillStage = "archived"

	// Outcome / output status values
	StatusActive   = "active"
	StatusPaused   = "paused"
	StatusArchived = "archived"

	// Confidence bounds
	MinConfidence     = 1
	MaxConfidence     = 5
	DefaultConfidence = 3

	// Conflict Types
	ConflictInvalidConfidence      ConflictType = "invalid_confidence"
	ConflictFixedWeeklyWithoutDays ConflictType = "fixed_weekly_without_days"
	ConflictInvalidWeekday         ConflictType = "invalid_weekday"
	ConflictDuplicateSkillName     ConflictType = "duplicate_skill_name"
	ConflictOrphanSkillLog         ConflictType = "orphan_skill_log"
	ConflictOrphanActionLog        ConflictType = "orphan_action_log"
	ConflictInvalidActionTotals    ConflictType = "invalid_action_totals"
	ConflictInvalidFrequency       ConflictType = "invalid_frequency"
	ConflictInvalidTargetValue     ConflictType = "invalid_target_value"
)

// ParseFrequencyType reports whether s names a known frequency type.
func ParseFrequencyType(s string) (FrequencyType, bool) {
	switch FrequencyType(s) {
	case FrequencyDaily, FrequencyFixedWeekly, FrequencyFlexibleWeekly:
		return FrequencyType(s), true
	}
	return "", false
}

// ParseSkillStage reports whether s names a known skill stage.
func ParseSkillStage(s string) (SkillStage, bool) {
	switch SkillStage(s) {
	case StageActive, StageReview, StageArchived:
		return SkillStage(s), true
	}
	return "", false
}
