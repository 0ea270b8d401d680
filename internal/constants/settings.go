package constants

const (
	// User Settings (stored in the settings table)
	SettingTimezone    = "timezone"
	SettingStartOfWeek = "start_of_week"

	// Default Settings Values
	DefaultTimezone    = "Local" // Use system local timezone by default
	DefaultStartOfWeek = 1       // Monday

	// Dashboard defaults
	DefaultSuggestionCount = 3
	DefaultPerOutcomeCount = 3
	DefaultFlexibleTotal   = 1

	// Log file rotation
	LogFileName      = "maestro.log"
	LogMaxSizeMB     = 10
	LogMaxBackups    = 3
	LogMaxAgeDays    = 28
	LogDirName       = "logs"
	DefaultLogPrefix = AppName
)

// Priority engine weights and thresholds.
const (
	ConfidenceWeight = 0.45
	RecencyWeight    = 0.40
	TargetWeight     = 0.15

	// ReviewStageFactor scales the final score of skills in the review stage.
	ReviewStageFactor = 0.35

	// NoTargetPressure applies when a skill has no target value.
	NoTargetPressure = 50.0
	// MissingTargetResultPressure applies when a target exists but no log carries a result.
	MissingTargetResultPressure = 100.0

	GraduationLogCount      = 3
	GraduationMinConfidence = 4
	GraduationWindowDays    = 30
)

func init() {
	// Runtime validation: the priority weights must sum to 1.0
	if ConfidenceWeight+RecencyWeight+TargetWeight != 1.0 {
		panic("ConfidenceWeight, RecencyWeight and TargetWeight must sum to 1.0")
	}
}
