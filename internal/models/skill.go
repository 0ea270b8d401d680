package models

import (
	"time"

	"github.com/julianstephens/maestro/internal/constants"
)

// SkillItem is a sub-competency tied to an outcome, progressed via confidence logs
type SkillItem struct {
	ID                     string               `json:"id"`
	OutcomeID              string               `json:"outcome_id"`
	Name                   string               `json:"name"`
	Stage                  constants.SkillStage `json:"stage"`
	TargetLabel            *string              `json:"target_label,omitempty"`
	TargetValue            *float64             `json:"target_value,omitempty"`
	InitialConfidence      int                  `json:"initial_confidence"` // 1..5
	GraduationSuppressedAt *time.Time           `json:"graduation_suppressed_at,omitempty"`
	CreatedAt              time.Time            `json:"created_at"`
	UpdatedAt              time.Time            `json:"updated_at"`
}

// SkillLog is a dated confidence/target-result record for a skill,
// optionally tied to the action log it was recorded against.
type SkillLog struct {
	ID           string    `json:"id"`
	SkillItemID  string    `json:"skill_item_id"`
	ActionLogID  *string   `json:"action_log_id,omitempty"`
	Confidence   int       `json:"confidence"` // 1..5
	TargetResult *float64  `json:"target_result,omitempty"`
	LoggedAt     time.Time `json:"logged_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
