package models

import (
	"time"

	"github.com/julianstephens/maestro/internal/constants"
)

// Outcome is a user-level goal grouping outputs and skills
type Outcome struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Output is a recurring trackable action under an outcome
type Output struct {
	ID               string                  `json:"id"`
	OutcomeID        string                  `json:"outcome_id"`
	Description      string                  `json:"description"`
	FrequencyType    constants.FrequencyType `json:"frequency_type"`
	FrequencyValue   int                     `json:"frequency_value"`
	ScheduleWeekdays []time.Weekday          `json:"schedule_weekdays,omitempty"`
	IsStarter        bool                    `json:"is_starter"`
	Status           string                  `json:"status"`
	SortOrder        int                     `json:"sort_order"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// ActionLog is a dated completion record for an output.
// There is at most one per (OutputID, ActionDate).
type ActionLog struct {
	ID         string    `json:"id"`
	OutputID   string    `json:"output_id"`
	ActionDate string    `json:"action_date"` // YYYY-MM-DD format
	Completed  int       `json:"completed"`
	Total      int       `json:"total"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
