package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/maestro/internal/models"
)

// LogFormModel holds the text fields of the action log form.
type LogFormModel struct {
	Completed string
	Total     string
	Notes     string
}

// NewLogFormModel fills the form from a draft.
func NewLogFormModel(d LogDraft) *LogFormModel {
	return &LogFormModel{
		Completed: strconv.Itoa(d.Completed),
		Total:     strconv.Itoa(d.Total),
		Notes:     d.Notes,
	}
}

// Draft parses the form back into a draft.
func (fm *LogFormModel) Draft() (LogDraft, error) {
	completed, err := parseCount(fm.Completed)
	if err != nil {
		return LogDraft{}, fmt.Errorf("completed: %w", err)
	}
	total, err := parseCount(fm.Total)
	if err != nil {
		return LogDraft{}, fmt.Errorf("total: %w", err)
	}
	return LogDraft{Completed: completed, Total: total, Notes: fm.Notes}, nil
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("must be a whole number")
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return n, nil
}

func validateCount(s string) error {
	_, err := parseCount(s)
	return err
}

// NewLogForm creates the form for recording an output's completion
func NewLogForm(title string, fm *LogFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Completed").
				Value(&fm.Completed).
				Validate(validateCount),
			huh.NewInput().
				Title("Total").
				Value(&fm.Total).
				Validate(validateCount),
			huh.NewText().
				Title("Notes").
				Value(&fm.Notes),
		).Title(title),
	).WithTheme(huh.ThemeDracula())
}

// NewSkillLogForm creates one group per skill for rating practice against
// an action. It edits drafts in place; drafts[i] must belong to skills[i].
func NewSkillLogForm(outcomeSkills []models.SkillItem, drafts []SkillLogDraft) *huh.Form {
	confidence := make([]huh.Option[int], 0, 5)
	for c := 1; c <= 5; c++ {
		confidence = append(confidence, huh.NewOption(strconv.Itoa(c), c))
	}

	groups := make([]*huh.Group, 0, len(drafts))
	for i := range drafts {
		d := &drafts[i]
		name := d.SkillItemID
		var label string
		if i < len(outcomeSkills) {
			name = outcomeSkills[i].Name
			if outcomeSkills[i].TargetLabel != nil {
				label = *outcomeSkills[i].TargetLabel
			}
		}
		groups = append(groups, huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Practiced %s?", name)).
				Value(&d.Selected),
			huh.NewSelect[int]().
				Title("Confidence (1-5)").
				Options(confidence...).
				Value(&d.Confidence),
			huh.NewInput().
				Title("Target result").
				Description(label).
				Value(&d.TargetResult).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
						return ErrTargetNotNumeric
					}
					return nil
				}),
		))
	}
	return huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
}
