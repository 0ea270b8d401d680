package validation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/maestro/internal/constants"
	"github.com/julianstephens/maestro/internal/models"
	"github.com/julianstephens/maestro/internal/repository"
)

// Conflict represents a detected integrity problem in stored data
type Conflict struct {
	Type        constants.ConflictType
	Description string
	Items       []string // Names involved
	IDs         []string // IDs of the records involved (for auto-fixing)
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// FixAction represents an action taken during auto-fix
type FixAction struct {
	Action         string
	SourceConflict Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Count returns the number of conflicts of type t.
func (vr *ValidationResult) Count(t constants.ConflictType) int {
	n := 0
	for _, c := range vr.Conflicts {
		if c.Type == t {
			n++
		}
	}
	return n
}

// Snapshot is the full data set checked by the validator.
type Snapshot struct {
	Outcomes   []models.Outcome
	Outputs    []models.Output
	ActionLogs []models.ActionLog
	Skills     []models.SkillItem
	SkillLogs  []models.SkillLog
}

// Collect loads a snapshot of every record from the repository.
func Collect(ctx context.Context, repo *repository.Repository) (Snapshot, error) {
	var s Snapshot
	var err error
	if s.Outcomes, err = repo.ListOutcomes(ctx, true); err != nil {
		return Snapshot{}, err
	}
	if s.Outputs, err = repo.ListAllOutputs(ctx); err != nil {
		return Snapshot{}, err
	}
	if s.ActionLogs, err = repo.ListActionLogs(ctx); err != nil {
		return Snapshot{}, err
	}
	if s.Skills, err = repo.ListSkillItems(ctx); err != nil {
		return Snapshot{}, err
	}
	if s.SkillLogs, err = repo.ListSkillLogs(ctx); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// Validator checks a snapshot for conflicts
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// Validate runs every check over the snapshot.
func (v *Validator) Validate(s Snapshot) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	result.Conflicts = append(result.Conflicts, v.ValidateOutputs(s.Outputs)...)
	result.Conflicts = append(result.Conflicts, v.ValidateActionLogs(s.ActionLogs, s.Outputs)...)
	result.Conflicts = append(result.Conflicts, v.ValidateSkills(s.Skills)...)
	result.Conflicts = append(result.Conflicts, v.ValidateSkillLogs(s.SkillLogs, s.Skills, s.ActionLogs)...)
	return result
}

// ValidateOutputs checks frequencies and weekday schedules.
func (v *Validator) ValidateOutputs(outputs []models.Output) []Conflict {
	var conflicts []Conflict
	for _, o := range outputs {
		switch o.FrequencyType {
		case constants.FrequencyDaily:
		case constants.FrequencyFixedWeekly:
			if len(o.ScheduleWeekdays) == 0 {
				conflicts = append(conflicts, Conflict{
					Type:        constants.ConflictFixedWeeklyWithoutDays,
					Description: fmt.Sprintf("Output \"%s\" is fixed weekly but has no scheduled days", o.Description),
					Items:       []string{o.Description},
					IDs:         []string{o.ID},
				})
			}
		case constants.FrequencyFlexibleWeekly:
			if o.FrequencyValue <= 0 {
				conflicts = append(conflicts, Conflict{
					Type:        constants.ConflictInvalidFrequency,
					Description: fmt.Sprintf("Output \"%s\" is flexible weekly with a target of %d", o.Description, o.FrequencyValue),
					Items:       []string{o.Description},
					IDs:         []string{o.ID},
				})
			}
		default:
			conflicts = append(conflicts, Conflict{
				Type:        constants.ConflictInvalidFrequency,
				Description: fmt.Sprintf("Output \"%s\" has unknown frequency type %q", o.Description, o.FrequencyType),
				Items:       []string{o.Description},
				IDs:         []string{o.ID},
			})
		}

		for _, d := range o.ScheduleWeekdays {
			if d < time.Sunday || d > time.Saturday {
				conflicts = append(conflicts, Conflict{
					Type:        constants.ConflictInvalidWeekday,
					Description: fmt.Sprintf("Output \"%s\" is scheduled on invalid weekday %d", o.Description, d),
					Items:       []string{o.Description},
					IDs:         []string{o.ID},
				})
			}
		}
	}
	return conflicts
}

// ValidateActionLogs checks action log counts and that their outputs exist.
func (v *Validator) ValidateActionLogs(logs []models.ActionLog, outputs []models.Output) []Conflict {
	known := make(map[string]bool, len(outputs))
	for _, o := range outputs {
		known[o.ID] = true
	}

	var conflicts []Conflict
	for _, l := range logs {
		if !known[l.OutputID] {
			conflicts = append(conflicts, Conflict{
				Type:        constants.ConflictOrphanActionLog,
				Description: fmt.Sprintf("Action log %s on %s refers to missing output %s", l.ID, l.ActionDate, l.OutputID),
				IDs:         []string{l.ID},
			})
		}
		if l.Completed < 0 || l.Total < 0 {
			conflicts = append(conflicts, Conflict{
				Type:        constants.ConflictInvalidActionTotals,
				Description: fmt.Sprintf("Action log %s on %s has negative counts (%d/%d)", l.ID, l.ActionDate, l.Completed, l.Total),
				IDs:         []string{l.ID},
			})
		}
	}
	return conflicts
}

// ValidateSkills checks confidence bounds and live name uniqueness per outcome.
func (v *Validator) ValidateSkills(skills []models.SkillItem) []Conflict {
	var conflicts []Conflict

	type key struct{ outcome, name string }
	var order []key
	byName := make(map[key][]models.SkillItem)
	for _, s := range skills {
		if s.InitialConfidence < constants.MinConfidence || s.InitialConfidence > constants.MaxConfidence {
			conflicts = append(conflicts, Conflict{
				Type:        constants.ConflictInvalidConfidence,
				Description: fmt.Sprintf("Skill \"%s\" has initial confidence %d outside 1..5", s.Name, s.InitialConfidence),
				Items:       []string{s.Name},
				IDs:         []string{s.ID},
			})
		}
		if s.TargetValue != nil && !(*s.TargetValue > 0) {
			conflicts = append(conflicts, Conflict{
				Type:        constants.ConflictInvalidTargetValue,
				Description: fmt.Sprintf("Skill \"%s\" has target value %v, must be greater than 0", s.Name, *s.TargetValue),
				Items:       []string{s.Name},
				IDs:         []string{s.ID},
			})
		}
		if s.Stage == constants.StageArchived {
			continue
		}
		k := key{s.OutcomeID, strings.ToLower(strings.TrimSpace(s.Name))}
		if _, seen := byName[k]; !seen {
			order = append(order, k)
		}
		byName[k] = append(byName[k], s)
	}

	for _, k := range order {
		dupes := byName[k]
		if len(dupes) < 2 {
			continue
		}
		ids := make([]string, len(dupes))
		for i, s := range dupes {
			ids[i] = s.ID
		}
		conflicts = append(conflicts, Conflict{
			Type:        constants.ConflictDuplicateSkillName,
			Description: fmt.Sprintf("Duplicate skill name: \"%s\" (IDs: %v)", dupes[0].Name, ids),
			Items:       []string{dupes[0].Name},
			IDs:         ids,
		})
	}
	return conflicts
}

// ValidateSkillLogs checks confidence bounds and references of skill logs.
func (v *Validator) ValidateSkillLogs(logs []models.SkillLog, skills []models.SkillItem, actions []models.ActionLog) []Conflict {
	knownSkills := make(map[string]bool, len(skills))
	for _, s := range skills {
		knownSkills[s.ID] = true
	}
	knownActions := make(map[string]bool, len(actions))
	for _, a := range actions {
		knownActions[a.ID] = true
	}

	var conflicts []Conflict
	for _, l := range logs {
		if !knownSkills[l.SkillItemID] {
			conflicts = append(conflicts, Conflict{
				Type:        constants.ConflictOrphanSkillLog,
				Description: fmt.Sprintf("Skill log %s refers to missing skill %s", l.ID, l.SkillItemID),
				IDs:         []string{l.ID},
			})
		} else if l.ActionLogID != nil && !knownActions[*l.ActionLogID] {
			conflicts = append(conflicts, Conflict{
				Type:        constants.ConflictOrphanSkillLog,
				Description: fmt.Sprintf("Skill log %s refers to missing action log %s", l.ID, *l.ActionLogID),
				IDs:         []string{l.ID},
			})
		}
		if l.Confidence < constants.MinConfidence || l.Confidence > constants.MaxConfidence {
			conflicts = append(conflicts, Conflict{
				Type:        constants.ConflictInvalidConfidence,
				Description: fmt.Sprintf("Skill log %s has confidence %d outside 1..5", l.ID, l.Confidence),
				IDs:         []string{l.ID},
			})
		}
	}
	return conflicts
}

// AutoFixDuplicateSkills keeps the oldest skill of each duplicate name and
// archives the others. Returns a slice of FixActions describing what was fixed
func AutoFixDuplicateSkills(conflicts []Conflict, skills []models.SkillItem, archiveFunc func(id string) error) []FixAction {
	actions := []FixAction{}

	skillMap := make(map[string]models.SkillItem, len(skills))
	for _, s := range skills {
		skillMap[s.ID] = s
	}

	for _, conflict := range conflicts {
		if conflict.Type != constants.ConflictDuplicateSkillName {
			continue
		}

		var live []models.SkillItem
		for _, id := range conflict.IDs {
			if s, ok := skillMap[id]; ok && s.Stage != constants.StageArchived {
				live = append(live, s)
			}
		}
		if len(live) <= 1 {
			continue
		}

		sort.SliceStable(live, func(i, j int) bool {
			if !live[i].CreatedAt.Equal(live[j].CreatedAt) {
				return live[i].CreatedAt.Before(live[j].CreatedAt)
			}
			return live[i].ID < live[j].ID
		})

		keep := live[0]
		var archived, failed []string
		for _, s := range live[1:] {
			if err := archiveFunc(s.ID); err != nil {
				failed = append(failed, s.ID)
				continue
			}
			archived = append(archived, s.ID)
		}

		switch {
		case len(archived) > 0:
			msg := fmt.Sprintf("Archived %d duplicate skill(s) named \"%s\" (kept ID: %s, archived: %v)", len(archived), keep.Name, keep.ID, archived)
			if len(failed) > 0 {
				msg += fmt.Sprintf(" (failed to archive: %v)", failed)
			}
			actions = append(actions, FixAction{Action: msg, SourceConflict: conflict})
		case len(failed) > 0:
			actions = append(actions, FixAction{
				Action:         fmt.Sprintf("Failed to archive duplicates of \"%s\": %v", keep.Name, failed),
				SourceConflict: conflict,
			})
		}
	}
	return actions
}

// AutoFixOrphanSkillLogs deletes skill logs whose skill or action log is gone.
func AutoFixOrphanSkillLogs(conflicts []Conflict, deleteFunc func(ids []string) (int, error)) []FixAction {
	var ids []string
	var sources []Conflict
	for _, c := range conflicts {
		if c.Type == constants.ConflictOrphanSkillLog {
			ids = append(ids, c.IDs...)
			sources = append(sources, c)
		}
	}
	if len(ids) == 0 {
		return []FixAction{}
	}

	n, err := deleteFunc(ids)
	if err != nil {
		return []FixAction{{Action: fmt.Sprintf("Failed to delete orphan skill logs: %v", err), SourceConflict: sources[0]}}
	}
	return []FixAction{{Action: fmt.Sprintf("Deleted %d orphan skill log(s)", n), SourceConflict: sources[0]}}
}
