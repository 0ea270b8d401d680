package dashboard

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/maestro/internal/constants"
	"github.com/julianstephens/maestro/internal/logger"
	"github.com/julianstephens/maestro/internal/models"
)

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(message string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(message string) (bool, error)

func (f ConfirmFunc) Confirm(message string) (bool, error) { return f(message) }

// HuhConfirmer prompts on the terminal.
type HuhConfirmer struct {
	Accessible bool
}

func (h HuhConfirmer) Confirm(message string) (bool, error) {
	var accept bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(message).
				Affirmative("Move to Review").
				Negative("Not now").
				Value(&accept),
		),
	).WithTheme(huh.ThemeDracula()).WithAccessible(h.Accessible).Run()
	if err != nil {
		return false, err
	}
	return accept, nil
}

// GraduationFlow holds the steps of the graduation prompt. The function
// fields let callers substitute storage in tests.
type GraduationFlow struct {
	CreatedSkillIDs []string
	Skills          []models.SkillItem
	IsEligible      func(ctx context.Context, skillID string) (bool, error)
	MoveToReview    func(ctx context.Context, skillID string) error
	Suppress        func(ctx context.Context, skillID string) error
	Confirmer       Confirmer
}

// GraduationMessage is the question asked for an eligible skill.
func GraduationMessage(skillName string) string {
	return fmt.Sprintf("%s qualifies for review (3 recent confidence logs of 4+). Move it to Review now?", skillName)
}

// RunGraduationPromptFlow asks about every newly logged skill that is now
// eligible for review. Accepting moves the skill to review; declining
// suppresses the prompt until the skill is logged again.
func RunGraduationPromptFlow(ctx context.Context, flow GraduationFlow) error {
	names := make(map[string]string, len(flow.Skills))
	for _, s := range flow.Skills {
		names[s.ID] = s.Name
	}

	for _, id := range flow.CreatedSkillIDs {
		eligible, err := flow.IsEligible(ctx, id)
		if err != nil {
			return err
		}
		if !eligible {
			continue
		}

		name, ok := names[id]
		if !ok {
			name = "This skill"
		}
		accept, err := flow.Confirmer.Confirm(GraduationMessage(name))
		if err != nil {
			return err
		}

		if accept {
			err = flow.MoveToReview(ctx, id)
		} else {
			err = flow.Suppress(ctx, id)
		}
		if err != nil {
			return err
		}
		logger.Debug("Graduation prompt answered", "skill_id", id, "moved_to_review", accept)
	}
	return nil
}

// PromptGraduation runs the graduation flow against the repository.
func (s *Service) PromptGraduation(ctx context.Context, createdSkillIDs []string, outcomeSkills []models.SkillItem, confirmer Confirmer) error {
	return RunGraduationPromptFlow(ctx, GraduationFlow{
		CreatedSkillIDs: createdSkillIDs,
		Skills:          outcomeSkills,
		IsEligible:      s.CheckGraduationEligibility,
		MoveToReview: func(ctx context.Context, id string) error {
			_, err := s.repo.SetSkillStage(ctx, id, constants.StageReview)
			return err
		},
		Suppress: func(ctx context.Context, id string) error {
			return s.repo.SuppressSkillGraduation(ctx, id, s.now())
		},
		Confirmer: confirmer,
	})
}
