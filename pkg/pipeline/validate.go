package pipeline

import (
	"github.com/pkg/errors"

	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

// Validate checks the structural invariants of pg. Graphs returned by Build always pass; it is
// meant for graphs read back from storage or produced elsewhere.
func Validate(pg *model.PipelineGraph) error {
	if pg == nil {
		return errors.Wrap(ErrInvalidGraph, "graph must be set")
	}

	err := validatePhases(pg.Phases())
	if err != nil {
		return err
	}

	err = validateArtifacts(pg.Stages)
	if err != nil {
		return err
	}

	_, err = Topology(pg)
	if err != nil {
		return errors.Wrap(ErrInvalidGraph, err.Error())
	}

	return nil
}

func validatePhases(phases []model.Phase) error {
	if len(phases) < 3 {
		return errors.Wrapf(ErrInvalidGraph, "expected at least a source, a build and a test stage, got %d stages", len(phases))
	}
	if phases[0].Kind != model.SourceKind || len(phases[0].Actions) != 1 {
		return errors.Wrap(ErrInvalidGraph, "first stage must hold exactly one source action")
	}
	if phases[1].Kind != model.BuildKind {
		return errors.Wrapf(ErrInvalidGraph, "second stage must be a build stage, got %s", phases[1].Kind)
	}
	if phases[2].Kind != model.TestKind {
		return errors.Wrapf(ErrInvalidGraph, "third stage must be a test stage, got %s", phases[2].Kind)
	}

	seen := make(map[string]struct{}, len(phases))
	for idx, phase := range phases {
		if _, ok := seen[phase.Name]; ok {
			return errors.Wrapf(ErrInvalidGraph, "stage %q is split", phase.Name)
		}
		seen[phase.Name] = struct{}{}

		for i, action := range phase.Actions {
			if idx > 0 && action.Kind == model.SourceKind {
				return errors.Wrapf(ErrInvalidGraph, "%s: source action outside the first stage", action.Key())
			}
			if action.RunOrder < model.DefaultRunOrder {
				return errors.Wrapf(ErrInvalidGraph, "%s: run order %d", action.Key(), action.RunOrder)
			}
			if i > 0 && action.RunOrder <= phase.Actions[i-1].RunOrder {
				return errors.Wrapf(ErrInvalidGraph, "%s: run order %d does not follow %d", action.Key(), action.RunOrder, phase.Actions[i-1].RunOrder)
			}
		}

		if phase.Kind == model.ApprovalKind {
			err := validateApproval(phases, idx)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func validateApproval(phases []model.Phase, idx int) error {
	gate := phases[idx]
	for _, action := range gate.Actions {
		if !action.InputArtifact.IsZero() || !action.OutputArtifact.IsZero() {
			return errors.Wrapf(ErrInvalidGraph, "%s: approval actions carry no artifacts", action.Key())
		}
	}

	if idx+1 >= len(phases) || phases[idx+1].Kind != model.DeployKind || phases[idx+1].Environment != gate.Environment {
		return errors.Wrapf(ErrInvalidGraph, "approval %q is not followed by the deploy to %s", gate.Name, gate.Environment)
	}

	return nil
}

// validateArtifacts checks that every artifact has a single producer and that tests and
// deploys consume the most recent artifact of the stage they depend on.
func validateArtifacts(stages []model.StageSpec) error {
	produced := make(map[model.ArtifactRef]string, len(stages))
	var lastBuild, lastTest model.ArtifactRef

	for _, stage := range stages {
		if !stage.InputArtifact.IsZero() {
			if _, ok := produced[stage.InputArtifact]; !ok {
				return errors.Wrapf(ErrInvalidGraph, "%s consumes %s before it is produced", stage.Key(), stage.InputArtifact)
			}
		}

		switch stage.Kind {
		case model.TestKind:
			if lastBuild.IsZero() || stage.InputArtifact != lastBuild {
				return errors.Wrapf(ErrInvalidGraph, "%s consumes %q instead of the build artifact %q", stage.Key(), stage.InputArtifact, lastBuild)
			}
		case model.DeployKind:
			if lastTest.IsZero() || stage.InputArtifact != lastTest {
				return errors.Wrapf(ErrInvalidGraph, "%s consumes %q instead of the tested artifact %q", stage.Key(), stage.InputArtifact, lastTest)
			}
		}

		if stage.OutputArtifact.IsZero() {
			continue
		}
		if producer, ok := produced[stage.OutputArtifact]; ok {
			return errors.Wrapf(ErrInvalidGraph, "%s and %s both produce %s", producer, stage.Key(), stage.OutputArtifact)
		}
		produced[stage.OutputArtifact] = stage.Key()

		switch stage.Kind {
		case model.BuildKind:
			lastBuild = stage.OutputArtifact
		case model.TestKind:
			lastTest = stage.OutputArtifact
		}
	}

	return nil
}
