package pipeline

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

const (
	BuildStageName = "Build"
	TestStageName  = "Test"

	BuildArtifact = model.ArtifactRef("BuildArtifact")
	TestArtifact  = model.ArtifactRef("TestArtifact")

	// VersionStampRunOrder places the version stamp after the build action of the same stage.
	VersionStampRunOrder = 20
	// InitialVersion seeds the version counter of a new repository branch.
	InitialVersion = "0.1.0"

	approvalAction = "Promote"
	deployAction   = "Deploy"
	versionAction  = "VersionStamp"
)

// Build compiles desc into its pipeline graph.
//
// The phases are always Source, Build (with a version stamp action), Test and then, for every
// planned environment, an optional approval gate followed by the deploy. Every deploy consumes
// the Test artifact. Identical inputs give identical graphs.
func Build(desc model.RepoDescriptor, prefix string, policy model.Policy) (*model.PipelineGraph, error) {
	return build(desc, prefix, policy, nil)
}

// stageHook is called for every action appended to the graph.
type stageHook func(parent, stage *model.StageSpec) error

type graphBuilder struct {
	graph *model.PipelineGraph
	hook  stageHook
	err   error
}

func (b *graphBuilder) append(stage model.StageSpec) {
	if b.err != nil {
		return
	}

	var parent *model.StageSpec
	if n := len(b.graph.Stages); n > 0 {
		prev := b.graph.Stages[n-1]
		parent = &prev
	}

	if b.hook != nil {
		err := b.hook(parent, &stage)
		if err != nil {
			b.err = errors.Wrapf(err, "unable to prepare stage %s", stage.Key())

			return
		}
	}

	b.graph.Stages = append(b.graph.Stages, stage)
}

func build(desc model.RepoDescriptor, prefix string, policy model.Policy, hook stageHook) (*model.PipelineGraph, error) {
	err := validateDescriptor(desc)
	if err != nil {
		return nil, err
	}

	source, err := BindSource(desc)
	if err != nil {
		return nil, err
	}

	name := DeriveName(prefix, desc)
	version := versionKey(policy.ParameterRoot, desc)
	bld := &graphBuilder{
		graph: &model.PipelineGraph{
			Name:        name,
			Repository:  desc.Repository,
			Branch:      desc.Branch,
			CommitHooks: []model.CommitHook{source.Hook},
			Version:     version,
		},
		hook: hook,
	}

	buildProject := resourceName(name, "build")
	testProject := resourceName(name, "test")
	projects := []string{buildProject, testProject}

	bld.append(source.Stage)
	bld.append(model.StageSpec{
		Stage:          BuildStageName,
		Action:         BuildStageName,
		Kind:           model.BuildKind,
		InputArtifact:  SourceArtifact,
		OutputArtifact: BuildArtifact,
		RunOrder:       model.DefaultRunOrder,
		Project:        buildProject,
		Parameters: map[string]string{
			"REPO_NAME": desc.Repository,
		},
	})
	bld.append(model.StageSpec{
		Stage:    BuildStageName,
		Action:   versionAction,
		Kind:     model.VersionStampKind,
		RunOrder: VersionStampRunOrder,
		Parameters: map[string]string{
			"repo":   desc.Repository,
			"branch": desc.Branch,
		},
	})
	// Test runs in the next pipeline stage, so the version written by the stamp is durable.
	bld.append(model.StageSpec{
		Stage:          TestStageName,
		Action:         TestStageName,
		Kind:           model.TestKind,
		InputArtifact:  BuildArtifact,
		OutputArtifact: TestArtifact,
		RunOrder:       model.DefaultRunOrder,
		Project:        testProject,
		Parameters: map[string]string{
			"REPO_NAME":        desc.Repository,
			"SEMVER_PARAMETER": version.Parameter,
		},
	})

	for _, env := range PlanEnvironments(desc, policy.Order(), policy.Accounts) {
		if policy.RequiresApproval(env) {
			bld.append(model.StageSpec{
				Stage:       ApprovalStageName(env),
				Action:      approvalAction,
				Kind:        model.ApprovalKind,
				Environment: env,
				RunOrder:    model.DefaultRunOrder,
			})
		}

		deployProject := resourceName(name, string(env), "deploy")
		projects = append(projects, deployProject)
		bld.append(model.StageSpec{
			Stage:          DeployStageName(env),
			Action:         deployAction,
			Kind:           model.DeployKind,
			InputArtifact:  TestArtifact,
			OutputArtifact: DeployArtifact(env),
			Environment:    env,
			RunOrder:       model.DefaultRunOrder,
			Project:        deployProject,
			Parameters:     deployParameters(desc, env, policy, version),
		})
	}

	if bld.err != nil {
		return nil, bld.err
	}

	bld.graph.Notification = model.NotificationBinding{
		Topic:     resourceName(name, "cicd", "topic"),
		Parameter: parameterPath(policy.ParameterRoot, "sns-topic", resourceName(desc.Repository, desc.Branch, "arn")),
		Projects:  projects,
	}

	return AttachTriggers(bld.graph, desc), nil
}

// ApprovalStageName is the name of the manual gate in front of env.
func ApprovalStageName(env model.EnvironmentID) string {
	return string(env) + "-approval"
}

// DeployStageName is the name of the stage deploying to env.
func DeployStageName(env model.EnvironmentID) string {
	return "Deploy-to-" + string(env) + "-environment"
}

// DeployArtifact is the bookkeeping output of the deploy to env.
func DeployArtifact(env model.EnvironmentID) model.ArtifactRef {
	return model.ArtifactRef(string(env) + "-DeployArtifact")
}

func versionKey(root string, desc model.RepoDescriptor) model.VersionKey {
	return model.VersionKey{
		Repository: desc.Repository,
		Branch:     desc.Branch,
		Parameter:  parameterPath(root, "simple-cicd", desc.Repository, desc.Branch, "version"),
		Initial:    InitialVersion,
	}
}

func deployParameters(desc model.RepoDescriptor, env model.EnvironmentID, policy model.Policy, version model.VersionKey) map[string]string {
	account, _ := policy.Accounts.Account(env)
	params := map[string]string{
		"TARGET_ENV":        string(env),
		"TARGET_ACCOUNT_ID": account,
		"REPO_NAME":         desc.Repository,
		"SEMVER_PARAMETER":  version.Parameter,
	}
	if region := policy.Regions[env]; region != "" {
		params["TARGET_REGION"] = region
	}
	if policy.CrossAccountRole != "" {
		params["CROSS_ACCOUNT_ROLE"] = policy.CrossAccountRole
	}

	return params
}

func validateDescriptor(desc model.RepoDescriptor) error {
	if strings.TrimSpace(desc.Repository) == "" {
		return newConfigError(desc, "repository", ErrEmptyRepository)
	}
	if strings.TrimSpace(desc.Branch) == "" {
		return newConfigError(desc, "branch", ErrEmptyBranch)
	}
	if desc.Cron != "" && strings.TrimSpace(desc.Cron) == "" {
		return newConfigError(desc, "cron", ErrBlankCron)
	}

	// Targets are keyed by their sanitised form, which is what deploy project names use.
	seen := make(map[string]model.EnvironmentID, len(desc.Targets))
	for _, env := range desc.Targets {
		if strings.TrimSpace(string(env)) == "" {
			return newConfigError(desc, "targets", ErrInvalidTarget)
		}
		key := resourceName(string(env))
		if prev, ok := seen[key]; ok {
			return newConfigError(desc, "targets", errors.Wrapf(ErrDuplicateTarget, "%q and %q", prev, env))
		}
		seen[key] = env
	}

	return nil
}
