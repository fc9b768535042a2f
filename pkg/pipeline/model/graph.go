package model

// CommitHook asks the provisioning side to start the pipeline on every commit to Branch.
type CommitHook struct {
	Repository string      `json:"repository"`
	Branch     string      `json:"branch"`
	Trigger    TriggerType `json:"trigger"`
	Owner      string      `json:"owner,omitempty"`
}

// ScheduleAnnotation asks the scheduler to re-run Target on Expression.
type ScheduleAnnotation struct {
	Rule       string `json:"rule"`
	Expression string `json:"expression"`
	Target     string `json:"target"`
}

// VersionKey locates the semantic version counter of a repository branch in the version registry.
// The compiler only records the key; the counter itself is owned by the registry.
type VersionKey struct {
	Repository string `json:"repository"`
	Branch     string `json:"branch"`
	Parameter  string `json:"parameter"`
	Initial    string `json:"initial"`
}

// NotificationBinding declares the channel that receives state changes of Projects.
type NotificationBinding struct {
	Topic     string   `json:"topic"`
	Parameter string   `json:"parameter"`
	Projects  []string `json:"projects"`
}

// PipelineGraph is the ordered description of one pipeline. It owns none of the resources it
// describes and is never patched: a new graph is compiled instead.
type PipelineGraph struct {
	Name         string               `json:"name"`
	Repository   string               `json:"repository"`
	Branch       string               `json:"branch"`
	Stages       []StageSpec          `json:"stages"`
	CommitHooks  []CommitHook         `json:"commit_hooks"`
	Schedules    []ScheduleAnnotation `json:"schedules,omitempty"`
	Version      VersionKey           `json:"version"`
	Notification NotificationBinding  `json:"notification"`
}

// Phase groups the consecutive actions that share a pipeline stage.
type Phase struct {
	Name        string
	Kind        StageKind
	Environment EnvironmentID
	Actions     []StageSpec
}

// Phases returns the pipeline stages in order. The kind of a phase is the kind of its first action.
func (g *PipelineGraph) Phases() []Phase {
	phases := make([]Phase, 0, len(g.Stages))
	for _, stage := range g.Stages {
		last := len(phases) - 1
		if last >= 0 && phases[last].Name == stage.Stage {
			phases[last].Actions = append(phases[last].Actions, stage)
			continue
		}
		phases = append(phases, Phase{
			Name:        stage.Stage,
			Kind:        stage.Kind,
			Environment: stage.Environment,
			Actions:     []StageSpec{stage},
		})
	}

	return phases
}

// Find returns the first action of the given kind targeting env. Use an empty env for
// actions that are not bound to an environment.
func (g *PipelineGraph) Find(kind StageKind, env EnvironmentID) (StageSpec, bool) {
	for _, stage := range g.Stages {
		if stage.Kind == kind && stage.Environment == env {
			return stage, true
		}
	}

	return StageSpec{}, false
}

// Clone returns a deep copy of the graph.
func (g *PipelineGraph) Clone() *PipelineGraph {
	out := *g
	out.Stages = make([]StageSpec, len(g.Stages))
	for i, stage := range g.Stages {
		out.Stages[i] = stage.clone()
	}
	out.CommitHooks = append([]CommitHook(nil), g.CommitHooks...)
	if g.Schedules != nil {
		out.Schedules = append([]ScheduleAnnotation(nil), g.Schedules...)
	}
	out.Notification.Projects = append([]string(nil), g.Notification.Projects...)

	return &out
}
