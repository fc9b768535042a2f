package model

// TriggerType names the kind of source a pipeline is fed from.
type TriggerType string

const (
	CodeCommitTriggerType TriggerType = "CodeCommit"
	GitHubTriggerType     TriggerType = "GitHub"
)

// Trigger is the source binding of a repository. It is a closed set: only the trigger types
// declared in this package implement it, and each carries only the fields it needs.
type Trigger interface {
	Type() TriggerType
	isTrigger()
}

// CodeCommitTrigger polls a repository hosted alongside the pipeline.
type CodeCommitTrigger struct{}

// Type returns CodeCommitTriggerType.
func (CodeCommitTrigger) Type() TriggerType { return CodeCommitTriggerType }

func (CodeCommitTrigger) isTrigger() {}

// GitHubTrigger receives webhooks from a hosted repository and authenticates with the token
// stored behind SecretRef.
type GitHubTrigger struct {
	Owner     string
	SecretRef string
}

// Type returns GitHubTriggerType.
func (GitHubTrigger) Type() TriggerType { return GitHubTriggerType }

func (GitHubTrigger) isTrigger() {}

// RepoDescriptor describes one pipeline to assemble. It is treated as immutable.
type RepoDescriptor struct {
	// PipelineName is used for naming; Repository is used when it is empty.
	PipelineName string
	Repository   string
	Branch       string
	Trigger      Trigger
	// Cron is an optional schedule expression. Its syntax is checked by the scheduler.
	Cron string
	// Targets overrides the global environment order when non-empty.
	Targets []EnvironmentID
}

// Key identifies the descriptor in logs and errors.
func (d RepoDescriptor) Key() string {
	return d.Repository + "@" + d.Branch
}
