package model

// StageKind is the role of an action in the pipeline.
type StageKind string

const (
	SourceKind       StageKind = "Source"
	BuildKind        StageKind = "Build"
	VersionStampKind StageKind = "VersionStamp"
	TestKind         StageKind = "Test"
	ApprovalKind     StageKind = "Approval"
	DeployKind       StageKind = "Deploy"
)

// ArtifactRef is an opaque handle on the output of one action. The zero value means no artifact.
type ArtifactRef string

// IsZero reports whether the reference points at no artifact.
func (a ArtifactRef) IsZero() bool {
	return a == ""
}

// DefaultRunOrder is the run order of an action that does not ask for a later slot.
const DefaultRunOrder = 1

// StageSpec is a single action of the pipeline. Actions sharing the same Stage run in the
// same pipeline stage, ordered by RunOrder.
type StageSpec struct {
	Stage          string            `json:"stage"`
	Action         string            `json:"action"`
	Kind           StageKind         `json:"kind"`
	InputArtifact  ArtifactRef       `json:"input_artifact,omitempty"`
	OutputArtifact ArtifactRef       `json:"output_artifact,omitempty"`
	Environment    EnvironmentID     `json:"environment,omitempty"`
	RunOrder       int               `json:"run_order"`
	Project        string            `json:"project,omitempty"`
	Parameters     map[string]string `json:"parameters,omitempty"`
}

// Key identifies the action inside its pipeline.
func (s StageSpec) Key() string {
	return s.Stage + "/" + s.Action
}

func (s StageSpec) clone() StageSpec {
	out := s
	if s.Parameters != nil {
		out.Parameters = make(map[string]string, len(s.Parameters))
		for k, v := range s.Parameters {
			out.Parameters[k] = v
		}
	}

	return out
}
