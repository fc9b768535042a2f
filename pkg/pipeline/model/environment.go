package model

// EnvironmentID names a deployment tier.
type EnvironmentID string

const (
	Cicd EnvironmentID = "cicd"
	Dev  EnvironmentID = "dev"
	Test EnvironmentID = "test"
	Prod EnvironmentID = "prod"
)

// DefaultEnvironmentOrder is the promotion order used when neither the policy nor the
// descriptor provide one.
func DefaultEnvironmentOrder() []EnvironmentID {
	return []EnvironmentID{Dev, Test, Prod}
}

// AccountRegistry maps a tier to the account it is provisioned in.
// A missing entry and an empty account id both mean the tier is not provisioned.
type AccountRegistry map[EnvironmentID]string

// Account returns the account of env and whether one is provisioned.
func (r AccountRegistry) Account(env EnvironmentID) (string, bool) {
	account, ok := r[env]
	if !ok || account == "" {
		return "", false
	}

	return account, true
}

// Policy is the global configuration snapshot a compilation reads.
// It is loaded once and must not be mutated while a batch is compiling.
type Policy struct {
	EnvironmentOrder []EnvironmentID
	Accounts         AccountRegistry
	Regions          map[EnvironmentID]string
	// ApprovalRequired lists the tiers gated by a manual approval.
	// Nil means {prod}; a non-nil empty slice disables every gate.
	ApprovalRequired []EnvironmentID
	// ParameterRoot prefixes every parameter path the graph declares, e.g. /acme/it/cicd.
	ParameterRoot    string
	CrossAccountRole string
}

// DefaultPolicy returns a policy with the conventional order and a prod approval gate.
func DefaultPolicy() Policy {
	return Policy{
		EnvironmentOrder: DefaultEnvironmentOrder(),
		Accounts:         AccountRegistry{},
		Regions:          map[EnvironmentID]string{},
		ApprovalRequired: []EnvironmentID{Prod},
	}
}

// RequiresApproval reports whether env is gated by a manual approval.
func (p Policy) RequiresApproval(env EnvironmentID) bool {
	gates := p.ApprovalRequired
	if gates == nil {
		gates = []EnvironmentID{Prod}
	}

	for _, gated := range gates {
		if gated == env {
			return true
		}
	}

	return false
}

// Order returns the environment order, falling back to DefaultEnvironmentOrder.
func (p Policy) Order() []EnvironmentID {
	if len(p.EnvironmentOrder) == 0 {
		return DefaultEnvironmentOrder()
	}

	return p.EnvironmentOrder
}
