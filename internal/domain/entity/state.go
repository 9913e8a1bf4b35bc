package entity

// DeploymentState is the position of a run in its lifecycle.
type DeploymentState int

const (
	StateIdle DeploymentState = iota
	StateSignerReady
	StateSubmitted
	StateConfirmed
	StateFailed
)

func (s DeploymentState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSignerReady:
		return "signer_ready"
	case StateSubmitted:
		return "submitted"
	case StateConfirmed:
		return "confirmed"
	case StateFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// Terminal reports whether no further transition is allowed.
func (s DeploymentState) Terminal() bool {
	return s == StateConfirmed || s == StateFailed
}

// CanTransition reports whether a run may move from s to next.
// Runs only move forward; any non-terminal state may fail.
func (s DeploymentState) CanTransition(next DeploymentState) bool {
	if s.Terminal() {
		return false
	}
	if next == StateFailed {
		return true
	}
	return next == s+1
}
