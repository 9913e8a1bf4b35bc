package entity

import (
	"errors"
	"fmt"
)

// Error kinds. Configuration kinds all wrap ErrConfiguration.
var (
	ErrConfiguration      = errors.New("configuration error")
	ErrUnknownNetwork     = fmt.Errorf("%w: unknown network", ErrConfiguration)
	ErrMissingRPCEndpoint = fmt.Errorf("%w: missing rpc endpoint", ErrConfiguration)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrConfiguration)
	ErrChainIDMismatch    = fmt.Errorf("%w: chain id mismatch", ErrConfiguration)
	ErrMissingCredentials = fmt.Errorf("%w: missing credentials", ErrConfiguration)

	ErrArtifact = errors.New("artifact unavailable")

	ErrSubmission = errors.New("submission failed")

	ErrConfirmation        = errors.New("confirmation failed")
	ErrTransactionReverted = fmt.Errorf("%w: transaction reverted", ErrConfirmation)
	ErrTransactionDropped  = fmt.Errorf("%w: transaction dropped", ErrConfirmation)
	ErrTransactionReplaced = fmt.Errorf("%w: transaction replaced", ErrConfirmation)
	ErrNoContractCode      = fmt.Errorf("%w: no contract code at address", ErrConfirmation)
)

// Stage names the step of a deployment run.
type Stage string

const (
	StageResolve  Stage = "resolve"
	StageSigner   Stage = "signer"
	StageConnect  Stage = "connect"
	StageBalance  Stage = "balance"
	StageArtifact Stage = "artifact"
	StageSubmit   Stage = "submit"
	StageConfirm  Stage = "confirm"
)

// DeploymentError is a terminal failure of a deployment run.
type DeploymentError struct {
	Network string
	Stage   Stage
	Err     error
}

func (e *DeploymentError) Error() string {
	return fmt.Sprintf("deployment to %q failed at %s: %v", e.Network, e.Stage, e.Err)
}

func (e *DeploymentError) Unwrap() error {
	return e.Err
}

// Kind returns the top-level error kind of err, or "unknown".
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrUnknownNetwork):
		return "unknown_network"
	case errors.Is(err, ErrMissingCredentials):
		return "missing_credentials"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrArtifact):
		return "artifact"
	case errors.Is(err, ErrSubmission):
		return "submission"
	case errors.Is(err, ErrConfirmation):
		return "confirmation"
	default:
		return "unknown"
	}
}

// StageOf returns the stage recorded in err, if any.
func StageOf(err error) (Stage, bool) {
	var de *DeploymentError
	if errors.As(err, &de) {
		return de.Stage, true
	}
	return "", false
}
