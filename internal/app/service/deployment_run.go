package service

import (
	"contract_deployer/internal/app/port"
	"contract_deployer/internal/domain/entity"
)

// deploymentRun tracks the lifecycle of one run. It is owned by a single
// goroutine and never shared.
type deploymentRun struct {
	network string
	state   entity.DeploymentState
	logger  port.Logger
}

func newDeploymentRun(network string, logger port.Logger) *deploymentRun {
	return &deploymentRun{
		network: network,
		state:   entity.StateIdle,
		logger:  logger,
	}
}

// advance moves the run to next. Illegal transitions are logged and ignored.
func (r *deploymentRun) advance(next entity.DeploymentState) {
	if !r.state.CanTransition(next) {
		r.logger.Error("Illegal deployment state transition", "from", r.state.String(), "to", next.String())
		return
	}
	prev := r.state
	r.state = next
	r.logger.Debug("Deployment state changed", "from", prev.String(), "to", next.String())
}

// fail moves the run to Failed and returns the terminal error for stage.
func (r *deploymentRun) fail(stage entity.Stage, err error) error {
	r.advance(entity.StateFailed)
	r.logger.Error("Deployment failed", "stage", string(stage), "kind", entity.Kind(err), "error", err)
	return &entity.DeploymentError{Network: r.network, Stage: stage, Err: err}
}
