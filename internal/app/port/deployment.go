package port

import (
	"context"
	"time"

	"contract_deployer/internal/domain/entity"
)

// DeploymentService drives deployment runs.
type DeploymentService interface {
	// Deploy runs one deployment against an already resolved profile.
	Deploy(ctx context.Context, profile entity.NetworkProfile, req entity.DeploymentRequest) (*entity.DeploymentResult, error)

	// DeployToNetwork resolves name and deploys to it.
	DeployToNetwork(ctx context.Context, network string, req entity.DeploymentRequest) (*entity.DeploymentResult, error)

	// DeployToNetworks runs independent deployments concurrently, one per network.
	DeployToNetworks(ctx context.Context, networks []string, req entity.DeploymentRequest) []entity.DeploymentOutcome
}

// DeploymentMetrics records deployment outcomes.
type DeploymentMetrics interface {
	ObserveDeployment(network string, err error, elapsed time.Duration)
	ObserveBalanceFailure(network string)
}
