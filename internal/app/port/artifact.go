package port

import (
	"context"

	"contract_deployer/internal/domain/entity"
)

// ArtifactSource provides compiled contract artifacts.
type ArtifactSource interface {
	GetArtifact(ctx context.Context, contractName string) (entity.ContractArtifact, error)
}
