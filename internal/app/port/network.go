package port

import (
	"context"
	"math/big"

	"contract_deployer/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

// ChainClient defines the chain operations a deployment needs.
// Implementations are bound to a single network.
type ChainClient interface {
	// BalanceAt fetches the native balance of an account at the latest block.
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)

	// CreateContract builds, signs and submits a contract-creation transaction.
	CreateContract(ctx context.Context, signer Signer, artifact entity.ContractArtifact, args ...any) (*entity.PendingDeployment, error)

	// AwaitConfirmation blocks until the creation transaction is included and
	// the contract address is assigned, or the transaction is known to have failed.
	AwaitConfirmation(ctx context.Context, pending entity.PendingDeployment) (*entity.Confirmation, error)

	// ChainID returns the chain identifier reported by the network.
	ChainID(ctx context.Context) (*big.Int, error)
}

// NetworkRegistry resolves network profiles by name.
type NetworkRegistry interface {
	// Resolve returns the profile for name or an entity.ErrUnknownNetwork error.
	Resolve(name string) (entity.NetworkProfile, error)

	// Profiles returns every known profile sorted by name.
	Profiles() []entity.NetworkProfile
}

// ChainClientProvider hands out chain clients for network profiles.
type ChainClientProvider interface {
	GetClient(ctx context.Context, profile entity.NetworkProfile) (ChainClient, error)
}
