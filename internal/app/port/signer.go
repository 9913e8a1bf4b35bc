package port

import (
	"context"
	"math/big"

	"contract_deployer/internal/domain/entity"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// Signer authorizes and pays for transactions on a network.
type Signer interface {
	Address() common.Address
	TransactOpts(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error)
}

// SignerProvider derives signers from profile credentials without network I/O.
type SignerProvider interface {
	SignerFor(profile entity.NetworkProfile) (Signer, error)
}
