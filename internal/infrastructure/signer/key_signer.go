package signer

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"contract_deployer/internal/app/port"
	"contract_deployer/internal/domain/entity"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// KeySigner signs with an in-memory secp256k1 private key.
type KeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

var _ port.Signer = (*KeySigner)(nil)

// NewKeySigner parses a hex private key, with or without the 0x prefix.
func NewKeySigner(hexKey string) (*KeySigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		// The key itself must not end up in the error.
		return nil, fmt.Errorf("%w: cannot parse private key", entity.ErrInvalidCredentials)
	}
	return &KeySigner{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// Address returns the account the signer authorizes for.
func (s *KeySigner) Address() common.Address {
	return s.address
}

// TransactOpts returns EIP-155 transact options bound to chainID and ctx.
func (s *KeySigner) TransactOpts(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error) {
	if chainID == nil {
		return nil, fmt.Errorf("chain id is required to sign")
	}
	opts, err := bind.NewKeyedTransactorWithChainID(s.key, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx
	return opts, nil
}

// Provider derives key signers from profile credentials.
type Provider struct{}

var _ port.SignerProvider = Provider{}

// NewProvider creates a signer provider.
func NewProvider() Provider {
	return Provider{}
}

// SignerFor returns a signer for profile. It performs no network I/O, so a
// profile without credentials fails here before anything is sent.
func (Provider) SignerFor(profile entity.NetworkProfile) (port.Signer, error) {
	if !profile.HasCredentials() {
		return nil, fmt.Errorf("%w: network %q has no private key configured", entity.ErrMissingCredentials, profile.Name)
	}
	s, err := NewKeySigner(profile.Credential)
	if err != nil {
		return nil, fmt.Errorf("network %q: %w", profile.Name, err)
	}
	return s, nil
}
