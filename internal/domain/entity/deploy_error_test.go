package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurationKindsWrapConfiguration(t *testing.T) {
	for _, err := range []error{
		ErrUnknownNetwork,
		ErrMissingRPCEndpoint,
		ErrInvalidCredentials,
		ErrChainIDMismatch,
		ErrMissingCredentials,
	} {
		assert.ErrorIs(t, err, ErrConfiguration, err.Error())
	}
	assert.NotErrorIs(t, ErrSubmission, ErrConfiguration)
	assert.NotErrorIs(t, ErrArtifact, ErrConfiguration)
}

func TestConfirmationDetailsWrapConfirmation(t *testing.T) {
	for _, err := range []error{ErrTransactionReverted, ErrTransactionDropped, ErrTransactionReplaced, ErrNoContractCode} {
		assert.ErrorIs(t, err, ErrConfirmation, err.Error())
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{fmt.Errorf("%w: %q", ErrUnknownNetwork, "mainnet"), "unknown_network"},
		{fmt.Errorf("%w: network %q", ErrMissingCredentials, "sepolia"), "missing_credentials"},
		{ErrChainIDMismatch, "configuration"},
		{ErrMissingRPCEndpoint, "configuration"},
		{fmt.Errorf("%w: no bytecode", ErrArtifact), "artifact"},
		{fmt.Errorf("%w: insufficient funds", ErrSubmission), "submission"},
		{ErrTransactionReverted, "confirmation"},
		{errors.New("boom"), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestDeploymentError(t *testing.T) {
	cause := fmt.Errorf("%w: network %q has no private key configured", ErrMissingCredentials, "sepolia")
	var err error = &DeploymentError{Network: "sepolia", Stage: StageSigner, Err: cause}

	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, "missing_credentials", Kind(err))
	assert.Contains(t, err.Error(), `deployment to "sepolia" failed at signer`)

	stage, ok := StageOf(fmt.Errorf("wrapped: %w", err))
	require.True(t, ok)
	assert.Equal(t, StageSigner, stage)

	_, ok = StageOf(cause)
	assert.False(t, ok)
}

func TestNetworkProfile(t *testing.T) {
	id := uint64(80002)
	p := NetworkProfile{Name: "amoy", Backend: BackendRPC, Credential: "  ", ChainID: &id, NativeSymbol: "POL"}
	assert.False(t, p.HasCredentials(), "blank credential counts as absent")
	assert.False(t, p.HasRPCEndpoint())
	assert.Equal(t, "amoy", p.Label())

	p.RPCURL = "https://rpc-amoy.example"
	p.Credential = "0xabc"
	p.DisplayName = "Polygon Amoy"
	assert.True(t, p.HasCredentials())
	assert.True(t, p.HasRPCEndpoint())

	s := p.Summary()
	assert.Equal(t, "Polygon Amoy", s.DisplayName)
	assert.True(t, s.RPCConfigured)
	assert.True(t, s.HasCredentials)
	assert.Equal(t, &id, s.ChainID)

	sim := NetworkProfile{Name: "hardhat", Backend: BackendSimulated}
	assert.True(t, sim.HasRPCEndpoint(), "simulated networks need no URL")
}
