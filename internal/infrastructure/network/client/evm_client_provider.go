package client

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"contract_deployer/internal/app/port"
	"contract_deployer/internal/domain/entity"
	"contract_deployer/internal/infrastructure/configloader"
	"contract_deployer/internal/infrastructure/signer"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/params"
	"github.com/patrickmn/go-cache"
)

// Balance given to the credential account of a simulated network.
var simulatedAccountBalance = new(big.Int).Mul(big.NewInt(10_000), big.NewInt(params.Ether)) //nolint:gochecknoglobals

// EVMClientProvider implements port.ChainClientProvider. Clients are cached
// per network; an expired client is closed unless a call is still using it.
// Expiry is only processed inside GetClient, under mu, so an in-use client
// that is put back can never overwrite a freshly connected replacement.
type EVMClientProvider struct {
	clients        *cache.Cache
	mu             sync.Mutex
	logger         port.Logger
	connectTimeout time.Duration
	opts           Options
	closed         atomic.Bool
}

var _ port.ChainClientProvider = (*EVMClientProvider)(nil)

// NewEVMClientProvider creates a provider configured from cfg.
func NewEVMClientProvider(cfg *configloader.Config, logger port.Logger) *EVMClientProvider {
	ttl := time.Duration(cfg.RPCClient.ClientCacheTTLMinutes) * time.Minute
	p := &EVMClientProvider{
		clients:        cache.New(ttl, 0), // no janitor
		logger:         logger,
		connectTimeout: time.Duration(cfg.RPCClient.ConnectTimeoutMs) * time.Millisecond,
		opts: Options{
			CallTimeout:         time.Duration(cfg.RPCClient.CallTimeoutMs) * time.Millisecond,
			RateLimit:           cfg.RPCClient.RateLimit,
			BurstLimit:          cfg.RPCClient.BurstLimit,
			PollInterval:        time.Duration(cfg.Deployment.ConfirmationPollMs) * time.Millisecond,
			ConfirmationTimeout: time.Duration(cfg.Deployment.ConfirmationTimeoutSeconds) * time.Second,
			DroppedAfterMisses:  cfg.Deployment.DroppedAfterMisses,
		},
	}
	p.clients.OnEvicted(p.onEvicted)
	return p
}

func (p *EVMClientProvider) onEvicted(name string, v any) {
	c, ok := v.(*EVMClient)
	if !ok {
		return
	}
	if c.InUse() && !p.closed.Load() {
		p.clients.Set(name, c, cache.DefaultExpiration)
		return
	}
	p.logger.Debug("Closing idle EVM client", "network", name)
	c.Close()
}

// GetClient returns the cached client for profile or connects a new one.
func (p *EVMClientProvider) GetClient(ctx context.Context, profile entity.NetworkProfile) (port.ChainClient, error) {
	if !profile.HasRPCEndpoint() {
		return nil, fmt.Errorf("%w: network %q has no RPC URL configured", entity.ErrMissingRPCEndpoint, profile.Name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Settle expired entries first so an in-use client is kept rather than replaced.
	p.clients.DeleteExpired()
	if v, ok := p.clients.Get(profile.Name); ok {
		// Touch to push back expiry.
		p.clients.Set(profile.Name, v, p.expiration(profile))
		p.logger.Debug("Returning cached EVM client", "network", profile.Name)
		return v.(*EVMClient), nil
	}

	p.logger.Info("Creating new EVM client", "network", profile.Name, "backend", string(profile.Backend))
	c, err := p.connect(ctx, profile)
	if err != nil {
		p.logger.Error("Failed to create EVM client", "network", profile.Name, "error", err)
		return nil, err
	}
	p.clients.Set(profile.Name, c, p.expiration(profile))
	return c, nil
}

// expiration keeps simulated chains for the life of the process: their state
// exists nowhere else.
func (p *EVMClientProvider) expiration(profile entity.NetworkProfile) time.Duration {
	if profile.Backend == entity.BackendSimulated {
		return cache.NoExpiration
	}
	return cache.DefaultExpiration
}

func (p *EVMClientProvider) connect(ctx context.Context, profile entity.NetworkProfile) (*EVMClient, error) {
	if profile.Backend == entity.BackendSimulated {
		backend, closer, err := newSimulatedBackend(profile)
		if err != nil {
			return nil, err
		}
		return NewEVMClient(backend, closer, profile, p.opts, p.logger), nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, p.connectTimeout)
	defer cancel()

	ethClient, err := ethclient.DialContext(dialCtx, profile.RPCURL)
	if err != nil {
		// The URL often embeds an API key, so it is not part of the error.
		return nil, fmt.Errorf("failed to connect to RPC endpoint of %s: %w", profile.Name, err)
	}
	return NewEVMClient(ethClient, ethClient.Close, profile, p.opts, p.logger), nil
}

// Close closes every cached client, including ones still in use.
func (p *EVMClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed.Store(true)
	for name := range p.clients.Items() {
		p.clients.Delete(name)
	}
}

// simulatedBackend mines a block for every accepted transaction, the way a
// local development node does.
type simulatedBackend struct {
	simulated.Client
	sim *simulated.Backend
	mu  sync.Mutex
}

func newSimulatedBackend(profile entity.NetworkProfile) (*simulatedBackend, func(), error) {
	alloc := types.GenesisAlloc{}
	if profile.HasCredentials() {
		s, err := signer.NewKeySigner(profile.Credential)
		if err != nil {
			return nil, nil, fmt.Errorf("network %q: %w", profile.Name, err)
		}
		alloc[s.Address()] = types.Account{Balance: new(big.Int).Set(simulatedAccountBalance)}
	}

	sim := simulated.NewBackend(alloc)
	b := &simulatedBackend{Client: sim.Client(), sim: sim}
	return b, func() { _ = sim.Close() }, nil
}

func (b *simulatedBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.Client.SendTransaction(ctx, tx); err != nil {
		return err
	}
	b.sim.Commit()
	return nil
}
