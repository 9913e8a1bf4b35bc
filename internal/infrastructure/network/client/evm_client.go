package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync/atomic"
	"time"

	"contract_deployer/internal/app/port"
	"contract_deployer/internal/domain/entity"
	"contract_deployer/internal/pkg/utils"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/time/rate"
)

// rpcBackend is the subset of ethclient.Client the EVM client relies on.
// The simulated backend satisfies it as well.
type rpcBackend interface {
	bind.ContractBackend
	bind.DeployBackend
	ethereum.ChainStateReader
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// Options tunes a chain client.
type Options struct {
	CallTimeout         time.Duration
	RateLimit           float64 // requests per second, 0 disables limiting
	BurstLimit          int
	PollInterval        time.Duration
	ConfirmationTimeout time.Duration // 0 waits until ctx is done
	DroppedAfterMisses  int
}

func (o Options) withDefaults() Options {
	if o.CallTimeout <= 0 {
		o.CallTimeout = 15 * time.Second
	}
	if o.BurstLimit <= 0 {
		o.BurstLimit = 1
	}
	if o.PollInterval <= 0 {
		o.PollInterval = time.Second
	}
	if o.DroppedAfterMisses <= 0 {
		o.DroppedAfterMisses = 30
	}
	return o
}

// EVMClient implements port.ChainClient for EVM-compatible chains.
type EVMClient struct {
	backend rpcBackend
	closer  func()
	profile entity.NetworkProfile
	opts    Options
	limiter *rate.Limiter
	logger  port.Logger
	busy    atomic.Int32
}

var _ port.ChainClient = (*EVMClient)(nil)

// NewEVMClient wraps backend for profile. closer releases the backend and may be nil.
func NewEVMClient(backend rpcBackend, closer func(), profile entity.NetworkProfile, opts Options, logger port.Logger) *EVMClient {
	opts = opts.withDefaults()
	c := &EVMClient{
		backend: backend,
		closer:  closer,
		profile: profile,
		opts:    opts,
		logger:  logger,
	}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), opts.BurstLimit)
	}
	return c
}

// track marks the client as in use until the returned func is called.
func (c *EVMClient) track() func() {
	c.busy.Add(1)
	return func() { c.busy.Add(-1) }
}

// InUse reports whether a call is in flight.
func (c *EVMClient) InUse() bool {
	return c.busy.Load() > 0
}

// Close releases the underlying connection.
func (c *EVMClient) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// call throttles and bounds a single RPC round trip.
func (c *EVMClient) call(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, fmt.Errorf("rate limiter: %w", err)
		}
	}
	callCtx, cancel := context.WithTimeout(ctx, c.opts.CallTimeout)
	return callCtx, cancel, nil
}

// BalanceAt fetches the native balance of account at the latest block.
func (c *EVMClient) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	defer c.track()()
	callCtx, cancel, err := c.call(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	balance, err := c.backend.BalanceAt(callCtx, account, nil)
	if err != nil {
		return nil, fmt.Errorf("eth_getBalance for %s on %s: %w", account.Hex(), c.profile.Name, err)
	}
	return balance, nil
}

// ChainID returns the chain id reported by the endpoint.
func (c *EVMClient) ChainID(ctx context.Context) (*big.Int, error) {
	defer c.track()()
	callCtx, cancel, err := c.call(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	id, err := c.backend.ChainID(callCtx)
	if err != nil {
		return nil, fmt.Errorf("eth_chainId on %s: %w", c.profile.Name, err)
	}
	return id, nil
}

// signingChainID returns the remote chain id, checked against the profile's when one is configured.
func (c *EVMClient) signingChainID(ctx context.Context) (*big.Int, error) {
	remote, err := c.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	if c.profile.ChainID != nil && (!remote.IsUint64() || remote.Uint64() != *c.profile.ChainID) {
		return nil, fmt.Errorf("%w: network %q expects chain id %d, endpoint reports %s",
			entity.ErrChainIDMismatch, c.profile.Name, *c.profile.ChainID, remote)
	}
	return remote, nil
}

// CreateContract packs the constructor arguments, signs the creation
// transaction with signer and submits it.
func (c *EVMClient) CreateContract(ctx context.Context, signer port.Signer, artifact entity.ContractArtifact, args ...any) (*entity.PendingDeployment, error) {
	defer c.track()()

	if len(artifact.Bytecode) == 0 {
		return nil, fmt.Errorf("artifact %s has no bytecode (abstract contract or interface?)", artifact.ContractName)
	}
	parsedABI, err := abi.JSON(strings.NewReader(artifact.ABI))
	if err != nil {
		return nil, fmt.Errorf("invalid ABI for %s: %w", artifact.ContractName, err)
	}
	ctorArgs, err := utils.CoerceArgs(parsedABI.Constructor.Inputs, args)
	if err != nil {
		return nil, fmt.Errorf("constructor arguments for %s: %w", artifact.ContractName, err)
	}

	chainID, err := c.signingChainID(ctx)
	if err != nil {
		return nil, err
	}

	// Nonce, fee and gas estimation plus the send share one call budget.
	callCtx, cancel, err := c.call(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	opts, err := signer.TransactOpts(callCtx, chainID)
	if err != nil {
		return nil, err
	}

	address, tx, _, err := bind.DeployContract(opts, parsedABI, artifact.Bytecode, c.backend, ctorArgs...)
	if err != nil {
		return nil, fmt.Errorf("deploy %s on %s: %w", artifact.ContractName, c.profile.Name, err)
	}

	c.logger.Info("Contract creation transaction submitted",
		"network", c.profile.Name,
		"contract", artifact.ContractName,
		"tx_hash", tx.Hash().Hex(),
		"nonce", tx.Nonce(),
		"predicted_address", address.Hex())

	return &entity.PendingDeployment{
		TxHash:           tx.Hash(),
		Nonce:            tx.Nonce(),
		From:             signer.Address(),
		PredictedAddress: address,
		Transaction:      tx,
	}, nil
}

// AwaitConfirmation polls until the creation receipt is available. It only
// gives up when the transaction reverted, was replaced or dropped, or ctx
// (optionally bounded by the confirmation timeout) is done.
func (c *EVMClient) AwaitConfirmation(ctx context.Context, pending entity.PendingDeployment) (*entity.Confirmation, error) {
	defer c.track()()

	if c.opts.ConfirmationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.ConfirmationTimeout)
		defer cancel()
	}

	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	misses := 0
	for {
		receipt, err := c.receipt(ctx, pending.TxHash)
		switch {
		case err == nil:
			return c.confirm(ctx, pending, receipt)
		case !notFound(err):
			c.logger.Debug("Receipt query failed, retrying", "network", c.profile.Name, "tx_hash", pending.TxHash.Hex(), "error", err)
		default:
			known, consumed, err := c.lookupPending(ctx, pending)
			switch {
			case err != nil:
				c.logger.Debug("Pending transaction lookup failed, retrying", "network", c.profile.Name, "tx_hash", pending.TxHash.Hex(), "error", err)
			case known:
				misses = 0
			case consumed:
				// The nonce is used; the receipt may have landed in between.
				if receipt, err := c.receipt(ctx, pending.TxHash); err == nil {
					return c.confirm(ctx, pending, receipt)
				}
				return nil, fmt.Errorf("%w: nonce %d of %s was used by another transaction, %s never confirmed",
					entity.ErrTransactionReplaced, pending.Nonce, pending.From.Hex(), pending.TxHash.Hex())
			default:
				misses++
				if misses >= c.opts.DroppedAfterMisses {
					return nil, fmt.Errorf("%w: %s is no longer known to the node after %d checks",
						entity.ErrTransactionDropped, pending.TxHash.Hex(), misses)
				}
			}
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: stopped waiting for %s: %w", entity.ErrConfirmation, pending.TxHash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// Nodes still building their transaction index answer lookups of hashes they
// have not indexed with this error instead of a null result.
const txIndexingInProgress = "transaction indexing is in progress"

// notFound reports whether a receipt or transaction lookup failed because the
// node does not know the hash (yet).
func notFound(err error) bool {
	return errors.Is(err, ethereum.NotFound) || strings.Contains(err.Error(), txIndexingInProgress)
}

func (c *EVMClient) receipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	callCtx, cancel, err := c.call(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	return c.backend.TransactionReceipt(callCtx, hash)
}

// lookupPending reports whether the node still knows the transaction and,
// when it does not, whether the sender's nonce has moved past it.
func (c *EVMClient) lookupPending(ctx context.Context, pending entity.PendingDeployment) (known, consumed bool, err error) {
	callCtx, cancel, err := c.call(ctx)
	if err != nil {
		return false, false, err
	}
	defer cancel()

	_, _, err = c.backend.TransactionByHash(callCtx, pending.TxHash)
	if err == nil {
		return true, false, nil
	}
	if !notFound(err) {
		return false, false, err
	}

	nonce, err := c.backend.NonceAt(callCtx, pending.From, nil)
	if err != nil {
		return false, false, err
	}
	return false, nonce > pending.Nonce, nil
}

func (c *EVMClient) confirm(ctx context.Context, pending entity.PendingDeployment, receipt *types.Receipt) (*entity.Confirmation, error) {
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: %s in block %s", entity.ErrTransactionReverted, pending.TxHash.Hex(), receipt.BlockNumber)
	}

	address := receipt.ContractAddress
	if address == (common.Address{}) {
		address = pending.PredictedAddress
	}

	callCtx, cancel, err := c.call(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrConfirmation, err)
	}
	defer cancel()

	code, err := c.backend.CodeAt(callCtx, address, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: reading code at %s: %w", entity.ErrConfirmation, address.Hex(), err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%w: %s", entity.ErrNoContractCode, address.Hex())
	}

	var blockNumber uint64
	if receipt.BlockNumber != nil {
		blockNumber = receipt.BlockNumber.Uint64()
	}
	return &entity.Confirmation{
		ContractAddress: address,
		TxHash:          receipt.TxHash,
		BlockNumber:     blockNumber,
		BlockHash:       receipt.BlockHash,
		GasUsed:         receipt.GasUsed,
	}, nil
}
