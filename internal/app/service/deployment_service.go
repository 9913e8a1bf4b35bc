package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"contract_deployer/internal/app/port"
	"contract_deployer/internal/domain/entity"
	"contract_deployer/internal/pkg/logger"
	"contract_deployer/internal/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// DeploymentServiceImpl implements port.DeploymentService.
type DeploymentServiceImpl struct {
	registry      port.NetworkRegistry
	signers       port.SignerProvider
	clients       port.ChainClientProvider
	artifacts     port.ArtifactSource
	metrics       port.DeploymentMetrics
	logger        port.Logger
	maxConcurrent int
	now           func() time.Time
}

var _ port.DeploymentService = (*DeploymentServiceImpl)(nil)

// NewDeploymentService creates a new instance of DeploymentServiceImpl.
func NewDeploymentService(
	registry port.NetworkRegistry,
	signers port.SignerProvider,
	clients port.ChainClientProvider,
	artifacts port.ArtifactSource,
	metrics port.DeploymentMetrics,
	l port.Logger,
	maxConcurrent int,
) *DeploymentServiceImpl {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &DeploymentServiceImpl{
		registry:      registry,
		signers:       signers,
		clients:       clients,
		artifacts:     artifacts,
		metrics:       metrics,
		logger:        l,
		maxConcurrent: maxConcurrent,
		now:           time.Now,
	}
}

// DeployToNetwork resolves network in the registry and deploys to it.
func (s *DeploymentServiceImpl) DeployToNetwork(ctx context.Context, network string, req entity.DeploymentRequest) (*entity.DeploymentResult, error) {
	profile, err := s.registry.Resolve(network)
	if err != nil {
		s.logger.Error("Cannot resolve network", "network", network, "error", err)
		derr := &entity.DeploymentError{Network: network, Stage: entity.StageResolve, Err: err}
		s.metrics.ObserveDeployment(network, derr, 0)
		return nil, derr
	}
	return s.Deploy(ctx, profile, req)
}

// DeployToNetworks runs one deployment per distinct network concurrently.
// Runs are independent: a failure on one network neither cancels nor affects
// the others. Outcomes follow the order of networks.
func (s *DeploymentServiceImpl) DeployToNetworks(ctx context.Context, networks []string, req entity.DeploymentRequest) []entity.DeploymentOutcome {
	// Two concurrent runs on one network would race for the same nonce.
	unique := make([]string, 0, len(networks))
	seen := make(map[string]struct{}, len(networks))
	for _, n := range networks {
		if _, dup := seen[n]; dup {
			s.logger.Warn("Network listed more than once, deploying once", "network", n)
			continue
		}
		seen[n] = struct{}{}
		unique = append(unique, n)
	}

	outcomes := make([]entity.DeploymentOutcome, len(unique))
	var g errgroup.Group
	g.SetLimit(s.maxConcurrent)
	for i, network := range unique {
		g.Go(func() error {
			res, err := s.DeployToNetwork(ctx, network, req)
			outcomes[i] = entity.DeploymentOutcome{Network: network, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// Deploy runs a single deployment against profile:
// signer, connection, balance diagnostic, artifact, submission, confirmation.
func (s *DeploymentServiceImpl) Deploy(ctx context.Context, profile entity.NetworkProfile, req entity.DeploymentRequest) (*entity.DeploymentResult, error) {
	start := s.now()
	result, err := s.deploy(ctx, profile, req, start)
	s.metrics.ObserveDeployment(profile.Name, err, s.now().Sub(start))
	return result, err
}

func (s *DeploymentServiceImpl) deploy(ctx context.Context, profile entity.NetworkProfile, req entity.DeploymentRequest, start time.Time) (*entity.DeploymentResult, error) {
	log := logger.With(s.logger, "network", profile.Name)
	run := newDeploymentRun(profile.Name, log)

	// No network I/O happens before a signer exists.
	signer, err := s.signers.SignerFor(profile)
	if err != nil {
		return nil, run.fail(entity.StageSigner, err)
	}
	run.advance(entity.StateSignerReady)
	deployer := signer.Address()
	log.Info("Deploying contract with the account", "deployer", deployer.Hex())

	client, err := s.clients.GetClient(ctx, profile)
	if err != nil {
		return nil, run.fail(entity.StageConnect, asSubmission(err))
	}

	result := &entity.DeploymentResult{
		Network:         profile.Name,
		DeployerAddress: deployer,
	}

	balance, err := client.BalanceAt(ctx, deployer)
	if err != nil {
		log.Warn("Could not fetch deployer balance, continuing", "deployer", deployer.Hex(), "error", err)
		s.metrics.ObserveBalanceFailure(profile.Name)
	} else {
		result.DeployerBalanceAtStart = balance
		result.FormattedBalance = utils.FormatBigInt(balance, profile.Decimals) + " " + profile.NativeSymbol
		log.Info("Account balance", "deployer", deployer.Hex(), "balance", result.FormattedBalance)
	}

	artifact, err := s.artifact(ctx, req)
	if err != nil {
		return nil, run.fail(entity.StageArtifact, err)
	}
	result.ContractName = artifact.ContractName

	pending, err := client.CreateContract(ctx, signer, artifact, req.ConstructorArguments...)
	if err != nil {
		return nil, run.fail(entity.StageSubmit, asSubmission(err))
	}
	run.advance(entity.StateSubmitted)
	result.TransactionHash = pending.TxHash
	log.Info("Deployment transaction sent, waiting for confirmation",
		"contract", artifact.ContractName,
		"tx_hash", pending.TxHash.Hex(),
		"explorer", explorerLink(profile, "tx", pending.TxHash.Hex()))

	confirmation, err := client.AwaitConfirmation(ctx, *pending)
	if err != nil {
		if !errors.Is(err, entity.ErrConfirmation) {
			err = fmt.Errorf("%w: %w", entity.ErrConfirmation, err)
		}
		return nil, run.fail(entity.StageConfirm, err)
	}
	run.advance(entity.StateConfirmed)

	result.DeployedAddress = confirmation.ContractAddress
	result.BlockNumber = confirmation.BlockNumber
	result.GasUsed = confirmation.GasUsed
	result.Duration = s.now().Sub(start)

	log.Info("Contract deployed",
		"contract", artifact.ContractName,
		"address", confirmation.ContractAddress.Hex(),
		"block", confirmation.BlockNumber,
		"gas_used", confirmation.GasUsed,
		"explorer", explorerLink(profile, "address", confirmation.ContractAddress.Hex()))
	return result, nil
}

// artifact returns the artifact carried by req or fetches it by name.
func (s *DeploymentServiceImpl) artifact(ctx context.Context, req entity.DeploymentRequest) (entity.ContractArtifact, error) {
	if req.Artifact != nil {
		a := *req.Artifact
		if a.ContractName == "" {
			a.ContractName = req.ContractName
		}
		return a, nil
	}
	name := strings.TrimSpace(req.ContractName)
	if name == "" {
		return entity.ContractArtifact{}, fmt.Errorf("%w: no contract name given", entity.ErrArtifact)
	}
	a, err := s.artifacts.GetArtifact(ctx, name)
	if err != nil {
		if !errors.Is(err, entity.ErrArtifact) {
			err = fmt.Errorf("%w: %w", entity.ErrArtifact, err)
		}
		return entity.ContractArtifact{}, err
	}
	return a, nil
}

// asSubmission classifies a client error. Configuration errors keep their
// kind, everything else is a submission failure.
func asSubmission(err error) error {
	if errors.Is(err, entity.ErrConfiguration) || errors.Is(err, entity.ErrSubmission) {
		return err
	}
	return fmt.Errorf("%w: %w", entity.ErrSubmission, err)
}

func explorerLink(profile entity.NetworkProfile, kind, id string) string {
	if profile.BlockExplorerURL == "" {
		return ""
	}
	return strings.TrimRight(profile.BlockExplorerURL, "/") + "/" + kind + "/" + id
}
