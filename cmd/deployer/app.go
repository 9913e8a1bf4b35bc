package main

import (
	"contract_deployer/internal/app/port"
	"contract_deployer/internal/app/service"
	"contract_deployer/internal/infrastructure/artifactloader"
	"contract_deployer/internal/infrastructure/configloader"
	"contract_deployer/internal/infrastructure/metrics"
	clientprovider "contract_deployer/internal/infrastructure/network/client"
	networkdefinition "contract_deployer/internal/infrastructure/network/definition"
	"contract_deployer/internal/infrastructure/signer"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// application is the wired object graph shared by all commands.
type application struct {
	cfg          *configloader.Config
	logger       port.Logger
	registry     *networkdefinition.NetworkRegistry
	signers      signer.Provider
	clients      *clientprovider.EVMClientProvider
	artifacts    port.ArtifactSource
	promRegistry *prometheus.Registry
	deployer     *service.DeploymentServiceImpl
}

func newApplication(cfg *configloader.Config, appLogger port.Logger) (*application, error) {
	registry, err := networkdefinition.NewNetworkRegistry(appLogger, cfg.Networks, nil)
	if err != nil {
		return nil, err
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a := &application{
		cfg:          cfg,
		logger:       appLogger,
		registry:     registry,
		signers:      signer.NewProvider(),
		clients:      clientprovider.NewEVMClientProvider(cfg, appLogger),
		artifacts:    artifactloader.NewArtifactSource(cfg.Artifacts, appLogger),
		promRegistry: promRegistry,
	}
	a.deployer = service.NewDeploymentService(
		a.registry,
		a.signers,
		a.clients,
		a.artifacts,
		metrics.NewDeploymentMetrics(promRegistry),
		appLogger,
		cfg.Deployment.MaxConcurrentDeployments,
	)
	return a, nil
}

// Close releases chain connections.
func (a *application) Close() {
	a.clients.Close()
}
