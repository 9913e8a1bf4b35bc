// Package metrics exposes Prometheus instrumentation for deployment runs.
package metrics

import (
	"time"

	"contract_deployer/internal/app/port"
	"contract_deployer/internal/domain/entity"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DeploymentMetrics implements port.DeploymentMetrics.
type DeploymentMetrics struct {
	deploymentsTotal   *prometheus.CounterVec
	deploymentDuration *prometheus.HistogramVec
	balanceFailures    *prometheus.CounterVec
}

var _ port.DeploymentMetrics = (*DeploymentMetrics)(nil)

// NewDeploymentMetrics registers the deployment collectors with reg.
func NewDeploymentMetrics(reg prometheus.Registerer) *DeploymentMetrics {
	factory := promauto.With(reg)
	return &DeploymentMetrics{
		deploymentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deployer_deployments_total",
				Help: "Deployment runs by network, outcome kind and failing stage",
			},
			[]string{"network", "outcome", "stage"},
		),
		deploymentDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "deployer_deployment_duration_seconds",
				Help: "Wall time of deployment runs, confirmation wait included",
				// Block times range from instant (simulated) to minutes.
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"network", "outcome"},
		),
		balanceFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deployer_balance_query_failures_total",
				Help: "Failed diagnostic balance queries by network",
			},
			[]string{"network"},
		),
	}
}

// ObserveDeployment records one finished run. err is nil on success.
func (m *DeploymentMetrics) ObserveDeployment(network string, err error, elapsed time.Duration) {
	outcome := "success"
	stage := ""
	if err != nil {
		outcome = entity.Kind(err)
		if s, ok := entity.StageOf(err); ok {
			stage = string(s)
		}
	}
	m.deploymentsTotal.WithLabelValues(network, outcome, stage).Inc()
	m.deploymentDuration.WithLabelValues(network, outcome).Observe(elapsed.Seconds())
}

// ObserveBalanceFailure counts a failed diagnostic balance query.
func (m *DeploymentMetrics) ObserveBalanceFailure(network string) {
	m.balanceFailures.WithLabelValues(network).Inc()
}

// Nop discards all observations.
type Nop struct{}

var _ port.DeploymentMetrics = Nop{}

func (Nop) ObserveDeployment(string, error, time.Duration) {}
func (Nop) ObserveBalanceFailure(string)                   {}
