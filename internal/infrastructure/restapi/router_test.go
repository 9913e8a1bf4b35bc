package restapi

import (
	"context"
	stdjson "encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"contract_deployer/internal/domain/entity"
	networkdefinition "contract_deployer/internal/infrastructure/network/definition"
	"contract_deployer/internal/pkg/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeploymentService struct {
	errs     map[string]error
	networks []string
	req      entity.DeploymentRequest
}

func (s *fakeDeploymentService) Deploy(ctx context.Context, profile entity.NetworkProfile, req entity.DeploymentRequest) (*entity.DeploymentResult, error) {
	return s.DeployToNetwork(ctx, profile.Name, req)
}

func (s *fakeDeploymentService) DeployToNetwork(_ context.Context, network string, req entity.DeploymentRequest) (*entity.DeploymentResult, error) {
	if err := s.errs[network]; err != nil {
		return nil, err
	}
	return &entity.DeploymentResult{
		Network:         network,
		ContractName:    req.ContractName,
		DeployedAddress: common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
	}, nil
}

func (s *fakeDeploymentService) DeployToNetworks(ctx context.Context, networks []string, req entity.DeploymentRequest) []entity.DeploymentOutcome {
	s.networks = networks
	s.req = req
	out := make([]entity.DeploymentOutcome, 0, len(networks))
	for _, n := range networks {
		res, err := s.DeployToNetwork(ctx, n, req)
		out = append(out, entity.DeploymentOutcome{Network: n, Result: res, Err: err})
	}
	return out
}

func newTestRouter(t *testing.T, ds *fakeDeploymentService, gatherer prometheus.Gatherer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	registry, err := networkdefinition.NewNetworkRegistry(logger.NewNop(), nil, func(string) (string, bool) { return "", false })
	require.NoError(t, err)
	return SetupRouter(NewNetworkHandler(registry), NewDeploymentHandler(ds, "RiskRegistry", logger.NewNop()), gatherer)
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, stdjson.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t, &fakeDeploymentService{}, nil)
	w := do(t, r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/metrics", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_requests_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	r := newTestRouter(t, &fakeDeploymentService{}, reg)
	w := do(t, r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_requests_total 1")
}

func TestListNetworks(t *testing.T) {
	r := newTestRouter(t, &fakeDeploymentService{}, nil)
	w := do(t, r, http.MethodGet, "/api/v1/networks", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	networks := body["data"].(map[string]any)["networks"].([]any)
	require.Len(t, networks, 3)
	assert.Equal(t, "amoy", networks[0].(map[string]any)["name"])
	assert.Equal(t, "hardhat", networks[1].(map[string]any)["name"])
	assert.NotContains(t, w.Body.String(), networkdefinition.DevAccountKey)
}

func TestGetNetwork(t *testing.T) {
	r := newTestRouter(t, &fakeDeploymentService{}, nil)

	w := do(t, r, http.MethodGet, "/api/v1/networks/sepolia", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "Sepolia", data["displayName"])
	assert.Equal(t, float64(11155111), data["chainId"])
	assert.Equal(t, false, data["rpcConfigured"])

	w = do(t, r, http.MethodGet, "/api/v1/networks/mainnet", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateDeployment_Success(t *testing.T) {
	ds := &fakeDeploymentService{}
	r := newTestRouter(t, ds, nil)

	w := do(t, r, http.MethodPost, "/api/v1/deployments",
		`{"network":"hardhat","constructorArgs":["owner",115792089237316195423570985008687907853269984665640564039457584007913129639935,true]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, []string{"hardhat"}, ds.networks)
	assert.Equal(t, "RiskRegistry", ds.req.ContractName)
	assert.Equal(t, []any{"owner", "115792089237316195423570985008687907853269984665640564039457584007913129639935", "true"}, ds.req.ConstructorArguments)

	body := decode(t, w)
	assert.Equal(t, "Contract deployed successfully.", body["status_message"])
	deployments := body["data"].(map[string]any)["deployments"].([]any)
	require.Len(t, deployments, 1)
	assert.Nil(t, body["service_errors"])
}

func TestCreateDeployment_BadRequests(t *testing.T) {
	r := newTestRouter(t, &fakeDeploymentService{}, nil)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/api/v1/deployments", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/api/v1/deployments", `{"contract":"X"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/api/v1/deployments", `{"networks":[" ",""]}`).Code)
}

func TestCreateDeployment_PartialFailure(t *testing.T) {
	ds := &fakeDeploymentService{errs: map[string]error{
		"sepolia": &entity.DeploymentError{Network: "sepolia", Stage: entity.StageSigner, Err: entity.ErrMissingCredentials},
	}}
	r := newTestRouter(t, ds, nil)

	w := do(t, r, http.MethodPost, "/api/v1/deployments", `{"networks":["hardhat","sepolia"],"contract":"Token"}`)
	require.Equal(t, http.StatusMultiStatus, w.Code)

	body := decode(t, w)
	assert.Equal(t, "Some deployments failed.", body["status_message"])
	errs := body["service_errors"].([]any)
	require.Len(t, errs, 1)
	apiErr := errs[0].(map[string]any)
	assert.Equal(t, "sepolia", apiErr["network"])
	assert.Equal(t, "signer", apiErr["stage"])
	assert.Equal(t, "missing_credentials", apiErr["kind"])
	assert.Equal(t, "Token", ds.req.ContractName)
}

func TestCreateDeployment_FailureStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{entity.ErrUnknownNetwork, http.StatusNotFound},
		{entity.ErrMissingCredentials, http.StatusUnprocessableEntity},
		{entity.ErrMissingRPCEndpoint, http.StatusBadRequest},
		{entity.ErrChainIDMismatch, http.StatusBadRequest},
		{entity.ErrArtifact, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: insufficient funds", entity.ErrSubmission), http.StatusBadGateway},
		{entity.ErrTransactionDropped, http.StatusGatewayTimeout},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			ds := &fakeDeploymentService{errs: map[string]error{"hardhat": tt.err}}
			r := newTestRouter(t, ds, nil)

			w := do(t, r, http.MethodPost, "/api/v1/deployments", `{"network":"hardhat"}`)
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, "Deployment failed.", decode(t, w)["status_message"])
		})
	}
}

func TestCORS(t *testing.T) {
	r := newTestRouter(t, &fakeDeploymentService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/networks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
