package restapi

import (
	stdjson "encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"contract_deployer/internal/app/port"
	"contract_deployer/internal/domain/entity"
	"contract_deployer/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
)

// Numbers are kept as text so large uint256 arguments survive decoding.
var json = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// DeploymentRequestBody is the payload of POST /deployments. Either network
// or networks must be set.
type DeploymentRequestBody struct {
	Network         string   `json:"network"`
	Networks        []string `json:"networks"`
	Contract        string   `json:"contract"`
	ConstructorArgs []any    `json:"constructorArgs"`
}

// APIError describes one failed run.
type APIError struct {
	Network string `json:"network"`
	Stage   string `json:"stage,omitempty"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// APIDeploymentResponse is the response of POST /deployments.
type APIDeploymentResponse struct {
	Data struct {
		Deployments []*entity.DeploymentResult `json:"deployments"`
	} `json:"data"`
	ServiceErrors []APIError `json:"service_errors,omitempty"`
	StatusMessage string     `json:"status_message"`
}

// DeploymentHandler handles deployment requests.
type DeploymentHandler struct {
	deploymentService port.DeploymentService
	defaultContract   string
	logger            port.Logger
}

// NewDeploymentHandler creates a new DeploymentHandler.
func NewDeploymentHandler(ds port.DeploymentService, defaultContract string, logger port.Logger) *DeploymentHandler {
	return &DeploymentHandler{
		deploymentService: ds,
		defaultContract:   defaultContract,
		logger:            logger,
	}
}

// CreateDeploymentHandler runs the requested deployments and blocks until
// every run is confirmed or failed.
func (h *DeploymentHandler) CreateDeploymentHandler(c *gin.Context) {
	var body DeploymentRequestBody
	if err := json.NewDecoder(c.Request.Body).Decode(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status_message": "Invalid request body: " + err.Error()})
		return
	}

	networks := utils.SplitAndTrim(append([]string{body.Network}, body.Networks...))
	if len(networks) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"status_message": "At least one network is required."})
		return
	}

	contract := strings.TrimSpace(body.Contract)
	if contract == "" {
		contract = h.defaultContract
	}
	req := entity.DeploymentRequest{
		ContractName:         contract,
		ConstructorArguments: normalizeArgs(body.ConstructorArgs),
	}

	h.logger.Info("Deployment requested", "networks", networks, "contract", contract)
	outcomes := h.deploymentService.DeployToNetworks(c.Request.Context(), networks, req)

	response := APIDeploymentResponse{}
	response.Data.Deployments = make([]*entity.DeploymentResult, 0, len(outcomes))
	status := http.StatusOK
	for _, o := range outcomes {
		if o.Err == nil {
			response.Data.Deployments = append(response.Data.Deployments, o.Result)
			continue
		}
		response.ServiceErrors = append(response.ServiceErrors, toAPIError(o.Network, o.Err))
		if status == http.StatusOK {
			status = statusFor(o.Err)
		}
	}

	switch {
	case len(response.ServiceErrors) == 0:
		response.StatusMessage = "Contract deployed successfully."
	case len(response.Data.Deployments) == 0:
		response.StatusMessage = "Deployment failed."
	default:
		status = http.StatusMultiStatus
		response.StatusMessage = "Some deployments failed."
	}
	c.JSON(status, response)
}

func toAPIError(network string, err error) APIError {
	apiErr := APIError{Network: network, Kind: entity.Kind(err), Message: err.Error()}
	if stage, ok := entity.StageOf(err); ok {
		apiErr.Stage = string(stage)
	}
	return apiErr
}

// statusFor maps an error kind to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrUnknownNetwork):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrMissingCredentials):
		return http.StatusUnprocessableEntity
	case errors.Is(err, entity.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrArtifact):
		return http.StatusUnprocessableEntity
	case errors.Is(err, entity.ErrSubmission):
		return http.StatusBadGateway
	case errors.Is(err, entity.ErrConfirmation):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// normalizeArgs turns JSON scalars into the string form the ABI coercion expects.
func normalizeArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case stdjson.Number:
			out[i] = v.String()
		case bool:
			out[i] = strconv.FormatBool(v)
		default:
			out[i] = a
		}
	}
	return out
}
