package artifactloader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"contract_deployer/internal/app/port"
	"contract_deployer/internal/domain/entity"

	"github.com/valyala/fasthttp"
)

// HTTPSource fetches artifacts laid out like a Hardhat artifacts tree from a
// base URL, i.e. <baseURL>/<Name>.sol/<Name>.json.
type HTTPSource struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  port.Logger
}

var _ port.ArtifactSource = (*HTTPSource)(nil)

// NewHTTPSource creates a source for baseURL.
func NewHTTPSource(baseURL string, timeout time.Duration, logger port.Logger) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger,
	}
}

// GetArtifact downloads and decodes the artifact for contractName.
func (s *HTTPSource) GetArtifact(ctx context.Context, contractName string) (entity.ContractArtifact, error) {
	if err := validateName(contractName); err != nil {
		return entity.ContractArtifact{}, err
	}
	requestURL := fmt.Sprintf("%s/%s.sol/%s.json", s.baseURL, contractName, contractName)

	s.logger.Debug("Requesting contract artifact", "url", requestURL)

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.client.DoDeadline(req, resp, deadline); err != nil {
		s.logger.Error("Failed to fetch contract artifact", "url", requestURL, "error", err)
		return entity.ContractArtifact{}, fmt.Errorf("%w: request to %s failed: %v", entity.ErrArtifact, requestURL, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		s.logger.Error("Artifact request failed", "url", requestURL, "status", resp.StatusCode())
		return entity.ContractArtifact{}, fmt.Errorf("%w: %s returned status %d", entity.ErrArtifact, requestURL, resp.StatusCode())
	}

	// The body is released with resp.
	body := append([]byte(nil), resp.Body()...)
	return decodeArtifact(contractName, body)
}
