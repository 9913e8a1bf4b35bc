package artifactloader

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"contract_deployer/internal/app/port"
	"contract_deployer/internal/domain/entity"
	"contract_deployer/internal/infrastructure/configloader"

	"github.com/ethereum/go-ethereum/common/hexutil"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var contractNamePattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// hardhatArtifact is the subset of a Hardhat artifact file the deployer reads.
type hardhatArtifact struct {
	Format       string              `json:"_format"`
	ContractName string              `json:"contractName"`
	SourceName   string              `json:"sourceName"`
	ABI          jsoniter.RawMessage `json:"abi"`
	Bytecode     string              `json:"bytecode"`
}

// NewArtifactSource returns an HTTP source when a base URL is configured and
// a directory source otherwise.
func NewArtifactSource(cfg configloader.ArtifactsConfig, logger port.Logger) port.ArtifactSource {
	if cfg.BaseURL != "" {
		return NewHTTPSource(cfg.BaseURL, time.Duration(cfg.RequestTimeoutMillis)*time.Millisecond, logger)
	}
	return NewFileSource(cfg.Dir, logger)
}

func validateName(contractName string) error {
	if !contractNamePattern.MatchString(contractName) {
		return fmt.Errorf("%w: invalid contract name %q", entity.ErrArtifact, contractName)
	}
	return nil
}

// decodeArtifact parses raw Hardhat artifact JSON for contractName.
func decodeArtifact(contractName string, data []byte) (entity.ContractArtifact, error) {
	var raw hardhatArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return entity.ContractArtifact{}, fmt.Errorf("%w: malformed artifact for %s: %v", entity.ErrArtifact, contractName, err)
	}
	if raw.ContractName != "" && raw.ContractName != contractName {
		return entity.ContractArtifact{}, fmt.Errorf("%w: artifact describes %s, not %s", entity.ErrArtifact, raw.ContractName, contractName)
	}
	if len(raw.ABI) == 0 {
		return entity.ContractArtifact{}, fmt.Errorf("%w: artifact for %s has no ABI", entity.ErrArtifact, contractName)
	}

	code := strings.TrimSpace(raw.Bytecode)
	if code == "" || code == "0x" {
		return entity.ContractArtifact{}, fmt.Errorf("%w: artifact for %s has no bytecode", entity.ErrArtifact, contractName)
	}
	if strings.Contains(code, "__") {
		return entity.ContractArtifact{}, fmt.Errorf("%w: bytecode of %s has unlinked library references", entity.ErrArtifact, contractName)
	}
	if !strings.HasPrefix(code, "0x") {
		code = "0x" + code
	}
	bytecode, err := hexutil.Decode(code)
	if err != nil {
		return entity.ContractArtifact{}, fmt.Errorf("%w: bytecode of %s is not valid hex: %v", entity.ErrArtifact, contractName, err)
	}

	return entity.ContractArtifact{
		ContractName: contractName,
		SourceName:   raw.SourceName,
		ABI:          string(raw.ABI),
		Bytecode:     bytecode,
	}, nil
}
