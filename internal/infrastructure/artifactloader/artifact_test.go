package artifactloader

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"contract_deployer/internal/domain/entity"
	"contract_deployer/internal/infrastructure/configloader"
	"contract_deployer/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const registryArtifact = `{
  "_format": "hh-sol-artifact-1",
  "contractName": "RiskRegistry",
  "sourceName": "contracts/RiskRegistry.sol",
  "abi": [{"inputs": [], "stateMutability": "nonpayable", "type": "constructor"}],
  "bytecode": "0x6001600c60003960016000f300",
  "deployedBytecode": "0x00",
  "linkReferences": {},
  "deployedLinkReferences": {}
}`

func writeArtifact(t *testing.T, dir, source, name, content string) {
	t.Helper()
	path := filepath.Join(dir, source, name+".json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestDecodeArtifact(t *testing.T) {
	a, err := decodeArtifact("RiskRegistry", []byte(registryArtifact))
	require.NoError(t, err)
	assert.Equal(t, "RiskRegistry", a.ContractName)
	assert.Equal(t, "contracts/RiskRegistry.sol", a.SourceName)
	assert.Equal(t, []byte{0x60, 0x01, 0x60, 0x0c, 0x60, 0x00, 0x39, 0x60, 0x01, 0x60, 0x00, 0xf3, 0x00}, a.Bytecode)
	assert.Contains(t, a.ABI, `"constructor"`)
}

func TestDecodeArtifact_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"abi": [`},
		{"no bytecode", `{"contractName": "RiskRegistry", "abi": [], "bytecode": "0x"}`},
		{"no abi", `{"contractName": "RiskRegistry", "bytecode": "0x00"}`},
		{"unlinked", `{"contractName": "RiskRegistry", "abi": [], "bytecode": "0x73__$abc$__00"}`},
		{"other contract", `{"contractName": "Other", "abi": [], "bytecode": "0x00"}`},
		{"bad hex", `{"contractName": "RiskRegistry", "abi": [], "bytecode": "0xzz"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeArtifact("RiskRegistry", []byte(tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, entity.ErrArtifact)
		})
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "RiskRegistry.sol", "RiskRegistry", registryArtifact)
	writeArtifact(t, dir, "Registry.sol", "Helper", `{"contractName": "Helper", "abi": [], "bytecode": "0x00"}`)
	src := NewFileSource(dir, logger.NewNop())
	ctx := context.Background()

	a, err := src.GetArtifact(ctx, "RiskRegistry")
	require.NoError(t, err)
	assert.Equal(t, "RiskRegistry", a.ContractName)

	// Contracts declared in a differently named source file are found by search.
	h, err := src.GetArtifact(ctx, "Helper")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, h.Bytecode)

	_, err = src.GetArtifact(ctx, "Missing")
	assert.ErrorIs(t, err, entity.ErrArtifact)

	_, err = src.GetArtifact(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, entity.ErrArtifact)
}

func TestFileSource_MissingDirectory(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "nope"), logger.NewNop())
	_, err := src.GetArtifact(context.Background(), "RiskRegistry")
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrArtifact)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestFileSource_Ambiguous(t *testing.T) {
	dir := t.TempDir()
	body := `{"contractName": "Token", "abi": [], "bytecode": "0x00"}`
	writeArtifact(t, dir, "A.sol", "Token", body)
	writeArtifact(t, dir, "B.sol", "Token", body)

	_, err := NewFileSource(dir, logger.NewNop()).GetArtifact(context.Background(), "Token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/contracts/RiskRegistry.sol/RiskRegistry.json" {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, registryArtifact)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/contracts/", time.Second, logger.NewNop())
	ctx := context.Background()

	a, err := src.GetArtifact(ctx, "RiskRegistry")
	require.NoError(t, err)
	assert.Equal(t, "RiskRegistry", a.ContractName)
	assert.NotEmpty(t, a.Bytecode)

	_, err = src.GetArtifact(ctx, "Missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrArtifact)
	assert.Contains(t, err.Error(), "404")
}

func TestNewArtifactSource(t *testing.T) {
	fileSrc := NewArtifactSource(configloader.ArtifactsConfig{Dir: "artifacts/contracts"}, logger.NewNop())
	assert.IsType(t, &FileSource{}, fileSrc)

	httpSrc := NewArtifactSource(configloader.ArtifactsConfig{BaseURL: "http://localhost:1", RequestTimeoutMillis: 50}, logger.NewNop())
	assert.IsType(t, &HTTPSource{}, httpSrc)
}
