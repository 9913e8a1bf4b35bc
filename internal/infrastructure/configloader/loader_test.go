package configloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int64(10000), cfg.RPCClient.ConnectTimeoutMs)
	assert.Equal(t, 30, cfg.RPCClient.ClientCacheTTLMinutes)
	assert.Equal(t, "artifacts/contracts", cfg.Artifacts.Dir)
	assert.Equal(t, "RiskRegistry", cfg.Deployment.DefaultContract)
	assert.Equal(t, int64(0), cfg.Deployment.ConfirmationTimeoutSeconds)
	assert.Equal(t, 4, cfg.Deployment.MaxConcurrentDeployments)
	assert.Empty(t, cfg.Networks)
}

func TestLoad_ParsesNetworks(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
rpcClient:
  rateLimit: 2.5
deployment:
  defaultContract: Registry
  confirmationTimeoutSeconds: -3
networks:
  - name: amoy
    rpcUrlEnv: ALCHEMY_API_URL
    privateKeyEnv: PRIVATE_KEY
    chainId: 80002
    nativeSymbol: POL
  - name: local
    backend: simulated
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 2.5, cfg.RPCClient.RateLimit)
	assert.Equal(t, "Registry", cfg.Deployment.DefaultContract)
	assert.Equal(t, int64(0), cfg.Deployment.ConfirmationTimeoutSeconds, "negative timeout means no timeout")

	require.Len(t, cfg.Networks, 2)
	amoy := cfg.Networks[0]
	assert.Equal(t, "amoy", amoy.Name)
	assert.Equal(t, "ALCHEMY_API_URL", amoy.RPCURLEnv)
	assert.Equal(t, "PRIVATE_KEY", amoy.PrivateKeyEnv)
	require.NotNil(t, amoy.ChainID)
	assert.Equal(t, uint64(80002), *amoy.ChainID)
	assert.Equal(t, "POL", amoy.NativeSymbol)
	assert.Equal(t, "simulated", cfg.Networks[1].Backend)
	assert.Nil(t, cfg.Networks[1].ChainID)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "networks: [name: {"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal")
}
