package configloader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the config file is looked up when none is given.
const DefaultPath = "config/config.yml"

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// RPCClientConfig holds settings shared by every chain client.
type RPCClientConfig struct {
	ConnectTimeoutMs      int64   `yaml:"connectTimeoutMs"`
	CallTimeoutMs         int64   `yaml:"callTimeoutMs"`
	RateLimit             float64 `yaml:"rateLimit"` // requests per second, 0 disables limiting
	BurstLimit            int     `yaml:"burstLimit"`
	ClientCacheTTLMinutes int     `yaml:"clientCacheTTLMinutes"`
}

// ArtifactsConfig tells where compiled contract artifacts live.
type ArtifactsConfig struct {
	Dir                  string `yaml:"dir"`
	BaseURL              string `yaml:"baseURL"` // takes precedence over Dir when set
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// DeploymentConfig holds settings for deployment runs.
type DeploymentConfig struct {
	DefaultContract            string `yaml:"defaultContract"`
	ConfirmationPollMs         int64  `yaml:"confirmationPollMs"`
	ConfirmationTimeoutSeconds int64  `yaml:"confirmationTimeoutSeconds"` // 0 waits forever
	DroppedAfterMisses         int    `yaml:"droppedAfterMisses"`
	MaxConcurrentDeployments   int    `yaml:"maxConcurrentDeployments"`
}

// NetworkNodeConfig describes one network. Secrets are normally referenced
// through environment variable names rather than stored inline.
type NetworkNodeConfig struct {
	Name             string  `yaml:"name"`
	DisplayName      string  `yaml:"displayName"`
	Backend          string  `yaml:"backend"` // rpc (default) or simulated
	RPCURL           string  `yaml:"rpcUrl"`
	RPCURLEnv        string  `yaml:"rpcUrlEnv"`
	PrivateKey       string  `yaml:"privateKey"`
	PrivateKeyEnv    string  `yaml:"privateKeyEnv"`
	ChainID          *uint64 `yaml:"chainId"`
	NativeSymbol     string  `yaml:"nativeSymbol"`
	Decimals         uint8   `yaml:"decimals"`
	BlockExplorerURL string  `yaml:"blockExplorerUrl"`
}

// Config is the top-level configuration structure.
type Config struct {
	Logging    LoggingConfig       `yaml:"logging"`
	Server     ServerConfig        `yaml:"server"`
	RPCClient  RPCClientConfig     `yaml:"rpcClient"`
	Artifacts  ArtifactsConfig     `yaml:"artifacts"`
	Deployment DeploymentConfig    `yaml:"deployment"`
	Networks   []NetworkNodeConfig `yaml:"networks"`
}

// Load reads the YAML configuration file at path and applies defaults.
// A missing file is not an error: the defaults alone are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	logrus.Debugf("Loading configuration from path: %s", path)

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logrus.Infof("Config file %s not found, using built-in defaults", path)
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
	}

	applyDefaults(&cfg)
	logrus.Debug("Configuration loaded successfully.")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	// A deployment request blocks until confirmation.
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 600
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}

	if cfg.RPCClient.ConnectTimeoutMs <= 0 {
		cfg.RPCClient.ConnectTimeoutMs = 10000
	}
	if cfg.RPCClient.CallTimeoutMs <= 0 {
		cfg.RPCClient.CallTimeoutMs = 15000
	}
	if cfg.RPCClient.RateLimit < 0 {
		cfg.RPCClient.RateLimit = 0
	}
	if cfg.RPCClient.BurstLimit <= 0 {
		cfg.RPCClient.BurstLimit = 5
	}
	if cfg.RPCClient.ClientCacheTTLMinutes <= 0 {
		cfg.RPCClient.ClientCacheTTLMinutes = 30
	}

	if cfg.Artifacts.Dir == "" {
		cfg.Artifacts.Dir = "artifacts/contracts"
	}
	if cfg.Artifacts.RequestTimeoutMillis <= 0 {
		cfg.Artifacts.RequestTimeoutMillis = 10000
	}

	if cfg.Deployment.DefaultContract == "" {
		cfg.Deployment.DefaultContract = "RiskRegistry"
	}
	if cfg.Deployment.ConfirmationPollMs <= 0 {
		cfg.Deployment.ConfirmationPollMs = 1000
	}
	if cfg.Deployment.ConfirmationTimeoutSeconds < 0 {
		logrus.Warnf("deployment.confirmationTimeoutSeconds is negative (%d), waiting without a timeout", cfg.Deployment.ConfirmationTimeoutSeconds)
		cfg.Deployment.ConfirmationTimeoutSeconds = 0
	}
	if cfg.Deployment.DroppedAfterMisses <= 0 {
		cfg.Deployment.DroppedAfterMisses = 30
	}
	if cfg.Deployment.MaxConcurrentDeployments <= 0 {
		cfg.Deployment.MaxConcurrentDeployments = 4
	}
}
