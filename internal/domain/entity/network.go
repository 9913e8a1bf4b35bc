package entity

import "strings"

// Backend selects how a chain client is obtained for a network.
type Backend string

const (
	// BackendRPC dials the profile's RPC endpoint.
	BackendRPC Backend = "rpc"
	// BackendSimulated runs an in-process simulated chain, the local development network.
	BackendSimulated Backend = "simulated"
)

// NetworkProfile holds the connection parameters for a named network.
// Profiles are loaded once per process and never mutated afterwards.
type NetworkProfile struct {
	Name             string  `json:"name" yaml:"name"`
	DisplayName      string  `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Backend          Backend `json:"backend" yaml:"backend"`
	RPCURL           string  `json:"-" yaml:"rpcUrl"` // may embed an API key
	Credential       string  `json:"-" yaml:"-"`
	ChainID          *uint64 `json:"chainId,omitempty" yaml:"chainId,omitempty"`
	NativeSymbol     string  `json:"nativeSymbol" yaml:"nativeSymbol"`
	Decimals         uint8   `json:"decimals" yaml:"decimals"`
	BlockExplorerURL string  `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
}

// HasCredentials reports whether the profile carries signing material.
// A profile without credentials is read-only.
func (p NetworkProfile) HasCredentials() bool {
	return strings.TrimSpace(p.Credential) != ""
}

// HasRPCEndpoint reports whether the profile can be connected to.
func (p NetworkProfile) HasRPCEndpoint() bool {
	return p.Backend == BackendSimulated || strings.TrimSpace(p.RPCURL) != ""
}

// Label returns the display name, falling back to the profile name.
func (p NetworkProfile) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Name
}

// NetworkSummary is the redacted view of a profile exposed to operators.
type NetworkSummary struct {
	Name           string  `json:"name"`
	DisplayName    string  `json:"displayName"`
	Backend        Backend `json:"backend"`
	ChainID        *uint64 `json:"chainId,omitempty"`
	NativeSymbol   string  `json:"nativeSymbol"`
	RPCConfigured  bool    `json:"rpcConfigured"`
	HasCredentials bool    `json:"hasCredentials"`
}

// Summary builds the redacted view of the profile.
func (p NetworkProfile) Summary() NetworkSummary {
	return NetworkSummary{
		Name:           p.Name,
		DisplayName:    p.Label(),
		Backend:        p.Backend,
		ChainID:        p.ChainID,
		NativeSymbol:   p.NativeSymbol,
		RPCConfigured:  p.HasRPCEndpoint(),
		HasCredentials: p.HasCredentials(),
	}
}
