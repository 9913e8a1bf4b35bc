package networkdefinition

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"contract_deployer/internal/app/port"
	"contract_deployer/internal/domain/entity"
	"contract_deployer/internal/infrastructure/configloader"
)

// DevAccountKey is the first well-known development account shared by Hardhat
// and Anvil. It is public and must never hold real funds.
const DevAccountKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func chainID(id uint64) *uint64 { return &id }

// Built-in network definitions. Configured networks with the same name override them field by field.
var ( //nolint:gochecknoglobals // Global for definitions
	Hardhat = configloader.NetworkNodeConfig{
		Name:         "hardhat",
		DisplayName:  "Hardhat (in-process simulated chain)",
		Backend:      string(entity.BackendSimulated),
		PrivateKey:   DevAccountKey,
		NativeSymbol: "ETH",
		Decimals:     18,
	}
	Sepolia = configloader.NetworkNodeConfig{
		Name:             "sepolia",
		DisplayName:      "Sepolia",
		Backend:          string(entity.BackendRPC),
		RPCURLEnv:        "SEPOLIA_RPC_URL",
		PrivateKeyEnv:    "SEPOLIA_PRIVATE_KEY",
		ChainID:          chainID(11155111),
		NativeSymbol:     "ETH",
		Decimals:         18,
		BlockExplorerURL: "https://sepolia.etherscan.io",
	}
	Amoy = configloader.NetworkNodeConfig{
		Name:             "amoy",
		DisplayName:      "Polygon Amoy",
		Backend:          string(entity.BackendRPC),
		RPCURLEnv:        "ALCHEMY_API_URL",
		PrivateKeyEnv:    "PRIVATE_KEY",
		ChainID:          chainID(80002),
		NativeSymbol:     "POL",
		Decimals:         18,
		BlockExplorerURL: "https://amoy.polygonscan.com",
	}
)

// builtinDefinitions returns fresh copies keyed by name.
func builtinDefinitions() map[string]configloader.NetworkNodeConfig {
	return map[string]configloader.NetworkNodeConfig{
		Hardhat.Name: Hardhat,
		Sepolia.Name: Sepolia,
		Amoy.Name:    Amoy,
	}
}

// NetworkRegistry is the immutable name -> profile mapping. It is never
// written after construction, so concurrent reads need no locking.
type NetworkRegistry struct {
	profiles map[string]entity.NetworkProfile
}

var _ port.NetworkRegistry = (*NetworkRegistry)(nil)

// NewNetworkRegistry builds the registry from the built-in definitions overlaid
// with nodes. Secrets referenced by env var name are read through lookupEnv
// (os.LookupEnv when nil).
func NewNetworkRegistry(log port.Logger, nodes []configloader.NetworkNodeConfig, lookupEnv func(string) (string, bool)) (*NetworkRegistry, error) {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}

	defs := builtinDefinitions()
	seen := make(map[string]struct{}, len(nodes))
	for i, node := range nodes {
		name := strings.TrimSpace(node.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: network #%d has no name", entity.ErrConfiguration, i)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: network %q is configured twice", entity.ErrConfiguration, name)
		}
		seen[name] = struct{}{}
		node.Name = name

		if base, ok := defs[name]; ok {
			defs[name] = overlay(base, node)
			log.Debug("Configured network overrides built-in definition", "network", name)
			continue
		}
		defs[name] = node
	}

	r := &NetworkRegistry{profiles: make(map[string]entity.NetworkProfile, len(defs))}
	for name, def := range defs {
		profile, err := toProfile(def, lookupEnv)
		if err != nil {
			return nil, err
		}
		if !profile.HasRPCEndpoint() {
			log.Warn("Network has no RPC endpoint; deployments to it will fail when connecting", "network", name, "env", def.RPCURLEnv)
		}
		if !profile.HasCredentials() {
			log.Debug("Network has no credentials and is read-only", "network", name, "env", def.PrivateKeyEnv)
		}
		r.profiles[name] = profile
	}

	log.Info(fmt.Sprintf("NetworkRegistry initialized with %d networks", len(r.profiles)), "networks", r.Names())
	return r, nil
}

// overlay copies every non-zero field of over onto base.
func overlay(base, over configloader.NetworkNodeConfig) configloader.NetworkNodeConfig {
	if over.DisplayName != "" {
		base.DisplayName = over.DisplayName
	}
	if over.Backend != "" {
		base.Backend = over.Backend
	}
	if over.RPCURL != "" || over.RPCURLEnv != "" {
		base.RPCURL = over.RPCURL
		base.RPCURLEnv = over.RPCURLEnv
	}
	if over.PrivateKey != "" || over.PrivateKeyEnv != "" {
		base.PrivateKey = over.PrivateKey
		base.PrivateKeyEnv = over.PrivateKeyEnv
	}
	if over.ChainID != nil {
		base.ChainID = over.ChainID
	}
	if over.NativeSymbol != "" {
		base.NativeSymbol = over.NativeSymbol
	}
	if over.Decimals != 0 {
		base.Decimals = over.Decimals
	}
	if over.BlockExplorerURL != "" {
		base.BlockExplorerURL = over.BlockExplorerURL
	}
	return base
}

func toProfile(def configloader.NetworkNodeConfig, lookupEnv func(string) (string, bool)) (entity.NetworkProfile, error) {
	backend := entity.Backend(strings.ToLower(strings.TrimSpace(def.Backend)))
	switch backend {
	case "":
		backend = entity.BackendRPC
	case entity.BackendRPC, entity.BackendSimulated:
	default:
		return entity.NetworkProfile{}, fmt.Errorf("%w: network %q has unknown backend %q", entity.ErrConfiguration, def.Name, def.Backend)
	}

	profile := entity.NetworkProfile{
		Name:             def.Name,
		DisplayName:      def.DisplayName,
		Backend:          backend,
		RPCURL:           valueOrEnv(def.RPCURL, def.RPCURLEnv, lookupEnv),
		Credential:       valueOrEnv(def.PrivateKey, def.PrivateKeyEnv, lookupEnv),
		NativeSymbol:     def.NativeSymbol,
		Decimals:         def.Decimals,
		BlockExplorerURL: def.BlockExplorerURL,
	}
	if def.ChainID != nil {
		id := *def.ChainID
		profile.ChainID = &id
	}
	if profile.NativeSymbol == "" {
		profile.NativeSymbol = "ETH"
	}
	if profile.Decimals == 0 {
		profile.Decimals = 18
	}
	return profile, nil
}

func valueOrEnv(value, envName string, lookupEnv func(string) (string, bool)) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	if envName == "" {
		return ""
	}
	v, _ := lookupEnv(envName)
	return strings.TrimSpace(v)
}

// Resolve returns the profile registered under name.
func (r *NetworkRegistry) Resolve(name string) (entity.NetworkProfile, error) {
	if r == nil {
		return entity.NetworkProfile{}, fmt.Errorf("%w: %q", entity.ErrUnknownNetwork, name)
	}
	profile, ok := r.profiles[name]
	if !ok {
		return entity.NetworkProfile{}, fmt.Errorf("%w: %q (known: %s)", entity.ErrUnknownNetwork, name, strings.Join(r.Names(), ", "))
	}
	return profile, nil
}

// Profiles returns every profile sorted by name.
func (r *NetworkRegistry) Profiles() []entity.NetworkProfile {
	if r == nil {
		return []entity.NetworkProfile{}
	}
	out := make([]entity.NetworkProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the sorted network names.
func (r *NetworkRegistry) Names() []string {
	if r == nil {
		return []string{}
	}
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
