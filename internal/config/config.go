package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

const (
	defaultNetwork   = "etherlink-testnet"
	defaultAlgorithm = "fastest"

	configFile      = "config.json"
	walletsFile     = "wallets.json"
	deploymentsFile = "deployments.json"
)

// Load reads config from dir (or creates defaults). dir defaults to ~/.w3nft.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".w3nft")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	if cfg.IPFSGateway == "" {
		cfg.IPFSGateway = DefaultIPFSGateway
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	return saveJSON(filepath.Join(c.configDir, configFile), c)
}

// AddRPC adds a custom RPC URL for a network.
func (c *Config) AddRPC(network, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[network], url) {
		return fmt.Errorf("RPC %s already exists for network %s", url, network)
	}
	c.CustomRPCs[network] = append(c.CustomRPCs[network], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a network.
func (c *Config) RemoveRPC(network, url string) error {
	rpcs := c.CustomRPCs[network]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for network %s", url, network)
	}
	c.CustomRPCs[network] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// GetRPCs returns custom RPCs for a network.
func (c *Config) GetRPCs(network string) []string {
	return c.CustomRPCs[network]
}

// RememberWalletNetwork records that the local wallet knows network.
// Reports whether the list changed.
func (c *Config) RememberWalletNetwork(network string) bool {
	if slices.Contains(c.WalletNetworks, network) {
		return false
	}
	c.WalletNetworks = append(c.WalletNetworks, network)
	return true
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is the location of wallets.json.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// LoadDeployments reads deployments.json.
func (c *Config) LoadDeployments() (*DeploymentsFile, error) {
	return loadJSON[DeploymentsFile](filepath.Join(c.configDir, deploymentsFile))
}

// RecordDeployment appends rec to deployments.json, stamping the time if unset.
func (c *Config) RecordDeployment(rec DeploymentRecord) error {
	df, err := c.LoadDeployments()
	if err != nil {
		return err
	}
	if rec.DeployedAt == "" {
		rec.DeployedAt = time.Now().UTC().Format(time.RFC3339)
	}
	df.Deployments = append(df.Deployments, rec)
	return saveJSON(filepath.Join(c.configDir, deploymentsFile), df)
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		DefaultNetwork: defaultNetwork,
		RPCAlgorithm:   defaultAlgorithm,
		IPFSGateway:    DefaultIPFSGateway,
		CustomRPCs:     make(map[string][]string),
		configDir:      dir,
	}
}

func loadJSON[T any](path string) (*T, error) {
	var zero T
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &zero, nil
	}
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
