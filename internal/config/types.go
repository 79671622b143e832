package config

// Config holds all w3nft configuration.
type Config struct {
	DefaultNetwork  string              `json:"default_network"`
	DefaultWallet   string              `json:"default_wallet"`
	ContractAddress string              `json:"contract_address"` // deployed ERC-721 collection
	RPCAlgorithm    string              `json:"rpc_algorithm"`    // "fastest" | "failover"
	IPFSGateway     string              `json:"ipfs_gateway"`
	CustomRPCs      map[string][]string `json:"custom_rpcs"`

	// WalletNetworks are chain slugs the local wallet has been told about via
	// an add-network request. The default network is always known.
	WalletNetworks []string `json:"wallet_networks,omitempty"`

	// Session is the last authorized account, cleared on disconnect.
	Session *Session `json:"session,omitempty"`

	// internal: config dir path used for Save()
	configDir string
}

// Session records the authorized account and the chain the wallet sits on.
type Session struct {
	Account string `json:"account"`
	ChainID int64  `json:"chain_id"`
}

// DeploymentRecord is one entry in deployments.json.
type DeploymentRecord struct {
	Network    string `json:"network"`
	Address    string `json:"address"`
	TxHash     string `json:"tx_hash"`
	Deployer   string `json:"deployer"`
	Artifact   string `json:"artifact"`
	DeployedAt string `json:"deployed_at"`
}

// DeploymentsFile is the structure of deployments.json.
type DeploymentsFile struct {
	Deployments []DeploymentRecord `json:"deployments"`
}
