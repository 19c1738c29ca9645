package config

// StoreConfig selects and locates the database backend.
type StoreConfig struct {
	Type      string `yaml:"type"`
	Directory string `yaml:"directory"`
}

// RPCConfig configures the JSON-RPC listener.
type RPCConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// MonitoringConfig configures the prometheus metrics listener.
type MonitoringConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// KeysConfig carries the well-known public keys the validator checks seals
// against and the operator identity allowed on proxy paths.
type KeysConfig struct {
	ExchangePubkey string `yaml:"exchange_pubkey"`
	Operator       string `yaml:"operator"`
}

// NodeConfig is the top-level YAML node configuration.
type NodeConfig struct {
	Store      StoreConfig      `yaml:"store"`
	RPC        RPCConfig        `yaml:"rpc"`
	Keys       KeysConfig       `yaml:"keys"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// ConfigFile wraps NodeConfig under its document key.
type ConfigFile struct {
	Config NodeConfig `yaml:"config"`
}
