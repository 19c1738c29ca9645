package config

import (
	"fmt"
	"os"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// LoadNodeConfig reads and parses the node YAML configuration file.
func LoadNodeConfig(path string) (*NodeConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfgFile ConfigFile
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfgFile); err != nil {
		return nil, fmt.Errorf("failed to decode YAML config: %w", err)
	}

	cfg := cfgFile.Config
	if cfg.Store.Type == "" {
		cfg.Store.Type = DefaultStoreType
	}
	if cfg.Store.Directory == "" {
		cfg.Store.Directory = DefaultStoreDirectory
	}
	if cfg.RPC.ListenAddr == "" {
		cfg.RPC.ListenAddr = DefaultRPCListenAddr
	}
	if cfg.Monitoring.ListenAddr == "" {
		cfg.Monitoring.ListenAddr = DefaultMonitoringListenAddr
	}
	return &cfg, nil
}

// ChallengeConfig holds the protocol tunables read from the [challenge]
// INI section.
type ChallengeConfig struct {
	TimeoutBlocks           uint64 `ini:"timeout_blocks"`
	EarliestSettlementBlock uint64 `ini:"earliest_settlement_block"`
	UnchallengeStakeAmount  int64  `ini:"unchallenge_stake_amount"`
}

// LoadChallengeConfig reads challenge tunables from an .ini file.
func LoadChallengeConfig(path string) (*ChallengeConfig, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	challengeCfg := &ChallengeConfig{
		TimeoutBlocks:          DefaultChallengeTimeoutBlocks,
		UnchallengeStakeAmount: DefaultUnchallengeStakeAmount,
	}
	if err := cfg.Section("challenge").MapTo(challengeCfg); err != nil {
		return nil, err
	}
	return challengeCfg, nil
}
