package cmd

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"driipnet/cancelorders"
	"driipnet/challenge"
	"driipnet/config"
	"driipnet/db"
	"driipnet/events"
	"driipnet/exception"
	"driipnet/jsonrpc"
	"driipnet/ledgerclock"
	"driipnet/logx"
	"driipnet/monitoring"
	"driipnet/securitybond"
	"driipnet/store"
	"driipnet/validator"
	"driipnet/walletlock"
)

const blockInterval = time.Second

var (
	configPath   string
	protocolPath string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the settlement challenge node",
	Run: func(cmd *cobra.Command, args []string) {
		runNode(configPath, protocolPath)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&configPath, "config", "c", "config/config.yml", "Path to the node YAML config")
	runCmd.Flags().StringVarP(&protocolPath, "protocol", "p", "", "Path to the protocol tunables INI (defaults used when empty)")
}

func runNode(configPath, protocolPath string) {
	cfg, err := config.LoadNodeConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	challengeCfg := &config.ChallengeConfig{
		TimeoutBlocks:           config.DefaultChallengeTimeoutBlocks,
		EarliestSettlementBlock: config.DefaultEarliestSettlementBlock,
		UnchallengeStakeAmount:  config.DefaultUnchallengeStakeAmount,
	}
	if protocolPath != "" {
		challengeCfg, err = config.LoadChallengeConfig(protocolPath)
		if err != nil {
			log.Fatalf("Failed to load protocol tunables: %v", err)
		}
	}

	monitoring.InitMetrics()

	provider, err := openProvider(&cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	engine, nullEngine, clock, err := buildEngines(cfg, challengeCfg, provider)
	if err != nil {
		log.Fatalf("Failed to initialize engines: %v", err)
	}
	clock.Start()
	defer clock.Stop()

	rpcServer := jsonrpc.NewServer(cfg.RPC.ListenAddr, engine, nullEngine)
	if corsCfg, ok := jsonrpc.CORSFromEnv(); ok {
		rpcServer.SetCORSConfig(corsCfg)
	}
	rpcServer.Start()
	logx.Info("NODE", "JSON-RPC listening on", cfg.RPC.ListenAddr)

	metricsMux := http.NewServeMux()
	monitoring.RegisterMetrics(metricsMux)
	exception.SafeGo("metrics server", func() {
		if err := http.ListenAndServe(cfg.Monitoring.ListenAddr, metricsMux); err != nil {
			logx.Error("NODE", "metrics server stopped:", err)
		}
	})
	logx.Info("NODE", "metrics listening on", cfg.Monitoring.ListenAddr)

	// Block forever
	select {}
}

func openProvider(cfg *config.StoreConfig) (db.DatabaseProvider, error) {
	switch cfg.Type {
	case "leveldb":
		if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		return db.NewLevelDBProvider(cfg.Directory)
	case "bolt":
		if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		return db.NewBoltProvider(filepath.Join(cfg.Directory, "driipnet.db"))
	case "memory":
		return db.NewMemoryProvider(), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}

func buildEngines(cfg *config.NodeConfig, challengeCfg *config.ChallengeConfig, provider db.DatabaseProvider) (*challenge.Engine, *challenge.NullEngine, *ledgerclock.TickingClock, error) {
	txManager := db.NewDBTxManager(provider)

	challengeStore, err := store.NewChallengeStore(provider)
	if err != nil {
		return nil, nil, nil, err
	}
	candidateStore, err := store.NewCandidateStore(provider)
	if err != nil {
		return nil, nil, nil, err
	}
	proposalStore, err := store.NewProposalStore(provider)
	if err != nil {
		return nil, nil, nil, err
	}
	balanceStore, err := store.NewBalanceStore(provider)
	if err != nil {
		return nil, nil, nil, err
	}
	settlementStore, err := store.NewSettlementStateStore(provider)
	if err != nil {
		return nil, nil, nil, err
	}

	cancels, err := cancelorders.NewRegistry(provider)
	if err != nil {
		return nil, nil, nil, err
	}
	locker, err := walletlock.NewLocker(provider)
	if err != nil {
		return nil, nil, nil, err
	}
	bond, err := securitybond.NewBond(provider)
	if err != nil {
		return nil, nil, nil, err
	}

	sealValidator, err := validator.NewSealValidator(cfg.Keys.ExchangePubkey)
	if err != nil {
		return nil, nil, nil, err
	}

	clock, err := ledgerclock.NewTickingClock(provider, blockInterval)
	if err != nil {
		return nil, nil, nil, err
	}

	params := config.NewProtocolParams(challengeCfg)
	recorder := events.NewRecorder(events.NewEventLog(), events.NewEventBus())

	engine := challenge.NewEngine(challenge.EngineDeps{
		Operator:       cfg.Keys.Operator,
		ChallengeStore: challengeStore,
		CandidateStore: candidateStore,
		TxManager:      txManager,
		Validator:      sealValidator,
		CancelOrders:   cancels,
		WalletLocker:   locker,
		SecurityBond:   bond,
		Config:         params,
		Clock:          clock,
		Recorder:       recorder,
	})
	nullEngine := challenge.NewNullEngine(challenge.NullEngineDeps{
		Operator:        cfg.Keys.Operator,
		ProposalStore:   proposalStore,
		TxManager:       txManager,
		Validator:       sealValidator,
		WalletLocker:    locker,
		SecurityBond:    bond,
		BalanceTracker:  balanceStore,
		SettlementState: settlementStore,
		Config:          params,
		Clock:           clock,
		Recorder:        recorder,
	})
	return engine, nullEngine, clock, nil
}
