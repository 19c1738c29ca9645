package config

// Protocol tunable defaults, applied when the [challenge] INI section omits
// a value.
const (
	DefaultChallengeTimeoutBlocks  = 1000
	DefaultEarliestSettlementBlock = 0
	DefaultUnchallengeStakeAmount  = 1000
	DefaultStoreType               = "leveldb"
	DefaultStoreDirectory          = "./data/driipnet"
	DefaultRPCListenAddr           = ":8547"
	DefaultMonitoringListenAddr    = ":9100"
)
