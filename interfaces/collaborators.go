package interfaces

import (
	"math/big"

	"driipnet/db"
	"driipnet/types"
)

// CancelOrdersChallenge exposes the cancelled-order bookkeeping mutated by
// wallet-initiated cancellation; read-only from the dispute engine's side.
type CancelOrdersChallenge interface {
	IsOrderCancelled(wallet string, orderHash string) bool
}

// WalletLocker reports and applies wallet suspension. LockInBatch stages a
// claim into the caller's batch so the lock lands in the same commit as the
// disqualification that grants it.
type WalletLocker interface {
	IsLocked(wallet string) bool
	LockInBatch(batch db.DatabaseBatch, wallet string, beneficiary string, figure types.MonetaryFigure) error
}

// SecurityBond is the reward custody collaborator. StageInBatch credits a
// reward figure to a wallet through the caller's batch; the reward and the
// state transition it pays for commit together or not at all.
type SecurityBond interface {
	StageInBatch(batch db.DatabaseBatch, wallet string, figure types.MonetaryFigure) error
}

// BalanceLog is one time-indexed balance observation.
type BalanceLog struct {
	Amount      *big.Int `json:"amount"`
	BlockNumber uint64   `json:"block_number"`
}

// BalanceTracker is the historical balance log per wallet and currency.
type BalanceTracker interface {
	HasDepositLog(wallet string, currency types.Currency) bool
	LastDepositLog(wallet string, currency types.Currency) (BalanceLog, error)
}

// Configuration supplies the protocol's tunable parameters.
type Configuration interface {
	ChallengeTimeout(currency types.Currency) uint64
	EarliestSettlementBlockNumber() uint64
	UnchallengeOrderCandidateByTradeStake() types.MonetaryFigure
}

// BlockClock reports the current block height of the shared ledger.
// Challenge expiry is a pure function of this value.
type BlockClock interface {
	CurrentBlockNumber() uint64
}

// SettlementState tracks the highest settled nonce per wallet and currency;
// null settlement proposals inherit it.
type SettlementState interface {
	MaxNonce(wallet string, currency types.Currency) uint64
}
