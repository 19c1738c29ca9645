// Package challenge implements the driip settlement challenge state machine:
// per-wallet challenge lifecycle, candidate admission, disqualification and
// requalification, plus the per-(wallet, currency) null settlement variant.
package challenge

import (
	"fmt"
	"sync"

	"driipnet/db"
	"driipnet/errors"
	"driipnet/events"
	"driipnet/interfaces"
	"driipnet/logx"
	"driipnet/store"
	"driipnet/types"
)

// Engine is the driip settlement challenge engine. All state-changing
// operations serialize behind one mutex and commit through one batch, so a
// call either fully applies or leaves no trace.
type Engine struct {
	mu sync.Mutex

	operator string

	challengeStore *store.ChallengeStore
	candidateStore *store.CandidateStore
	txManager      *db.DBTxManager

	validator    interfaces.Validator
	cancelOrders interfaces.CancelOrdersChallenge
	walletLocker interfaces.WalletLocker
	securityBond interfaces.SecurityBond
	config       interfaces.Configuration
	clock        interfaces.BlockClock

	recorder *events.Recorder
}

// EngineDeps bundles the engine's collaborators.
type EngineDeps struct {
	Operator       string
	ChallengeStore *store.ChallengeStore
	CandidateStore *store.CandidateStore
	TxManager      *db.DBTxManager
	Validator      interfaces.Validator
	CancelOrders   interfaces.CancelOrdersChallenge
	WalletLocker   interfaces.WalletLocker
	SecurityBond   interfaces.SecurityBond
	Config         interfaces.Configuration
	Clock          interfaces.BlockClock
	Recorder       *events.Recorder
}

func NewEngine(deps EngineDeps) *Engine {
	return &Engine{
		operator:       deps.Operator,
		challengeStore: deps.ChallengeStore,
		candidateStore: deps.CandidateStore,
		txManager:      deps.TxManager,
		validator:      deps.Validator,
		cancelOrders:   deps.CancelOrders,
		walletLocker:   deps.WalletLocker,
		securityBond:   deps.SecurityBond,
		config:         deps.Config,
		clock:          deps.Clock,
		recorder:       deps.Recorder,
	}
}

// StartChallengeFromTrade opens a settlement challenge for wallet against
// trade. The caller must be the operator or the challenged wallet itself,
// and the wallet must be a genuine party to the trade.
func (e *Engine) StartChallengeFromTrade(trade *types.Trade, wallet, caller string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if trade == nil {
		return errors.NewError(errors.ErrCodeReferenceMismatch, errors.ErrMsgDriipMissing)
	}
	if err := e.checkStartGates(wallet, caller); err != nil {
		return err
	}
	if !e.validator.IsGenuineTradeSeal(trade) {
		return errors.NewError(errors.ErrCodeInvalidSeal, errors.ErrMsgInvalidSeal)
	}
	if !trade.IsParty(wallet) {
		return errors.NewError(errors.ErrCodeUnauthorized, errors.ErrMsgUnauthorized)
	}
	if err := e.checkNoActiveRecord(wallet); err != nil {
		return err
	}

	currentBlock := e.clock.CurrentBlockNumber()
	err := e.txManager.WithBatch(func(batch db.DatabaseBatch) error {
		index, err := e.challengeStore.AppendChallengedTradeInBatch(batch, wallet, trade)
		if err != nil {
			return err
		}
		return e.challengeStore.PutRecordInBatch(batch, &types.ChallengeRecord{
			Wallet:         wallet,
			Nonce:          trade.Nonce,
			ChallengeStart: currentBlock,
			Timeout:        e.config.ChallengeTimeout(trade.Currencies.Intended),
			Result:         types.ResultQualified,
			DriipType:      types.DriipTypeTrade,
			DriipIndex:     index,
			CandidateType:  types.CandidateNone,
			Challenger:     types.ZeroAddress,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to start challenge from trade: %w", err)
	}

	logx.Info("CHALLENGE", fmt.Sprintf("Challenge started from trade | wallet=%s | nonce=%d | block=%d",
		wallet, trade.Nonce, currentBlock))
	e.recorder.Emit(events.NewStartChallengeFromTrade(wallet, trade.Nonce))
	return nil
}

// StartChallengeFromPayment opens a settlement challenge for wallet against
// payment. The wallet must be the payment's sender.
func (e *Engine) StartChallengeFromPayment(payment *types.Payment, wallet, caller string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if payment == nil {
		return errors.NewError(errors.ErrCodeReferenceMismatch, errors.ErrMsgDriipMissing)
	}
	if err := e.checkStartGates(wallet, caller); err != nil {
		return err
	}
	if !e.validator.IsGenuinePaymentSeals(payment) {
		return errors.NewError(errors.ErrCodeInvalidSeal, errors.ErrMsgInvalidSeal)
	}
	if !payment.IsSender(wallet) {
		return errors.NewError(errors.ErrCodeUnauthorized, errors.ErrMsgUnauthorized)
	}
	if err := e.checkNoActiveRecord(wallet); err != nil {
		return err
	}

	currentBlock := e.clock.CurrentBlockNumber()
	err := e.txManager.WithBatch(func(batch db.DatabaseBatch) error {
		index, err := e.challengeStore.AppendChallengedPaymentInBatch(batch, wallet, payment)
		if err != nil {
			return err
		}
		return e.challengeStore.PutRecordInBatch(batch, &types.ChallengeRecord{
			Wallet:         wallet,
			Nonce:          payment.Nonce,
			ChallengeStart: currentBlock,
			Timeout:        e.config.ChallengeTimeout(payment.Currency),
			Result:         types.ResultQualified,
			DriipType:      types.DriipTypePayment,
			DriipIndex:     index,
			CandidateType:  types.CandidateNone,
			Challenger:     types.ZeroAddress,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to start challenge from payment: %w", err)
	}

	logx.Info("CHALLENGE", fmt.Sprintf("Challenge started from payment | wallet=%s | nonce=%d | block=%d",
		wallet, payment.Nonce, currentBlock))
	e.recorder.Emit(events.NewStartChallengeFromPayment(wallet, payment.Nonce))
	return nil
}

// checkStartGates evaluates the wallet-lock, settlement-open and caller
// authorization gates shared by both start paths.
func (e *Engine) checkStartGates(wallet, caller string) error {
	if e.walletLocker.IsLocked(wallet) {
		return errors.NewError(errors.ErrCodeWalletLocked, errors.ErrMsgWalletLocked)
	}
	if e.clock.CurrentBlockNumber() < e.config.EarliestSettlementBlockNumber() {
		return errors.NewError(errors.ErrCodeSettlementNotOpen, errors.ErrMsgSettlementNotOpen)
	}
	if caller != e.operator && caller != wallet {
		return errors.NewError(errors.ErrCodeUnauthorized, errors.ErrMsgUnauthorized)
	}
	return nil
}

// checkNoActiveRecord rejects while an unexpired challenge record exists.
func (e *Engine) checkNoActiveRecord(wallet string) error {
	record, err := e.challengeStore.Record(wallet)
	if err != nil {
		return err
	}
	if record != nil && !record.Expired(e.clock.CurrentBlockNumber()) {
		return errors.NewError(errors.ErrCodeChallengeActive, errors.ErrMsgChallengeActive)
	}
	return nil
}

// Phase returns the wallet's challenged nonce and observational phase at the
// current block. No record reports (0, Closed).
func (e *Engine) Phase(wallet string) (uint64, types.ChallengePhase, error) {
	record, err := e.challengeStore.Record(wallet)
	if err != nil {
		return 0, types.PhaseClosed, err
	}
	if record == nil {
		return 0, types.PhaseClosed, nil
	}
	return record.Nonce, record.Phase(e.clock.CurrentBlockNumber()), nil
}

// Status returns the stored result and challenger for the wallet's challenge
// of the given nonce. A missing record or nonce mismatch reports
// (Unknown, zero address).
func (e *Engine) Status(wallet string, nonce uint64) (types.ChallengeResult, string, error) {
	record, err := e.challengeStore.Record(wallet)
	if err != nil {
		return types.ResultUnknown, types.ZeroAddress, err
	}
	if record == nil || record.Nonce != nonce {
		return types.ResultUnknown, types.ZeroAddress, nil
	}
	return record.Result, record.Challenger, nil
}

// ChallengedTradesCount returns how many trades the wallet has challenged.
func (e *Engine) ChallengedTradesCount(wallet string) (uint64, error) {
	return e.challengeStore.ChallengedTradesCount(wallet)
}

// ChallengedPaymentsCount returns how many payments the wallet has
// challenged.
func (e *Engine) ChallengedPaymentsCount(wallet string) (uint64, error) {
	return e.challengeStore.ChallengedPaymentsCount(wallet)
}

// CandidateOrdersCount returns the size of the order-candidate registry.
func (e *Engine) CandidateOrdersCount() (uint64, error) {
	return e.candidateStore.OrdersCount()
}

// CandidateTradesCount returns the size of the trade-candidate registry.
func (e *Engine) CandidateTradesCount() (uint64, error) {
	return e.candidateStore.TradesCount()
}

// CandidatePaymentsCount returns the size of the payment-candidate registry.
func (e *Engine) CandidatePaymentsCount() (uint64, error) {
	return e.candidateStore.PaymentsCount()
}

// activeRecord returns the wallet's challenge record for a dispute-path
// mutation, rejecting when none exists or the window has closed.
func (e *Engine) activeRecord(wallet string) (*types.ChallengeRecord, error) {
	record, err := e.challengeStore.Record(wallet)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errors.NewError(errors.ErrCodeChallengeNotFound, errors.ErrMsgChallengeNotFound)
	}
	if record.Expired(e.clock.CurrentBlockNumber()) {
		return nil, errors.NewError(errors.ErrCodeChallengeExpired, errors.ErrMsgChallengeExpired)
	}
	return record, nil
}

// challengedBalance resolves the balance the challenged driip recorded for
// the wallet in the given currency. A currency matching neither of the
// driip's legs, or a wallet the driip does not bind, is a reference
// mismatch.
func (e *Engine) challengedBalance(record *types.ChallengeRecord, currency types.Currency) (*types.MonetaryFigure, error) {
	switch record.DriipType {
	case types.DriipTypeTrade:
		trade, err := e.challengeStore.ChallengedTrade(record.Wallet, record.DriipIndex)
		if err != nil {
			return nil, err
		}
		balance, ok := trade.CurrentBalance(record.Wallet, currency)
		if !ok {
			return nil, errors.NewError(errors.ErrCodeReferenceMismatch, errors.ErrMsgReferenceMismatch)
		}
		return &types.MonetaryFigure{Amount: balance, Currency: currency}, nil

	case types.DriipTypePayment:
		payment, err := e.challengeStore.ChallengedPayment(record.Wallet, record.DriipIndex)
		if err != nil {
			return nil, err
		}
		balance, ok := payment.CurrentBalance(record.Wallet, currency)
		if !ok {
			return nil, errors.NewError(errors.ErrCodeReferenceMismatch, errors.ErrMsgReferenceMismatch)
		}
		return &types.MonetaryFigure{Amount: balance, Currency: currency}, nil

	default:
		return nil, errors.NewError(errors.ErrCodeChallengeNotFound, errors.ErrMsgChallengeNotFound)
	}
}
