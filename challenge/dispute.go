package challenge

import (
	"fmt"
	"math/big"

	"driipnet/db"
	"driipnet/errors"
	"driipnet/events"
	"driipnet/logx"
	"driipnet/stringutil"
	"driipnet/types"
)

// ChallengeByOrder submits order as evidence against the active challenge of
// the order's wallet. Admission is strict: evidence that does not prove
// balance insufficiency rejects the whole call.
func (e *Engine) ChallengeByOrder(order *types.Order, caller string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if order == nil {
		return errors.NewError(errors.ErrCodeReferenceMismatch, errors.ErrMsgDriipMissing)
	}
	if !e.validator.IsGenuineOrderSeals(order) {
		return errors.NewError(errors.ErrCodeInvalidSeal, errors.ErrMsgInvalidSeal)
	}
	if e.cancelOrders.IsOrderCancelled(order.Wallet, order.Seals.Exchange.Hash) {
		return errors.NewError(errors.ErrCodeCandidateCancelled, errors.ErrMsgCandidateCancelled)
	}

	wallet := order.Wallet
	record, err := e.activeRecord(wallet)
	if err != nil {
		return err
	}
	if err := e.admit(record, order.ConsideredCurrency(), order.TransferAmount()); err != nil {
		return err
	}

	index, err := e.disqualify(record, caller, types.CandidateOrder, func(batch db.DatabaseBatch) (uint64, error) {
		return e.candidateStore.AppendOrderInBatch(batch, order)
	})
	if err != nil {
		return fmt.Errorf("failed to challenge by order: %w", err)
	}

	logx.Info("CHALLENGE", fmt.Sprintf("Challenge disqualified by order | wallet=%s | candidate=%d | hash=%s | challenger=%s",
		wallet, index, stringutil.ShortenLog(order.Seals.Exchange.Hash), caller))
	e.recorder.Emit(events.NewChallengeByOrder(wallet, index, caller))
	return nil
}

// ChallengeByTrade submits trade as evidence against wallet's active
// challenge. The wallet must be a genuine party to the candidate trade; its
// spent-leg single transfer is the implied amount.
func (e *Engine) ChallengeByTrade(trade *types.Trade, wallet, caller string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if trade == nil {
		return errors.NewError(errors.ErrCodeReferenceMismatch, errors.ErrMsgDriipMissing)
	}
	if !e.validator.IsGenuineTradeSeal(trade) {
		return errors.NewError(errors.ErrCodeInvalidSeal, errors.ErrMsgInvalidSeal)
	}
	currency, ok := trade.ConsideredCurrency(wallet)
	if !ok {
		return errors.NewError(errors.ErrCodeReferenceMismatch, errors.ErrMsgReferenceMismatch)
	}
	transfer, _ := trade.TransferAmount(wallet)

	record, err := e.activeRecord(wallet)
	if err != nil {
		return err
	}
	if err := e.admit(record, currency, transfer); err != nil {
		return err
	}

	index, err := e.disqualify(record, caller, types.CandidateTrade, func(batch db.DatabaseBatch) (uint64, error) {
		return e.candidateStore.AppendTradeInBatch(batch, trade)
	})
	if err != nil {
		return fmt.Errorf("failed to challenge by trade: %w", err)
	}

	logx.Info("CHALLENGE", fmt.Sprintf("Challenge disqualified by trade | wallet=%s | candidate=%d | hash=%s | challenger=%s",
		wallet, index, stringutil.ShortenLog(trade.Seal.Hash), caller))
	e.recorder.Emit(events.NewChallengeByTrade(wallet, index, caller))
	return nil
}

// ChallengeByPayment submits payment as evidence against wallet's active
// challenge. Only the payment's sender leg evidences an outflow, so a wallet
// appearing as recipient is rejected.
func (e *Engine) ChallengeByPayment(payment *types.Payment, wallet, caller string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if payment == nil {
		return errors.NewError(errors.ErrCodeReferenceMismatch, errors.ErrMsgDriipMissing)
	}
	if !e.validator.IsGenuinePaymentSeals(payment) {
		return errors.NewError(errors.ErrCodeInvalidSeal, errors.ErrMsgInvalidSeal)
	}
	if !payment.IsSender(wallet) {
		return errors.NewError(errors.ErrCodeReferenceMismatch, errors.ErrMsgReferenceMismatch)
	}

	record, err := e.activeRecord(wallet)
	if err != nil {
		return err
	}
	if err := e.admit(record, payment.Currency, payment.TransferAmount()); err != nil {
		return err
	}

	index, err := e.disqualify(record, caller, types.CandidatePayment, func(batch db.DatabaseBatch) (uint64, error) {
		return e.candidateStore.AppendPaymentInBatch(batch, payment)
	})
	if err != nil {
		return fmt.Errorf("failed to challenge by payment: %w", err)
	}

	logx.Info("CHALLENGE", fmt.Sprintf("Challenge disqualified by payment | wallet=%s | candidate=%d | hash=%s | challenger=%s",
		wallet, index, stringutil.ShortenLog(payment.Seals.Exchange.Hash), caller))
	e.recorder.Emit(events.NewChallengeByPayment(wallet, index, caller))
	return nil
}

// admit evaluates the admission rule: the candidate's implied single
// transfer in its considered currency must exceed the balance the challenged
// driip recorded for that currency. Anything else rejects.
func (e *Engine) admit(record *types.ChallengeRecord, currency types.Currency, transfer *big.Int) error {
	balance, err := e.challengedBalance(record, currency)
	if err != nil {
		return err
	}
	if transfer.Cmp(balance.Amount) <= 0 {
		return errors.NewError(errors.ErrCodeEvidenceInsufficient, errors.ErrMsgEvidenceInsufficient)
	}
	return nil
}

// disqualify appends the candidate through appendCandidate, then overwrites
// the record's dispute fields, all in one batch. A later valid candidate
// overwrites an earlier one.
func (e *Engine) disqualify(record *types.ChallengeRecord, challenger string, candidateType types.CandidateType,
	appendCandidate func(batch db.DatabaseBatch) (uint64, error)) (uint64, error) {

	var index uint64
	err := e.txManager.WithBatch(func(batch db.DatabaseBatch) error {
		var err error
		index, err = appendCandidate(batch)
		if err != nil {
			return err
		}

		record.Result = types.ResultDisqualified
		record.CandidateType = candidateType
		record.CandidateIndex = index
		record.Challenger = challenger
		return e.challengeStore.PutRecordInBatch(batch, record)
	})
	return index, err
}
