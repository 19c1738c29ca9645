package challenge

import (
	"fmt"

	"driipnet/db"
	"driipnet/errors"
	"driipnet/events"
	"driipnet/logx"
	"driipnet/types"
)

// UnchallengeOrderCandidateByTrade reverses an order-candidate
// disqualification by proving the order was genuinely filled by trade. On
// success the record requalifies and the configured stake is staged to the
// caller through the security bond.
func (e *Engine) UnchallengeOrderCandidateByTrade(order *types.Order, trade *types.Trade, caller string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if order == nil || trade == nil {
		return errors.NewError(errors.ErrCodeReferenceMismatch, errors.ErrMsgDriipMissing)
	}
	// The wallet and exchange seals must be two independent signatures;
	// reusing one signature for both is a forgery attempt even when each
	// check would pass in isolation.
	if order.Seals.Wallet.Signature == order.Seals.Exchange.Signature {
		return errors.NewError(errors.ErrCodeInvalidSeal, errors.ErrMsgInvalidSeal)
	}
	if !e.validator.IsGenuineOrderWalletSeal(order) {
		return errors.NewError(errors.ErrCodeInvalidSeal, errors.ErrMsgInvalidSeal)
	}
	if !e.validator.IsGenuineOrderExchangeSeal(order) {
		return errors.NewError(errors.ErrCodeInvalidSeal, errors.ErrMsgInvalidSeal)
	}
	if !e.validator.IsGenuineTradeSeal(trade) {
		return errors.NewError(errors.ErrCodeInvalidSeal, errors.ErrMsgInvalidSeal)
	}

	wallet := order.Wallet
	filledHash, ok := trade.PartyOrderHash(wallet)
	if !ok {
		return errors.NewError(errors.ErrCodeReferenceMismatch, errors.ErrMsgReferenceMismatch)
	}
	if filledHash != order.Seals.Exchange.Hash {
		return errors.NewError(errors.ErrCodeReferenceMismatch, errors.ErrMsgReferenceMismatch)
	}

	record, err := e.activeRecord(wallet)
	if err != nil {
		return err
	}
	if record.CandidateType != types.CandidateOrder {
		return errors.NewError(errors.ErrCodeReferenceMismatch,
			"Active challenge was not disqualified by an order candidate")
	}

	// The submitted order must be the stored disqualifying candidate, not
	// merely some order of the same wallet.
	candidate, err := e.candidateStore.Order(record.CandidateIndex)
	if err != nil {
		return err
	}
	if candidate.Seals.Exchange.Hash != order.Seals.Exchange.Hash {
		return errors.NewError(errors.ErrCodeReferenceMismatch, errors.ErrMsgReferenceMismatch)
	}

	// The requalification and the caller's stake commit in one batch, so a
	// reward failure leaves the disqualification standing untouched.
	stake := e.config.UnchallengeOrderCandidateByTradeStake()
	err = e.txManager.WithBatch(func(batch db.DatabaseBatch) error {
		record.Result = types.ResultQualified
		record.CandidateType = types.CandidateNone
		record.CandidateIndex = 0
		record.Challenger = types.ZeroAddress
		if err := e.challengeStore.PutRecordInBatch(batch, record); err != nil {
			return err
		}
		return e.securityBond.StageInBatch(batch, caller, stake)
	})
	if err != nil {
		return fmt.Errorf("failed to unchallenge order candidate: %w", err)
	}

	logx.Info("CHALLENGE", fmt.Sprintf("Challenge requalified | wallet=%s | unchallenger=%s", wallet, caller))
	e.recorder.Emit(events.NewUnchallengeOrderCandidateByTrade(wallet, caller))
	return nil
}
