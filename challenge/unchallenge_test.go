package challenge

import (
	"fmt"
	"math/big"
	"testing"

	"driipnet/db"
	"driipnet/errors"
	"driipnet/events"
	"driipnet/types"
)

// disqualifyByOrder runs the Scenario-A preamble: a challenge on a trade
// with zero conjugate balance, disqualified by an order candidate.
func disqualifyByOrder(t *testing.T, rig *testRig) (buyer testKey, order *types.Order, challenger testKey) {
	t.Helper()
	buyer, _ = startTradeChallenge(t, rig)
	challenger = newTestKey(t)
	order = rig.orderFixture(buyer, 2, cur("gem"), 1)
	if err := rig.engine.ChallengeByOrder(order, challenger.addr); err != nil {
		t.Fatalf("challenge by order failed: %v", err)
	}
	return buyer, order, challenger
}

// fillingTrade builds a sealed trade in which wallet appears as buyer and
// whose buyer order reference carries the given exchange hash.
func (r *testRig) fillingTrade(wallet testKey, nonce uint64, orderHash string) *types.Trade {
	seller := types.TradeParty{
		Nonce:  nonce,
		Wallet: "",
		Balances: types.TradeBalances{
			Intended:  types.BalanceFigures{Current: big.NewInt(0), Previous: big.NewInt(100)},
			Conjugate: types.BalanceFigures{Current: big.NewInt(50), Previous: big.NewInt(0)},
		},
	}
	trade := &types.Trade{
		Nonce:      nonce,
		Amount:     big.NewInt(1),
		Currencies: types.CurrencyPair{Intended: cur("tok"), Conjugate: cur("gem")},
		Buyer: types.TradeParty{
			Nonce:  nonce,
			Wallet: wallet.addr,
			Order:  types.TradeOrder{Amount: big.NewInt(1), Hashes: types.OrderHashes{Exchange: orderHash}},
			Balances: types.TradeBalances{
				Intended:  types.BalanceFigures{Current: big.NewInt(1), Previous: big.NewInt(0)},
				Conjugate: types.BalanceFigures{Current: big.NewInt(0), Previous: big.NewInt(1)},
			},
		},
		Seller: seller,
		Transfers: types.TradeTransfers{
			Intended:  types.TransferFigures{Single: big.NewInt(1), Total: big.NewInt(1)},
			Conjugate: types.TransferFigures{Single: big.NewInt(1), Total: big.NewInt(1)},
		},
		BlockNumber: r.clock.block,
	}
	return r.sealTrade(trade)
}

func TestUnchallengeRequalifiesAndStagesReward(t *testing.T) {
	rig := newTestRig(t)
	buyer, order, _ := disqualifyByOrder(t, rig)
	unchallenger := newTestKey(t)

	filling := rig.fillingTrade(buyer, 3, order.Seals.Exchange.Hash)
	if err := rig.engine.UnchallengeOrderCandidateByTrade(order, filling, unchallenger.addr); err != nil {
		t.Fatalf("unchallenge failed: %v", err)
	}

	result, challenger, _ := rig.engine.Status(buyer.addr, 1)
	if result != types.ResultQualified {
		t.Errorf("expected qualified, got %s", result)
	}
	if challenger != types.ZeroAddress {
		t.Errorf("expected zero challenger, got %s", challenger)
	}

	if ev := rig.log.LastOfType(events.EventUnchallengeOrderCandidateByTrade); ev == nil || ev.Wallet() != buyer.addr {
		t.Error("expected a requalification event for the buyer")
	}

	// the configured stake lands with the unchallenger in the base currency
	count, err := rig.bond.StagesCount()
	if err != nil {
		t.Fatalf("stage count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 staged reward, got %d", count)
	}
	stage, err := rig.bond.StageAt(0)
	if err != nil {
		t.Fatalf("stage lookup failed: %v", err)
	}
	if stage.Wallet != unchallenger.addr {
		t.Errorf("expected reward for %s, got %s", unchallenger.addr, stage.Wallet)
	}
	if stage.Figure.Amount.Cmp(big.NewInt(1000)) != 0 || !stage.Figure.Currency.IsBase() {
		t.Errorf("expected 1000 base, got %s %s", stage.Figure.Amount, stage.Figure.Currency)
	}
}

func TestUnchallengeRejectsSharedSignature(t *testing.T) {
	rig := newTestRig(t)
	buyer, order, _ := disqualifyByOrder(t, rig)
	unchallenger := newTestKey(t)

	forged := *order
	forged.Seals.Exchange.Signature = forged.Seals.Wallet.Signature

	filling := rig.fillingTrade(buyer, 3, order.Seals.Exchange.Hash)
	err := rig.engine.UnchallengeOrderCandidateByTrade(&forged, filling, unchallenger.addr)
	if !errors.HasCode(err, errors.ErrCodeInvalidSeal) {
		t.Errorf("expected invalid seal, got %v", err)
	}
}

func TestUnchallengeRejectsNonPartyTrade(t *testing.T) {
	rig := newTestRig(t)
	_, order, _ := disqualifyByOrder(t, rig)
	unchallenger := newTestKey(t)

	// a trade that fills the order hash but for someone else entirely
	stranger := newTestKey(t)
	filling := rig.fillingTrade(stranger, 3, order.Seals.Exchange.Hash)
	err := rig.engine.UnchallengeOrderCandidateByTrade(order, filling, unchallenger.addr)
	if !errors.HasCode(err, errors.ErrCodeReferenceMismatch) {
		t.Errorf("expected reference mismatch, got %v", err)
	}
}

func TestUnchallengeRejectsUnfilledOrder(t *testing.T) {
	rig := newTestRig(t)
	buyer, order, _ := disqualifyByOrder(t, rig)
	unchallenger := newTestKey(t)

	// wallet matches but the trade filled a different order
	filling := rig.fillingTrade(buyer, 3, "some-other-hash")
	err := rig.engine.UnchallengeOrderCandidateByTrade(order, filling, unchallenger.addr)
	if !errors.HasCode(err, errors.ErrCodeReferenceMismatch) {
		t.Errorf("expected reference mismatch, got %v", err)
	}

	// the record stays disqualified
	result, _, _ := rig.engine.Status(buyer.addr, 1)
	if result != types.ResultDisqualified {
		t.Errorf("expected record untouched, got %s", result)
	}
}

func TestUnchallengeRequiresOrderCandidateType(t *testing.T) {
	rig := newTestRig(t)
	buyer, _ := startTradeChallenge(t, rig)
	challenger := newTestKey(t)
	unchallenger := newTestKey(t)

	// disqualify with a payment candidate instead of an order
	someRecipient := newTestKey(t)
	candidate := rig.paymentFixture(buyer, someRecipient, 2, cur("gem"), 0, 50)
	if err := rig.engine.ChallengeByPayment(candidate, buyer.addr, challenger.addr); err != nil {
		t.Fatalf("challenge by payment failed: %v", err)
	}

	order := rig.orderFixture(buyer, 3, cur("gem"), 1)
	filling := rig.fillingTrade(buyer, 4, order.Seals.Exchange.Hash)
	err := rig.engine.UnchallengeOrderCandidateByTrade(order, filling, unchallenger.addr)
	if !errors.HasCode(err, errors.ErrCodeReferenceMismatch) {
		t.Errorf("expected rejection for payment-sourced disqualification, got %v", err)
	}
}

// failingBond rejects every staging attempt.
type failingBond struct{}

func (failingBond) StageInBatch(db.DatabaseBatch, string, types.MonetaryFigure) error {
	return fmt.Errorf("bond store unavailable")
}

func TestUnchallengeKeepsDisqualificationWhenStakeFails(t *testing.T) {
	rig := newTestRig(t)
	buyer, order, challenger := disqualifyByOrder(t, rig)
	unchallenger := newTestKey(t)

	deps := rig.engineDeps
	deps.SecurityBond = failingBond{}
	broken := NewEngine(deps)

	filling := rig.fillingTrade(buyer, 3, order.Seals.Exchange.Hash)
	if err := broken.UnchallengeOrderCandidateByTrade(order, filling, unchallenger.addr); err == nil {
		t.Fatal("expected the unchallenge to fail with the stake")
	}

	// the requalification and the stake commit together, so the record
	// must still carry the original disqualification
	result, gotChallenger, _ := rig.engine.Status(buyer.addr, 1)
	if result != types.ResultDisqualified {
		t.Errorf("expected record still disqualified, got %s", result)
	}
	if gotChallenger != challenger.addr {
		t.Errorf("expected challenger %s, got %s", challenger.addr, gotChallenger)
	}
	count, err := rig.bond.StagesCount()
	if err != nil {
		t.Fatalf("stage count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no staged reward, got %d", count)
	}
}

func TestUnchallengeRejectsSubstituteOrder(t *testing.T) {
	rig := newTestRig(t)
	buyer, _, _ := disqualifyByOrder(t, rig)
	unchallenger := newTestKey(t)

	// a different (genuine) order of the same wallet must not unchallenge
	// the stored candidate
	substitute := rig.orderFixture(buyer, 9, cur("gem"), 1)
	filling := rig.fillingTrade(buyer, 3, substitute.Seals.Exchange.Hash)
	err := rig.engine.UnchallengeOrderCandidateByTrade(substitute, filling, unchallenger.addr)
	if !errors.HasCode(err, errors.ErrCodeReferenceMismatch) {
		t.Errorf("expected reference mismatch, got %v", err)
	}
}
