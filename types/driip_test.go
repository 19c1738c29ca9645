package types

import (
	"math/big"
	"testing"
)

func testTrade() *Trade {
	return &Trade{
		Nonce:  1,
		Amount: big.NewInt(100),
		Currencies: CurrencyPair{
			Intended:  Currency{Ct: "tok", ID: 1},
			Conjugate: Currency{Ct: "gem", ID: 2},
		},
		Buyer: TradeParty{
			Nonce:  4,
			Wallet: "buyer",
			Balances: TradeBalances{
				Intended:  BalanceFigures{Current: big.NewInt(300), Previous: big.NewInt(200)},
				Conjugate: BalanceFigures{Current: big.NewInt(50), Previous: big.NewInt(100)},
			},
		},
		Seller: TradeParty{
			Nonce:  7,
			Wallet: "seller",
			Balances: TradeBalances{
				Intended:  BalanceFigures{Current: big.NewInt(900), Previous: big.NewInt(1000)},
				Conjugate: BalanceFigures{Current: big.NewInt(75), Previous: big.NewInt(25)},
			},
		},
		Transfers: TradeTransfers{
			Intended:  TransferFigures{Single: big.NewInt(100), Total: big.NewInt(100)},
			Conjugate: TransferFigures{Single: big.NewInt(50), Total: big.NewInt(50)},
		},
		BlockNumber: 12,
	}
}

func TestTradeConsideredCurrency(t *testing.T) {
	trade := testTrade()

	got, ok := trade.ConsideredCurrency("buyer")
	if !ok || !got.Equal(trade.Currencies.Conjugate) {
		t.Errorf("buyer considered currency = %v, want conjugate leg", got)
	}
	got, ok = trade.ConsideredCurrency("seller")
	if !ok || !got.Equal(trade.Currencies.Intended) {
		t.Errorf("seller considered currency = %v, want intended leg", got)
	}
	if _, ok := trade.ConsideredCurrency("stranger"); ok {
		t.Errorf("non-party should get no considered currency")
	}
	if _, ok := trade.ConsideredCurrency(ZeroAddress); ok {
		t.Errorf("zero address is never a party")
	}
}

func TestTradeTransferAmount(t *testing.T) {
	trade := testTrade()

	got, ok := trade.TransferAmount("buyer")
	if !ok || got.Cmp(big.NewInt(50)) != 0 {
		t.Errorf("buyer transfer = %v, want 50", got)
	}
	got, ok = trade.TransferAmount("seller")
	if !ok || got.Cmp(big.NewInt(100)) != 0 {
		t.Errorf("seller transfer = %v, want 100", got)
	}

	// Transfer figures are deltas and may be stored negative.
	trade.Transfers.Conjugate.Single = big.NewInt(-50)
	got, _ = trade.TransferAmount("buyer")
	if got.Cmp(big.NewInt(50)) != 0 {
		t.Errorf("transfer amount must be absolute, got %v", got)
	}
}

func TestTradeCurrentBalance(t *testing.T) {
	trade := testTrade()

	got, ok := trade.CurrentBalance("buyer", trade.Currencies.Conjugate)
	if !ok || got.Cmp(big.NewInt(50)) != 0 {
		t.Errorf("buyer conjugate balance = %v, want 50", got)
	}
	got, ok = trade.CurrentBalance("seller", trade.Currencies.Intended)
	if !ok || got.Cmp(big.NewInt(900)) != 0 {
		t.Errorf("seller intended balance = %v, want 900", got)
	}
	if _, ok := trade.CurrentBalance("buyer", Currency{Ct: "other"}); ok {
		t.Errorf("currency off both legs should not resolve")
	}
	if _, ok := trade.CurrentBalance("stranger", trade.Currencies.Intended); ok {
		t.Errorf("non-party should not resolve")
	}
}

func TestTradeHashIsCanonical(t *testing.T) {
	a := testTrade()
	b := testTrade()
	if a.Hash() != b.Hash() {
		t.Errorf("identical trades must hash identically")
	}

	// Seals are excluded from the canonical serialization.
	b.Seal = Seal{Hash: "x", Signature: "y"}
	if a.Hash() != b.Hash() {
		t.Errorf("seal must not affect the trade hash")
	}

	b.Nonce = 2
	if a.Hash() == b.Hash() {
		t.Errorf("different trades must hash differently")
	}
}

func TestHashCoversTransferAndBalanceFigures(t *testing.T) {
	base := testTrade().Hash()

	// Anything outside the canonical serialization would be malleable under
	// the exchange seal, so every stored figure has to move the hash.
	mutations := map[string]func(*Trade){
		"intended transfer total":   func(tr *Trade) { tr.Transfers.Intended.Total = big.NewInt(999) },
		"conjugate transfer total":  func(tr *Trade) { tr.Transfers.Conjugate.Total = big.NewInt(999) },
		"buyer conjugate previous":  func(tr *Trade) { tr.Buyer.Balances.Conjugate.Previous = big.NewInt(999) },
		"seller conjugate previous": func(tr *Trade) { tr.Seller.Balances.Conjugate.Previous = big.NewInt(999) },
	}
	for name, mutate := range mutations {
		tr := testTrade()
		mutate(tr)
		if tr.Hash() == base {
			t.Errorf("%s must be covered by the trade hash", name)
		}
	}

	payment := &Payment{
		Nonce:     2,
		Amount:    big.NewInt(10),
		Currency:  Currency{Ct: "tok", ID: 1},
		Sender:    PaymentParty{Wallet: "alice", Balances: BalanceFigures{Current: big.NewInt(90), Previous: big.NewInt(100)}},
		Recipient: PaymentParty{Wallet: "bob"},
		Transfers: TransferFigures{Single: big.NewInt(10), Total: big.NewInt(30)},
	}
	paymentBase := payment.Hash()
	payment.Transfers.Total = big.NewInt(999)
	if payment.Hash() == paymentBase {
		t.Errorf("transfer total must be covered by the payment hash")
	}
}

func TestOrderTransferAmountAndCurrency(t *testing.T) {
	order := &Order{
		Nonce:  3,
		Wallet: "walletA",
		Placement: OrderPlacement{
			Amount: big.NewInt(-25),
			Currencies: CurrencyPair{
				Intended:  Currency{Ct: "tok", ID: 1},
				Conjugate: Currency{Ct: "gem", ID: 2},
			},
		},
	}

	if got := order.TransferAmount(); got.Cmp(big.NewInt(25)) != 0 {
		t.Errorf("order transfer = %v, want |amount|", got)
	}
	if got := order.ConsideredCurrency(); !got.Equal(order.Placement.Currencies.Conjugate) {
		t.Errorf("order considered currency = %v, want conjugate leg", got)
	}
}

func TestPaymentParties(t *testing.T) {
	payment := &Payment{
		Nonce:    2,
		Amount:   big.NewInt(10),
		Currency: Currency{Ct: "tok", ID: 1},
		Sender: PaymentParty{
			Wallet:   "alice",
			Balances: BalanceFigures{Current: big.NewInt(90), Previous: big.NewInt(100)},
		},
		Recipient: PaymentParty{Wallet: "bob"},
		Transfers: TransferFigures{Single: big.NewInt(10)},
	}

	if !payment.IsSender("alice") || payment.IsSender("bob") {
		t.Errorf("sender detection is wrong")
	}
	if !payment.IsRecipient("bob") || payment.IsRecipient("alice") {
		t.Errorf("recipient detection is wrong")
	}
	if payment.IsParty(ZeroAddress) {
		t.Errorf("zero address is never a party")
	}

	got, ok := payment.CurrentBalance("alice", payment.Currency)
	if !ok || got.Cmp(big.NewInt(90)) != 0 {
		t.Errorf("sender balance = %v, want 90", got)
	}
	if _, ok := payment.CurrentBalance("bob", payment.Currency); ok {
		t.Errorf("recipient leg must not evidence an outflow")
	}
	if _, ok := payment.CurrentBalance("alice", BaseCurrency); ok {
		t.Errorf("mismatched currency must not resolve")
	}
}

func TestChallengeRecordExpiry(t *testing.T) {
	record := &ChallengeRecord{ChallengeStart: 100, Timeout: 50}

	if record.Expiration() != 150 {
		t.Errorf("Expiration = %d, want 150", record.Expiration())
	}
	if record.Expired(150) {
		t.Errorf("challenge must still be open at its expiration block")
	}
	if !record.Expired(151) {
		t.Errorf("challenge must be closed past its expiration block")
	}
	if record.Phase(150) != PhaseDispute {
		t.Errorf("phase at expiration block must be dispute")
	}
	if record.Phase(151) != PhaseClosed {
		t.Errorf("phase past expiration must be closed")
	}
}

func TestCurrencyString(t *testing.T) {
	if got := BaseCurrency.String(); got != "base" {
		t.Errorf("base currency string = %q", got)
	}
	if got := (Currency{Ct: "tok", ID: 3}).String(); got != "tok#3" {
		t.Errorf("currency string = %q", got)
	}
	if !BaseCurrency.IsBase() {
		t.Errorf("zero value must be the base currency")
	}
}
