package validator

import (
	"crypto/ed25519"
	"crypto/rand"
	"math/big"
	"testing"

	"driipnet/common"
	"driipnet/types"
)

type sealKey struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
	addr string
}

func newSealKey(t *testing.T) sealKey {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return sealKey{pub: pub, priv: priv, addr: common.EncodeBytesToBase58(pub)}
}

func (k sealKey) seal(hash string) types.Seal {
	sig := ed25519.Sign(k.priv, []byte(hash))
	return types.Seal{Hash: hash, Signature: common.EncodeBytesToBase58(sig)}
}

func TestOrderSeals(t *testing.T) {
	exchange := newSealKey(t)
	wallet := newSealKey(t)
	v, err := NewSealValidator(exchange.addr)
	if err != nil {
		t.Fatalf("NewSealValidator: %v", err)
	}

	order := &types.Order{
		Nonce:  1,
		Wallet: wallet.addr,
		Placement: types.OrderPlacement{
			Amount: big.NewInt(10),
			Currencies: types.CurrencyPair{
				Conjugate: types.Currency{Ct: "gem", ID: 2},
			},
		},
	}
	hash := order.Hash()
	order.Seals.Wallet = wallet.seal(hash)
	order.Seals.Exchange = exchange.seal(hash)

	if !v.IsGenuineOrderSeals(order) {
		t.Fatalf("genuine order seals rejected")
	}

	// Wallet seal signed by a third party.
	stranger := newSealKey(t)
	order.Seals.Wallet = stranger.seal(hash)
	if v.IsGenuineOrderWalletSeal(order) {
		t.Errorf("wallet seal from another key accepted")
	}
	order.Seals.Wallet = wallet.seal(hash)

	// Exchange seal signed by the wallet.
	order.Seals.Exchange = wallet.seal(hash)
	if v.IsGenuineOrderExchangeSeal(order) {
		t.Errorf("exchange seal from a non-exchange key accepted")
	}
	order.Seals.Exchange = exchange.seal(hash)

	// Content mutated after sealing.
	order.Nonce = 2
	if v.IsGenuineOrderSeals(order) {
		t.Errorf("tampered order accepted")
	}
}

func TestTradeSeal(t *testing.T) {
	exchange := newSealKey(t)
	v, err := NewSealValidator(exchange.addr)
	if err != nil {
		t.Fatalf("NewSealValidator: %v", err)
	}

	trade := &types.Trade{Nonce: 1, Amount: big.NewInt(100)}
	trade.Seal = exchange.seal(trade.Hash())
	if !v.IsGenuineTradeSeal(trade) {
		t.Fatalf("genuine trade seal rejected")
	}

	trade.Seal.Signature = ""
	if v.IsGenuineTradeSeal(trade) {
		t.Errorf("empty signature accepted")
	}

	trade.Seal = exchange.seal(trade.Hash())
	trade.Seal.Hash = "deadbeef"
	if v.IsGenuineTradeSeal(trade) {
		t.Errorf("seal with mismatched hash accepted")
	}
}

func TestPaymentSeals(t *testing.T) {
	exchange := newSealKey(t)
	sender := newSealKey(t)
	v, err := NewSealValidator(exchange.addr)
	if err != nil {
		t.Fatalf("NewSealValidator: %v", err)
	}

	payment := &types.Payment{
		Nonce:     1,
		Amount:    big.NewInt(10),
		Sender:    types.PaymentParty{Wallet: sender.addr},
		Recipient: types.PaymentParty{Wallet: "bob"},
	}
	hash := payment.Hash()
	payment.Seals.Wallet = sender.seal(hash)
	payment.Seals.Exchange = exchange.seal(hash)

	if !v.IsGenuinePaymentSeals(payment) {
		t.Fatalf("genuine payment seals rejected")
	}

	// Sender address that is not valid base58 ed25519.
	payment.Sender.Wallet = "not-a-key"
	if v.IsGenuinePaymentSeals(payment) {
		t.Errorf("undecodable sender accepted")
	}
}

func TestNewSealValidatorRejectsBadKey(t *testing.T) {
	if _, err := NewSealValidator("garbage"); err == nil {
		t.Errorf("expected error for undecodable exchange key")
	}
	if _, err := NewSealValidator(common.EncodeBytesToBase58([]byte{1, 2, 3})); err == nil {
		t.Errorf("expected error for wrong-size exchange key")
	}
}
