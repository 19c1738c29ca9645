package validator

import (
	"crypto/ed25519"
	"fmt"

	"driipnet/common"
	"driipnet/logx"
	"driipnet/types"
)

// Limits to prevent DoS via oversized inputs
const maxSignatureBase58Len = 2048

// SealValidator verifies driip seals. Wallet seals are checked against the
// wallet address itself (a base58 ed25519 public key); exchange seals are
// checked against the configured exchange key.
type SealValidator struct {
	exchangePubkey ed25519.PublicKey
}

// NewSealValidator creates a seal validator trusting the given base58
// exchange public key.
func NewSealValidator(exchangePubkeyBase58 string) (*SealValidator, error) {
	pub, err := base58ToEd25519(exchangePubkeyBase58)
	if err != nil {
		return nil, fmt.Errorf("invalid exchange pubkey: %w", err)
	}
	return &SealValidator{exchangePubkey: pub}, nil
}

// IsGenuineOrderSeals reports whether both of an order's seals are genuine.
func (v *SealValidator) IsGenuineOrderSeals(order *types.Order) bool {
	return v.IsGenuineOrderWalletSeal(order) && v.IsGenuineOrderExchangeSeal(order)
}

// IsGenuineOrderWalletSeal checks the order's wallet seal against the
// order's own wallet key.
func (v *SealValidator) IsGenuineOrderWalletSeal(order *types.Order) bool {
	walletPub, err := base58ToEd25519(order.Wallet)
	if err != nil {
		logx.Error("SealValidator", "failed to decode order wallet", err)
		return false
	}
	return verifySeal(order.Seals.Wallet, order.Hash(), walletPub)
}

// IsGenuineOrderExchangeSeal checks the order's exchange seal against the
// configured exchange key.
func (v *SealValidator) IsGenuineOrderExchangeSeal(order *types.Order) bool {
	return verifySeal(order.Seals.Exchange, order.Hash(), v.exchangePubkey)
}

// IsGenuineTradeSeal checks the trade's exchange seal.
func (v *SealValidator) IsGenuineTradeSeal(trade *types.Trade) bool {
	return verifySeal(trade.Seal, trade.Hash(), v.exchangePubkey)
}

// IsGenuinePaymentSeals reports whether both of a payment's seals are
// genuine: the wallet seal against the sender's key, the exchange seal
// against the exchange key.
func (v *SealValidator) IsGenuinePaymentSeals(payment *types.Payment) bool {
	senderPub, err := base58ToEd25519(payment.Sender.Wallet)
	if err != nil {
		logx.Error("SealValidator", "failed to decode payment sender", err)
		return false
	}
	hash := payment.Hash()
	return verifySeal(payment.Seals.Wallet, hash, senderPub) &&
		verifySeal(payment.Seals.Exchange, hash, v.exchangePubkey)
}

// verifySeal checks that the seal's hash matches the recomputed driip hash
// and that its signature verifies over the hash bytes with pub.
func verifySeal(seal types.Seal, hash string, pub ed25519.PublicKey) bool {
	if seal.Hash != hash {
		return false
	}
	if seal.Signature == "" || len(seal.Signature) > maxSignatureBase58Len {
		return false
	}
	signature, err := common.DecodeBase58ToBytes(seal.Signature)
	if err != nil {
		logx.Error("SealValidator", "failed to decode seal signature", err)
		return false
	}
	return ed25519.Verify(pub, []byte(hash), signature)
}

func base58ToEd25519(addr string) (ed25519.PublicKey, error) {
	b, err := common.DecodeBase58ToBytes(addr)
	if err != nil || len(b) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid pubkey")
	}
	return ed25519.PublicKey(b), nil
}
