package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

// DriipType tags which kind of driip seeded a settlement challenge.
type DriipType int

const (
	DriipTypeNone DriipType = iota
	DriipTypeOrder
	DriipTypeTrade
	DriipTypePayment
)

func (d DriipType) String() string {
	switch d {
	case DriipTypeOrder:
		return "order"
	case DriipTypeTrade:
		return "trade"
	case DriipTypePayment:
		return "payment"
	default:
		return "none"
	}
}

// Seal carries the hash of a driip's canonical serialization and a base58
// ed25519 signature over the hash bytes.
type Seal struct {
	Hash      string `json:"hash"`
	Signature string `json:"signature"`
}

// OrderSeals carries the wallet and exchange seals of an order.
type OrderSeals struct {
	Wallet   Seal `json:"wallet"`
	Exchange Seal `json:"exchange"`
}

// PaymentSeals carries the wallet and exchange seals of a payment.
type PaymentSeals struct {
	Wallet   Seal `json:"wallet"`
	Exchange Seal `json:"exchange"`
}

// OrderPlacement describes what an order commits to spend. Amount is
// denominated in the conjugate currency, the one leaving the wallet.
type OrderPlacement struct {
	Amount     *big.Int       `json:"amount"`
	Currencies CurrencyPair   `json:"currencies"`
	Residuals  BalanceFigures `json:"residuals"`
}

// Order is an off-chain authenticated intention to trade.
type Order struct {
	Nonce       uint64         `json:"nonce"`
	Wallet      string         `json:"wallet"`
	Placement   OrderPlacement `json:"placement"`
	BlockNumber uint64         `json:"block_number"`
	Seals       OrderSeals     `json:"seals"`
}

func (o *Order) Serialize() []byte {
	return []byte(fmt.Sprintf(
		"order|%d|%s|%s|%s|%s|%s|%s|%d",
		o.Nonce, o.Wallet, amountString(o.Placement.Amount),
		o.Placement.Currencies.Intended, o.Placement.Currencies.Conjugate,
		amountString(o.Placement.Residuals.Current), amountString(o.Placement.Residuals.Previous),
		o.BlockNumber,
	))
}

// Hash returns the hex sha256 of the order's canonical serialization.
func (o *Order) Hash() string {
	sum := sha256.Sum256(o.Serialize())
	return hex.EncodeToString(sum[:])
}

// ConsideredCurrency is the currency an order spends, the conjugate leg.
func (o *Order) ConsideredCurrency() Currency {
	return o.Placement.Currencies.Conjugate
}

// TransferAmount is the balance delta the order evidences for its wallet.
func (o *Order) TransferAmount() *big.Int {
	return AbsAmount(o.Placement.Amount)
}

// OrderHashes references the order an exchange filled into a trade.
type OrderHashes struct {
	Wallet   string `json:"wallet"`
	Exchange string `json:"exchange"`
}

// TradeOrder is the per-party order reference embedded in a trade.
type TradeOrder struct {
	Amount *big.Int    `json:"amount"`
	Hashes OrderHashes `json:"hashes"`
}

// TradeBalances holds a trade party's balances on both legs.
type TradeBalances struct {
	Intended  BalanceFigures `json:"intended"`
	Conjugate BalanceFigures `json:"conjugate"`
}

// TradeParty is the buyer or seller sub-record of a trade.
type TradeParty struct {
	Nonce    uint64        `json:"nonce"`
	Wallet   string        `json:"wallet"`
	Order    TradeOrder    `json:"order"`
	Balances TradeBalances `json:"balances"`
}

// TradeTransfers holds the trade's transfer figures on both legs.
type TradeTransfers struct {
	Intended  TransferFigures `json:"intended"`
	Conjugate TransferFigures `json:"conjugate"`
}

// Trade is an off-chain authenticated exchange of the intended currency
// against the conjugate currency between a buyer and a seller.
type Trade struct {
	Nonce       uint64         `json:"nonce"`
	Amount      *big.Int       `json:"amount"`
	Currencies  CurrencyPair   `json:"currencies"`
	Buyer       TradeParty     `json:"buyer"`
	Seller      TradeParty     `json:"seller"`
	Transfers   TradeTransfers `json:"transfers"`
	BlockNumber uint64         `json:"block_number"`
	Seal        Seal           `json:"seal"`
}

func (t *Trade) Serialize() []byte {
	return []byte(fmt.Sprintf(
		"trade|%d|%s|%s|%s|%s|%s|%s|%s|%s|%s|%d",
		t.Nonce, amountString(t.Amount),
		t.Currencies.Intended, t.Currencies.Conjugate,
		serializeTradeParty(&t.Buyer), serializeTradeParty(&t.Seller),
		amountString(t.Transfers.Intended.Single), amountString(t.Transfers.Intended.Total),
		amountString(t.Transfers.Conjugate.Single), amountString(t.Transfers.Conjugate.Total),
		t.BlockNumber,
	))
}

// serializeTradeParty covers every party field; a figure left out of the
// serialization would be malleable under the seal.
func serializeTradeParty(p *TradeParty) string {
	return fmt.Sprintf(
		"%d;%s;%s;%s;%s;%s;%s;%s;%s",
		p.Nonce, p.Wallet,
		amountString(p.Order.Amount), p.Order.Hashes.Wallet, p.Order.Hashes.Exchange,
		amountString(p.Balances.Intended.Current), amountString(p.Balances.Intended.Previous),
		amountString(p.Balances.Conjugate.Current), amountString(p.Balances.Conjugate.Previous),
	)
}

// Hash returns the hex sha256 of the trade's canonical serialization.
func (t *Trade) Hash() string {
	sum := sha256.Sum256(t.Serialize())
	return hex.EncodeToString(sum[:])
}

// IsParty reports whether wallet is the trade's buyer or seller.
func (t *Trade) IsParty(wallet string) bool {
	return wallet != ZeroAddress && (t.Buyer.Wallet == wallet || t.Seller.Wallet == wallet)
}

// Party returns the buyer or seller sub-record for wallet.
func (t *Trade) Party(wallet string) (*TradeParty, bool) {
	if wallet == ZeroAddress {
		return nil, false
	}
	if t.Buyer.Wallet == wallet {
		return &t.Buyer, true
	}
	if t.Seller.Wallet == wallet {
		return &t.Seller, true
	}
	return nil, false
}

// IsBuyer reports whether wallet is the trade's buyer.
func (t *Trade) IsBuyer(wallet string) bool {
	return wallet != ZeroAddress && t.Buyer.Wallet == wallet
}

// CurrentBalance returns the wallet's current balance recorded by the trade
// for the given currency. The second return is false when the wallet is not
// a party or the currency matches neither leg.
func (t *Trade) CurrentBalance(wallet string, currency Currency) (*big.Int, bool) {
	party, ok := t.Party(wallet)
	if !ok {
		return nil, false
	}
	switch {
	case currency.Equal(t.Currencies.Intended):
		return party.Balances.Intended.Current, true
	case currency.Equal(t.Currencies.Conjugate):
		return party.Balances.Conjugate.Current, true
	default:
		return nil, false
	}
}

// ConsideredCurrency is the currency a trade party spends: the conjugate leg
// for the buyer, the intended leg for the seller.
func (t *Trade) ConsideredCurrency(wallet string) (Currency, bool) {
	if t.IsBuyer(wallet) {
		return t.Currencies.Conjugate, true
	}
	if t.IsParty(wallet) {
		return t.Currencies.Intended, true
	}
	return Currency{}, false
}

// TransferAmount is the single-trade balance delta the trade evidences for
// the given party's spent currency.
func (t *Trade) TransferAmount(wallet string) (*big.Int, bool) {
	if t.IsBuyer(wallet) {
		return AbsAmount(t.Transfers.Conjugate.Single), true
	}
	if t.IsParty(wallet) {
		return AbsAmount(t.Transfers.Intended.Single), true
	}
	return nil, false
}

// PartyOrderHash returns the exchange hash of the order the trade filled for
// the given party.
func (t *Trade) PartyOrderHash(wallet string) (string, bool) {
	party, ok := t.Party(wallet)
	if !ok {
		return "", false
	}
	return party.Order.Hashes.Exchange, true
}

// PaymentParty is the sender or recipient sub-record of a payment.
type PaymentParty struct {
	Nonce    uint64         `json:"nonce"`
	Wallet   string         `json:"wallet"`
	Balances BalanceFigures `json:"balances"`
}

// Payment is an off-chain authenticated single-currency transfer.
type Payment struct {
	Nonce       uint64          `json:"nonce"`
	Amount      *big.Int        `json:"amount"`
	Currency    Currency        `json:"currency"`
	Sender      PaymentParty    `json:"sender"`
	Recipient   PaymentParty    `json:"recipient"`
	Transfers   TransferFigures `json:"transfers"`
	BlockNumber uint64          `json:"block_number"`
	Seals       PaymentSeals    `json:"seals"`
}

func (p *Payment) Serialize() []byte {
	return []byte(fmt.Sprintf(
		"payment|%d|%s|%s|%d;%s;%s;%s|%d;%s;%s;%s|%s|%s|%d",
		p.Nonce, amountString(p.Amount), p.Currency,
		p.Sender.Nonce, p.Sender.Wallet,
		amountString(p.Sender.Balances.Current), amountString(p.Sender.Balances.Previous),
		p.Recipient.Nonce, p.Recipient.Wallet,
		amountString(p.Recipient.Balances.Current), amountString(p.Recipient.Balances.Previous),
		amountString(p.Transfers.Single), amountString(p.Transfers.Total),
		p.BlockNumber,
	))
}

// Hash returns the hex sha256 of the payment's canonical serialization.
func (p *Payment) Hash() string {
	sum := sha256.Sum256(p.Serialize())
	return hex.EncodeToString(sum[:])
}

// IsParty reports whether wallet is the payment's sender or recipient.
func (p *Payment) IsParty(wallet string) bool {
	return wallet != ZeroAddress && (p.Sender.Wallet == wallet || p.Recipient.Wallet == wallet)
}

// IsSender reports whether wallet is the payment's sender.
func (p *Payment) IsSender(wallet string) bool {
	return wallet != ZeroAddress && p.Sender.Wallet == wallet
}

// IsRecipient reports whether wallet is the payment's recipient.
func (p *Payment) IsRecipient(wallet string) bool {
	return wallet != ZeroAddress && p.Recipient.Wallet == wallet
}

// CurrentBalance returns the sender's current balance recorded by the
// payment when wallet is the sender and currency matches.
func (p *Payment) CurrentBalance(wallet string, currency Currency) (*big.Int, bool) {
	if !p.IsSender(wallet) || !currency.Equal(p.Currency) {
		return nil, false
	}
	return p.Sender.Balances.Current, true
}

// TransferAmount is the single-payment balance delta the payment evidences
// for its sender.
func (p *Payment) TransferAmount() *big.Int {
	return AbsAmount(p.Transfers.Single)
}

// amountString renders a *big.Int for canonical serialization, "0" when nil
func amountString(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}
