package types

import (
	"fmt"
	"math/big"
)

// ZeroAddress is the null wallet address. Wallet addresses are base58-encoded
// ed25519 public keys carried as strings.
const ZeroAddress = ""

// Currency identifies an asset by contract address and sub-identifier.
// The zero value denotes the base asset.
type Currency struct {
	Ct string `json:"ct"`
	ID uint64 `json:"id"`
}

// BaseCurrency is the base asset (native coin) currency identifier.
var BaseCurrency = Currency{}

func (c Currency) Equal(other Currency) bool {
	return c.Ct == other.Ct && c.ID == other.ID
}

func (c Currency) IsBase() bool {
	return c.Ct == "" && c.ID == 0
}

func (c Currency) String() string {
	if c.IsBase() {
		return "base"
	}
	return fmt.Sprintf("%s#%d", c.Ct, c.ID)
}

// MonetaryFigure couples a signed amount with its currency.
type MonetaryFigure struct {
	Amount   *big.Int `json:"amount"`
	Currency Currency `json:"currency"`
}

// CurrencyPair holds the two legs of a market.
type CurrencyPair struct {
	Intended  Currency `json:"intended"`
	Conjugate Currency `json:"conjugate"`
}

// BalanceFigures holds a balance before and after a driip.
type BalanceFigures struct {
	Current  *big.Int `json:"current"`
	Previous *big.Int `json:"previous"`
}

// TransferFigures holds the single-driip and running transfer amounts.
type TransferFigures struct {
	Single *big.Int `json:"single"`
	Total  *big.Int `json:"total"`
}

// AbsAmount returns |amount| without mutating the argument. Nil is treated
// as zero.
func AbsAmount(amount *big.Int) *big.Int {
	if amount == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Abs(amount)
}
