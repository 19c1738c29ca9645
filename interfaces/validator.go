package interfaces

import "driipnet/types"

// Validator verifies driip seal authenticity. The dispute engine refuses to
// act on any driip that fails these checks.
type Validator interface {
	IsGenuineOrderSeals(order *types.Order) bool
	IsGenuineOrderWalletSeal(order *types.Order) bool
	IsGenuineOrderExchangeSeal(order *types.Order) bool
	IsGenuineTradeSeal(trade *types.Trade) bool
	IsGenuinePaymentSeals(payment *types.Payment) bool
}
