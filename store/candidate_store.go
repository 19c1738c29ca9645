package store

import (
	"fmt"
	"sync"

	"driipnet/db"
	"driipnet/types"
)

// CandidateStore persists the global append-only registries of submitted
// challenge candidates. Entries are never removed or reordered, so an
// entry's index identifies it permanently.
type CandidateStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

// NewCandidateStore creates a candidate store over the given provider
func NewCandidateStore(dbProvider db.DatabaseProvider) (*CandidateStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	return &CandidateStore{dbProvider: dbProvider}, nil
}

// AppendOrderInBatch stages the append of an order candidate and returns
// its registry index.
func (cs *CandidateStore) AppendOrderInBatch(batch db.DatabaseBatch, order *types.Order) (uint64, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	return appendToList(cs.dbProvider, batch, PrefixCandidateOrder, KeyCandidateOrderCount, "", order)
}

// AppendTradeInBatch stages the append of a trade candidate and returns its
// registry index.
func (cs *CandidateStore) AppendTradeInBatch(batch db.DatabaseBatch, trade *types.Trade) (uint64, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	return appendToList(cs.dbProvider, batch, PrefixCandidateTrade, KeyCandidateTradeCount, "", trade)
}

// AppendPaymentInBatch stages the append of a payment candidate and returns
// its registry index.
func (cs *CandidateStore) AppendPaymentInBatch(batch db.DatabaseBatch, payment *types.Payment) (uint64, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	return appendToList(cs.dbProvider, batch, PrefixCandidatePayment, KeyCandidatePaymentCount, "", payment)
}

// Order returns the order candidate at index.
func (cs *CandidateStore) Order(index uint64) (*types.Order, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	var order types.Order
	if err := getListEntry(cs.dbProvider, PrefixCandidateOrder, "", index, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Trade returns the trade candidate at index.
func (cs *CandidateStore) Trade(index uint64) (*types.Trade, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	var trade types.Trade
	if err := getListEntry(cs.dbProvider, PrefixCandidateTrade, "", index, &trade); err != nil {
		return nil, err
	}
	return &trade, nil
}

// Payment returns the payment candidate at index.
func (cs *CandidateStore) Payment(index uint64) (*types.Payment, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	var payment types.Payment
	if err := getListEntry(cs.dbProvider, PrefixCandidatePayment, "", index, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// OrdersCount returns the size of the order-candidate registry.
func (cs *CandidateStore) OrdersCount() (uint64, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	return readCount(cs.dbProvider, []byte(KeyCandidateOrderCount))
}

// TradesCount returns the size of the trade-candidate registry.
func (cs *CandidateStore) TradesCount() (uint64, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	return readCount(cs.dbProvider, []byte(KeyCandidateTradeCount))
}

// PaymentsCount returns the size of the payment-candidate registry.
func (cs *CandidateStore) PaymentsCount() (uint64, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	return readCount(cs.dbProvider, []byte(KeyCandidatePaymentCount))
}

// MustClose closes the underlying provider, panicking on failure
func (cs *CandidateStore) MustClose() {
	if err := cs.dbProvider.Close(); err != nil {
		panic(fmt.Sprintf("failed to close candidate store: %v", err))
	}
}
