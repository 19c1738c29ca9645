package store

import (
	"fmt"
	"sync"

	"driipnet/db"
	"driipnet/interfaces"
	"driipnet/jsonx"
	"driipnet/types"
)

// BalanceStore is the time-indexed deposited-balance log per wallet and
// currency, consumed when seeding null settlement proposals.
type BalanceStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

// NewBalanceStore creates a balance store over the given provider
func NewBalanceStore(dbProvider db.DatabaseProvider) (*BalanceStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	return &BalanceStore{dbProvider: dbProvider}, nil
}

func balanceScope(wallet string, currency types.Currency) string {
	return wallet + ":" + currency.String()
}

// AddDepositLog appends one balance observation for (wallet, currency).
func (bs *BalanceStore) AddDepositLog(wallet string, currency types.Currency, log interfaces.BalanceLog) error {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	scope := balanceScope(wallet, currency)
	batch := bs.dbProvider.Batch()
	defer batch.Close()

	if _, err := appendToList(bs.dbProvider, batch, PrefixBalanceLog, PrefixBalanceLogCount, scope, &log); err != nil {
		return err
	}
	return batch.Write()
}

// HasDepositLog reports whether any balance observation exists for
// (wallet, currency).
func (bs *BalanceStore) HasDepositLog(wallet string, currency types.Currency) bool {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	count, err := readCount(bs.dbProvider, []byte(PrefixBalanceLogCount+balanceScope(wallet, currency)))
	return err == nil && count > 0
}

// LastDepositLog returns the most recent balance observation for
// (wallet, currency).
func (bs *BalanceStore) LastDepositLog(wallet string, currency types.Currency) (interfaces.BalanceLog, error) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	scope := balanceScope(wallet, currency)
	count, err := readCount(bs.dbProvider, []byte(PrefixBalanceLogCount+scope))
	if err != nil {
		return interfaces.BalanceLog{}, err
	}
	if count == 0 {
		return interfaces.BalanceLog{}, fmt.Errorf("no deposit log for %s in %s", wallet, currency)
	}

	data, err := bs.dbProvider.Get(indexedKey(PrefixBalanceLog, scope, count-1))
	if err != nil {
		return interfaces.BalanceLog{}, fmt.Errorf("could not get deposit log: %w", err)
	}
	var log interfaces.BalanceLog
	if err := jsonx.Unmarshal(data, &log); err != nil {
		return interfaces.BalanceLog{}, fmt.Errorf("failed to unmarshal deposit log: %w", err)
	}
	return log, nil
}

// MustClose closes the underlying provider, panicking on failure
func (bs *BalanceStore) MustClose() {
	if err := bs.dbProvider.Close(); err != nil {
		panic(fmt.Sprintf("failed to close balance store: %v", err))
	}
}
