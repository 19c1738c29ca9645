package store

import (
	"fmt"
	"strconv"
	"sync"

	"driipnet/db"
	"driipnet/types"
)

// SettlementStateStore tracks the highest settled driip nonce per wallet
// and currency. Null settlement proposals inherit this nonce.
type SettlementStateStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

// NewSettlementStateStore creates a settlement state store over the given
// provider
func NewSettlementStateStore(dbProvider db.DatabaseProvider) (*SettlementStateStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	return &SettlementStateStore{dbProvider: dbProvider}, nil
}

func maxNonceKey(wallet string, currency types.Currency) []byte {
	return []byte(PrefixMaxNonce + wallet + ":" + currency.String())
}

// MaxNonce returns the highest settled nonce for (wallet, currency), zero
// when none has settled.
func (ss *SettlementStateStore) MaxNonce(wallet string, currency types.Currency) uint64 {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	data, err := ss.dbProvider.Get(maxNonceKey(wallet, currency))
	if err != nil || data == nil {
		return 0
	}
	nonce, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return 0
	}
	return nonce
}

// SetMaxNonce records the highest settled nonce for (wallet, currency).
func (ss *SettlementStateStore) SetMaxNonce(wallet string, currency types.Currency, nonce uint64) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if err := ss.dbProvider.Put(maxNonceKey(wallet, currency), []byte(strconv.FormatUint(nonce, 10))); err != nil {
		return fmt.Errorf("failed to write max nonce: %w", err)
	}
	return nil
}

// MustClose closes the underlying provider, panicking on failure
func (ss *SettlementStateStore) MustClose() {
	if err := ss.dbProvider.Close(); err != nil {
		panic(fmt.Sprintf("failed to close settlement state store: %v", err))
	}
}
