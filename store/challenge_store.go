package store

import (
	"fmt"
	"sync"

	"driipnet/db"
	"driipnet/jsonx"
	"driipnet/types"
)

// ChallengeStore persists per-wallet challenge records together with the
// per-wallet lists of challenged trades and payments the records reference.
// Records are mutated in place and never deleted.
type ChallengeStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

// NewChallengeStore creates a challenge store over the given provider
func NewChallengeStore(dbProvider db.DatabaseProvider) (*ChallengeStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	return &ChallengeStore{dbProvider: dbProvider}, nil
}

func challengeKey(wallet string) []byte {
	return []byte(PrefixChallenge + wallet)
}

// Record returns the wallet's challenge record, or nil when none exists.
func (cs *ChallengeStore) Record(wallet string) (*types.ChallengeRecord, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	data, err := cs.dbProvider.Get(challengeKey(wallet))
	if err != nil {
		return nil, fmt.Errorf("could not get challenge record for %s: %w", wallet, err)
	}
	if data == nil {
		return nil, nil
	}

	var record types.ChallengeRecord
	if err := jsonx.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge record: %w", err)
	}
	return &record, nil
}

// PutRecordInBatch stages a challenge record write into batch.
func (cs *ChallengeStore) PutRecordInBatch(batch db.DatabaseBatch, record *types.ChallengeRecord) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	data, err := jsonx.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal challenge record: %w", err)
	}
	batch.Put(challengeKey(record.Wallet), data)
	return nil
}

// AppendChallengedTradeInBatch stages the append of a challenged trade to
// the wallet's list and returns the new entry's index.
func (cs *ChallengeStore) AppendChallengedTradeInBatch(batch db.DatabaseBatch, wallet string, trade *types.Trade) (uint64, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	return appendToList(cs.dbProvider, batch, PrefixChallengedTrade, PrefixChallengedTradeCount, wallet, trade)
}

// AppendChallengedPaymentInBatch stages the append of a challenged payment
// to the wallet's list and returns the new entry's index.
func (cs *ChallengeStore) AppendChallengedPaymentInBatch(batch db.DatabaseBatch, wallet string, payment *types.Payment) (uint64, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	return appendToList(cs.dbProvider, batch, PrefixChallengedPayment, PrefixChallengedPaymentCnt, wallet, payment)
}

// ChallengedTrade returns the wallet's challenged trade at index.
func (cs *ChallengeStore) ChallengedTrade(wallet string, index uint64) (*types.Trade, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	var trade types.Trade
	if err := getListEntry(cs.dbProvider, PrefixChallengedTrade, wallet, index, &trade); err != nil {
		return nil, err
	}
	return &trade, nil
}

// ChallengedPayment returns the wallet's challenged payment at index.
func (cs *ChallengeStore) ChallengedPayment(wallet string, index uint64) (*types.Payment, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	var payment types.Payment
	if err := getListEntry(cs.dbProvider, PrefixChallengedPayment, wallet, index, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// ChallengedTradesCount returns how many trades have been challenged for
// the wallet.
func (cs *ChallengeStore) ChallengedTradesCount(wallet string) (uint64, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	return readCount(cs.dbProvider, []byte(PrefixChallengedTradeCount+wallet))
}

// ChallengedPaymentsCount returns how many payments have been challenged
// for the wallet.
func (cs *ChallengeStore) ChallengedPaymentsCount(wallet string) (uint64, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	return readCount(cs.dbProvider, []byte(PrefixChallengedPaymentCnt+wallet))
}

// MustClose closes the underlying provider, panicking on failure
func (cs *ChallengeStore) MustClose() {
	if err := cs.dbProvider.Close(); err != nil {
		panic(fmt.Sprintf("failed to close challenge store: %v", err))
	}
}

// appendToList stages entry at the tail of a counted list. The batch write
// keeps entry and count atomic with the caller's other writes.
func appendToList(provider db.DatabaseProvider, batch db.DatabaseBatch, entryPrefix, countPrefix, scope string, entry interface{}) (uint64, error) {
	count, err := readCount(provider, []byte(countPrefix+scope))
	if err != nil {
		return 0, err
	}

	data, err := jsonx.Marshal(entry)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal list entry: %w", err)
	}

	batch.Put(indexedKey(entryPrefix, scope, count), data)
	batch.Put([]byte(countPrefix+scope), encodeCount(count+1))
	return count, nil
}

// getListEntry fetches and unmarshals the list entry at index.
func getListEntry(provider db.DatabaseProvider, entryPrefix, scope string, index uint64, out interface{}) error {
	data, err := provider.Get(indexedKey(entryPrefix, scope, index))
	if err != nil {
		return fmt.Errorf("could not get list entry: %w", err)
	}
	if data == nil {
		return fmt.Errorf("no list entry at index %d", index)
	}
	if err := jsonx.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal list entry: %w", err)
	}
	return nil
}
