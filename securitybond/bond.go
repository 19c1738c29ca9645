// Package securitybond holds rewards staged to wallets by the dispute
// engine. Staging only credits; actual withdrawal is outside the protocol.
package securitybond

import (
	"fmt"
	"sync"

	"driipnet/db"
	"driipnet/jsonx"
	"driipnet/logx"
	"driipnet/store"
	"driipnet/types"
)

// StageEntry is one staged reward.
type StageEntry struct {
	Wallet string               `json:"wallet"`
	Figure types.MonetaryFigure `json:"figure"`
}

// Bond is a store-backed reward custody ledger.
type Bond struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

func NewBond(dbProvider db.DatabaseProvider) (*Bond, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	return &Bond{dbProvider: dbProvider}, nil
}

// StageInBatch credits figure to wallet through the caller's batch. The
// entry becomes visible only when the caller commits, so a reward staged
// alongside a state transition cannot outlive a discarded one. The count
// read is against committed state; the engines hold one batch open at a
// time, so the slot cannot be claimed twice.
func (b *Bond) StageInBatch(batch db.DatabaseBatch, wallet string, figure types.MonetaryFigure) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	count, err := b.stagesCount()
	if err != nil {
		return err
	}

	entry := StageEntry{Wallet: wallet, Figure: figure}
	data, err := jsonx.Marshal(&entry)
	if err != nil {
		return fmt.Errorf("failed to marshal stage entry: %w", err)
	}

	batch.Put(stageKey(count), data)
	batch.Put([]byte(store.PrefixStagedBond+"count"), []byte(fmt.Sprintf("%d", count+1)))

	logx.Info("SecurityBond", fmt.Sprintf("Staged reward | wallet=%s | amount=%s | currency=%s",
		wallet, entry.Figure.Amount, entry.Figure.Currency))
	return nil
}

// StagesCount returns how many rewards have been staged.
func (b *Bond) StagesCount() (uint64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.stagesCount()
}

// StageAt returns the staged reward at index.
func (b *Bond) StageAt(index uint64) (*StageEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, err := b.dbProvider.Get(stageKey(index))
	if err != nil {
		return nil, fmt.Errorf("could not get stage entry: %w", err)
	}
	if data == nil {
		return nil, fmt.Errorf("no stage entry at index %d", index)
	}
	var entry StageEntry
	if err := jsonx.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stage entry: %w", err)
	}
	return &entry, nil
}

func (b *Bond) stagesCount() (uint64, error) {
	data, err := b.dbProvider.Get([]byte(store.PrefixStagedBond + "count"))
	if err != nil {
		return 0, fmt.Errorf("could not read stage count: %w", err)
	}
	if data == nil {
		return 0, nil
	}
	var count uint64
	if _, err := fmt.Sscanf(string(data), "%d", &count); err != nil {
		return 0, fmt.Errorf("corrupt stage count %q: %w", string(data), err)
	}
	return count, nil
}

func stageKey(index uint64) []byte {
	return []byte(fmt.Sprintf("%sentry:%d", store.PrefixStagedBond, index))
}
