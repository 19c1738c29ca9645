// Package walletlock tracks wallet suspension. A wallet is locked either
// administratively or because a disqualified balance-rewarded proposal
// granted a claim on its funds to a challenger.
package walletlock

import (
	"fmt"
	"sync"

	"driipnet/db"
	"driipnet/jsonx"
	"driipnet/logx"
	"driipnet/store"
	"driipnet/types"
)

// LockEntry is one claim on a wallet's funds.
type LockEntry struct {
	Beneficiary string               `json:"beneficiary"`
	Figure      types.MonetaryFigure `json:"figure"`
}

type Locker struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

func NewLocker(dbProvider db.DatabaseProvider) (*Locker, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	return &Locker{dbProvider: dbProvider}, nil
}

func lockKey(wallet string) []byte {
	return []byte(store.PrefixWalletLock + wallet)
}

// IsLocked reports whether the wallet currently carries any lock.
func (l *Locker) IsLocked(wallet string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ok, err := l.dbProvider.Has(lockKey(wallet))
	if err != nil {
		logx.Error("WalletLocker", "failed to check lock", err)
		return false
	}
	return ok
}

// Lock grants beneficiary a claim of figure on the wallet's funds and
// suspends the wallet.
func (l *Locker) Lock(wallet string, beneficiary string, figure types.MonetaryFigure) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := marshalLockEntry(wallet, beneficiary, figure)
	if err != nil {
		return err
	}
	if err := l.dbProvider.Put(lockKey(wallet), data); err != nil {
		return fmt.Errorf("failed to write lock entry: %w", err)
	}
	logx.Info("WalletLocker", fmt.Sprintf("Wallet locked | wallet=%s | beneficiary=%s | amount=%s",
		wallet, beneficiary, figure.Amount))
	return nil
}

// LockInBatch stages the claim into the caller's batch, so the lock commits
// in the same write as the disqualification that grants it.
func (l *Locker) LockInBatch(batch db.DatabaseBatch, wallet string, beneficiary string, figure types.MonetaryFigure) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := marshalLockEntry(wallet, beneficiary, figure)
	if err != nil {
		return err
	}
	batch.Put(lockKey(wallet), data)
	logx.Info("WalletLocker", fmt.Sprintf("Wallet lock staged | wallet=%s | beneficiary=%s | amount=%s",
		wallet, beneficiary, figure.Amount))
	return nil
}

func marshalLockEntry(wallet, beneficiary string, figure types.MonetaryFigure) ([]byte, error) {
	entry := LockEntry{Beneficiary: beneficiary, Figure: figure}
	data, err := jsonx.Marshal(&entry)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lock entry: %w", err)
	}
	return data, nil
}

// Unlock releases any lock held against the wallet.
func (l *Locker) Unlock(wallet string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.dbProvider.Delete(lockKey(wallet)); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// LockedBy returns the lock entry held against the wallet, or nil.
func (l *Locker) LockedBy(wallet string) (*LockEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	data, err := l.dbProvider.Get(lockKey(wallet))
	if err != nil {
		return nil, fmt.Errorf("could not get lock entry: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	var entry LockEntry
	if err := jsonx.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lock entry: %w", err)
	}
	return &entry, nil
}
