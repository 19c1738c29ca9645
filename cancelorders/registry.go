// Package cancelorders keeps the registry of orders cancelled by their
// wallets. The dispute engine only reads it: a cancelled order is never
// admissible as challenge evidence.
package cancelorders

import (
	"fmt"
	"sync"

	"driipnet/db"
	"driipnet/logx"
	"driipnet/store"
)

type Registry struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

func NewRegistry(dbProvider db.DatabaseProvider) (*Registry, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	return &Registry{dbProvider: dbProvider}, nil
}

func cancelKey(wallet, orderHash string) []byte {
	return []byte(store.PrefixCancelledOrder + wallet + ":" + orderHash)
}

// CancelByHash marks the order with the given exchange hash as cancelled by
// its wallet.
func (r *Registry) CancelByHash(wallet, orderHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.dbProvider.Put(cancelKey(wallet, orderHash), []byte{1}); err != nil {
		return fmt.Errorf("failed to record order cancellation: %w", err)
	}
	logx.Info("CancelOrders", fmt.Sprintf("Order cancelled | wallet=%s | hash=%s", wallet, orderHash))
	return nil
}

// IsOrderCancelled reports whether the wallet previously cancelled the
// order with the given exchange hash.
func (r *Registry) IsOrderCancelled(wallet, orderHash string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ok, err := r.dbProvider.Has(cancelKey(wallet, orderHash))
	if err != nil {
		logx.Error("CancelOrders", "failed to check cancellation", err)
		return false
	}
	return ok
}
