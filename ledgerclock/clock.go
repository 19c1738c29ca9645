// Package ledgerclock advances and persists the shared ledger's block
// height. Challenge windows are measured against this clock.
package ledgerclock

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"driipnet/db"
	"driipnet/exception"
	"driipnet/logx"
	"driipnet/monitoring"
	"driipnet/store"
)

// TickingClock increments the block height at a fixed interval and
// persists it so a restarted node resumes from the last height.
type TickingClock struct {
	mu         sync.RWMutex
	height     uint64
	interval   time.Duration
	dbProvider db.DatabaseProvider
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewTickingClock restores the persisted block height from the provider.
func NewTickingClock(dbProvider db.DatabaseProvider, interval time.Duration) (*TickingClock, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive")
	}

	clock := &TickingClock{
		interval:   interval,
		dbProvider: dbProvider,
		stop:       make(chan struct{}),
	}

	data, err := dbProvider.Get([]byte(store.KeyBlockHeight))
	if err != nil {
		return nil, fmt.Errorf("could not read block height: %w", err)
	}
	if data != nil {
		height, err := strconv.ParseUint(string(data), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt block height %q: %w", string(data), err)
		}
		clock.height = height
	}
	return clock, nil
}

// Start launches the ticking loop.
func (c *TickingClock) Start() {
	exception.SafeGo("ledger clock", func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := c.Advance(1); err != nil {
					logx.Error("CLOCK", "failed to advance block height", err)
				}
			case <-c.stop:
				return
			}
		}
	})
}

// Stop halts the ticking loop.
func (c *TickingClock) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// CurrentBlockNumber returns the current block height.
func (c *TickingClock) CurrentBlockNumber() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.height
}

// Advance raises the block height by n and persists it.
func (c *TickingClock) Advance(n uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.height + n
	if err := c.dbProvider.Put([]byte(store.KeyBlockHeight), []byte(strconv.FormatUint(next, 10))); err != nil {
		return fmt.Errorf("failed to persist block height: %w", err)
	}
	c.height = next
	monitoring.SetBlockHeight(next)
	return nil
}
