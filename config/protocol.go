package config

import (
	"math/big"
	"sync"

	"driipnet/types"
)

// ProtocolParams implements interfaces.Configuration on top of the loaded
// challenge tunables. Timeout overrides per currency may be set at runtime
// by the operator.
type ProtocolParams struct {
	mu                      sync.RWMutex
	timeoutBlocks           uint64
	timeoutOverrides        map[types.Currency]uint64
	earliestSettlementBlock uint64
	unchallengeStake        types.MonetaryFigure
}

// NewProtocolParams builds protocol parameters from challenge tunables. The
// unchallenge stake is a fixed base-currency figure.
func NewProtocolParams(cfg *ChallengeConfig) *ProtocolParams {
	return &ProtocolParams{
		timeoutBlocks:           cfg.TimeoutBlocks,
		timeoutOverrides:        make(map[types.Currency]uint64),
		earliestSettlementBlock: cfg.EarliestSettlementBlock,
		unchallengeStake: types.MonetaryFigure{
			Amount:   big.NewInt(cfg.UnchallengeStakeAmount),
			Currency: types.BaseCurrency,
		},
	}
}

// ChallengeTimeout returns the challenge window in blocks for a currency.
func (p *ProtocolParams) ChallengeTimeout(currency types.Currency) uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if timeout, ok := p.timeoutOverrides[currency]; ok {
		return timeout
	}
	return p.timeoutBlocks
}

// SetChallengeTimeout overrides the challenge window for one currency.
func (p *ProtocolParams) SetChallengeTimeout(currency types.Currency, blocks uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.timeoutOverrides[currency] = blocks
}

// EarliestSettlementBlockNumber returns the first block at which settlement
// challenges may start.
func (p *ProtocolParams) EarliestSettlementBlockNumber() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.earliestSettlementBlock
}

// UnchallengeOrderCandidateByTradeStake returns the fixed reward staged when
// an order-candidate disqualification is reversed.
func (p *ProtocolParams) UnchallengeOrderCandidateByTradeStake() types.MonetaryFigure {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.unchallengeStake
}
