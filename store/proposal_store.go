package store

import (
	"fmt"
	"sync"

	"driipnet/db"
	"driipnet/jsonx"
	"driipnet/types"
)

// ProposalStore persists null settlement proposals keyed by wallet and
// currency.
type ProposalStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

// NewProposalStore creates a proposal store over the given provider
func NewProposalStore(dbProvider db.DatabaseProvider) (*ProposalStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	return &ProposalStore{dbProvider: dbProvider}, nil
}

func proposalKey(wallet string, currency types.Currency) []byte {
	return []byte(PrefixProposal + wallet + ":" + currency.String())
}

// Proposal returns the proposal for (wallet, currency), or nil when none
// exists.
func (ps *ProposalStore) Proposal(wallet string, currency types.Currency) (*types.Proposal, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	data, err := ps.dbProvider.Get(proposalKey(wallet, currency))
	if err != nil {
		return nil, fmt.Errorf("could not get proposal for %s in %s: %w", wallet, currency, err)
	}
	if data == nil {
		return nil, nil
	}

	var proposal types.Proposal
	if err := jsonx.Unmarshal(data, &proposal); err != nil {
		return nil, fmt.Errorf("failed to unmarshal proposal: %w", err)
	}
	return &proposal, nil
}

// PutProposalInBatch stages a proposal write into batch.
func (ps *ProposalStore) PutProposalInBatch(batch db.DatabaseBatch, proposal *types.Proposal) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	data, err := jsonx.Marshal(proposal)
	if err != nil {
		return fmt.Errorf("failed to marshal proposal: %w", err)
	}
	batch.Put(proposalKey(proposal.Wallet, proposal.Currency), data)
	return nil
}

// MustClose closes the underlying provider, panicking on failure
func (ps *ProposalStore) MustClose() {
	if err := ps.dbProvider.Close(); err != nil {
		panic(fmt.Sprintf("failed to close proposal store: %v", err))
	}
}
