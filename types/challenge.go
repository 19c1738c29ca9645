package types

import "math/big"

// ChallengePhase is the observational phase of a settlement challenge.
type ChallengePhase int

const (
	PhaseDispute ChallengePhase = iota
	PhaseClosed
)

func (p ChallengePhase) String() string {
	if p == PhaseDispute {
		return "dispute"
	}
	return "closed"
}

// ChallengeResult is the stored dispute outcome of a challenge.
type ChallengeResult int

const (
	ResultUnknown ChallengeResult = iota
	ResultQualified
	ResultDisqualified
)

func (r ChallengeResult) String() string {
	switch r {
	case ResultQualified:
		return "qualified"
	case ResultDisqualified:
		return "disqualified"
	default:
		return "unknown"
	}
}

// CandidateType tags the kind of evidence that disqualified a challenge.
type CandidateType int

const (
	CandidateNone CandidateType = iota
	CandidateOrder
	CandidateTrade
	CandidatePayment
)

func (c CandidateType) String() string {
	switch c {
	case CandidateOrder:
		return "order"
	case CandidateTrade:
		return "trade"
	case CandidatePayment:
		return "payment"
	default:
		return "none"
	}
}

// ChallengeRecord is the per-wallet settlement challenge state. It is
// created by a start operation, mutated in place by disqualification and
// requalification, and never deleted.
type ChallengeRecord struct {
	Wallet         string          `json:"wallet"`
	Nonce          uint64          `json:"nonce"`
	ChallengeStart uint64          `json:"challenge_start"`
	Timeout        uint64          `json:"timeout"`
	Result         ChallengeResult `json:"result"`
	DriipType      DriipType       `json:"driip_type"`
	DriipIndex     uint64          `json:"driip_index"`
	CandidateType  CandidateType   `json:"candidate_type"`
	CandidateIndex uint64          `json:"candidate_index"`
	Challenger     string          `json:"challenger"`
}

// Expiration is the last block at which the challenge is still in dispute.
func (r *ChallengeRecord) Expiration() uint64 {
	return r.ChallengeStart + r.Timeout
}

// Expired reports whether the challenge window has closed at currentBlock.
// Closure is purely observational; nothing is stored.
func (r *ChallengeRecord) Expired(currentBlock uint64) bool {
	return currentBlock > r.Expiration()
}

// Phase derives the observational phase at currentBlock.
func (r *ChallengeRecord) Phase(currentBlock uint64) ChallengePhase {
	if r.Expired(currentBlock) {
		return PhaseClosed
	}
	return PhaseDispute
}

// Disqualification captures the evidence that disqualified a proposal.
type Disqualification struct {
	Challenger    string        `json:"challenger"`
	BlockNumber   uint64        `json:"block_number"`
	CandidateHash string        `json:"candidate_hash"`
	CandidateType CandidateType `json:"candidate_type"`
}

// Proposal is the per-(wallet, currency) state of a null settlement
// challenge: a proposal to stage an amount without a backing driip.
type Proposal struct {
	Wallet               string           `json:"wallet"`
	Nonce                uint64           `json:"nonce"`
	ReferenceBlockNumber uint64           `json:"reference_block_number"`
	ChallengeStart       uint64           `json:"challenge_start"`
	Timeout              uint64           `json:"timeout"`
	Status               ChallengeResult  `json:"status"`
	StageAmount          *big.Int         `json:"stage_amount"`
	TargetBalanceAmount  *big.Int         `json:"target_balance_amount"`
	Currency             Currency         `json:"currency"`
	BalanceReward        bool             `json:"balance_reward"`
	Disqualification     Disqualification `json:"disqualification"`
}

// Expiration is the last block at which the proposal is still in dispute.
func (p *Proposal) Expiration() uint64 {
	return p.ChallengeStart + p.Timeout
}

// Expired reports whether the proposal's window has closed at currentBlock.
func (p *Proposal) Expired(currentBlock uint64) bool {
	return currentBlock > p.Expiration()
}
