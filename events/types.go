package events

import (
	"math/big"
	"time"

	"driipnet/types"
)

// EventType is an enum-like string type for settlement challenge events
type EventType string

const (
	EventStartChallengeFromTrade          EventType = "StartChallengeFromTrade"
	EventStartChallengeFromPayment        EventType = "StartChallengeFromPayment"
	EventChallengeByOrder                 EventType = "ChallengeByOrder"
	EventChallengeByTrade                 EventType = "ChallengeByTrade"
	EventChallengeByPayment               EventType = "ChallengeByPayment"
	EventUnchallengeOrderCandidateByTrade EventType = "UnchallengeOrderCandidateByTrade"
	EventStartProposal                    EventType = "StartProposal"
	EventStartProposalByProxy             EventType = "StartProposalByProxy"
	EventProposalDisqualified             EventType = "ProposalDisqualified"
)

// ChallengeEvent represents any event emitted by the dispute engine
type ChallengeEvent interface {
	Type() EventType
	Timestamp() time.Time
	Wallet() string
}

type baseEvent struct {
	wallet    string
	timestamp time.Time
}

func (e *baseEvent) Timestamp() time.Time { return e.timestamp }
func (e *baseEvent) Wallet() string       { return e.wallet }

// StartChallenge event when a driip settlement challenge opens
type StartChallenge struct {
	baseEvent
	eventType EventType
	nonce     uint64
}

func NewStartChallengeFromTrade(wallet string, nonce uint64) *StartChallenge {
	return &StartChallenge{
		baseEvent: baseEvent{wallet: wallet, timestamp: time.Now()},
		eventType: EventStartChallengeFromTrade,
		nonce:     nonce,
	}
}

func NewStartChallengeFromPayment(wallet string, nonce uint64) *StartChallenge {
	return &StartChallenge{
		baseEvent: baseEvent{wallet: wallet, timestamp: time.Now()},
		eventType: EventStartChallengeFromPayment,
		nonce:     nonce,
	}
}

func (e *StartChallenge) Type() EventType { return e.eventType }
func (e *StartChallenge) Nonce() uint64   { return e.nonce }

// Disqualification event when a candidate disqualifies a challenge
type Disqualification struct {
	baseEvent
	eventType      EventType
	candidateIndex uint64
	challenger     string
}

func NewChallengeByOrder(wallet string, candidateIndex uint64, challenger string) *Disqualification {
	return newDisqualification(EventChallengeByOrder, wallet, candidateIndex, challenger)
}

func NewChallengeByTrade(wallet string, candidateIndex uint64, challenger string) *Disqualification {
	return newDisqualification(EventChallengeByTrade, wallet, candidateIndex, challenger)
}

func NewChallengeByPayment(wallet string, candidateIndex uint64, challenger string) *Disqualification {
	return newDisqualification(EventChallengeByPayment, wallet, candidateIndex, challenger)
}

func newDisqualification(eventType EventType, wallet string, candidateIndex uint64, challenger string) *Disqualification {
	return &Disqualification{
		baseEvent:      baseEvent{wallet: wallet, timestamp: time.Now()},
		eventType:      eventType,
		candidateIndex: candidateIndex,
		challenger:     challenger,
	}
}

func (e *Disqualification) Type() EventType        { return e.eventType }
func (e *Disqualification) CandidateIndex() uint64 { return e.candidateIndex }
func (e *Disqualification) Challenger() string     { return e.challenger }

// Requalification event when an order-candidate disqualification is
// reversed
type Requalification struct {
	baseEvent
	unchallenger string
}

func NewUnchallengeOrderCandidateByTrade(wallet string, unchallenger string) *Requalification {
	return &Requalification{
		baseEvent:    baseEvent{wallet: wallet, timestamp: time.Now()},
		unchallenger: unchallenger,
	}
}

func (e *Requalification) Type() EventType      { return EventUnchallengeOrderCandidateByTrade }
func (e *Requalification) Unchallenger() string { return e.unchallenger }

// StartProposal event when a null settlement proposal opens
type StartProposal struct {
	baseEvent
	eventType   EventType
	stageAmount *big.Int
	currency    types.Currency
}

func NewStartProposal(wallet string, stageAmount *big.Int, currency types.Currency) *StartProposal {
	return &StartProposal{
		baseEvent:   baseEvent{wallet: wallet, timestamp: time.Now()},
		eventType:   EventStartProposal,
		stageAmount: stageAmount,
		currency:    currency,
	}
}

func NewStartProposalByProxy(wallet string, stageAmount *big.Int, currency types.Currency) *StartProposal {
	return &StartProposal{
		baseEvent:   baseEvent{wallet: wallet, timestamp: time.Now()},
		eventType:   EventStartProposalByProxy,
		stageAmount: stageAmount,
		currency:    currency,
	}
}

func (e *StartProposal) Type() EventType          { return e.eventType }
func (e *StartProposal) StageAmount() *big.Int    { return e.stageAmount }
func (e *StartProposal) Currency() types.Currency { return e.currency }

// ProposalDisqualified event when a payment candidate disqualifies a null
// settlement proposal
type ProposalDisqualified struct {
	baseEvent
	currency      types.Currency
	candidateHash string
	challenger    string
}

func NewProposalDisqualified(wallet string, currency types.Currency, candidateHash, challenger string) *ProposalDisqualified {
	return &ProposalDisqualified{
		baseEvent:     baseEvent{wallet: wallet, timestamp: time.Now()},
		currency:      currency,
		candidateHash: candidateHash,
		challenger:    challenger,
	}
}

func (e *ProposalDisqualified) Type() EventType          { return EventProposalDisqualified }
func (e *ProposalDisqualified) Currency() types.Currency { return e.currency }
func (e *ProposalDisqualified) CandidateHash() string    { return e.candidateHash }
func (e *ProposalDisqualified) Challenger() string       { return e.challenger }
