package events

import (
	"sync"

	"driipnet/monitoring"
)

// EventLog keeps an in-memory append-only history of published events so
// callers can inspect the most recent occurrence of a given type.
type EventLog struct {
	mu      sync.RWMutex
	entries []ChallengeEvent
}

func NewEventLog() *EventLog {
	return &EventLog{}
}

func (l *EventLog) Append(event ChallengeEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, event)
}

func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// LastOfType returns the most recent event of the given type, or nil.
func (l *EventLog) LastOfType(eventType EventType) ChallengeEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].Type() == eventType {
			return l.entries[i]
		}
	}
	return nil
}

// LastForWallet returns the most recent event concerning the wallet, or
// nil.
func (l *EventLog) LastForWallet(wallet string) ChallengeEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].Wallet() == wallet {
			return l.entries[i]
		}
	}
	return nil
}

// Recorder couples an event log with a bus so every emitted event is
// both recorded and fanned out.
type Recorder struct {
	log *EventLog
	bus *EventBus
}

func NewRecorder(log *EventLog, bus *EventBus) *Recorder {
	return &Recorder{log: log, bus: bus}
}

func (r *Recorder) Emit(event ChallengeEvent) {
	r.log.Append(event)
	r.bus.Publish(event)
	observe(event)
}

func observe(event ChallengeEvent) {
	switch event.Type() {
	case EventStartChallengeFromTrade:
		monitoring.IncreaseChallengesStarted("trade")
	case EventStartChallengeFromPayment:
		monitoring.IncreaseChallengesStarted("payment")
	case EventChallengeByOrder:
		monitoring.IncreaseCandidatesAdmitted("order")
	case EventChallengeByTrade:
		monitoring.IncreaseCandidatesAdmitted("trade")
	case EventChallengeByPayment:
		monitoring.IncreaseCandidatesAdmitted("payment")
	case EventUnchallengeOrderCandidateByTrade:
		monitoring.IncreaseRequalifiedCount()
	case EventStartProposal:
		monitoring.IncreaseProposalsStarted("direct")
	case EventStartProposalByProxy:
		monitoring.IncreaseProposalsStarted("proxy")
	case EventProposalDisqualified:
		monitoring.IncreaseProposalsDisqualified()
	}
}

func (r *Recorder) Log() *EventLog { return r.log }
func (r *Recorder) Bus() *EventBus { return r.bus }
