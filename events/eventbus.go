package events

import (
	"sync"

	"github.com/google/uuid"

	"driipnet/logx"
)

const subscriberBufferSize = 50

// SubscriberID identifies a subscription for later removal
type SubscriberID string

type subscriber struct {
	id SubscriberID
	ch chan ChallengeEvent
}

// EventBus fans out challenge events to subscribers. Publishing never
// blocks: a subscriber with a full buffer misses the event.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]*subscriber
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]*subscriber),
	}
}

// Subscribe registers interest in the given event types and returns a
// receive channel together with the id needed to unsubscribe.
func (b *EventBus) Subscribe(eventTypes ...EventType) (SubscriberID, <-chan ChallengeEvent) {
	sub := &subscriber{
		id: SubscriberID(uuid.NewString()),
		ch: make(chan ChallengeEvent, subscriberBufferSize),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, et := range eventTypes {
		b.subscribers[et] = append(b.subscribers[et], sub)
	}
	return sub.id, sub.ch
}

// Unsubscribe removes the subscription and closes its channel.
func (b *EventBus) Unsubscribe(id SubscriberID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var closed *subscriber
	for et, subs := range b.subscribers {
		kept := subs[:0]
		for _, sub := range subs {
			if sub.id == id {
				closed = sub
				continue
			}
			kept = append(kept, sub)
		}
		b.subscribers[et] = kept
	}
	if closed != nil {
		close(closed.ch)
	}
}

// Publish delivers the event to every subscriber of its type.
func (b *EventBus) Publish(event ChallengeEvent) {
	b.mu.RLock()
	subs := b.subscribers[event.Type()]
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.ch <- event:
		default:
			logx.Warn("EVENTS", "subscriber buffer full, dropping", string(event.Type()), "for", event.Wallet())
		}
	}
}
