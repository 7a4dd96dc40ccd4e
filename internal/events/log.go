// Package events implements the per-mission decision log: an append-only,
// in-memory record of every plan, prioritization, allocation, and state
// transition, queryable by id for the explainability surface and
// streamable live over the façade's websocket.
package events

import (
	"sync"

	"github.com/google/uuid"

	sharedevents "github.com/disasterresponse/adrie-core/shared/events"
)

// Subscriber receives every event appended after it subscribes.
type Subscriber chan *sharedevents.BaseEvent

// maxEntries bounds the decision log to the most recent entries per
// mission, so a long-running mission's event history can't grow without
// bound.
const maxEntries = 500

// Log is one mission's append-only, ring-bounded decision log.
type Log struct {
	mu      sync.RWMutex
	entries []*sharedevents.BaseEvent
	byID    map[uuid.UUID]*sharedevents.BaseEvent
	subs    map[chan *sharedevents.BaseEvent]struct{}
}

// NewLog builds an empty decision log.
func NewLog() *Log {
	return &Log{
		byID: make(map[uuid.UUID]*sharedevents.BaseEvent),
		subs: make(map[chan *sharedevents.BaseEvent]struct{}),
	}
}

// Append records ev and fans it out to any live subscribers. Slow or
// gone subscribers never block the append: delivery is best-effort via a
// non-blocking send.
func (l *Log) Append(ev *sharedevents.BaseEvent) {
	l.mu.Lock()
	l.entries = append(l.entries, ev)
	l.byID[ev.ID] = ev
	if len(l.entries) > maxEntries {
		dropped := l.entries[:len(l.entries)-maxEntries]
		l.entries = l.entries[len(l.entries)-maxEntries:]
		for _, old := range dropped {
			delete(l.byID, old.ID)
		}
	}
	subs := make([]chan *sharedevents.BaseEvent, 0, len(l.subs))
	for ch := range l.subs {
		subs = append(subs, ch)
	}
	l.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Get returns the decision record with the given id, if any.
func (l *Log) Get(id uuid.UUID) (*sharedevents.BaseEvent, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ev, ok := l.byID[id]
	return ev, ok
}

// All returns a snapshot of every event recorded so far, oldest first.
func (l *Log) All() []*sharedevents.BaseEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*sharedevents.BaseEvent, len(l.entries))
	copy(out, l.entries)
	return out
}

// Subscribe registers a channel to receive every future Append. Callers
// must call Unsubscribe when done to avoid leaking the channel.
func (l *Log) Subscribe() chan *sharedevents.BaseEvent {
	ch := make(chan *sharedevents.BaseEvent, 32)
	l.mu.Lock()
	l.subs[ch] = struct{}{}
	l.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a channel previously returned by
// Subscribe.
func (l *Log) Unsubscribe(ch chan *sharedevents.BaseEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.subs[ch]; ok {
		delete(l.subs, ch)
		close(ch)
	}
}
