// Package events holds the in-memory outbox that decouples event
// production from delivery: use cases stage events while their
// transaction is open, and the caller drains the outbox to the
// dispatcher only after a successful commit. A rolled-back transaction
// simply drops the outbox, so subscribers never see an event for a
// change that did not land.
package events

import "github.com/jsmuster/isstrack/internal/domain"

// Outbox buffers domain events produced during one use-case transaction.
// The zero value is ready to use. Not safe for concurrent use; each
// request owns its outbox.
type Outbox struct {
	events []domain.Event
}

// Add stages an event for post-commit delivery.
func (o *Outbox) Add(e domain.Event) {
	o.events = append(o.events, e)
}

// Drain returns the staged events in order and empties the outbox.
func (o *Outbox) Drain() []domain.Event {
	evs := o.events
	o.events = nil
	return evs
}

// Len reports the number of staged events.
func (o *Outbox) Len() int { return len(o.events) }
