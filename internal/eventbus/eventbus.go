// Package eventbus implements the single in-process typed event bus
// called for by the design notes (spec §9) to replace the callback
// signals (AfterRoutingChange, AfterLsdbModified) of the source this
// core is modeled on. A consumer subscribes once at construction and
// unsubscribes at shutdown instead of wiring ad-hoc callbacks between
// components.
package eventbus

import (
	"slices"
	"sync"
)

// Bus fans a single event type out to its subscribers, in subscription
// order. The LSDB owns one Bus for its Event type, which the router
// subscribes to at construction and forwards to the NPT; routing
// changes are not carried on a Bus, the router hands them to the NPT
// directly after each recomputation.
type Bus[E any] struct {
	mu   sync.Mutex
	subs map[int]func(E)
	next int
}

// New constructs an empty Bus.
func New[E any]() *Bus[E] {
	return &Bus[E]{subs: make(map[int]func(E))}
}

// Subscription identifies a single subscribe call, used to unsubscribe.
type Subscription int

// Subscribe registers fn to be called for every future Publish. It
// returns a Subscription handle for Unsubscribe.
func (b *Bus[E]) Subscribe(fn func(E)) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs[id] = fn
	return Subscription(id)
}

// Unsubscribe removes a previously registered subscription.
func (b *Bus[E]) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, int(sub))
}

// Publish delivers event to every current subscriber. The scheduling
// model (spec §5) is single-threaded cooperative, so Publish calls
// subscribers synchronously and in the calling goroutine: there is no
// mutation between suspension points, and ordering between the LSDB and
// routing-change events is whatever order the caller publishes them in.
func (b *Bus[E]) Publish(event E) {
	b.mu.Lock()
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	subs := make([]func(E), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, b.subs[id])
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(event)
	}
}
