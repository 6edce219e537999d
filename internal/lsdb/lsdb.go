// Package lsdb implements the Link-State Database (spec §4.1): the
// versioned, per-(originRouter,type) store of NameLSAs, AdjacencyLSAs,
// and CoordinateLSAs, with set-diff semantics on update and a typed
// event published for every install/update/removal.
package lsdb

import (
	"sync"
	"time"

	"github.com/ndn-lsr/nlsr/internal/eventbus"
	"github.com/ndn-lsr/nlsr/internal/lsa"
	"github.com/ndn-lsr/nlsr/internal/lsastore"
	"github.com/ndn-lsr/nlsr/internal/log"
	"github.com/ndn-lsr/nlsr/internal/wire"
)

// Status is the outcome of an Install call (spec §4.1).
type Status int

const (
	Installed Status = iota
	Updated
	Stale
	Rejected
)

func (s Status) String() string {
	switch s {
	case Installed:
		return "installed"
	case Updated:
		return "updated"
	case Stale:
		return "stale"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Kind distinguishes the three shapes an Event can take.
type Kind int

const (
	EventInstalled Kind = iota
	EventUpdated
	EventRemoved
)

// Event is delivered to every subscriber on every LSDB mutation (spec
// §4.1 subscribe; §9 event bus). For non-NameLsa advertisements the
// four name sets are always empty.
type Event struct {
	Lsa                            lsa.Lsa
	Kind                           Kind
	Add, Remove, McAdd, McRemove   []wire.Name
}

// Outcome is the result of an Install call.
type Outcome struct {
	Status Status
	Diff   lsa.NameDiff
}

type record struct {
	lsa   lsa.Lsa
	timer *time.Timer
}

// Lsdb is the link-state database. It owns every LSA record exclusively
// (spec §3 Ownership) and is safe for concurrent use, though the
// single-threaded event loop (spec §5) means calls are in practice
// serialized.
type Lsdb struct {
	mu      sync.Mutex
	entries map[lsa.Key]*record
	bus     *eventbus.Bus[Event]
	store   *lsastore.Store // optional raw-block cache, may be nil
	now     func() time.Time
	afterFunc func(time.Duration, func()) *time.Timer
}

// Option configures optional Lsdb behavior.
type Option func(*Lsdb)

// WithStore attaches a raw-block cache used to serve re-fetches without
// re-encoding (internal/lsastore).
func WithStore(s *lsastore.Store) Option {
	return func(l *Lsdb) { l.store = s }
}

// WithClock overrides the time source, for deterministic tests of
// expiry scheduling.
func WithClock(now func() time.Time, afterFunc func(time.Duration, func()) *time.Timer) Option {
	return func(l *Lsdb) {
		l.now = now
		l.afterFunc = afterFunc
	}
}

// New constructs an empty Lsdb.
func New(opts ...Option) *Lsdb {
	l := &Lsdb{
		entries: make(map[lsa.Key]*record),
		bus:     eventbus.New[Event](),
		now:     time.Now,
	}
	l.afterFunc = func(d time.Duration, f func()) *time.Timer { return time.AfterFunc(d, f) }
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Lsdb) String() string { return "lsdb" }

// Subscribe registers fn to be called for every future install, update,
// or removal.
func (l *Lsdb) Subscribe(fn func(Event)) eventbus.Subscription {
	return l.bus.Subscribe(fn)
}

// Unsubscribe removes a previously registered subscription.
func (l *Lsdb) Unsubscribe(sub eventbus.Subscription) {
	l.bus.Unsubscribe(sub)
}

// Install applies an incoming LSA (spec §4.1). The identity of an LSA
// is (OriginRouter, Type); an LSA with SeqNo not greater than the
// stored one is ignored (I2); a fresher LSA replaces the stored one,
// producing a diff for NameLsa.
func (l *Lsdb) Install(ad lsa.Lsa) Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	base := ad.GetBase()
	if len(base.OriginRouter) == 0 {
		log.Warn(l, "Rejected LSA with empty origin")
		return Outcome{Status: Rejected}
	}
	if !base.ExpirationTime.After(l.now()) {
		log.Warn(l, "Rejected already-expired LSA", "origin", base.OriginRouter.String())
		return Outcome{Status: Rejected}
	}

	key := lsa.KeyOf(base.OriginRouter, ad.LsaType())
	existing, ok := l.entries[key]

	if ok && base.SeqNo <= existing.lsa.GetBase().SeqNo {
		log.Debug(l, "Stale LSA", "origin", base.OriginRouter.String(), "seq", base.SeqNo)
		return Outcome{Status: Stale}
	}

	var outcome Outcome
	if !ok {
		outcome = Outcome{Status: Installed}
		if nameLsa, isName := ad.(*lsa.NameLsa); isName {
			outcome.Diff = nameLsa.Diff(nil)
		}
	} else {
		outcome = Outcome{Status: Updated}
		if nameLsa, isName := ad.(*lsa.NameLsa); isName {
			oldName, _ := existing.lsa.(*lsa.NameLsa)
			outcome.Diff = nameLsa.Diff(oldName)
		}
	}

	rec := &record{lsa: ad}
	l.entries[key] = rec
	l.scheduleExpiry(key, base.ExpirationTime)
	if existing != nil && existing.timer != nil {
		existing.timer.Stop()
	}

	if l.store != nil {
		l.store.Put(storeKey(key), ad.Encode().Join())
	}

	kind := EventInstalled
	if ok {
		kind = EventUpdated
	}
	l.bus.Publish(Event{
		Lsa:      ad,
		Kind:     kind,
		Add:      outcome.Diff.Add,
		Remove:   outcome.Diff.Remove,
		McAdd:    outcome.Diff.McAdd,
		McRemove: outcome.Diff.McRemove,
	})

	return outcome
}

// Remove deletes the stored LSA for (origin, typ), triggered by
// expiration or explicit withdrawal. It publishes a Removed event
// carrying the full prior name set, so NPT can diff against empty
// (spec §4.1).
func (l *Lsdb) Remove(origin wire.Name, typ lsa.Type) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.removeLocked(lsa.KeyOf(origin, typ))
}

func (l *Lsdb) removeLocked(key lsa.Key) bool {
	rec, ok := l.entries[key]
	if !ok {
		return false
	}
	delete(l.entries, key)
	if rec.timer != nil {
		rec.timer.Stop()
	}
	if l.store != nil {
		l.store.Delete(storeKey(key))
	}

	var remove, mcRemove []wire.Name
	if nameLsa, isName := rec.lsa.(*lsa.NameLsa); isName {
		remove = nameLsa.Names
		mcRemove = nameLsa.MulticastNames
	}

	l.bus.Publish(Event{
		Lsa:      rec.lsa,
		Kind:     EventRemoved,
		Remove:   remove,
		McRemove: mcRemove,
	})
	return true
}

// Find looks up the currently stored LSA for (origin, typ).
func (l *Lsdb) Find(origin wire.Name, typ lsa.Type) (lsa.Lsa, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.entries[lsa.KeyOf(origin, typ)]
	if !ok {
		return nil, false
	}
	return rec.lsa, true
}

// AdjLsas returns every currently stored AdjacencyLSA, keyed by origin
// router TlvStr, for use by the routing calculator.
func (l *Lsdb) AdjLsas() map[string]*lsa.AdjLsa {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]*lsa.AdjLsa)
	for key, rec := range l.entries {
		if key.Type != lsa.TypeAdjacency {
			continue
		}
		out[key.Origin] = rec.lsa.(*lsa.AdjLsa)
	}
	return out
}

// RawBlock returns the cached encoded TLV block for (origin, typ), if a
// store is attached and the block is cached; otherwise it re-encodes
// the stored LSA.
func (l *Lsdb) RawBlock(origin wire.Name, typ lsa.Type) ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := lsa.KeyOf(origin, typ)
	if l.store != nil {
		if raw, ok := l.store.Get(storeKey(key)); ok {
			return raw, true
		}
	}
	rec, ok := l.entries[key]
	if !ok {
		return nil, false
	}
	return rec.lsa.Encode().Join(), true
}

func (l *Lsdb) scheduleExpiry(key lsa.Key, deadline time.Time) {
	d := deadline.Sub(l.now())
	if d < 0 {
		d = 0
	}
	l.entries[key].timer = l.afterFunc(d, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		rec, ok := l.entries[key]
		if !ok || rec.lsa.GetBase().ExpirationTime.After(l.now()) {
			return // already replaced or rescheduled
		}
		log.Info(l, "LSA expired", "origin", key.Origin, "type", key.Type.String())
		l.removeLocked(key)
	})
}

func storeKey(key lsa.Key) string {
	return key.Type.String() + ":" + key.Origin
}
