// Package fib implements the FIB Projector (C7, spec §4.5): it takes
// the next-hop lists NPT computes for each name prefix and pushes them
// to the forwarder's FIB, reconciling idempotently on every call and
// retrying failed forwarder commands with bounded exponential backoff,
// adapted from the reference repo's NFD management thread and
// mark-and-sweep FIB merge (dv/nfdc/nfdc.go, dv/table/fib.go).
package fib

import (
	"time"

	"github.com/ndn-lsr/nlsr/internal/log"
	"github.com/ndn-lsr/nlsr/internal/npt"
	"github.com/ndn-lsr/nlsr/internal/wire"
)

// Forwarder is the subset of NFD's RIB management API the projector
// drives. A concrete implementation talks to the local forwarder over
// its management protocol; tests supply a fake.
type Forwarder interface {
	Register(name wire.Name, faceUri string, cost uint64) error
	Unregister(name wire.Name, faceUri string) error
}

// FailureHandler is invoked when a command exhausts its retry budget,
// for telemetry/alerting. May be nil.
type FailureHandler func(name wire.Name, faceUri string, register bool, err error)

const (
	maxAttempts = 3
	// retryBackoff is the base delay; each retry doubles it
	// (retryBackoff << attempt), per spec §4.5's exponential backoff.
	retryBackoff = 100 * time.Millisecond
)

type route struct {
	faceUri string
	cost    uint64
}

// Projector is the FIB Projector. It is safe to drive from a single
// goroutine, matching the single-threaded cooperative event-loop model
// (spec §5); forwarder commands are executed synchronously in Update/
// Remove, with bounded retry, rather than queued to a worker thread,
// since spec §4.5 calls for idempotent reconciliation on every push
// rather than fire-and-forget asynchronous commands.
type Projector struct {
	fw       Forwarder
	onFail   FailureHandler
	sleep    func(time.Duration)
	routes   map[string]map[string]route // name key -> faceUri -> route
	marked   map[string]bool
}

// Option configures a Projector.
type Option func(*Projector)

// WithFailureHandler attaches a callback invoked when a command
// exhausts its retries.
func WithFailureHandler(fn FailureHandler) Option {
	return func(p *Projector) { p.onFail = fn }
}

// WithSleep overrides the retry backoff sleep, for deterministic
// tests.
func WithSleep(sleep func(time.Duration)) Option {
	return func(p *Projector) { p.sleep = sleep }
}

// New constructs a Projector driving fw.
func New(fw Forwarder, opts ...Option) *Projector {
	p := &Projector{
		fw:     fw,
		sleep:  time.Sleep,
		routes: make(map[string]map[string]route),
		marked: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Projector) String() string { return "fib" }

// Size returns the number of name prefixes currently projected.
func (p *Projector) Size() int { return len(p.routes) }

// Update projects the next-hop list for name (spec §4.5): existing
// faces not present in nextHops are unregistered, faces present in
// nextHops are (re)registered if new or changed, and faces unchanged
// from the last call are left untouched, so a router restart of the
// forwarder's RIB doesn't thrash on every routing recompute.
func (p *Projector) Update(name wire.Name, nextHops []npt.NextHop) {
	key := name.TlvStr()
	old := p.routes[key]
	next := make(map[string]route, len(nextHops))
	for _, nh := range nextHops {
		next[nh.FaceUri] = route{faceUri: nh.FaceUri, cost: nh.Cost}
	}

	for faceUri := range old {
		if _, keep := next[faceUri]; !keep {
			p.exec(name, faceUri, 0, false)
		}
	}
	for faceUri, r := range next {
		if o, existed := old[faceUri]; existed && o.cost == r.cost {
			continue
		}
		p.exec(name, faceUri, r.cost, true)
	}

	if len(next) > 0 {
		p.routes[key] = next
	} else {
		delete(p.routes, key)
	}
}

// Remove withdraws every face currently registered for name.
func (p *Projector) Remove(name wire.Name) {
	p.Update(name, nil)
}

func (p *Projector) exec(name wire.Name, faceUri string, cost uint64, register bool) {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if register {
			err = p.fw.Register(name, faceUri, cost)
		} else {
			err = p.fw.Unregister(name, faceUri)
		}
		if err == nil {
			return
		}
		log.Error(p, "Forwarder command failed", "err", err, "attempt", attempt,
			"name", name.String(), "face", faceUri, "register", register)
		if attempt < maxAttempts-1 {
			p.sleep(retryBackoff << attempt)
		}
	}
	if p.onFail != nil {
		p.onFail(name, faceUri, register, err)
	}
}

// MarkH marks name as present in this reconciliation pass (spec §4.5
// mark-and-sweep, adapted from dv/table/fib.go's MarkH/UnmarkAll/
// RemoveUnmarked).
func (p *Projector) MarkH(name wire.Name) {
	p.marked[name.TlvStr()] = true
}

// UnmarkAll clears every mark, starting a new reconciliation pass.
func (p *Projector) UnmarkAll() {
	for k := range p.marked {
		delete(p.marked, k)
	}
}

// RemoveUnmarked withdraws every currently projected prefix that
// wasn't marked during the current pass (e.g. a prefix NPT no longer
// has any entry for, but which Update/Remove was never explicitly
// called for).
func (p *Projector) RemoveUnmarked() {
	for key, faces := range p.routes {
		if p.marked[key] {
			continue
		}
		for faceUri := range faces {
			name, err := wire.NameFromTlvStr(key)
			if err != nil {
				continue
			}
			p.exec(name, faceUri, 0, false)
		}
		delete(p.routes, key)
	}
}
