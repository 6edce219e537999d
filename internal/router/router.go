// Package router wires the core components (C1-C7) together into the
// single-threaded cooperative event loop described in spec §5: one
// goroutine drains a queue of closures in submission order, which
// gives the required ordering guarantee that a pending LSDB event
// drains before a routing recomputation it triggered. Constructed the
// way the reference repo's executor assembles its router (dv/cmd/
// executor.go NewDvExecutor/Start/Stop).
package router

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ndn-lsr/nlsr/internal/config"
	"github.com/ndn-lsr/nlsr/internal/fib"
	"github.com/ndn-lsr/nlsr/internal/lsa"
	"github.com/ndn-lsr/nlsr/internal/lsastore"
	"github.com/ndn-lsr/nlsr/internal/lsdb"
	"github.com/ndn-lsr/nlsr/internal/log"
	"github.com/ndn-lsr/nlsr/internal/npt"
	"github.com/ndn-lsr/nlsr/internal/routing"
	"github.com/ndn-lsr/nlsr/internal/syncsvc"
	"github.com/ndn-lsr/nlsr/internal/wire"
)

// Status is a snapshot of daemon-wide counters, modeled on the
// reference tool's status introspection (tools/dvc/dvc_status.go).
type Status struct {
	RouterName   string
	NRibEntries  int
	NFibEntries  int
	NAdjacencies int
}

// Router is the assembled daemon: LSDB, NPT, FIB projector, sync
// handler, and the routing recomputation loop, all driven from a
// single event-loop goroutine.
type Router struct {
	cfg     *config.Config
	self    wire.Name
	store   *lsastore.Store
	lsdb    *lsdb.Lsdb
	fibProj *fib.Projector
	npt     *npt.Npt
	sync    *syncsvc.Service
	cache   *routeCacheHolder
	origin  *localOrigin

	loop    chan func()
	quit    chan struct{}
	stopped atomic.Bool
}

// New constructs a Router from cfg. cfg.Parse must already have
// succeeded. fw talks to the external forwarder; fetcher performs
// LSA fetches over the sync/transport layer named an external
// collaborator in spec §1.
func New(cfg *config.Config, fw fib.Forwarder, fetcher syncsvc.Fetcher, seqPath string) (*Router, error) {
	store, err := lsastore.Open("")
	if err != nil {
		return nil, fmt.Errorf("failed to open lsa store: %w", err)
	}

	self := cfg.RouterName()
	r := &Router{
		cfg:    cfg,
		self:   self,
		store:  store,
		lsdb:   lsdb.New(lsdb.WithStore(store)),
		cache:  &routeCacheHolder{},
		origin: newLocalOrigin(),
		loop:   make(chan func(), 256),
		quit:   make(chan struct{}),
	}

	r.fibProj = fib.New(fw, fib.WithFailureHandler(func(name wire.Name, faceUri string, register bool, err error) {
		log.Error(r, "FIB command exhausted retries", "name", name.String(), "face", faceUri, "register", register, "err", err)
	}))
	r.npt = npt.New(self, r.fibProj, r.cache, r.cache)
	r.sync = syncsvc.New(self, r.lsdb, fetcher, seqPath)

	seq, err := r.sync.LoadLocalSeq()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to read sequence file: %w", err)
	}
	r.origin.seq = lsa.UnpackSeqTriple(seq)

	r.lsdb.Subscribe(func(ev lsdb.Event) {
		r.submit(func() {
			r.npt.OnLsdbEvent(ev)
			if ev.Lsa.LsaType() == lsa.TypeAdjacency {
				r.recompute()
			}
		})
	})

	return r, nil
}

func (r *Router) String() string { return "nlsrd" }

// Start runs the event loop until Stop is called. It blocks, like the
// reference router's Start (dv/dv/router.go pattern).
func (r *Router) Start() {
	for {
		select {
		case fn := <-r.loop:
			fn()
		case <-r.quit:
			return
		}
	}
}

// Stop shuts down the event loop and releases process-wide resources
// (spec §9: the sequence file and forwarder face are scoped resources
// released on every exit path).
func (r *Router) Stop() {
	r.stopped.Store(true)
	close(r.quit)
	if r.store != nil {
		r.store.Close()
	}
}

func (r *Router) submit(fn func()) {
	select {
	case r.loop <- fn:
	case <-r.quit:
	}
}

// InstallLsa submits a freshly fetched or locally generated LSA to the
// LSDB, from the event-loop goroutine.
func (r *Router) InstallLsa(ad lsa.Lsa) {
	r.submit(func() { r.lsdb.Install(ad) })
}

// OnRemoteUpdate submits an incoming sync notification.
func (r *Router) OnRemoteUpdate(router wire.Name, combined uint64) {
	r.submit(func() { r.sync.OnRemoteUpdate(router, combined) })
}

// OnRemoteRemoval submits a sync-participant-removed notification.
func (r *Router) OnRemoteRemoval(router wire.Name) {
	r.submit(func() { r.sync.OnRemoteRemoval(router) })
}

// recompute rebuilds the adjacency graph and routing table from the
// current LSDB contents and feeds the result to NPT (spec §4.4
// onRoutingChange). Must run on the event-loop goroutine.
func (r *Router) recompute() {
	graph := routing.BuildGraph(r.self, r.lsdb.AdjLsas())
	for _, dropped := range graph.Dropped {
		log.Warn(r, "Dropping asymmetric adjacency", "from", dropped.From.String(), "to", dropped.To.String(), "cost", dropped.Cost)
	}
	rc := newRouteCache(r.self, graph)
	r.cache.set(rc)
	r.npt.OnRoutingChange(rc.Changes())
}

// ScheduleRecompute periodically re-runs the routing calculation, per
// the configured interval (spec §6 routingCalcInterval).
func (r *Router) ScheduleRecompute() {
	if r.stopped.Load() {
		return
	}
	r.submit(r.recompute)
	time.AfterFunc(r.cfg.RoutingCalcInterval(), r.ScheduleRecompute)
}

// Status returns a point-in-time snapshot of daemon counters.
func (r *Router) Status() Status {
	return Status{
		RouterName:   r.self.String(),
		NRibEntries:  r.npt.EntryCount(),
		NFibEntries:  r.fibProj.Size(),
		NAdjacencies: len(r.lsdb.AdjLsas()),
	}
}
