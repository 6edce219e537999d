// Package syncsvc implements the Sync Handler (C6, spec §4.6): it
// turns a remote router's combined sequence number into fetches for
// whichever individual LSA types actually advanced, and persists this
// router's own combined sequence number after a local LSA change via
// internal/seqfile, handing the value back for the sync notification. The fetch-retry shape is adapted
// from the reference repo's directed-advertisement fetch-on-notify
// flow (dv/dv/advert_data.go dataFetch/dataHandler).
package syncsvc

import (
	"time"

	"github.com/ndn-lsr/nlsr/internal/lsa"
	"github.com/ndn-lsr/nlsr/internal/lsdb"
	"github.com/ndn-lsr/nlsr/internal/log"
	"github.com/ndn-lsr/nlsr/internal/seqfile"
	"github.com/ndn-lsr/nlsr/internal/wire"
)

// Fetcher retrieves a specific (router, type) LSA at the given
// sub-sequence number, invoking cb exactly once with the decoded LSA
// or an error.
type Fetcher interface {
	Fetch(router wire.Name, typ lsa.Type, seq uint32, cb func(lsa.Lsa, error))
}

const fetchRetryDelay = 1 * time.Second

// Service is the Sync Handler.
type Service struct {
	self     wire.Name
	lsdb     *lsdb.Lsdb
	fetcher  Fetcher
	seqPath  string
	lastSeen map[string]lsa.SeqTriple // neighbor key -> last decomposed seq we've fetched
	sleep    func(time.Duration, func()) *time.Timer
}

// Option configures a Service.
type Option func(*Service)

// WithSleep overrides the retry scheduler, for deterministic tests.
func WithSleep(sleep func(time.Duration, func()) *time.Timer) Option {
	return func(s *Service) { s.sleep = sleep }
}

// New constructs a Service for router self, persisting its own
// sequence number to seqPath.
func New(self wire.Name, db *lsdb.Lsdb, fetcher Fetcher, seqPath string, opts ...Option) *Service {
	s := &Service{
		self:     self.Clone(),
		lsdb:     db,
		fetcher:  fetcher,
		seqPath:  seqPath,
		lastSeen: make(map[string]lsa.SeqTriple),
	}
	s.sleep = func(d time.Duration, f func()) *time.Timer { return time.AfterFunc(d, f) }
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) String() string { return "sync" }

// OnRemoteUpdate handles a sync notification that router has advanced
// to combined sequence number combined (spec §4.6). The combined value
// is decomposed into its three sub-counters; a fetch is issued only
// for the LSA types whose sub-counter actually advanced, each compared
// against both our own record of the last value fetched and the
// current LSDB entry, whichever is more current.
func (s *Service) OnRemoteUpdate(router wire.Name, combined uint64) {
	next := lsa.UnpackSeqTriple(combined)
	key := router.TlvStr()
	prev := s.lastSeen[key]

	s.maybeFetch(router, lsa.TypeName, prev.NameSeq, next.NameSeq)
	s.maybeFetch(router, lsa.TypeAdjacency, prev.AdjSeq, next.AdjSeq)
	s.maybeFetch(router, lsa.TypeCoordinate, prev.CorSeq, next.CorSeq)

	s.lastSeen[key] = next
}

func (s *Service) maybeFetch(router wire.Name, typ lsa.Type, prevSeq, nextSeq uint32) {
	if nextSeq == 0 || nextSeq <= prevSeq {
		return
	}
	if stored, ok := s.lsdb.Find(router, typ); ok && stored.GetBase().SeqNo >= uint64(nextSeq) {
		return
	}
	s.fetch(router, typ, nextSeq)
}

func (s *Service) fetch(router wire.Name, typ lsa.Type, seq uint32) {
	s.fetcher.Fetch(router, typ, seq, func(ad lsa.Lsa, err error) {
		if err != nil {
			log.Warn(s, "Failed to fetch LSA, retrying", "router", router.String(), "type", typ.String(), "err", err)
			s.sleep(fetchRetryDelay, func() { s.fetch(router, typ, seq) })
			return
		}
		s.lsdb.Install(ad)
	})
}

// OnRemoteRemoval handles a sync notification that router has left the
// sync group. Per the reference implementation's apparent behavior,
// this is treated as purely cosmetic: it does not remove anything from
// the LSDB, which relies solely on each LSA's own expiration timer to
// age out stale state (spec §4.6, §9 Open Questions). It is logged for
// operational visibility only.
func (s *Service) OnRemoteRemoval(router wire.Name) {
	log.Info(s, "Remote sync participant removed (cosmetic, no LSDB action)", "router", router.String())
}

// PublishLocalUpdate persists combined as this router's own current
// combined sequence number (spec §6) and returns it for inclusion in
// the next sync notification.
func (s *Service) PublishLocalUpdate(combined uint64) (uint64, error) {
	if err := seqfile.Write(s.seqPath, combined); err != nil {
		return 0, err
	}
	return combined, nil
}

// LoadLocalSeq reads this router's last-persisted combined sequence
// number at startup, returning 0 if none exists yet.
func (s *Service) LoadLocalSeq() (uint64, error) {
	return seqfile.Read(s.seqPath)
}
