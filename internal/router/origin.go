package router

import (
	"time"

	"github.com/ndn-lsr/nlsr/internal/lsa"
	"github.com/ndn-lsr/nlsr/internal/log"
	"github.com/ndn-lsr/nlsr/internal/wire"
)

// localOrigin is this router's own advertised content: the adjacency
// set and name prefixes it originates, and the per-type sequence
// counters that advance whenever any of it changes (spec §4.6
// publishLocalUpdate). Adjacency up/down and name-prefix add/remove
// both arrive from external collaborators (hello/liveness detection,
// local application registration, spec §1); the router's job is to
// fold them into a fresh, higher-sequenced local LSA.
type localOrigin struct {
	adj     map[string]lsa.Adjacency
	names   map[string]wire.Name
	mcNames map[string]wire.Name
	seq     lsa.SeqTriple
}

func newLocalOrigin() *localOrigin {
	return &localOrigin{
		adj:     make(map[string]lsa.Adjacency),
		names:   make(map[string]wire.Name),
		mcNames: make(map[string]wire.Name),
	}
}

// AddAdjacency records neighbor as reachable over faceUri at cost,
// replacing any prior record for the same neighbor, and republishes
// this router's AdjacencyLSA.
func (r *Router) AddAdjacency(neighbor wire.Name, faceUri string, cost uint64) {
	r.submit(func() {
		r.origin.adj[neighbor.TlvStr()] = lsa.Adjacency{Neighbor: neighbor.Clone(), FaceUri: faceUri, Cost: cost}
		r.publishAdjLsa()
	})
}

// RemoveAdjacency drops neighbor from the local adjacency set and
// republishes.
func (r *Router) RemoveAdjacency(neighbor wire.Name) {
	r.submit(func() {
		delete(r.origin.adj, neighbor.TlvStr())
		r.publishAdjLsa()
	})
}

// AddNamePrefix registers name as one this router originates (unicast
// unless multicast is set) and republishes this router's NameLSA.
func (r *Router) AddNamePrefix(name wire.Name, multicast bool) {
	r.submit(func() {
		if multicast {
			r.origin.mcNames[name.TlvStr()] = name.Clone()
		} else {
			r.origin.names[name.TlvStr()] = name.Clone()
		}
		r.publishNameLsa()
	})
}

// RemoveNamePrefix withdraws name and republishes.
func (r *Router) RemoveNamePrefix(name wire.Name, multicast bool) {
	r.submit(func() {
		if multicast {
			delete(r.origin.mcNames, name.TlvStr())
		} else {
			delete(r.origin.names, name.TlvStr())
		}
		r.publishNameLsa()
	})
}

// publishAdjLsa bumps the AdjacencyLSA sub-sequence, installs the
// refreshed AdjLsa into this router's own LSDB entry (triggering the
// existing install subscription's routing recompute), and persists the
// new combined sequence number. Must run on the event-loop goroutine.
func (r *Router) publishAdjLsa() {
	r.origin.seq = r.origin.seq.WithSeq(lsa.TypeAdjacency, r.origin.seq.For(lsa.TypeAdjacency)+1)

	adjs := make([]lsa.Adjacency, 0, len(r.origin.adj))
	for _, a := range r.origin.adj {
		adjs = append(adjs, a)
	}
	r.lsdb.Install(&lsa.AdjLsa{
		Base: lsa.Base{
			OriginRouter:   r.self,
			SeqNo:          r.origin.seq.For(lsa.TypeAdjacency),
			ExpirationTime: time.Now().Add(r.cfg.LsaRefreshTime()),
		},
		Adjacencies: adjs,
	})
	r.publishCombinedSeq()
}

// publishNameLsa bumps the NameLSA sub-sequence, installs the
// refreshed NameLsa, and persists the new combined sequence number.
// Must run on the event-loop goroutine.
func (r *Router) publishNameLsa() {
	r.origin.seq = r.origin.seq.WithSeq(lsa.TypeName, r.origin.seq.For(lsa.TypeName)+1)

	names := make([]wire.Name, 0, len(r.origin.names))
	for _, nm := range r.origin.names {
		names = append(names, nm)
	}
	mcNames := make([]wire.Name, 0, len(r.origin.mcNames))
	for _, nm := range r.origin.mcNames {
		mcNames = append(mcNames, nm)
	}

	r.lsdb.Install(lsa.NewNameLsa(lsa.Base{
		OriginRouter:   r.self,
		SeqNo:          r.origin.seq.For(lsa.TypeName),
		ExpirationTime: time.Now().Add(r.cfg.LsaRefreshTime()),
	}, names, mcNames))
	r.publishCombinedSeq()
}

func (r *Router) publishCombinedSeq() {
	if _, err := r.sync.PublishLocalUpdate(r.origin.seq.Pack()); err != nil {
		// SequenceFileIO (spec §7): logged, not fatal outside startup;
		// the next successful publish will still carry the correct seq.
		log.Error(r, "Failed to persist local sequence number", "err", err)
	}
}
