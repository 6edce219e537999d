package router

import (
	"sync"

	"github.com/ndn-lsr/nlsr/internal/npt"
	"github.com/ndn-lsr/nlsr/internal/routing"
	"github.com/ndn-lsr/nlsr/internal/topology"
	"github.com/ndn-lsr/nlsr/internal/wire"
)

// routeCacheHolder gives Npt a stable RoutingTable/MulticastCalculator
// to hold onto across recomputations: Npt is constructed once with a
// pointer to the holder, and the Router swaps the underlying
// routeCache every time it rebuilds the graph.
type routeCacheHolder struct {
	mu  sync.Mutex
	cur *routeCache
}

func (h *routeCacheHolder) set(rc *routeCache) {
	h.mu.Lock()
	h.cur = rc
	h.mu.Unlock()
}

func (h *routeCacheHolder) get() *routeCache {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cur
}

func (h *routeCacheHolder) NextHops(router wire.Name) []npt.NextHop {
	if rc := h.get(); rc != nil {
		return rc.NextHops(router)
	}
	return nil
}

func (h *routeCacheHolder) Multicast(members []wire.Name) []npt.NextHop {
	if rc := h.get(); rc != nil {
		return rc.Multicast(members)
	}
	return nil
}

// routeCache adapts the most recently computed routing.Graph to the
// narrow RoutingTable and MulticastCalculator interfaces NPT depends
// on, translating between routing.NextHop and npt.NextHop and between
// wire.Name and topology.NodeId.
type routeCache struct {
	graph   *routing.Graph
	self    topology.NodeId
	byDest  map[string][]npt.NextHop
}

func newRouteCache(self wire.Name, graph *routing.Graph) *routeCache {
	rc := &routeCache{graph: graph, byDest: make(map[string][]npt.NextHop)}
	if id, ok := graph.Topo.Id(self); ok {
		rc.self = id
	}
	for _, entry := range graph.ComputeUnicast(rc.self) {
		rc.byDest[entry.Destination.TlvStr()] = convertHops(entry.NextHops)
	}
	return rc
}

func convertHops(in []routing.NextHop) []npt.NextHop {
	out := make([]npt.NextHop, len(in))
	for i, nh := range in {
		out[i] = npt.NextHop{FaceUri: nh.FaceUri, Cost: nh.Cost}
	}
	return out
}

// NextHops implements npt.RoutingTable.
func (rc *routeCache) NextHops(router wire.Name) []npt.NextHop {
	return rc.byDest[router.TlvStr()]
}

// Changes returns every destination's next-hop list, for feeding
// npt.Npt.OnRoutingChange after a recomputation.
func (rc *routeCache) Changes() []npt.RoutingChange {
	out := make([]npt.RoutingChange, 0, len(rc.byDest))
	for key, hops := range rc.byDest {
		name, err := wire.NameFromTlvStr(key)
		if err != nil {
			continue
		}
		out = append(out, npt.RoutingChange{Destination: name, NextHops: hops})
	}
	return out
}

// Multicast implements npt.MulticastCalculator.
func (rc *routeCache) Multicast(members []wire.Name) []npt.NextHop {
	ids := make([]topology.NodeId, 0, len(members))
	for _, m := range members {
		if id, ok := rc.graph.Topo.Id(m); ok {
			ids = append(ids, id)
		}
	}
	return convertHops(rc.graph.ComputeMulticast(rc.self, ids))
}
