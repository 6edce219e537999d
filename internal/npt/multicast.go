package npt

import "github.com/ndn-lsr/nlsr/internal/wire"

// MulticastCalculator computes the next-hop list of the SPT-pruned
// multicast tree rooted at this router for a given member set (spec
// §4.2 ComputeMulticast). internal/routing.Graph is adapted to this
// interface by the router wiring layer, which also owns translating
// wire.Name members to topology.NodeId.
type MulticastCalculator interface {
	Multicast(members []wire.Name) []NextHop
}

// Group is a MulticastGroupEntry (spec §3): a named multicast group,
// its current member routers, and the tree derived from them.
type Group struct {
	Name    wire.Name
	Members map[string]wire.Name // origin key -> member name
	Tree    []NextHop
}

// MemberCount returns the number of routers currently in the group.
func (g *Group) MemberCount() int { return len(g.Members) }
