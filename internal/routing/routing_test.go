package routing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndn-lsr/nlsr/internal/lsa"
	"github.com/ndn-lsr/nlsr/internal/routing"
	"github.com/ndn-lsr/nlsr/internal/topology"
	"github.com/ndn-lsr/nlsr/internal/wire"
)

func nameOf(s string) wire.Name { return wire.NameFromStr(s) }

func adjLsa(origin string, adjs ...lsa.Adjacency) *lsa.AdjLsa {
	return &lsa.AdjLsa{
		Base:        lsa.Base{OriginRouter: nameOf(origin)},
		Adjacencies: adjs,
	}
}

// Triangle A-B-C: AB=5, AC=10, BC=17.
func triangleAdjLsas() map[string]*lsa.AdjLsa {
	a := adjLsa("/ndn/A",
		lsa.Adjacency{Neighbor: nameOf("/ndn/B"), FaceUri: "face://B", Cost: 5},
		lsa.Adjacency{Neighbor: nameOf("/ndn/C"), FaceUri: "face://C", Cost: 10},
	)
	b := adjLsa("/ndn/B",
		lsa.Adjacency{Neighbor: nameOf("/ndn/A"), FaceUri: "face://A-from-B", Cost: 5},
		lsa.Adjacency{Neighbor: nameOf("/ndn/C"), FaceUri: "face://C-from-B", Cost: 17},
	)
	c := adjLsa("/ndn/C",
		lsa.Adjacency{Neighbor: nameOf("/ndn/A"), FaceUri: "face://A-from-C", Cost: 10},
		lsa.Adjacency{Neighbor: nameOf("/ndn/B"), FaceUri: "face://B-from-C", Cost: 17},
	)
	return map[string]*lsa.AdjLsa{
		a.Base.OriginRouter.TlvStr(): a,
		b.Base.OriginRouter.TlvStr(): b,
		c.Base.OriginRouter.TlvStr(): c,
	}
}

func TestBuildGraphSymmetricClosure(t *testing.T) {
	g := routing.BuildGraph(nameOf("/ndn/A"), triangleAdjLsas())
	assert.Empty(t, g.Dropped)
	assert.Equal(t, 3, g.Topo.Size())
}

func TestBuildGraphDropsAsymmetricEdge(t *testing.T) {
	adjLsas := triangleAdjLsas()
	// Make B's view of the A-B cost disagree with A's.
	b := adjLsas[nameOf("/ndn/B").TlvStr()]
	b.Adjacencies[0].Cost = 999

	g := routing.BuildGraph(nameOf("/ndn/A"), adjLsas)
	require.Len(t, g.Dropped, 1)
	assert.True(t, g.Dropped[0].From.Equal(nameOf("/ndn/A")) || g.Dropped[0].From.Equal(nameOf("/ndn/B")))
}

func TestComputeMulticastTriangle(t *testing.T) {
	g := routing.BuildGraph(nameOf("/ndn/A"), triangleAdjLsas())
	rootId, ok := g.Topo.Id(nameOf("/ndn/A"))
	require.True(t, ok)
	bId, _ := g.Topo.Id(nameOf("/ndn/B"))
	cId, _ := g.Topo.Id(nameOf("/ndn/C"))

	nhs := g.ComputeMulticast(rootId, []topology.NodeId{bId, cId})
	uris := make([]string, len(nhs))
	for i, n := range nhs {
		uris[i] = n.FaceUri
	}
	assert.ElementsMatch(t, []string{"face://B", "face://C"}, uris)
}

// ECMP fixture: two equal-cost paths from root A to D, via B and via C.
func diamondAdjLsas() map[string]*lsa.AdjLsa {
	a := adjLsa("/ndn/A",
		lsa.Adjacency{Neighbor: nameOf("/ndn/B"), FaceUri: "face://B", Cost: 5},
		lsa.Adjacency{Neighbor: nameOf("/ndn/C"), FaceUri: "face://C", Cost: 5},
	)
	b := adjLsa("/ndn/B",
		lsa.Adjacency{Neighbor: nameOf("/ndn/A"), FaceUri: "face://A-b", Cost: 5},
		lsa.Adjacency{Neighbor: nameOf("/ndn/D"), FaceUri: "face://D-b", Cost: 5},
	)
	c := adjLsa("/ndn/C",
		lsa.Adjacency{Neighbor: nameOf("/ndn/A"), FaceUri: "face://A-c", Cost: 5},
		lsa.Adjacency{Neighbor: nameOf("/ndn/D"), FaceUri: "face://D-c", Cost: 5},
	)
	d := adjLsa("/ndn/D",
		lsa.Adjacency{Neighbor: nameOf("/ndn/B"), FaceUri: "face://B-d", Cost: 5},
		lsa.Adjacency{Neighbor: nameOf("/ndn/C"), FaceUri: "face://C-d", Cost: 5},
	)
	return map[string]*lsa.AdjLsa{
		a.Base.OriginRouter.TlvStr(): a,
		b.Base.OriginRouter.TlvStr(): b,
		c.Base.OriginRouter.TlvStr(): c,
		d.Base.OriginRouter.TlvStr(): d,
	}
}

func TestComputeUnicastECMP(t *testing.T) {
	g := routing.BuildGraph(nameOf("/ndn/A"), diamondAdjLsas())
	rootId, _ := g.Topo.Id(nameOf("/ndn/A"))

	entries := g.ComputeUnicast(rootId)

	var dEntry *routing.Entry
	for i := range entries {
		if entries[i].Destination.Equal(nameOf("/ndn/D")) {
			dEntry = &entries[i]
		}
	}
	require.NotNil(t, dEntry)
	require.Len(t, dEntry.NextHops, 2)
	for _, nh := range dEntry.NextHops {
		assert.Equal(t, uint64(10), nh.Cost)
	}
}

func TestComputeUnicastSkipsRootAndUnreachable(t *testing.T) {
	adjLsas := map[string]*lsa.AdjLsa{}
	a := adjLsa("/ndn/A", lsa.Adjacency{Neighbor: nameOf("/ndn/B"), FaceUri: "face://B", Cost: 1})
	b := adjLsa("/ndn/B", lsa.Adjacency{Neighbor: nameOf("/ndn/A"), FaceUri: "face://A", Cost: 1})
	adjLsas[a.Base.OriginRouter.TlvStr()] = a
	adjLsas[b.Base.OriginRouter.TlvStr()] = b

	g := routing.BuildGraph(nameOf("/ndn/A"), adjLsas)
	rootId, _ := g.Topo.Id(nameOf("/ndn/A"))
	entries := g.ComputeUnicast(rootId)

	for _, e := range entries {
		assert.False(t, e.Destination.Equal(nameOf("/ndn/A")))
	}
}
