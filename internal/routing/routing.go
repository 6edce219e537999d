// Package routing implements the Routing-Table Calculator (C3, spec
// §4.2): unicast next-hop computation with equal-cost multi-path, and
// multicast tree computation built on top of the SPT calculator (C2).
package routing

import (
	"cmp"
	"slices"

	"github.com/ndn-lsr/nlsr/internal/lsa"
	"github.com/ndn-lsr/nlsr/internal/spt"
	"github.com/ndn-lsr/nlsr/internal/topology"
	"github.com/ndn-lsr/nlsr/internal/wire"
)

// NextHop is one face/cost pair in a RoutingTableEntry's next-hop list.
type NextHop struct {
	FaceUri string
	Cost    uint64
}

// Entry is the computed next-hop list for one destination router
// (spec §3, RoutingTableEntry).
type Entry struct {
	Destination wire.Name
	NextHops    []NextHop // sorted ascending cost, ties by ascending FaceUri
}

// AsymmetricEdge records a one-way adjacency dropped from the graph
// because the reverse direction was missing or advertised a different
// cost (spec §4.1, §7: TopologyInconsistent, logged, not fatal).
type AsymmetricEdge struct {
	From, To wire.Name
	Cost     uint64
}

// Graph is the symmetric-closure adjacency graph built from the
// current set of AdjacencyLSAs (spec §3).
type Graph struct {
	Topo      *topology.Map
	Matrix    spt.Matrix
	RootFaces map[topology.NodeId]string // direct neighbors of root -> face URI
	Dropped   []AsymmetricEdge
}

// BuildGraph constructs the Topology Map and symmetric adjacency
// matrix from the current AdjacencyLSAs. adjLsas must include root's
// own AdjLsa if present. An edge u-v with cost c exists iff u's LSA
// lists v with cost c AND v's LSA lists u with the same cost; otherwise
// it is a one-way adjacency and is dropped (spec §3, §7).
func BuildGraph(root wire.Name, adjLsas map[string]*lsa.AdjLsa) *Graph {
	topo := topology.New()
	rootId := topo.Add(root)

	for _, a := range adjLsas {
		topo.Add(a.Base.OriginRouter)
		for _, adj := range a.Adjacencies {
			topo.Add(adj.Neighbor)
		}
	}

	n := topo.Size()
	matrix := spt.NewMatrix(n)
	rootFaces := make(map[topology.NodeId]string)
	var dropped []AsymmetricEdge

	seen := make(map[[2]topology.NodeId]bool)

	for _, a := range adjLsas {
		u, ok := topo.Id(a.Base.OriginRouter)
		if !ok {
			continue
		}
		for _, adj := range a.Adjacencies {
			v, ok := topo.Id(adj.Neighbor)
			if !ok {
				continue
			}
			key := [2]topology.NodeId{u, v}
			if u > v {
				key = [2]topology.NodeId{v, u}
			}
			if seen[key] {
				continue
			}
			seen[key] = true

			reverse := findAdjacency(adjLsas, adj.Neighbor, a.Base.OriginRouter)
			if reverse == nil || reverse.Cost != adj.Cost {
				dropped = append(dropped, AsymmetricEdge{
					From: a.Base.OriginRouter,
					To:   adj.Neighbor,
					Cost: adj.Cost,
				})
				continue
			}

			matrix[u][v] = int64(adj.Cost)
			matrix[v][u] = int64(adj.Cost)

			if u == rootId {
				rootFaces[v] = adj.FaceUri
			}
			if v == rootId {
				rootFaces[u] = reverse.FaceUri
			}
		}
	}

	return &Graph{Topo: topo, Matrix: matrix, RootFaces: rootFaces, Dropped: dropped}
}

func findAdjacency(adjLsas map[string]*lsa.AdjLsa, origin, neighbor wire.Name) *lsa.Adjacency {
	a, ok := adjLsas[origin.TlvStr()]
	if !ok {
		return nil
	}
	for i := range a.Adjacencies {
		if a.Adjacencies[i].Neighbor.Equal(neighbor) {
			return &a.Adjacencies[i]
		}
	}
	return nil
}

// ComputeUnicast computes, for every node reachable from root other
// than root itself, the full equal-cost next-hop list (spec §4.2).
//
// It runs a plain single-source shortest-path pass to get final
// distances, then a second pass over the resulting shortest-path DAG
// (edges (u,v) with dist[u]+w(u,v)==dist[v]) to propagate, from each
// direct neighbor of root, which destinations it is a valid first hop
// towards. This is the "any monotonic relaxation-based algorithm"
// spec §4.2 allows, specialized to recover every tied first hop rather
// than the single parent a plain SPT keeps.
func (g *Graph) ComputeUnicast(root topology.NodeId) []Entry {
	base := spt.Calculate(root, g.Matrix, nil)
	n := len(g.Matrix)

	// For every direct neighbor `n` of root whose edge is tight (i.e. on
	// some shortest path), flood along the shortest-path DAG to find
	// every destination reachable via `n`.
	firstHop := make([]map[topology.NodeId]bool, n) // firstHop[v] = set of root-neighbors that reach v optimally
	for v := range firstHop {
		firstHop[v] = make(map[topology.NodeId]bool)
	}

	for neighbor := range g.RootFaces {
		if base.Dist[neighbor] == spt.Infinity {
			continue
		}
		if int64(g.Matrix[root][neighbor])+0 != base.Dist[neighbor] {
			continue // edge not tight: shortest path to neighbor doesn't go direct
		}
		floodFromNeighbor(g.Matrix, base.Dist, neighbor, firstHop)
	}

	entries := make([]Entry, 0, n)
	for v := 0; v < n; v++ {
		id := topology.NodeId(v)
		if id == root || base.Dist[v] == spt.Infinity {
			continue
		}

		nhSet := firstHop[v]
		if len(nhSet) == 0 {
			continue
		}

		nhs := make([]NextHop, 0, len(nhSet))
		for neighbor := range nhSet {
			nhs = append(nhs, NextHop{
				FaceUri: g.RootFaces[neighbor],
				Cost:    uint64(base.Dist[v]),
			})
		}
		sortNextHops(nhs)

		entries = append(entries, Entry{
			Destination: g.Topo.Name(id),
			NextHops:    nhs,
		})
	}

	return entries
}

// floodFromNeighbor marks, in firstHop, every node reachable from
// neighbor by following only shortest-path-DAG edges (monotonically
// increasing distance), recording neighbor as one of its valid first
// hops.
func floodFromNeighbor(matrix spt.Matrix, dist []int64, neighbor topology.NodeId, firstHop []map[topology.NodeId]bool) {
	visited := make(map[topology.NodeId]bool)
	queue := []topology.NodeId{neighbor}
	visited[neighbor] = true
	firstHop[neighbor][neighbor] = true

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		for v, w := range matrix[u] {
			if w < 0 {
				continue
			}
			vid := topology.NodeId(v)
			if dist[u]+w != dist[vid] || dist[vid] <= dist[u] {
				continue // not a tight forward edge
			}
			firstHop[vid][neighbor] = true
			if !visited[vid] {
				visited[vid] = true
				queue = append(queue, vid)
			}
		}
	}
}

func sortNextHops(nhs []NextHop) {
	slices.SortFunc(nhs, func(a, b NextHop) int {
		if c := cmp.Compare(a.Cost, b.Cost); c != 0 {
			return c
		}
		return cmp.Compare(a.FaceUri, b.FaceUri)
	})
}

// ComputeMulticast computes the next hops toward a multicast group with
// the given member set (spec §4.2): the SPT rooted at self including
// self∪members, pruned (C2's pruneTree) until every leaf is a member,
// with the surviving direct children of self mapped to their faces.
func (g *Graph) ComputeMulticast(root topology.NodeId, members []topology.NodeId) []NextHop {
	keep := make(map[topology.NodeId]bool, len(members)+1)
	keep[root] = true
	included := make([]topology.NodeId, 0, len(members)+1)
	included = append(included, root)
	for _, m := range members {
		if !keep[m] {
			keep[m] = true
			included = append(included, m)
		}
	}

	result := spt.Calculate(root, g.Matrix, included)
	children := spt.PruneTree(result, keep)

	nhs := make([]NextHop, 0, len(children))
	for _, c := range children {
		uri, ok := g.RootFaces[c]
		if !ok {
			continue
		}
		nhs = append(nhs, NextHop{FaceUri: uri, Cost: uint64(result.Dist[c])})
	}
	sortNextHops(nhs)
	return nhs
}
