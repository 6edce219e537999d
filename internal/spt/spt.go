// Package spt implements the Shortest-Path-Tree calculator (C2, spec
// §4.3): a Dijkstra-variant single-source shortest-path computation
// over a dense adjacency matrix, plus the bottom-up pruneTree pass used
// to turn an SPT into a Steiner-like multicast tree.
package spt

import (
	"math"

	"github.com/ndn-lsr/nlsr/internal/pqueue"
	"github.com/ndn-lsr/nlsr/internal/topology"
)

// NoEdge marks the absence of an edge between two nodes in a Matrix.
const NoEdge int64 = -1

// Infinity is the distance assigned to an unreachable node.
const Infinity int64 = math.MaxInt64

// Matrix is a dense N x N adjacency matrix. Matrix[u][v] is the cost of
// the edge u->v, or NoEdge if none exists. The routing calculator
// builds this as the symmetric closure of all AdjacencyLSAs (spec §3).
type Matrix [][]int64

// NewMatrix constructs an n x n matrix with every entry set to NoEdge.
func NewMatrix(n int) Matrix {
	m := make(Matrix, n)
	for i := range m {
		row := make([]int64, n)
		for j := range row {
			row[j] = NoEdge
		}
		m[i] = row
	}
	return m
}

// Result is the output of Calculate: for every node finalized during
// the computation, its distance from root and the parent node on a
// shortest path to it.
type Result struct {
	Root      topology.NodeId
	Dist      []int64 // Dist[v] == Infinity if unreached
	Parent    []topology.NodeId // Parent[root] == root
	Finalized []bool
}

// Calculate runs the single-source shortest-path computation rooted at
// root over matrix. includedNodes, if non-empty, permits early exit:
// the loop stops once every node it names has been finalized, even if
// the work queue is not yet empty (spec §4.3).
//
// On each iteration the minimum-distance un-finalized node is popped
// from a priority queue and its neighbors are relaxed; since the queue
// has no decrease-key operation, a node may be pushed more than once,
// and stale entries are discarded by checking the Finalized flag on
// pop.
func Calculate(root topology.NodeId, matrix Matrix, includedNodes []topology.NodeId) *Result {
	n := len(matrix)
	res := &Result{
		Root:      root,
		Dist:      make([]int64, n),
		Parent:    make([]topology.NodeId, n),
		Finalized: make([]bool, n),
	}
	for v := range res.Dist {
		res.Dist[v] = Infinity
		res.Parent[v] = topology.NodeId(-1)
	}
	if n == 0 {
		return res
	}

	res.Dist[root] = 0
	res.Parent[root] = root

	pending := make(map[topology.NodeId]bool, len(includedNodes))
	for _, v := range includedNodes {
		pending[v] = true
	}
	delete(pending, root)

	pq := pqueue.New[topology.NodeId, int64]()
	pq.Push(root, 0)

	for pq.Len() > 0 {
		if len(pending) == 0 && len(includedNodes) > 0 {
			break
		}

		u := pq.Pop()
		if res.Finalized[u] {
			continue // stale entry
		}
		res.Finalized[u] = true
		delete(pending, u)

		for v, w := range matrix[u] {
			if w < 0 || v == int(u) {
				continue
			}
			nd := res.Dist[u] + w
			if nd < res.Dist[v] {
				res.Dist[v] = nd
				res.Parent[v] = u
				pq.Push(topology.NodeId(v), nd)
			}
		}
	}

	return res
}

// Children returns, for every finalized non-root node, the list of its
// direct children in the tree described by Parent.
func (r *Result) Children() map[topology.NodeId][]topology.NodeId {
	children := make(map[topology.NodeId][]topology.NodeId)
	for v := range r.Parent {
		if v == int(r.Root) || !r.Finalized[v] {
			continue
		}
		p := r.Parent[v]
		children[p] = append(children[p], topology.NodeId(v))
	}
	return children
}

// PruneTree removes, bottom-up and repeatedly until fixed point, every
// leaf of the tree (rooted at r.Root) whose node id is not in keep
// (spec §4.3, §4.2 "iteratively until fixed point"). It returns the
// surviving direct children of the root, which the multicast routing
// calculator uses as next-hop candidates.
func PruneTree(r *Result, keep map[topology.NodeId]bool) []topology.NodeId {
	children := r.Children()
	alive := make(map[topology.NodeId]bool, len(r.Finalized))
	for v, fin := range r.Finalized {
		if fin {
			alive[topology.NodeId(v)] = true
		}
	}

	for {
		pruned := false
		for v := range alive {
			if v == r.Root {
				continue
			}
			if len(children[v]) > 0 {
				continue // not a leaf
			}
			if keep[v] {
				continue // a real member, keep even as a leaf
			}
			// Leaf not in keep: remove it from its parent's child list.
			delete(alive, v)
			p := r.Parent[v]
			kids := children[p]
			for i, c := range kids {
				if c == v {
					kids = append(kids[:i], kids[i+1:]...)
					break
				}
			}
			children[p] = kids
			pruned = true
		}
		if !pruned {
			break
		}
	}

	return children[r.Root]
}
