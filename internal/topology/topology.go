// Package topology implements the Topology Map (C1): a bijection
// between router names and dense integer node ids, regenerated fresh
// for every routing computation (spec §3, §4.2).
package topology

import "github.com/ndn-lsr/nlsr/internal/wire"

// NodeId is a dense integer id in [0, N) assigned to one router name
// for the lifetime of a single routing computation.
type NodeId int

// Map is the bijection between router names and node ids.
type Map struct {
	nameOf []wire.Name
	idOf   map[string]NodeId // wire.Name.TlvStr() -> NodeId
}

// New constructs an empty Map.
func New() *Map {
	return &Map{idOf: make(map[string]NodeId)}
}

// Add assigns a node id to name if it does not already have one, and
// returns its id either way.
func (m *Map) Add(name wire.Name) NodeId {
	key := name.TlvStr()
	if id, ok := m.idOf[key]; ok {
		return id
	}
	id := NodeId(len(m.nameOf))
	m.nameOf = append(m.nameOf, name.Clone())
	m.idOf[key] = id
	return id
}

// Id returns the node id for name, and whether it is known.
func (m *Map) Id(name wire.Name) (NodeId, bool) {
	id, ok := m.idOf[name.TlvStr()]
	return id, ok
}

// Name returns the router name for a node id.
func (m *Map) Name(id NodeId) wire.Name {
	return m.nameOf[id]
}

// Size returns the number of nodes (N) in the map.
func (m *Map) Size() int {
	return len(m.nameOf)
}
