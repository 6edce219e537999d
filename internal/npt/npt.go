package npt

import (
	"sync"

	"github.com/ndn-lsr/nlsr/internal/lsa"
	"github.com/ndn-lsr/nlsr/internal/lsdb"
	"github.com/ndn-lsr/nlsr/internal/log"
	"github.com/ndn-lsr/nlsr/internal/wire"
)

// Fib is the subset of the FIB Projector (C7) the Name Prefix Table
// drives. internal/fib.Projector satisfies this structurally.
type Fib interface {
	Update(name wire.Name, nextHops []NextHop)
	Remove(name wire.Name)

	// MarkH, UnmarkAll, and RemoveUnmarked drive the mark-and-sweep
	// reconciliation pass OnRoutingChange runs over the bulk of NPT's
	// state after a full routing recomputation (spec §4.4), rather than
	// re-deriving a prefix-by-prefix diff by hand.
	MarkH(name wire.Name)
	UnmarkAll()
	RemoveUnmarked()
}

// RoutingTable supplies the current next-hop list for a destination
// router, used to seed a freshly created RTPE (spec §4.4 addEntry step
// 2: "initialize from the routing table, empty if unreachable").
type RoutingTable interface {
	NextHops(router wire.Name) []NextHop
}

// RoutingChange is one row of a freshly computed routing table, as
// delivered to OnRoutingChange.
type RoutingChange struct {
	Destination wire.Name
	NextHops    []NextHop
}

// Npt is the Name Prefix Table (C5). It holds, for every name prefix
// currently advertised by at least one router, the set of originating
// routers and a derived next-hop list pushed to the FIB; it also holds
// the RTPE arena shared across all prefixes that cite a given router,
// and the set of multicast group memberships and their derived trees.
type Npt struct {
	mu      sync.Mutex
	self    wire.Name
	fib     Fib
	rt      RoutingTable
	mcCalc  MulticastCalculator
	entries map[string]*Entry // prefix key -> entry
	rtpes   map[string]*RTPE  // origin key -> RTPE
	groups  map[string]*Group // group name key -> group
}

// New constructs an empty Npt for router self.
func New(self wire.Name, fib Fib, rt RoutingTable, mcCalc MulticastCalculator) *Npt {
	return &Npt{
		self:    self.Clone(),
		fib:     fib,
		rt:      rt,
		mcCalc:  mcCalc,
		entries: make(map[string]*Entry),
		rtpes:   make(map[string]*RTPE),
		groups:  make(map[string]*Group),
	}
}

func (n *Npt) String() string { return "npt" }

// Entry returns the current NPT entry for prefix, if any.
func (n *Npt) Entry(prefix wire.Name) (*Entry, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	e, ok := n.entries[prefix.TlvStr()]
	return e, ok
}

// EntryCount returns the number of prefixes currently tracked.
func (n *Npt) EntryCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.entries)
}

// GroupCount returns the number of multicast groups currently tracked.
func (n *Npt) GroupCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.groups)
}

// addEntry associates prefix with origin (spec §4.4 addEntry): find or
// create the NPT entry for prefix, find or create the RTPE for origin
// (seeded from the routing table if new), associate them in both
// directions, and re-project the entry's next-hop list to the FIB.
func (n *Npt) addEntry(prefix, origin wire.Name, isMulticast bool) {
	ekey := prefix.TlvStr()
	entry, ok := n.entries[ekey]
	if !ok {
		entry = &Entry{Prefix: prefix.Clone(), IsMulticast: isMulticast, rtpes: make(map[string]*RTPE)}
		n.entries[ekey] = entry
	}

	okey := origin.TlvStr()
	rtpe, ok := n.rtpes[okey]
	if !ok {
		rtpe = &RTPE{Router: origin.Clone(), citedBy: make(map[string]*Entry)}
		rtpe.NextHops = n.rt.NextHops(origin)
		n.rtpes[okey] = rtpe
	}

	entry.rtpes[okey] = rtpe
	rtpe.citedBy[ekey] = entry
	n.project(entry)
}

// removeEntry undoes one addEntry association (spec §4.4 removeEntry):
// detach the RTPE from the entry; if the entry now cites nothing,
// delete it and withdraw it from the FIB; otherwise re-project.
// If the RTPE is no longer cited by anything, it is evicted from the
// pool.
func (n *Npt) removeEntry(prefix, origin wire.Name) {
	ekey := prefix.TlvStr()
	entry, ok := n.entries[ekey]
	if !ok {
		return
	}

	okey := origin.TlvStr()
	rtpe, cited := entry.rtpes[okey]
	if cited {
		delete(entry.rtpes, okey)
		delete(rtpe.citedBy, ekey)
	}

	if len(entry.rtpes) == 0 {
		delete(n.entries, ekey)
		n.fib.Remove(entry.Prefix)
	} else {
		n.project(entry)
	}

	if cited && len(rtpe.citedBy) == 0 {
		delete(n.rtpes, okey)
	}
}

func (n *Npt) project(entry *Entry) {
	lists := make([][]NextHop, 0, len(entry.rtpes))
	for _, rtpe := range entry.rtpes {
		lists = append(lists, rtpe.NextHops)
	}
	entry.NextHops = mergeByBestCost(lists...)
	if len(entry.NextHops) > 0 {
		n.fib.Update(entry.Prefix, entry.NextHops)
	} else {
		n.fib.Remove(entry.Prefix)
	}
}

// OnLsdbEvent reacts to an LSDB Event (spec §4.4). Events originated by
// this router are ignored: a router never routes through itself via
// its own advertisement.
//
// For a NameLSA, unicast names feed the generic cross-index (addEntry/
// removeEntry, union-by-best-cost next hops); multicast names instead
// feed group membership (addMulticastEntry/removeMulticastEntry, the
// SPT-pruned tree), since a multicast name's originating routers are
// exactly the members of the group of that name.
func (n *Npt) OnLsdbEvent(ev lsdb.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()

	origin := ev.Lsa.GetBase().OriginRouter
	if origin.Equal(n.self) {
		return
	}

	switch ev.Kind {
	case lsdb.EventInstalled:
		n.addEntry(origin, origin, false)
		if nameLsa, isName := ev.Lsa.(*lsa.NameLsa); isName {
			for _, name := range nameLsa.Names {
				n.addEntry(name, origin, false)
			}
			for _, name := range nameLsa.MulticastNames {
				n.addMulticastEntryLocked(name, origin)
			}
		}
	case lsdb.EventUpdated:
		for _, name := range ev.Add {
			n.addEntry(name, origin, false)
		}
		for _, name := range ev.Remove {
			n.removeEntry(name, origin)
		}
		for _, name := range ev.McAdd {
			n.addMulticastEntryLocked(name, origin)
		}
		for _, name := range ev.McRemove {
			n.removeMulticastEntryLocked(name, origin)
		}
	case lsdb.EventRemoved:
		n.removeEntry(origin, origin)
		for _, name := range ev.Remove {
			n.removeEntry(name, origin)
		}
		for _, name := range ev.McRemove {
			n.removeMulticastEntryLocked(name, origin)
		}
	}
}

// OnRoutingChange reacts to a freshly computed routing table (spec
// §4.4): every RTPE's cached next-hop list is compared to the new
// table, rewritten and re-projected to every citing NPT entry if
// changed (including a destination that disappeared entirely), and
// then every multicast group's tree is unconditionally rebuilt, since
// the group tree depends on the whole topology, not a single router's
// reachability.
func (n *Npt) OnRoutingChange(changes []RoutingChange) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.fib.UnmarkAll()

	byDest := make(map[string][]NextHop, len(changes))
	for _, c := range changes {
		byDest[c.Destination.TlvStr()] = c.NextHops
	}

	for okey, rtpe := range n.rtpes {
		newNh := byDest[okey] // nil if destination disappeared
		if equalNextHops(rtpe.NextHops, newNh) {
			continue
		}
		rtpe.NextHops = newNh
		for _, entry := range rtpe.citedBy {
			n.project(entry)
		}
	}
	for _, entry := range n.entries {
		n.fib.MarkH(entry.Prefix)
	}

	for _, g := range n.groups {
		n.rebuildTree(g)
		n.fib.MarkH(g.Name)
	}

	// Sweep away anything still projected in the FIB that this pass
	// didn't touch: an entry or group NPT itself stopped tracking
	// without going through removeEntry/RemoveMulticastEntry (spec
	// §4.5's idempotent reconciliation applied to the bulk path a full
	// routing recomputation takes, rather than addEntry/removeEntry's
	// incremental one).
	n.fib.RemoveUnmarked()
}

// AddMulticastEntry registers origin as a member of the multicast
// group named name, creating the group if it does not yet exist, and
// rebuilds its tree (spec §4.4 addMulticastEntry).
func (n *Npt) AddMulticastEntry(name, member wire.Name) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.addMulticastEntryLocked(name, member)
}

func (n *Npt) addMulticastEntryLocked(name, member wire.Name) {
	gkey := name.TlvStr()
	g, ok := n.groups[gkey]
	if !ok {
		g = &Group{Name: name.Clone(), Members: make(map[string]wire.Name)}
		n.groups[gkey] = g
	}
	g.Members[member.TlvStr()] = member.Clone()
	n.rebuildTree(g)
}

// RemoveMulticastEntry erases member from the group named name (spec
// §9: this must be an erase, not an insert, despite the source's
// apparent bug) and rebuilds the tree. The group is dropped entirely
// once it has no members left.
func (n *Npt) RemoveMulticastEntry(name, member wire.Name) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.removeMulticastEntryLocked(name, member)
}

func (n *Npt) removeMulticastEntryLocked(name, member wire.Name) {
	gkey := name.TlvStr()
	g, ok := n.groups[gkey]
	if !ok {
		return
	}
	delete(g.Members, member.TlvStr())
	if len(g.Members) == 0 {
		delete(n.groups, gkey)
		n.fib.Remove(g.Name)
		return
	}
	n.rebuildTree(g)
}

func (n *Npt) rebuildTree(g *Group) {
	members := make([]wire.Name, 0, len(g.Members))
	for _, m := range g.Members {
		members = append(members, m)
	}
	g.Tree = n.mcCalc.Multicast(members)
	if len(g.Tree) > 0 {
		n.fib.Update(g.Name, g.Tree)
	} else {
		n.fib.Remove(g.Name)
	}
	log.Debug(n, "Rebuilt multicast tree", "group", g.Name.String(), "members", len(g.Members), "faces", len(g.Tree))
}
