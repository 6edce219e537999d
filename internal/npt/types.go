// Package npt implements the Name Prefix Table (C5, spec §4.4): the
// cross-index from advertised name prefixes to the routers that
// originate them, the shared Routing-Table Pool Entry (RTPE) arena,
// and multicast group membership/tree projection.
package npt

import (
	"cmp"
	"slices"

	"github.com/ndn-lsr/nlsr/internal/wire"
)

// NextHop is one face/cost pair, mirroring internal/routing.NextHop.
// NPT keeps its own copy of this shape (rather than importing the
// routing package) because it is a pure data-transfer type between
// components that otherwise own their own concerns (spec §3).
type NextHop struct {
	FaceUri string
	Cost    uint64
}

func mergeByBestCost(lists ...[]NextHop) []NextHop {
	best := make(map[string]NextHop)
	for _, list := range lists {
		for _, nh := range list {
			cur, ok := best[nh.FaceUri]
			if !ok || nh.Cost < cur.Cost {
				best[nh.FaceUri] = nh
			}
		}
	}
	out := make([]NextHop, 0, len(best))
	for _, nh := range best {
		out = append(out, nh)
	}
	sortNextHops(out)
	return out
}

func sortNextHops(nhs []NextHop) {
	slices.SortFunc(nhs, func(a, b NextHop) int {
		if c := cmp.Compare(a.Cost, b.Cost); c != 0 {
			return c
		}
		return cmp.Compare(a.FaceUri, b.FaceUri)
	})
}

func equalNextHops(a, b []NextHop) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// RTPE is a Routing-Table Pool Entry (spec §3): a shared record, keyed
// by destination router name, holding that router's current next-hop
// list and a back-index of every NPT entry that currently cites it.
// NPT holds RTPE by strong (owning) reference; RTPE's citedBy map is a
// weak back-reference used only for iteration (spec §3 Ownership, §9).
type RTPE struct {
	Router   wire.Name
	NextHops []NextHop
	citedBy  map[string]*Entry // prefix key -> NPT entry
}

// Entry is a NamePrefixTableEntry (spec §3): present iff it cites at
// least one RTPE.
type Entry struct {
	Prefix      wire.Name
	IsMulticast bool
	NextHops    []NextHop // derived: union-by-best-cost over rtpes
	rtpes       map[string]*RTPE // origin key -> RTPE (strong ref)
}

// RouteCount returns the number of RTPEs this entry currently cites.
func (e *Entry) RouteCount() int { return len(e.rtpes) }
