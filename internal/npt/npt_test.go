package npt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndn-lsr/nlsr/internal/lsa"
	"github.com/ndn-lsr/nlsr/internal/lsdb"
	"github.com/ndn-lsr/nlsr/internal/npt"
	"github.com/ndn-lsr/nlsr/internal/wire"
)

type fakeFib struct {
	updated map[string][]npt.NextHop
	removed map[string]int
	marked  map[string]bool
}

func newFakeFib() *fakeFib {
	return &fakeFib{
		updated: make(map[string][]npt.NextHop),
		removed: make(map[string]int),
		marked:  make(map[string]bool),
	}
}

func (f *fakeFib) Update(name wire.Name, nhs []npt.NextHop) {
	f.updated[name.TlvStr()] = nhs
	delete(f.removed, name.TlvStr())
}

func (f *fakeFib) Remove(name wire.Name) {
	f.removed[name.TlvStr()]++
	delete(f.updated, name.TlvStr())
}

func (f *fakeFib) MarkH(name wire.Name) { f.marked[name.TlvStr()] = true }

func (f *fakeFib) UnmarkAll() {
	for k := range f.marked {
		delete(f.marked, k)
	}
}

func (f *fakeFib) RemoveUnmarked() {
	for key := range f.updated {
		if !f.marked[key] {
			f.removed[key]++
			delete(f.updated, key)
		}
	}
}

type fakeRT struct {
	hops map[string][]npt.NextHop
}

func newFakeRT() *fakeRT { return &fakeRT{hops: make(map[string][]npt.NextHop)} }

func (r *fakeRT) NextHops(router wire.Name) []npt.NextHop { return r.hops[router.TlvStr()] }
func (r *fakeRT) Multicast(members []wire.Name) []npt.NextHop {
	// Trivial multicast calculator for tests: the seeded unicast next
	// hops of every member, concatenated without deduplication.
	var out []npt.NextHop
	for _, m := range members {
		out = append(out, r.hops[m.TlvStr()]...)
	}
	return out
}

func n(s string) wire.Name { return wire.NameFromStr(s) }

func TestAddEntrySeedsFromRoutingTableAndProjects(t *testing.T) {
	fib := newFakeFib()
	rt := newFakeRT()
	rt.hops[n("/ndn/router2").TlvStr()] = []npt.NextHop{{FaceUri: "face://r2", Cost: 10}}

	table := npt.New(n("/ndn/self"), fib, rt, rt)

	table.OnLsdbEvent(lsdb.Event{
		Lsa:  &lsa.AdjLsa{Base: lsa.Base{OriginRouter: n("/ndn/router2")}},
		Kind: lsdb.EventInstalled,
	})

	got, ok := fib.updated[n("/ndn/router2").TlvStr()]
	require.True(t, ok)
	assert.Equal(t, []npt.NextHop{{FaceUri: "face://r2", Cost: 10}}, got)
	assert.Equal(t, 1, table.EntryCount())
}

func TestOnLsdbEventIgnoresSelfOrigin(t *testing.T) {
	fib := newFakeFib()
	rt := newFakeRT()
	table := npt.New(n("/ndn/self"), fib, rt, rt)

	table.OnLsdbEvent(lsdb.Event{
		Lsa:  &lsa.AdjLsa{Base: lsa.Base{OriginRouter: n("/ndn/self")}},
		Kind: lsdb.EventInstalled,
	})
	assert.Equal(t, 0, table.EntryCount())
}

func TestNameLsaInstallAddsNamesAndSelfPrefix(t *testing.T) {
	fib := newFakeFib()
	rt := newFakeRT()
	rt.hops[n("/ndn/router2").TlvStr()] = []npt.NextHop{{FaceUri: "face://r2", Cost: 5}}

	table := npt.New(n("/ndn/self"), fib, rt, rt)
	nameLsa := lsa.NewNameLsa(lsa.Base{OriginRouter: n("/ndn/router2")},
		[]wire.Name{n("/ndn/router2/app1")}, nil)

	table.OnLsdbEvent(lsdb.Event{Lsa: nameLsa, Kind: lsdb.EventInstalled})

	// Self-addressable prefix and the advertised app prefix both exist.
	assert.Equal(t, 2, table.EntryCount())
	_, ok := fib.updated[n("/ndn/router2/app1").TlvStr()]
	assert.True(t, ok)
}

func TestRemoveEntryWithdrawsFromFibWhenLastRtpeGone(t *testing.T) {
	fib := newFakeFib()
	rt := newFakeRT()
	rt.hops[n("/ndn/router2").TlvStr()] = []npt.NextHop{{FaceUri: "face://r2", Cost: 5}}
	table := npt.New(n("/ndn/self"), fib, rt, rt)

	table.OnLsdbEvent(lsdb.Event{
		Lsa:  &lsa.AdjLsa{Base: lsa.Base{OriginRouter: n("/ndn/router2")}},
		Kind: lsdb.EventInstalled,
	})
	table.OnLsdbEvent(lsdb.Event{
		Lsa:  &lsa.AdjLsa{Base: lsa.Base{OriginRouter: n("/ndn/router2")}},
		Kind: lsdb.EventRemoved,
	})

	assert.Equal(t, 0, table.EntryCount())
	assert.Equal(t, 1, fib.removed[n("/ndn/router2").TlvStr()])
}

func TestOnRoutingChangeUpdatesCitingEntries(t *testing.T) {
	fib := newFakeFib()
	rt := newFakeRT()
	rt.hops[n("/ndn/router2").TlvStr()] = []npt.NextHop{{FaceUri: "face://old", Cost: 20}}
	table := npt.New(n("/ndn/self"), fib, rt, rt)

	table.OnLsdbEvent(lsdb.Event{
		Lsa:  &lsa.AdjLsa{Base: lsa.Base{OriginRouter: n("/ndn/router2")}},
		Kind: lsdb.EventInstalled,
	})

	table.OnRoutingChange([]npt.RoutingChange{
		{Destination: n("/ndn/router2"), NextHops: []npt.NextHop{{FaceUri: "face://new", Cost: 3}}},
	})

	got := fib.updated[n("/ndn/router2").TlvStr()]
	require.Len(t, got, 1)
	assert.Equal(t, "face://new", got[0].FaceUri)
}

func TestMulticastGroupLifecycle(t *testing.T) {
	fib := newFakeFib()
	rt := newFakeRT()
	rt.hops[n("/ndn/A").TlvStr()] = []npt.NextHop{{FaceUri: "face://A", Cost: 1}}
	rt.hops[n("/ndn/B").TlvStr()] = []npt.NextHop{{FaceUri: "face://B", Cost: 1}}
	rt.hops[n("/ndn/C").TlvStr()] = []npt.NextHop{{FaceUri: "face://C", Cost: 1}}

	table := npt.New(n("/ndn/self"), fib, rt, rt)
	group := n("/ndn/mc/group1")

	table.AddMulticastEntry(group, n("/ndn/A"))
	table.AddMulticastEntry(group, n("/ndn/B"))
	table.AddMulticastEntry(group, n("/ndn/C"))
	assert.Equal(t, 1, table.GroupCount())
	assert.Len(t, fib.updated[group.TlvStr()], 3)

	table.RemoveMulticastEntry(group, n("/ndn/C"))
	assert.Len(t, fib.updated[group.TlvStr()], 2)

	table.RemoveMulticastEntry(group, n("/ndn/B"))
	assert.Len(t, fib.updated[group.TlvStr()], 1)

	table.RemoveMulticastEntry(group, n("/ndn/A"))
	assert.Equal(t, 0, table.GroupCount())
	assert.Equal(t, 1, fib.removed[group.TlvStr()])
}

func TestUpdateEventAddsAndRemovesNames(t *testing.T) {
	fib := newFakeFib()
	rt := newFakeRT()
	rt.hops[n("/ndn/router2").TlvStr()] = []npt.NextHop{{FaceUri: "face://r2", Cost: 1}}
	table := npt.New(n("/ndn/self"), fib, rt, rt)

	table.OnLsdbEvent(lsdb.Event{
		Lsa:  &lsa.AdjLsa{Base: lsa.Base{OriginRouter: n("/ndn/router2")}},
		Kind: lsdb.EventInstalled,
	})
	table.OnLsdbEvent(lsdb.Event{
		Lsa:  &lsa.AdjLsa{Base: lsa.Base{OriginRouter: n("/ndn/router2")}},
		Kind: lsdb.EventUpdated,
		Add:  []wire.Name{n("/ndn/router2/svc")},
	})
	_, ok := fib.updated[n("/ndn/router2/svc").TlvStr()]
	assert.True(t, ok)

	table.OnLsdbEvent(lsdb.Event{
		Lsa:    &lsa.AdjLsa{Base: lsa.Base{OriginRouter: n("/ndn/router2")}},
		Kind:   lsdb.EventUpdated,
		Remove: []wire.Name{n("/ndn/router2/svc")},
	})
	_, ok = fib.updated[n("/ndn/router2/svc").TlvStr()]
	assert.False(t, ok)
}
