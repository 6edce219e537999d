package syncsvc_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndn-lsr/nlsr/internal/lsa"
	"github.com/ndn-lsr/nlsr/internal/lsdb"
	"github.com/ndn-lsr/nlsr/internal/syncsvc"
	"github.com/ndn-lsr/nlsr/internal/wire"
)

type fetchCall struct {
	router wire.Name
	typ    lsa.Type
	seq    uint32
}

type fakeFetcher struct {
	calls   []fetchCall
	failN   int // fail this many calls before succeeding, counted across all calls
	lsaFor  func(router wire.Name, typ lsa.Type, seq uint32) lsa.Lsa
}

func (f *fakeFetcher) Fetch(router wire.Name, typ lsa.Type, seq uint32, cb func(lsa.Lsa, error)) {
	f.calls = append(f.calls, fetchCall{router, typ, seq})
	if f.failN > 0 {
		f.failN--
		cb(nil, errors.New("simulated fetch failure"))
		return
	}
	cb(f.lsaFor(router, typ, seq), nil)
}

func n(s string) wire.Name { return wire.NameFromStr(s) }

func TestOnRemoteUpdateFetchesAdvancedTypes(t *testing.T) {
	db := lsdb.New()
	fetcher := &fakeFetcher{
		lsaFor: func(router wire.Name, typ lsa.Type, seq uint32) lsa.Lsa {
			return &lsa.AdjLsa{Base: lsa.Base{
				OriginRouter:   router,
				SeqNo:          uint64(seq),
				ExpirationTime: time.Now().Add(time.Hour),
			}}
		},
	}
	path := filepath.Join(t.TempDir(), "sequence.txt")
	svc := syncsvc.New(n("/ndn/self"), db, fetcher, path)

	triple := lsa.SeqTriple{NameSeq: 0, AdjSeq: 1, CorSeq: 0}
	svc.OnRemoteUpdate(n("/ndn/router2"), triple.Pack())

	require.Len(t, fetcher.calls, 1)
	assert.Equal(t, lsa.TypeAdjacency, fetcher.calls[0].typ)
	assert.Equal(t, uint32(1), fetcher.calls[0].seq)

	_, ok := db.Find(n("/ndn/router2"), lsa.TypeAdjacency)
	assert.True(t, ok)
}

func TestOnRemoteUpdateSkipsUnadvancedTypes(t *testing.T) {
	db := lsdb.New()
	fetcher := &fakeFetcher{
		lsaFor: func(router wire.Name, typ lsa.Type, seq uint32) lsa.Lsa {
			return &lsa.AdjLsa{Base: lsa.Base{
				OriginRouter:   router,
				SeqNo:          uint64(seq),
				ExpirationTime: time.Now().Add(time.Hour),
			}}
		},
	}
	path := filepath.Join(t.TempDir(), "sequence.txt")
	svc := syncsvc.New(n("/ndn/self"), db, fetcher, path)

	first := lsa.SeqTriple{NameSeq: 1, AdjSeq: 1, CorSeq: 1}
	svc.OnRemoteUpdate(n("/ndn/router2"), first.Pack())
	fetcher.calls = nil

	// Same combined value again: nothing advanced, nothing fetched.
	svc.OnRemoteUpdate(n("/ndn/router2"), first.Pack())
	assert.Empty(t, fetcher.calls)
}

func TestOnRemoteUpdateRetriesFailedFetch(t *testing.T) {
	db := lsdb.New()
	fetcher := &fakeFetcher{
		failN: 1,
		lsaFor: func(router wire.Name, typ lsa.Type, seq uint32) lsa.Lsa {
			return &lsa.AdjLsa{Base: lsa.Base{
				OriginRouter:   router,
				SeqNo:          uint64(seq),
				ExpirationTime: time.Now().Add(time.Hour),
			}}
		},
	}
	path := filepath.Join(t.TempDir(), "sequence.txt")

	var retryFn func()
	svc := syncsvc.New(n("/ndn/self"), db, fetcher, path,
		syncsvc.WithSleep(func(d time.Duration, f func()) *time.Timer {
			retryFn = f
			return time.NewTimer(time.Hour)
		}),
	)

	triple := lsa.SeqTriple{NameSeq: 0, AdjSeq: 1, CorSeq: 0}
	svc.OnRemoteUpdate(n("/ndn/router2"), triple.Pack())

	require.Len(t, fetcher.calls, 1)
	_, ok := db.Find(n("/ndn/router2"), lsa.TypeAdjacency)
	assert.False(t, ok)

	require.NotNil(t, retryFn)
	retryFn()
	require.Len(t, fetcher.calls, 2)
	_, ok = db.Find(n("/ndn/router2"), lsa.TypeAdjacency)
	assert.True(t, ok)
}

func TestOnRemoteRemovalDoesNotTouchLsdb(t *testing.T) {
	db := lsdb.New()
	exp := time.Now().Add(time.Hour)
	db.Install(&lsa.AdjLsa{Base: lsa.Base{OriginRouter: n("/ndn/router2"), SeqNo: 1, ExpirationTime: exp}})

	fetcher := &fakeFetcher{lsaFor: func(wire.Name, lsa.Type, uint32) lsa.Lsa { return nil }}
	path := filepath.Join(t.TempDir(), "sequence.txt")
	svc := syncsvc.New(n("/ndn/self"), db, fetcher, path)

	svc.OnRemoteRemoval(n("/ndn/router2"))

	_, ok := db.Find(n("/ndn/router2"), lsa.TypeAdjacency)
	assert.True(t, ok)
}

func TestPublishAndLoadLocalSeqRoundTrip(t *testing.T) {
	db := lsdb.New()
	fetcher := &fakeFetcher{lsaFor: func(wire.Name, lsa.Type, uint32) lsa.Lsa { return nil }}
	path := filepath.Join(t.TempDir(), "sequence.txt")
	svc := syncsvc.New(n("/ndn/self"), db, fetcher, path)

	got, err := svc.PublishLocalUpdate(42)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got)

	loaded, err := svc.LoadLocalSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), loaded)
}
