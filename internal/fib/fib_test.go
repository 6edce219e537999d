package fib_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndn-lsr/nlsr/internal/fib"
	"github.com/ndn-lsr/nlsr/internal/npt"
	"github.com/ndn-lsr/nlsr/internal/wire"
)

type call struct {
	name     string
	faceUri  string
	cost     uint64
	register bool
}

type fakeForwarder struct {
	calls   []call
	failFor map[string]int // faceUri -> number of times to fail before succeeding
}

func newFakeForwarder() *fakeForwarder {
	return &fakeForwarder{failFor: make(map[string]int)}
}

func (f *fakeForwarder) Register(name wire.Name, faceUri string, cost uint64) error {
	f.calls = append(f.calls, call{name.TlvStr(), faceUri, cost, true})
	if f.failFor[faceUri] > 0 {
		f.failFor[faceUri]--
		return errors.New("simulated failure")
	}
	return nil
}

func (f *fakeForwarder) Unregister(name wire.Name, faceUri string) error {
	f.calls = append(f.calls, call{name.TlvStr(), faceUri, 0, false})
	return nil
}

func n(s string) wire.Name { return wire.NameFromStr(s) }

func TestUpdateRegistersNewFaces(t *testing.T) {
	fw := newFakeForwarder()
	p := fib.New(fw)

	p.Update(n("/ndn/prefix1"), []npt.NextHop{{FaceUri: "face://a", Cost: 10}})
	require.Len(t, fw.calls, 1)
	assert.True(t, fw.calls[0].register)
	assert.Equal(t, uint64(10), fw.calls[0].cost)
}

func TestUpdateIsIdempotentForUnchangedFaces(t *testing.T) {
	fw := newFakeForwarder()
	p := fib.New(fw)

	nhs := []npt.NextHop{{FaceUri: "face://a", Cost: 10}}
	p.Update(n("/ndn/prefix1"), nhs)
	p.Update(n("/ndn/prefix1"), nhs)

	assert.Len(t, fw.calls, 1)
}

func TestUpdateUnregistersDroppedFacesAndRegistersNew(t *testing.T) {
	fw := newFakeForwarder()
	p := fib.New(fw)

	p.Update(n("/ndn/prefix1"), []npt.NextHop{{FaceUri: "face://a", Cost: 10}})
	fw.calls = nil
	p.Update(n("/ndn/prefix1"), []npt.NextHop{{FaceUri: "face://b", Cost: 5}})

	require.Len(t, fw.calls, 2)
	var sawUnregisterA, sawRegisterB bool
	for _, c := range fw.calls {
		if c.faceUri == "face://a" && !c.register {
			sawUnregisterA = true
		}
		if c.faceUri == "face://b" && c.register {
			sawRegisterB = true
		}
	}
	assert.True(t, sawUnregisterA)
	assert.True(t, sawRegisterB)
}

func TestUpdateReRegistersOnCostChange(t *testing.T) {
	fw := newFakeForwarder()
	p := fib.New(fw)

	p.Update(n("/ndn/prefix1"), []npt.NextHop{{FaceUri: "face://a", Cost: 10}})
	fw.calls = nil
	p.Update(n("/ndn/prefix1"), []npt.NextHop{{FaceUri: "face://a", Cost: 20}})

	require.Len(t, fw.calls, 1)
	assert.Equal(t, uint64(20), fw.calls[0].cost)
}

func TestRemoveWithdrawsAllFaces(t *testing.T) {
	fw := newFakeForwarder()
	p := fib.New(fw)

	p.Update(n("/ndn/prefix1"), []npt.NextHop{{FaceUri: "face://a", Cost: 1}, {FaceUri: "face://b", Cost: 2}})
	fw.calls = nil
	p.Remove(n("/ndn/prefix1"))

	assert.Len(t, fw.calls, 2)
	assert.Equal(t, 0, p.Size())
}

func TestExecRetriesThenSucceeds(t *testing.T) {
	fw := newFakeForwarder()
	fw.failFor["face://a"] = 2
	var slept int
	p := fib.New(fw, fib.WithSleep(func(time.Duration) { slept++ }))

	p.Update(n("/ndn/prefix1"), []npt.NextHop{{FaceUri: "face://a", Cost: 1}})
	assert.Equal(t, 2, slept)
	assert.Len(t, fw.calls, 3)
}

func TestExecInvokesFailureHandlerAfterExhaustingRetries(t *testing.T) {
	fw := newFakeForwarder()
	fw.failFor["face://a"] = 10
	var failed bool
	p := fib.New(fw,
		fib.WithSleep(func(time.Duration) {}),
		fib.WithFailureHandler(func(name wire.Name, faceUri string, register bool, err error) {
			failed = true
			assert.Equal(t, "face://a", faceUri)
			assert.True(t, register)
		}),
	)

	p.Update(n("/ndn/prefix1"), []npt.NextHop{{FaceUri: "face://a", Cost: 1}})
	assert.True(t, failed)
}

func TestMarkSweepRemovesUnmarkedPrefixes(t *testing.T) {
	fw := newFakeForwarder()
	p := fib.New(fw)

	p.Update(n("/ndn/prefix1"), []npt.NextHop{{FaceUri: "face://a", Cost: 1}})
	p.Update(n("/ndn/prefix2"), []npt.NextHop{{FaceUri: "face://b", Cost: 1}})

	p.UnmarkAll()
	p.MarkH(n("/ndn/prefix1"))
	fw.calls = nil
	p.RemoveUnmarked()

	assert.Equal(t, 1, p.Size())
	var sawUnregisterB bool
	for _, c := range fw.calls {
		if c.faceUri == "face://b" && !c.register {
			sawUnregisterB = true
		}
	}
	assert.True(t, sawUnregisterB)
}
