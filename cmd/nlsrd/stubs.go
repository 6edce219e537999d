package main

import (
	"github.com/ndn-lsr/nlsr/internal/lsa"
	"github.com/ndn-lsr/nlsr/internal/wire"
)

// noopForwarder and noopFetcher stand in for the wire-level NFD
// management connection and the sync/transport fetch path, both named
// as external collaborators out of this daemon's core scope (spec
// §1). A real build replaces these with a forwarder management
// protocol client and a dataset-sync consumer respectively.
type noopForwarder struct{}

func (noopForwarder) Register(name wire.Name, faceUri string, cost uint64) error   { return nil }
func (noopForwarder) Unregister(name wire.Name, faceUri string) error             { return nil }

type noopFetcher struct{}

func (noopFetcher) Fetch(router wire.Name, typ lsa.Type, seq uint32, cb func(lsa.Lsa, error)) {
}
