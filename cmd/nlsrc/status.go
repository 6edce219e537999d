package main

import (
	"errors"

	"github.com/ndn-lsr/nlsr/internal/router"
)

// fetchStatus retrieves the current status from a running nlsrd. The
// actual request/response exchange rides over the wire-level NDN
// transport, an external collaborator outside this daemon's core
// scope (spec §1); wiring this to a real management-protocol client
// is left to the transport integration.
func fetchStatus() (router.Status, error) {
	return router.Status{}, errors.New("nlsrc: management transport not configured")
}
