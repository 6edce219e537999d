// Package lsa implements the Link-State Advertisement data model and its
// TLV wire encoding (spec §3, §4.1, §6): the base LSA fields shared by
// every advertisement, and the three concrete LSA bodies (NameLsa,
// AdjLsa, CoordinateLsa).
package lsa

import (
	"time"

	"github.com/ndn-lsr/nlsr/internal/wire"
)

// Type identifies which of the three LSA bodies a record carries. The
// identity of a stored LSA is the pair (OriginRouter, Type).
type Type int

const (
	TypeName Type = iota
	TypeAdjacency
	TypeCoordinate
)

// String renders the LSA type for logging.
func (t Type) String() string {
	switch t {
	case TypeName:
		return "name"
	case TypeAdjacency:
		return "adjacency"
	case TypeCoordinate:
		return "coordinate"
	default:
		return "unknown"
	}
}

// TLV type numbers for the base LSA fields and envelope blocks. Chosen
// in a private-use range well clear of the generic name component types
// in package wire.
const (
	TypeSequenceNumber wire.TLNum = 0x191
	TypeExpirationTime wire.TLNum = 0x192
	TypeNamePrefixList wire.TLNum = 0x193
	TypeNameLsaBlock   wire.TLNum = 0x194
	TypeAdjacencyList  wire.TLNum = 0x195
	TypeAdjacencyEntry wire.TLNum = 0x196
	TypeFaceUri        wire.TLNum = 0x197
	TypeLinkCost       wire.TLNum = 0x198
	TypeAdjLsaBlock    wire.TLNum = 0x199
	TypeRadius         wire.TLNum = 0x19a
	TypeAngles         wire.TLNum = 0x19b
	TypeAngle          wire.TLNum = 0x19c
	TypeCoordLsaBlock  wire.TLNum = 0x19d
)

// Base carries the fields common to every LSA (spec §3).
type Base struct {
	OriginRouter   wire.Name
	SeqNo          uint64
	ExpirationTime time.Time
}

// Key identifies an LSA within the LSDB: (OriginRouter, Type).
type Key struct {
	Origin string // wire.Name.TlvStr()
	Type   Type
}

// KeyOf returns the LSDB key for origin/typ.
func KeyOf(origin wire.Name, typ Type) Key {
	return Key{Origin: origin.TlvStr(), Type: typ}
}

func encodeExpiration(t time.Time) []byte {
	return wire.EncodeUint64(uint64(t.UnixMilli()))
}

func decodeExpiration(buf []byte) (time.Time, error) {
	ms, err := wire.DecodeUint64(buf)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(int64(ms)).UTC(), nil
}

func (b Base) encodeFields() wire.Wire {
	w := append(wire.Wire{}, b.OriginRouter.Encode()...)
	w = wire.AppendTLV(w, TypeSequenceNumber, wire.EncodeUint64(b.SeqNo))
	w = wire.AppendTLV(w, TypeExpirationTime, encodeExpiration(b.ExpirationTime))
	return w
}

// parseBase reads the three base fields off the front of the reader, in
// the fixed order the wire format requires (spec §6).
func parseBase(r *wire.Reader) (Base, error) {
	var b Base

	typ, val, err := r.ReadTLV()
	if err != nil {
		return b, err
	}
	name, err := wire.ParseName(typ, val)
	if err != nil {
		return b, err
	}
	b.OriginRouter = name

	typ, val, err = r.ReadTLV()
	if err != nil {
		return b, err
	}
	if typ != TypeSequenceNumber {
		return b, wire.ErrUnexpectedType{Want: TypeSequenceNumber, Got: typ}
	}
	seq, err := wire.DecodeUint64(val)
	if err != nil {
		return b, err
	}
	b.SeqNo = seq

	typ, val, err = r.ReadTLV()
	if err != nil {
		return b, err
	}
	if typ != TypeExpirationTime {
		return b, wire.ErrUnexpectedType{Want: TypeExpirationTime, Got: typ}
	}
	exp, err := decodeExpiration(val)
	if err != nil {
		return b, err
	}
	b.ExpirationTime = exp

	return b, nil
}
