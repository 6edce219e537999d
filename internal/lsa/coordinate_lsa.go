package lsa

import (
	"encoding/binary"
	"math"

	"github.com/ndn-lsr/nlsr/internal/wire"
)

// CoordinateLsa carries a hyperbolic-coordinate vector. The core treats
// it as opaque storage feeding an alternative distance oracle
// (spec §3); it is stored and diffed like any other LSA but never
// consulted by the shortest-path calculator.
type CoordinateLsa struct {
	Base
	Radius float64
	Angles []float64
}

func encodeFloat64(v float64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, math.Float64bits(v))
	return buf
}

func decodeFloat64(buf []byte) (float64, error) {
	if len(buf) != 8 {
		return 0, wire.ErrFormat{Msg: "invalid float64 length"}
	}
	return math.Float64frombits(binary.BigEndian.Uint64(buf)), nil
}

// Encode serializes the CoordinateLsa: base fields, Radius, then the
// Angles list (spec §6).
func (c *CoordinateLsa) Encode() wire.Wire {
	body := c.Base.encodeFields()
	body = wire.AppendTLV(body, TypeRadius, encodeFloat64(c.Radius))

	var angles wire.Wire
	for _, a := range c.Angles {
		angles = wire.AppendTLV(angles, TypeAngle, encodeFloat64(a))
	}
	body = wire.AppendTLV(body, TypeAngles, angles.Join())

	return wire.AppendTLV(nil, TypeCoordLsaBlock, body.Join())
}

// ParseCoordinateLsa decodes a CoordinateLsa TLV block.
func ParseCoordinateLsa(block []byte) (*CoordinateLsa, error) {
	outer := wire.NewReader(block)
	typ, val, err := outer.ReadTLV()
	if err != nil {
		return nil, err
	}
	if typ != TypeCoordLsaBlock {
		return nil, wire.ErrUnexpectedType{Want: TypeCoordLsaBlock, Got: typ}
	}

	r := wire.NewReader(val)
	base, err := parseBase(r)
	if err != nil {
		return nil, err
	}

	if r.Empty() {
		return nil, wire.ErrMissingField{Field: "Radius"}
	}
	rtyp, rval, err := r.ReadTLV()
	if err != nil {
		return nil, err
	}
	if rtyp != TypeRadius {
		return nil, wire.ErrUnexpectedType{Want: TypeRadius, Got: rtyp}
	}
	radius, err := decodeFloat64(rval)
	if err != nil {
		return nil, err
	}

	if r.Empty() {
		return nil, wire.ErrMissingField{Field: "Angles"}
	}
	atyp, aval, err := r.ReadTLV()
	if err != nil {
		return nil, err
	}
	if atyp != TypeAngles {
		return nil, wire.ErrUnexpectedType{Want: TypeAngles, Got: atyp}
	}

	ar := wire.NewReader(aval)
	var angles []float64
	for !ar.Empty() {
		atyp, aval, err := ar.ReadTLV()
		if err != nil {
			return nil, err
		}
		if atyp != TypeAngle {
			return nil, wire.ErrUnexpectedType{Want: TypeAngle, Got: atyp}
		}
		v, err := decodeFloat64(aval)
		if err != nil {
			return nil, err
		}
		angles = append(angles, v)
	}

	return &CoordinateLsa{Base: base, Radius: radius, Angles: angles}, nil
}
