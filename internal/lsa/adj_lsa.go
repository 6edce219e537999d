package lsa

import (
	"github.com/ndn-lsr/nlsr/internal/wire"
)

// Adjacency is one neighbor entry in an AdjacencyLsa (spec §3).
type Adjacency struct {
	Neighbor wire.Name
	FaceUri  string
	Cost     uint64
}

// AdjLsa advertises a router's one-way adjacencies. The routing
// calculator only uses an edge when both endpoints advertise it with
// matching cost (spec §3: symmetric closure).
type AdjLsa struct {
	Base
	Adjacencies []Adjacency
}

// Encode serializes the AdjLsa: base fields, then one AdjacencyList
// containing each (Name, FaceUri, cost) triple in order (spec §6).
func (a *AdjLsa) Encode() wire.Wire {
	body := a.Base.encodeFields()
	body = wire.AppendTLV(body, TypeAdjacencyList, encodeAdjacencyList(a.Adjacencies))
	return wire.AppendTLV(nil, TypeAdjLsaBlock, body.Join())
}

func encodeAdjacencyList(adjs []Adjacency) []byte {
	var w wire.Wire
	for _, a := range adjs {
		var entry wire.Wire
		entry = append(entry, a.Neighbor.Encode()...)
		entry = wire.AppendTLV(entry, TypeFaceUri, []byte(a.FaceUri))
		entry = wire.AppendTLV(entry, TypeLinkCost, wire.EncodeUint64(a.Cost))
		w = wire.AppendTLV(w, TypeAdjacencyEntry, entry.Join())
	}
	return w.Join()
}

func decodeAdjacencyList(buf []byte) ([]Adjacency, error) {
	r := wire.NewReader(buf)
	var out []Adjacency
	for !r.Empty() {
		typ, val, err := r.ReadTLV()
		if err != nil {
			return nil, err
		}
		if typ != TypeAdjacencyEntry {
			return nil, wire.ErrUnexpectedType{Want: TypeAdjacencyEntry, Got: typ}
		}

		er := wire.NewReader(val)
		ntyp, nval, err := er.ReadTLV()
		if err != nil {
			return nil, err
		}
		neighbor, err := wire.ParseName(ntyp, nval)
		if err != nil {
			return nil, err
		}

		ftyp, fval, err := er.ReadTLV()
		if err != nil {
			return nil, err
		}
		if ftyp != TypeFaceUri {
			return nil, wire.ErrUnexpectedType{Want: TypeFaceUri, Got: ftyp}
		}

		ctyp, cval, err := er.ReadTLV()
		if err != nil {
			return nil, err
		}
		if ctyp != TypeLinkCost {
			return nil, wire.ErrUnexpectedType{Want: TypeLinkCost, Got: ctyp}
		}
		cost, err := wire.DecodeUint64(cval)
		if err != nil {
			return nil, err
		}

		out = append(out, Adjacency{
			Neighbor: neighbor,
			FaceUri:  string(fval),
			Cost:     cost,
		})
	}
	return out, nil
}

// ParseAdjLsa decodes an AdjLsa TLV block.
func ParseAdjLsa(block []byte) (*AdjLsa, error) {
	outer := wire.NewReader(block)
	typ, val, err := outer.ReadTLV()
	if err != nil {
		return nil, err
	}
	if typ != TypeAdjLsaBlock {
		return nil, wire.ErrUnexpectedType{Want: TypeAdjLsaBlock, Got: typ}
	}

	r := wire.NewReader(val)
	base, err := parseBase(r)
	if err != nil {
		return nil, err
	}

	if r.Empty() {
		return nil, wire.ErrMissingField{Field: "AdjacencyList"}
	}
	atyp, aval, err := r.ReadTLV()
	if err != nil {
		return nil, err
	}
	if atyp != TypeAdjacencyList {
		return nil, wire.ErrUnexpectedType{Want: TypeAdjacencyList, Got: atyp}
	}
	adjs, err := decodeAdjacencyList(aval)
	if err != nil {
		return nil, err
	}

	return &AdjLsa{Base: base, Adjacencies: adjs}, nil
}
