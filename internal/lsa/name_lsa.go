package lsa

import (
	"slices"

	"github.com/ndn-lsr/nlsr/internal/wire"
)

// NameLsa advertises the unicast and multicast name prefixes a router
// originates (spec §3). Names within each set are kept sorted so that
// Diff can run as a single linear merge.
type NameLsa struct {
	Base
	Names          []wire.Name
	MulticastNames []wire.Name
}

// sortNames returns a sorted clone of names using wire.Name.Compare.
func sortNames(names []wire.Name) []wire.Name {
	out := slices.Clone(names)
	slices.SortFunc(out, func(a, b wire.Name) int { return a.Compare(b) })
	return out
}

// NewNameLsa constructs a NameLsa with its name sets normalized to
// sorted order, as required by the wire format (spec §4.1).
func NewNameLsa(base Base, names, mcNames []wire.Name) *NameLsa {
	return &NameLsa{
		Base:           base,
		Names:          sortNames(names),
		MulticastNames: sortNames(mcNames),
	}
}

// Encode serializes the NameLsa: base fields, then the unicast
// NamePrefixList, then the multicast NamePrefixList, in that fixed
// order (spec §4.1, §6).
func (n *NameLsa) Encode() wire.Wire {
	body := n.Base.encodeFields()
	body = wire.AppendTLV(body, TypeNamePrefixList, encodeNameList(n.Names))
	body = wire.AppendTLV(body, TypeNamePrefixList, encodeNameList(n.MulticastNames))
	return wire.AppendTLV(nil, TypeNameLsaBlock, body.Join())
}

func encodeNameList(names []wire.Name) []byte {
	var w wire.Wire
	for _, name := range names {
		w = append(w, name.Encode()...)
	}
	return w.Join()
}

func decodeNameList(buf []byte) ([]wire.Name, error) {
	r := wire.NewReader(buf)
	var out []wire.Name
	for !r.Empty() {
		typ, val, err := r.ReadTLV()
		if err != nil {
			return nil, err
		}
		name, err := wire.ParseName(typ, val)
		if err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, nil
}

// ParseNameLsa decodes a NameLsa TLV block. Both NamePrefixList
// sub-blocks are mandatory and must appear in unicast-then-multicast
// order; any other shape is a WireFormat error (spec §4.1).
func ParseNameLsa(block []byte) (*NameLsa, error) {
	outer := wire.NewReader(block)
	typ, val, err := outer.ReadTLV()
	if err != nil {
		return nil, err
	}
	if typ != TypeNameLsaBlock {
		return nil, wire.ErrUnexpectedType{Want: TypeNameLsaBlock, Got: typ}
	}

	r := wire.NewReader(val)
	base, err := parseBase(r)
	if err != nil {
		return nil, err
	}

	if r.Empty() {
		return nil, wire.ErrMissingField{Field: "NamePrefixList(unicast)"}
	}
	typ, val, err = r.ReadTLV()
	if err != nil {
		return nil, err
	}
	if typ != TypeNamePrefixList {
		return nil, wire.ErrUnexpectedType{Want: TypeNamePrefixList, Got: typ}
	}
	names, err := decodeNameList(val)
	if err != nil {
		return nil, err
	}

	if r.Empty() {
		return nil, wire.ErrMissingField{Field: "NamePrefixList(multicast)"}
	}
	typ, val, err = r.ReadTLV()
	if err != nil {
		return nil, err
	}
	if typ != TypeNamePrefixList {
		return nil, wire.ErrUnexpectedType{Want: TypeNamePrefixList, Got: typ}
	}
	mcNames, err := decodeNameList(val)
	if err != nil {
		return nil, err
	}

	return &NameLsa{Base: base, Names: names, MulticastNames: mcNames}, nil
}

// NameDiff is the set-quadruple produced by diffing two NameLsa
// instances (spec §3, §4.1): names added/removed from the unicast set,
// and from the multicast set.
type NameDiff struct {
	Add      []wire.Name
	Remove   []wire.Name
	McAdd    []wire.Name
	McRemove []wire.Name
}

// diffSorted computes (add, remove) between two sorted name slices by a
// single linear merge (spec §3: "using set difference over sorted
// lists").
func diffSorted(oldNames, newNames []wire.Name) (add, remove []wire.Name) {
	i, j := 0, 0
	for i < len(oldNames) && j < len(newNames) {
		switch c := oldNames[i].Compare(newNames[j]); {
		case c == 0:
			i++
			j++
		case c < 0:
			remove = append(remove, oldNames[i])
			i++
		default:
			add = append(add, newNames[j])
			j++
		}
	}
	remove = append(remove, oldNames[i:]...)
	add = append(add, newNames[j:]...)
	return add, remove
}

// Diff computes the four disjoint sets distinguishing old from n.
func (n *NameLsa) Diff(old *NameLsa) NameDiff {
	var d NameDiff
	if old == nil {
		d.Add = slices.Clone(n.Names)
		d.McAdd = slices.Clone(n.MulticastNames)
		return d
	}
	d.Add, d.Remove = diffSorted(old.Names, n.Names)
	d.McAdd, d.McRemove = diffSorted(old.MulticastNames, n.MulticastNames)
	return d
}
