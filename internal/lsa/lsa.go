package lsa

import "github.com/ndn-lsr/nlsr/internal/wire"

// Lsa is the common interface satisfied by NameLsa, AdjLsa, and
// CoordinateLsa: every LSA can report its base fields, its type, and
// encode itself to the wire.
type Lsa interface {
	GetBase() Base
	LsaType() Type
	Encode() wire.Wire
}

func (n *NameLsa) GetBase() Base       { return n.Base }
func (n *NameLsa) LsaType() Type       { return TypeName }
func (a *AdjLsa) GetBase() Base        { return a.Base }
func (a *AdjLsa) LsaType() Type        { return TypeAdjacency }
func (c *CoordinateLsa) GetBase() Base { return c.Base }
func (c *CoordinateLsa) LsaType() Type { return TypeCoordinate }

// Parse decodes an LSA TLV block of any of the three types, dispatching
// on the outer block's TLV type.
func Parse(block []byte) (Lsa, error) {
	r := wire.NewReader(block)
	typ, err := r.Peek()
	if err != nil {
		return nil, err
	}

	switch typ {
	case TypeNameLsaBlock:
		return ParseNameLsa(block)
	case TypeAdjLsaBlock:
		return ParseAdjLsa(block)
	case TypeCoordLsaBlock:
		return ParseCoordinateLsa(block)
	default:
		return nil, wire.ErrFormat{Msg: "unrecognized LSA block type"}
	}
}
