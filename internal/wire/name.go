package wire

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// TypeGenericNameComponent is the TLV type of an ordinary name component.
// The core never needs to distinguish component sub-types (segment,
// version, ...); every component advertised in an LSA is generic.
const TypeGenericNameComponent TLNum = 0x08

// TypeName is the TLV type of a Name block.
const TypeName TLNum = 0x07

// Component is one length-prefixed element of a Name.
type Component struct {
	Typ TLNum
	Val []byte
}

// NewGenericComponent constructs a generic component from a string.
func NewGenericComponent(s string) Component {
	return Component{Typ: TypeGenericNameComponent, Val: []byte(s)}
}

// Clone returns a deep copy of c.
func (c Component) Clone() Component {
	return Component{Typ: c.Typ, Val: bytes.Clone(c.Val)}
}

// Compare orders components first by TLV type, then by value bytes.
func (c Component) Compare(o Component) int {
	if c.Typ != o.Typ {
		if c.Typ < o.Typ {
			return -1
		}
		return 1
	}
	return bytes.Compare(c.Val, o.Val)
}

// EncodingLength returns the wire size of the component.
func (c Component) EncodingLength() int {
	return c.Typ.EncodingLength() + TLNum(len(c.Val)).EncodingLength() + len(c.Val)
}

// EncodeInto writes the component's TLV encoding into buf and returns the
// number of bytes written.
func (c Component) EncodeInto(buf []byte) int {
	n := c.Typ.EncodeInto(buf)
	n += TLNum(len(c.Val)).EncodeInto(buf[n:])
	n += copy(buf[n:], c.Val)
	return n
}

// String returns the component in NDN URI component form ("type=value"
// for non-generic components, plain text otherwise).
func (c Component) String() string {
	if c.Typ == TypeGenericNameComponent {
		return string(c.Val)
	}
	return strconv.FormatUint(uint64(c.Typ), 10) + "=" + string(c.Val)
}

// Name is an ordered sequence of length-prefixed components. Name
// equality, lexicographic order, and prefix match are the only
// semantics the routing core relies on (spec §3).
type Name []Component

// NameFromStr parses a "/"-delimited URI string into a Name.
func NameFromStr(s string) Name {
	s = strings.Trim(s, "/")
	if s == "" {
		return Name{}
	}
	parts := strings.Split(s, "/")
	n := make(Name, len(parts))
	for i, p := range parts {
		n[i] = NewGenericComponent(p)
	}
	return n
}

// Clone returns a deep copy of the Name.
func (n Name) Clone() Name {
	out := make(Name, len(n))
	for i, c := range n {
		out[i] = c.Clone()
	}
	return out
}

// Append returns a new Name with the given components appended.
func (n Name) Append(comps ...Component) Name {
	out := make(Name, 0, len(n)+len(comps))
	out = append(out, n...)
	out = append(out, comps...)
	return out
}

// String renders the Name in NDN URI form.
func (n Name) String() string {
	if len(n) == 0 {
		return "/"
	}
	sb := strings.Builder{}
	for _, c := range n {
		sb.WriteByte('/')
		sb.WriteString(c.String())
	}
	return sb.String()
}

// Compare implements lexicographic order over components: shorter
// matching prefixes sort first (spec §3: "Names... support... lexicographic
// ordering").
func (n Name) Compare(o Name) int {
	for i := 0; i < len(n) && i < len(o); i++ {
		if c := n[i].Compare(o[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(n) < len(o):
		return -1
	case len(n) > len(o):
		return 1
	default:
		return 0
	}
}

// Equal reports whether n and o have identical components.
func (n Name) Equal(o Name) bool {
	return n.Compare(o) == 0
}

// IsPrefix reports whether n is a prefix of (or equal to) o.
func (n Name) IsPrefix(o Name) bool {
	if len(n) > len(o) {
		return false
	}
	for i := range n {
		if n[i].Compare(o[i]) != 0 {
			return false
		}
	}
	return true
}

// EncodingLength returns the size, in bytes, of the Name's components
// without the enclosing Name TLV header.
func (n Name) EncodingLength() int {
	l := 0
	for _, c := range n {
		l += c.EncodingLength()
	}
	return l
}

// bytesInner encodes the Name's components without the enclosing Name
// TLV header, used both to hash the name and to embed it in a Name TLV.
func (n Name) bytesInner() []byte {
	buf := make([]byte, n.EncodingLength())
	pos := 0
	for _, c := range n {
		pos += c.EncodeInto(buf[pos:])
	}
	return buf
}

// Hash returns a stable non-cryptographic hash of the Name. The LSDB,
// topology map, and NPT/RTPE arena do not key on it; they key on
// TlvStr.
func (n Name) Hash() uint64 {
	return xxhash.Sum64(n.bytesInner())
}

// TlvStr returns the Name's wire encoding as a string, suitable for use
// as an exact (collision-free, unlike Hash) map key.
func (n Name) TlvStr() string {
	return string(n.bytesInner())
}

// NameFromTlvStr parses a Name back out of the encoding produced by
// TlvStr.
func NameFromTlvStr(s string) (Name, error) {
	r := NewReader([]byte(s))
	var out Name
	for !r.Empty() {
		typ, val, err := r.ReadTLV()
		if err != nil {
			return nil, err
		}
		out = append(out, Component{Typ: typ, Val: bytes.Clone(val)})
	}
	return out, nil
}

// Encode wraps the Name's components in a Name TLV block.
func (n Name) Encode() Wire {
	return AppendTLV(nil, TypeName, n.bytesInner())
}

// ParseName decodes a Name TLV block (type, then nested components).
func ParseName(typ TLNum, value []byte) (Name, error) {
	if typ != TypeName {
		return nil, ErrUnexpectedType{Want: TypeName, Got: typ}
	}
	return NameFromTlvStr(string(value))
}
