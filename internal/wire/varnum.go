package wire

import "encoding/binary"

// TLNum is an NDN TLV type or length number, encoded in 1, 3, 5, or 9
// bytes depending on magnitude.
type TLNum uint64

// EncodingLength returns the number of bytes TLNum occupies on the wire.
func (v TLNum) EncodingLength() int {
	switch {
	case v <= 0xfc:
		return 1
	case v <= 0xffff:
		return 3
	case v <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// EncodeInto writes the TLV-number encoding of v into buf, which must be
// at least v.EncodingLength() bytes long, and returns the number of bytes
// written.
func (v TLNum) EncodeInto(buf []byte) int {
	switch {
	case v <= 0xfc:
		buf[0] = byte(v)
		return 1
	case v <= 0xffff:
		buf[0] = 0xfd
		binary.BigEndian.PutUint16(buf[1:], uint16(v))
		return 3
	case v <= 0xffffffff:
		buf[0] = 0xfe
		binary.BigEndian.PutUint32(buf[1:], uint32(v))
		return 5
	default:
		buf[0] = 0xff
		binary.BigEndian.PutUint64(buf[1:], uint64(v))
		return 9
	}
}

// Encode returns the TLV-number encoding of v as a new byte slice.
func (v TLNum) Encode() []byte {
	buf := make([]byte, v.EncodingLength())
	v.EncodeInto(buf)
	return buf
}

// ParseTLNum decodes a TLV number from the front of buf, returning the
// value and the number of bytes consumed.
func ParseTLNum(buf []byte) (TLNum, int, error) {
	if len(buf) == 0 {
		return 0, 0, ErrFormat{Msg: "TLV number: empty buffer"}
	}
	switch buf[0] {
	case 0xfd:
		if len(buf) < 3 {
			return 0, 0, ErrFormat{Msg: "TLV number: truncated 3-byte form"}
		}
		return TLNum(binary.BigEndian.Uint16(buf[1:3])), 3, nil
	case 0xfe:
		if len(buf) < 5 {
			return 0, 0, ErrFormat{Msg: "TLV number: truncated 5-byte form"}
		}
		return TLNum(binary.BigEndian.Uint32(buf[1:5])), 5, nil
	case 0xff:
		if len(buf) < 9 {
			return 0, 0, ErrFormat{Msg: "TLV number: truncated 9-byte form"}
		}
		return TLNum(binary.BigEndian.Uint64(buf[1:9])), 9, nil
	default:
		return TLNum(buf[0]), 1, nil
	}
}

// EncodeUint64 encodes a plain u64 value TLV body (big-endian, minimal
// width: 1, 2, 4, or 8 bytes) as used for SequenceNumber/ExpirationTime
// and cost fields.
func EncodeUint64(v uint64) []byte {
	switch {
	case v <= 0xff:
		return []byte{byte(v)}
	case v <= 0xffff:
		buf := make([]byte, 2)
		binary.BigEndian.PutUint16(buf, uint16(v))
		return buf
	case v <= 0xffffffff:
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(v))
		return buf
	default:
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, v)
		return buf
	}
}

// DecodeUint64 decodes a big-endian u64 value of 1, 2, 4, or 8 bytes.
func DecodeUint64(buf []byte) (uint64, error) {
	switch len(buf) {
	case 1:
		return uint64(buf[0]), nil
	case 2:
		return uint64(binary.BigEndian.Uint16(buf)), nil
	case 4:
		return uint64(binary.BigEndian.Uint32(buf)), nil
	case 8:
		return binary.BigEndian.Uint64(buf), nil
	default:
		return 0, ErrFormat{Msg: "invalid NonNegativeInteger length"}
	}
}
