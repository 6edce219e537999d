package wire

// AppendTLV appends a complete TYPE-LENGTH-VALUE block to w and returns
// the extended Wire. body is taken by reference, not copied.
func AppendTLV(w Wire, typ TLNum, body []byte) Wire {
	header := make([]byte, typ.EncodingLength()+TLNum(len(body)).EncodingLength())
	n := typ.EncodeInto(header)
	TLNum(len(body)).EncodeInto(header[n:])
	if len(body) == 0 {
		return append(w, header)
	}
	return append(w, header, body)
}

// Reader sequentially decodes TYPE-LENGTH-VALUE blocks from a flat byte
// slice. It is used to parse LSA bodies, which are always small enough
// to decode from a single contiguous buffer.
type Reader struct {
	buf []byte
	pos int
}

// NewReader constructs a Reader over buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Empty reports whether the reader has consumed the entire buffer.
func (r *Reader) Empty() bool {
	return r.pos >= len(r.buf)
}

// Peek returns the type of the next TLV block without consuming it. It
// is used to decide whether an optional/repeated field is present.
func (r *Reader) Peek() (TLNum, error) {
	if r.Empty() {
		return 0, ErrFormat{Msg: "unexpected end of buffer"}
	}
	typ, _, err := ParseTLNum(r.buf[r.pos:])
	return typ, err
}

// ReadTLV consumes and returns the next TYPE-LENGTH-VALUE block.
func (r *Reader) ReadTLV() (typ TLNum, value []byte, err error) {
	if r.Empty() {
		return 0, nil, ErrFormat{Msg: "unexpected end of buffer"}
	}

	typ, n, err := ParseTLNum(r.buf[r.pos:])
	if err != nil {
		return 0, nil, err
	}
	r.pos += n

	length, n, err := ParseTLNum(r.buf[r.pos:])
	if err != nil {
		return 0, nil, err
	}
	r.pos += n

	if r.pos+int(length) > len(r.buf) {
		return 0, nil, ErrFormat{Msg: "TLV length overruns buffer"}
	}
	value = r.buf[r.pos : r.pos+int(length)]
	r.pos += int(length)

	return typ, value, nil
}
