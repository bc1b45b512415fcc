// Package ebmltest reads EBML back into tag payloads so tests can check
// what a TagWriter produced. Element kinds come from a caller supplied Schema.
package ebmltest

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/tooxo/ebml-iterable/ebml"
)

// ErrFormat describes EBML format error
var ErrFormat = errors.New("ebmltest: not a valid format")

var mask = []byte{0x80, 0x40, 0x20, 0x10, 0x8, 0x4, 0x2, 0x1}
var rest = []byte{0xff, 0x7f, 0x3f, 0x1f, 0xf, 0x7, 0x3, 0x1, 0x0}

// Schema maps element ids to payload kinds.
type Schema map[uint64]ebml.Kind

// A Decoder reads EBML elements from an input stream.
type Decoder struct {
	buf  *bufio.Reader
	len  int64 // remaining bytes, negative when unbounded
	elem *Decoder
}

// NewDecoder returns a new decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{buf: bufio.NewReader(r), len: -1}
}

// Decode reads every element from r.
func Decode(r io.Reader, s Schema) (ebml.Master, error) {
	return NewDecoder(r).Decode(s)
}

// Next reads the header of the next element and returns its id and
// a decoder limited to its payload. It returns io.EOF at the end.
func (dec *Decoder) Next() (id uint64, v *Decoder, err error) {
	if err = dec.skip(); err != nil {
		return
	}
	if dec.len == 0 {
		err = io.EOF
		return
	}
	if id, err = dec.readVint(0); err != nil {
		return
	}
	var size uint64
	if size, err = dec.readVint(1); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return
	}
	if dec.len >= 0 {
		if int64(size) > dec.len {
			err = ErrFormat
			return
		}
		dec.len -= int64(size)
	}
	v = &Decoder{buf: dec.buf, len: int64(size)}
	dec.elem = v
	return
}

// Decode reads the remaining elements, resolving kinds with s.
func (dec *Decoder) Decode(s Schema) (ebml.Master, error) {
	m := ebml.Master{}
	for {
		id, elem, err := dec.Next()
		if err == io.EOF {
			return m, nil
		}
		if err != nil {
			return nil, err
		}
		p, err := elem.decodeAs(s, id)
		if err != nil {
			return nil, err
		}
		m = append(m, ebml.Child{ID: id, Data: p})
	}
}

func (dec *Decoder) decodeAs(s Schema, id uint64) (ebml.Payload, error) {
	kind, ok := s[id]
	if !ok {
		return nil, errors.Errorf("ebmltest: unknown element 0x%x", id)
	}
	if kind == ebml.KindMaster {
		return dec.Decode(s)
	}
	b, err := dec.ReadBytes()
	if err != nil {
		return nil, err
	}
	switch kind {
	case ebml.KindUnsignedInt:
		if len(b) > 8 {
			return nil, ErrFormat
		}
		var v uint64
		for _, it := range b {
			v = v<<8 | uint64(it)
		}
		return ebml.UnsignedInt(v), nil
	case ebml.KindSignedInt:
		if len(b) > 8 {
			return nil, ErrFormat
		}
		var v int64
		for i, it := range b {
			if i == 0 {
				v = int64(int8(it))
				continue
			}
			v = v<<8 | int64(it)
		}
		return ebml.SignedInt(v), nil
	case ebml.KindText:
		return ebml.Text(b), nil
	case ebml.KindBinary:
		return ebml.Binary(b), nil
	case ebml.KindFloat:
		switch len(b) {
		case 4:
			return ebml.Float(math.Float32frombits(binary.BigEndian.Uint32(b))), nil
		case 8:
			return ebml.Float(math.Float64frombits(binary.BigEndian.Uint64(b))), nil
		}
		return nil, ErrFormat
	}
	return nil, errors.Errorf("ebmltest: unsupported kind %s", kind)
}

// ReadBytes reads the remaining payload bytes.
func (dec *Decoder) ReadBytes() ([]byte, error) {
	if err := dec.skip(); err != nil {
		return nil, err
	}
	if dec.len < 0 {
		return nil, ErrFormat
	}
	b := make([]byte, dec.len)
	if _, err := io.ReadFull(dec.buf, b); err != nil {
		return nil, err
	}
	dec.len = 0
	return b, nil
}

// skip discards whatever the previous element left unread.
func (dec *Decoder) skip() error {
	e := dec.elem
	if e == nil {
		return nil
	}
	dec.elem = nil
	if err := e.skip(); err != nil {
		return err
	}
	if e.len > 0 {
		if _, err := dec.buf.Discard(int(e.len)); err != nil {
			return err
		}
		e.len = 0
	}
	return nil
}

// readVint keeps the length marker when off is 0 (ids) and strips it when off is 1 (sizes).
func (dec *Decoder) readVint(off int) (v uint64, err error) {
	m, err := dec.buf.ReadByte()
	if err != nil {
		return
	}
	if m == 0 {
		err = ErrFormat
		return
	}
	var n int
	var bit byte
	for n, bit = range mask {
		if m&bit != 0 {
			v = uint64(m & rest[n+off])
			break
		}
	}
	if dec.len >= 0 && dec.len < int64(n+1) {
		err = ErrFormat
		return
	}
	for i := 0; i < n; i++ {
		var c byte
		if c, err = dec.buf.ReadByte(); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return
		}
		v = v<<8 | uint64(c)
	}
	if dec.len >= 0 {
		dec.len -= int64(n + 1)
	}
	return
}
