package ebml

import (
	"io"
	"reflect"

	"github.com/pkg/errors"
)

// Marshaler is the interface implemented by objects that can marshal themselves into valid EBML.
type Marshaler interface {
	MarshalEBML() (Payload, error)
}

// An UnsupportedTypeError is returned by Marshal when attempting
// to encode an unsupported value type.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return "ebml: unsupported type: " + e.Type.String()
}

// An Encoder writes EBML elements to an output stream.
type Encoder struct {
	tw *TagWriter
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	return &Encoder{tw: NewTagWriter(w, opts...)}
}

// Encode writes the EBML encoding of v to the stream.
// Every tagged field of v becomes one top-level element.
// See Marshal for details about the conversion of Go values to EBML.
func (enc *Encoder) Encode(v interface{}) error {
	m, err := Marshal(v)
	if err != nil {
		return err
	}
	for _, c := range m {
		if err = enc.tw.Write(FullTag{ID: c.ID, Data: c.Data}); err != nil {
			return err
		}
	}
	return nil
}

// Marshal returns the children of a struct (or pointer to struct) as a Master payload.
//
// Fields are selected by an `ebml:"<hex id>"` struct tag. An id path
// such as `ebml:"1654AE6B>AE"` nests the field inside the leading ids.
// With the omitempty option zero values are skipped. Slices produce one
// element per item, except []byte which is written as Binary.
func Marshal(v interface{}) (Master, error) {
	if v == nil {
		return nil, errors.New("ebml: Marshal nil")
	}
	if m, ok := v.(Marshaler); ok {
		p, err := m.MarshalEBML()
		if err != nil {
			return nil, err
		}
		if ch, ok := p.(Master); ok {
			return ch, nil
		}
		return nil, errors.Errorf("ebml: Marshal %T: payload %T has no children", v, p)
	}
	ref := reflect.ValueOf(v)
	for ref.Kind() == reflect.Ptr {
		if ref.IsNil() {
			return nil, errors.New("ebml: Marshal nil pointer")
		}
		ref = ref.Elem()
	}
	if ref.Kind() != reflect.Struct {
		return nil, &UnsupportedTypeError{ref.Type()}
	}
	return marshalStruct(ref)
}
