package ebml

import "strconv"

// Event is one step of a tag stream passed to TagWriter.Write.
// It is one of StartTag, EndTag or FullTag.
type Event interface {
	event()
}

// StartTag opens a container tag.
type StartTag struct {
	ID uint64
}

// EndTag closes the most recently opened tag. ID must match it.
type EndTag struct {
	ID uint64
}

// FullTag is a complete tag, payload included.
type FullTag struct {
	ID   uint64
	Data Payload
}

func (StartTag) event() {}
func (EndTag) event()   {}
func (FullTag) event()  {}

// Payload is the data carried by a tag.
// It is one of Master, UnsignedInt, SignedInt, Text, Binary or Float.
type Payload interface {
	Kind() Kind
}

// Child is an element of a Master payload.
type Child struct {
	ID   uint64
	Data Payload
}

// Master is the payload of a container tag: its children in order.
type Master []Child

// UnsignedInt is written big-endian in 1, 2, 4 or 8 bytes.
type UnsignedInt uint64

// SignedInt is written two's-complement big-endian in 1, 2, 4 or 8 bytes.
type SignedInt int64

// Text is written as its UTF-8 bytes.
type Text string

// Binary is written verbatim.
type Binary []byte

// Float is always written as an 8 byte IEEE-754 double.
type Float float64

// Kind identifies the variant of a Payload.
type Kind int

const (
	KindMaster Kind = iota
	KindUnsignedInt
	KindSignedInt
	KindText
	KindBinary
	KindFloat
)

func (Master) Kind() Kind      { return KindMaster }
func (UnsignedInt) Kind() Kind { return KindUnsignedInt }
func (SignedInt) Kind() Kind   { return KindSignedInt }
func (Text) Kind() Kind        { return KindText }
func (Binary) Kind() Kind      { return KindBinary }
func (Float) Kind() Kind       { return KindFloat }

func (k Kind) String() string {
	switch k {
	case KindMaster:
		return "master"
	case KindUnsignedInt:
		return "uint"
	case KindSignedInt:
		return "int"
	case KindText:
		return "utf8"
	case KindBinary:
		return "binary"
	case KindFloat:
		return "float"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}
