package ebml

import (
	"encoding/binary"
	"io"
	"math"
	"slices"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Flusher is implemented by destinations that buffer their writes,
// such as *bufio.Writer or *zstd.Encoder.
type Flusher interface {
	Flush() error
}

type openTag struct {
	id     uint64
	offset int
}

// A TagWriter writes a stream of tag events as EBML.
//
// Payload bytes are buffered as they arrive and each tag's header (id and
// size) is inserted in front of its payload once the tag is complete. When
// the outermost tag closes the whole buffer goes to the destination in a
// single write followed by a flush, if the destination is a Flusher.
//
// A TagWriter does no schema checks: ids and payloads are written as given.
// It is not safe for concurrent use.
type TagWriter struct {
	w    io.Writer
	open []openTag
	buf  []byte
	log  *zap.Logger
}

// NewTagWriter returns a TagWriter that writes to w.
func NewTagWriter(w io.Writer, opts ...Option) *TagWriter {
	o := newOptions(opts)
	return &TagWriter{w: w, log: o.log}
}

// Write writes a single tag event.
func (tw *TagWriter) Write(ev Event) error {
	switch ev := ev.(type) {
	case StartTag:
		tw.open = append(tw.open, openTag{ev.ID, len(tw.buf)})
		return nil
	case EndTag:
		return tw.endTag(ev.ID)
	case FullTag:
		return tw.writeFullTag(ev.ID, ev.Data)
	}
	return errors.Errorf("ebml: unsupported event %T", ev)
}

// Depth returns the number of open tags.
func (tw *TagWriter) Depth() int {
	return len(tw.open)
}

// Buffered returns the number of bytes waiting for the outermost tag to close.
func (tw *TagWriter) Buffered() int {
	return len(tw.buf)
}

// Close reports tags that were opened but never closed.
// It does not write anything and does not close the destination.
func (tw *TagWriter) Close() error {
	if len(tw.open) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(tw.open))
	for i := len(tw.open) - 1; i >= 0; i-- {
		ids = append(ids, tw.open[i].id)
	}
	return &UnclosedTagsError{IDs: ids}
}

// A mismatched entry is dropped from the stack, not restored.
func (tw *TagWriter) endTag(id uint64) error {
	n := len(tw.open)
	if n == 0 {
		return &UnmatchedCloseError{TagID: id}
	}
	top := tw.open[n-1]
	tw.open = tw.open[:n-1]
	if top.id != id {
		return &UnmatchedCloseError{TagID: id, ExpectedID: &top.id}
	}
	return tw.finalizeTag(id, uint64(len(tw.buf)-top.offset))
}

func (tw *TagWriter) writeFullTag(id uint64, data Payload) error {
	var size int
	switch data := data.(type) {
	case Master:
		if err := tw.Write(StartTag{ID: id}); err != nil {
			return err
		}
		for _, c := range data {
			if err := tw.Write(FullTag{ID: c.ID, Data: c.Data}); err != nil {
				return err
			}
		}
		return tw.Write(EndTag{ID: id})
	case UnsignedInt:
		size = tw.appendUint(uint64(data))
	case SignedInt:
		size = tw.appendInt(int64(data))
	case Text:
		tw.buf = append(tw.buf, data...)
		size = len(data)
	case Binary:
		tw.buf = append(tw.buf, data...)
		size = len(data)
	case Float:
		tw.buf = binary.BigEndian.AppendUint64(tw.buf, math.Float64bits(float64(data)))
		size = 8
	default:
		return errors.Errorf("ebml: unsupported payload %T for tag 0x%x", data, id)
	}
	return tw.finalizeTag(id, uint64(size))
}

// Widths are 1, 2, 4 or 8 bytes, never 3, 5, 6 or 7.
func (tw *TagWriter) appendUint(v uint64) int {
	switch {
	case v <= math.MaxUint8:
		tw.buf = append(tw.buf, byte(v))
		return 1
	case v <= math.MaxUint16:
		tw.buf = binary.BigEndian.AppendUint16(tw.buf, uint16(v))
		return 2
	case v <= math.MaxUint32:
		tw.buf = binary.BigEndian.AppendUint32(tw.buf, uint32(v))
		return 4
	}
	tw.buf = binary.BigEndian.AppendUint64(tw.buf, v)
	return 8
}

func (tw *TagWriter) appendInt(v int64) int {
	switch {
	case v >= math.MinInt8 && v <= math.MaxInt8:
		tw.buf = append(tw.buf, byte(v))
		return 1
	case v >= math.MinInt16 && v <= math.MaxInt16:
		tw.buf = binary.BigEndian.AppendUint16(tw.buf, uint16(v))
		return 2
	case v >= math.MinInt32 && v <= math.MaxInt32:
		tw.buf = binary.BigEndian.AppendUint32(tw.buf, uint32(v))
		return 4
	}
	tw.buf = binary.BigEndian.AppendUint64(tw.buf, uint64(v))
	return 8
}

// finalizeTag inserts the header of a tag whose payload is the last size
// bytes of the buffer. Headers of already finished children sit inside
// that payload and shift right with it.
func (tw *TagWriter) finalizeTag(id, size uint64) error {
	vint, err := EncodeVint(size)
	if err != nil {
		return &SizeError{TagID: id, Size: size, Err: err}
	}
	head := appendID(make([]byte, 0, 8+len(vint)), id)
	head = append(head, vint...)
	at := len(tw.buf) - int(size)
	tw.buf = slices.Insert(tw.buf, at, head...)

	if len(tw.open) > 0 {
		return nil
	}
	return tw.flush(id)
}

func (tw *TagWriter) flush(id uint64) error {
	b := tw.buf
	tw.buf = nil
	n, err := tw.w.Write(b)
	if err == nil && n < len(b) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return &WriteError{Err: err}
	}
	if f, ok := tw.w.(Flusher); ok {
		if err = f.Flush(); err != nil {
			return &WriteError{Err: err}
		}
	}
	tw.log.Debug("flushed tag", zap.String("id", formatID(id)), zap.Int("bytes", n))
	return nil
}

// appendID appends id big-endian without its leading zero bytes.
// The id's own leading bits carry its length.
func appendID(b []byte, id uint64) []byte {
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], id)
	i := 0
	for i < len(raw) && raw[i] == 0 {
		i++
	}
	return append(b, raw[i:]...)
}

func formatID(id uint64) string {
	return "0x" + strconv.FormatUint(id, 16)
}
