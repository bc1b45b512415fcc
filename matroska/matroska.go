package matroska

import (
	"encoding/binary"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tooxo/ebml-iterable/ebml"
)

// File represents a Matroska file.
// See detailed specification https://matroska.org/technical/specs/index.html
type File struct {
	EBML    *EBML      `ebml:"1A45DFA3"`
	Segment []*Segment `ebml:"18538067,omitempty"`
}

// Encode writes f to w. The EBML header and every Segment are each
// written to w in one piece.
func Encode(w io.Writer, f *File, opts ...ebml.Option) error {
	return ebml.NewEncoder(w, opts...).Encode(f)
}

// The EBML top level element contains a description of the file type, such as EBML
// version, file type name, file type version etc.
type EBML struct {
	Version            uint   `ebml:"4286"`
	ReadVersion        uint   `ebml:"42F7"`
	MaxIDLength        uint   `ebml:"42F2"`
	MaxSizeLength      uint   `ebml:"42F3"`
	DocType            string `ebml:"4282"`
	DocTypeVersion     uint   `ebml:"4287"`
	DocTypeReadVersion uint   `ebml:"4285"`
}

// NewEBML creates EBML top level element with default values
func NewEBML(docType string) *EBML {
	return &EBML{1, 1, 4, 8, docType, 4, 2}
}

// A Segment contains multimedia data, as well as any header data necessary for replay.
type Segment struct {
	Info    *SegmentInfo `ebml:"1549A966"`
	Tracks  []*Track     `ebml:"1654AE6B>AE,omitempty"`
	Cluster []*Cluster   `ebml:"1F43B675,omitempty"`
	Tags    []*Tag       `ebml:"1254C367>7373,omitempty"`
}

// SegmentInfo contains general information about a segment, like an UID, a title etc.
type SegmentInfo struct {
	UID           []byte     `ebml:"73A4,omitempty"`
	Title         string     `ebml:"7BA9,omitempty"`
	TimecodeScale uint64     `ebml:"2AD7B1"`
	Duration      float64    `ebml:"4489,omitempty"`
	DateUTC       *time.Time `ebml:"4461,omitempty"`
	MuxingApp     string     `ebml:"4D80"`
	WritingApp    string     `ebml:"5741"`
}

// NewSegmentInfo returns segment info with a random UID and millisecond timecodes.
func NewSegmentInfo(app string) *SegmentInfo {
	id := uuid.New()
	return &SegmentInfo{
		UID:           id[:],
		TimecodeScale: 1000000,
		MuxingApp:     app,
		WritingApp:    app,
	}
}

// A Track element describes one track of the Segment.
type Track struct {
	TrackNumber     uint        `ebml:"D7"`
	TrackUID        uint64      `ebml:"73C5"`
	TrackType       uint        `ebml:"83"`
	FlagLacing      bool        `ebml:"9C"`
	DefaultDuration uint64      `ebml:"23E383,omitempty"`
	Name            string      `ebml:"536E,omitempty"`
	Language        string      `ebml:"22B59C,omitempty"`
	CodecID         string      `ebml:"86"`
	CodecPrivate    []byte      `ebml:"63A2,omitempty"`
	Video           *VideoTrack `ebml:"E0,omitempty"`
	Audio           *AudioTrack `ebml:"E1,omitempty"`
}

// Track types
const (
	TrackTypeVideo    = 0x01
	TrackTypeAudio    = 0x02
	TrackTypeComplex  = 0x03
	TrackTypeLogo     = 0x10
	TrackTypeSubtitle = 0x11
	TrackTypeButton   = 0x12
	TrackTypeControl  = 0x20
)

// VideoTrack contains information that is specific for video tracks.
type VideoTrack struct {
	PixelWidth    uint `ebml:"B0"`
	PixelHeight   uint `ebml:"BA"`
	DisplayWidth  uint `ebml:"54B0,omitempty"`
	DisplayHeight uint `ebml:"54BA,omitempty"`
}

// AudioTrack contains information that is specific for audio tracks.
type AudioTrack struct {
	SamplingFreq float64 `ebml:"B5"`
	Channels     uint    `ebml:"9F"`
	BitDepth     uint    `ebml:"6264,omitempty"`
}

// A Cluster contains video, audio and subtitle data.
type Cluster struct {
	Timecode    uint64        `ebml:"E7"`
	PrevSize    uint64        `ebml:"AB,omitempty"`
	SimpleBlock []*Block      `ebml:"A3,omitempty"`
	BlockGroup  []*BlockGroup `ebml:"A0,omitempty"`
}

// BlockFlagKeyframe marks a SimpleBlock that can be decoded on its own.
const BlockFlagKeyframe = 0x80

// A Block holds one frame of a track, timed relative to its Cluster.
type Block struct {
	Track    uint64
	Timecode int16
	Flags    byte
	Data     []byte
}

// MarshalEBML encodes the block header (track vint, timecode, flags) followed by the frame.
func (r *Block) MarshalEBML() (ebml.Payload, error) {
	track, err := ebml.EncodeVint(r.Track)
	if err != nil {
		return nil, errors.Wrapf(err, "matroska: block track %d", r.Track)
	}
	b := make([]byte, 0, len(track)+3+len(r.Data))
	b = append(b, track...)
	b = binary.BigEndian.AppendUint16(b, uint16(r.Timecode))
	b = append(b, r.Flags)
	return ebml.Binary(append(b, r.Data...)), nil
}

func (r *Block) String() string {
	return "Block{" + strconv.Itoa(len(r.Data)) + " bytes}"
}

// A BlockGroup wraps a Block with its references and duration.
type BlockGroup struct {
	Block          *Block  `ebml:"A1"`
	Duration       uint64  `ebml:"9B,omitempty"`
	ReferenceBlock []int64 `ebml:"FB,omitempty"`
}

// Tag contains meta data for tracks and/or chapters.
type Tag struct {
	Targets    *TagTarget   `ebml:"63C0"`
	SimpleTags []*SimpleTag `ebml:"67C8"`
}

// TagTarget contains all UIDs where the specified meta data apply.
type TagTarget struct {
	TypeValue uint     `ebml:"68CA,omitempty"`
	Type      string   `ebml:"63CA,omitempty"`
	TrackUID  []uint64 `ebml:"63C5,omitempty"`
}

// SimpleTag contains general information about the target.
type SimpleTag struct {
	Name     string       `ebml:"45A3"`
	Language string       `ebml:"447A"`
	Default  bool         `ebml:"4484"`
	String   string       `ebml:"4487,omitempty"`
	Binary   []byte       `ebml:"4485,omitempty"`
	Tags     []*SimpleTag `ebml:"67C8,omitempty"`
}

// NewSimpleTag returns a default, undetermined language string tag.
func NewSimpleTag(name, value string) *SimpleTag {
	return &SimpleTag{Name: name, Language: "und", Default: true, String: value}
}
