// Package tagdoc reads a tag tree written by hand in YAML or JSON and
// feeds it to an ebml.TagWriter.
//
// A document lists top-level tags. Every node carries an id and exactly one
// of uint, int, string, binary (hex), float or children:
//
//	tags:
//	  - id: "0x1A45DFA3"
//	    children:
//	      - id: "0x4286"
//	        uint: 1
//	      - id: "0x4282"
//	        string: webm
package tagdoc

import (
	"encoding/hex"
	"io"
	"strconv"

	"github.com/goccy/go-yaml"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/tooxo/ebml-iterable/ebml"
	"github.com/tooxo/ebml-iterable/internal/config"
)

// Document is a list of top-level tags.
type Document struct {
	Tags []Node `yaml:"tags" json:"tags"`
}

// Node is one tag. Children makes it a container, even when empty.
type Node struct {
	ID       string   `yaml:"id" json:"id"`
	Uint     *uint64  `yaml:"uint,omitempty" json:"uint,omitempty"`
	Int      *int64   `yaml:"int,omitempty" json:"int,omitempty"`
	String   *string  `yaml:"string,omitempty" json:"string,omitempty"`
	Binary   *string  `yaml:"binary,omitempty" json:"binary,omitempty"`
	Float    *float64 `yaml:"float,omitempty" json:"float,omitempty"`
	Children []Node   `yaml:"children,omitempty" json:"children,omitempty"`
}

// Parse decodes a document in the given format (config.FormatYAML or config.FormatJSON).
func Parse(r io.Reader, format string) (*Document, error) {
	doc := &Document{}
	var err error
	switch format {
	case config.FormatYAML:
		err = yaml.NewDecoder(r).Decode(doc)
	case config.FormatJSON:
		err = jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(r).Decode(doc)
	default:
		return nil, errors.Errorf("tagdoc: unknown format %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "tagdoc: decode %s", format)
	}
	return doc, nil
}

// ParseID parses a tag id written in hex with a 0x prefix, or in decimal.
func ParseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "tagdoc: bad id %q", s)
	}
	if id == 0 {
		return 0, errors.New("tagdoc: id must not be zero")
	}
	return id, nil
}

// Payload converts n, recursively, into an ebml payload.
func (n *Node) Payload() (ebml.Payload, error) {
	var p ebml.Payload
	set := 0
	if n.Uint != nil {
		p = ebml.UnsignedInt(*n.Uint)
		set++
	}
	if n.Int != nil {
		p = ebml.SignedInt(*n.Int)
		set++
	}
	if n.String != nil {
		p = ebml.Text(*n.String)
		set++
	}
	if n.Float != nil {
		p = ebml.Float(*n.Float)
		set++
	}
	if n.Binary != nil {
		b, err := hex.DecodeString(*n.Binary)
		if err != nil {
			return nil, errors.Wrapf(err, "tagdoc: tag %s: bad binary", n.ID)
		}
		p = ebml.Binary(b)
		set++
	}
	if n.Children != nil {
		m := make(ebml.Master, 0, len(n.Children))
		for i := range n.Children {
			c, err := n.Children[i].child()
			if err != nil {
				return nil, errors.Wrapf(err, "in tag %s", n.ID)
			}
			m = append(m, c)
		}
		p = m
		set++
	}
	if set != 1 {
		return nil, errors.Errorf("tagdoc: tag %s: want exactly one value, got %d", n.ID, set)
	}
	return p, nil
}

func (n *Node) child() (ebml.Child, error) {
	id, err := ParseID(n.ID)
	if err != nil {
		return ebml.Child{}, err
	}
	p, err := n.Payload()
	if err != nil {
		return ebml.Child{}, err
	}
	return ebml.Child{ID: id, Data: p}, nil
}

// Write sends every top-level tag of d to tw and returns how many were written.
func (d *Document) Write(tw *ebml.TagWriter) (int, error) {
	for i := range d.Tags {
		c, err := d.Tags[i].child()
		if err != nil {
			return i, err
		}
		if err = tw.Write(ebml.FullTag{ID: c.ID, Data: c.Data}); err != nil {
			return i, errors.Wrapf(err, "tagdoc: write tag %s", d.Tags[i].ID)
		}
	}
	return len(d.Tags), nil
}
