package tagdoc

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tooxo/ebml-iterable/ebml"
	"github.com/tooxo/ebml-iterable/internal/config"
)

const headerYAML = `
tags:
  - id: "0x1A45DFA3"
    children:
      - id: "0x4286"
        uint: 1
      - id: "0x4282"
        string: webm
  - id: "0xEC"
    binary: "00ff"
`

const headerJSON = `{"tags": [
  {"id": "0x1A45DFA3", "children": [
    {"id": "0x4286", "uint": 1},
    {"id": "0x4282", "string": "webm"}
  ]},
  {"id": "236", "binary": "00ff"}
]}`

func TestParseAndWrite(t *testing.T) {
	want := []byte{
		0x1a, 0x45, 0xdf, 0xa3, 0x8b,
		0x42, 0x86, 0x81, 0x01,
		0x42, 0x82, 0x84, 'w', 'e', 'b', 'm',
		0xec, 0x82, 0x00, 0xff,
	}
	for format, src := range map[string]string{
		config.FormatYAML: headerYAML,
		config.FormatJSON: headerJSON,
	} {
		t.Run(format, func(t *testing.T) {
			doc, err := Parse(strings.NewReader(src), format)
			require.NoError(t, err)

			var buf bytes.Buffer
			n, err := doc.Write(ebml.NewTagWriter(&buf))
			require.NoError(t, err)
			assert.Equal(t, 2, n)
			assert.Equal(t, want, buf.Bytes())
		})
	}
}

func TestPayload(t *testing.T) {
	doc, err := Parse(strings.NewReader(`{"tags": [{"id": "0x18538067", "children": [
		{"id": "0xFB", "int": -2},
		{"id": "0x4489", "float": 1.5},
		{"id": "0x1F43B675", "children": []}
	]}]}`), config.FormatJSON)
	require.NoError(t, err)
	require.Len(t, doc.Tags, 1)

	p, err := doc.Tags[0].Payload()
	require.NoError(t, err)
	want := ebml.Master{
		{ID: 0xfb, Data: ebml.SignedInt(-2)},
		{ID: 0x4489, Data: ebml.Float(1.5)},
		{ID: 0x1f43b675, Data: ebml.Master{}},
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestPayloadErrors(t *testing.T) {
	u := uint64(1)
	s := "x"
	bad := "zz"
	tests := []struct {
		name string
		node Node
	}{
		{"no value", Node{ID: "0x81"}},
		{"two values", Node{ID: "0x81", Uint: &u, String: &s}},
		{"bad hex", Node{ID: "0x81", Binary: &bad}},
		{"bad child id", Node{ID: "0x81", Children: []Node{{ID: "nope", Uint: &u}}}},
		{"zero child id", Node{ID: "0x81", Children: []Node{{ID: "0", Uint: &u}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.node.Payload()
			assert.Error(t, err)
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(strings.NewReader("{}"), "toml")
	assert.Error(t, err)

	_, err = Parse(strings.NewReader("{"), config.FormatJSON)
	assert.Error(t, err)
}

func TestWriteStopsAtBadTag(t *testing.T) {
	u := uint64(7)
	doc := &Document{Tags: []Node{
		{ID: "0xE7", Uint: &u},
		{ID: "bad", Uint: &u},
	}}
	var buf bytes.Buffer
	n, err := doc.Write(ebml.NewTagWriter(&buf))
	assert.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []byte{0xe7, 0x81, 0x07}, buf.Bytes())
}
