package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tooxo/ebml-iterable/ebml"
	"github.com/tooxo/ebml-iterable/internal/ebmltest"
)

const input = `tags:
  - id: "0x1A45DFA3"
    children:
      - id: "0x4282"
        string: webm
  - id: "0x18538067"
    children:
      - id: "0x1F43B675"
        children:
          - id: "0xE7"
            uint: 1000
`

var schema = ebmltest.Schema{
	0x1a45dfa3: ebml.KindMaster,
	0x4282:     ebml.KindText,
	0x18538067: ebml.KindMaster,
	0x1f43b675: ebml.KindMaster,
	0xe7:       ebml.KindUnsignedInt,
}

var want = ebml.Master{
	{ID: 0x1a45dfa3, Data: ebml.Master{{ID: 0x4282, Data: ebml.Text("webm")}}},
	{ID: 0x18538067, Data: ebml.Master{
		{ID: 0x1f43b675, Data: ebml.Master{{ID: 0xe7, Data: ebml.UnsignedInt(1000)}}},
	}},
}

func execute(t *testing.T, stdin string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	return &stdout, cmd.Execute()
}

func TestWriteToStdout(t *testing.T) {
	stdout, err := execute(t, input, "--format", "yaml", "-")
	require.NoError(t, err)

	got, err := ebmltest.Decode(stdout, schema)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteCompressedFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "tags.yml")
	out := filepath.Join(dir, "tags.ebml.zst")
	require.NoError(t, os.WriteFile(in, []byte(input), 0o644))

	_, err := execute(t, "", "--compress", "zstd", "--out", out, "--log-level", "error", in)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	dec, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer dec.Close()

	got, err := ebmltest.Decode(dec, schema)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRejectsBadFlags(t *testing.T) {
	_, err := execute(t, input, "--compress", "gzip", "-")
	assert.Error(t, err)

	_, err = execute(t, input)
	assert.Error(t, err)

	_, err = execute(t, "", filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestUnknownCompression(t *testing.T) {
	_, _, err := newSink(&bytes.Buffer{}, "lz4")
	assert.Error(t, err)
}
