package ebml_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/tooxo/ebml-iterable/ebml"
	"github.com/tooxo/ebml-iterable/internal/ebmltest"
)

var testSchema = ebmltest.Schema{
	0x1a45dfa3: ebml.KindMaster,
	0x4286:     ebml.KindUnsignedInt,
	0x4282:     ebml.KindText,
	0x18538067: ebml.KindMaster,
	0x1f43b675: ebml.KindMaster,
	0xe7:       ebml.KindUnsignedInt,
	0xa3:       ebml.KindBinary,
	0xfb:       ebml.KindSignedInt,
	0x4489:     ebml.KindFloat,
	0xa0:       ebml.KindMaster,
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		tags ebml.Master
	}{
		{"empty master", ebml.Master{{ID: 0x1a45dfa3, Data: ebml.Master{}}}},
		{"header", ebml.Master{{ID: 0x1a45dfa3, Data: ebml.Master{
			{ID: 0x4286, Data: ebml.UnsignedInt(1)},
			{ID: 0x4282, Data: ebml.Text("webm")},
		}}}},
		{"scalars", ebml.Master{
			{ID: 0x4286, Data: ebml.UnsignedInt(math.MaxUint64)},
			{ID: 0xfb, Data: ebml.SignedInt(math.MinInt64)},
			{ID: 0xfb, Data: ebml.SignedInt(-300)},
			{ID: 0x4489, Data: ebml.Float(math.Pi)},
			{ID: 0xa3, Data: ebml.Binary(bytes.Repeat([]byte{7}, 5000))},
			{ID: 0x4282, Data: ebml.Text(strings.Repeat("ü", 100))},
		}},
		{"deep", ebml.Master{{ID: 0x18538067, Data: ebml.Master{
			{ID: 0x1f43b675, Data: ebml.Master{
				{ID: 0xe7, Data: ebml.UnsignedInt(1 << 33)},
				{ID: 0xa0, Data: ebml.Master{
					{ID: 0xa3, Data: ebml.Binary{1, 2, 3}},
					{ID: 0xfb, Data: ebml.SignedInt(-1)},
					{ID: 0xa0, Data: ebml.Master{}},
				}},
			}},
			{ID: 0x1f43b675, Data: ebml.Master{
				{ID: 0xa3, Data: ebml.Binary(bytes.Repeat([]byte{9}, 300))},
			}},
		}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dest bytes.Buffer
			tw := ebml.NewTagWriter(&dest)
			for _, c := range tt.tags {
				require.NoError(t, tw.Write(ebml.FullTag{ID: c.ID, Data: c.Data}))
			}
			require.Zero(t, tw.Buffered())
			require.NoError(t, tw.Close())

			got, err := ebmltest.Decode(&dest, testSchema)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.tags, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
