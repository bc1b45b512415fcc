package ebml

import "github.com/pkg/errors"

// MaxVintLength is the largest number of octets an encoded size may take.
const MaxVintLength = 8

// MaxVintValue is the largest size that fits in MaxVintLength octets.
// The all-ones pattern of every length is reserved for "unknown size".
const MaxVintValue = 1<<(7*MaxVintLength) - 2

// ErrVintOverflow is returned when a value exceeds MaxVintValue.
var ErrVintOverflow = errors.New("ebml: value too large for vint")

var mask = []byte{0x80, 0x40, 0x20, 0x10, 0x8, 0x4, 0x2, 0x1}

// EncodeVint returns the shortest EBML variable length encoding of v.
// The position of the first set bit of the first octet gives the length.
func EncodeVint(v uint64) ([]byte, error) {
	for n := 1; n <= MaxVintLength; n++ {
		if v >= 1<<(7*uint(n))-1 {
			continue
		}
		b := make([]byte, n)
		for i := n - 1; i >= 0; i-- {
			b[i] = byte(v)
			v >>= 8
		}
		b[0] |= mask[n-1]
		return b, nil
	}
	return nil, ErrVintOverflow
}
