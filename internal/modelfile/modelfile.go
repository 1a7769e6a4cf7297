// Package modelfile implements the on-disk ".mdl" voxel model codec,
// grounded on
// original_source/rust/icfpc2018_lib/src/model.rs's exact bit layout: byte 0
// is the resolution R, followed by ⌈R³/8⌉ bitmap bytes with bit index
// k=x·R²+y·R+z, bit 0 the LSB of each byte, and any trailing bits past R³
// ignored.
package modelfile

import (
	"errors"

	"github.com/elektrokombinacija/nanobot-assembly/internal/geometry"
	"github.com/elektrokombinacija/nanobot-assembly/internal/matrix"
)

// ErrEmpty is returned by Read when given a zero-length buffer.
var ErrEmpty = errors.New("modelfile: empty input")

// ErrTruncated is returned by Read when the buffer is shorter than its
// declared resolution requires.
var ErrTruncated = errors.New("modelfile: truncated bitmap")

// ErrResolution is returned for a resolution outside [1,250].
var ErrResolution = errors.New("modelfile: resolution out of range")

// Read parses a .mdl byte buffer into a Matrix.
func Read(bs []byte) (*matrix.Matrix, error) {
	if len(bs) == 0 {
		return nil, ErrEmpty
	}
	r := int(bs[0])
	if r < 1 || r > 250 {
		return nil, ErrResolution
	}
	total := r * r * r
	need := (total + 7) / 8
	if len(bs) < 1+need {
		return nil, ErrTruncated
	}
	bitmap := bs[1 : 1+need]
	m := matrix.New(geometry.Resolution(r))
	k := 0
	for x := 0; x < r; x++ {
		for y := 0; y < r; y++ {
			for z := 0; z < r; z++ {
				byteIdx := k / 8
				bitIdx := uint(k % 8)
				if bitmap[byteIdx]&(1<<bitIdx) != 0 {
					m.SetFilled(geometry.Coord{X: x, Y: y, Z: z})
				}
				k++
			}
		}
	}
	return m, nil
}

// Write serializes m into a .mdl byte buffer.
func Write(m *matrix.Matrix) ([]byte, error) {
	r := m.Dim()
	if r < 1 || r > 250 {
		return nil, ErrResolution
	}
	total := r * r * r
	need := (total + 7) / 8
	out := make([]byte, 1+need)
	out[0] = byte(r)
	k := 0
	for x := 0; x < r; x++ {
		for y := 0; y < r; y++ {
			for z := 0; z < r; z++ {
				if m.IsFilled(geometry.Coord{X: x, Y: y, Z: z}) {
					out[1+k/8] |= 1 << uint(k%8)
				}
				k++
			}
		}
	}
	return out, nil
}
