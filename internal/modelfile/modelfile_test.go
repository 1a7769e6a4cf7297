package modelfile

import (
	"testing"

	"github.com/elektrokombinacija/nanobot-assembly/internal/geometry"
	"github.com/elektrokombinacija/nanobot-assembly/internal/matrix"
)

func TestWriteReadRoundTrip(t *testing.T) {
	coords := []geometry.Coord{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 2, Z: 0}, {X: 4, Y: 4, Z: 4}, {X: 2, Y: 0, Z: 3},
	}
	m := matrix.NewFromCoords(geometry.Resolution(5), coords)
	bs, err := Write(m)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if bs[0] != 5 {
		t.Fatalf("first byte should be resolution, got %d", bs[0])
	}
	got, err := Read(bs)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Dim() != 5 {
		t.Fatalf("Dim() = %d, want 5", got.Dim())
	}
	for _, c := range coords {
		if !got.IsFilled(c) {
			t.Errorf("round trip dropped filled voxel %v", c)
		}
	}
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			for z := 0; z < 5; z++ {
				c := geometry.Coord{X: x, Y: y, Z: z}
				want := false
				for _, fc := range coords {
					if fc == c {
						want = true
					}
				}
				if got.IsFilled(c) != want {
					t.Errorf("voxel %v: got filled=%v, want %v", c, got.IsFilled(c), want)
				}
			}
		}
	}
}

func TestReadRejectsEmptyAndTruncated(t *testing.T) {
	if _, err := Read(nil); err != ErrEmpty {
		t.Errorf("empty input should return ErrEmpty, got %v", err)
	}
	if _, err := Read([]byte{5}); err != ErrTruncated {
		t.Errorf("missing bitmap bytes should return ErrTruncated, got %v", err)
	}
}
