package geometry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoordDiffNorms(t *testing.T) {
	tests := []struct {
		d       CoordDiff
		l1      int
		linf    int
		near    bool
		farFlag bool
	}{
		{CoordDiff{Coord{1, 0, 0}}, 1, 1, true, true},
		{CoordDiff{Coord{1, 1, 0}}, 2, 1, true, true},
		{CoordDiff{Coord{1, 1, 1}}, 3, 1, false, true},
		{CoordDiff{Coord{0, 0, 0}}, 0, 0, false, false},
		{CoordDiff{Coord{30, 0, 0}}, 30, 30, false, true},
		{CoordDiff{Coord{31, 0, 0}}, 31, 31, false, false},
	}
	for _, tt := range tests {
		if got := tt.d.L1Norm(); got != tt.l1 {
			t.Errorf("L1Norm(%v) = %d, want %d", tt.d, got, tt.l1)
		}
		if got := tt.d.LInfNorm(); got != tt.linf {
			t.Errorf("LInfNorm(%v) = %d, want %d", tt.d, got, tt.linf)
		}
		if got := tt.d.IsNear(); got != tt.near {
			t.Errorf("IsNear(%v) = %v, want %v", tt.d, got, tt.near)
		}
		if got := tt.d.IsFar(); got != tt.farFlag {
			t.Errorf("IsFar(%v) = %v, want %v", tt.d, got, tt.farFlag)
		}
	}
}

func TestLinearCoordDiffToCoordDiff(t *testing.T) {
	tests := []struct {
		l    LinearCoordDiff
		want Coord
	}{
		{Short(AxisX, 2), Coord{2, 0, 0}},
		{Short(AxisY, 3), Coord{0, 3, 0}},
		{Short(AxisZ, 4), Coord{0, 0, 4}},
		{LongD(AxisX, 10), Coord{10, 0, 0}},
		{LongD(AxisY, 11), Coord{0, 11, 0}},
		{LongD(AxisZ, 12), Coord{0, 0, 12}},
	}
	for _, tt := range tests {
		if got := tt.l.ToCoordDiff().Coord; got != tt.want {
			t.Errorf("%v.ToCoordDiff() = %v, want %v", tt.l, got, tt.want)
		}
	}
}

func TestLinearCoordDiffValid(t *testing.T) {
	if !Short(AxisX, 5).Valid() || Short(AxisX, 6).Valid() {
		t.Error("Short bound should be |value|<=5")
	}
	if !LongD(AxisX, 15).Valid() || LongD(AxisX, 16).Valid() {
		t.Error("Long bound should be |value|<=15")
	}
}

func TestRegionIntersects(t *testing.T) {
	r := Region{Min: Coord{0, 0, 0}, Max: Coord{1, 1, 1}}
	if !r.Intersects(Region{Min: Coord{1, 1, 1}, Max: Coord{2, 2, 2}}) {
		t.Error("corner-touching regions should intersect")
	}
	if !r.Intersects(Region{Min: Coord{1, 1, 0}, Max: Coord{2, 1, 2}}) {
		t.Error("edge-touching regions should intersect")
	}
	if r.Intersects(Region{Min: Coord{0, 2, 0}, Max: Coord{2, 2, 2}}) {
		t.Error("disjoint regions should not intersect")
	}
}

func TestRegionDimension(t *testing.T) {
	tests := []struct {
		r    Region
		want RegionDim
	}{
		{FromCorners(Coord{1, 1, 1}, Coord{1, 1, 1}), DimPoint},
		{FromCorners(Coord{0, 1, 1}, Coord{3, 1, 1}), DimLine},
		{FromCorners(Coord{0, 0, 1}, Coord{3, 3, 1}), DimPlane},
		{FromCorners(Coord{0, 0, 0}, Coord{3, 3, 3}), DimBox},
	}
	for _, tt := range tests {
		if got := tt.r.Dimension(); got != tt.want {
			t.Errorf("Dimension(%v) = %v, want %v", tt.r, got, tt.want)
		}
	}
}

func TestFromCornersNormalizesOrder(t *testing.T) {
	want := Region{Min: Coord{0, 1, 2}, Max: Coord{3, 4, 5}}
	require.Equal(t, want, FromCorners(Coord{3, 1, 5}, Coord{0, 4, 2}),
		"corners given high-to-low on some axes should still normalize to the same region")
	require.Equal(t, want, FromCorners(Coord{0, 1, 2}, Coord{3, 4, 5}),
		"corners already given low-to-high should be unchanged")
}

func TestCoordNeighboursLimit(t *testing.T) {
	c := Coord{1, 1, 1}
	all := c.Neighbours()
	if len(all) != 18 {
		t.Fatalf("expected 18 near neighbours, got %d", len(all))
	}
	limited := c.NeighboursLimit(2)
	for _, n := range limited {
		if n.X >= 2 || n.Y >= 2 || n.Z >= 2 {
			t.Errorf("NeighboursLimit(2) leaked out-of-range coord %v", n)
		}
	}
}
