// Package geometry implements the coordinate, displacement and region
// primitives the rest of the assembler is built on: Coord/CoordDiff,
// axis-tagged linear displacements used by SMove/LMove, and axis-aligned
// regions used for volatile-claim bookkeeping.
package geometry

import "fmt"

// LowerLimit and UpperLimit bound every valid coordinate component.
const (
	LowerLimit = 0
	UpperLimit = 249
)

// Axis is one of the three coordinate axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	return [...]string{"X", "Y", "Z"}[a]
}

// Resolution is the edge length R of a cubic matrix.
type Resolution int

// Coord is a signed 3D integer coordinate.
type Coord struct {
	X, Y, Z int
}

// CoordDiff is a Coord interpreted as a displacement.
type CoordDiff struct {
	Coord
}

// Add returns c shifted by d.
func (c Coord) Add(d CoordDiff) Coord {
	return Coord{c.X + d.X, c.Y + d.Y, c.Z + d.Z}
}

// Diff returns the displacement from other to c.
func (c Coord) Diff(other Coord) CoordDiff {
	return CoordDiff{Coord{c.X - other.X, c.Y - other.Y, c.Z - other.Z}}
}

// IsAdjacent reports whether c and other are face-adjacent (L1 distance 1).
func (c Coord) IsAdjacent(other Coord) bool {
	return c.Diff(other).L1Norm() == 1
}

// InBounds reports whether every component lies within [LowerLimit,UpperLimit].
func (c Coord) InBounds() bool {
	return c.X >= LowerLimit && c.X <= UpperLimit &&
		c.Y >= LowerLimit && c.Y <= UpperLimit &&
		c.Z >= LowerLimit && c.Z <= UpperLimit
}

// NearNeighbours returns the 6 face-adjacent coords of c, clipped to bounds.
func (c Coord) NearNeighbours() []Coord {
	candidates := [...]Coord{
		{c.X - 1, c.Y, c.Z},
		{c.X + 1, c.Y, c.Z},
		{c.X, c.Y - 1, c.Z},
		{c.X, c.Y + 1, c.Z},
		{c.X, c.Y, c.Z - 1},
		{c.X, c.Y, c.Z + 1},
	}
	out := make([]Coord, 0, 6)
	for _, n := range candidates {
		if n.InBounds() {
			out = append(out, n)
		}
	}
	return out
}

// Neighbours returns the up-to-18 coords near c (CoordDiff.IsNear), clipped
// to bounds.
func (c Coord) Neighbours() []Coord {
	out := make([]Coord, 0, 18)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				d := CoordDiff{Coord{dx, dy, dz}}
				if !d.IsNear() {
					continue
				}
				n := c.Add(d)
				if n.InBounds() {
					out = append(out, n)
				}
			}
		}
	}
	return out
}

// NeighboursLimit is Neighbours further filtered to coords strictly below
// limit on every axis (i.e. valid indices into a Resolution(limit) matrix).
func (c Coord) NeighboursLimit(limit int) []Coord {
	all := c.Neighbours()
	out := all[:0:0]
	for _, n := range all {
		if n.X < limit && n.Y < limit && n.Z < limit {
			out = append(out, n)
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// L1Norm is the sum of absolute components.
func (d CoordDiff) L1Norm() int {
	return abs(d.X) + abs(d.Y) + abs(d.Z)
}

// LInfNorm is the maximum absolute component.
func (d CoordDiff) LInfNorm() int {
	m := abs(d.X)
	if v := abs(d.Y); v > m {
		m = v
	}
	if v := abs(d.Z); v > m {
		m = v
	}
	return m
}

// IsNear reports the 18-position "near" relation: L∞=1 ∧ L1≤2.
func (d CoordDiff) IsNear() bool {
	return d.LInfNorm() == 1 && d.L1Norm() <= 2
}

// IsFar reports the "far" relation: 0<L∞≤30.
func (d CoordDiff) IsFar() bool {
	n := d.LInfNorm()
	return n > 0 && n <= 30
}

// LinearCoordDiff is a single-axis displacement tagged Short (|value|≤5) or
// Long (|value|≤15).
type LinearCoordDiff struct {
	Long  bool
	Axis  Axis
	Value int
}

// Short builds a Short linear displacement.
func Short(axis Axis, value int) LinearCoordDiff {
	return LinearCoordDiff{Long: false, Axis: axis, Value: value}
}

// LongD builds a Long linear displacement.
func LongD(axis Axis, value int) LinearCoordDiff {
	return LinearCoordDiff{Long: true, Axis: axis, Value: value}
}

// Valid reports whether the displacement respects its tag's magnitude bound.
func (l LinearCoordDiff) Valid() bool {
	if l.Long {
		return l.Value >= -15 && l.Value <= 15
	}
	return l.Value >= -5 && l.Value <= 5
}

// ToCoordDiff expands a linear displacement onto its axis.
func (l LinearCoordDiff) ToCoordDiff() CoordDiff {
	switch l.Axis {
	case AxisX:
		return CoordDiff{Coord{l.Value, 0, 0}}
	case AxisY:
		return CoordDiff{Coord{0, l.Value, 0}}
	default:
		return CoordDiff{Coord{0, 0, l.Value}}
	}
}

func (l LinearCoordDiff) String() string {
	kind := "Short"
	if l.Long {
		kind = "Long"
	}
	return fmt.Sprintf("%s{%s,%d}", kind, l.Axis, l.Value)
}

// RegionDim classifies a Region by how many axes it spans.
type RegionDim int

const (
	DimPoint RegionDim = iota
	DimLine
	DimPlane
	DimBox
)

// Region is an inclusive axis-aligned box, min ≤ max component-wise.
type Region struct {
	Min, Max Coord
}

// FromCorners builds the canonical Region containing both corners regardless
// of their relative order.
func FromCorners(a, b Coord) Region {
	min := Coord{minInt(a.X, b.X), minInt(a.Y, b.Y), minInt(a.Z, b.Z)}
	max := Coord{maxInt(a.X, b.X), maxInt(a.Y, b.Y), maxInt(a.Z, b.Z)}
	return Region{Min: min, Max: max}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Contains reports whether c lies within the region, inclusive.
func (r Region) Contains(c Coord) bool {
	return c.X >= r.Min.X && c.X <= r.Max.X &&
		c.Y >= r.Min.Y && c.Y <= r.Max.Y &&
		c.Z >= r.Min.Z && c.Z <= r.Max.Z
}

// Intersects reports whether r and other share any coord.
func (r Region) Intersects(other Region) bool {
	notXProj := r.Max.Z < other.Min.Z || other.Max.Z < r.Min.Z || r.Max.Y < other.Min.Y || other.Max.Y < r.Min.Y
	notYProj := r.Max.Z < other.Min.Z || other.Max.Z < r.Min.Z || r.Max.X < other.Min.X || other.Max.X < r.Min.X
	notZProj := r.Max.Y < other.Min.Y || other.Max.Y < r.Min.Y || r.Max.X < other.Min.X || other.Max.X < r.Min.X
	return !(notXProj || notYProj || notZProj)
}

// Dimension classifies the region by how many axes are degenerate.
func (r Region) Dimension() RegionDim {
	flatX := r.Min.X == r.Max.X
	flatY := r.Min.Y == r.Max.Y
	flatZ := r.Min.Z == r.Max.Z
	switch {
	case flatX && flatY && flatZ:
		return DimPoint
	case flatX && flatY, flatY && flatZ, flatX && flatZ:
		return DimLine
	case flatX, flatY, flatZ:
		return DimPlane
	default:
		return DimBox
	}
}

// Contents enumerates every coord in the region in x-major, then y, then z
// order.
func (r Region) Contents() []Coord {
	out := make([]Coord, 0, (r.Max.X-r.Min.X+1)*(r.Max.Y-r.Min.Y+1)*(r.Max.Z-r.Min.Z+1))
	for x := r.Min.X; x <= r.Max.X; x++ {
		for y := r.Min.Y; y <= r.Max.Y; y++ {
			for z := r.Min.Z; z <= r.Max.Z; z++ {
				out = append(out, Coord{x, y, z})
			}
		}
	}
	return out
}
