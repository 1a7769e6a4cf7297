// Package planner plans point-to-point bot routes through a voxel grid.
// No working reference body survives in original_source/ (both
// icfpc2018_lib/src/router.rs and its router/rtt.rs submodule are
// unimplemented!() stubs whose signatures don't even match their call sites
// in random_swarm.rs), so this package is built directly from the call-site
// contract the swarm solver expects: plan a coordinate path through the
// empty-voxel graph by randomized tree expansion, then render that path as
// a command sequence.
package planner

import (
	"github.com/elektrokombinacija/nanobot-assembly/internal/command"
	"github.com/elektrokombinacija/nanobot-assembly/internal/geometry"
	"github.com/elektrokombinacija/nanobot-assembly/internal/matrix"
	"github.com/elektrokombinacija/nanobot-assembly/internal/optimizer"

	"golang.org/x/exp/rand"
)

// IsPassable additionally constrains a candidate move's swept region, beyond
// bounds and emptiness — typically "no other bot's volatile claim this
// tick".
type IsPassable func(region geometry.Region) bool

// MaxExtension bounds a single tree-expansion step, matching SMove's Long
// magnitude limit.
const MaxExtension = 15

// treeNode is one node of the expansion tree: its coordinate and the index
// of its parent in the node slice (-1 for the root).
type treeNode struct {
	Coord  geometry.Coord
	Parent int
}

// PlanRoute grows a randomized tree rooted at start over m's empty-voxel
// graph until finish is reached or limit extensions have been attempted. It
// returns the coordinate path from start to finish inclusive, or false if
// the budget was exhausted first.
func PlanRoute(start, finish geometry.Coord, m *matrix.Matrix, isPassable IsPassable, limit int, rng *rand.Rand) ([]geometry.Coord, bool) {
	nodes := []treeNode{{Coord: start, Parent: -1}}
	if start == finish {
		return []geometry.Coord{start}, true
	}

	dim := m.Dim()
	for tries := 0; tries < limit; tries++ {
		sample := geometry.Coord{
			X: rng.Intn(dim),
			Y: rng.Intn(dim),
			Z: rng.Intn(dim),
		}

		nearestIdx := nearestNode(nodes, sample)
		from := nodes[nearestIdx].Coord

		next, ok := extendToward(from, sample, m, isPassable, rng)
		if !ok {
			continue
		}
		if containsCoord(nodes, next) {
			continue
		}

		nodes = append(nodes, treeNode{Coord: next, Parent: nearestIdx})
		if next == finish {
			return reconstruct(nodes, len(nodes)-1), true
		}
	}
	return nil, false
}

func nearestNode(nodes []treeNode, sample geometry.Coord) int {
	best := 0
	bestDist := sample.Diff(nodes[0].Coord).L1Norm()
	for i := 1; i < len(nodes); i++ {
		d := sample.Diff(nodes[i].Coord).L1Norm()
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func containsCoord(nodes []treeNode, c geometry.Coord) bool {
	for _, n := range nodes {
		if n.Coord == c {
			return true
		}
	}
	return false
}

// extendToward attempts a single axis-aligned move from `from` toward
// `sample`, on the axis with the largest remaining gap, by a length
// uniformly sampled in [1,15] (never overshooting the gap), subject to
// bounds, emptiness and isPassable.
func extendToward(from, sample geometry.Coord, m *matrix.Matrix, isPassable IsPassable, rng *rand.Rand) (geometry.Coord, bool) {
	diff := sample.Diff(from)
	axis, gap := dominantAxis(diff)
	if gap == 0 {
		return geometry.Coord{}, false
	}

	magMax := gap
	if magMax > MaxExtension {
		magMax = MaxExtension
	}
	mag := 1 + rng.Intn(magMax)
	sign := 1
	if axisValue(diff, axis) < 0 {
		sign = -1
	}

	d := geometry.LongD(axis, sign*mag).ToCoordDiff()
	next := from.Add(d)
	if !m.IsValidCoord(next) {
		return geometry.Coord{}, false
	}
	region := geometry.FromCorners(from, next)
	if m.ContainsFilled(region) {
		return geometry.Coord{}, false
	}
	if isPassable != nil && !isPassable(region) {
		return geometry.Coord{}, false
	}
	return next, true
}

func dominantAxis(d geometry.CoordDiff) (geometry.Axis, int) {
	ax, ay, az := abs(d.X), abs(d.Y), abs(d.Z)
	switch {
	case ax >= ay && ax >= az:
		return geometry.AxisX, ax
	case ay >= az:
		return geometry.AxisY, ay
	default:
		return geometry.AxisZ, az
	}
}

func axisValue(d geometry.CoordDiff, axis geometry.Axis) int {
	switch axis {
	case geometry.AxisX:
		return d.X
	case geometry.AxisY:
		return d.Y
	default:
		return d.Z
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func reconstruct(nodes []treeNode, leaf int) []geometry.Coord {
	var rev []geometry.Coord
	for i := leaf; i != -1; i = nodes[i].Parent {
		rev = append(rev, nodes[i].Coord)
	}
	path := make([]geometry.Coord, len(rev))
	for i, c := range rev {
		path[len(rev)-1-i] = c
	}
	return path
}

// PlanRouteCommands renders a coordinate path (as returned by PlanRoute)
// into a command sequence: one SMove per path edge, with adjacent
// Short-bounded (|v|<=5) pairs packed into LMove.
func PlanRouteCommands(path []geometry.Coord) ([]command.Command, error) {
	if len(path) < 2 {
		return nil, nil
	}
	cmds := make([]command.Command, 0, len(path)-1)
	for i := 1; i < len(path); i++ {
		d := path[i].Diff(path[i-1])
		axis, mag := dominantAxis(d)
		c, err := command.NewSMove(geometry.LongD(axis, mag*sign(axisValue(d, axis))))
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, c)
	}
	return optimizer.PackShortPairs(cmds)
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}
