// Package kdtree implements a static 3D k-d index used by the swarm solver
// to find the nearest unfinished "job" voxel. Construction is bulk and
// cycles the split axis X→Y→Z with a median split; Nearest streams results
// in non-decreasing L1 distance from the query point via a best-first
// branch-and-bound search built on container/heap.
package kdtree

import (
	"container/heap"
	"sort"

	"github.com/elektrokombinacija/nanobot-assembly/internal/geometry"
)

type node struct {
	coord       geometry.Coord
	axis        geometry.Axis
	left, right *node
}

// KdTree is a static, read-only-after-build index over a set of voxels.
type KdTree struct {
	root *node
	size int
}

// Build constructs a k-d tree over voxels, cycling the split axis X→Y→Z.
func Build(voxels []geometry.Coord) *KdTree {
	cp := make([]geometry.Coord, len(voxels))
	copy(cp, voxels)
	return &KdTree{root: build(cp, geometry.AxisX), size: len(cp)}
}

func build(voxels []geometry.Coord, axis geometry.Axis) *node {
	if len(voxels) == 0 {
		return nil
	}
	sort.Slice(voxels, func(i, j int) bool {
		return component(voxels[i], axis) < component(voxels[j], axis)
	})
	mid := len(voxels) / 2
	next := nextAxis(axis)
	n := &node{coord: voxels[mid], axis: axis}
	n.left = build(voxels[:mid], next)
	n.right = build(voxels[mid+1:], next)
	return n
}

func nextAxis(a geometry.Axis) geometry.Axis {
	switch a {
	case geometry.AxisX:
		return geometry.AxisY
	case geometry.AxisY:
		return geometry.AxisZ
	default:
		return geometry.AxisX
	}
}

func component(c geometry.Coord, axis geometry.Axis) int {
	switch axis {
	case geometry.AxisX:
		return c.X
	case geometry.AxisY:
		return c.Y
	default:
		return c.Z
	}
}

// Size returns the number of indexed voxels.
func (t *KdTree) Size() int {
	return t.size
}

// item is one entry in the best-first priority queue: either an unexpanded
// subtree (a lower bound on the L1 distance of anything inside it) or a
// concrete candidate point with its exact distance.
type item struct {
	subtree  *node
	isPoint  bool
	point    geometry.Coord
	priority int
}

type itemHeap []item

func (h itemHeap) Len() int            { return len(h) }
func (h itemHeap) Less(i, j int) bool  { return h[i].priority < h[j].priority }
func (h itemHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *itemHeap) Push(x interface{}) { *h = append(*h, x.(item)) }
func (h *itemHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// Iter pulls voxels in non-decreasing L1 distance from a fixed query point.
type Iter struct {
	query geometry.Coord
	pq    itemHeap
}

// Nearest returns an iterator yielding every indexed voxel, closest first.
// The order among equal distances follows the heap's internal layout, not
// insertion order; it is the same for the same tree and query point, since
// the tree is read-only and no randomness is involved.
func (t *KdTree) Nearest(p geometry.Coord) *Iter {
	it := &Iter{query: p}
	if t.root != nil {
		heap.Push(&it.pq, item{subtree: t.root, priority: 0})
	}
	return it
}

// Next returns the next-nearest (voxel, L1 distance) pair, or ok=false when
// exhausted.
func (it *Iter) Next() (geometry.Coord, int, bool) {
	for it.pq.Len() > 0 {
		top := heap.Pop(&it.pq).(item)
		if top.isPoint {
			return top.point, top.priority, true
		}
		n := top.subtree
		dist := it.query.Diff(n.coord).L1Norm()
		heap.Push(&it.pq, item{isPoint: true, point: n.coord, priority: dist})

		// n.left holds the sorted prefix (component <= split value), n.right
		// the sorted suffix (component >= split value): only the far side
		// of the split has a nonzero, provable lower bound on L1 distance.
		qAxis := component(it.query, n.axis)
		splitVal := component(n.coord, n.axis)
		leftBound, rightBound := 0, 0
		if qAxis > splitVal {
			leftBound = qAxis - splitVal
		}
		if qAxis < splitVal {
			rightBound = splitVal - qAxis
		}
		if n.left != nil {
			heap.Push(&it.pq, item{subtree: n.left, priority: leftBound})
		}
		if n.right != nil {
			heap.Push(&it.pq, item{subtree: n.right, priority: rightBound})
		}
	}
	return geometry.Coord{}, 0, false
}
