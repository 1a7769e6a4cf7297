package matrix

import (
	"testing"

	"github.com/elektrokombinacija/nanobot-assembly/internal/geometry"
)

func c(x, y, z int) geometry.Coord { return geometry.Coord{X: x, Y: y, Z: z} }

func TestIsGroundedSingle(t *testing.T) {
	empty := New(geometry.Resolution(3))
	if empty.IsGrounded(c(1, 0, 1)) {
		t.Error("empty voxel should not be grounded")
	}

	onFloor := NewFromCoords(geometry.Resolution(3), []geometry.Coord{c(1, 0, 1)})
	if !onFloor.IsGrounded(c(1, 0, 1)) {
		t.Error("floor voxel should be grounded")
	}

	flying := NewFromCoords(geometry.Resolution(3), []geometry.Coord{c(1, 1, 1)})
	if flying.IsGrounded(c(1, 1, 1)) {
		t.Error("unsupported voxel should not be grounded")
	}
}

func TestIsGroundedCross(t *testing.T) {
	coords := []geometry.Coord{
		c(1, 0, 1), c(0, 1, 1), c(1, 1, 0), c(1, 1, 2), c(1, 1, 1), c(2, 1, 1), c(1, 2, 1),
	}
	m := NewFromCoords(geometry.Resolution(3), coords)
	for _, v := range coords {
		if !m.IsGrounded(v) {
			t.Errorf("voxel %v of connected cross should be grounded", v)
		}
	}
	if !m.AllVoxelsAreGrounded() {
		t.Error("whole cross should be grounded")
	}
}

func TestAllVoxelsAreGroundedCorrupt(t *testing.T) {
	coords := []geometry.Coord{
		c(1, 0, 1), c(0, 1, 1), c(1, 1, 0), c(1, 1, 2), c(2, 1, 1), c(1, 2, 1),
	}
	m := NewFromCoords(geometry.Resolution(3), coords)
	if m.AllVoxelsAreGrounded() {
		t.Error("cross missing its center voxel should not be fully grounded")
	}
}

func TestTowerPartialGroundedness(t *testing.T) {
	full := map[geometry.Coord]struct{}{
		c(1, 0, 1): {}, c(1, 1, 1): {}, c(1, 2, 1): {},
	}
	if !AllVoxelsAreGrounded(full) {
		t.Error("full tower should be grounded")
	}

	withoutTop := map[geometry.Coord]struct{}{c(1, 0, 1): {}, c(1, 1, 1): {}}
	if !AllVoxelsAreGrounded(withoutTop) {
		t.Error("tower without its top should still be grounded")
	}

	withoutMiddle := map[geometry.Coord]struct{}{c(1, 0, 1): {}, c(1, 2, 1): {}}
	if AllVoxelsAreGrounded(withoutMiddle) {
		t.Error("tower missing its middle should not be grounded")
	}

	withoutBase := map[geometry.Coord]struct{}{c(1, 1, 1): {}, c(1, 2, 1): {}}
	if AllVoxelsAreGrounded(withoutBase) {
		t.Error("tower missing its base should not be grounded")
	}
}

func TestWillBeGrounded(t *testing.T) {
	m := NewFromCoords(geometry.Resolution(3), []geometry.Coord{c(1, 0, 1)})
	if !m.WillBeGrounded(c(1, 1, 1)) {
		t.Error("voxel stacked on a grounded voxel should be will-be-grounded")
	}
	if !m.WillBeGrounded(c(0, 0, 0)) {
		t.Error("floor-level voxel is always will-be-grounded")
	}
	if m.WillBeGrounded(c(1, 2, 1)) {
		t.Error("voxel with no support chain should not be will-be-grounded")
	}
	if m.WillBeGrounded(c(0, 1, 1)) {
		t.Error("disconnected voxel should not be will-be-grounded")
	}
}

func TestContainsFilled(t *testing.T) {
	m := NewFromCoords(geometry.Resolution(3), []geometry.Coord{c(2, 2, 2)})
	if !m.ContainsFilled(geometry.FromCorners(c(0, 0, 0), c(2, 2, 2))) {
		t.Error("region containing the filled voxel should report filled")
	}
	if m.ContainsFilled(geometry.FromCorners(c(0, 0, 0), c(0, 0, 0))) {
		t.Error("region excluding the filled voxel should not report filled")
	}
	if !m.ContainsFilled(geometry.FromCorners(c(2, 2, 2), c(2, 2, 2))) {
		t.Error("single-point region at the filled voxel should report filled")
	}
}

func TestContainsFilledClipsOutOfBounds(t *testing.T) {
	m := NewFromCoords(geometry.Resolution(3), []geometry.Coord{c(2, 2, 2)})
	region := geometry.FromCorners(c(2, 2, 2), c(50, 50, 50))
	if !m.ContainsFilled(region) {
		t.Error("out-of-bounds region should clip to the matrix, not panic or miss the in-range voxel")
	}
	emptyClip := geometry.FromCorners(c(3, 3, 3), c(50, 50, 50))
	if m.ContainsFilled(emptyClip) {
		t.Error("region entirely outside the matrix should clip to empty")
	}
}

func TestSetFilledSetVoidRoundtrip(t *testing.T) {
	m := New(geometry.Resolution(3))
	v := c(1, 1, 1)
	m.SetFilled(v)
	if !m.IsFilled(v) {
		t.Error("SetFilled should make voxel filled")
	}
	found := false
	for _, fv := range m.FilledVoxels() {
		if fv == v {
			found = true
		}
	}
	if !found {
		t.Error("FilledVoxels should include the set voxel")
	}
	m.SetVoid(v)
	if m.IsFilled(v) {
		t.Error("SetVoid should make voxel empty")
	}
	for _, fv := range m.FilledVoxels() {
		if fv == v {
			t.Error("FilledVoxels should not include a voided voxel")
		}
	}
}
