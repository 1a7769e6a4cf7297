package kdtree

import "github.com/elektrokombinacija/nanobot-assembly/internal/geometry"
import "testing"

func drain(it *Iter) []struct {
	Coord geometry.Coord
	Dist  int
} {
	var out []struct {
		Coord geometry.Coord
		Dist  int
	}
	for {
		c, d, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, struct {
			Coord geometry.Coord
			Dist  int
		}{c, d})
	}
	return out
}

func TestBuildEmpty(t *testing.T) {
	tree := Build(nil)
	got := drain(tree.Nearest(geometry.Coord{}))
	if len(got) != 0 {
		t.Errorf("expected no results from an empty tree, got %v", got)
	}
}

func TestBuildOne(t *testing.T) {
	tree := Build([]geometry.Coord{{X: 1, Y: 1, Z: 1}})
	got := drain(tree.Nearest(geometry.Coord{}))
	if len(got) != 1 || got[0].Coord != (geometry.Coord{X: 1, Y: 1, Z: 1}) || got[0].Dist != 3 {
		t.Errorf("unexpected result: %v", got)
	}
}

func TestBuildFiveOrdering(t *testing.T) {
	points := []geometry.Coord{
		{X: 2, Y: 2, Z: 2},
		{X: 2, Y: 0, Z: 2},
		{X: 1, Y: 1, Z: 1},
		{X: 0, Y: 1, Z: 1},
		{X: 1, Y: 0, Z: 0},
	}
	tree := Build(points)
	got := drain(tree.Nearest(geometry.Coord{}))
	if len(got) != 5 {
		t.Fatalf("expected 5 results, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Dist < got[i-1].Dist {
			t.Fatalf("Nearest must yield non-decreasing distances, got %v", got)
		}
	}
	wantFirst := struct {
		Coord geometry.Coord
		Dist  int
	}{geometry.Coord{X: 1, Y: 0, Z: 0}, 1}
	if got[0] != wantFirst {
		t.Errorf("closest point = %v, want %v", got[0], wantFirst)
	}
	wantLast := struct {
		Coord geometry.Coord
		Dist  int
	}{geometry.Coord{X: 2, Y: 2, Z: 2}, 6}
	if got[len(got)-1] != wantLast {
		t.Errorf("farthest point = %v, want %v", got[len(got)-1], wantLast)
	}
}
