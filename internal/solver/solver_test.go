package solver

import (
	"testing"

	"github.com/elektrokombinacija/nanobot-assembly/internal/command"
	"github.com/elektrokombinacija/nanobot-assembly/internal/geometry"
	"github.com/elektrokombinacija/nanobot-assembly/internal/matrix"
	"github.com/elektrokombinacija/nanobot-assembly/internal/state"

	"golang.org/x/exp/rand"
)

func testConfig() Config {
	return Config{RTTLimit: 2000, RouteAttemptsLimit: 200, GlobalTicksLimit: 20000}
}

// runScript replays script through a fresh state.State seeded from initial
// and returns the resulting matrix, asserting the script is itself a
// wellformed, legal trace.
func runScript(t *testing.T, initial *matrix.Matrix, script []command.Command) *matrix.Matrix {
	t.Helper()
	s := state.New(initial)
	if err := s.Run(script); err != nil {
		t.Fatalf("replaying solver script: %v", err)
	}
	if len(s.Bots) != 0 {
		t.Fatalf("a convergent script should leave no active bots, got %d", len(s.Bots))
	}
	return s.Matrix
}

func TestSolveDimMismatch(t *testing.T) {
	source := matrix.New(geometry.Resolution(4))
	target := matrix.New(geometry.Resolution(5))
	_, err := Solve(source, target, testConfig())
	var dme *DimMismatchError
	if err == nil {
		t.Fatal("expected a DimMismatchError")
	}
	if de, ok := err.(*DimMismatchError); !ok {
		t.Fatalf("expected *DimMismatchError, got %T", err)
	} else {
		dme = de
	}
	if dme.SourceDim != 4 || dme.TargetDim != 5 {
		t.Errorf("unexpected dims in error: %+v", dme)
	}
}

func TestSolveEmptyToEmptyHaltsImmediately(t *testing.T) {
	m := matrix.New(geometry.Resolution(4))
	script, err := Solve(m, m, testConfig())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(script) != 1 || script[0].Kind != command.Halt {
		t.Fatalf("an already-matching model should halt on tick one, got %v", script)
	}
	runScript(t, matrix.New(geometry.Resolution(4)), script)
}

func TestSolveMultiBotFusesDownToHalt(t *testing.T) {
	config := testConfig()
	config.InitBots = []InitBot{
		{Bid: 1, Bot: state.Bot{Pos: geometry.Coord{}, Seeds: []state.Bid{3, 4, 5}}},
		{Bid: 2, Bot: state.Bot{Pos: geometry.Coord{X: 1}, Seeds: nil}},
	}
	m := matrix.New(geometry.Resolution(4))
	script, err := Solve(m, m, config)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	foundFusionP, foundFusionS := false, false
	for _, c := range script {
		switch c.Kind {
		case command.FusionP:
			foundFusionP = true
		case command.FusionS:
			foundFusionS = true
		}
	}
	if !foundFusionP || !foundFusionS {
		t.Fatalf("two initial bots should fuse back to one, got %v", script)
	}
	if script[len(script)-1].Kind != command.Halt {
		t.Fatalf("script should end with Halt, got %v", script[len(script)-1])
	}

	// state.New starts from a single bot, so the replay state is given the
	// same two bots the solver started from.
	s := state.New(m)
	s.Bots = map[state.Bid]state.Bot{}
	for _, ib := range config.InitBots {
		s.Bots[ib.Bid] = ib.Bot
	}
	if err := s.Run(script); err != nil {
		t.Fatalf("replaying solver script: %v", err)
	}
	if len(s.Bots) != 0 {
		t.Fatalf("a convergent script should leave no active bots, got %d", len(s.Bots))
	}
}

func TestSolveFillsSingleGroundedVoxel(t *testing.T) {
	source := matrix.New(geometry.Resolution(4))
	target := matrix.New(geometry.Resolution(4))
	target.SetFilled(geometry.Coord{X: 1})

	rng := rand.New(rand.NewSource(7))
	script, err := SolveRNG(source, target, testConfig(), rng)
	if err != nil {
		t.Fatalf("SolveRNG: %v", err)
	}

	got := runScript(t, matrix.New(geometry.Resolution(4)), script)
	if !got.Equals(target) {
		t.Errorf("resulting model should equal target after replay")
	}

	foundFill := false
	for _, c := range script {
		if c.Kind == command.Fill {
			foundFill = true
		}
	}
	if !foundFill {
		t.Errorf("expected at least one Fill command in the script")
	}
}

func TestSolveVoidsSingleVoxel(t *testing.T) {
	source := matrix.New(geometry.Resolution(4))
	source.SetFilled(geometry.Coord{X: 1})
	target := matrix.New(geometry.Resolution(4))

	rng := rand.New(rand.NewSource(11))
	script, err := SolveRNG(source, target, testConfig(), rng)
	if err != nil {
		t.Fatalf("SolveRNG: %v", err)
	}

	got := runScript(t, source.Clone(), script)
	if !got.Equals(target) {
		t.Errorf("resulting model should equal target after replay")
	}

	foundVoid := false
	for _, c := range script {
		if c.Kind == command.Void {
			foundVoid = true
		}
	}
	if !foundVoid {
		t.Errorf("expected at least one Void command in the script")
	}
}
