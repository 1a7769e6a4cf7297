// Package optimizer implements a peephole move optimizer, grounded on
// original_source/rust/basic-optimizer/src/main.rs: it coalesces
// consecutive SMove/LMove legs into per-axis runs, cancels single-unit hops
// sandwiched between opposite-signed runs on the same axis, re-splits the
// result into Long-bounded SMove legs, and finally packs adjacent
// short-enough SMove pairs back into LMove.
package optimizer

import (
	"github.com/elektrokombinacija/nanobot-assembly/internal/command"
	"github.com/elektrokombinacija/nanobot-assembly/internal/geometry"
)

// move is one axis-tagged run of displacement, accumulated before being
// re-split into on-disk-legal SMove/LMove legs.
type move struct {
	Axis  geometry.Axis
	Value int
}

func moveFromLinear(l geometry.LinearCoordDiff) move {
	return move{Axis: l.Axis, Value: l.Value}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// toLLDs re-splits a run into Long legs (|value|<=15 each), most significant
// chunk first.
func (m move) toLLDs() []geometry.LinearCoordDiff {
	if m.Value == 0 {
		return nil
	}
	dest := 1
	if m.Value < 0 {
		dest = -1
	}
	aval := absInt(m.Value)
	var res []geometry.LinearCoordDiff
	for aval > 0 {
		if aval > 15 {
			res = append(res, geometry.LongD(m.Axis, dest*15))
		} else {
			res = append(res, geometry.LongD(m.Axis, dest*aval))
		}
		aval -= 15
	}
	return res
}

func getDiff(v1, v2 int) int {
	if absInt(v1) <= absInt(v2) {
		return v1
	}
	return -v2
}

func filterNonZero(moves []move) []move {
	out := moves[:0]
	for _, m := range moves {
		if m.Value != 0 {
			out = append(out, m)
		}
	}
	return out
}

// optimizeMoves repeatedly cancels unit hops sandwiched between opposite
// same-axis runs, then coalesces remaining same-axis neighbours, until a
// fixed point is reached. Hop cancellation never applies to a slice of
// length <=2: its window (movings[i-1], movings[i], movings[i+1]) only
// exists for i in [1, len-2], which is empty below length 3. Same-axis
// coalescing still applies, so two adjacent same-axis runs become one.
func optimizeMoves(movings []move) []move {
	opt := true
	for opt {
		opt = false
		for i := 1; i < len(movings)-1; i++ {
			if (movings[i].Value == 1 || movings[i].Value == -1) &&
				movings[i-1].Axis == movings[i+1].Axis &&
				movings[i-1].Value*movings[i+1].Value < 0 {
				d := getDiff(movings[i-1].Value, movings[i+1].Value)
				movings[i-1].Value -= d
				movings[i+1].Value += d
				opt = true
			}
		}
		if opt {
			movings = filterNonZero(movings)
		}

		sopt := false
		for i := 0; i < len(movings)-1; i++ {
			if movings[i].Axis == movings[i+1].Axis {
				movings[i+1].Value += movings[i].Value
				movings[i].Value = 0
				sopt = true
			}
		}
		if sopt {
			movings = filterNonZero(movings)
		}
	}
	return movings
}

// PackShortPairs packs adjacent SMove pairs whose magnitude fits a Short leg
// (|v|<=5) into a single LMove. Exported for the path planner, which
// produces the same kind of atomic-SMove sequence from a coordinate path and
// wants the identical pairing rule without the run-coalescing pass above.
func PackShortPairs(cmds []command.Command) ([]command.Command, error) {
	return optimizeLLDPairs(cmds)
}

// optimizeLLDPairs packs adjacent SMove pairs whose magnitude fits a Short
// leg (|v|<=5) into a single LMove, repeating until no such pair remains.
func optimizeLLDPairs(cmds []command.Command) ([]command.Command, error) {
	for {
		idx := -1
		var combined command.Command
		for i := 0; i < len(cmds)-1; i++ {
			a, b := cmds[i], cmds[i+1]
			if a.Kind != command.SMove || b.Kind != command.SMove {
				continue
			}
			if absInt(a.Long.Value) > 5 || absInt(b.Long.Value) > 5 {
				continue
			}
			lm, err := command.NewLMove(
				geometry.Short(a.Long.Axis, a.Long.Value),
				geometry.Short(b.Long.Axis, b.Long.Value),
			)
			if err != nil {
				return nil, err
			}
			idx, combined = i, lm
			break
		}
		if idx < 0 {
			break
		}
		merged := append([]command.Command{combined}, cmds[idx+2:]...)
		cmds = append(cmds[:idx], merged...)
	}
	return cmds, nil
}

// isMotionless reports whether a command carries no accumulable
// displacement and so must flush any pending run before it executes.
func isMotionless(k command.Kind) bool {
	switch k {
	case command.SMove, command.LMove:
		return false
	default:
		return true
	}
}

// Optimize rewrites a command script, replacing runs of SMove/LMove with an
// equivalent, cheaper sequence. Wait commands are dropped outright (they
// carry no state and cost nothing to omit); every other non-motion command
// passes through unchanged, flushing any pending run first.
func Optimize(cmds []command.Command) ([]command.Command, error) {
	var out []command.Command
	var pending []move

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		optimized := optimizeMoves(pending)
		var expanded []command.Command
		for _, m := range optimized {
			for _, lld := range m.toLLDs() {
				c, err := command.NewSMove(lld)
				if err != nil {
					return err
				}
				expanded = append(expanded, c)
			}
		}
		expanded, err := optimizeLLDPairs(expanded)
		if err != nil {
			return err
		}
		out = append(out, expanded...)
		pending = pending[:0]
		return nil
	}

	addMove := func(l geometry.LinearCoordDiff) {
		m := moveFromLinear(l)
		if n := len(pending); n > 0 && pending[n-1].Axis == m.Axis {
			pending[n-1].Value += m.Value
		} else {
			pending = append(pending, m)
		}
	}

	for _, c := range cmds {
		switch c.Kind {
		case command.Wait:
			continue
		case command.SMove:
			addMove(c.Long)
		case command.LMove:
			addMove(c.Short1)
			addMove(c.Short2)
		default:
			if isMotionless(c.Kind) {
				if err := flush(); err != nil {
					return nil, err
				}
				out = append(out, c)
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}
