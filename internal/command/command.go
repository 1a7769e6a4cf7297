// Package command implements the nanobot command ADT and its bit-exact
// binary trace codec.
package command

import (
	"errors"
	"fmt"

	"github.com/elektrokombinacija/nanobot-assembly/internal/geometry"
)

// Kind discriminates the closed set of command variants.
type Kind int

const (
	Halt Kind = iota
	Wait
	Flip
	SMove
	LMove
	Fission
	Fill
	Void
	FusionP
	FusionS
	GFill
	GVoid
)

func (k Kind) String() string {
	return [...]string{
		"Halt", "Wait", "Flip", "SMove", "LMove", "Fission",
		"Fill", "Void", "FusionP", "FusionS", "GFill", "GVoid",
	}[k]
}

// Command is a single nanobot instruction. Only the fields relevant to Kind
// are meaningful; the rest are zero.
type Command struct {
	Kind           Kind
	Long           geometry.LinearCoordDiff // SMove
	Short1, Short2 geometry.LinearCoordDiff // LMove
	Near           geometry.CoordDiff       // Fission, Fill, Void, FusionP, FusionS, GFill, GVoid
	Far            geometry.CoordDiff       // GFill, GVoid
	SplitM         uint8                    // Fission
}

// ErrInvalidLinearDiff is returned by a motion constructor when a magnitude
// exceeds its tag's bound.
var ErrInvalidLinearDiff = errors.New("command: linear displacement out of range for its tag")

// ErrNotNear is returned by a near-command constructor when the offset does
// not satisfy CoordDiff.IsNear.
var ErrNotNear = errors.New("command: near offset must satisfy IsNear")

// ErrNotFar is returned by a group-command constructor when the far offset
// does not satisfy CoordDiff.IsFar.
var ErrNotFar = errors.New("command: far offset must satisfy IsFar")

// NewSMove builds an SMove from any valid Long linear displacement.
func NewSMove(long geometry.LinearCoordDiff) (Command, error) {
	if long.Value < -15 || long.Value > 15 {
		return Command{}, ErrInvalidLinearDiff
	}
	return Command{Kind: SMove, Long: geometry.LongD(long.Axis, long.Value)}, nil
}

// NewLMove builds an LMove from two Short-bounded linear displacements.
func NewLMove(first, second geometry.LinearCoordDiff) (Command, error) {
	if first.Value < -5 || first.Value > 5 || second.Value < -5 || second.Value > 5 {
		return Command{}, ErrInvalidLinearDiff
	}
	return Command{
		Kind:   LMove,
		Short1: geometry.Short(first.Axis, first.Value),
		Short2: geometry.Short(second.Axis, second.Value),
	}, nil
}

// NewFission builds a Fission splitting off m seeds toward near.
func NewFission(near geometry.CoordDiff, m uint8) (Command, error) {
	if !near.IsNear() {
		return Command{}, ErrNotNear
	}
	return Command{Kind: Fission, Near: near, SplitM: m}, nil
}

// NewFill builds a Fill targeting near.
func NewFill(near geometry.CoordDiff) (Command, error) {
	if !near.IsNear() {
		return Command{}, ErrNotNear
	}
	return Command{Kind: Fill, Near: near}, nil
}

// NewVoid builds a Void targeting near.
func NewVoid(near geometry.CoordDiff) (Command, error) {
	if !near.IsNear() {
		return Command{}, ErrNotNear
	}
	return Command{Kind: Void, Near: near}, nil
}

// NewFusionP builds a FusionP targeting near.
func NewFusionP(near geometry.CoordDiff) (Command, error) {
	if !near.IsNear() {
		return Command{}, ErrNotNear
	}
	return Command{Kind: FusionP, Near: near}, nil
}

// NewFusionS builds a FusionS targeting near.
func NewFusionS(near geometry.CoordDiff) (Command, error) {
	if !near.IsNear() {
		return Command{}, ErrNotNear
	}
	return Command{Kind: FusionS, Near: near}, nil
}

// NewGFill builds a reserved GFill. No component of this repository emits
// group commands; the constructor and codec exist only so a trace
// containing one round-trips.
func NewGFill(near, far geometry.CoordDiff) (Command, error) {
	if !near.IsNear() {
		return Command{}, ErrNotNear
	}
	if !far.IsFar() {
		return Command{}, ErrNotFar
	}
	return Command{Kind: GFill, Near: near, Far: far}, nil
}

// NewGVoid builds a reserved GVoid. See NewGFill.
func NewGVoid(near, far geometry.CoordDiff) (Command, error) {
	if !near.IsNear() {
		return Command{}, ErrNotNear
	}
	if !far.IsFar() {
		return Command{}, ErrNotFar
	}
	return Command{Kind: GVoid, Near: near, Far: far}, nil
}

func (c Command) String() string {
	switch c.Kind {
	case SMove:
		return fmt.Sprintf("SMove(%v)", c.Long)
	case LMove:
		return fmt.Sprintf("LMove(%v,%v)", c.Short1, c.Short2)
	case Fission:
		return fmt.Sprintf("Fission(%v,%d)", c.Near.Coord, c.SplitM)
	case Fill, Void, FusionP, FusionS:
		return fmt.Sprintf("%s(%v)", c.Kind, c.Near.Coord)
	case GFill, GVoid:
		return fmt.Sprintf("%s(%v,%v)", c.Kind, c.Near.Coord, c.Far.Coord)
	default:
		return c.Kind.String()
	}
}
