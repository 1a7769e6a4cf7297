// Package state implements the nanobot assembler's execution state:
// harmonics, the bot registry, accumulated energy, and the two-pass tick
// rules (precondition/volatility check, then apply) that
// advance it one command per active bot.
package state

import (
	"errors"
	"fmt"
	"sort"

	"github.com/elektrokombinacija/nanobot-assembly/internal/command"
	"github.com/elektrokombinacija/nanobot-assembly/internal/geometry"
	"github.com/elektrokombinacija/nanobot-assembly/internal/matrix"
)

// Harmonics toggles whether groundedness is enforced between ticks.
type Harmonics int

const (
	Low Harmonics = iota
	High
)

func (h Harmonics) String() string {
	if h == Low {
		return "Low"
	}
	return "High"
}

// Bid identifies a bot. Valid bids run 1..MaxBots inclusive.
type Bid = int

// MaxBots is the largest number of simultaneously active bots.
const MaxBots = 40

// Bot is one nanobot: its position and the pool of unused bids it can spawn.
type Bot struct {
	Pos   geometry.Coord
	Seeds []Bid
}

// State is the full execution state of a run.
type State struct {
	Steps     int
	Energy    int
	Harmonics Harmonics
	Matrix    *matrix.Matrix
	Bots      map[Bid]Bot
}

// New returns the initial state over m: a single bot 1 at the origin holding
// every other bid as a seed, Low harmonics, zero energy and steps.
func New(m *matrix.Matrix) *State {
	seeds := make([]Bid, 0, MaxBots-1)
	for b := 2; b <= MaxBots; b++ {
		seeds = append(seeds, b)
	}
	return &State{
		Harmonics: Low,
		Matrix:    m,
		Bots: map[Bid]Bot{
			1: {Pos: geometry.Coord{}, Seeds: seeds},
		},
	}
}

// WellformedStatus classifies why a State fails the wellformedness check.
type WellformedStatus int

const (
	Wellformed WellformedStatus = iota
	NotGroundedWhileLowHarmonics
	BotInFilledVoxel
	SeedsAreNotDisjoint
	SeedIsTheSameAsActiveBot
)

func (w WellformedStatus) String() string {
	return [...]string{
		"Wellformed", "NotGroundedWhileLowHarmonics", "BotInFilledVoxel",
		"SeedsAreNotDisjoint", "SeedIsTheSameAsActiveBot",
	}[w]
}

// Sentinel and parameterized error kinds.
var (
	ErrNotEnoughCommands  = errors.New("state: not enough commands for active bots")
	ErrCommandsInterfere  = errors.New("state: commands claim overlapping volatile coordinates")
	ErrHaltNotAtZeroCoord = errors.New("state: Halt requires the bot at (0,0,0)")
	ErrHaltTooManyBots    = errors.New("state: Halt requires exactly one active bot")
	ErrHaltNotInLow       = errors.New("state: Halt requires Low harmonics")
	ErrNoSeedsAvailable   = errors.New("state: Fission requires at least one seed")
	ErrTooBigSplitSeed    = errors.New("state: Fission split_m exceeds available seeds")
	ErrDimensionMismatch  = errors.New("state: source and target matrices have different resolutions")
)

// WellformedError reports a failed wellformedness check.
type WellformedError struct{ Status WellformedStatus }

func (e *WellformedError) Error() string {
	return fmt.Sprintf("state: not wellformed: %s", e.Status)
}

// InvalidBidError reports a command addressed to a bid with no active bot.
type InvalidBidError struct{ Bid Bid }

func (e *InvalidBidError) Error() string {
	return fmt.Sprintf("state: invalid bid %d", e.Bid)
}

// MoveOutOfBoundsError reports a target coordinate outside the matrix.
type MoveOutOfBoundsError struct{ Coord geometry.Coord }

func (e *MoveOutOfBoundsError) Error() string {
	return fmt.Sprintf("state: move out of bounds: %v", e.Coord)
}

// MoveRegionNotVoidError reports a volatile region that is not entirely void.
type MoveRegionNotVoidError struct{ Region geometry.Region }

func (e *MoveRegionNotVoidError) Error() string {
	return fmt.Sprintf("state: move region is not void: %v", e.Region)
}

func (s *State) sortedBids() []Bid {
	bids := make([]Bid, 0, len(s.Bots))
	for b := range s.Bots {
		bids = append(bids, b)
	}
	sort.Ints(bids)
	return bids
}

// BotPos returns bid's current position, if active.
func (s *State) BotPos(bid Bid) (geometry.Coord, bool) {
	b, ok := s.Bots[bid]
	return b.Pos, ok
}

// Wellformed evaluates the structural invariants a State must satisfy before
// any tick may be applied.
func (s *State) Wellformed() WellformedStatus {
	if s.Harmonics == Low && !s.Matrix.AllVoxelsAreGrounded() {
		return NotGroundedWhileLowHarmonics
	}
	for _, bot := range s.Bots {
		if s.Matrix.IsFilled(bot.Pos) {
			return BotInFilledVoxel
		}
	}
	seen := make(map[Bid]struct{})
	for _, bot := range s.Bots {
		for _, seed := range bot.Seeds {
			if _, dup := seen[seed]; dup {
				return SeedsAreNotDisjoint
			}
			seen[seed] = struct{}{}
			if _, active := s.Bots[seed]; active {
				return SeedIsTheSameAsActiveBot
			}
		}
	}
	return Wellformed
}

func maxBid(seeds []Bid) Bid {
	m := 0
	for _, s := range seeds {
		if s > m {
			m = s
		}
	}
	return m
}

// checkPrecondition validates cmd against the pre-tick state and returns the
// set of coordinates it claims as volatile this tick.
func (s *State) checkPrecondition(bid Bid, cmd command.Command) (map[geometry.Coord]struct{}, error) {
	bot, ok := s.Bots[bid]
	if !ok {
		return nil, &InvalidBidError{Bid: bid}
	}
	c := bot.Pos
	volatile := map[geometry.Coord]struct{}{c: {}}

	switch cmd.Kind {
	case command.Halt:
		if c != (geometry.Coord{}) {
			return nil, ErrHaltNotAtZeroCoord
		}
		bids := s.sortedBids()
		if len(bids) != 1 || bids[0] != bid {
			return nil, ErrHaltTooManyBots
		}
		if s.Harmonics != Low {
			return nil, ErrHaltNotInLow
		}
	case command.Wait, command.Flip:
		// no additional preconditions
	case command.SMove:
		d := cmd.Long.ToCoordDiff()
		cf := c.Add(d)
		reg := geometry.FromCorners(c, cf)
		if !s.Matrix.IsValidCoord(cf) {
			return nil, &MoveOutOfBoundsError{Coord: cf}
		}
		if s.Matrix.ContainsFilled(reg) {
			return nil, &MoveRegionNotVoidError{Region: reg}
		}
		for _, p := range reg.Contents() {
			volatile[p] = struct{}{}
		}
	case command.LMove:
		d1 := cmd.Short1.ToCoordDiff()
		d2 := cmd.Short2.ToCoordDiff()
		cf := c.Add(d1)
		if !s.Matrix.IsValidCoord(cf) {
			return nil, &MoveOutOfBoundsError{Coord: cf}
		}
		reg1 := geometry.FromCorners(c, cf)
		if s.Matrix.ContainsFilled(reg1) {
			return nil, &MoveRegionNotVoidError{Region: reg1}
		}
		cff := cf.Add(d2)
		if !s.Matrix.IsValidCoord(cff) {
			return nil, &MoveOutOfBoundsError{Coord: cff}
		}
		reg2 := geometry.FromCorners(cf, cff)
		if s.Matrix.ContainsFilled(reg2) {
			return nil, &MoveRegionNotVoidError{Region: reg2}
		}
		for _, p := range reg1.Contents() {
			volatile[p] = struct{}{}
		}
		for _, p := range reg2.Contents() {
			volatile[p] = struct{}{}
		}
	case command.Fill, command.Void:
		cf := c.Add(cmd.Near)
		if !s.Matrix.IsValidCoord(cf) {
			return nil, &MoveOutOfBoundsError{Coord: cf}
		}
		volatile[cf] = struct{}{}
	case command.Fission:
		cf := c.Add(cmd.Near)
		if !s.Matrix.IsValidCoord(cf) {
			return nil, &MoveOutOfBoundsError{Coord: cf}
		}
		if len(bot.Seeds) == 0 {
			return nil, ErrNoSeedsAvailable
		}
		m := int(cmd.SplitM)
		if m > maxBid(bot.Seeds)+1 {
			return nil, ErrTooBigSplitSeed
		}
		if m+1 > len(bot.Seeds) {
			// Guards a gap in the upstream precondition (it bounds split_m
			// against the largest seed id, not the seed count, which only
			// coincides while a bot's seed pool is a contiguous range).
			return nil, ErrTooBigSplitSeed
		}
		if s.Matrix.IsFilled(cf) {
			return nil, &MoveRegionNotVoidError{Region: geometry.FromCorners(cf, cf)}
		}
		volatile[cf] = struct{}{}
	case command.FusionP, command.FusionS:
		cf := c.Add(cmd.Near)
		if !s.Matrix.IsValidCoord(cf) {
			return nil, &MoveOutOfBoundsError{Coord: cf}
		}
	case command.GFill, command.GVoid:
		// Reserved: no solver component emits group-fill/void commands;
		// precondition checking for them is intentionally unimplemented.
	}
	return volatile, nil
}

func (s *State) perform(bid Bid, cmd command.Command) {
	switch cmd.Kind {
	case command.Halt:
		delete(s.Bots, bid)
	case command.Wait:
	case command.Flip:
		if s.Harmonics == Low {
			s.Harmonics = High
		} else {
			s.Harmonics = Low
		}
	case command.SMove:
		bot := s.Bots[bid]
		d := cmd.Long.ToCoordDiff()
		bot.Pos = bot.Pos.Add(d)
		s.Bots[bid] = bot
		s.Energy += 2 * d.L1Norm()
	case command.LMove:
		bot := s.Bots[bid]
		d1 := cmd.Short1.ToCoordDiff()
		d2 := cmd.Short2.ToCoordDiff()
		bot.Pos = bot.Pos.Add(d1).Add(d2)
		s.Bots[bid] = bot
		s.Energy += 2 * (d1.L1Norm() + 2 + d2.L1Norm())
	case command.Fill:
		bot := s.Bots[bid]
		cf := bot.Pos.Add(cmd.Near)
		if !s.Matrix.IsFilled(cf) {
			s.Matrix.SetFilled(cf)
			s.Energy += 12
		} else {
			s.Energy += 6
		}
	case command.Void:
		bot := s.Bots[bid]
		cf := bot.Pos.Add(cmd.Near)
		if s.Matrix.IsFilled(cf) {
			s.Matrix.SetVoid(cf)
			s.Energy -= 12
		} else {
			s.Energy += 3
		}
	case command.Fission:
		bot := s.Bots[bid]
		cf := bot.Pos.Add(cmd.Near)
		m := int(cmd.SplitM)
		seeds := bot.Seeds
		newBid := seeds[0]
		newSeeds := append([]Bid(nil), seeds[1:1+m]...)
		remaining := append([]Bid(nil), seeds[1+m:]...)
		bot.Seeds = remaining
		s.Bots[bid] = bot
		s.Bots[newBid] = Bot{Pos: cf, Seeds: newSeeds}
		s.Energy += 24
	case command.FusionP:
		bot := s.Bots[bid]
		cf := bot.Pos.Add(cmd.Near)
		for otherBid, other := range s.Bots {
			if otherBid == bid || other.Pos != cf {
				continue
			}
			merged := append(append([]Bid{otherBid}, other.Seeds...), bot.Seeds...)
			sort.Ints(merged)
			bot.Seeds = merged
			s.Bots[bid] = bot
			delete(s.Bots, otherBid)
			s.Energy -= 24
			break
		}
	case command.FusionS:
		// Everything is done by the paired FusionP command.
	case command.GFill, command.GVoid:
		// Reserved; see checkPrecondition.
	}
}

// Step consumes one command per currently active bot (in ascending bid
// order) from the front of cmds, validates the tick, and applies it.
func (s *State) Step(cmds *[]command.Command) error {
	wf := s.Wellformed()
	if wf != Wellformed {
		return &WellformedError{Status: wf}
	}

	bids := s.sortedBids()
	if len(*cmds) < len(bids) {
		return ErrNotEnoughCommands
	}
	toExecute := (*cmds)[:len(bids)]
	*cmds = (*cmds)[len(bids):]

	claimed := map[geometry.Coord]struct{}{}
	for i, bid := range bids {
		vol, err := s.checkPrecondition(bid, toExecute[i])
		if err != nil {
			return err
		}
		for c := range vol {
			if _, dup := claimed[c]; dup {
				return ErrCommandsInterfere
			}
			claimed[c] = struct{}{}
		}
	}

	r := s.Matrix.Dim()
	overhead := 3 * r * r * r
	if s.Harmonics == High {
		overhead = 30 * r * r * r
	}
	s.Energy += overhead
	s.Energy += 20 * len(bids)

	for i, bid := range bids {
		s.perform(bid, toExecute[i])
	}
	return nil
}

// Run drives Step to completion over cmds, incrementing Steps once per tick.
func (s *State) Run(cmds []command.Command) error {
	for {
		s.Steps++
		if err := s.Step(&cmds); err != nil {
			return err
		}
		if len(cmds) == 0 {
			return nil
		}
	}
}
