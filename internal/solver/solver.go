// Package solver implements the randomized swarm assembler, grounded on
// original_source/rust/icfpc2018_lib/src/solver/random_swarm.rs: a tick loop
// that drives each active nanobot through a small state machine (wander to a
// random target, pick off the nearest outstanding Fill/Void job once there,
// route to it, then route home and fuse back to a single bot) until the
// current model matches the target or a resource limit is hit.
//
// The reference's own router/rtt submodule is an unimplemented!() stub, so
// route-finding here is internal/planner's randomized tree planner instead;
// everything else follows random_swarm.rs's structure and naming.
package solver

import (
	"fmt"
	"sort"

	"github.com/elektrokombinacija/nanobot-assembly/internal/command"
	"github.com/elektrokombinacija/nanobot-assembly/internal/geometry"
	"github.com/elektrokombinacija/nanobot-assembly/internal/kdtree"
	"github.com/elektrokombinacija/nanobot-assembly/internal/matrix"
	"github.com/elektrokombinacija/nanobot-assembly/internal/planner"
	"github.com/elektrokombinacija/nanobot-assembly/internal/state"

	"golang.org/x/exp/rand"
)

// Config bounds the search the way random_swarm.rs's Config does: how hard
// the planner tries per route, how many times a nanobot may retry a
// heading before giving up, and how many ticks the whole run may take.
type Config struct {
	RTTLimit            int
	RouteAttemptsLimit  int
	GlobalTicksLimit    int
	InitBots            []InitBot
}

// InitBot seeds the swarm with more than the default single bot at the
// origin, mirroring random_swarm.rs's support for a pre-supplied bot list
// (e.g. one already produced by an earlier Fission-heavy setup phase).
type InitBot struct {
	Bid state.Bid
	Bot state.Bot
}

// DefaultConfig matches the tuning random_swarm.rs's own tests use.
func DefaultConfig() Config {
	return Config{
		RTTLimit:           1000,
		RouteAttemptsLimit: 100,
		GlobalTicksLimit:   1_000_000,
	}
}

// DimMismatchError reports that source and target have different
// resolutions; no trace can assemble one into the other.
type DimMismatchError struct {
	SourceDim, TargetDim int
}

func (e *DimMismatchError) Error() string {
	return fmt.Sprintf("solver: source dim %d != target dim %d", e.SourceDim, e.TargetDim)
}

// RouteAttemptsLimitExceededError reports a nanobot that could not find any
// route toward its current heading within Config.RouteAttemptsLimit retries.
type RouteAttemptsLimitExceededError struct {
	Source, Target geometry.Coord
	Attempts       int
}

func (e *RouteAttemptsLimitExceededError) Error() string {
	return fmt.Sprintf("solver: exceeded %d route attempts from %v toward %v", e.Attempts, e.Source, e.Target)
}

// GlobalTicksLimitExceededError reports that the tick budget ran out before
// the model converged. ScriptSoFar and VoxelsToDo let a caller inspect how
// close the run got.
type GlobalTicksLimitExceededError struct {
	Ticks       int
	ScriptSoFar []command.Command
	VoxelsToDo  int
}

func (e *GlobalTicksLimitExceededError) Error() string {
	return fmt.Sprintf("solver: exceeded %d ticks with %d voxels still to do", e.Ticks, e.VoxelsToDo)
}

// Env bundles the fixed per-run lookups: the source/target models being
// compared and a k-d index over each one's filled voxels, used to find the
// nearest outstanding void/fill job from a nanobot's current position.
type Env struct {
	Source, Target *matrix.Matrix
	Config         Config
	sourceKD       *kdtree.KdTree
	targetKD       *kdtree.KdTree
}

func newEnv(source, target *matrix.Matrix, config Config) *Env {
	return &Env{
		Source:   source,
		Target:   target,
		Config:   config,
		sourceKD: kdtree.Build(source.FilledVoxels()),
		targetKD: kdtree.Build(target.FilledVoxels()),
	}
}

// planKind discriminates a nanobot's current goal.
type planKind int

const (
	planInit planKind = iota
	planHeadingFor
)

// plan is one nanobot's current intent: either "pick a fresh random target"
// (planInit) or "move toward Target, having already failed Attempts times".
type plan struct {
	Kind     planKind
	Target   geometry.Coord
	Attempts int
}

// nanobot is the solver's own bookkeeping record for one active bot,
// independent of (but kept in sync with) state.Bot.
type nanobot struct {
	Bid state.Bid
	Bot state.Bot
	Plan plan
}

// workState carries the convergence-phase facts implementPlan needs once
// current_model already matches target: whether the master (origin) bot and
// a fusable slave both exist this tick, and how many nanobots remain.
type workState struct {
	Completed     bool
	NanobotsLeft  int
	HasSlavePick  bool
	SlavePick     geometry.Coord
}

// outcomeKind classifies what implementPlan decided for one nanobot this
// tick. outcomeSpawn mirrors random_swarm.rs's PlanResult::Spawn variant,
// which that reference never actually constructs (the solver never issues
// Fission at runtime, only via Config.InitBots) — kept here for structural
// parity, never produced.
type outcomeKind int

const (
	outcomeRegular outcomeKind = iota
	outcomePerish
	outcomeSpawn
	outcomeError
)

type outcome struct {
	Kind    outcomeKind
	Nanobot nanobot
	Child   nanobot
	Cmd     command.Command
	Err     error
}

func initBot() state.Bot {
	seeds := make([]state.Bid, 0, state.MaxBots-1)
	for b := 2; b <= state.MaxBots; b++ {
		seeds = append(seeds, b)
	}
	return state.Bot{Pos: geometry.Coord{}, Seeds: seeds}
}

// Solve assembles source into target using a fresh RNG seeded with 1, so
// repeated calls on the same input produce the same script.
func Solve(source, target *matrix.Matrix, config Config) ([]command.Command, error) {
	return SolveRNG(source, target, config, rand.New(rand.NewSource(1)))
}

// SolveRNG is Solve with an explicit RNG, for reproducible tests.
func SolveRNG(source, target *matrix.Matrix, config Config, rng *rand.Rand) ([]command.Command, error) {
	if source.Dim() != target.Dim() {
		return nil, &DimMismatchError{SourceDim: source.Dim(), TargetDim: target.Dim()}
	}

	env := newEnv(source, target, config)
	currentModel := source.Clone()

	var nanobots []nanobot
	if len(config.InitBots) == 0 {
		nanobots = []nanobot{{Bid: 1, Bot: initBot(), Plan: plan{Kind: planInit}}}
	} else {
		for _, ib := range config.InitBots {
			nanobots = append(nanobots, nanobot{Bid: ib.Bid, Bot: ib.Bot, Plan: plan{Kind: planInit}})
		}
	}

	var script []command.Command
	workComplete := false

	for ticks := 1; ; ticks++ {
		if ticks >= config.GlobalTicksLimit {
			return nil, &GlobalTicksLimitExceededError{
				Ticks:       ticks,
				ScriptSoFar: script,
				VoxelsToDo:  voxelsToDo(source, target, currentModel),
			}
		}

		if !workComplete && currentModel.Equals(target) {
			workComplete = true
		}

		ws := workState{}
		if workComplete {
			ws.Completed = true
			ws.NanobotsLeft = len(nanobots)
			if len(nanobots) == 0 {
				return script, nil
			}
			haveMaster, haveSlave := false, false
			var slave geometry.Coord
			for _, nb := range nanobots {
				if nb.Bot.Pos == (geometry.Coord{}) {
					haveMaster = true
				} else if nb.Bot.Pos.Diff(geometry.Coord{}).IsNear() {
					slave, haveSlave = nb.Bot.Pos, true
				}
			}
			if haveMaster && haveSlave {
				ws.HasSlavePick, ws.SlavePick = true, slave
			}
		}

		positions := make([]geometry.Coord, len(nanobots))
		for i, nb := range nanobots {
			positions[i] = nb.Bot.Pos
		}
		var volatiles []geometry.Region

		nextNanobots := make([]nanobot, 0, len(nanobots))
		for _, nb := range nanobots {
			selfPos := nb.Bot.Pos
			isPassable := func(region geometry.Region) bool {
				if currentModel.ContainsFilled(region) {
					return false
				}
				for _, v := range volatiles {
					if v.Intersects(region) {
						return false
					}
				}
				for _, pos := range positions {
					if pos != selfPos && region.Contains(pos) {
						return false
					}
				}
				return true
			}

			out := implementPlan(nb, env, currentModel, ws, isPassable, rng)
			switch out.Kind {
			case outcomeError:
				return nil, out.Err
			case outcomePerish:
				script = append(script, out.Cmd)
			case outcomeRegular:
				n := out.Nanobot
				applyCommand(&n, out.Cmd, currentModel, &volatiles)
				script = append(script, out.Cmd)
				nextNanobots = append(nextNanobots, n)
			case outcomeSpawn:
				n := out.Nanobot
				applyCommand(&n, out.Cmd, currentModel, &volatiles)
				script = append(script, out.Cmd)
				nextNanobots = append(nextNanobots, n, out.Child)
			}
		}

		nanobots = nextNanobots
		sort.Slice(nanobots, func(i, j int) bool { return nanobots[i].Bid < nanobots[j].Bid })
	}
}

func voxelsToDo(source, target, current *matrix.Matrix) int {
	count := 0
	for _, v := range source.FilledVoxels() {
		if current.IsFilled(v) && !target.IsFilled(v) {
			count++
		}
	}
	for _, v := range target.FilledVoxels() {
		if !current.IsFilled(v) {
			count++
		}
	}
	return count
}

// applyCommand mirrors random_swarm.rs's inline "interpret" step: update the
// nanobot's tracked position and the shared simulated model so the next
// nanobot in this same tick sees an up-to-date world, and record the swept
// region as volatile. Commands other than SMove/LMove/Fill/Void carry no
// position or model effect at the solver's level (Halt/Flip/Fission/Fusion
// semantics are left entirely to the real state.State that later executes
// the emitted script).
func applyCommand(n *nanobot, cmd command.Command, currentModel *matrix.Matrix, volatiles *[]geometry.Region) {
	switch cmd.Kind {
	case command.SMove:
		d := cmd.Long.ToCoordDiff()
		next := n.Bot.Pos.Add(d)
		*volatiles = append(*volatiles, geometry.FromCorners(n.Bot.Pos, next))
		n.Bot.Pos = next
	case command.LMove:
		d1 := cmd.Short1.ToCoordDiff()
		mid := n.Bot.Pos.Add(d1)
		*volatiles = append(*volatiles, geometry.FromCorners(n.Bot.Pos, mid))
		d2 := cmd.Short2.ToCoordDiff()
		next := mid.Add(d2)
		*volatiles = append(*volatiles, geometry.FromCorners(mid, next))
		n.Bot.Pos = next
	case command.Fill:
		currentModel.SetFilled(n.Bot.Pos.Add(cmd.Near))
	case command.Void:
		currentModel.SetVoid(n.Bot.Pos.Add(cmd.Near))
	}
}

// implementPlan runs one nanobot's state machine forward, purely in memory,
// until it has a command to emit or hits an unrecoverable error. It never
// consumes a tick itself; the caller (SolveRNG) advances exactly one command
// per nanobot per tick regardless of how many internal plan transitions
// this call makes to arrive at it.
func implementPlan(nb nanobot, env *Env, currentModel *matrix.Matrix, ws workState, isPassable planner.IsPassable, rng *rand.Rand) outcome {
	if ws.Completed {
		if nb.Bot.Pos == (geometry.Coord{}) {
			if ws.NanobotsLeft == 1 {
				return outcome{Kind: outcomePerish, Cmd: command.Command{Kind: command.Halt}}
			}
			if ws.HasSlavePick {
				near := ws.SlavePick.Diff(nb.Bot.Pos)
				cmd, err := command.NewFusionP(near)
				if err != nil {
					return outcome{Kind: outcomeError, Err: err}
				}
				return outcome{Kind: outcomeRegular, Nanobot: nb, Cmd: cmd}
			}
			return outcome{Kind: outcomeRegular, Nanobot: nb, Cmd: command.Command{Kind: command.Wait}}
		}
		if ws.HasSlavePick && ws.SlavePick == nb.Bot.Pos {
			near := (geometry.Coord{}).Diff(nb.Bot.Pos)
			cmd, err := command.NewFusionS(near)
			if err != nil {
				return outcome{Kind: outcomeError, Err: err}
			}
			return outcome{Kind: outcomePerish, Cmd: cmd}
		}
		nb.Plan = plan{Kind: planHeadingFor, Target: geometry.Coord{}}
	}

	for {
		switch nb.Plan.Kind {
		case planInit:
			nb.Plan = plan{Kind: planHeadingFor, Target: pickRandomCoord(currentModel.Dim(), rng)}

		case planHeadingFor:
			if nb.Plan.Target == nb.Bot.Pos {
				for _, neighbour := range nb.Bot.Pos.NeighboursLimit(currentModel.Dim()) {
					if cmd, ok := tryPerformJob(nb.Bot.Pos, neighbour, env, currentModel, isPassable, rng); ok {
						return outcome{Kind: outcomeRegular, Nanobot: nb, Cmd: cmd}
					}
				}

				if cmd, newTarget, ok := headToNearestJob(nb.Plan.Target, env, currentModel, isPassable, rng); ok {
					nb.Plan = plan{Kind: planHeadingFor, Target: newTarget}
					return outcome{Kind: outcomeRegular, Nanobot: nb, Cmd: cmd}
				}

				nb.Plan = plan{Kind: planHeadingFor, Target: pickRandomCoord(currentModel.Dim(), rng)}
				continue
			}

			if nb.Plan.Attempts > env.Config.RouteAttemptsLimit {
				return outcome{Kind: outcomeError, Err: &RouteAttemptsLimitExceededError{
					Source: nb.Bot.Pos, Target: nb.Plan.Target, Attempts: nb.Plan.Attempts,
				}}
			}

			cmd, err := routeAndStep(nb.Bot.Pos, nb.Plan.Target, currentModel, isPassable, env.Config.RTTLimit, rng)
			if err != nil {
				return outcome{Kind: outcomeError, Err: err}
			}
			if cmd != nil {
				nb.Plan = plan{Kind: planHeadingFor, Target: nb.Plan.Target}
				return outcome{Kind: outcomeRegular, Nanobot: nb, Cmd: *cmd}
			}

			attempts := nb.Plan.Attempts + 1
			if !ws.Completed {
				nb.Plan = plan{Kind: planHeadingFor, Target: pickRandomCoord(currentModel.Dim(), rng), Attempts: attempts}
			} else {
				nb.Plan = plan{Kind: planHeadingFor, Target: driftTarget(nb.Plan.Target, attempts), Attempts: attempts}
			}
		}
	}
}

// driftTarget moves the heading away from where it was by attempts/3 along
// axis attempts%3 (X, Y, Z in turn, always in the positive direction) once
// the model is already complete and every bot is simply trying to route
// home for the final fusion chain — matching random_swarm.rs's fallback
// when the direct route to (0,0,0) keeps failing.
func driftTarget(target geometry.Coord, attempts int) geometry.Coord {
	offset := attempts / 3
	switch attempts % 3 {
	case 0:
		target.X += offset
	case 1:
		target.Y += offset
	default:
		target.Z += offset
	}
	return target
}

// headToNearestJob walks the source/target k-d indexes in merged
// non-decreasing distance order from `from`, looking for the first job
// (void an extra source voxel, or fill a missing target voxel) that is
// currently feasible, then tries to route toward one of that job's near
// neighbours. It returns the first routing command found, and the neighbour
// that becomes the nanobot's new heading.
func headToNearestJob(from geometry.Coord, env *Env, currentModel *matrix.Matrix, isPassable planner.IsPassable, rng *rand.Rand) (command.Command, geometry.Coord, bool) {
	voidIter := env.sourceKD.Nearest(from)
	fillIter := env.targetKD.Nearest(from)
	voidCoord, voidDist, voidOk := voidIter.Next()
	fillCoord, fillDist, fillOk := fillIter.Next()

	for {
		var job geometry.Coord
		switch {
		case !voidOk && !fillOk:
			return command.Command{}, geometry.Coord{}, false
		case voidOk && !fillOk:
			job = voidCoord
			voidCoord, voidDist, voidOk = voidIter.Next()
		case !voidOk && fillOk:
			job = fillCoord
			fillCoord, fillDist, fillOk = fillIter.Next()
		default:
			if voidDist < fillDist {
				job = voidCoord
				voidCoord, voidDist, voidOk = voidIter.Next()
			} else {
				job = fillCoord
				fillCoord, fillDist, fillOk = fillIter.Next()
			}
		}

		if !jobFeasible(from, job, env, currentModel, isPassable, rng) {
			continue
		}

		neighbours := job.NeighboursLimit(currentModel.Dim())
		rng.Shuffle(len(neighbours), func(i, j int) { neighbours[i], neighbours[j] = neighbours[j], neighbours[i] })
		for _, candidate := range neighbours {
			cmd, err := routeAndStep(from, candidate, currentModel, isPassable, env.Config.RTTLimit, rng)
			if err == nil && cmd != nil {
				return *cmd, candidate, true
			}
		}
	}
}

// jobKind reports whether jobCoord is currently an actionable Void job (a
// source voxel still present but absent from target, whose removal keeps
// everything else grounded) or Fill job (a target voxel still missing,
// whose addition would be grounded and which leaves botCoord a route to the
// origin that does not pass through it), and whether it is feasible at all
// right now.
func jobKind(botCoord, jobCoord geometry.Coord, e *Env, currentModel *matrix.Matrix, isPassable planner.IsPassable, rng *rand.Rand) (isVoid, feasible bool) {
	currentFilled := currentModel.IsFilled(jobCoord)
	sourceFilled := e.Source.IsFilled(jobCoord)
	targetFilled := e.Target.IsFilled(jobCoord)

	if currentFilled && sourceFilled && !targetFilled {
		remaining := make(map[geometry.Coord]struct{})
		for _, c := range currentModel.FilledVoxels() {
			if c != jobCoord {
				remaining[c] = struct{}{}
			}
		}
		if matrix.AllVoxelsAreGrounded(remaining) {
			return true, true
		}
		return false, false
	}

	if !currentFilled && targetFilled && currentModel.WillBeGrounded(jobCoord) {
		blocked := func(region geometry.Region) bool {
			return !region.Contains(jobCoord) && isPassable(region)
		}
		if _, ok := planner.PlanRoute(botCoord, geometry.Coord{}, currentModel, blocked, e.Config.RTTLimit, rng); ok {
			return false, true
		}
	}
	return false, false
}

func jobFeasible(botCoord, jobCoord geometry.Coord, e *Env, currentModel *matrix.Matrix, isPassable planner.IsPassable, rng *rand.Rand) bool {
	_, feasible := jobKind(botCoord, jobCoord, e, currentModel, isPassable, rng)
	return feasible
}

// tryPerformJob builds the concrete Void/Fill command for jobCoord when it
// is a near neighbour of botCoord and currently feasible. Unlike jobKind's
// probing use inside headToNearestJob (where jobCoord may be arbitrarily
// far away), this is only ever called with an already-adjacent jobCoord, so
// the constructed near offset is always valid.
func tryPerformJob(botCoord, jobCoord geometry.Coord, e *Env, currentModel *matrix.Matrix, isPassable planner.IsPassable, rng *rand.Rand) (command.Command, bool) {
	isVoid, feasible := jobKind(botCoord, jobCoord, e, currentModel, isPassable, rng)
	if !feasible {
		return command.Command{}, false
	}
	near := jobCoord.Diff(botCoord)
	if isVoid {
		cmd, err := command.NewVoid(near)
		return cmd, err == nil
	}
	cmd, err := command.NewFill(near)
	return cmd, err == nil
}

// pickRandomCoord samples a uniformly random in-bounds coordinate, the
// wandering target a nanobot heads for when it has no outstanding job
// nearby.
func pickRandomCoord(dim int, rng *rand.Rand) geometry.Coord {
	return geometry.Coord{X: rng.Intn(dim), Y: rng.Intn(dim), Z: rng.Intn(dim)}
}

// routeAndStep asks the planner for a path from from to to and returns the
// first command of its command-rendering, or nil if the planner could not
// find one within limit tries. The command is executed one at a time — each
// call to implementPlan only ever consumes this first step, re-planning
// fresh (and possibly along a different route) on its next turn.
func routeAndStep(from, to geometry.Coord, currentModel *matrix.Matrix, isPassable planner.IsPassable, limit int, rng *rand.Rand) (*command.Command, error) {
	path, ok := planner.PlanRoute(from, to, currentModel, isPassable, limit, rng)
	if !ok || len(path) < 2 {
		return nil, nil
	}
	cmds, err := planner.PlanRouteCommands(path[:2])
	if err != nil {
		return nil, err
	}
	if len(cmds) == 0 {
		return nil, nil
	}
	return &cmds[0], nil
}
