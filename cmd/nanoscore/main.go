// Command nanoscore replays a trace against a model and reports the energy
// and step count the replay consumed. It is a direct port of
// original_source/rust/scorer/src/main.rs's loop: step the state machine one
// command set at a time until the command stream is drained.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/elektrokombinacija/nanobot-assembly/internal/command"
	"github.com/elektrokombinacija/nanobot-assembly/internal/modelfile"
	"github.com/elektrokombinacija/nanobot-assembly/internal/state"

	"github.com/google/uuid"
)

func main() {
	os.Exit(run())
}

func run() int {
	modelPath := flag.String("model", "", "model file (.mdl, In)")
	tracePath := flag.String("trace", "", "trace file (.nbt, In)")
	flag.Parse()

	runID := uuid.New()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil)).With("run_id", runID.String())

	if *modelPath == "" || *tracePath == "" {
		fmt.Fprintln(os.Stderr, "usage: nanoscore --model FILE --trace FILE")
		return 2
	}

	modelBytes, err := os.ReadFile(*modelPath)
	if err != nil {
		logger.Error("reading model", "error", err, "path", *modelPath)
		return 1
	}
	m, err := modelfile.Read(modelBytes)
	if err != nil {
		logger.Error("parsing model", "error", err, "path", *modelPath)
		return 1
	}

	traceBytes, err := os.ReadFile(*tracePath)
	if err != nil {
		logger.Error("reading trace", "error", err, "path", *tracePath)
		return 1
	}
	cmds, err := command.DecodeAll(traceBytes)
	if err != nil {
		logger.Error("decoding trace", "error", err, "path", *tracePath)
		return 1
	}
	logger.Info("loaded", "dim", m.Dim(), "commands", len(cmds))

	s := state.New(m)
	steps := 0
	remaining := cmds
	for len(remaining) > 0 {
		steps++
		if err := s.Step(&remaining); err != nil {
			logger.Error("stepping state machine", "error", err, "step", steps)
			fmt.Printf("ERROR: %v\n", err)
			return 1
		}
	}

	fmt.Printf("ENERGY %d Steps %d\n", s.Energy, steps)
	return 0
}
