// Command nanoassemble runs the swarm solver end to end: read a source and
// target model, solve, pack the resulting script with the move optimizer,
// and write the trace.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/elektrokombinacija/nanobot-assembly/internal/command"
	"github.com/elektrokombinacija/nanobot-assembly/internal/config"
	"github.com/elektrokombinacija/nanobot-assembly/internal/matrix"
	"github.com/elektrokombinacija/nanobot-assembly/internal/modelfile"
	"github.com/elektrokombinacija/nanobot-assembly/internal/optimizer"
	"github.com/elektrokombinacija/nanobot-assembly/internal/solver"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"
)

func main() {
	os.Exit(run())
}

func run() int {
	sourcePath := flag.String("source", "", "source model file (.mdl, In)")
	targetPath := flag.String("target", "", "target model file (.mdl, In)")
	configPath := flag.String("config", "", "solver tuning file (YAML, optional)")
	outPath := flag.String("out", "", "trace file to write (.nbt, Out)")
	flag.Parse()

	runID := uuid.New()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil)).With("run_id", runID.String())

	if *sourcePath == "" || *targetPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: nanoassemble --source FILE --target FILE [--config FILE] --out FILE")
		return 2
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Error("loading config", "error", err, "path", *configPath)
			return 1
		}
		cfg = loaded
	}

	source, err := readModel(*sourcePath)
	if err != nil {
		logger.Error("reading source model", "error", err, "path", *sourcePath)
		return 1
	}
	target, err := readModel(*targetPath)
	if err != nil {
		logger.Error("reading target model", "error", err, "path", *targetPath)
		return 1
	}
	logger.Info("models loaded", "source_dim", source.Dim(), "target_dim", target.Dim())

	start := time.Now()
	rng := rand.New(rand.NewSource(uint64(cfg.Seed)))
	script, err := solver.SolveRNG(source, target, cfg.ToSolverConfig(), rng)
	if err != nil {
		logger.Error("solving", "error", err)
		return exitCodeFor(err)
	}
	logger.Info("solved", "steps", len(script), "elapsed", time.Since(start).String())

	packed, err := optimizer.Optimize(script)
	if err != nil {
		logger.Error("optimizing script", "error", err)
		return 1
	}
	logger.Info("optimized", "steps_before", len(script), "steps_after", len(packed))

	bs, err := command.EncodeAll(packed)
	if err != nil {
		logger.Error("encoding trace", "error", err)
		return 1
	}
	if err := os.WriteFile(*outPath, bs, 0644); err != nil {
		logger.Error("writing trace", "error", err, "path", *outPath)
		return 1
	}

	logger.Info("trace written", "path", *outPath, "bytes", len(bs))
	return 0
}

func readModel(path string) (*matrix.Matrix, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := modelfile.Read(bs)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// exitCodeFor maps a solver error kind to a non-zero process exit code.
// Dimension mismatches abort immediately (there is nothing to retry); the
// two attempt/tick-budget exhaustion kinds get a distinct code so a caller
// can tell "gave up" apart from "malformed input".
func exitCodeFor(err error) int {
	switch err.(type) {
	case *solver.DimMismatchError:
		return 3
	case *solver.RouteAttemptsLimitExceededError, *solver.GlobalTicksLimitExceededError:
		return 4
	default:
		return 1
	}
}
