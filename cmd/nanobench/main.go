// Command nanobench runs the solver across a directory of model-pair
// instances and reports per-instance steps, energy, and wall-clock time.
// Grounded on tools/run_benchmarks/main.go's directory-globbing shape, with
// github.com/gocarina/gocsv standing in for its hand-rolled encoding/csv
// writer.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/elektrokombinacija/nanobot-assembly/internal/config"
	"github.com/elektrokombinacija/nanobot-assembly/internal/matrix"
	"github.com/elektrokombinacija/nanobot-assembly/internal/modelfile"
	"github.com/elektrokombinacija/nanobot-assembly/internal/optimizer"
	"github.com/elektrokombinacija/nanobot-assembly/internal/solver"
	"github.com/elektrokombinacija/nanobot-assembly/internal/state"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"golang.org/x/exp/rand"
)

// Result is one instance's benchmark row, tagged for gocsv's header
// inference.
type Result struct {
	Instance   string  `csv:"instance"`
	Dim        int     `csv:"dim"`
	Steps      int     `csv:"steps"`
	Energy     int     `csv:"energy"`
	WallTimeMs float64 `csv:"wall_time_ms"`
	Success    bool    `csv:"success"`
	Error      string  `csv:"error"`
}

func main() {
	os.Exit(run())
}

func run() int {
	instancesDir := flag.String("instances", "", "directory of *_src.mdl/*_tgt.mdl instance pairs")
	outPath := flag.String("out", "report.csv", "CSV report to write")
	configPath := flag.String("config", "", "solver tuning file (YAML, optional)")
	flag.Parse()

	runID := uuid.New()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil)).With("run_id", runID.String())

	if *instancesDir == "" {
		fmt.Fprintln(os.Stderr, "usage: nanobench --instances DIR [--config FILE] --out report.csv")
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

	names, err := discoverInstances(*instancesDir)
	if err != nil {
		logger.Error("discovering instances", "error", err, "dir", *instancesDir)
		return 1
	}
	if len(names) == 0 {
		fmt.Fprintf(os.Stderr, "no *_src.mdl/*_tgt.mdl pairs found in %s\n", *instancesDir)
		return 1
	}
	logger.Info("discovered instances", "count", len(names))

	results := make([]*Result, 0, len(names))
	for i, name := range names {
		rng := rand.New(rand.NewSource(uint64(cfg.Seed) + uint64(i)))
		r := benchOne(*instancesDir, name, cfg.ToSolverConfig(), rng)
		if r.Success {
			logger.Info("instance done", "instance", name, "steps", r.Steps, "energy", r.Energy)
		} else {
			logger.Warn("instance failed", "instance", name, "error", r.Error)
		}
		results = append(results, r)
	}

	f, err := os.Create(*outPath)
	if err != nil {
		logger.Error("creating report", "error", err, "path", *outPath)
		return 1
	}
	defer f.Close()
	if err := gocsv.Marshal(results, f); err != nil {
		logger.Error("writing report", "error", err)
		return 1
	}

	logger.Info("report written", "path", *outPath, "instances", len(results))
	return 0
}

// discoverInstances finds every basename with both a "<name>_src.mdl" and
// "<name>_tgt.mdl" file in dir.
func discoverInstances(dir string) ([]string, error) {
	srcs, err := filepath.Glob(filepath.Join(dir, "*_src.mdl"))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, src := range srcs {
		base := filepath.Base(src)
		name := strings.TrimSuffix(base, "_src.mdl")
		tgt := filepath.Join(dir, name+"_tgt.mdl")
		if _, err := os.Stat(tgt); err == nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func benchOne(dir, name string, cfg solver.Config, rng *rand.Rand) *Result {
	r := &Result{Instance: name}

	source, err := readModel(filepath.Join(dir, name+"_src.mdl"))
	if err != nil {
		r.Error = fmt.Sprintf("reading source: %v", err)
		return r
	}
	target, err := readModel(filepath.Join(dir, name+"_tgt.mdl"))
	if err != nil {
		r.Error = fmt.Sprintf("reading target: %v", err)
		return r
	}
	r.Dim = source.Dim()

	start := time.Now()
	script, err := solver.SolveRNG(source, target, cfg, rng)
	elapsed := time.Since(start)
	r.WallTimeMs = float64(elapsed.Microseconds()) / 1000.0
	if err != nil {
		r.Error = fmt.Sprintf("solving: %v", err)
		return r
	}

	packed, err := optimizer.Optimize(script)
	if err != nil {
		r.Error = fmt.Sprintf("optimizing: %v", err)
		return r
	}

	s := state.New(source)
	if err := s.Run(packed); err != nil {
		r.Error = fmt.Sprintf("replaying: %v", err)
		return r
	}

	r.Steps = s.Steps
	r.Energy = s.Energy
	r.Success = true
	return r
}

func readModel(path string) (*matrix.Matrix, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return modelfile.Read(bs)
}
