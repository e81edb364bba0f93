// Package external implements lp.Solver by handing the problem, written in
// LP format, to an installed CBC or HiGHS binary and reading its solution
// file back.
package external

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/kilianp07/isnet/core/factory"
	"github.com/kilianp07/isnet/core/logger"
	"github.com/kilianp07/isnet/core/lp"
	infralogger "github.com/kilianp07/isnet/infra/logger"
)

// Supported solver binaries.
const (
	CBC   = "cbc"
	HiGHS = "highs"
)

// Config selects and tunes the external binary.
type Config struct {
	// Solver is "cbc" or "highs".
	Solver string `json:"solver"`
	// Path of the binary; empty looks Solver up in PATH.
	Path string `json:"path"`
	// Args are passed to the binary before the solve directive.
	Args []string `json:"args"`
	// Timeout kills the process; zero waits for the context only.
	Timeout time.Duration `json:"timeout"`
	// WorkDir holds the model and solution files; empty uses the system
	// temporary directory.
	WorkDir string `json:"work_dir"`
	// KeepFiles leaves the model and solution files on disk.
	KeepFiles bool `json:"keep_files"`
}

// Validate checks the solver name.
func (c Config) Validate() error {
	switch c.Solver {
	case CBC, HiGHS:
		return nil
	default:
		return fmt.Errorf("external solver: unsupported solver %q (want %s or %s)", c.Solver, CBC, HiGHS)
	}
}

func init() {
	_ = lp.RegisterSolver("external", func(conf map[string]any) (lp.Solver, error) {
		cfg := Config{Solver: HiGHS}
		if err := factory.Decode(conf, &cfg); err != nil {
			return nil, err
		}
		return New(cfg, infralogger.New("external"))
	})
}

// runCommand executes the solver binary. Tests replace it.
var runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Solver runs an external MILP binary.
type Solver struct {
	cfg Config
	log logger.Logger
}

// New returns a solver for cfg. A nil logger disables logging.
func New(cfg Config, log logger.Logger) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = infralogger.NopLogger{}
	}
	return &Solver{cfg: cfg, log: log}, nil
}

// Solve writes p to a temporary directory, runs the binary and parses its
// solution file. Columns missing from the file are zero. The objective is
// recomputed from the values so that objective constants are kept.
func (s *Solver) Solve(ctx context.Context, p *lp.Problem) (*lp.Solution, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	dir, err := os.MkdirTemp(s.cfg.WorkDir, "isnet-")
	if err != nil {
		return nil, fmt.Errorf("external solver: %w", err)
	}
	if s.cfg.KeepFiles {
		s.log.Infof("external solver files kept in %s", dir)
	} else {
		defer func() { _ = os.RemoveAll(dir) }()
	}

	model := filepath.Join(dir, "model.lp")
	solution := filepath.Join(dir, "model.sol")
	if err := writeModel(model, p); err != nil {
		return nil, err
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	name := s.cfg.Path
	if name == "" {
		name = s.cfg.Solver
	}
	start := time.Now()
	out, runErr := runCommand(ctx, name, s.args(model, solution)...)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(solution)
	if err != nil {
		if runErr != nil {
			return nil, fmt.Errorf("external solver %s: %w: %s", name, runErr, tail(out))
		}
		return nil, fmt.Errorf("external solver %s: no solution file: %w", name, err)
	}
	defer f.Close()

	var res parsed
	switch s.cfg.Solver {
	case CBC:
		res, err = parseCBC(f)
	default:
		res, err = parseHiGHS(f)
	}
	if err != nil {
		return nil, fmt.Errorf("external solver %s: %w", name, err)
	}

	sol := &lp.Solution{Status: res.status, Objective: math.NaN()}
	if res.values != nil {
		names := lp.ColumnNames(p)
		sol.X = make([]float64, len(p.Cols))
		for j, n := range names {
			sol.X[j] = res.values[n]
		}
		sol.Objective = p.Objective.Value(sol.X)
	}
	s.log.Debugw("external solve finished", map[string]any{
		"solver":      s.cfg.Solver,
		"status":      sol.Status.String(),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return sol, nil
}

func (s *Solver) args(model, solution string) []string {
	switch s.cfg.Solver {
	case CBC:
		args := append([]string{model}, s.cfg.Args...)
		return append(args, "solve", "solu", solution)
	default:
		args := []string{"--model_file", model, "--solution_file", solution}
		return append(args, s.cfg.Args...)
	}
}

func writeModel(path string, p *lp.Problem) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("external solver: %w", err)
	}
	if err := lp.WriteLP(f, p); err != nil {
		_ = f.Close()
		return fmt.Errorf("external solver: write model: %w", err)
	}
	return f.Close()
}

func tail(out []byte) string {
	const limit = 512
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return string(out)
}

var errFormat = errors.New("unrecognised solution file")
