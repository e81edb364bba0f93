// Package planner formulates the industrial symbiosis network design problem
// and interprets solver output.
//
// Build turns a dataset and a Parameters value into a mixed-integer program
// over every (heat supplier, CO2 supplier, land, crop, technology) pathway.
// Planner.Run drives one complete run: build, solve, evaluate and publish
// the summary to the metrics sink.
package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/isnet/core/logger"
	"github.com/kilianp07/isnet/core/lp"
	"github.com/kilianp07/isnet/core/metrics"
	"github.com/kilianp07/isnet/core/model"
)

// Planner runs the build and solve stages.
type Planner struct {
	solver lp.Solver
	sink   metrics.Sink
	log    logger.Logger
	now    func() time.Time
}

// New returns a Planner. A nil sink disables metrics.
func New(solver lp.Solver, sink metrics.Sink, log logger.Logger) *Planner {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Planner{solver: solver, sink: sink, log: log, now: time.Now}
}

// Run builds the model for ds and solves it once. Infeasible or unbounded
// outcomes are reported through the result status, not as errors.
func (p *Planner) Run(ctx context.Context, ds *model.Dataset, params Parameters) (*Result, error) {
	runID := uuid.NewString()
	m, err := Build(ds, params)
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}
	st := m.Stats()
	p.log.Infof("run %s: model has %d variables (%d binary), %d rows, %d nonzeros",
		runID, st.Variables, st.Binaries, st.Rows, st.NonZeros)
	fam := m.Families()
	fields := make(map[string]any, NumFamilies+1)
	for f := Family(0); f < NumFamilies; f++ {
		fields[f.String()] = fam[f]
	}
	fields["crf"] = m.CRF
	p.log.Debugw("constraint families", fields)

	start := p.now()
	sol, err := p.solver.Solve(ctx, m.Problem)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	res := Evaluate(m, sol)
	res.RunID = runID
	res.Duration = p.now().Sub(start)
	p.log.Infof("run %s: status %s after %d nodes in %s", runID, res.Status, res.Nodes, res.Duration)
	if res.Status != lp.StatusOptimal {
		p.log.Warnf("run %s: solver did not reach optimality (%s)", runID, res.Status)
	}

	if err := p.sink.RecordRun(res.Event(p.now())); err != nil {
		p.log.Warnf("run %s: record metrics: %v", runID, err)
	}
	return res, nil
}

// Export builds the model without solving it.
func Export(ds *model.Dataset, params Parameters) (*lp.Problem, error) {
	m, err := Build(ds, params)
	if err != nil {
		return nil, err
	}
	return m.Problem, nil
}
