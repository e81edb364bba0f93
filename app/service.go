// Package app wires configuration, data loading, solver and metrics sinks
// into one runnable service.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/kilianp07/isnet/config"
	"github.com/kilianp07/isnet/core/lp"
	coremetrics "github.com/kilianp07/isnet/core/metrics"
	"github.com/kilianp07/isnet/core/model"
	"github.com/kilianp07/isnet/core/planner"
	"github.com/kilianp07/isnet/infra/logger"
	"github.com/kilianp07/isnet/infra/workbook"

	// built-in solver backends and metrics sinks
	_ "github.com/kilianp07/isnet/infra/metrics"
	_ "github.com/kilianp07/isnet/infra/solver/bnb"
	_ "github.com/kilianp07/isnet/infra/solver/external"
)

// Service solves the configured instance.
type Service struct {
	cfg     *config.Config
	planner *planner.Planner
	sink    coremetrics.Sink
	log     logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	solver, err := lp.NewSolver(cfg.Solver)
	if err != nil {
		return nil, fmt.Errorf("solver: %w", err)
	}
	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}
	return &Service{
		cfg:     cfg,
		planner: planner.New(solver, sink, logger.New("planner")),
		sink:    sink,
		log:     logg,
	}, nil
}

// Solve loads the workbook, then builds and solves the model once.
func (s *Service) Solve(ctx context.Context) (*planner.Result, error) {
	ds, err := Load(s.cfg)
	if err != nil {
		return nil, err
	}
	return s.planner.Run(ctx, ds, s.cfg.Model)
}

// Close releases resources held by the metrics sinks.
func (s *Service) Close() error { return coremetrics.Close(s.sink) }

// Load reads the dataset described by cfg.
func Load(cfg *config.Config) (*model.Dataset, error) {
	net := cfg.Network.Network()
	ds, err := workbook.Load(cfg.Input, net)
	if err != nil {
		return nil, fmt.Errorf("load workbook: %w", err)
	}
	logger.New("service").Infof("loaded %s: %d heat suppliers, %d CO2 suppliers, %d lands",
		cfg.Input.Path, net.HeatSuppliers(), net.CO2Suppliers, net.Lands)
	return ds, nil
}

// Export writes the model of the configured instance in LP format.
func Export(cfg *config.Config, w io.Writer) error {
	ds, err := Load(cfg)
	if err != nil {
		return err
	}
	p, err := planner.Export(ds, cfg.Model)
	if err != nil {
		return fmt.Errorf("build model: %w", err)
	}
	return lp.WriteLP(w, p)
}

// Template writes a workbook of zeros sized and laid out as configured.
func Template(cfg *config.Config, path string) error {
	return workbook.Write(path, model.NewDataset(cfg.Network.Network()), cfg.Input)
}
