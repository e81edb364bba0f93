package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/isnet/core/metrics"
)

// Statuses lists the values of the isnet_run_status label.
var Statuses = []string{"Optimal", "Infeasible", "Unbounded", "Not Solved", "Undefined"}

// PromSink records run summaries in Prometheus gauges. With a textfile path
// the gathered metrics are written after every run for the node exporter
// textfile collector.
type PromSink struct {
	gatherer prometheus.Gatherer
	path     string

	objective prometheus.Gauge
	terms     *prometheus.GaugeVec
	status    *prometheus.GaugeVec
	size      *prometheus.GaugeVec
	area      prometheus.Gauge
	pathways  prometheus.Gauge
	nodes     prometheus.Gauge
	duration  prometheus.Gauge
	lastRun   prometheus.Gauge
	runs      *prometheus.CounterVec
}

// NewPromSink registers run metrics on a private registry.
func NewPromSink(path string) (*PromSink, error) {
	reg := prometheus.NewRegistry()
	return NewPromSinkWithRegistry(path, reg, reg)
}

// NewPromSinkWithRegistry registers metrics on reg. The textfile is gathered
// from g; a nil g disables the textfile.
func NewPromSinkWithRegistry(path string, reg prometheus.Registerer, g prometheus.Gatherer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		gatherer: g,
		path:     path,
		objective: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "isnet_objective_chf",
			Help: "Annualized network cost of the last run",
		}),
		terms: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "isnet_cost_term_chf",
			Help: "Undiscounted value of each cost term in the last run",
		}, []string{"term"}),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "isnet_run_status",
			Help: "1 for the solver status of the last run",
		}, []string{"status"}),
		size: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "isnet_model_size",
			Help: "Size of the last model by kind",
		}, []string{"kind"}),
		area: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "isnet_allocated_area_hectares",
			Help: "Total greenhouse area allocated in the last run",
		}),
		pathways: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "isnet_active_pathways",
			Help: "Number of pathways with a positive area in the last run",
		}),
		nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "isnet_solver_nodes",
			Help: "Branch-and-bound nodes explored in the last run",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "isnet_solve_duration_seconds",
			Help: "Solver wall time of the last run",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "isnet_last_run_timestamp_seconds",
			Help: "Unix time of the last run",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "isnet_runs_total",
			Help: "Number of runs by status",
		}, []string{"status"}),
	}

	cs := []prometheus.Collector{s.objective, s.terms, s.status, s.size, s.area, s.pathways, s.nodes, s.duration, s.lastRun, s.runs}
	for i, c := range cs {
		existing, err := register(reg, c)
		if err != nil {
			return nil, err
		}
		cs[i] = existing
	}
	s.objective = cs[0].(prometheus.Gauge)
	s.terms = cs[1].(*prometheus.GaugeVec)
	s.status = cs[2].(*prometheus.GaugeVec)
	s.size = cs[3].(*prometheus.GaugeVec)
	s.area = cs[4].(prometheus.Gauge)
	s.pathways = cs[5].(prometheus.Gauge)
	s.nodes = cs[6].(prometheus.Gauge)
	s.duration = cs[7].(prometheus.Gauge)
	s.lastRun = cs[8].(prometheus.Gauge)
	s.runs = cs[9].(*prometheus.CounterVec)
	return s, nil
}

// register adds c to reg, returning the collector already registered under
// the same descriptor if any.
func register(reg prometheus.Registerer, c prometheus.Collector) (prometheus.Collector, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector, nil
		}
		return nil, err
	}
	return c, nil
}

// RecordRun updates every gauge and writes the textfile if configured.
// Gauges of undefined values are set to NaN.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.objective.Set(ev.Objective)
	s.terms.Reset()
	for name, v := range ev.Terms {
		s.terms.WithLabelValues(name).Set(v)
	}
	for _, st := range Statuses {
		v := 0.0
		if st == ev.Status {
			v = 1
		}
		s.status.WithLabelValues(st).Set(v)
	}
	s.runs.WithLabelValues(ev.Status).Inc()
	s.size.WithLabelValues("variables").Set(float64(ev.Variables))
	s.size.WithLabelValues("binaries").Set(float64(ev.Binaries))
	s.size.WithLabelValues("rows").Set(float64(ev.Rows))
	s.size.WithLabelValues("nonzeros").Set(float64(ev.NonZeros))
	s.area.Set(ev.Area)
	s.pathways.Set(float64(ev.Pathways))
	s.nodes.Set(float64(ev.Nodes))
	s.duration.Set(ev.Duration.Seconds())
	at := ev.Time
	if at.IsZero() {
		at = time.Now()
	}
	s.lastRun.Set(float64(at.UnixNano()) / 1e9)

	if s.path == "" || s.gatherer == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(s.path, s.gatherer); err != nil {
		return fmt.Errorf("write textfile %s: %w", s.path, err)
	}
	return nil
}
