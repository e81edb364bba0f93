package mqtt

import (
	"encoding/json"
	"math"
	"time"

	coremetrics "github.com/kilianp07/isnet/core/metrics"
)

// RunSummary is the JSON document published for every run. Values the solver
// did not provide are omitted.
type RunSummary struct {
	RunID      string             `json:"run_id"`
	Status     string             `json:"status"`
	Objective  *float64           `json:"objective,omitempty"`
	Terms      map[string]float64 `json:"terms,omitempty"`
	Pathways   int                `json:"pathways"`
	AreaHa     float64            `json:"area_ha"`
	Variables  int                `json:"variables"`
	Binaries   int                `json:"binaries"`
	Rows       int                `json:"rows"`
	NonZeros   int                `json:"nonzeros"`
	Nodes      int                `json:"nodes"`
	DurationMS int64              `json:"duration_ms"`
	Timestamp  int64              `json:"timestamp"`
}

// NewRunSummary converts a run event.
func NewRunSummary(ev coremetrics.RunEvent) RunSummary {
	s := RunSummary{
		RunID:      ev.RunID,
		Status:     ev.Status,
		Pathways:   ev.Pathways,
		AreaHa:     ev.Area,
		Variables:  ev.Variables,
		Binaries:   ev.Binaries,
		Rows:       ev.Rows,
		NonZeros:   ev.NonZeros,
		Nodes:      ev.Nodes,
		DurationMS: ev.Duration.Milliseconds(),
		Timestamp:  ev.Time.UnixMilli(),
	}
	if ev.HasValues && !math.IsNaN(ev.Objective) && !math.IsInf(ev.Objective, 0) {
		obj := ev.Objective
		s.Objective = &obj
	}
	if len(ev.Terms) > 0 {
		s.Terms = make(map[string]float64, len(ev.Terms))
		for k, v := range ev.Terms {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				s.Terms[k] = v
			}
		}
	}
	return s
}

// RunSink publishes run summaries on a topic.
type RunSink struct {
	client Client
	topic  string
}

// NewRunSink wraps client. An empty topic selects DefaultTopic.
func NewRunSink(client Client, topic string) *RunSink {
	if topic == "" {
		topic = DefaultTopic
	}
	return &RunSink{client: client, topic: topic}
}

// RecordRun publishes the summary of ev.
func (s *RunSink) RecordRun(ev coremetrics.RunEvent) error {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	payload, err := json.Marshal(NewRunSummary(ev))
	if err != nil {
		return err
	}
	return s.client.Publish(s.topic, payload)
}

// Close disconnects the underlying client.
func (s *RunSink) Close() error {
	s.client.Disconnect()
	return nil
}
