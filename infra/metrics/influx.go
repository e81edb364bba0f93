package metrics

import (
	"context"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/isnet/core/metrics"
	"github.com/kilianp07/isnet/infra/logger"
)

// RunMeasurement is the InfluxDB measurement of run summaries.
const RunMeasurement = "isnet_run"

// InfluxSink writes run summaries to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes one isnet_run point.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, runPoint(ev))
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

// runPoint builds the point of ev. Line protocol has no NaN, so undefined
// values are left out; term fields are added in name order.
func runPoint(ev coremetrics.RunEvent) *write.Point {
	p := write.NewPointWithMeasurement(RunMeasurement).
		AddTag("status", ev.Status).
		AddTag("run_id", ev.RunID).
		AddField("variables", ev.Variables).
		AddField("binaries", ev.Binaries).
		AddField("rows", ev.Rows).
		AddField("nonzeros", ev.NonZeros).
		AddField("nodes", ev.Nodes).
		AddField("duration_ms", round3(float64(ev.Duration)/float64(time.Millisecond)))
	if ev.HasValues {
		if finite(ev.Objective) {
			p = p.AddField("objective", round3(ev.Objective))
		}
		p = p.AddField("pathways", ev.Pathways).
			AddField("area_ha", round3(ev.Area))
		names := make([]string, 0, len(ev.Terms))
		for k := range ev.Terms {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			if v := ev.Terms[k]; finite(v) {
				p = p.AddField("term_"+k, round3(v))
			}
		}
	}
	t := ev.Time
	if t.IsZero() {
		t = time.Now()
	}
	return p.SetTime(t)
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
