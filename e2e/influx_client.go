// Package e2e runs the planner against real InfluxDB and Mosquitto
// containers.
package e2e

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient reads back what the influx sink wrote.
type InfluxClient struct {
	bucket string
	client influxdb2.Client
	query  api.QueryAPI
}

// NewInfluxClient connects to a running server.
func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	c := influxdb2.NewClient(url, token)
	return &InfluxClient{bucket: bucket, client: c, query: c.QueryAPI(org)}
}

// RunFields returns the last value of every field of the run tagged runID.
func (c *InfluxClient) RunFields(ctx context.Context, measurement, runID string) (map[string]any, error) {
	flux := fmt.Sprintf(`from(bucket:%q) |> range(start:-1h) |> filter(fn: (r) => r._measurement == %q and r.run_id == %q) |> last()`,
		c.bucket, measurement, runID)
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return nil, err
	}
	defer res.Close()
	fields := map[string]any{}
	for res.Next() {
		rec := res.Record()
		fields[rec.Field()] = rec.Value()
	}
	return fields, res.Err()
}

// Close releases the underlying client resources.
func (c *InfluxClient) Close() { c.client.Close() }
