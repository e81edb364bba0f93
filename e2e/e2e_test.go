//go:build !no_containers

package e2e

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/isnet/app"
	"github.com/kilianp07/isnet/config"
	"github.com/kilianp07/isnet/core/factory"
	"github.com/kilianp07/isnet/core/model"
	"github.com/kilianp07/isnet/infra/metrics"
	"github.com/kilianp07/isnet/infra/mqtt"
	"github.com/kilianp07/isnet/infra/workbook"
	"github.com/kilianp07/isnet/test/util"
)

const (
	influxOrg    = "e2e_org"
	influxBucket = "e2e_bucket"
	influxToken  = "e2e-token"
)

// junitReport is a minimal JUnit XML report so CI can display the results.
type junitReport struct {
	XMLName  xml.Name        `xml:"testsuite"`
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name    string  `xml:"name,attr"`
	Failure *string `xml:"failure,omitempty"`
	Time    float64 `xml:"time,attr"`
}

func writeJUnit(path string, rep junitReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	return enc.Encode(rep)
}

// startInflux starts an InfluxDB 2.7 container initialised with the test
// organisation, bucket and token.
func startInflux(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "e2e",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "e2e-password",
			"DOCKER_INFLUXDB_INIT_ORG":         influxOrg,
			"DOCKER_INFLUXDB_INIT_BUCKET":      influxBucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": influxToken,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start influx container: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "8086")
	return cont, fmt.Sprintf("http://%s:%s", host, port.Port())
}

func writeInput(t *testing.T, cfg *config.Config) {
	t.Helper()
	ds := &model.Dataset{
		Network:        cfg.Network.Network(),
		LandArea:       []float64{10, 10},
		HeatCapacity:   []float64{100, 100},
		CO2Output:      []float64{1e6},
		HeatDistance:   mat.NewDense(2, 2, []float64{1, 2, 2, 1}),
		CO2Distance:    mat.NewDense(1, 2, []float64{1, 1}),
		EnergyDemand:   mat.NewDense(2, 3, []float64{0.5, 0.6, 0.3, 0.5, 0.6, 0.3}),
		LightingDemand: mat.NewDense(2, 3, []float64{10, 10, 10, 10, 10, 10}),
	}
	require.NoError(t, workbook.Write(cfg.Input.Path, ds, cfg.Input))
}

func TestE2E_RunSinks(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	start := time.Now()

	influxCont, influxURL := startInflux(ctx, t)
	defer influxCont.Terminate(ctx) //nolint:errcheck
	broker, stopBroker, err := util.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("unable to start mosquitto: %v", err)
	}
	defer stopBroker()

	payloads, unsubscribe, err := util.Subscribe(broker, mqtt.DefaultTopic, "e2e-sub")
	require.NoError(t, err)
	defer unsubscribe()

	cfg := config.Default()
	cfg.Network = model.NetworkConfig{Biogas: 1, Cement: 1, CO2Suppliers: 1, Lands: 2}
	cfg.Input.Path = filepath.Join(t.TempDir(), "input.xlsx")
	cfg.Model.Crops.Tomato.AreaDemand = 4
	cfg.Model.Crops.Cucumber.AreaDemand = 3
	cfg.Model.Crops.Lettuce.AreaDemand = 2
	cfg.Metrics.Sinks = []factory.ModuleConfig{
		{Type: "influx", Conf: map[string]any{"url": influxURL, "token": influxToken, "org": influxOrg, "bucket": influxBucket}},
		{Type: "mqtt", Conf: map[string]any{"broker": broker, "qos": 1}},
	}
	writeInput(t, &cfg)

	svc, err := app.New(&cfg)
	require.NoError(t, err)
	res, err := svc.Solve(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	select {
	case payload := <-payloads:
		var s mqtt.RunSummary
		require.NoError(t, json.Unmarshal(payload, &s))
		assert.Equal(t, res.RunID, s.RunID)
		assert.Equal(t, "Optimal", s.Status)
	case <-time.After(10 * time.Second):
		t.Fatal("no run summary received")
	}

	cli := NewInfluxClient(influxURL, influxOrg, influxBucket, influxToken)
	defer cli.Close()
	fields, err := cli.RunFields(ctx, metrics.RunMeasurement, res.RunID)
	require.NoError(t, err)
	assert.Contains(t, fields, "objective")
	assert.Contains(t, fields, "area_ha")

	rep := junitReport{Name: "e2e", Tests: 1, Cases: []junitTestCase{{Name: t.Name(), Time: time.Since(start).Seconds()}}}
	if err := writeJUnit(filepath.Join(t.TempDir(), "e2e.xml"), rep); err != nil {
		t.Logf("write junit: %v", err)
	}
}
