package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/isnet/core/planner"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `input:
  path: "data/isnet.xlsx"
  lighting_scale: 1
  tables:
    heat_distance:
      sheet: "distances"
      column: "C"
      header_rows: 1
network:
  cement: 4
model:
  crops:
    tomato:
      area_demand: 50
  discount_rate: 0.08
solver:
  type: "bnb"
  conf:
    max_nodes: 500
metrics:
  sinks:
    - type: "prometheus"
      conf:
        path: "/var/lib/node_exporter/isnet.prom"
log:
  level: "debug"
  format: "console"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	def := planner.DefaultParameters()

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"input.path", cfg.Input.Path, "data/isnet.xlsx"},
		{"input.lighting_scale", cfg.Input.LightingScale, 1.0},
		{"heat_distance.sheet", cfg.Input.Tables.HeatDistance.Sheet, "distances"},
		{"heat_distance.header_rows", cfg.Input.Tables.HeatDistance.HeaderRows, 1},
		{"co2_distance kept", cfg.Input.Tables.CO2Distance.Sheet, "Sheet7"},
		{"network.cement", cfg.Network.Cement, 4},
		{"network.biogas kept", cfg.Network.Biogas, 153},
		{"tomato.area_demand", cfg.Model.Crops.Tomato.AreaDemand, 50.0},
		{"tomato.co2_intensity kept", cfg.Model.Crops.Tomato.CO2Intensity, def.Crops.Tomato.CO2Intensity},
		{"lettuce kept", cfg.Model.Crops.Lettuce, def.Crops.Lettuce},
		{"discount_rate", cfg.Model.DiscountRate, 0.08},
		{"big_m kept", cfg.Model.BigM, def.BigM},
		{"solver.type", cfg.Solver.Type, "bnb"},
		{"sinks", len(cfg.Metrics.Sinks), 1},
		{"sink type", cfg.Metrics.Sinks[0].Type, "prometheus"},
		{"log.level", cfg.Log.Level, "debug"},
		{"log.format", cfg.Log.Format, "console"},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}
	assert.EqualValues(t, 500, cfg.Solver.Conf["max_nodes"])
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"network": {"lands": 12}, "model": {"lifetime": 25}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Network.Lands)
	assert.Equal(t, 25, cfg.Model.Lifetime)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ISNET_MODEL__BIG_M", "1000")
	t.Setenv("ISNET_NETWORK__LANDS", "3")
	t.Setenv("ISNET_INPUT__PATH", "/tmp/in.xlsx")
	t.Setenv("ISNET_MODEL__CROPS__CUCUMBER__AREA_DEMAND", "7.5")

	path := writeFile(t, "config.yaml", "network:\n  lands: 20\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, cfg.Model.BigM)
	assert.Equal(t, 3, cfg.Network.Lands)
	assert.Equal(t, "/tmp/in.xlsx", cfg.Input.Path)
	assert.Equal(t, 7.5, cfg.Model.Crops.Cucumber.AreaDemand)
	assert.Equal(t, 200.0, cfg.Model.Crops.Cucumber.CO2Intensity)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeFile(t, "config.toml", "a = 1"))
	assert.ErrorContains(t, err, "unsupported config format")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	cases := map[string]string{
		"lifetime":  "model:\n  lifetime: 0\n",
		"lands":     "network:\n  lands: 0\n",
		"solver":    "solver:\n  type: \"\"\n",
		"sink type": "metrics:\n  sinks:\n    - conf: {}\n",
		"log level": "log:\n  level: loud\n",
		"format":    "log:\n  format: xml\n",
		"scale":     "input:\n  lighting_scale: -1\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", data))
			assert.Error(t, err)
		})
	}
}
