package workbook

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/isnet/core/model"
)

func fixture() *model.Dataset {
	net := model.NetworkConfig{Biogas: 1, Incineration: 1, Cement: 1, CO2Suppliers: 2, Lands: 2}.Network()
	return &model.Dataset{
		Network:        net,
		LandArea:       []float64{12.5, 40},
		HeatCapacity:   []float64{3.2, 18, 55.75},
		CO2Output:      []float64{1200, 98000},
		HeatDistance:   mat.NewDense(3, 2, []float64{1.5, 2, 20.25, 3, 7, 0.4}),
		CO2Distance:    mat.NewDense(2, 2, []float64{10, 11, 0.5, 30}),
		EnergyDemand:   mat.NewDense(2, 3, []float64{0.5, 0.6, 0.3, 0.45, 0.55, 0.25}),
		LightingDemand: mat.NewDense(2, 3, []float64{1000, 1200, 800, 900, 1100, 700}),
	}
}

func writeFixture(t *testing.T, cfg Config) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.xlsx")
	require.NoError(t, Write(path, fixture(), cfg))
	return path
}

func TestWriteLoad_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = writeFixture(t, cfg)
	want := fixture()

	ds, err := Load(cfg, want.Network)
	require.NoError(t, err)
	assert.Equal(t, want.LandArea, ds.LandArea)
	assert.Equal(t, want.HeatCapacity, ds.HeatCapacity)
	assert.Equal(t, want.CO2Output, ds.CO2Output)
	assert.True(t, mat.Equal(want.HeatDistance, ds.HeatDistance))
	assert.True(t, mat.Equal(want.CO2Distance, ds.CO2Distance))
	assert.True(t, mat.Equal(want.EnergyDemand, ds.EnergyDemand))
	assert.True(t, mat.EqualApprox(want.LightingDemand, ds.LightingDemand, 1e-9))
}

func TestLoad_ReferenceLayout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = writeFixture(t, cfg)

	f, err := excelize.OpenFile(cfg.Path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	// land 2 area sits in Sheet1!C3, supplier 3 to land 1 distance in Sheet4!B5
	v, err := f.GetCellValue("Sheet1", "C3")
	require.NoError(t, err)
	assert.Equal(t, "40", v)
	v, err = f.GetCellValue("Sheet4", "B5")
	require.NoError(t, err)
	assert.Equal(t, "7", v)
	// lighting demand is stored unscaled
	v, err = f.GetCellValue("Sheet6", "C2")
	require.NoError(t, err)
	assert.Equal(t, "100", v)
}

func TestWrite_HeaderCells(t *testing.T) {
	path := writeFixture(t, DefaultConfig())
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	tests := []struct {
		sheet, cell, want string
	}{
		{"Sheet1", "A1", "land_area"},
		{"Sheet1", "C1", ""},
		{"Sheet5", "A1", "energy_demand"},
		{"Sheet5", "C1", "1"},
		{"Sheet5", "E1", "3"},
		{"Sheet4", "A1", "heat_distance"},
		{"Sheet4", "B1", ""},
		{"Sheet4", "B2", "1"},
		{"Sheet4", "C2", "2"},
	}
	for _, tt := range tests {
		v, err := f.GetCellValue(tt.sheet, tt.cell)
		require.NoError(t, err)
		assert.Equal(t, tt.want, v, "%s!%s", tt.sheet, tt.cell)
	}
}

func TestWrite_MatrixInColumnA(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tables.EnergyDemand = TableConfig{Sheet: "Sheet5", Column: "A", HeaderRows: 1}
	cfg.Path = writeFixture(t, cfg)

	f, err := excelize.OpenFile(cfg.Path)
	require.NoError(t, err)
	v, err := f.GetCellValue("Sheet5", "A1")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
	require.NoError(t, f.Close())

	ds, err := Load(cfg, fixture().Network)
	require.NoError(t, err)
	assert.True(t, mat.Equal(fixture().EnergyDemand, ds.EnergyDemand))
}

func TestLoad_LightingScale(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = writeFixture(t, cfg)
	cfg.LightingScale = 1
	ds, err := Load(cfg, fixture().Network)
	require.NoError(t, err)
	assert.InDelta(t, 100, ds.LightingDemand.At(0, 0), 1e-9)
}

func TestLoad_CustomLayout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tables.HeatCapacity = TableConfig{Sheet: "suppliers", Column: "D", HeaderRows: 3}
	cfg.Tables.CO2Output = TableConfig{Sheet: "suppliers", Column: "F", HeaderRows: 3}
	cfg.Path = writeFixture(t, cfg)

	ds, err := Load(cfg, fixture().Network)
	require.NoError(t, err)
	assert.Equal(t, []float64{3.2, 18, 55.75}, ds.HeatCapacity)
	assert.Equal(t, []float64{1200, 98000}, ds.CO2Output)
}

func TestLoad_ExtraRowsIgnored(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = writeFixture(t, cfg)
	net := model.NetworkConfig{Biogas: 1, Incineration: 1, CO2Suppliers: 1, Lands: 1}.Network()
	ds, err := Load(cfg, net)
	require.NoError(t, err)
	assert.Equal(t, []float64{12.5}, ds.LandArea)
	assert.Equal(t, []float64{3.2, 18}, ds.HeatCapacity)
	r, c := ds.HeatDistance.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 1, c)
}

func TestLoad_Errors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = writeFixture(t, cfg)
	net := fixture().Network

	t.Run("missing file", func(t *testing.T) {
		c := cfg
		c.Path = filepath.Join(t.TempDir(), "absent.xlsx")
		_, err := Load(c, net)
		assert.Error(t, err)
	})

	t.Run("no path", func(t *testing.T) {
		c := cfg
		c.Path = ""
		_, err := Load(c, net)
		assert.Error(t, err)
	})

	t.Run("missing sheet", func(t *testing.T) {
		c := cfg
		c.Tables.CO2Distance.Sheet = "Sheet9"
		_, err := Load(c, net)
		assert.ErrorContains(t, err, "Sheet9")
	})

	t.Run("too few rows", func(t *testing.T) {
		bigger := model.NetworkConfig{Biogas: 1, Incineration: 1, Cement: 1, CO2Suppliers: 2, Lands: 3}.Network()
		_, err := Load(cfg, bigger)
		assert.ErrorIs(t, err, ErrCell)
		assert.ErrorContains(t, err, "Sheet1!C4")
	})

	t.Run("bad value", func(t *testing.T) {
		f, err := excelize.OpenFile(cfg.Path)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Sheet2", "B3", "n/a"))
		bad := filepath.Join(t.TempDir(), "bad.xlsx")
		require.NoError(t, f.SaveAs(bad))
		require.NoError(t, f.Close())

		c := cfg
		c.Path = bad
		_, err = Load(c, net)
		assert.ErrorIs(t, err, ErrCell)
		assert.ErrorContains(t, err, "Sheet2!B3")
	})

	t.Run("empty network", func(t *testing.T) {
		_, err := Load(cfg, model.Network{})
		assert.ErrorIs(t, err, model.ErrShape)
	})
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	c := DefaultConfig()
	c.LightingScale = 0
	assert.Error(t, c.Validate())

	c = DefaultConfig()
	c.Tables.EnergyDemand.Column = "3"
	assert.ErrorContains(t, c.Validate(), "tables.energy_demand")

	c = DefaultConfig()
	c.Tables.LandArea.Sheet = ""
	assert.ErrorContains(t, c.Validate(), "tables.land_area")
}

func TestWrite_ShapeMismatch(t *testing.T) {
	ds := fixture()
	ds.CO2Output = ds.CO2Output[:1]
	err := Write(filepath.Join(t.TempDir(), "x.xlsx"), ds, DefaultConfig())
	assert.ErrorIs(t, err, model.ErrShape)
}
