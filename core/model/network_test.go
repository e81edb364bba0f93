package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNetworkConfig_Network(t *testing.T) {
	net := NetworkConfig{Biogas: 2, Incineration: 1, Cement: 1, CO2Suppliers: 3, Lands: 4}.Network()
	require.Equal(t, 4, net.HeatSuppliers())
	assert.Equal(t, ClassBiogas, net.HeatClass(1))
	assert.Equal(t, ClassBiogas, net.HeatClass(2))
	assert.Equal(t, ClassIncineration, net.HeatClass(3))
	assert.Equal(t, ClassCement, net.HeatClass(4))
	assert.False(t, net.HeatClass(3).AllowsORC())
	assert.True(t, net.HeatClass(4).AllowsORC())
}

func TestNetworkConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultNetworkConfig().Validate())
	assert.Error(t, NetworkConfig{CO2Suppliers: 1, Lands: 1}.Validate())
	assert.Error(t, NetworkConfig{Cement: 1, Lands: 1}.Validate())
	assert.Error(t, NetworkConfig{Cement: 1, CO2Suppliers: 1}.Validate())
	assert.Error(t, NetworkConfig{Biogas: -1, Cement: 2, CO2Suppliers: 1, Lands: 1}.Validate())
}

func TestParseCrop(t *testing.T) {
	c, err := ParseCrop("Lettuce")
	require.NoError(t, err)
	assert.Equal(t, CropLettuce, c)
	_, err = ParseCrop("potato")
	assert.Error(t, err)
}

func TestDataset_Validate(t *testing.T) {
	net := NetworkConfig{Biogas: 1, Cement: 1, CO2Suppliers: 1, Lands: 2}.Network()
	ds := &Dataset{
		Network:        net,
		LandArea:       []float64{1, 2},
		HeatCapacity:   []float64{5, 5},
		CO2Output:      []float64{100},
		HeatDistance:   mat.NewDense(2, 2, nil),
		CO2Distance:    mat.NewDense(1, 2, nil),
		EnergyDemand:   mat.NewDense(2, NumCrops, nil),
		LightingDemand: mat.NewDense(2, NumCrops, nil),
	}
	require.NoError(t, ds.Validate())

	ds.CO2Distance = mat.NewDense(2, 2, nil)
	err := ds.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShape))

	ds.CO2Distance = mat.NewDense(1, 2, nil)
	ds.LandArea = []float64{1}
	assert.ErrorIs(t, ds.Validate(), ErrShape)

	ds.LandArea = []float64{1, 2}
	ds.LightingDemand = nil
	assert.ErrorIs(t, ds.Validate(), ErrShape)
}

func TestPathwayString(t *testing.T) {
	p := Pathway{Heat: 3, CO2: 1, Land: 7, Crop: CropCucumber, Tech: TechORC}
	assert.Equal(t, "[3,1,7,cucumber,orc]", p.String())
}

func TestNewDataset(t *testing.T) {
	ds := NewDataset(DefaultNetworkConfig().Network())
	require.NoError(t, ds.Validate())
	r, c := ds.HeatDistance.Dims()
	assert.Equal(t, 189, r)
	assert.Equal(t, 217, c)
	assert.Len(t, ds.CO2Output, 37)
}
