package planner

import (
	"fmt"
	"math"
	"reflect"

	"github.com/kilianp07/isnet/core/model"
)

// CropParams holds the fixed figures of one crop type.
type CropParams struct {
	// AreaDemand is the total greenhouse area to be planted (ha).
	AreaDemand float64 `json:"area_demand"`
	// CO2Intensity is the CO2 enrichment demand (t/ha per year).
	CO2Intensity float64 `json:"co2_intensity"`
}

// CropTable holds one entry per crop type.
type CropTable struct {
	Tomato   CropParams `json:"tomato"`
	Cucumber CropParams `json:"cucumber"`
	Lettuce  CropParams `json:"lettuce"`
}

// Get returns the entry of c.
func (t CropTable) Get(c model.Crop) CropParams {
	switch c {
	case model.CropTomato:
		return t.Tomato
	case model.CropCucumber:
		return t.Cucumber
	default:
		return t.Lettuce
	}
}

// Array returns the table indexed by crop.
func (t CropTable) Array() [model.NumCrops]CropParams {
	var out [model.NumCrops]CropParams
	for _, c := range model.Crops {
		out[c] = t.Get(c)
	}
	return out
}

// Parameters groups every scalar of the cost model. Monetary values are CHF.
type Parameters struct {
	Crops CropTable `json:"crops"`

	// HeatPipeInvestment is per km of pipe and MW transported.
	HeatPipeInvestment float64 `json:"heat_pipe_investment"`
	// HeatPipeOperating is per km and MWh transported.
	HeatPipeOperating float64 `json:"heat_pipe_operating"`
	// HeatingHours is the number of hours per year greenhouses draw heat.
	HeatingHours float64 `json:"heating_hours"`
	// HeatLossPerKm inflates the heat drawn at the supplier per km of pipe.
	HeatLossPerKm float64 `json:"heat_loss_per_km"`

	// CO2PipeInvestment is per km and tonne of CO2 per year.
	CO2PipeInvestment float64 `json:"co2_pipe_investment"`
	// CO2PipeOperating is per km and tonne of CO2.
	CO2PipeOperating float64 `json:"co2_pipe_operating"`

	GreenhouseInvestment float64 `json:"greenhouse_investment"` // per ha
	LightingInvestment   float64 `json:"lighting_investment"`   // per ha

	ORCInvestment float64 `json:"orc_investment"` // per MW electric
	ORCOperating  float64 `json:"orc_operating"`  // per MWh electric
	ORCHours      float64 `json:"orc_hours"`
	// ORCHeatEfficiency is the share of the supplier heat reaching the
	// greenhouse when an ORC unit sits in between.
	ORCHeatEfficiency float64 `json:"orc_heat_efficiency"`
	// HeatToElectricity is the heat per unit of electricity of the ORC.
	HeatToElectricity float64 `json:"heat_to_electricity"`
	// ElectricityPrice prices both sold ORC output and purchased lighting
	// power (per MWh).
	ElectricityPrice float64 `json:"electricity_price"`

	DiscountRate float64 `json:"discount_rate"`
	Lifetime     int     `json:"lifetime"` // years
	// BigM bounds every area variable whose pathway is active. It must exceed
	// any feasible single-pathway area or allocations are cut off.
	BigM float64 `json:"big_m"`
}

// DefaultParameters returns the figures of the reference case study.
func DefaultParameters() Parameters {
	return Parameters{
		Crops: CropTable{
			Tomato:   CropParams{AreaDemand: 72, CO2Intensity: 160},
			Cucumber: CropParams{AreaDemand: 30, CO2Intensity: 200},
			Lettuce:  CropParams{AreaDemand: 93, CO2Intensity: 150},
		},
		HeatPipeInvestment:   128000,
		HeatPipeOperating:    0.0292,
		HeatingHours:         5000,
		HeatLossPerKm:        0.01,
		CO2PipeInvestment:    700,
		CO2PipeOperating:     0.04 * 700,
		GreenhouseInvestment: 1160000,
		LightingInvestment:   1100000,
		ORCInvestment:        7423500,
		ORCOperating:         15,
		ORCHours:             8000,
		ORCHeatEfficiency:    0.35,
		HeatToElectricity:    4,
		ElectricityPrice:     150,
		DiscountRate:         0.105,
		Lifetime:             20,
		BigM:                 1e8,
	}
}

// Validate rejects values that make the model undefined.
func (p Parameters) Validate() error {
	v := reflect.ValueOf(p)
	if err := checkFinite(v, v.Type(), ""); err != nil {
		return err
	}
	switch {
	case p.HeatToElectricity <= 0:
		return fmt.Errorf("model: heat_to_electricity must be positive")
	case p.ORCHeatEfficiency <= 0:
		return fmt.Errorf("model: orc_heat_efficiency must be positive")
	case p.Lifetime <= 0:
		return fmt.Errorf("model: lifetime must be positive")
	case p.DiscountRate <= -1:
		return fmt.Errorf("model: discount_rate must be greater than -1")
	case p.BigM <= 0:
		return fmt.Errorf("model: big_m must be positive")
	}
	return nil
}

func checkFinite(v reflect.Value, t reflect.Type, prefix string) error {
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		name := prefix + t.Field(i).Tag.Get("json")
		switch f.Kind() {
		case reflect.Struct:
			if err := checkFinite(f, f.Type(), name+"."); err != nil {
				return err
			}
		case reflect.Float64:
			if math.IsNaN(f.Float()) || math.IsInf(f.Float(), 0) {
				return fmt.Errorf("model: %s must be finite", name)
			}
		}
	}
	return nil
}

// CapitalRecoveryFactor converts a one-off investment into an equal annual
// payment over n years at discount rate r.
func CapitalRecoveryFactor(r float64, n int) float64 {
	if r == 0 {
		return 1 / float64(n)
	}
	g := math.Pow(1+r, float64(n))
	return r * g / (g - 1)
}
