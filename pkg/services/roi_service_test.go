package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ashishvarghese242/cpo-os-demo/pkg/models"
)

func TestComputeROICSHandCalculated(t *testing.T) {
	s := NewROIService()

	// CS, cohort of 10, total KPI lift 0.5, defaults:
	//   ARR uplift:     25 accounts * $20k * 10 * 0.70 margin * 0.5 = $1,750,000
	//   ticket savings: 120*12*10 tickets * 2.5 days * $25 * min(1, 0.2*0.5) = $90,000
	//   upside:         $1,840,000
	recos := []models.Recommendation{{ExpectedKpiLift: 0.5}}
	res := s.ComputeROI(models.ModeCS, recos, 10, nil)

	assert.Equal(t, 0.5, res.TotalKpiLift)
	assert.Equal(t, 1840000.0, res.UpsideAnnual)

	// COI: training waste 10*24*$90*0.35 = $7,560; open tickets $900,000;
	// delay 0.25 * upside = $460,000.
	assert.Equal(t, 1367560.0, res.COIAnnual)
	assert.Equal(t, 472440.0, res.NetAnnual)

	// No reco costs, so the license model prices the program.
	assert.Equal(t, 2000.0+720*10, res.ProgramCost)
	assert.Equal(t, 0.5, res.PaybackMonths, "payback clamps to the half-month floor")
	assert.Equal(t, 19900.0, res.ROIPercent)
}

func TestComputeROIZeroCohort(t *testing.T) {
	s := NewROIService()

	res := s.ComputeROI(models.ModeSales, nil, 0, nil)

	assert.Equal(t, 0.0, res.TotalKpiLift)
	assert.Equal(t, 0.0, res.UpsideAnnual)
	assert.Equal(t, 2000.0, res.ProgramCost, "only the fixed cost remains with nobody enrolled")
	assert.Equal(t, 36.0, res.PaybackMonths, "no upside pins payback at the cap")
	assert.Equal(t, -100.0, res.ROIPercent)
	assert.False(t, math.IsNaN(res.NetAnnual))
}

func TestComputeROIProgramCostFromRecos(t *testing.T) {
	s := NewROIService()

	recos := []models.Recommendation{
		{ExpectedKpiLift: 0.3, EstCost: 1500},
		{ExpectedKpiLift: 0.2, EstCost: 1200},
	}
	res := s.ComputeROI(models.ModeSales, recos, 5, nil)

	assert.Equal(t, 0.5, res.TotalKpiLift)
	assert.Equal(t, 2700.0, res.ProgramCost, "priced from the actions, not the license model")

	// Sales upside: 20 deals * $50k * 5 * 0.70 * 0.5 = $1,750,000.
	assert.Equal(t, 1750000.0, res.UpsideAnnual)
}

func TestComputeROIProductionDowntime(t *testing.T) {
	s := NewROIService()

	recos := []models.Recommendation{{ExpectedKpiLift: 1.0}}
	res := s.ComputeROI(models.ModeProduction, recos, 8, nil)

	// Flow: 1.0 * 40 days * $800 = $32,000.
	// Downtime: 8h * 0.30 preventable * min(1, 0.5*1.0) * $300k = $360,000.
	assert.Equal(t, 392000.0, res.UpsideAnnual)

	// Function COI carries the ongoing downtime drag: 8h * $300k * 0.10.
	// Training waste: 8*24*$90*0.35 = $6,048. Delay: $98,000.
	assert.Equal(t, 6048.0+240000.0+98000.0, res.COIAnnual)
}

func TestComputeROINeverNaN(t *testing.T) {
	s := NewROIService()

	for _, mode := range models.Modes {
		for _, size := range []int{0, 1, 100} {
			res := s.ComputeROI(mode, nil, size, nil)
			for name, v := range map[string]float64{
				"TotalKpiLift":  res.TotalKpiLift,
				"UpsideAnnual":  res.UpsideAnnual,
				"COIAnnual":     res.COIAnnual,
				"NetAnnual":     res.NetAnnual,
				"ProgramCost":   res.ProgramCost,
				"PaybackMonths": res.PaybackMonths,
				"ROIPercent":    res.ROIPercent,
			} {
				assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%s for mode %s size %d", name, mode, size)
			}
		}
	}
}

func TestNormalizeAssumptionsDeepMerge(t *testing.T) {
	s := NewROIService()

	a := s.NormalizeAssumptions(map[string]any{
		"grossMargin": 0.6,
		"cs": map[string]any{
			"arrPerAccount": 30000.0,
		},
	})

	assert.Equal(t, 0.6, a.GrossMargin)
	assert.Equal(t, 30000.0, a.CS.ARRPerAccount)
	// Untouched siblings keep their defaults.
	assert.Equal(t, 25.0, a.CS.AccountsPerCSM)
	assert.Equal(t, 90.0, a.FullyLoadedHourly)
	assert.Equal(t, 50000.0, a.Sales.AvgDealSize)
}

func TestNormalizeAssumptionsNilOverrides(t *testing.T) {
	s := NewROIService()

	assert.Equal(t, DefaultAssumptions(), s.NormalizeAssumptions(nil))
}

func TestDefaultAssumptionsValues(t *testing.T) {
	a := DefaultAssumptions()

	assert.Equal(t, 2000.0, a.ProgramCostFixed)
	assert.Equal(t, 720.0, a.ProgramCostPerUser)
	assert.Equal(t, 0.25, a.DelayFactor)
	assert.Equal(t, 0.30, a.Prod.PreventableShare)
	assert.Equal(t, 0.10, a.Prod.OngoingDragShare)
}
