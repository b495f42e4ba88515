package services

import (
	"encoding/json"
	"math"

	"github.com/ashishvarghese242/cpo-os-demo/pkg/models"
)

// ROIService runs the cohort-aware ROI/COI model. All figures are annualized,
// conservative by default and fully overrideable per request.
type ROIService struct{}

// NewROIService creates a new ROIService.
func NewROIService() *ROIService {
	return &ROIService{}
}

// SalesAssumptions drive the revenue lens for sales cohorts.
type SalesAssumptions struct {
	AvgDealSize        float64 `json:"avgDealSize"`
	DealsPerRepPerYear float64 `json:"dealsPerRepPerYear"`
}

// CSAssumptions drive both the revenue (ARR) and efficiency (ticket
// handling) lenses for customer-success cohorts.
type CSAssumptions struct {
	TicketsPerPersonPerMonth float64 `json:"ticketsPerPersonPerMonth"`
	AvgDaysOpen              float64 `json:"avgDaysOpen"`
	CostPerTicketOpenDay     float64 `json:"costPerTicketOpenDay"`
	AccountsPerCSM           float64 `json:"accountsPerCSM"`
	ARRPerAccount            float64 `json:"arrPerAccount"`
}

// ProdAssumptions drive the flow and downtime lenses for engineering cohorts.
type ProdAssumptions struct {
	EngCostPerDay           float64 `json:"engCostPerDay"`
	CostPerHourDowntime     float64 `json:"costPerHourDowntime"`
	DowntimeHoursAnnual     float64 `json:"downtimeHoursAnnual"`
	PreventableShare        float64 `json:"preventableShare"`
	DaysSavedPerLift        float64 `json:"daysSavedPerLift"`
	DowntimeAvoidanceFactor float64 `json:"downtimeAvoidanceFactor"`
	OngoingDragShare        float64 `json:"ongoingDragShare"`
}

// ROIAssumptions is the full assumption book. Zero values are never used
// directly; start from DefaultAssumptions and merge overrides on top.
type ROIAssumptions struct {
	FullyLoadedHourly        float64          `json:"fullyLoadedHourly"`
	NonApplicableTrainingPct float64          `json:"nonApplicableTrainingPct"`
	TrainingHoursPerPerson   float64          `json:"trainingHoursPerPerson"`
	GrossMargin              float64          `json:"grossMargin"`
	DelayFactor              float64          `json:"delayFactor"`
	ProgramCostFixed         float64          `json:"programCostFixed"`
	ProgramCostPerUser       float64          `json:"programCostPerUser"`
	Sales                    SalesAssumptions `json:"sales"`
	CS                       CSAssumptions    `json:"cs"`
	Prod                     ProdAssumptions  `json:"prod"`
}

// DefaultAssumptions returns conservative defaults chosen against public
// benchmarks (ITIC, HDI, Gartner), easy to defend on an exec call.
func DefaultAssumptions() ROIAssumptions {
	return ROIAssumptions{
		FullyLoadedHourly:        90,
		NonApplicableTrainingPct: 0.35,
		TrainingHoursPerPerson:   24,
		GrossMargin:              0.70,
		DelayFactor:              0.25,
		ProgramCostFixed:         2000,
		ProgramCostPerUser:       60 * 12,
		Sales: SalesAssumptions{
			AvgDealSize:        50000,
			DealsPerRepPerYear: 20,
		},
		CS: CSAssumptions{
			TicketsPerPersonPerMonth: 120,
			AvgDaysOpen:              2.5,
			CostPerTicketOpenDay:     25,
			AccountsPerCSM:           25,
			ARRPerAccount:            20000,
		},
		Prod: ProdAssumptions{
			EngCostPerDay:           800,
			CostPerHourDowntime:     300000,
			DowntimeHoursAnnual:     8,
			PreventableShare:        0.30,
			DaysSavedPerLift:        40,
			DowntimeAvoidanceFactor: 0.50,
			OngoingDragShare:        0.10,
		},
	}
}

// NormalizeAssumptions deep-merges request overrides onto the defaults.
// Unknown keys are ignored, nested objects merge key by key.
func (s *ROIService) NormalizeAssumptions(overrides map[string]any) ROIAssumptions {
	base := DefaultAssumptions()
	if len(overrides) == 0 {
		return base
	}

	raw, err := json.Marshal(base)
	if err != nil {
		return base
	}
	var merged map[string]any
	if err := json.Unmarshal(raw, &merged); err != nil {
		return base
	}
	deepMerge(merged, overrides)

	out := base
	if raw, err = json.Marshal(merged); err == nil {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}

func deepMerge(dst, src map[string]any) {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if cur, ok := dst[k].(map[string]any); ok {
				deepMerge(cur, sub)
				continue
			}
		}
		dst[k] = v
	}
}

// ComputeROI prices the recommended program for a cohort: annual upside from
// the expected KPI lift, cost of inaction (training waste, function drag,
// delayed action) and program cost, then payback and ROI%.
func (s *ROIService) ComputeROI(mode models.Mode, recos []models.Recommendation, cohortSize int, overrides map[string]any) models.ROIResult {
	a := s.NormalizeAssumptions(overrides)
	teamSize := float64(cohortSize)

	var totalKpiLift float64
	for _, r := range recos {
		totalKpiLift += safeNum(r.ExpectedKpiLift)
	}
	totalKpiLift = round2(totalKpiLift)

	// Annualized upside, revenue or efficiency depending on the function.
	var upsideAnnual float64
	switch mode {
	case models.ModeSales:
		baselineVol := a.Sales.DealsPerRepPerYear * a.Sales.AvgDealSize * teamSize * a.GrossMargin
		upsideAnnual = totalKpiLift * baselineVol

	case models.ModeCS:
		// Revenue lens: NRR/GRR uplift on the managed ARR base.
		baselineARR := a.CS.AccountsPerCSM * a.CS.ARRPerAccount * teamSize * a.GrossMargin
		arrUpside := totalKpiLift * baselineARR

		// Efficiency lens: each +1.0 lift trims avg days open by 20%.
		yearlyTickets := a.CS.TicketsPerPersonPerMonth * 12 * teamSize
		ticketCost := yearlyTickets * a.CS.AvgDaysOpen * a.CS.CostPerTicketOpenDay
		ticketSavings := ticketCost * math.Min(1, 0.20*totalKpiLift)

		upsideAnnual = arrUpside + ticketSavings

	default: // Production
		daysSaved := totalKpiLift * a.Prod.DaysSavedPerLift
		flowSavings := daysSaved * a.Prod.EngCostPerDay

		preventable := a.Prod.DowntimeHoursAnnual * a.Prod.PreventableShare
		avoidedHours := preventable * math.Min(1, a.Prod.DowntimeAvoidanceFactor*totalKpiLift)
		downtimeSavings := avoidedHours * a.Prod.CostPerHourDowntime

		upsideAnnual = flowSavings + downtimeSavings
	}

	// Cost of inaction. Training waste applies everywhere; CS carries its
	// open-ticket cost and Production an ongoing downtime drag. The sales
	// function's COI sits mostly in the delay term.
	coiTrainingWaste := teamSize * a.TrainingHoursPerPerson * a.FullyLoadedHourly * a.NonApplicableTrainingPct

	var functionCOI float64
	switch mode {
	case models.ModeCS:
		yearlyTickets := a.CS.TicketsPerPersonPerMonth * 12 * teamSize
		functionCOI = yearlyTickets * a.CS.AvgDaysOpen * a.CS.CostPerTicketOpenDay
	case models.ModeProduction:
		functionCOI = a.Prod.DowntimeHoursAnnual * a.Prod.CostPerHourDowntime * a.Prod.OngoingDragShare
	}

	coiDelay := upsideAnnual * a.DelayFactor
	coiAnnual := roundDollar(coiTrainingWaste + functionCOI + coiDelay)

	// Program cost: priced from the recommended actions when present,
	// otherwise the fixed + per-user license model.
	var recosCost float64
	for _, r := range recos {
		recosCost += safeNum(r.EstCost)
	}
	programCost := recosCost
	if programCost <= 0 {
		programCost = a.ProgramCostFixed + a.ProgramCostPerUser*teamSize
	}

	netAnnual := roundDollar(upsideAnnual - coiAnnual)
	paybackMonths := 0.5
	if programCost > 0 {
		monthly := upsideAnnual / 12
		if monthly == 0 {
			monthly = 1
		}
		paybackMonths = clamp(programCost/monthly, 0.5, 36)
	}
	denom := programCost
	if denom == 0 {
		denom = 1
	}
	roiPercent := roundDollar(((upsideAnnual - programCost) / denom) * 100)

	return models.ROIResult{
		TotalKpiLift:  totalKpiLift,
		UpsideAnnual:  roundDollar(upsideAnnual),
		COIAnnual:     coiAnnual,
		NetAnnual:     netAnnual,
		ProgramCost:   roundDollar(programCost),
		PaybackMonths: round1(paybackMonths),
		ROIPercent:    roiPercent,
	}
}

// roundDollar rounds to whole units, mapping NaN and infinities to 0.
func roundDollar(n float64) float64 {
	return math.Round(safeNum(n))
}

func safeNum(n float64) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}
