package services

import (
	"math"
	"sort"

	"github.com/ashishvarghese242/cpo-os-demo/pkg/models"
)

// ComputeService provides cohort selection, score normalization and gap
// analysis. Every method is a pure function of its inputs; the service holds
// no state and is safe to share across requests.
type ComputeService struct{}

// NewComputeService creates a new ComputeService.
func NewComputeService() *ComputeService {
	return &ComputeService{}
}

// Persona is a mode's competency axes: parallel ids, display labels and 0-5
// targets, in configured order.
type Persona struct {
	IDs     []string  `json:"ids"`
	Labels  []string  `json:"labels"`
	Targets []float64 `json:"targets"`
}

// IdealPersona extracts the radar axes from a mode's competency config.
func (s *ComputeService) IdealPersona(config []models.CompetencyConfig) Persona {
	p := Persona{
		IDs:     make([]string, len(config)),
		Labels:  make([]string, len(config)),
		Targets: make([]float64, len(config)),
	}
	for i, c := range config {
		p.IDs[i] = c.ID
		p.Labels[i] = c.Label
		p.Targets[i] = c.Target
	}
	return p
}

// Normalize maps a raw metric value into the 0-5 competency scale.
// The value is clamped into [floor, target], linearly rescaled, and inverted
// when lower values are better. NaN input scores 0; a zero-width interval is
// treated as span 1 so the result stays finite.
func (s *ComputeService) Normalize(value, floor, target float64, higherIsBetter bool) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	clamped := math.Min(target, math.Max(floor, value))
	span := target - floor
	if span == 0 {
		span = 1
	}
	score := clamp((clamped-floor)/span*5, 0, 5)
	if !higherIsBetter {
		return 5 - score
	}
	return score
}

// SelectCohort resolves a cohort spec into concrete person ids within the
// mode's org unit. Unknown cohort types fall back to "All"; that is the
// documented permissive default, not an error.
func (s *ComputeService) SelectCohort(people []models.Person, mode models.Mode, cohortType models.CohortType, cohortKey string) []string {
	var unit []models.Person
	for _, p := range people {
		if p.OrgUnit == mode.OrgUnit() {
			unit = append(unit, p)
		}
	}

	switch cohortType {
	case models.CohortRegion:
		var ids []string
		for _, p := range unit {
			if p.Region == cohortKey {
				ids = append(ids, p.PersonID)
			}
		}
		return ids
	case models.CohortPerson:
		if cohortKey == "" {
			return nil
		}
		return []string{cohortKey}
	}

	ids := make([]string, 0, len(unit))
	for _, p := range unit {
		ids = append(ids, p.PersonID)
	}
	return ids
}

// SkillScores draws a synthetic 1..5 score per competency from the seed.
// Used by demo flows that have no raw data behind them yet.
func (s *ComputeService) SkillScores(config []models.CompetencyConfig, seed int64) models.ScoreVector {
	raw := SeededScores(len(config), seed)
	out := make(models.ScoreVector, len(raw))
	for i, v := range raw {
		out[i] = float64(v)
	}
	return out
}

// PerformanceGaps compares an actual score vector against the persona targets
// and returns gap entries sorted descending by gap. The sort is stable, so
// ties keep their configured order.
func (s *ComputeService) PerformanceGaps(actual models.ScoreVector, persona Persona) []models.GapEntry {
	n := len(actual)
	if len(persona.IDs) < n {
		n = len(persona.IDs)
	}
	gaps := make([]models.GapEntry, 0, n)
	for i := 0; i < n; i++ {
		gaps = append(gaps, models.GapEntry{
			ID:     persona.IDs[i],
			Label:  persona.Labels[i],
			Actual: actual[i],
			Target: persona.Targets[i],
			Gap:    round2(persona.Targets[i] - actual[i]),
		})
	}
	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].Gap > gaps[j].Gap })
	return gaps
}

func clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
