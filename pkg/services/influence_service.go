package services

import (
	"math"

	"github.com/ashishvarghese242/cpo-os-demo/pkg/models"
)

// InfluenceService estimates the statistical influence of each competency on
// the mode KPI from a deterministic synthetic cohort. Samples never represent
// real people; they exist only to anchor the influence scale.
type InfluenceService struct{}

// NewInfluenceService creates a new InfluenceService.
func NewInfluenceService() *InfluenceService {
	return &InfluenceService{}
}

// SampleCohort generates n synthetic members deterministically from the seed.
// Each member draws an integer 1..5 per competency; the KPI proxy is a fixed
// per-index weighted sum (0.6 + 0.1*i) plus small noise, min-max normalized
// and rescaled into the mode's presentation range. The draw order is part of
// the contract: identical seeds must reproduce identical samples bit-for-bit.
func (s *InfluenceService) SampleCohort(mode models.Mode, config []models.CompetencyConfig, seed int64, n int) []models.CohortMember {
	r := NewPRNG(seed)
	k := len(config)

	weights := make([]float64, k)
	for i := range weights {
		weights[i] = 0.6 + float64(i)*0.1
	}

	cohort := make([]models.CohortMember, n)
	raw := make([]float64, n)
	for i := 0; i < n; i++ {
		skills := make([]int, k)
		for j := range skills {
			skills[j] = int(r.NextFloat()*5) + 1
		}
		kpi := (r.NextFloat() - 0.5) * 2
		for j, sk := range skills {
			kpi += float64(sk) * weights[j]
		}
		cohort[i] = models.CohortMember{Skills: skills}
		raw[i] = kpi
	}

	for i, x := range minMax(raw) {
		cohort[i].KPI = rescaleKPI(mode, x)
	}
	return cohort
}

// rescaleKPI maps a 0..1 normalized KPI into a friendly per-mode range:
// Sales win rate ~10..50%, CS retention ~80..100%, Production ~0.5..2.0
// deploys/day.
func rescaleKPI(mode models.Mode, x float64) float64 {
	switch mode {
	case models.ModeSales:
		return 10 + x*40
	case models.ModeCS:
		return 80 + x*20
	case models.ModeProduction:
		return 0.5 + x*1.5
	}
	return x
}

// InfluenceScores computes the Pearson correlation between each competency's
// value series and the KPI series across the sample, reported as an absolute
// 0-5 score with the raw coefficient and a two-tailed p-value alongside.
func (s *InfluenceService) InfluenceScores(labels []string, cohort []models.CohortMember) []models.InfluenceScore {
	out := make([]models.InfluenceScore, 0, len(labels))
	for i, label := range labels {
		// Skill and KPI series stay pairwise aligned: a member missing
		// this skill contributes neither value.
		series := make([]float64, 0, len(cohort))
		kpis := make([]float64, 0, len(cohort))
		for _, m := range cohort {
			if i >= len(m.Skills) {
				continue
			}
			series = append(series, float64(m.Skills[i]))
			kpis = append(kpis, m.KPI)
		}
		r := pearson(series, kpis)
		n := len(series)
		out = append(out, models.InfluenceScore{
			Index:          i,
			Label:          label,
			RawCorr:        r,
			PValue:         correlationPValue(r, n),
			SampleSize:     n,
			Score0to5:      toFive(math.Abs(r)),
			Interpretation: interpretCorrelation(r),
		})
	}
	return out
}

// pearson returns the correlation of the two series over their common
// length. Fewer than 3 points, or a zero-variance series, yields 0.
func pearson(xs, ys []float64) float64 {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	if n < 3 {
		return 0
	}
	var mx, my float64
	for i := 0; i < n; i++ {
		mx += xs[i]
		my += ys[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var num, dx, dy float64
	for i := 0; i < n; i++ {
		vx := xs[i] - mx
		vy := ys[i] - my
		num += vx * vy
		dx += vx * vx
		dy += vy * vy
	}
	den := math.Sqrt(dx * dy)
	if den == 0 {
		den = 1
	}
	return num / den
}

// toFive scales an absolute correlation onto the 0-5 display scale, one
// decimal.
func toFive(absCorr float64) float64 {
	return round1(clamp(absCorr, 0, 1) * 5)
}

func interpretCorrelation(r float64) string {
	abs := math.Abs(r)
	direction := "positive"
	if r < 0 {
		direction = "negative"
	}
	switch {
	case abs >= 0.7:
		return "strong " + direction + " correlation"
	case abs >= 0.4:
		return "moderate " + direction + " correlation"
	case abs >= 0.2:
		return "weak " + direction + " correlation"
	}
	return "negligible correlation"
}

func minMax(vals []float64) []float64 {
	if len(vals) == 0 {
		return nil
	}
	min, max := vals[0], vals[0]
	for _, v := range vals {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := max - min
	if span == 0 {
		span = 1
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = (v - min) / span
	}
	return out
}
