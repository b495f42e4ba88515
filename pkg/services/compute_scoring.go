package services

import (
	"log"
	"math"
	"strings"

	"github.com/ashishvarghese242/cpo-os-demo/pkg/models"
)

// Neutral defaults per raw signal, applied whenever a person has no usable
// data behind a metric. Centralized here so every scoring path resolves
// missing data the same way instead of inventing a fallback per call site.
const (
	defaultTalkRatio     = 0.5  // balanced conversation
	defaultResolutionMin = 600  // minutes; ticket without a recorded resolution
	defaultMTTRMin       = 600  // minutes; incident without a recorded MTTR
	defaultQuestionRate  = 0.15 // mid-calibration discovery question rate
	defaultObjections    = 4    // mid-calibration objections per call
	defaultNextStepRate  = 0.5  // half of calls end with a next step
	defaultAssessment    = 70   // mid-range assessment score
)

// Fixed placeholder scores for competencies whose raw feed is not wired yet.
// These render as plausible mid-radar values until real telemetry lands.
var placeholderScores = map[string]float64{
	"qbr":     3.2,
	"renewal": 3.4,
	"flow":    3.1,
	"review":  3.3,
	"eff":     3.0,
}

// mismatchScore is contributed when a configured competency id is unknown to
// the scoring logic; the computation continues rather than failing.
const mismatchScore = 3.0

// emptyScore is the sanitize filler: non-finite score elements and
// empty-cohort vectors both collapse to this small nonzero value so radars
// always render a visible shape.
const emptyScore = 0.2

// ScoreForPerson derives the 0-5 competency vector for one person from the
// mode's raw signal records. Missing raw data resolves to the neutral
// defaults above; it never errors.
func (s *ComputeService) ScoreForPerson(mode models.Mode, config []models.CompetencyConfig, personID string, snap *Snapshot) models.ScoreVector {
	out := make(models.ScoreVector, len(config))
	for i, c := range config {
		var score float64
		switch mode {
		case models.ModeSales:
			score = s.salesScore(c, personID, snap)
		case models.ModeCS:
			score = s.csScore(c, personID, snap)
		case models.ModeProduction:
			score = s.prodScore(c, personID, snap)
		default:
			score = mismatchScore
		}
		out[i] = score
	}
	return s.sanitize(out)
}

// ScoreForCohort is the element-wise mean of ScoreForPerson over the cohort.
// An empty cohort returns the documented placeholder vector instead of NaN.
func (s *ComputeService) ScoreForCohort(mode models.Mode, config []models.CompetencyConfig, personIDs []string, snap *Snapshot) models.ScoreVector {
	out := make(models.ScoreVector, len(config))
	if len(personIDs) == 0 {
		for i := range out {
			out[i] = emptyScore
		}
		return out
	}
	for _, pid := range personIDs {
		vec := s.ScoreForPerson(mode, config, pid, snap)
		for i := range out {
			out[i] += vec[i]
		}
	}
	for i := range out {
		out[i] = out[i] / float64(len(personIDs))
	}
	return s.sanitize(out)
}

func (s *ComputeService) salesScore(c models.CompetencyConfig, personID string, snap *Snapshot) float64 {
	calFloor, calTarget := c.Calibration()
	calls := snap.CallsFor(personID)

	switch c.ID {
	case "discovery":
		// Question rate carries the config calibration; talk balance rewards
		// proximity to an even split. Both land on 0-5 and average.
		qr := avgOr(callField(calls, func(r models.CallRecord) *float64 { return r.QuestionRate }), defaultQuestionRate)
		talk := avgOr(callField(calls, func(r models.CallRecord) *float64 { return r.TalkRatio }), defaultTalkRatio)
		qScore := s.Normalize(qr, calFloor, calTarget, c.Higher())
		balance := 1 - clamp(math.Abs(talk-0.5)*2, 0, 1)
		return (qScore + balance*5) / 2
	case "objections":
		obj := avgOr(callField(calls, func(r models.CallRecord) *float64 { return r.Objections }), defaultObjections)
		return s.Normalize(obj, calFloor, calTarget, c.Higher())
	case "multi":
		accounts := map[string]struct{}{}
		for _, d := range snap.DealsFor(personID) {
			if d.AccountID != "" {
				accounts[d.AccountID] = struct{}{}
			}
		}
		return s.Normalize(float64(len(accounts)), calFloor, calTarget, c.Higher())
	case "demo":
		return s.Normalize(float64(len(snap.ContentUsageFor(personID))), calFloor, calTarget, c.Higher())
	case "nextstep":
		var with, total float64
		for _, r := range calls {
			if r.NextStep == nil {
				continue
			}
			total++
			if *r.NextStep {
				with++
			}
		}
		rate := defaultNextStepRate
		if total > 0 {
			rate = with / total
		}
		return s.Normalize(rate, calFloor, calTarget, c.Higher())
	}
	if p, ok := placeholderScores[c.ID]; ok {
		return p
	}
	return mismatchScore
}

func (s *ComputeService) csScore(c models.CompetencyConfig, personID string, snap *Snapshot) float64 {
	calFloor, calTarget := c.Calibration()

	switch c.ID {
	case "onboarding":
		var completed float64
		for _, t := range snap.TrainingsFor(personID) {
			status := strings.ToLower(t.Status)
			if status == "completed" || status == "passed" {
				completed++
			}
		}
		return s.Normalize(completed, calFloor, calTarget, c.Higher())
	case "activation":
		var scores []float64
		for _, t := range snap.TrainingsFor(personID) {
			if t.AssessmentScore != nil {
				scores = append(scores, *t.AssessmentScore)
			}
		}
		return s.Normalize(avgOr(scores, defaultAssessment), calFloor, calTarget, c.Higher())
	case "triage":
		var minutes []float64
		for _, t := range snap.TicketsFor(personID) {
			if t.ResolutionMin != nil {
				minutes = append(minutes, *t.ResolutionMin)
			} else {
				minutes = append(minutes, defaultResolutionMin)
			}
		}
		return s.Normalize(avgOr(minutes, defaultResolutionMin), calFloor, calTarget, c.Higher())
	}
	if p, ok := placeholderScores[c.ID]; ok {
		return p
	}
	return mismatchScore
}

func (s *ComputeService) prodScore(c models.CompetencyConfig, personID string, snap *Snapshot) float64 {
	calFloor, calTarget := c.Calibration()

	switch c.ID {
	case "reliable":
		var highSev float64
		for _, t := range snap.TicketsFor(personID) {
			switch strings.ToLower(t.Severity) {
			case "high", "critical", "sev1", "p1":
				highSev++
			}
		}
		return s.Normalize(highSev, calFloor, calTarget, c.Higher())
	case "recovery":
		var minutes []float64
		for _, t := range snap.TicketsFor(personID) {
			if t.MTTRMin != nil {
				minutes = append(minutes, *t.MTTRMin)
			} else {
				minutes = append(minutes, defaultMTTRMin)
			}
		}
		return s.Normalize(avgOr(minutes, defaultMTTRMin), calFloor, calTarget, c.Higher())
	}
	if p, ok := placeholderScores[c.ID]; ok {
		return p
	}
	return mismatchScore
}

// sanitize replaces non-finite elements with the small nonzero filler so a
// data error never renders as a hard zero. Note this makes "no data" and
// "genuinely terrible" visually similar on purpose; the log line is the only
// place the distinction survives.
func (s *ComputeService) sanitize(vec models.ScoreVector) models.ScoreVector {
	for i, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			log.Printf("⚠️ non-finite competency score at index %d, using placeholder %.1f", i, emptyScore)
			vec[i] = emptyScore
		}
	}
	return vec
}

// DefaultCompetencies returns the built-in competency config for a mode,
// used when no config file overrides it. Calibration bounds reflect the raw
// scale of each underlying metric.
func DefaultCompetencies(mode models.Mode) []models.CompetencyConfig {
	f := func(v float64) *float64 { return &v }
	no := func() *bool { b := false; return &b }

	switch mode {
	case models.ModeSales:
		return []models.CompetencyConfig{
			{ID: "discovery", Label: "Discovery Quality", Target: 5, Floor: 0, CalFloor: f(0), CalTarget: f(0.3)},
			{ID: "objections", Label: "Objection Handling", Target: 5, Floor: 0, CalFloor: f(0), CalTarget: f(8), HigherIsBetter: no()},
			{ID: "multi", Label: "Multi-Threading", Target: 5, Floor: 0, CalFloor: f(0), CalTarget: f(6)},
			{ID: "demo", Label: "Demo Coverage", Target: 5, Floor: 0, CalFloor: f(0), CalTarget: f(8)},
			{ID: "nextstep", Label: "Next-Step Rigor", Target: 5, Floor: 0, CalFloor: f(0), CalTarget: f(1)},
		}
	case models.ModeCS:
		return []models.CompetencyConfig{
			{ID: "onboarding", Label: "Onboarding", Target: 5, Floor: 0, CalFloor: f(0), CalTarget: f(6)},
			{ID: "activation", Label: "Feature Activation", Target: 5, Floor: 0, CalFloor: f(0), CalTarget: f(100)},
			{ID: "triage", Label: "Triage Speed", Target: 5, Floor: 0, CalFloor: f(60), CalTarget: f(1440), HigherIsBetter: no()},
			{ID: "qbr", Label: "QBR Cadence", Target: 5, Floor: 0},
			{ID: "renewal", Label: "Renewal Forecasting", Target: 5, Floor: 0},
		}
	case models.ModeProduction:
		return []models.CompetencyConfig{
			{ID: "flow", Label: "Flow Efficiency", Target: 5, Floor: 0},
			{ID: "review", Label: "Review SLA", Target: 5, Floor: 0},
			{ID: "reliable", Label: "Reliability", Target: 5, Floor: 0, CalFloor: f(0), CalTarget: f(6), HigherIsBetter: no()},
			{ID: "recovery", Label: "Incident Recovery", Target: 5, Floor: 0, CalFloor: f(30), CalTarget: f(1440), HigherIsBetter: no()},
			{ID: "eff", Label: "WIP Discipline", Target: 5, Floor: 0},
		}
	}
	return nil
}

func callField(calls []models.CallRecord, get func(models.CallRecord) *float64) []float64 {
	var out []float64
	for _, r := range calls {
		if v := get(r); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

func avgOr(vals []float64, fallback float64) float64 {
	if len(vals) == 0 {
		return fallback
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
