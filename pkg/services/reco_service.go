package services

import (
	"math"
	"sort"

	"github.com/ashishvarghese242/cpo-os-demo/pkg/models"
)

// RecommendationService ranks remediation actions against competency gaps.
type RecommendationService struct{}

// NewRecommendationService creates a new RecommendationService.
func NewRecommendationService() *RecommendationService {
	return &RecommendationService{}
}

type remediation struct {
	Title             string
	ExpectedSkillLift float64
	EstCost           float64
}

// Curated remediation catalog per mode and competency. Anything outside the
// catalog falls back to a generic coaching intervention.
var remediationCatalog = map[models.Mode]map[string]remediation{
	models.ModeSales: {
		"discovery":  {"Discovery Micro-Tour", 0.8, 1500},
		"objections": {"Objection Playbook Drill", 0.7, 1200},
		"multi":      {"Multithreading Workflow", 0.6, 900},
		"demo":       {"Demo Coverage Checklist", 0.6, 800},
		"nextstep":   {"Next-Step Script & CTA", 0.5, 600},
	},
	models.ModeCS: {
		"onboarding": {"Onboarding Runbook", 0.7, 1000},
		"activation": {"Feature Activation Coach", 0.6, 900},
		"triage":     {"Triage Macros", 0.5, 700},
		"qbr":        {"QBR Cadence Pack", 0.5, 700},
		"renewal":    {"Renewal Forecast Kit", 0.6, 900},
	},
	models.ModeProduction: {
		"flow":     {"Smaller PRs Policy", 0.6, 800},
		"review":   {"Review-SLA Bot", 0.7, 1000},
		"reliable": {"Pre-merge Checklist", 0.6, 900},
		"recovery": {"Incident Drill & Runbooks", 0.8, 1200},
		"eff":      {"WIP Limits Coaching", 0.5, 700},
	},
}

var fallbackRemediation = remediation{"Coaching Intervention", 0.5, 800}

// Rank pairs each gap with its influence score, prices a remediation from the
// catalog and returns the top three actions by priority (influence x gap).
func (s *RecommendationService) Rank(mode models.Mode, gaps []models.GapEntry, influence []models.InfluenceScore) []models.Recommendation {
	infByLabel := make(map[string]float64, len(influence))
	for _, inf := range influence {
		infByLabel[inf.Label] = inf.Score0to5
	}

	rows := make([]models.Recommendation, 0, len(gaps))
	for _, g := range gaps {
		inf := infByLabel[g.Label]
		canned, ok := remediationCatalog[mode][g.ID]
		if !ok {
			canned = fallbackRemediation
		}
		rows = append(rows, models.Recommendation{
			ID:                g.ID,
			Label:             g.Label,
			Gap:               g.Gap,
			Influence:         inf,
			Priority:          inf * math.Max(0, g.Gap),
			Title:             canned.Title,
			ExpectedSkillLift: canned.ExpectedSkillLift,
			EstCost:           canned.EstCost,
			ExpectedKpiLift:   round2(canned.ExpectedSkillLift * (inf / 5)),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Priority > rows[j].Priority })
	if len(rows) > 3 {
		rows = rows[:3]
	}
	return rows
}
