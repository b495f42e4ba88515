package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ashishvarghese242/cpo-os-demo/pkg/models"
)

func TestRankOrdersByPriority(t *testing.T) {
	s := NewRecommendationService()

	gaps := []models.GapEntry{
		{ID: "discovery", Label: "Discovery Quality", Gap: 1.0},
		{ID: "objections", Label: "Objection Handling", Gap: 2.0},
		{ID: "multi", Label: "Multi-Threading", Gap: 0.5},
	}
	influence := []models.InfluenceScore{
		{Label: "Discovery Quality", Score0to5: 4.0},
		{Label: "Objection Handling", Score0to5: 3.0},
		{Label: "Multi-Threading", Score0to5: 5.0},
	}

	recos := s.Rank(models.ModeSales, gaps, influence)

	assert.Len(t, recos, 3)
	// objections: 3.0*2.0=6.0 beats discovery: 4.0*1.0=4.0 beats multi: 5.0*0.5=2.5.
	assert.Equal(t, "objections", recos[0].ID)
	assert.Equal(t, 6.0, recos[0].Priority)
	assert.Equal(t, "discovery", recos[1].ID)
	assert.Equal(t, "multi", recos[2].ID)
}

func TestRankTopThree(t *testing.T) {
	s := NewRecommendationService()

	gaps := []models.GapEntry{
		{ID: "discovery", Label: "A", Gap: 4},
		{ID: "objections", Label: "B", Gap: 3},
		{ID: "multi", Label: "C", Gap: 2},
		{ID: "demo", Label: "D", Gap: 1},
		{ID: "nextstep", Label: "E", Gap: 0.5},
	}
	influence := []models.InfluenceScore{
		{Label: "A", Score0to5: 1}, {Label: "B", Score0to5: 1},
		{Label: "C", Score0to5: 1}, {Label: "D", Score0to5: 1},
		{Label: "E", Score0to5: 1},
	}

	recos := s.Rank(models.ModeSales, gaps, influence)
	assert.Len(t, recos, 3, "only the top three actions are surfaced")
}

func TestRankCatalogTitles(t *testing.T) {
	s := NewRecommendationService()

	gaps := []models.GapEntry{{ID: "discovery", Label: "Discovery Quality", Gap: 1}}
	influence := []models.InfluenceScore{{Label: "Discovery Quality", Score0to5: 5}}

	recos := s.Rank(models.ModeSales, gaps, influence)
	assert.Equal(t, "Discovery Micro-Tour", recos[0].Title)
	assert.Equal(t, 0.8, recos[0].ExpectedSkillLift)
	assert.Equal(t, 1500.0, recos[0].EstCost)
	// expectedKpiLift = 0.8 * (5/5) = 0.8.
	assert.Equal(t, 0.8, recos[0].ExpectedKpiLift)
}

func TestRankFallbackRemediation(t *testing.T) {
	s := NewRecommendationService()

	gaps := []models.GapEntry{{ID: "negotiation", Label: "Negotiation", Gap: 2}}
	influence := []models.InfluenceScore{{Label: "Negotiation", Score0to5: 2.5}}

	recos := s.Rank(models.ModeSales, gaps, influence)
	assert.Equal(t, "Coaching Intervention", recos[0].Title)
	assert.Equal(t, 0.5, recos[0].ExpectedSkillLift)
	assert.Equal(t, 800.0, recos[0].EstCost)
	// expectedKpiLift = 0.5 * (2.5/5) = 0.25.
	assert.Equal(t, 0.25, recos[0].ExpectedKpiLift)
}

func TestRankNegativeGapZeroPriority(t *testing.T) {
	s := NewRecommendationService()

	gaps := []models.GapEntry{{ID: "discovery", Label: "Discovery Quality", Gap: -1}}
	influence := []models.InfluenceScore{{Label: "Discovery Quality", Score0to5: 5}}

	recos := s.Rank(models.ModeSales, gaps, influence)
	assert.Equal(t, 0.0, recos[0].Priority, "exceeding the target never creates priority")
}

func TestRankMissingInfluence(t *testing.T) {
	s := NewRecommendationService()

	gaps := []models.GapEntry{{ID: "discovery", Label: "Discovery Quality", Gap: 2}}

	recos := s.Rank(models.ModeSales, gaps, nil)
	assert.Equal(t, 0.0, recos[0].Influence)
	assert.Equal(t, 0.0, recos[0].Priority)
	assert.Equal(t, 0.0, recos[0].ExpectedKpiLift)
}
