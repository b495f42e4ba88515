package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ashishvarghese242/cpo-os-demo/pkg/models"
	"github.com/ashishvarghese242/cpo-os-demo/pkg/services"
)

// Synthetic benchmark cohort defaults for the influence estimator.
const (
	influenceSeed       = 7
	syntheticCohortSize = 60
)

// DashboardHandler serves the executive dashboard: radar, gaps, influence,
// training leverage, recommendations and ROI.
type DashboardHandler struct {
	datasets  *services.DatasetService
	compute   *services.ComputeService
	influence *services.InfluenceService
	lrs       *services.LRSService
	reco      *services.RecommendationService
	roi       *services.ROIService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(
	datasets *services.DatasetService,
	compute *services.ComputeService,
	influence *services.InfluenceService,
	lrs *services.LRSService,
	reco *services.RecommendationService,
	roi *services.ROIService,
) *DashboardHandler {
	return &DashboardHandler{
		datasets:  datasets,
		compute:   compute,
		influence: influence,
		lrs:       lrs,
		reco:      reco,
		roi:       roi,
	}
}

// GetRadar returns the radar chart payload: persona targets, cohort actuals
// and the enablement coverage overlay.
func (h *DashboardHandler) GetRadar(c *gin.Context) {
	p, err := parseCohortParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap := h.datasets.Snapshot()
	config := snap.CompetenciesFor(p.Mode)
	persona := h.compute.IdealPersona(config)
	cohort := h.compute.SelectCohort(snap.People, p.Mode, p.CohortType, p.CohortKey)

	// synthetic=true swaps real feeds for a seeded demo vector, useful when
	// presenting without customer data loaded.
	var actual models.ScoreVector
	if c.Query("synthetic") == "true" {
		actual = h.compute.SkillScores(config, p.Seed)
	} else {
		actual = h.compute.ScoreForCohort(p.Mode, config, cohort, snap)
	}
	overlay := h.lrs.CoverageOverlay(p.Mode, config, cohort, snap)

	c.JSON(http.StatusOK, gin.H{
		"mode":        p.Mode,
		"cohort_size": len(cohort),
		"persona":     persona,
		"actual":      actual,
		"coverage":    overlay,
	})
}

// GetGaps returns the competency gaps for the selected cohort, largest first.
func (h *DashboardHandler) GetGaps(c *gin.Context) {
	p, err := parseCohortParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap := h.datasets.Snapshot()
	config := snap.CompetenciesFor(p.Mode)
	persona := h.compute.IdealPersona(config)
	cohort := h.compute.SelectCohort(snap.People, p.Mode, p.CohortType, p.CohortKey)
	actual := h.compute.ScoreForCohort(p.Mode, config, cohort, snap)
	gaps := h.compute.PerformanceGaps(actual, persona)

	c.JSON(http.StatusOK, gin.H{
		"mode":        p.Mode,
		"cohort_size": len(cohort),
		"gaps":        gaps,
	})
}

// GetInfluence returns the estimated skill-to-KPI influence scores from the
// synthetic benchmark cohort.
func (h *DashboardHandler) GetInfluence(c *gin.Context) {
	p, err := parseCohortParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seed := int64(influenceSeed)
	if v, err := strconv.ParseInt(c.Query("seed"), 10, 64); err == nil {
		seed = v
	}
	n := syntheticCohortSize
	if v, err := strconv.Atoi(c.Query("n")); err == nil && v > 0 {
		n = v
	}

	snap := h.datasets.Snapshot()
	config := snap.CompetenciesFor(p.Mode)
	persona := h.compute.IdealPersona(config)
	cohort := h.influence.SampleCohort(p.Mode, config, seed, n)
	scores := h.influence.InfluenceScores(persona.Labels, cohort)

	c.JSON(http.StatusOK, gin.H{
		"mode":        p.Mode,
		"seed":        seed,
		"sample_size": n,
		"influence":   scores,
	})
}

// GetLeverage returns per-skill training leverage plus the top content
// drivers for the selected cohort.
func (h *DashboardHandler) GetLeverage(c *gin.Context) {
	p, err := parseCohortParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap := h.datasets.Snapshot()
	cohort := h.compute.SelectCohort(snap.People, p.Mode, p.CohortType, p.CohortKey)
	leverage := h.lrs.LeverageForCohort(p.Mode, cohort, snap)
	drivers := h.lrs.TopContentDrivers(p.Mode, cohort, snap, 5)

	c.JSON(http.StatusOK, gin.H{
		"mode":        p.Mode,
		"cohort_size": len(cohort),
		"leverage":    leverage,
		"drivers":     drivers,
	})
}

// GetRecommendations returns the top remediation actions plus content
// suggestions matched to the biggest gaps.
func (h *DashboardHandler) GetRecommendations(c *gin.Context) {
	p, err := parseCohortParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap := h.datasets.Snapshot()
	config := snap.CompetenciesFor(p.Mode)
	persona := h.compute.IdealPersona(config)
	cohort := h.compute.SelectCohort(snap.People, p.Mode, p.CohortType, p.CohortKey)
	actual := h.compute.ScoreForCohort(p.Mode, config, cohort, snap)
	gaps := h.compute.PerformanceGaps(actual, persona)
	benchmark := h.influence.SampleCohort(p.Mode, config, influenceSeed, syntheticCohortSize)
	influence := h.influence.InfluenceScores(persona.Labels, benchmark)
	recos := h.reco.Rank(p.Mode, gaps, influence)
	content := h.lrs.RecommendContentForGaps(p.Mode, gaps, cohort, snap, 3)

	c.JSON(http.StatusOK, gin.H{
		"mode":            p.Mode,
		"cohort_size":     len(cohort),
		"recommendations": recos,
		"content":         content,
	})
}

// roiRequest is the body for the ROI endpoint. Assumption overrides merge
// onto the defaults key by key.
type roiRequest struct {
	Assumptions map[string]any `json:"assumptions"`
}

// PostROI prices the recommended program for the selected cohort.
func (h *DashboardHandler) PostROI(c *gin.Context) {
	p, err := parseCohortParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req roiRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
	}

	snap := h.datasets.Snapshot()
	config := snap.CompetenciesFor(p.Mode)
	persona := h.compute.IdealPersona(config)
	cohort := h.compute.SelectCohort(snap.People, p.Mode, p.CohortType, p.CohortKey)
	actual := h.compute.ScoreForCohort(p.Mode, config, cohort, snap)
	gaps := h.compute.PerformanceGaps(actual, persona)
	benchmark := h.influence.SampleCohort(p.Mode, config, influenceSeed, syntheticCohortSize)
	influence := h.influence.InfluenceScores(persona.Labels, benchmark)
	recos := h.reco.Rank(p.Mode, gaps, influence)
	result := h.roi.ComputeROI(p.Mode, recos, len(cohort), req.Assumptions)

	c.JSON(http.StatusOK, gin.H{
		"mode":            p.Mode,
		"cohort_size":     len(cohort),
		"recommendations": recos,
		"roi":             result,
	})
}
