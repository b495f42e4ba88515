package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ashishvarghese242/cpo-os-demo/pkg/models"
)

// cohortParams are the query parameters shared by the dashboard endpoints.
type cohortParams struct {
	Mode       models.Mode
	CohortType models.CohortType
	CohortKey  string
	Seed       int64
}

// parseCohortParams reads mode/cohort/seed query parameters with defaults:
// Sales, the whole org unit, seed 42. An unknown mode is an error; an
// unknown cohort type falls back to All.
func parseCohortParams(c *gin.Context) (cohortParams, error) {
	mode, err := models.ParseMode(c.DefaultQuery("mode", string(models.ModeSales)))
	if err != nil {
		return cohortParams{}, err
	}

	cohortType := models.CohortAll
	switch c.DefaultQuery("cohort_type", "All") {
	case "Region":
		cohortType = models.CohortRegion
	case "Person":
		cohortType = models.CohortPerson
	}

	seed := int64(42)
	if v, err := strconv.ParseInt(c.DefaultQuery("seed", "42"), 10, 64); err == nil {
		seed = v
	}

	return cohortParams{
		Mode:       mode,
		CohortType: cohortType,
		CohortKey:  c.Query("cohort_key"),
		Seed:       seed,
	}, nil
}
