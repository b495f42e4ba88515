package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ashishvarghese242/cpo-os-demo/pkg/models"
	"github.com/ashishvarghese242/cpo-os-demo/pkg/services"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func fixtureSnapshot() *services.Snapshot {
	f := func(v float64) *float64 { return &v }
	b := func(v bool) *bool { return &v }
	return &services.Snapshot{
		People: []models.Person{
			{PersonID: "p-1", OrgUnit: "Sales", Region: "West", Name: "Dana"},
			{PersonID: "p-2", OrgUnit: "Sales", Region: "East", Name: "Kim"},
			{PersonID: "p-3", OrgUnit: "CS", Region: "West", Name: "Lee"},
		},
		Calls: []models.CallRecord{
			{PersonID: "p-1", QuestionRate: f(0.6), TalkRatio: f(0.4), Objections: f(0.7), NextStep: b(true)},
			{PersonID: "p-2", QuestionRate: f(0.3), TalkRatio: f(0.7), Objections: f(0.2), NextStep: b(false)},
		},
		Catalog: []models.CatalogItem{
			{"content_id": "c-1", "title": "Discovery Micro-Tour", "mode": "Sales", "skill_id": "discovery", "tags": []any{"discovery"}, "expected_skill_lift": 0.8},
			{"content_id": "c-2", "title": "Objection Clinic", "mode": "Sales", "skill_id": "objections", "tags": []any{"objections"}, "expected_skill_lift": 0.6},
		},
		LRSEvents: []models.ConsumptionRecord{
			{"person_id": "p-1", "content_id": "c-1", "status": "completed"},
		},
	}
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	datasets := services.NewDatasetService(t.TempDir())
	datasets.SetSnapshot(fixtureSnapshot())
	compute := services.NewComputeService()
	influence := services.NewInfluenceService()
	lrs := services.NewLRSService()
	reco := services.NewRecommendationService()
	roi := services.NewROIService()

	dashboard := NewDashboardHandler(datasets, compute, influence, lrs, reco, roi)
	content := NewContentHandler(nil)
	monitoring := NewMonitoringHandler(services.NewMonitoringService())

	r := gin.New()
	api := r.Group("/api/v1")
	{
		d := api.Group("/dashboard")
		{
			d.GET("/radar", dashboard.GetRadar)
			d.GET("/gaps", dashboard.GetGaps)
			d.GET("/influence", dashboard.GetInfluence)
			d.GET("/leverage", dashboard.GetLeverage)
			d.GET("/recommendations", dashboard.GetRecommendations)
			d.POST("/roi", dashboard.PostROI)
		}
		api.GET("/content/search", content.SearchContent)
		api.GET("/monitoring/dashboard", monitoring.GetDashboard)
	}
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body []byte) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var payload map[string]any
	if w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
			t.Fatalf("invalid JSON response for %s %s: %v", method, path, err)
		}
	}
	return w, payload
}

func TestGetRadar(t *testing.T) {
	r := testRouter(t)
	w, payload := doRequest(t, r, http.MethodGet, "/api/v1/dashboard/radar?mode=Sales", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Sales", payload["mode"])
	assert.Equal(t, float64(2), payload["cohort_size"])

	persona, ok := payload["persona"].(map[string]any)
	assert.True(t, ok)
	labels, ok := persona["labels"].([]any)
	assert.True(t, ok)
	assert.Len(t, labels, 5)

	actual, ok := payload["actual"].([]any)
	assert.True(t, ok)
	assert.Len(t, actual, 5)
	for _, v := range actual {
		score := v.(float64)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 5.0)
	}

	coverage, ok := payload["coverage"].([]any)
	assert.True(t, ok)
	assert.Len(t, coverage, 5)
}

func TestGetRadarSynthetic(t *testing.T) {
	r := testRouter(t)
	w1, p1 := doRequest(t, r, http.MethodGet, "/api/v1/dashboard/radar?mode=Sales&synthetic=true&seed=42", nil)
	w2, p2 := doRequest(t, r, http.MethodGet, "/api/v1/dashboard/radar?mode=Sales&synthetic=true&seed=42", nil)

	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, p1["actual"], p2["actual"])
}

func TestGetRadarUnknownMode(t *testing.T) {
	r := testRouter(t)
	w, _ := doRequest(t, r, http.MethodGet, "/api/v1/dashboard/radar?mode=finance", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRadarRegionCohort(t *testing.T) {
	r := testRouter(t)
	w, payload := doRequest(t, r, http.MethodGet, "/api/v1/dashboard/radar?mode=Sales&cohort_type=Region&cohort_key=West", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), payload["cohort_size"])
}

func TestGetGapsSorted(t *testing.T) {
	r := testRouter(t)
	w, payload := doRequest(t, r, http.MethodGet, "/api/v1/dashboard/gaps?mode=Sales", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	gaps, ok := payload["gaps"].([]any)
	assert.True(t, ok)
	assert.Len(t, gaps, 5)

	prev := 6.0
	for _, g := range gaps {
		entry := g.(map[string]any)
		gap := entry["gap"].(float64)
		assert.LessOrEqual(t, gap, prev)
		assert.NotEmpty(t, entry["id"])
		prev = gap
	}
}

func TestGetInfluenceDeterministic(t *testing.T) {
	r := testRouter(t)
	w1, p1 := doRequest(t, r, http.MethodGet, "/api/v1/dashboard/influence?mode=Sales", nil)
	w2, p2 := doRequest(t, r, http.MethodGet, "/api/v1/dashboard/influence?mode=Sales", nil)

	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, p1["influence"], p2["influence"])

	scores, ok := p1["influence"].([]any)
	assert.True(t, ok)
	assert.Len(t, scores, 5)
	for _, s := range scores {
		entry := s.(map[string]any)
		score := entry["score0to5"].(float64)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 5.0)
	}
}

func TestGetLeverage(t *testing.T) {
	r := testRouter(t)
	w, payload := doRequest(t, r, http.MethodGet, "/api/v1/dashboard/leverage?mode=Sales", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	leverage, ok := payload["leverage"].(map[string]any)
	assert.True(t, ok)
	assert.Contains(t, leverage, "discovery")
	assert.Contains(t, leverage, "objections")
	for skill, v := range leverage {
		score := v.(float64)
		assert.GreaterOrEqual(t, score, 0.8, skill)
		assert.LessOrEqual(t, score, 4.0, skill)
	}

	drivers, ok := payload["drivers"].([]any)
	assert.True(t, ok)
	assert.LessOrEqual(t, len(drivers), 5)
}

func TestGetRecommendationsCapped(t *testing.T) {
	r := testRouter(t)
	w, payload := doRequest(t, r, http.MethodGet, "/api/v1/dashboard/recommendations?mode=Sales", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	recos, ok := payload["recommendations"].([]any)
	assert.True(t, ok)
	assert.LessOrEqual(t, len(recos), 3)
	assert.NotEmpty(t, recos)

	first := recos[0].(map[string]any)
	assert.NotEmpty(t, first["title"])
	assert.NotEmpty(t, first["id"])
}

func TestPostROIWithoutBody(t *testing.T) {
	r := testRouter(t)
	w, payload := doRequest(t, r, http.MethodPost, "/api/v1/dashboard/roi?mode=Sales", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	roi, ok := payload["roi"].(map[string]any)
	assert.True(t, ok)
	assert.NotNil(t, roi["upside_annual"])
	assert.NotNil(t, roi["roi_percent"])
	assert.NotNil(t, roi["payback_months"])
}

func TestPostROIWithOverrides(t *testing.T) {
	r := testRouter(t)
	body := []byte(`{"assumptions": {"sales": {"avgDealSize": 100000}}}`)
	w, payload := doRequest(t, r, http.MethodPost, "/api/v1/dashboard/roi?mode=Sales", body)

	assert.Equal(t, http.StatusOK, w.Code)
	roi := payload["roi"].(map[string]any)

	_, base := doRequest(t, r, http.MethodPost, "/api/v1/dashboard/roi?mode=Sales", nil)
	baseROI := base["roi"].(map[string]any)
	assert.Greater(t, roi["upside_annual"].(float64), baseROI["upside_annual"].(float64))
}

func TestPostROIMalformedBody(t *testing.T) {
	r := testRouter(t)
	w, _ := doRequest(t, r, http.MethodPost, "/api/v1/dashboard/roi?mode=Sales", []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContentSearchUnconfigured(t *testing.T) {
	r := testRouter(t)
	w, _ := doRequest(t, r, http.MethodGet, "/api/v1/content/search?q=discovery", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMonitoringDashboard(t *testing.T) {
	r := testRouter(t)
	w, payload := doRequest(t, r, http.MethodGet, "/api/v1/monitoring/dashboard?period=1h", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, payload, "endpoints")
}

func TestParseCohortParamsDefaults(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/radar", nil)

	p, err := parseCohortParams(c)
	assert.NoError(t, err)
	assert.Equal(t, models.ModeSales, p.Mode)
	assert.Equal(t, models.CohortAll, p.CohortType)
	assert.Equal(t, int64(42), p.Seed)
	assert.Empty(t, p.CohortKey)
}

func TestParseCohortParamsUnknownCohortTypeFallsBack(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/x?mode=CS&cohort_type=Planet&seed=7", nil)

	p, err := parseCohortParams(c)
	assert.NoError(t, err)
	assert.Equal(t, models.ModeCS, p.Mode)
	assert.Equal(t, models.CohortAll, p.CohortType)
	assert.Equal(t, int64(7), p.Seed)
}

func TestAskHandlerMissingQuery(t *testing.T) {
	ask := NewAskHandler(services.NewAskService(nil, services.NewDatasetService(t.TempDir()), nil))
	r := gin.New()
	r.POST("/api/v1/ask", ask.PostAsk)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{"scope": "sales"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAskHandlerNotConfigured(t *testing.T) {
	ask := NewAskHandler(services.NewAskService(nil, services.NewDatasetService(t.TempDir()), nil))
	r := gin.New()
	r.POST("/api/v1/ask", ask.PostAsk)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{"query": "What is our biggest gap?"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
