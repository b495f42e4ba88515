package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	config "github.com/ashishvarghese242/cpo-os-demo/configs"
	"github.com/ashishvarghese242/cpo-os-demo/pkg/handlers"
	"github.com/ashishvarghese242/cpo-os-demo/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	godotenv.Load("../../.env")

	code := m.Run()

	os.Exit(code)
}

func TestApplicationSetup(t *testing.T) {
	cfg := config.LoadConfig()
	assert.NotNil(t, cfg, "Config should not be nil")

	datasetService := services.NewDatasetService(cfg.DataDir)
	assert.NotNil(t, datasetService, "DatasetService should not be nil")

	dashboardHandler := handlers.NewDashboardHandler(
		datasetService,
		services.NewComputeService(),
		services.NewInfluenceService(),
		services.NewLRSService(),
		services.NewRecommendationService(),
		services.NewROIService(),
	)
	assert.NotNil(t, dashboardHandler, "DashboardHandler should not be nil")

	monitoringHandler := handlers.NewMonitoringHandler(services.NewMonitoringService())
	assert.NotNil(t, monitoringHandler, "MonitoringHandler should not be nil")
}

func TestRouterSetup(t *testing.T) {
	r := gin.New()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEnvironmentVariables(t *testing.T) {
	testEnvVars := map[string]string{
		"OPENAI_API_KEY": "test-key",
		"OPENAI_MODEL":   "gpt-4o-mini",
		"DATA_DIR":       "data",
	}

	for key, value := range testEnvVars {
		os.Setenv(key, value)
	}
	defer func() {
		for key := range testEnvVars {
			os.Unsetenv(key)
		}
	}()

	for envVar := range testEnvVars {
		value := os.Getenv(envVar)
		assert.NotEmpty(t, value, "Environment variable %s should not be empty", envVar)
	}
}
