package main

import (
	"context"
	"log"
	"net/http"
	"strings"

	config "github.com/ashishvarghese242/cpo-os-demo/configs"
	"github.com/ashishvarghese242/cpo-os-demo/pkg/handlers"
	"github.com/ashishvarghese242/cpo-os-demo/pkg/openai"
	"github.com/ashishvarghese242/cpo-os-demo/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	cfg := config.LoadConfig()

	r := gin.Default()

	// Services
	monitoringService := services.NewMonitoringService()
	datasetService := services.NewDatasetService(cfg.DataDir)
	computeService := services.NewComputeService()
	influenceService := services.NewInfluenceService()
	lrsService := services.NewLRSService()
	recoService := services.NewRecommendationService()
	roiService := services.NewROIService()

	openaiClient := openai.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIEmbeddingModel)

	// The vector store is optional. Without Qdrant the dashboard still works;
	// only semantic content search and chat enrichment are disabled.
	var vectorStoreService *services.VectorStoreService
	if cfg.QdrantURL != "" {
		vs, err := services.NewVectorStoreService(openaiClient, cfg.QdrantURL, cfg.QdrantAPIKey)
		if err != nil {
			log.Printf("⚠️ Failed to initialize vector store, content search disabled: %v", err)
		} else {
			vectorStoreService = vs
		}
	}

	askService := services.NewAskService(openaiClient, datasetService, vectorStoreService)

	// Index the catalog right away so content search and chat enrichment
	// work before anyone hits /datasets/reload.
	if vectorStoreService != nil {
		if indexed, err := vectorStoreService.IndexCatalog(context.Background(), datasetService.Snapshot().Catalog); err != nil {
			log.Printf("⚠️ Initial catalog indexing failed, continuing without: %v", err)
		} else {
			log.Printf("✅ Indexed %d catalog items", indexed)
		}
	}

	// Handlers
	dashboardHandler := handlers.NewDashboardHandler(datasetService, computeService, influenceService, lrsService, recoService, roiService)
	askHandler := handlers.NewAskHandler(askService)
	datasetHandler := handlers.NewDatasetHandler(datasetService, vectorStoreService)
	contentHandler := handlers.NewContentHandler(vectorStoreService)
	monitoringHandler := handlers.NewMonitoringHandler(monitoringService)

	// Middleware
	r.Use(monitoringService.LoggingMiddleware())
	if cfg.AllowedOrigins != "" {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = strings.Split(cfg.AllowedOrigins, ",")
		r.Use(cors.New(corsConfig))
	} else {
		r.Use(cors.Default())
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("/radar", dashboardHandler.GetRadar)
			dashboard.GET("/gaps", dashboardHandler.GetGaps)
			dashboard.GET("/influence", dashboardHandler.GetInfluence)
			dashboard.GET("/leverage", dashboardHandler.GetLeverage)
			dashboard.GET("/recommendations", dashboardHandler.GetRecommendations)
			dashboard.POST("/roi", dashboardHandler.PostROI)
		}

		datasets := v1.Group("/datasets")
		{
			datasets.POST("/import", datasetHandler.ImportWorkbook)
			datasets.POST("/reload", datasetHandler.ReloadDatasets)
		}

		v1.POST("/ask", askHandler.PostAsk)
		v1.GET("/ask/suggestions", askHandler.GetSuggestions)

		v1.GET("/content/search", contentHandler.SearchContent)

		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/dashboard", monitoringHandler.GetDashboard)
		}
	}

	log.Printf("Starting CPO-OS API server on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
