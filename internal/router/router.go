// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/arflow/pipeline-backend/internal/config"
	"github.com/arflow/pipeline-backend/internal/handlers"
	"github.com/arflow/pipeline-backend/internal/middleware"
	"github.com/arflow/pipeline-backend/internal/services"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	activityService := services.NewActivityService(db)
	forwarderService := services.NewForwarderService(
		cfg.Automation.WebhookURL,
		time.Duration(cfg.Automation.TimeoutSeconds)*time.Second,
	)
	storageService, _ := services.NewStorageService(cfg)

	prospectService := services.NewProspectService(db, activityService)
	conversationService := services.NewConversationService(db, activityService)
	applicationService := services.NewApplicationService(db, activityService)
	discoveryService := services.NewDiscoveryService(activityService, forwarderService)
	analyticsService := services.NewAnalyticsService(db)

	// Initialize handlers
	prospectHandler := handlers.NewProspectHandler(prospectService)
	conversationHandler := handlers.NewConversationHandler(conversationService)
	applicationHandler := handlers.NewApplicationHandler(applicationService, storageService)
	discoveryHandler := handlers.NewDiscoveryHandler(discoveryService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, activityService)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Frontend.BaseURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("")
	{
		prospects := api.Group("/prospects")
		{
			prospects.GET("", prospectHandler.GetProspects)
			prospects.POST("", prospectHandler.CreateProspect)
			prospects.POST("/bulk-import", prospectHandler.BulkImport)
			prospects.POST("/bulk-delete", prospectHandler.BulkDelete)
			prospects.GET("/bulk-delete", prospectHandler.BulkDeletePreview)
			prospects.GET("/:id", prospectHandler.GetProspect)
		}

		api.GET("/conversations", conversationHandler.GetConversations)

		applications := api.Group("/applications")
		{
			applications.GET("", applicationHandler.GetApplications)
			applications.GET("/:id/documents", applicationHandler.GetDocuments)
			applications.POST("/:id/documents", middleware.UploadRateLimit(), applicationHandler.UploadDocument)
		}

		discovery := api.Group("/discovery")
		{
			discovery.POST("/trigger", discoveryHandler.Trigger)
			discovery.GET("/trigger", discoveryHandler.History)
		}

		api.GET("/analytics/dashboard", analyticsHandler.GetDashboard)
		api.GET("/activity", analyticsHandler.GetActivity)

		// Inbound webhooks from the automation workflows
		webhooks := api.Group("/webhooks")
		webhooks.Use(middleware.WebhookRateLimit())
		{
			webhooks.POST("/start-outreach", conversationHandler.StartOutreach)
			webhooks.POST("/conversation-update", conversationHandler.ConversationUpdate)
			webhooks.POST("/application-completed", applicationHandler.ApplicationCompleted)
			webhooks.POST("/arf-submission", applicationHandler.ARFSubmission)
			webhooks.PUT("/arf-submission", applicationHandler.ARFStatusUpdate)
		}
	}

	return r
}
