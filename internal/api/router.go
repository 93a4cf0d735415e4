package api

import (
	"github.com/Conceptual-Machines/moodsic-api/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/moodsic-api/internal/api/middleware"
	"github.com/Conceptual-Machines/moodsic-api/internal/composer"
	"github.com/Conceptual-Machines/moodsic-api/internal/config"
	"github.com/Conceptual-Machines/moodsic-api/internal/logger"
	"github.com/Conceptual-Machines/moodsic-api/internal/metrics"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the HTTP layer serves
type Dependencies struct {
	DB           *gorm.DB
	Compositions handlers.CompositionService
	Params       *composer.ParameterSampler
	ModelReady   handlers.ReadinessCheck
	Predictions  handlers.CallCounter
	CloudWatch   *metrics.Client
}

func SetupRouter(cfg *config.Config, deps Dependencies, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())
	router.Use(apimiddleware.SentryMiddleware())
	router.Use(apimiddleware.RequestTracking(deps.CloudWatch))
	router.Use(apimiddleware.CORS(cfg.CORSOrigins))

	healthHandler := handlers.NewHealthHandler(deps.DB, deps.ModelReady)
	router.GET("/health", healthHandler.HealthCheck)

	metricsHandler := handlers.NewMetricsHandler(version, cfg.ModelName, deps.Predictions)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware(cfg))
	{
		compositionHandler := handlers.NewCompositionHandler(deps.Compositions)
		v1.POST("/compositions", compositionHandler.Create)
		v1.GET("/compositions", compositionHandler.List)
		v1.GET("/compositions/:id", compositionHandler.Get)
		v1.GET("/compositions/:id/midi", compositionHandler.MIDI)

		sentimentHandler := handlers.NewSentimentHandler(deps.Params)
		v1.GET("/sentiments", sentimentHandler.List)
	}

	return router
}

func authMiddleware(cfg *config.Config) gin.HandlerFunc {
	switch cfg.AuthMode {
	case config.AuthModeGateway:
		return apimiddleware.GatewayAuth()
	case config.AuthModeJWT:
		if cfg.JWTSecret == "" {
			logger.Warn("AUTH_MODE=jwt without JWT_SECRET; every token will be rejected", nil)
		}
		return apimiddleware.JWTAuth(cfg.JWTSecret)
	default:
		return apimiddleware.NoAuth()
	}
}
