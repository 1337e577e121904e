package api

import (
	"github.com/gin-gonic/gin"

	"github.com/timmy/viralpost/internal/api/handler"
	"github.com/timmy/viralpost/internal/api/middleware"
	"github.com/timmy/viralpost/internal/config"
	"github.com/timmy/viralpost/internal/logger"
)

// SetupRouter configures the Gin router with all routes.
func SetupRouter(svc handler.TweetService, cfg *config.ServerConfig, log *logger.Logger) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = handler.MaxCharacterUpload

	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.CORS.AllowAllOrigins,
	}))

	healthHandler := handler.NewHealthHandler()
	tweetHandler := handler.NewTweetHandler(svc)
	catalogHandler := handler.NewCatalogHandler()

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		// Generation
		v1.POST("/tweets", tweetHandler.Generate)
		v1.POST("/tweets/character", tweetHandler.GenerateWithCharacter)
		v1.POST("/characters/approve", tweetHandler.Approve)
		v1.GET("/sessions/:id", tweetHandler.GetSession)

		// Catalog
		v1.GET("/templates", catalogHandler.Templates)
		v1.GET("/image-quality", catalogHandler.ImageQualities)
		v1.GET("/art-styles", catalogHandler.ArtStyles)
	}

	return r
}
