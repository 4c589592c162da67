package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"estate/server/internal/service"
)

// NewRouter builds the gin engine with middleware and every listing route
func NewRouter(svc *service.EstateService, logger *logrus.Logger, allowedOrigins []string) *gin.Engine {
	registerValidators()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))
	router.Use(cors.New(corsConfig(allowedOrigins)))
	router.Use(ActorMiddleware())

	SetupRoutes(router, svc, logger)
	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", UserHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cfg
}

func SetupRoutes(router *gin.Engine, svc *service.EstateService, logger *logrus.Logger) {
	handler := NewHandler(svc, logger)

	api := router.Group("/api")
	{
		api.GET("/properties", handler.ListProperties)
		api.POST("/properties", handler.CreateProperty)
		api.GET("/properties/:id", handler.GetProperty)
		api.PATCH("/properties/:id", handler.UpdateProperty)
		api.DELETE("/properties/:id", handler.DeleteProperty)
		api.POST("/properties/:id/sold", handler.MarkSold)
		api.POST("/properties/:id/cancel", handler.CancelProperty)
		api.GET("/properties/:id/offers", handler.ListOffers)
		api.POST("/properties/:id/offers", handler.CreateOffer)

		api.PATCH("/offers/:id", handler.UpdateOffer)
		api.DELETE("/offers/:id", handler.DeleteOffer)
		api.POST("/offers/:id/accept", handler.AcceptOffer)
		api.POST("/offers/:id/refuse", handler.RefuseOffer)

		api.GET("/tags", handler.ListTags)
		api.POST("/tags", handler.CreateTag)
		api.DELETE("/tags/:id", handler.DeleteTag)

		api.GET("/partners", handler.ListPartners)
		api.POST("/partners", handler.CreatePartner)
		api.GET("/users", handler.ListUsers)
		api.POST("/users", handler.CreateUser)
		api.GET("/property-types", handler.ListPropertyTypes)
		api.POST("/property-types", handler.CreatePropertyType)

		api.GET("/map", handler.GetMap)
	}
}
