package di

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-marketplace/pkg/logger"
	"github.com/prohmpiriya/event-marketplace/pkg/middleware"
	"github.com/prohmpiriya/event-marketplace/pkg/telemetry"
)

// NewRouter mounts every route on a fresh gin engine
func (c *Container) NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	if c.Config.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(c.Config.OTel.ServiceName))
	}
	router.Use(middleware.Logger(logger.Get()))

	// Health check endpoints
	router.GET("/health", c.HealthHandler.Health)
	router.GET("/ready", c.HealthHandler.Ready)

	auth := middleware.JWTMiddleware(c.JWT)
	staff := middleware.RequireRole("organizer", "admin")
	admin := middleware.RequireRole("admin")
	anyRole := middleware.RequireRole("user", "organizer", "admin")

	v1 := router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/signup", c.AuthHandler.Signup)
			authGroup.POST("/signin", c.AuthHandler.Signin)
			authGroup.GET("/me", auth, c.AuthHandler.Me)
		}

		events := v1.Group("/events")
		{
			events.GET("", c.EventHandler.List)
			events.GET("/:id", c.EventHandler.Get)
			events.POST("", auth, staff, c.EventHandler.Create)
			events.PUT("/:id", auth, staff, c.EventHandler.Update)
			events.DELETE("/:id", auth, admin, c.EventHandler.Delete)
			events.POST("/:id/publish", auth, staff, c.EventHandler.Publish)
			events.POST("/:id/cancel", auth, staff, c.EventHandler.Cancel)
		}

		venues := v1.Group("/venues")
		{
			venues.GET("", c.VenueHandler.List)
			venues.GET("/:id", c.VenueHandler.Get)
			venues.POST("", auth, admin, c.VenueHandler.Create)
			venues.PUT("/:id", auth, admin, c.VenueHandler.Update)
			venues.DELETE("/:id", auth, admin, c.VenueHandler.Delete)
		}

		artists := v1.Group("/artists")
		{
			artists.GET("", c.ArtistHandler.List)
			artists.GET("/:id", c.ArtistHandler.Get)
			artists.POST("", auth, staff, c.ArtistHandler.Create)
			artists.PUT("/:id", auth, staff, c.ArtistHandler.Update)
			artists.DELETE("/:id", auth, admin, c.ArtistHandler.Delete)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", c.CategoryHandler.List)
			categories.GET("/:id", c.CategoryHandler.Get)
			categories.POST("", auth, admin, c.CategoryHandler.Create)
			categories.PUT("/:id", auth, admin, c.CategoryHandler.Update)
			categories.DELETE("/:id", auth, admin, c.CategoryHandler.Delete)
		}

		tickets := v1.Group("/tickets")
		tickets.Use(auth)
		{
			purchase := []gin.HandlerFunc{anyRole}
			if c.Redis != nil {
				purchase = append(purchase, middleware.Idempotency(middleware.DefaultIdempotencyConfig(c.Redis)))
			}
			tickets.POST("/purchase", append(purchase, c.TicketHandler.Purchase)...)

			tickets.GET("/my", anyRole, c.TicketHandler.ListMine)
			tickets.GET("/event/:eventId", staff, c.TicketHandler.ListByEvent)
			tickets.GET("/validate/:ticketNumber", staff, c.TicketHandler.Validate)
			tickets.GET("/:id", anyRole, c.TicketHandler.Get)
			tickets.POST("/:id/cancel", anyRole, c.TicketHandler.Cancel)
			tickets.POST("/:id/use", staff, c.TicketHandler.Use)
		}
	}

	return router
}
