package di

import (
	"github.com/prohmpiriya/event-marketplace/internal/handler"
	"github.com/prohmpiriya/event-marketplace/internal/repository"
	"github.com/prohmpiriya/event-marketplace/internal/service"
	"github.com/prohmpiriya/event-marketplace/pkg/config"
	"github.com/prohmpiriya/event-marketplace/pkg/database"
	"github.com/prohmpiriya/event-marketplace/pkg/middleware"
	"github.com/prohmpiriya/event-marketplace/pkg/redis"
)

// Container holds all dependencies for the marketplace API
type Container struct {
	// Infrastructure
	Config *config.Config
	DB     *database.PostgresDB
	Redis  *redis.Client
	JWT    *middleware.JWTConfig

	// Repositories
	TxManager    repository.TxManager
	EventRepo    repository.EventRepository
	TicketRepo   repository.TicketRepository
	VenueRepo    repository.VenueRepository
	ArtistRepo   repository.ArtistRepository
	CategoryRepo repository.CategoryRepository
	UserRepo     repository.UserRepository
	OutboxRepo   repository.OutboxRepository

	// Services
	EventService    service.EventService
	TicketService   service.TicketService
	VenueService    service.VenueService
	ArtistService   service.ArtistService
	CategoryService service.CategoryService
	AuthService     service.AuthService

	// Handlers
	HealthHandler   *handler.HealthHandler
	AuthHandler     *handler.AuthHandler
	EventHandler    *handler.EventHandler
	TicketHandler   *handler.TicketHandler
	VenueHandler    *handler.VenueHandler
	ArtistHandler   *handler.ArtistHandler
	CategoryHandler *handler.CategoryHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	Config *config.Config
	DB     *database.PostgresDB
	// Redis is optional; without it the event cache and idempotent purchase are off
	Redis *redis.Client
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		Config: cfg.Config,
		DB:     cfg.DB,
		Redis:  cfg.Redis,
		JWT: &middleware.JWTConfig{
			Secret:    cfg.Config.JWT.Secret,
			Issuer:    cfg.Config.JWT.Issuer,
			TTL:       cfg.Config.JWT.AccessTokenTTL,
			SkipPaths: []string{"/health", "/ready"},
		},
	}

	// Initialize repositories
	pool := c.DB.Pool()
	c.TxManager = repository.NewPostgresTxManager(pool)

	pgEventRepo := repository.NewPostgresEventRepository(pool)
	if c.Redis != nil {
		c.EventRepo = repository.NewCachedEventRepository(pgEventRepo, c.Redis, cfg.Config.Redis.EventTTL)
	} else {
		c.EventRepo = pgEventRepo
	}
	c.TicketRepo = repository.NewPostgresTicketRepository(pool)
	c.VenueRepo = repository.NewPostgresVenueRepository(pool)
	c.ArtistRepo = repository.NewPostgresArtistRepository(pool)
	c.CategoryRepo = repository.NewPostgresCategoryRepository(pool)
	c.UserRepo = repository.NewPostgresUserRepository(pool)
	c.OutboxRepo = repository.NewPostgresOutboxRepository(pool)

	// Initialize services
	c.EventService = service.NewEventService(&service.EventServiceDeps{
		TxManager:    c.TxManager,
		EventRepo:    c.EventRepo,
		TicketRepo:   c.TicketRepo,
		VenueRepo:    c.VenueRepo,
		ArtistRepo:   c.ArtistRepo,
		CategoryRepo: c.CategoryRepo,
		OutboxRepo:   c.OutboxRepo,
	})
	c.TicketService = service.NewTicketService(&service.TicketServiceDeps{
		TxManager:   c.TxManager,
		EventRepo:   c.EventRepo,
		TicketRepo:  c.TicketRepo,
		OutboxRepo:  c.OutboxRepo,
		NumberRetry: service.DefaultNumberRetry(),
	})
	c.VenueService = service.NewVenueService(c.VenueRepo, c.EventRepo)
	c.ArtistService = service.NewArtistService(c.ArtistRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.AuthService = service.NewAuthService(c.UserRepo, &service.AuthServiceConfig{JWT: c.JWT})

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.healthChecks())
	c.AuthHandler = handler.NewAuthHandler(c.AuthService)
	c.EventHandler = handler.NewEventHandler(c.EventService)
	c.TicketHandler = handler.NewTicketHandler(c.TicketService)
	c.VenueHandler = handler.NewVenueHandler(c.VenueService)
	c.ArtistHandler = handler.NewArtistHandler(c.ArtistService)
	c.CategoryHandler = handler.NewCategoryHandler(c.CategoryService)

	return c
}

func (c *Container) healthChecks() map[string]handler.HealthChecker {
	checks := map[string]handler.HealthChecker{"database": c.DB, "redis": nil}
	if c.Redis != nil {
		checks["redis"] = c.Redis
	}
	return checks
}
