package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/propdesk/propdesk/config"
	"github.com/propdesk/propdesk/internal/api/handlers"
	"github.com/propdesk/propdesk/internal/api/middleware"
	"github.com/propdesk/propdesk/internal/core/property"
	"github.com/propdesk/propdesk/internal/core/session"
	"github.com/propdesk/propdesk/internal/core/workspace"
)

type Router struct {
	engine            *gin.Engine
	logger            *slog.Logger
	sessionMiddleware *middleware.SessionMiddleware
	authHandler       *handlers.AuthHandler
	listingHandler    *handlers.ListingHandler
	propertyHandler   *handlers.PropertyHandler
	draftHandler      *handlers.DraftHandler
}

func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	sessions *session.Service,
	properties *property.Service,
	registry *workspace.Registry,
) *Router {
	return &Router{
		logger:            logger,
		sessionMiddleware: middleware.NewSessionMiddleware(sessions, cfg.Session, logger),
		authHandler:       handlers.NewAuthHandler(sessions, registry),
		listingHandler:    handlers.NewListingHandler(registry),
		propertyHandler:   handlers.NewPropertyHandler(properties),
		draftHandler:      handlers.NewDraftHandler(registry, properties),
	}
}

func (r *Router) Setup(cfg config.ServerConfig) *gin.Engine {
	gin.SetMode(cfg.Mode)
	r.engine = gin.New()
	r.engine.Use(gin.Recovery())
	r.engine.Use(middleware.RequestLogger(r.logger))
	r.engine.Use(middleware.ErrorHandler(r.logger))
	if len(cfg.AllowedOrigins) > 0 {
		r.engine.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.setupRoutes()
	return r.engine
}

func (r *Router) setupRoutes() {
	api := r.engine.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.GET("/options", handlers.Options)

	sessioned := api.Group("")
	sessioned.Use(r.sessionMiddleware.Attach())
	requireToken := r.sessionMiddleware.RequireToken()

	authRoutes := sessioned.Group("/auth")
	{
		authRoutes.POST("/login", r.authHandler.Login)
		authRoutes.POST("/logout", r.authHandler.Logout)
		authRoutes.GET("/me", r.authHandler.Me)
	}

	listings := sessioned.Group("/listings")
	{
		listings.GET("", r.listingHandler.Get)
		listings.PUT("/filters/:field", r.listingHandler.SetFilter)
		listings.POST("/apply", r.listingHandler.Apply)
		listings.POST("/page", r.listingHandler.SetPage)
		listings.POST("/per-page", r.listingHandler.SetPerPage)
	}

	properties := sessioned.Group("/properties")
	{
		properties.GET("/:id", r.propertyHandler.Get)
		properties.DELETE("/:id", requireToken, r.propertyHandler.Delete)
	}

	drafts := sessioned.Group("/drafts")
	{
		drafts.POST("", r.draftHandler.Create)
		drafts.GET("/:draftId", r.draftHandler.Get)
		drafts.DELETE("/:draftId", r.draftHandler.Discard)
		drafts.POST("/:draftId/files", r.draftHandler.AddFiles)
		drafts.POST("/:draftId/urls", r.draftHandler.AddURL)
		drafts.DELETE("/:draftId/images", r.draftHandler.RemoveImage)
		drafts.GET("/:draftId/previews/:handle", r.draftHandler.Preview)
		drafts.POST("/:draftId/submit", requireToken, r.draftHandler.Submit)
	}
}
