package router

import (
	"time"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/anonto42/yatube/internal/cache"
	"github.com/anonto42/yatube/internal/forms"
	"github.com/anonto42/yatube/internal/handlers"
	"github.com/anonto42/yatube/internal/metrics"
	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/render"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/services"
	"github.com/anonto42/yatube/internal/storage"
	"github.com/anonto42/yatube/pkg/config"
	"github.com/anonto42/yatube/pkg/firebase"
)

// Dependencies is everything the HTTP layer is built from. Metrics and
// Firebase are optional.
type Dependencies struct {
	DB            *gorm.DB
	Images        storage.ImageStorage
	PageCache     cache.Store
	PageCacheTTL  time.Duration
	Metrics       *metrics.Metrics
	Firebase      firebase.TokenVerifier
	SessionSecret string
	SecureCookies bool
}

// New builds the echo instance with renderer, validator, middleware and
// every route
func New(deps Dependencies) (*echo.Echo, error) {
	renderer, err := render.New()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	validator := forms.NewValidator()
	e.Validator = validator
	e.HTTPErrorHandler = handlers.ErrorHandler(e)

	userRepo := repositories.NewPostgresUserRepository(deps.DB)
	accounts := services.NewAccounts(userRepo)
	sessions := middleware.NewSessions(deps.SessionSecret, accounts, deps.SecureCookies)

	SetupMiddleware(e, deps.Metrics, sessions)
	SetupRoutes(e, deps, validator, accounts, sessions)
	return e, nil
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, m *metrics.Metrics, sessions *middleware.Sessions) {
	config.SetupMiddleware(e)
	if m != nil {
		e.Use(m.Middleware())
	}
	e.Use(eMiddleware.BodyLimit("10M"))
	e.Use(sessions.LoadUser())
	log.Debug().Msg("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies, validator *forms.Validator, accounts *services.Accounts, sessions *middleware.Sessions) {
	healthHandler := handlers.NewHealthHandler(deps.DB)
	e.GET("/health", healthHandler.HealthCheck)

	// --- Initialize Repositories ---
	blog := services.NewBlog(
		repositories.NewPostgresUserRepository(deps.DB),
		repositories.NewPostgresGroupRepository(deps.DB),
		repositories.NewPostgresPostRepository(deps.DB),
		repositories.NewPostgresCommentRepository(deps.DB),
		repositories.NewPostgresFollowRepository(deps.DB),
		deps.Images,
	)

	site := e.Group("")

	var indexCache []echo.MiddlewareFunc
	if deps.PageCache != nil {
		var observer cache.Observer
		if deps.Metrics != nil {
			observer = deps.Metrics
		}
		indexCache = append(indexCache, cache.CachePage(deps.PageCache, deps.PageCacheTTL, observer, middleware.ViewerVariant))
	}

	// Post routes
	postHandler := handlers.NewPostHandler(blog, validator)
	postHandler.RegisterPostRoutes(site, indexCache...)
	log.Debug().Msg("Post routes configured.")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(blog, validator)
	commentHandler.RegisterCommentRoutes(site)

	// Profile routes
	userHandler := handlers.NewUserHandler(blog)
	userHandler.RegisterProfileRoutes(site)

	// Follow routes
	followHandler := handlers.NewFollowHandler(blog, validator)
	followHandler.RegisterFollowRoutes(site)
	log.Debug().Msg("Profile and follow routes configured.")

	// --- Authentication ---
	authHandler := handlers.NewAuthHandler(accounts, sessions, validator, deps.Firebase)
	authHandler.RegisterAuthRoutes(e.Group("/auth"))
	log.Debug().Bool("firebase", deps.Firebase != nil).Msg("Auth routes configured.")

	// --- Staff only ---
	adminHandler := handlers.NewAdminHandler(blog, validator)
	adminHandler.RegisterAdminRoutes(e.Group("/admin"))

	// Uploaded images
	mediaHandler := handlers.NewMediaHandler(deps.Images)
	mediaHandler.RegisterMediaRoutes(e.Group("/media"))

	log.Info().Msg("All routes configured.")
}
