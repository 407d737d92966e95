package router

import (
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/anonto42/nano-social/backend/internal/handlers"
	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/anonto42/nano-social/backend/pkg/logger"
	"github.com/anonto42/nano-social/backend/pkg/ratelimit"
	"github.com/anonto42/nano-social/backend/pkg/storage"
)

// Dependencies are the external resources the routes are built on. Everything
// except DB may be nil.
type Dependencies struct {
	DB        *gorm.DB
	Activity  repositories.ActivityRepository
	Images    storage.ImageStorage
	Verifier  handlers.TokenVerifier
	Limiter   *ratelimit.Limiter
	JWTSecret string
	JWTTTL    time.Duration
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	if deps.Activity == nil {
		deps.Activity = repositories.NopActivityRepository{}
	}

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.DB)
	profileRepo := repositories.NewPostgresProfileRepository(deps.DB)
	relationshipRepo := repositories.NewPostgresRelationshipRepository(deps.DB)
	postRepo := repositories.NewPostgresPostRepository(deps.DB)
	commentRepo := repositories.NewPostgresCommentRepository(deps.DB)
	likeRepo := repositories.NewPostgresLikeRepository(deps.DB)
	notificationRepo := repositories.NewPostgresNotificationRepository(deps.DB)

	// --- Initialize Services ---
	postService := services.NewPostService(deps.DB, postRepo, commentRepo, likeRepo, notificationRepo, deps.Images, deps.Activity)
	profileService := services.NewProfileService(profileRepo, postRepo, likeRepo, deps.Images, deps.Activity)
	relationshipService := services.NewRelationshipService(deps.DB, profileRepo, relationshipRepo, notificationRepo, deps.Activity)
	accountService := services.NewAccountService(deps.DB, userRepo, profileRepo, relationshipRepo, postService, deps.Activity)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(accountService, deps.Verifier, deps.JWTSecret, deps.JWTTTL)
	authHandler.RegisterAuthRoutes(authGroup)
	logger.Info("Auth routes configured")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(deps.JWTSecret))

	handlers.NewProfileHandler(profileService, accountService, postService).RegisterProfileRoutes(api)
	handlers.NewRelationshipHandler(profileService, relationshipService).
		RegisterRelationshipRoutes(api, middleware.RateLimit(deps.Limiter, "invite"))
	handlers.NewPostHandler(profileService, postService).
		RegisterPostRoutes(api, middleware.RateLimit(deps.Limiter, "post"))
	handlers.NewLikeHandler(profileService, postService).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(profileService, postService).
		RegisterCommentRoutes(api, middleware.RateLimit(deps.Limiter, "comment"))
	handlers.NewNotificationHandler(profileService, notificationRepo, profileRepo).RegisterNotificationRoutes(api)
	handlers.NewActivityHandler(profileService, deps.Activity).RegisterActivityRoutes(api)

	logger.Info("All routes configured")
}

// NewServer returns an echo instance with the routes in place. Global
// middleware and the validator are left to the caller.
func NewServer(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	SetupRoutes(e, deps)
	return e
}
