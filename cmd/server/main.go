package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/router"
	"github.com/anonto42/nano-social/backend/pkg/config"
	"github.com/anonto42/nano-social/backend/pkg/firebase"
	"github.com/anonto42/nano-social/backend/pkg/logger"
	"github.com/anonto42/nano-social/backend/pkg/ratelimit"
	"github.com/anonto42/nano-social/backend/pkg/storage"
	"github.com/anonto42/nano-social/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.Env)
	defer logger.Sync()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	if err := models.Migrate(db.Postgres); err != nil {
		logger.Fatal("Failed to auto migrate models", zap.Error(err))
	}
	logger.Info("PostgreSQL auto-migrations completed")

	ctx := context.Background()
	deps := router.Dependencies{
		DB:        db.Postgres,
		Limiter:   ratelimit.New(db.Redis, cfg.RateLimitWindow),
		JWTSecret: cfg.JWTSecret,
		JWTTTL:    cfg.JWTTTL,
	}

	if db.Mongo != nil {
		activityRepo := repositories.NewMongoActivityRepository(db.Mongo.Database(cfg.MongoDatabase))
		indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := activityRepo.EnsureIndexes(indexCtx); err != nil {
			logger.Warn("Failed to create activity indexes", zap.Error(err))
		}
		cancel()
		deps.Activity = activityRepo
	}

	if cfg.CloudinaryURL != "" {
		images, err := storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryUploadFolder)
		if err != nil {
			logger.Fatal("Failed to initialize Cloudinary", zap.Error(err))
		}
		deps.Images = images
	} else {
		logger.Warn("CLOUDINARY_URL not set, image uploads disabled")
	}

	// Initialize Firebase
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		logger.Fatal("Failed to initialize Firebase", zap.Error(err))
	}
	if firebaseApp != nil {
		deps.Verifier = firebaseApp.AuthClient
	}

	e := router.NewServer(deps)
	e.Validator = validators.NewValidator()
	config.SetupMiddleware(e)

	logger.Info("Starting server", zap.String("port", cfg.Port))
	if err := e.Start(":" + cfg.Port); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}
