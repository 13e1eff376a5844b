package main

import (
	"log/slog"
	"os"
	"time"

	"artist-media/config"
	"artist-media/database"
	routes "artist-media/internal/app/http"
	"artist-media/internal/ctxlog"
	"artist-media/internal/domain/catalog"
	"artist-media/internal/media/registry"
	"artist-media/internal/media/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	config.RequireServer()

	logger, err := ctxlog.New(os.Stderr, config.LOG_FORMAT, config.LOG_LEVEL)
	if err != nil {
		slog.Error("Invalid logging configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if err := database.InitDB(config.DB_URL, true); err != nil {
		logger.Error("Failed to initialise database", "error", err)
		os.Exit(1)
	}

	mediaStorage := storage.NewFileSystem(config.MEDIA_ROOT, config.MEDIA_URL)
	archiveStorage := storage.NewFileSystem(config.ARCHIVE_ROOT, config.ARCHIVE_URL)
	reg := catalog.NewRegistry(catalog.Storages{Media: mediaStorage, Archive: archiveStorage})

	overrides, err := registry.LoadOverrides(config.VARIATIONS_FILE)
	if err == nil {
		err = reg.Apply(overrides)
	}
	if err != nil {
		logger.Error("Invalid variation overrides", "error", err)
		os.Exit(1)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		DB:        database.DB,
		Registry:  reg,
		Media:     mediaStorage,
		Archive:   archiveStorage,
		JWTSecret: config.JWT_SECRET,
		Workers:   config.RENDER_WORKERS,
		Logger:    logger,
	})

	logger.Info("Listening.", "port", config.PORT)
	if err := r.Run(":" + config.PORT); err != nil {
		logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
