package routes

import (
	"log/slog"

	"artist-media/internal/api/auth"
	mediaapi "artist-media/internal/api/media"
	"artist-media/internal/api/users"
	worksapi "artist-media/internal/api/works"
	"artist-media/internal/app/http/middleware"
	domainusers "artist-media/internal/domain/users"
	"artist-media/internal/media/registry"
	"artist-media/internal/media/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxUploadBytes = 32 << 20

type Deps struct {
	DB        *gorm.DB
	Registry  *registry.Registry
	Media     *storage.FileSystem
	Archive   *storage.FileSystem
	JWTSecret string
	Workers   int
	Logger    *slog.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	r.Use(middleware.RequestLogger(d.Logger))

	media := &mediaapi.Handler{DB: d.DB, Registry: d.Registry, Workers: d.Workers}
	works := &worksapi.Handler{DB: d.DB, Registry: d.Registry}
	me := &users.Handler{DB: d.DB, Registry: d.Registry}
	login := &auth.Handler{DB: d.DB, Secret: d.JWTSecret}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if d.Media != nil {
		r.Static(urlPrefix(d.Media.BaseURL, "/media"), d.Media.Root)
	}
	if d.Archive != nil {
		r.Static(urlPrefix(d.Archive.BaseURL, "/archive"), d.Archive.Root)
	}

	r.POST("/auth/register", login.Register)
	r.POST("/auth/login", login.Login)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(d.JWTSecret), middleware.LimitBody(maxUploadBytes))
	auth.GET("/me", me.GetCurrentUser)
	auth.PUT("/me/avatar", me.UpdateAvatar)

	auth.POST("/images", media.UploadImage)
	auth.GET("/images/:id", media.GetImage)

	auth.POST("/series", works.CreateSeries)
	auth.GET("/series/:id", works.GetSeries)
	auth.POST("/artworks", works.CreateArtwork)
	auth.GET("/artworks/:id", works.GetArtwork)
	auth.DELETE("/artworks/:id", works.DeleteArtwork)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(d.JWTSecret), middleware.RequireRole(domainusers.RoleAdmin))
	// field_paths are echoed back verbatim in parse errors.
	admin.Use(middleware.SanitizeAndCleanInputMiddleware("field_paths"))
	admin.GET("/fields", media.ListFields)
	admin.POST("/rendervariations", media.RenderVariations)
}

// urlPrefix turns a storage base URL into a router path. Absolute URLs
// point at another host, so the fallback prefix is served instead.
func urlPrefix(baseURL, fallback string) string {
	if baseURL == "" || baseURL[0] != '/' {
		return fallback
	}
	if len(baseURL) > 1 && baseURL[len(baseURL)-1] == '/' {
		return baseURL[:len(baseURL)-1]
	}
	return baseURL
}
