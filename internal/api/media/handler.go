package media

import (
	"errors"
	"io/fs"
	"net/http"
	"strconv"

	"artist-media/internal/ctxlog"
	"artist-media/internal/domain/catalog"
	domain "artist-media/internal/domain/media"
	"artist-media/internal/media/imagefield"
	"artist-media/internal/media/registry"
	"artist-media/internal/media/rendervariations"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	DB       *gorm.DB
	Registry *registry.Registry
	// Workers is used when a render request does not name a worker count.
	Workers int
}

// ------------------------------
// POST /images (multipart "file")
// ------------------------------
func (h *Handler) UploadImage(c *gin.Context) {
	b, err := h.Registry.Resolve(catalog.ImageFile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	name, ok := SaveUpload(c, b.Field)
	if !ok {
		return
	}

	img := domain.Image{File: name}
	if cfg, err := DecodeConfig(b.Field, name); err == nil {
		img.Width, img.Height = cfg.Width, cfg.Height
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&img).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":     img.ID,
		"width":  img.Width,
		"height": img.Height,
		"image":  Describe(b.Field, name),
	})
}

// ------------------------------
// GET /images/:id
// ------------------------------
func (h *Handler) GetImage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}
	b, err := h.Registry.Resolve(catalog.ImageFile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var img domain.Image
	if err := h.DB.WithContext(c.Request.Context()).First(&img, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     img.ID,
		"width":  img.Width,
		"height": img.Height,
		"image":  Describe(b.Field, img.File),
	})
}

type FieldDTO struct {
	Path         string                 `json:"path"`
	Column       string                 `json:"column"`
	RenderOnSave bool                   `json:"render_on_save"`
	Variations   []imagefield.Variation `json:"variations"`
}

// ------------------------------
// GET /admin/fields
// ------------------------------
func (h *Handler) ListFields(c *gin.Context) {
	bindings := h.Registry.Bindings()
	out := make([]FieldDTO, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, FieldDTO{
			Path:         b.Path(),
			Column:       b.Field.Column,
			RenderOnSave: b.Field.RenderOnSave,
			Variations:   b.Field.Variations,
		})
	}
	c.JSON(http.StatusOK, out)
}

type RenderVariationsRequest struct {
	FieldPaths    []string `json:"field_paths" binding:"required"`
	Replace       bool     `json:"replace"`
	IgnoreMissing bool     `json:"ignore_missing"`
	Workers       int      `json:"workers"`
}

// ------------------------------
// POST /admin/rendervariations
// ------------------------------
func (h *Handler) RenderVariations(c *gin.Context) {
	var req RenderVariationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Workers <= 0 {
		req.Workers = h.Workers
	}

	cmd := rendervariations.New(h.DB, h.Registry)
	sum, err := cmd.Run(c.Request.Context(), rendervariations.Options{
		FieldPaths:    req.FieldPaths,
		Replace:       req.Replace,
		IgnoreMissing: req.IgnoreMissing,
		Workers:       req.Workers,
	})
	if err != nil {
		ctxlog.FromContext(c.Request.Context()).Error("Render variations failed.", "error", err)
		switch {
		case registry.IsNotFound(err):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, fs.ErrNotExist):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "summary": sum})
		case errors.Is(err, rendervariations.ErrNoFieldPaths), rendervariations.IsCommandError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "summary": sum})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render variations", "details": err.Error(), "summary": sum})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "summary": sum})
}
