package works

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	mediaapi "artist-media/internal/api/media"
	"artist-media/internal/domain/catalog"
	"artist-media/internal/domain/works"
	"artist-media/internal/media/registry"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

type Handler struct {
	DB       *gorm.DB
	Registry *registry.Registry
}

var titlePolicy = bluemonday.StrictPolicy()

func mustUserID(c *gin.Context) (uint, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}

func formTitle(c *gin.Context) (string, bool) {
	title := strings.TrimSpace(titlePolicy.Sanitize(c.PostForm("title")))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing title"})
		return "", false
	}
	return title, true
}

type ArtworkDTO struct {
	ID        uint               `json:"id"`
	SeriesID  *uint              `json:"series_id,omitempty"`
	SortIndex int                `json:"sort_index"`
	Title     string             `json:"title"`
	Sold      bool               `json:"sold"`
	Image     *mediaapi.ImageDTO `json:"image,omitempty"`
}

type SeriesDTO struct {
	ID    uint               `json:"id"`
	Title string             `json:"title"`
	Cover *mediaapi.ImageDTO `json:"cover,omitempty"`
	Items []ArtworkDTO       `json:"items"`
}

func (h *Handler) toArtworkDTO(a works.Artwork) ArtworkDTO {
	dto := ArtworkDTO{ID: a.ID, SeriesID: a.SeriesID, SortIndex: a.SortIndex, Title: a.Title, Sold: a.Sold}
	if b, err := h.Registry.Resolve(catalog.ArtworkImage); err == nil {
		dto.Image = mediaapi.Describe(b.Field, a.Image)
	}
	return dto
}

// ------------------------------
// POST /series (multipart "title", optional "file")
// ------------------------------
func (h *Handler) CreateSeries(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	title, ok := formTitle(c)
	if !ok {
		return
	}

	s := works.Series{UserID: &userID, Title: title}
	if _, err := c.FormFile("file"); err == nil {
		b, err := h.Registry.Resolve(catalog.SeriesCover)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		name, ok := mediaapi.SaveUpload(c, b.Field)
		if !ok {
			return
		}
		s.Cover = name
	}

	if err := h.DB.WithContext(c.Request.Context()).Create(&s).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create series", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, h.toSeriesDTO(s))
}

// ------------------------------
// GET /series/:id
// ------------------------------
func (h *Handler) GetSeries(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	var s works.Series
	err = h.DB.WithContext(c.Request.Context()).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_index ASC, id ASC")
		}).
		First(&s, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Series not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load series"})
		return
	}
	c.JSON(http.StatusOK, h.toSeriesDTO(s))
}

func (h *Handler) toSeriesDTO(s works.Series) SeriesDTO {
	dto := SeriesDTO{ID: s.ID, Title: s.Title, Items: make([]ArtworkDTO, 0, len(s.Items))}
	if b, err := h.Registry.Resolve(catalog.SeriesCover); err == nil {
		dto.Cover = mediaapi.Describe(b.Field, s.Cover)
	}
	for _, a := range s.Items {
		dto.Items = append(dto.Items, h.toArtworkDTO(a))
	}
	return dto
}

// ------------------------------
// POST /artworks (multipart "title", "file", optional "series_id")
// ------------------------------
func (h *Handler) CreateArtwork(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	title, ok := formTitle(c)
	if !ok {
		return
	}

	a := works.Artwork{UserID: &userID, Title: title}
	if raw := c.PostForm("series_id"); raw != "" {
		sid, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid series_id"})
			return
		}
		var count int64
		if err := h.DB.WithContext(c.Request.Context()).Model(&works.Series{}).
			Where("id = ? AND user_id = ?", sid, userID).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load series"})
			return
		}
		if count == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Series not found"})
			return
		}
		seriesID := uint(sid)
		a.SeriesID = &seriesID

		var last works.Artwork
		if err := h.DB.WithContext(c.Request.Context()).
			Where("series_id = ?", sid).Order("sort_index DESC").
			Limit(1).Find(&last).Error; err == nil && last.ID != 0 {
			a.SortIndex = last.SortIndex + 1
		}
	}

	b, err := h.Registry.Resolve(catalog.ArtworkImage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	name, ok := mediaapi.SaveUpload(c, b.Field)
	if !ok {
		return
	}
	a.Image = name

	if err := h.DB.WithContext(c.Request.Context()).Create(&a).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create artwork", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, h.toArtworkDTO(a))
}

// ------------------------------
// GET /artworks/:id
// ------------------------------
func (h *Handler) GetArtwork(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	var a works.Artwork
	if err := h.DB.WithContext(c.Request.Context()).
		First(&a, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Artwork not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load artwork"})
		return
	}
	c.JSON(http.StatusOK, h.toArtworkDTO(a))
}

// ------------------------------
// DELETE /artworks/:id
// ------------------------------
func (h *Handler) DeleteArtwork(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	var a works.Artwork
	if err := h.DB.WithContext(c.Request.Context()).
		First(&a, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Artwork not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load artwork"})
		return
	}
	if err := h.DB.WithContext(c.Request.Context()).Delete(&a).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete artwork"})
		return
	}

	if a.Image != "" {
		if b, err := h.Registry.Resolve(catalog.ArtworkImage); err == nil {
			_ = b.Field.Delete(a.Image)
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
