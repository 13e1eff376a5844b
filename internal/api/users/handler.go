package users

import (
	"errors"
	"net/http"

	mediaapi "artist-media/internal/api/media"
	"artist-media/internal/domain/catalog"
	"artist-media/internal/domain/users"
	"artist-media/internal/media/registry"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	DB       *gorm.DB
	Registry *registry.Registry
}

type UserDTO struct {
	ID     uint               `json:"id"`
	Email  string             `json:"email"`
	Name   string             `json:"name"`
	Role   string             `json:"role"`
	Avatar *mediaapi.ImageDTO `json:"avatar,omitempty"`
}

func (h *Handler) currentUser(c *gin.Context) (*users.User, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}

	var user users.User
	if err := h.DB.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return nil, false
	}
	return &user, true
}

func (h *Handler) toDTO(u *users.User) UserDTO {
	dto := UserDTO{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
	if b, err := h.Registry.Resolve(catalog.UserAvatar); err == nil {
		dto.Avatar = mediaapi.Describe(b.Field, u.Avatar)
	}
	return dto
}

func (h *Handler) GetCurrentUser(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.toDTO(user))
}

// ------------------------------
// PUT /me/avatar (multipart "file")
// ------------------------------
func (h *Handler) UpdateAvatar(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	b, err := h.Registry.Resolve(catalog.UserAvatar)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	name, ok := mediaapi.SaveUpload(c, b.Field)
	if !ok {
		return
	}

	previous := user.Avatar
	if err := h.DB.WithContext(c.Request.Context()).Model(user).Update("avatar", name).Error; err != nil {
		_ = b.Field.Delete(name)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update avatar"})
		return
	}
	user.Avatar = name
	if previous != "" && previous != name {
		_ = b.Field.Delete(previous)
	}

	c.JSON(http.StatusOK, h.toDTO(user))
}
