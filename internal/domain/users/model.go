package users

import "time"

const RoleAdmin = "admin"

type User struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Email string `gorm:"not null;uniqueIndex:idx_users_email" json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`

	// Password is a bcrypt hash; nil for accounts created by an admin.
	Password *string `json:"-"`

	// Avatar variations use the grayscale renderer.
	Avatar string `json:"avatar,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
