package media

import "time"

// Image is a standalone uploaded picture. File holds the storage name of the
// original; its variations are rendered on upload.
type Image struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	File   string `gorm:"not null" json:"file"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
