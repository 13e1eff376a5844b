package works

import "time"

// Series covers live on the archive storage, not the default media storage.
type Series struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID *uint `gorm:"index" json:"-"`

	Title string `gorm:"not null" json:"title"`
	Cover string `json:"cover,omitempty"`

	Items []Artwork `gorm:"foreignKey:SeriesID;constraint:OnDelete:SET NULL;" json:"items,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
