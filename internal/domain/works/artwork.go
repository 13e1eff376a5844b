package works

import "time"

// Artwork variations are not rendered on upload. They are produced by the
// rendervariations command.
type Artwork struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID    *uint `gorm:"index" json:"-"`
	SeriesID  *uint `gorm:"index" json:"series_id,omitempty"`
	SortIndex int   `gorm:"not null;default:0" json:"sort_index"`

	Title string `gorm:"not null" json:"title"`
	Image string `json:"image,omitempty"`
	Sold  bool   `gorm:"not null;default:false" json:"sold"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
