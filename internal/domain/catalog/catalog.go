// Package catalog declares every image field of the application and the
// models that carry them.
package catalog

import (
	"artist-media/internal/domain/media"
	"artist-media/internal/domain/users"
	"artist-media/internal/domain/works"
	"artist-media/internal/media/imagefield"
	"artist-media/internal/media/registry"
	"artist-media/internal/media/storage"
)

const (
	ImageFile    = "media.Image.file"
	ArtworkImage = "works.Artwork.image"
	SeriesCover  = "works.Series.cover"
	UserAvatar   = "users.User.avatar"
)

type Storages struct {
	Media   storage.Storage
	Archive storage.Storage
}

// Models lists every gorm model for migrations.
func Models() []any {
	return []any{
		&users.User{},
		&media.Image{},
		&works.Series{},
		&works.Artwork{},
	}
}

// NewRegistry builds the field registry. Each call returns fresh fields, so
// overrides applied to one registry do not leak into another.
func NewRegistry(s Storages) *registry.Registry {
	r := registry.New()

	r.MustRegister("media", &media.Image{}, &imagefield.Field{
		Name:     "file",
		UploadTo: "images",
		Variations: []imagefield.Variation{
			{Name: "thumbnail", Width: 150, Height: 150, Crop: true},
			{Name: "preview", Width: 800, Height: 600},
		},
		Storage:      s.Media,
		RenderOnSave: true,
	})

	r.MustRegister("works", &works.Artwork{}, &imagefield.Field{
		Name:     "image",
		UploadTo: "artworks",
		Variations: []imagefield.Variation{
			{Name: "thumbnail", Width: 150, Height: 150, Crop: true},
			{Name: "large", Width: 1600, Height: 1600},
		},
		Storage: s.Media,
	})

	r.MustRegister("works", &works.Series{}, &imagefield.Field{
		Name:     "cover",
		UploadTo: "series",
		Variations: []imagefield.Variation{
			{Name: "thumbnail", Width: 300, Height: 200, Crop: true},
		},
		Storage: s.Archive,
	})

	r.MustRegister("users", &users.User{}, &imagefield.Field{
		Name:     "avatar",
		UploadTo: "avatars",
		Variations: []imagefield.Variation{
			{Name: "thumbnail", Width: 96, Height: 96, Crop: true},
		},
		Storage:      s.Media,
		Renderer:     imagefield.GrayscaleRenderer{},
		RenderOnSave: true,
	})

	return r
}
