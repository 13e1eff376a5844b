package media

import (
	"errors"
	"image"
	"net/http"

	"artist-media/internal/ctxlog"
	"artist-media/internal/media/imagefield"

	"github.com/gin-gonic/gin"
)

// ImageDTO describes a stored original and its variations.
type ImageDTO struct {
	File       string                  `json:"file"`
	URL        string                  `json:"url"`
	Variations map[string]VariationDTO `json:"variations"`
}

type VariationDTO struct {
	URL string `json:"url"`
	// Digest is empty until the variation has been rendered.
	Digest string `json:"digest,omitempty"`
}

// SaveUpload stores the multipart "file" through f. On failure it writes the
// error response and returns false.
func SaveUpload(c *gin.Context, f *imagefield.Field) (string, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return "", false
	}
	src, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable file"})
		return "", false
	}
	defer src.Close()

	name, err := f.Save(c.Request.Context(), fh.Filename, src)
	if err != nil {
		if name != "" {
			if delErr := f.Delete(name); delErr != nil {
				ctxlog.FromContext(c.Request.Context()).Warn("Could not remove failed upload.", "file", name, "error", delErr)
			}
		}
		if errors.Is(err, imagefield.ErrNotImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File is not a supported image"})
			return "", false
		}
		ctxlog.FromContext(c.Request.Context()).Error("Upload failed.", "file", fh.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return "", false
	}
	return name, true
}

// Describe lists the URLs of name and its variations, with digests for the
// variations that exist.
func Describe(f *imagefield.Field, name string) *ImageDTO {
	if name == "" {
		return nil
	}
	urls := f.URLs(name)
	out := &ImageDTO{File: name, URL: urls["original"], Variations: make(map[string]VariationDTO, len(f.Variations))}
	for _, v := range f.Variations {
		dto := VariationDTO{URL: urls[v.Name]}
		if digest, err := imagefield.DigestFile(f.Storage, imagefield.VariationName(name, v.Name)); err == nil {
			dto.Digest = digest
		}
		out.Variations[v.Name] = dto
	}
	return out
}

// DecodeConfig reads the dimensions of a stored original.
func DecodeConfig(f *imagefield.Field, name string) (image.Config, error) {
	rc, err := f.Storage.Open(name)
	if err != nil {
		return image.Config{}, err
	}
	defer rc.Close()
	cfg, _, err := image.DecodeConfig(rc)
	return cfg, err
}
