package imagefield

import (
	"path"
	"strings"
)

// Variation is one derived rendition of an image field. A zero Width or
// Height leaves that axis unbounded.
type Variation struct {
	Name   string `yaml:"-" json:"name"`
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
	Crop   bool   `yaml:"crop" json:"crop"`
}

// VariationName returns the storage name of a variation of fileName:
// "dir/photo.jpg" becomes "dir/photo.thumbnail.jpg". Sources we can only
// decode (webp) get png variations.
func VariationName(fileName, variation string) string {
	ext := path.Ext(fileName)
	root := strings.TrimSuffix(fileName, ext)
	if strings.EqualFold(ext, ".webp") {
		ext = ".png"
	}
	return root + "." + variation + ext
}
