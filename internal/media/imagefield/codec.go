package imagefield

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"strings"

	_ "golang.org/x/image/webp"
)

const jpegQuality = 90

var (
	ErrNotImage          = errors.New("file is not a supported image")
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// Decode reads any registered format: jpeg, png, gif and webp.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return img, format, nil
}

// Encode writes img in the format implied by name's extension.
func Encode(w io.Writer, img image.Image, name string) error {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case ".png":
		return png.Encode(w, img)
	case ".gif":
		return gif.Encode(w, img, nil)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path.Ext(name))
	}
}

// formatExt is the canonical extension for each decodable format.
var formatExt = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"webp": ".webp",
}

// SupportedExt reports whether originals named with ext can have variations
// written for them.
func SupportedExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	}
	return false
}

// withFormatExt keeps name when its extension is supported and otherwise
// replaces the extension with the one for format: "scan.tiff" holding jpeg
// data becomes "scan.jpg".
func withFormatExt(name, format string) (string, error) {
	ext := path.Ext(name)
	if SupportedExt(ext) {
		return name, nil
	}
	canonical, ok := formatExt[format]
	if !ok {
		return "", fmt.Errorf("%w: format %q", ErrNotImage, format)
	}
	return strings.TrimSuffix(name, ext) + canonical, nil
}

func encodeToBuffer(img image.Image, name string) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, name); err != nil {
		return nil, err
	}
	return &buf, nil
}
