package storage

import (
	"path"
	"regexp"
	"strings"
)

var (
	nonSlug   = regexp.MustCompile(`[^a-z0-9\-_]+`)
	multiDash = regexp.MustCompile(`-+`)
)

// CleanName turns an uploaded file name into a URL-safe storage name,
// keeping its extension: "My Photo (1).JPG" -> "my-photo-1.jpg".
func CleanName(fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	ext := strings.ToLower(path.Ext(base))
	stem := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(base, path.Ext(base))))

	stem = strings.ReplaceAll(stem, " ", "-")
	stem = strings.ReplaceAll(stem, ".", "-")
	stem = nonSlug.ReplaceAllString(stem, "")
	stem = multiDash.ReplaceAllString(stem, "-")
	stem = strings.Trim(stem, "-")

	ext = nonSlug.ReplaceAllString(strings.TrimPrefix(ext, "."), "")
	if stem == "" {
		stem = "file"
	}
	if ext == "" {
		return stem
	}
	return stem + "." + ext
}
