package imagefield

import (
	"encoding/hex"
	"io"

	"artist-media/internal/media/storage"

	"golang.org/x/crypto/blake2b"
)

// Digest returns the hex BLAKE2b-256 sum of r.
func Digest(r io.Reader) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func DigestFile(s storage.Storage, name string) (string, error) {
	rc, err := s.Open(name)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return Digest(rc)
}
