package registry

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"artist-media/internal/media/imagefield"

	"gopkg.in/yaml.v3"
)

// Overrides changes variations per field path:
//
//	works.Artwork.image:
//	  thumbnail: {width: 200, height: 200, crop: true}
type Overrides map[string]map[string]imagefield.Variation

func ParseOverrides(data []byte) (Overrides, error) {
	var o Overrides
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse variation overrides: %w", err)
	}
	return o, nil
}

// LoadOverrides reads an overrides file. An empty path yields no overrides.
func LoadOverrides(path string) (Overrides, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read variation overrides: %w", err)
	}
	return ParseOverrides(data)
}

// Apply replaces or adds the variations named in o. Every path must resolve.
func (r *Registry) Apply(o Overrides) error {
	for path, variations := range o {
		b, err := r.Resolve(path)
		if err != nil {
			return fmt.Errorf("variation overrides: %w", err)
		}
		for name, v := range variations {
			if v.Width < 0 || v.Height < 0 {
				return fmt.Errorf("variation overrides: %s.%s: negative size", path, name)
			}
			v.Name = name
			b.Field.SetVariation(v)
		}
	}
	return nil
}
