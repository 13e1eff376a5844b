// Package imagefield describes image columns of gorm models together with the
// variations (thumbnails and friends) derived from them.
package imagefield

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"path"

	"artist-media/internal/ctxlog"
	"artist-media/internal/media/storage"
)

// Field is an image column. The column stores the storage name of the
// original; variations live next to it, see VariationName.
type Field struct {
	Name       string
	Column     string
	UploadTo   string
	Variations []Variation
	Storage    storage.Storage
	// Renderer overrides DefaultRenderer when set.
	Renderer Renderer
	// RenderOnSave renders every variation when an original is saved. Fields
	// without it only get variations through the rendervariations command.
	RenderOnSave bool
}

// Result reports what happened to one variation of one file.
type Result struct {
	Variation string
	Name      string
	Rendered  bool
}

func (f *Field) renderer() Renderer {
	if f.Renderer != nil {
		return f.Renderer
	}
	return DefaultRenderer{}
}

func (f *Field) Variation(name string) (Variation, bool) {
	for _, v := range f.Variations {
		if v.Name == name {
			return v, true
		}
	}
	return Variation{}, false
}

// SetVariation replaces the variation with the same name or appends it.
func (f *Field) SetVariation(v Variation) {
	for i := range f.Variations {
		if f.Variations[i].Name == v.Name {
			f.Variations[i] = v
			return
		}
	}
	f.Variations = append(f.Variations, v)
}

// RenderVariations renders every variation of fileName that does not exist
// yet, or all of them when replace is set. The source is opened at most once
// and only if something needs rendering. A missing source yields an error
// matching fs.ErrNotExist.
func (f *Field) RenderVariations(ctx context.Context, fileName string, replace bool) ([]Result, error) {
	if !SupportedExt(path.Ext(fileName)) {
		return nil, fmt.Errorf("%s: %w", fileName, ErrUnsupportedFormat)
	}
	logger := ctxlog.FromContext(ctx)
	results := make([]Result, 0, len(f.Variations))

	var src image.Image
	for _, v := range f.Variations {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		name := VariationName(fileName, v.Name)
		if !replace {
			exists, err := f.Storage.Exists(name)
			if err != nil {
				return results, fmt.Errorf("check %s: %w", name, err)
			}
			if exists {
				results = append(results, Result{Variation: v.Name, Name: name})
				continue
			}
		}

		if src == nil {
			img, err := f.load(fileName)
			if err != nil {
				return results, err
			}
			src = img
		}

		out, err := f.renderer().Render(ctx, src, v)
		if err != nil {
			return results, fmt.Errorf("render %s: %w", name, err)
		}
		buf, err := encodeToBuffer(out, name)
		if err != nil {
			return results, fmt.Errorf("encode %s: %w", name, err)
		}
		if err := f.Storage.Save(name, buf); err != nil {
			return results, err
		}

		logger.Debug("Rendered variation.", "file", fileName, "variation", v.Name, "name", name)
		results = append(results, Result{Variation: v.Name, Name: name, Rendered: true})
	}
	return results, nil
}

func (f *Field) load(fileName string) (image.Image, error) {
	rc, err := f.Storage.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("open source %s: %w", fileName, err)
	}
	defer rc.Close()

	img, _, err := Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decode source %s: %w", fileName, err)
	}
	return img, nil
}

// Save stores an uploaded original under UploadTo and returns its storage
// name. The content must decode as an image; names without a writable
// extension get the one of the decoded format. Fields with RenderOnSave get
// their variations rendered before Save returns. When that fails the stored
// name is returned along with the error.
func (f *Field) Save(ctx context.Context, fileName string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	base, err := withFormatExt(storage.CleanName(fileName), format)
	if err != nil {
		return "", err
	}

	name, err := f.Storage.AvailableName(path.Join(f.UploadTo, base))
	if err != nil {
		return "", err
	}
	if err := f.Storage.Save(name, bytes.NewReader(data)); err != nil {
		return "", err
	}

	if f.RenderOnSave {
		if _, err := f.RenderVariations(ctx, name, true); err != nil {
			return name, err
		}
	}
	return name, nil
}

// URLs maps "original" and each variation name to its public URL.
func (f *Field) URLs(fileName string) map[string]string {
	if fileName == "" {
		return nil
	}
	out := map[string]string{"original": f.Storage.URL(fileName)}
	for _, v := range f.Variations {
		out[v.Name] = f.Storage.URL(VariationName(fileName, v.Name))
	}
	return out
}

// Delete removes the original and all of its variations.
func (f *Field) Delete(fileName string) error {
	for _, v := range f.Variations {
		if err := f.Storage.Delete(VariationName(fileName, v.Name)); err != nil {
			return err
		}
	}
	return f.Storage.Delete(fileName)
}
