package imagefield

import (
	"context"
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Renderer produces the image for one variation from a decoded source.
// Implementations must be safe for concurrent use.
type Renderer interface {
	Render(ctx context.Context, src image.Image, v Variation) (image.Image, error)
}

type RendererFunc func(ctx context.Context, src image.Image, v Variation) (image.Image, error)

func (f RendererFunc) Render(ctx context.Context, src image.Image, v Variation) (image.Image, error) {
	return f(ctx, src, v)
}

// DefaultRenderer resizes the source to the variation box.
type DefaultRenderer struct{}

func (DefaultRenderer) Render(_ context.Context, src image.Image, v Variation) (image.Image, error) {
	return Resize(src, v), nil
}

// GrayscaleRenderer renders like DefaultRenderer and drops colour.
type GrayscaleRenderer struct{}

func (GrayscaleRenderer) Render(_ context.Context, src image.Image, v Variation) (image.Image, error) {
	resized := Resize(src, v)
	gray := image.NewGray(resized.Bounds())
	draw.Draw(gray, gray.Bounds(), resized, resized.Bounds().Min, draw.Src)
	return gray, nil
}

// Resize fits src inside the variation box keeping its aspect ratio, never
// upscaling. With Crop set and both axes bounded the result is exactly
// Width x Height, cut from the centre of the source.
func Resize(src image.Image, v Variation) image.Image {
	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()
	if sw == 0 || sh == 0 || (v.Width <= 0 && v.Height <= 0) {
		return src
	}

	if v.Crop && v.Width > 0 && v.Height > 0 {
		region := b
		if sw*v.Height > sh*v.Width {
			w := sh * v.Width / v.Height
			region.Min.X = b.Min.X + (sw-w)/2
			region.Max.X = region.Min.X + w
		} else {
			h := sw * v.Height / v.Width
			region.Min.Y = b.Min.Y + (sh-h)/2
			region.Max.Y = region.Min.Y + h
		}
		return scale(src, region, v.Width, v.Height)
	}

	ratio := 1.0
	if v.Width > 0 {
		ratio = min(ratio, float64(v.Width)/float64(sw))
	}
	if v.Height > 0 {
		ratio = min(ratio, float64(v.Height)/float64(sh))
	}
	if ratio >= 1 {
		return src
	}
	w := max(1, int(float64(sw)*ratio+0.5))
	h := max(1, int(float64(sh)*ratio+0.5))
	return scale(src, b, w, h)
}

func scale(src image.Image, region image.Rectangle, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, region, xdraw.Src, nil)
	return dst
}
