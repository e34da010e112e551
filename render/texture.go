package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"golang.org/x/image/draw"
)

// FilterMode selects texel filtering.
type FilterMode int

const (
	FilterLinear FilterMode = iota
	FilterNearest
)

// WrapMode selects addressing outside [0, 1].
type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapClamp
)

// Sampler is the sampling state of a texture.
type Sampler struct {
	Filter FilterMode
	Wrap   WrapMode
}

// Texture is an RGBA8 image with non-premultiplied alpha.
type Texture struct {
	Width, Height int
	Pixels        []byte
	Sampler       Sampler
}

// NewTextureRGBA wraps pix, which must hold w*h*4 bytes.
func NewTextureRGBA(w, h int, pix []byte) (*Texture, error) {
	if w <= 0 || h <= 0 || len(pix) != w*h*4 {
		return nil, fmt.Errorf(prefix+"bad texture size %dx%d with %d bytes", w, h, len(pix))
	}
	return &Texture{Width: w, Height: h, Pixels: pix}, nil
}

// FromImage copies img into a new texture.
func FromImage(img image.Image) *Texture {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &Texture{Width: b.Dx(), Height: b.Dy(), Pixels: dst.Pix}
}

// SolidColor returns a 1x1 texture. Components are clamped to [0, 1].
func SolidColor(r, g, b, a float32) *Texture {
	to8 := func(f float32) byte { return byte(math32.Round(min(max(f, 0), 1) * 255)) }
	return &Texture{Width: 1, Height: 1, Pixels: []byte{to8(r), to8(g), to8(b), to8(a)}}
}

// Image returns an image sharing t's pixels.
func (t *Texture) Image() *image.NRGBA {
	return &image.NRGBA{Pix: t.Pixels, Stride: t.Width * 4, Rect: image.Rect(0, 0, t.Width, t.Height)}
}

// Resize returns a bilinearly scaled copy of t.
func (t *Texture) Resize(w, h int) *Texture {
	if w == t.Width && h == t.Height {
		return t
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	kernel := draw.Interpolator(draw.BiLinear)
	if t.Sampler.Filter == FilterNearest {
		kernel = draw.NearestNeighbor
	}
	kernel.Scale(dst, dst.Bounds(), t.Image(), t.Image().Bounds(), draw.Src, nil)
	return &Texture{Width: w, Height: h, Pixels: dst.Pix, Sampler: t.Sampler}
}

// At returns the texel nearest to (u, v) using t's wrap mode.
func (t *Texture) At(u, v float32) color.NRGBA {
	wrap := func(f float32, n int) int {
		var i int
		if t.Sampler.Wrap == WrapClamp {
			i = int(min(max(f, 0), 1) * float32(n-1))
		} else {
			f -= math32.Floor(f)
			i = int(f * float32(n))
		}
		return min(max(i, 0), n-1)
	}
	x, y := wrap(u, t.Width), wrap(v, t.Height)
	o := (y*t.Width + x) * 4
	p := t.Pixels[o : o+4 : o+4]
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}
