// Package bildfx renders the effect catalog with pure Go image libraries:
// bild for colour, blur and blend operations and imaging for resampling.
package bildfx

import (
	"context"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"

	"image-effect-desktop/internal/effects"
)

const BackendName = "bild"

type Library struct{}

func New() *Library {
	return &Library{}
}

func (l *Library) Name() string {
	return BackendName
}

func (l *Library) Close() error {
	return nil
}

func (l *Library) Apply(ctx context.Context, src image.Image, name effects.Name) (image.Image, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	switch name {
	case effects.Grayscale:
		return effect.Grayscale(src), nil
	case effects.Sepia:
		return effect.Sepia(src), nil
	case effects.Invert:
		return effect.Invert(src), nil
	case effects.OilPaint:
		return oilPaint(src), nil
	case effects.Pixelate:
		return pixelate(src, effects.PixelateBlockSize), nil
	case effects.Vignette:
		return vignette(src), nil
	case effects.Glow:
		return glow(src), nil
	case effects.Polaroid:
		return vignette(colorMatrix(src, effects.PolaroidMatrix)), nil
	}

	return src, nil
}

// oilPaint smooths with a median brush then flattens each channel to a few
// intensity levels
func oilPaint(src image.Image) image.Image {
	smoothed := effect.Median(src, effects.OilPaintRadius)
	return imaging.AdjustFunc(smoothed, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: effects.Posterize(c.R, effects.OilPaintLevels),
			G: effects.Posterize(c.G, effects.OilPaintLevels),
			B: effects.Posterize(c.B, effects.OilPaintLevels),
			A: c.A,
		}
	})
}

// pixelate averages block x block cells and scales them back up unfiltered
func pixelate(src image.Image, block int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 || block < 2 {
		return imaging.Clone(src)
	}

	small := imaging.Resize(src, max(1, w/block), max(1, h/block), imaging.Box)
	return imaging.Resize(small, w, h, imaging.NearestNeighbor)
}

func glow(src image.Image) image.Image {
	blurred := blur.Gaussian(src, effects.GlowSigma)
	screened := blend.Screen(src, blurred)
	return blend.Opacity(src, screened, effects.GlowIntensity)
}

func vignette(src image.Image) image.Image {
	dst := clone.AsRGBA(src)
	bounds := dst.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				i := y*dst.Stride + x*4
				f := effects.VignetteFactor(x, y, w, h)
				dst.Pix[i+0] = scale(dst.Pix[i+0], f)
				dst.Pix[i+1] = scale(dst.Pix[i+1], f)
				dst.Pix[i+2] = scale(dst.Pix[i+2], f)
			}
		}
	})

	return dst
}

func colorMatrix(src image.Image, m [3][4]float64) image.Image {
	return adjust.Apply(src, func(c color.RGBA) color.RGBA {
		r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
		return color.RGBA{
			R: unit(m[0][0]*r + m[0][1]*g + m[0][2]*b + m[0][3]),
			G: unit(m[1][0]*r + m[1][1]*g + m[1][2]*b + m[1][3]),
			B: unit(m[2][0]*r + m[2][1]*g + m[2][2]*b + m[2][3]),
			A: c.A,
		}
	})
}

func scale(v uint8, f float64) uint8 {
	return uint8(math.Round(float64(v) * f))
}

func unit(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}
