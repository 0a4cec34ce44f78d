//go:build imagick

// Package magickfx renders the effect catalog with ImageMagick's MagickWand API.
// It is compiled only with the imagick build tag since it links against
// libMagickWand.
package magickfx

import (
	"context"
	"fmt"
	"image"
	"sync"

	"gopkg.in/gographics/imagick.v3/imagick"

	"image-effect-desktop/internal/effects"
)

const BackendName = "imagick"

type Library struct {
	closeOnce sync.Once
}

func New() (effects.Library, error) {
	imagick.Initialize()
	return &Library{}, nil
}

func (l *Library) Name() string {
	return BackendName
}

func (l *Library) Close() error {
	l.closeOnce.Do(imagick.Terminate)
	return nil
}

func (l *Library) Apply(ctx context.Context, src image.Image, name effects.Name) (image.Image, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if !name.Valid() {
		return src, nil
	}

	mw, err := toWand(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer mw.Destroy()

	if err := render(mw, name); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return fromWand(mw)
}

func render(mw *imagick.MagickWand, name effects.Name) error {
	switch name {
	case effects.Grayscale:
		return mw.TransformImageColorspace(imagick.COLORSPACE_GRAY)
	case effects.Sepia:
		return mw.SepiaToneImage(0.8 * imagick.QUANTUM_RANGE)
	case effects.Invert:
		return mw.NegateImage(false)
	case effects.OilPaint:
		if err := mw.OilPaintImage(float64(effects.OilPaintRadius), 1); err != nil {
			return err
		}
		return mw.PosterizeImage(effects.OilPaintLevels, imagick.DITHER_METHOD_NO)
	case effects.Pixelate:
		w, h := mw.GetImageWidth(), mw.GetImageHeight()
		block := uint(effects.PixelateBlockSize)
		if err := mw.ScaleImage(max(1, w/block), max(1, h/block)); err != nil {
			return err
		}
		return mw.SampleImage(w, h)
	case effects.Vignette:
		return vignette(mw)
	case effects.Glow:
		return glow(mw)
	case effects.Polaroid:
		return polaroid(mw)
	}
	return nil
}

func vignette(mw *imagick.MagickWand) error {
	black := imagick.NewPixelWand()
	defer black.Destroy()
	black.SetColor("black")
	if err := mw.SetImageBackgroundColor(black); err != nil {
		return err
	}

	w, h := mw.GetImageWidth(), mw.GetImageHeight()
	sigma := float64(min(w, h)) * (1 - effects.VignetteInner) / 2
	return mw.VignetteImage(0, sigma, 0, 0)
}

func glow(mw *imagick.MagickWand) error {
	original := mw.Clone()
	defer original.Destroy()
	blurred := mw.Clone()
	defer blurred.Destroy()

	if err := blurred.GaussianBlurImage(0, effects.GlowSigma); err != nil {
		return err
	}
	if err := mw.CompositeImage(blurred, imagick.COMPOSITE_OP_SCREEN, true, 0, 0); err != nil {
		return err
	}

	// blend the original back in so only GlowIntensity of the screen survives
	keep := fmt.Sprintf("%.0f", (1-effects.GlowIntensity)*100)
	if err := original.SetImageArtifact("compose:args", keep); err != nil {
		return err
	}
	return mw.CompositeImage(original, imagick.COMPOSITE_OP_BLEND, true, 0, 0)
}

func polaroid(mw *imagick.MagickWand) error {
	dw := imagick.NewDrawingWand()
	defer dw.Destroy()

	return mw.PolaroidImage(dw, "", 0, imagick.INTERPOLATE_PIXEL_UNDEFINED)
}

func toWand(src image.Image) (*imagick.MagickWand, error) {
	b := src.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			nrgba.Set(x, y, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}

	mw := imagick.NewMagickWand()
	if err := mw.ConstituteImage(uint(b.Dx()), uint(b.Dy()), "RGBA", imagick.PIXEL_CHAR, nrgba.Pix); err != nil {
		mw.Destroy()
		return nil, fmt.Errorf("constitute image: %w", err)
	}
	return mw, nil
}

func fromWand(mw *imagick.MagickWand) (image.Image, error) {
	w, h := mw.GetImageWidth(), mw.GetImageHeight()
	raw, err := mw.ExportImagePixels(0, 0, w, h, "RGBA", imagick.PIXEL_CHAR)
	if err != nil {
		return nil, fmt.Errorf("export pixels: %w", err)
	}

	pix, ok := raw.([]byte)
	if !ok || len(pix) != int(w*h*4) {
		return nil, fmt.Errorf("unexpected pixel buffer from ImageMagick")
	}

	img := image.NewNRGBA(image.Rect(0, 0, int(w), int(h)))
	copy(img.Pix, pix)
	return img, nil
}
