// Package cvfx renders the effect catalog with OpenCV through gocv.
package cvfx

import (
	"context"
	"fmt"
	"image"

	"image-effect-desktop/internal/effects"
	"image-effect-desktop/internal/opencv/conversion"
	"image-effect-desktop/internal/opencv/safe"

	"gocv.io/x/gocv"
)

const BackendName = "opencv"

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

	if !name.Valid() {
		return src, nil
	}

	in, err := conversion.ImageToMat(src)
	if err != nil {
		return nil, fmt.Errorf("%s: input conversion failed: %w", name, err)
	}
	defer in.Close()

	out, err := render(in, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer out.Close()

	img, err := conversion.MatToImage(out)
	if err != nil {
		return nil, fmt.Errorf("%s: output conversion failed: %w", name, err)
	}
	return img, nil
}

// render expects a BGR Mat and returns a new Mat owned by the caller
func render(in *safe.Mat, name effects.Name) (*safe.Mat, error) {
	if err := safe.ValidateChannels(in, string(name), 3); err != nil {
		return nil, err
	}

	src := in.GetMat()
	dst := gocv.NewMat()

	switch name {
	case effects.Grayscale:
		dst.Close()
		return conversion.ConvertToGrayscale(in)
	case effects.Sepia:
		if err := transform(src, &dst, effects.SepiaMatrix); err != nil {
			dst.Close()
			return nil, err
		}
	case effects.Invert:
		gocv.BitwiseNot(src, &dst)
	case effects.OilPaint:
		oilPaint(src, &dst)
	case effects.Pixelate:
		pixelate(src, &dst, effects.PixelateBlockSize)
	case effects.Vignette:
		if err := vignette(src, &dst); err != nil {
			dst.Close()
			return nil, err
		}
	case effects.Glow:
		glow(src, &dst)
	case effects.Polaroid:
		toned := gocv.NewMat()
		defer toned.Close()
		if err := transform(src, &toned, effects.PolaroidMatrix); err != nil {
			dst.Close()
			return nil, err
		}
		if err := vignette(toned, &dst); err != nil {
			dst.Close()
			return nil, err
		}
	}

	return safe.Wrap(dst, string(name))
}

// transform applies an RGB colour matrix to a BGR Mat. Rows and columns are
// mirrored to BGR order and the offsets scaled to 8-bit.
func transform(src gocv.Mat, dst *gocv.Mat, m [3][4]float64) error {
	tm := gocv.NewMatWithSize(3, 4, gocv.MatTypeCV32F)
	defer tm.Close()
	if tm.Empty() {
		return fmt.Errorf("colour matrix allocation failed")
	}

	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			tm.SetFloatAt(2-row, 2-col, float32(m[row][col]))
		}
		tm.SetFloatAt(2-row, 3, float32(m[row][3]*255))
	}

	gocv.Transform(src, dst, tm)
	return nil
}

func oilPaint(src gocv.Mat, dst *gocv.Mat) {
	gocv.MedianBlur(src, dst, 2*effects.OilPaintRadius+1)

	step := uint8(255 / (effects.OilPaintLevels - 1))
	dst.DivideUChar(step)
	dst.MultiplyUChar(step)
}

func pixelate(src gocv.Mat, dst *gocv.Mat, block int) {
	w, h := src.Cols(), src.Rows()
	if block < 2 {
		src.CopyTo(dst)
		return
	}

	small := gocv.NewMat()
	defer small.Close()

	gocv.Resize(src, &small, image.Pt(max(1, w/block), max(1, h/block)), 0, 0, gocv.InterpolationArea)
	gocv.Resize(small, dst, image.Pt(w, h), 0, 0, gocv.InterpolationNearestNeighbor)
}

// screen computes 255 - (255-a)(255-b)/255 per channel
func screen(a, b gocv.Mat, dst *gocv.Mat) {
	invA := gocv.NewMat()
	defer invA.Close()
	invB := gocv.NewMat()
	defer invB.Close()
	prod := gocv.NewMat()
	defer prod.Close()

	gocv.BitwiseNot(a, &invA)
	gocv.BitwiseNot(b, &invB)
	gocv.MultiplyWithParams(invA, invB, &prod, 1.0/255, -1)
	gocv.BitwiseNot(prod, dst)
}

func glow(src gocv.Mat, dst *gocv.Mat) {
	blurred := gocv.NewMat()
	defer blurred.Close()
	screened := gocv.NewMat()
	defer screened.Close()

	gocv.GaussianBlur(src, &blurred, image.Pt(0, 0), effects.GlowSigma, effects.GlowSigma, gocv.BorderDefault)
	screen(src, blurred, &screened)
	gocv.AddWeighted(src, 1-effects.GlowIntensity, screened, effects.GlowIntensity, 0, dst)
}

func vignette(src gocv.Mat, dst *gocv.Mat) error {
	mask, err := vignetteMask(src.Cols(), src.Rows())
	if err != nil {
		return err
	}
	defer mask.Close()

	gocv.MultiplyWithParams(src, mask.GetMat(), dst, 1.0/255, -1)
	return nil
}

// vignetteMask builds a 3-channel 8-bit falloff mask where 255 keeps the pixel
func vignetteMask(w, h int) (*safe.Mat, error) {
	data := make([]byte, w*h*3)
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(effects.VignetteFactor(x, y, w, h)*255 + 0.5)
			data[i], data[i+1], data[i+2] = v, v, v
			i += 3
		}
	}

	tmp, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC3, data)
	if err != nil {
		return nil, fmt.Errorf("vignette mask: %w", err)
	}
	defer tmp.Close()

	return safe.NewMatFromMat(tmp, "vignette_mask")
}
