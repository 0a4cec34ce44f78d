package cvfx

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-effect-desktop/internal/effects"
	"image-effect-desktop/internal/opencv/safe"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 90, A: 255})
		}
	}
	return img
}

func TestEveryEffectKeepsBoundsAndReleasesMats(t *testing.T) {
	lib := New()
	src := gradient(32, 24)
	pristine := append([]uint8(nil), src.Pix...)
	before := safe.Live()

	for _, name := range effects.Names() {
		t.Run(name.String(), func(t *testing.T) {
			out, err := lib.Apply(context.Background(), src, name)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 32, 24), out.Bounds())
			assert.Equal(t, pristine, src.Pix)
		})
	}

	assert.Equal(t, before, safe.Live(), "every Mat should be closed")
}

func TestInvertMatchesComplement(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	out, err := New().Apply(context.Background(), src, effects.Invert)
	require.NoError(t, err)

	c := color.NRGBAModel.Convert(out.At(0, 0)).(color.NRGBA)
	assert.Equal(t, color.NRGBA{R: 245, G: 235, B: 225, A: 255}, c)
}

func TestUnknownEffectPassesThrough(t *testing.T) {
	src := gradient(4, 4)
	out, err := New().Apply(context.Background(), src, effects.Name("Emboss"))
	require.NoError(t, err)
	assert.Same(t, src, out)
}
