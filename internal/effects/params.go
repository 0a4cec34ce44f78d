package effects

import "math"

// Tuning shared by every backend so a given name looks the same regardless
// of which library renders it.
const (
	OilPaintLevels    = 10
	OilPaintBrushSize = 20
	PixelateBlockSize = 10
	GlowIntensity     = 0.5
	GlowSigma         = 8.0
	VignetteStrength  = 0.85
	VignetteInner     = 0.35
)

// OilPaintRadius is the neighbourhood radius used by the median pass.
// Median filtering is quadratic in the radius, so the brush is scaled down.
const OilPaintRadius = OilPaintBrushSize / 5

// PolaroidMatrix is the RGB colour matrix for the polaroid tone. Rows are the
// output R, G, B channels; columns are input R, G, B followed by an offset in
// the 0..1 range.
var PolaroidMatrix = [3][4]float64{
	{1.438, -0.062, -0.062, 0.00},
	{-0.122, 1.378, -0.122, -0.05},
	{-0.016, -0.016, 1.483, -0.05},
}

// SepiaMatrix is the classic RGB sepia matrix
var SepiaMatrix = [3][4]float64{
	{0.393, 0.769, 0.189, 0},
	{0.349, 0.686, 0.168, 0},
	{0.272, 0.534, 0.131, 0},
}

// VignetteFactor returns the brightness multiplier for a pixel at (x, y) in a
// w x h image: 1 inside the inner radius, falling smoothly to
// 1-VignetteStrength at the corners.
func VignetteFactor(x, y, w, h int) float64 {
	if w <= 0 || h <= 0 {
		return 1
	}
	cx := float64(w-1) / 2
	cy := float64(h-1) / 2
	maxDist := math.Hypot(cx, cy)
	if maxDist == 0 {
		return 1
	}
	d := math.Hypot(float64(x)-cx, float64(y)-cy) / maxDist
	if d <= VignetteInner {
		return 1
	}
	t := (d - VignetteInner) / (1 - VignetteInner)
	if t > 1 {
		t = 1
	}
	// smoothstep
	t = t * t * (3 - 2*t)
	return 1 - VignetteStrength*t
}

// Posterize quantises an 8-bit channel value into the given number of levels
func Posterize(v uint8, levels int) uint8 {
	if levels < 2 {
		return v
	}
	step := 255.0 / float64(levels-1)
	return uint8(math.Round(math.Round(float64(v)/step) * step))
}
