package models

import (
	"image"
	"time"
)

// ImageData is a decoded source image together with what we know about it
type ImageData struct {
	Image    image.Image
	Name     string
	Width    int
	Height   int
	Format   string
	Size     int64
	LoadTime time.Time
}

// NewImageData wraps a decoded image
func NewImageData(img image.Image, name, format string, size int64) *ImageData {
	bounds := img.Bounds()
	return &ImageData{
		Image:    img,
		Name:     name,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Format:   format,
		Size:     size,
		LoadTime: time.Now(),
	}
}

// EffectResult is the output of applying one named effect to a source image
type EffectResult struct {
	Effect   string
	Image    image.Image
	Source   *ImageData
	Duration time.Duration
}
