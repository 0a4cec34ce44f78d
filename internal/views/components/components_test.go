package components

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"

	"fyne.io/fyne/v2/test"
)

func TestToolbarButtonsCallHandlers(t *testing.T) {
	test.NewApp()
	tb := NewToolbar()

	var uploads, applies, autos int
	tb.SetUploadHandler(func() { uploads++ })
	tb.SetApplyHandler(func() { applies++ })
	tb.SetAutoHandler(func() { autos++ })

	test.Tap(tb.uploadButton)
	// disabled until an image is loaded
	test.Tap(tb.applyButton)
	test.Tap(tb.autoButton)
	assert.Equal(t, 1, uploads)
	assert.Zero(t, applies)
	assert.Zero(t, autos)

	tb.EnableImageOperations(true)
	test.Tap(tb.applyButton)
	test.Tap(tb.autoButton)
	assert.Equal(t, 1, applies)
	assert.Equal(t, 1, autos)
}

func TestImageDisplayPlaceholderRestore(t *testing.T) {
	test.NewApp()
	id := NewImageDisplay()
	placeholder := id.AutoImage()

	img := image.NewGray(image.Rect(0, 0, 4, 4))
	id.SetAutoImage(img)
	assert.True(t, id.HasAutoImage())
	assert.Same(t, img, id.AutoImage())

	id.ClearImages()
	assert.False(t, id.HasAutoImage())
	assert.False(t, id.HasManualImage())
	assert.Equal(t, placeholder, id.AutoImage())
}

func TestStatusBarMemoryInfo(t *testing.T) {
	test.NewApp()
	sb := NewStatusBar()

	sb.SetMemoryInfo(64*1024*1024, 128*1024*1024)
	assert.Equal(t, "Memory: 64/128 MB", sb.GetMemoryInfo())

	sb.SetImageInfo("cat.png", 640, 480, "png")
	assert.Equal(t, "cat.png: 640x480 png", sb.GetImageInfo())

	sb.Reset()
	assert.Equal(t, "No image loaded", sb.GetImageInfo())
}
