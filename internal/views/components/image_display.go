package components

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	ImageAreaWidth  = 480
	ImageAreaHeight = 360
)

// ImageDisplay shows the manual result and the auto cycle side by side.
// Methods must run on the fyne main goroutine.
type ImageDisplay struct {
	container   *container.Split
	manualImage *canvas.Image
	autoImage   *canvas.Image

	manualPlaceholder image.Image
	autoPlaceholder   image.Image

	hasManual bool
	hasAuto   bool
}

func NewImageDisplay() *ImageDisplay {
	display := &ImageDisplay{}
	display.createComponents()
	display.setupLayout()
	return display
}

func (id *ImageDisplay) createComponents() {
	id.manualPlaceholder = placeholderImage()
	id.autoPlaceholder = placeholderImage()

	id.manualImage = newImageCanvas(id.manualPlaceholder)
	id.autoImage = newImageCanvas(id.autoPlaceholder)
}

func newImageCanvas(img image.Image) *canvas.Image {
	c := canvas.NewImageFromImage(img)
	c.FillMode = canvas.ImageFillContain
	c.ScaleMode = canvas.ImageScaleSmooth
	c.SetMinSize(fyne.NewSize(ImageAreaWidth, ImageAreaHeight))
	return c
}

// placeholderImage is a light gray panel with a one pixel border
func placeholderImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, ImageAreaWidth, ImageAreaHeight))

	lightGray := color.RGBA{R: 240, G: 240, B: 240, A: 255}
	borderColor := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	for y := 0; y < ImageAreaHeight; y++ {
		for x := 0; x < ImageAreaWidth; x++ {
			if x == 0 || y == 0 || x == ImageAreaWidth-1 || y == ImageAreaHeight-1 {
				img.Set(x, y, borderColor)
			} else {
				img.Set(x, y, lightGray)
			}
		}
	}

	return img
}

func (id *ImageDisplay) setupLayout() {
	manualContainer := container.NewBorder(
		widget.NewRichTextFromMarkdown("**Manual Effect**"),
		nil, nil, nil,
		container.NewStack(imageBackground(), id.manualImage),
	)

	autoContainer := container.NewBorder(
		widget.NewRichTextFromMarkdown("**Auto Cycle**"),
		nil, nil, nil,
		container.NewStack(imageBackground(), id.autoImage),
	)

	id.container = container.NewHSplit(manualContainer, autoContainer)
	id.container.SetOffset(0.5)
}

func imageBackground() *canvas.Rectangle {
	return canvas.NewRectangle(color.RGBA{R: 252, G: 252, B: 252, A: 255})
}

// SetManualImage replaces the manual pane. nil restores the placeholder.
func (id *ImageDisplay) SetManualImage(img image.Image) {
	id.hasManual = img != nil
	if img == nil {
		img = id.manualPlaceholder
	}
	id.manualImage.Image = img
	id.manualImage.Refresh()
}

// SetAutoImage replaces the auto pane. nil restores the placeholder.
func (id *ImageDisplay) SetAutoImage(img image.Image) {
	id.hasAuto = img != nil
	if img == nil {
		img = id.autoPlaceholder
	}
	id.autoImage.Image = img
	id.autoImage.Refresh()
}

func (id *ImageDisplay) HasManualImage() bool {
	return id.hasManual
}

func (id *ImageDisplay) HasAutoImage() bool {
	return id.hasAuto
}

func (id *ImageDisplay) ManualImage() image.Image {
	return id.manualImage.Image
}

func (id *ImageDisplay) AutoImage() image.Image {
	return id.autoImage.Image
}

func (id *ImageDisplay) ClearImages() {
	id.SetManualImage(nil)
	id.SetAutoImage(nil)
}

func (id *ImageDisplay) GetContainer() fyne.CanvasObject {
	return id.container
}
