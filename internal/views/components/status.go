package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// StatusBar displays application status and information
type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	imageInfo   *widget.Label
	memoryInfo  *widget.Label
	activity    *widget.ProgressBarInfinite
}

func NewStatusBar() *StatusBar {
	sb := &StatusBar{}
	sb.createComponents()
	sb.buildLayout()
	return sb
}

func (sb *StatusBar) createComponents() {
	sb.statusLabel = widget.NewLabel("Ready")
	sb.imageInfo = widget.NewLabel("No image loaded")
	sb.memoryInfo = widget.NewLabel("Memory: --")

	sb.activity = widget.NewProgressBarInfinite()
	sb.activity.Stop()
	sb.activity.Hide()
}

func (sb *StatusBar) buildLayout() {
	sb.container = container.NewHBox(
		sb.statusLabel,
		widget.NewSeparator(),
		sb.imageInfo,
		widget.NewSeparator(),
		sb.memoryInfo,
		sb.activity,
	)
}

func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

func (sb *StatusBar) GetStatus() string {
	return sb.statusLabel.Text
}

func (sb *StatusBar) SetImageInfo(name string, width, height int, format string) {
	sb.imageInfo.SetText(fmt.Sprintf("%s: %dx%d %s", name, width, height, format))
}

func (sb *StatusBar) GetImageInfo() string {
	return sb.imageInfo.Text
}

// SetMemoryInfo shows heap usage in MB
func (sb *StatusBar) SetMemoryInfo(used, total uint64) {
	usedMB := used / (1024 * 1024)
	totalMB := total / (1024 * 1024)
	sb.memoryInfo.SetText(fmt.Sprintf("Memory: %d/%d MB", usedMB, totalMB))
}

func (sb *StatusBar) GetMemoryInfo() string {
	return sb.memoryInfo.Text
}

// SetActive shows an indeterminate progress bar while the auto cycle runs
func (sb *StatusBar) SetActive(active bool) {
	if active {
		sb.activity.Show()
		sb.activity.Start()
	} else {
		sb.activity.Stop()
		sb.activity.Hide()
	}
}

func (sb *StatusBar) IsActive() bool {
	return sb.activity.Visible()
}

func (sb *StatusBar) Reset() {
	sb.statusLabel.SetText("Ready")
	sb.imageInfo.SetText("No image loaded")
	sb.memoryInfo.SetText("Memory: --")
	sb.SetActive(false)
}

func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}
