package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const (
	startAutoLabel = "Start Auto"
	stopAutoLabel  = "Stop Auto"
)

// Toolbar holds the upload, manual apply and auto toggle buttons
type Toolbar struct {
	container     *fyne.Container
	uploadButton  *widget.Button
	applyButton   *widget.Button
	autoButton    *widget.Button
	nextLabel     *widget.Label
	backendLabel  *widget.Label

	uploadHandler func()
	applyHandler  func()
	autoHandler   func()

	autoRunning bool
}

func NewToolbar() *Toolbar {
	toolbar := &Toolbar{}
	toolbar.createComponents()
	toolbar.buildLayout()
	toolbar.setupEventHandlers()
	return toolbar
}

func (t *Toolbar) createComponents() {
	t.uploadButton = widget.NewButtonWithIcon("Upload", theme.FolderOpenIcon(), nil)
	t.uploadButton.Importance = widget.HighImportance

	t.applyButton = widget.NewButtonWithIcon("Apply Effect", theme.ColorPaletteIcon(), nil)
	t.applyButton.Importance = widget.HighImportance
	t.applyButton.Disable()

	t.autoButton = widget.NewButtonWithIcon(startAutoLabel, theme.MediaPlayIcon(), nil)
	t.autoButton.Importance = widget.MediumImportance
	t.autoButton.Disable()

	t.nextLabel = widget.NewLabel("Next: --")
	t.backendLabel = widget.NewLabel("")
}

func (t *Toolbar) buildLayout() {
	t.container = container.NewHBox(
		t.uploadButton,
		widget.NewSeparator(),
		t.applyButton,
		t.nextLabel,
		widget.NewSeparator(),
		t.autoButton,
		widget.NewSeparator(),
		t.backendLabel,
	)
}

func (t *Toolbar) setupEventHandlers() {
	t.uploadButton.OnTapped = func() {
		if t.uploadHandler != nil {
			t.uploadHandler()
		}
	}

	t.applyButton.OnTapped = func() {
		if t.applyHandler != nil {
			t.applyHandler()
		}
	}

	t.autoButton.OnTapped = func() {
		if t.autoHandler != nil {
			t.autoHandler()
		}
	}
}

func (t *Toolbar) SetUploadHandler(handler func()) {
	t.uploadHandler = handler
}

func (t *Toolbar) SetApplyHandler(handler func()) {
	t.applyHandler = handler
}

func (t *Toolbar) SetAutoHandler(handler func()) {
	t.autoHandler = handler
}

// SetAutoRunning flips the auto button between start and stop
func (t *Toolbar) SetAutoRunning(running bool) {
	t.autoRunning = running
	if running {
		t.autoButton.SetText(stopAutoLabel)
		t.autoButton.SetIcon(theme.MediaStopIcon())
		t.autoButton.Importance = widget.DangerImportance
	} else {
		t.autoButton.SetText(startAutoLabel)
		t.autoButton.SetIcon(theme.MediaPlayIcon())
		t.autoButton.Importance = widget.MediumImportance
	}
	t.autoButton.Refresh()
}

func (t *Toolbar) AutoRunning() bool {
	return t.autoRunning
}

func (t *Toolbar) AutoButtonText() string {
	return t.autoButton.Text
}

// EnableImageOperations toggles the buttons that need a loaded image
func (t *Toolbar) EnableImageOperations(enabled bool) {
	if enabled {
		t.applyButton.Enable()
		t.autoButton.Enable()
	} else {
		t.applyButton.Disable()
		t.autoButton.Disable()
	}
}

func (t *Toolbar) ImageOperationsEnabled() bool {
	return !t.applyButton.Disabled()
}

func (t *Toolbar) SetNextEffect(name string) {
	t.nextLabel.SetText("Next: " + name)
}

func (t *Toolbar) SetBackend(name string) {
	t.backendLabel.SetText("Backend: " + name)
}

func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}
