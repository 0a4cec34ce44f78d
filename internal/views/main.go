package views

import (
	"fmt"
	"image"
	"io"

	"image-effect-desktop/internal/services"
	"image-effect-desktop/internal/views/components"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// MainView is the single application window: a toolbar, the manual and auto
// image panes and a status bar. Its update methods can be called from any
// goroutine.
type MainView struct {
	window        fyne.Window
	mainContainer *fyne.Container
	toolbar       *components.Toolbar
	imageDisplay  *components.ImageDisplay
	statusBar     *components.StatusBar

	uploadHandler func()
	applyHandler  func()
	autoHandler   func()
}

func NewMainView(window fyne.Window) *MainView {
	view := &MainView{
		window: window,
	}

	view.initializeComponents()
	view.buildLayout()
	view.setupEventHandlers()

	return view
}

func (mv *MainView) initializeComponents() {
	mv.toolbar = components.NewToolbar()
	mv.imageDisplay = components.NewImageDisplay()
	mv.statusBar = components.NewStatusBar()
}

func (mv *MainView) buildLayout() {
	mv.mainContainer = container.NewBorder(
		mv.toolbar.GetContainer(),
		mv.statusBar.GetContainer(),
		nil,
		nil,
		mv.imageDisplay.GetContainer(),
	)

	mv.window.SetContent(mv.mainContainer)
}

// setupEventHandlers forwards toolbar taps to whatever the app layer registered
func (mv *MainView) setupEventHandlers() {
	mv.toolbar.SetUploadHandler(func() {
		if mv.uploadHandler != nil {
			mv.uploadHandler()
		}
	})

	mv.toolbar.SetApplyHandler(func() {
		if mv.applyHandler != nil {
			mv.applyHandler()
		}
	})

	mv.toolbar.SetAutoHandler(func() {
		if mv.autoHandler != nil {
			mv.autoHandler()
		}
	})
}

func (mv *MainView) SetUploadHandler(handler func()) {
	mv.uploadHandler = handler
}

func (mv *MainView) SetApplyHandler(handler func()) {
	mv.applyHandler = handler
}

func (mv *MainView) SetAutoHandler(handler func()) {
	mv.autoHandler = handler
}

// SetManualImage replaces the manual pane. Showing any image enables the
// effect buttons.
func (mv *MainView) SetManualImage(img image.Image) {
	fyne.Do(func() {
		mv.imageDisplay.SetManualImage(img)
		mv.toolbar.EnableImageOperations(img != nil)
	})
}

func (mv *MainView) SetAutoImage(img image.Image) {
	fyne.Do(func() {
		mv.imageDisplay.SetAutoImage(img)
	})
}

func (mv *MainView) SetAutoRunning(running bool) {
	fyne.Do(func() {
		mv.toolbar.SetAutoRunning(running)
		mv.statusBar.SetActive(running)
	})
}

func (mv *MainView) UpdateStatus(status string) {
	fyne.Do(func() {
		mv.statusBar.SetStatus(status)
	})
}

func (mv *MainView) ShowError(title string, err error) {
	fyne.Do(func() {
		mv.statusBar.SetStatus(title)
		dialog.ShowError(fmt.Errorf("%s: %w", title, err), mv.window)
	})
}

// PickImage shows a single-file open dialog limited to the supported raster
// extensions
func (mv *MainView) PickImage(onPicked func(name string, reader io.ReadCloser, err error)) {
	fyne.Do(func() {
		fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil {
				onPicked("", nil, err)
				return
			}
			if reader == nil {
				onPicked("", nil, nil)
				return
			}
			onPicked(reader.URI().Name(), reader, nil)
		}, mv.window)
		fileDialog.SetFilter(storage.NewExtensionFileFilter(services.SupportedExtensions))
		fileDialog.Show()
	})
}

func (mv *MainView) SetImageInfo(name string, width, height int, format string) {
	fyne.Do(func() {
		mv.statusBar.SetImageInfo(name, width, height, format)
	})
}

func (mv *MainView) SetMemoryInfo(used, total uint64) {
	fyne.Do(func() {
		mv.statusBar.SetMemoryInfo(used, total)
	})
}

func (mv *MainView) SetNextEffect(name string) {
	fyne.Do(func() {
		mv.toolbar.SetNextEffect(name)
	})
}

func (mv *MainView) SetBackend(name string) {
	fyne.Do(func() {
		mv.toolbar.SetBackend(name)
	})
}

func (mv *MainView) GetWindow() fyne.Window {
	return mv.window
}

func (mv *MainView) GetToolbar() *components.Toolbar {
	return mv.toolbar
}

func (mv *MainView) GetImageDisplay() *components.ImageDisplay {
	return mv.imageDisplay
}

func (mv *MainView) GetStatusBar() *components.StatusBar {
	return mv.statusBar
}

// ViewState is a snapshot of what the window currently shows
type ViewState struct {
	HasManualImage   bool
	HasAutoImage     bool
	AutoRunning      bool
	OperationsActive bool
	StatusMessage    string
}

func (mv *MainView) GetViewState() ViewState {
	return ViewState{
		HasManualImage:   mv.imageDisplay.HasManualImage(),
		HasAutoImage:     mv.imageDisplay.HasAutoImage(),
		AutoRunning:      mv.toolbar.AutoRunning(),
		OperationsActive: mv.toolbar.ImageOperationsEnabled(),
		StatusMessage:    mv.statusBar.GetStatus(),
	}
}
