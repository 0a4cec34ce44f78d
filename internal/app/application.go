package app

import (
	"context"
	"fmt"
	"os"

	"image-effect-desktop/internal/config"
	"image-effect-desktop/internal/controllers"
	"image-effect-desktop/internal/effects"
	"image-effect-desktop/internal/logger"
	"image-effect-desktop/internal/services"
	"image-effect-desktop/internal/shutdown"
	"image-effect-desktop/internal/views"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
)

const (
	AppName    = "Image Effects"
	AppID      = "com.imageeffects.desktop"
	AppVersion = "1.0.0"
)

type Application struct {
	fyneApp    fyne.App
	window     fyne.Window
	logger     logger.Logger
	config     config.Config
	view       *views.MainView
	controller *controllers.EffectController
	filters    *services.FilterService
	monitor    *Monitor
	lifecycle  *Lifecycle
}

// NewApplication builds the window, the services and the controller for one session
func NewApplication(cfg config.Config, log logger.Logger) (*Application, error) {
	library, err := services.NewFilterLibrary(cfg.Backend)
	if err != nil {
		return nil, err
	}

	fyneApp := fyneapp.NewWithID(AppID)
	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(cfg.WindowWidth, cfg.WindowHeight))
	window.CenterOnScreen()
	window.SetMaster()

	return newApplication(fyneApp, window, library, cfg, log), nil
}

func newApplication(fyneApp fyne.App, window fyne.Window, library effects.Library, cfg config.Config, log logger.Logger) *Application {
	view := views.NewMainView(window)
	filters := services.NewFilterService(library, log)
	controller := controllers.NewEffectController(
		services.NewImageService(log),
		filters,
		view,
		log,
		controllers.Options{
			AutoInterval: cfg.AutoInterval,
			Seed:         cfg.Seed,
			HasSeed:      cfg.HasSeed,
		},
	)

	monitor := NewMonitor(cfg.MonitorInterval, controller.History(), view, log)
	manager := shutdown.NewManager(log)

	application := &Application{
		fyneApp:    fyneApp,
		window:     window,
		logger:     log,
		config:     cfg,
		view:       view,
		controller: controller,
		filters:    filters,
		monitor:    monitor,
		lifecycle:  NewLifecycle(manager, log),
	}

	application.lifecycle.RegisterCloser("FilterLibrary", filters.Close)
	application.lifecycle.Register(monitor)
	application.lifecycle.Register(controller)

	NewHandlers(application.lifecycle.Context(), controller, view, log).Bind()

	view.SetBackend(filters.Backend())
	view.SetNextEffect(effects.At(0).String())

	log.Info("Application", "initialization complete", map[string]interface{}{
		"version":       AppVersion,
		"backend":       filters.Backend(),
		"auto_interval": cfg.AutoInterval.String(),
		"window_width":  cfg.WindowWidth,
		"window_height": cfg.WindowHeight,
	})

	return application
}

// Run shows the window and blocks until it is closed
func (a *Application) Run(ctx context.Context) error {
	if err := a.monitor.Start(); err != nil {
		return err
	}

	stop := a.lifecycle.Listen(func(os.Signal) {
		fyne.Do(a.fyneApp.Quit)
	})
	defer stop()

	go func() {
		select {
		case <-ctx.Done():
			a.logger.Info("Application", "context cancelled, quitting", nil)
			fyne.Do(a.fyneApp.Quit)
		case <-a.lifecycle.Done():
		}
	}()

	a.window.SetCloseIntercept(func() {
		a.logger.Info("Application", "window close requested", nil)
		a.lifecycle.Shutdown()
		a.window.Close()
	})

	a.window.Show()
	a.logger.Info("Application", "GUI displayed", nil)
	a.fyneApp.Run()

	if errs := a.lifecycle.Shutdown(); len(errs) > 0 {
		return fmt.Errorf("shutdown finished with %d error(s): %w", len(errs), errs[0])
	}
	return nil
}

func (a *Application) Controller() *controllers.EffectController {
	return a.controller
}

func (a *Application) View() *views.MainView {
	return a.view
}
