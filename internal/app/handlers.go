package app

import (
	"context"
	"errors"

	"image-effect-desktop/internal/controllers"
	"image-effect-desktop/internal/effects"
	"image-effect-desktop/internal/logger"
	"image-effect-desktop/internal/views"
)

// Handlers binds toolbar actions to the controller
type Handlers struct {
	ctx        context.Context
	controller *controllers.EffectController
	view       *views.MainView
	logger     logger.Logger
}

func NewHandlers(ctx context.Context, controller *controllers.EffectController, view *views.MainView, log logger.Logger) *Handlers {
	return &Handlers{
		ctx:        ctx,
		controller: controller,
		view:       view,
		logger:     log,
	}
}

func (h *Handlers) Bind() {
	h.view.SetUploadHandler(h.HandleUpload)
	h.view.SetApplyHandler(h.HandleApply)
	h.view.SetAutoHandler(h.HandleToggleAuto)
}

func (h *Handlers) HandleUpload() {
	h.controller.RequestImage(h.ctx)
}

// HandleApply renders off the UI goroutine; the controller serializes calls
func (h *Handlers) HandleApply() {
	go func() {
		result, err := h.controller.ApplyManual(h.ctx)
		if err != nil {
			if !errors.Is(err, controllers.ErrNoImageLoaded) {
				h.logger.Debug("Handlers", "manual apply failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
			return
		}

		src := result.Source
		h.view.SetImageInfo(src.Name, src.Width, src.Height, src.Format)
		h.view.SetNextEffect(effects.At(h.controller.Cursor()).String())
	}()
}

func (h *Handlers) HandleToggleAuto() {
	state, err := h.controller.ToggleAuto(h.ctx)
	h.logger.Debug("Handlers", "auto toggled", map[string]interface{}{
		"state": state.String(),
		"error": errString(err),
	})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
