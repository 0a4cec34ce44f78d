package services

import (
	"context"
	"fmt"
	"image"
	"time"

	"image-effect-desktop/internal/backends/bildfx"
	"image-effect-desktop/internal/backends/cvfx"
	"image-effect-desktop/internal/backends/magickfx"
	"image-effect-desktop/internal/config"
	"image-effect-desktop/internal/effects"
	"image-effect-desktop/internal/logger"
	"image-effect-desktop/internal/models"
)

// NewFilterLibrary constructs the rendering backend named by a config value
func NewFilterLibrary(backend string) (effects.Library, error) {
	switch backend {
	case "", config.BackendBild:
		return bildfx.New(), nil
	case config.BackendOpenCV:
		return cvfx.New(), nil
	case config.BackendImagick:
		return magickfx.New()
	default:
		return nil, fmt.Errorf("unknown filter backend %q", backend)
	}
}

// FilterService applies catalog effects through a Library and times them
type FilterService struct {
	library effects.Library
	logger  logger.Logger
}

func NewFilterService(library effects.Library, log logger.Logger) *FilterService {
	return &FilterService{
		library: library,
		logger:  log,
	}
}

func (fs *FilterService) Backend() string {
	return fs.library.Name()
}

// ApplyImage runs one effect. Names outside the catalog return img itself.
func (fs *FilterService) ApplyImage(ctx context.Context, img image.Image, name effects.Name) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("no image to apply %s to", name)
	}

	if !name.Valid() {
		fs.logger.Debug("FilterService", "unrecognized effect, passing image through", map[string]interface{}{
			"effect": string(name),
		})
		return img, nil
	}

	out, err := fs.library.Apply(ctx, img, name)
	if err != nil {
		return nil, fmt.Errorf("%s backend failed to apply %s: %w", fs.library.Name(), name, err)
	}
	return out, nil
}

// Apply runs one effect on a loaded image and records how long it took
func (fs *FilterService) Apply(ctx context.Context, src *models.ImageData, name effects.Name) (*models.EffectResult, error) {
	if src == nil {
		return nil, fmt.Errorf("no image to apply %s to", name)
	}

	start := time.Now()
	out, err := fs.ApplyImage(ctx, src.Image, name)
	if err != nil {
		return nil, err
	}

	result := &models.EffectResult{
		Effect:   string(name),
		Image:    out,
		Source:   src,
		Duration: time.Since(start),
	}

	fs.logger.Debug("FilterService", "effect applied", map[string]interface{}{
		"effect":      string(name),
		"backend":     fs.library.Name(),
		"duration_ms": result.Duration.Milliseconds(),
	})

	return result, nil
}

func (fs *FilterService) Close() error {
	return fs.library.Close()
}
