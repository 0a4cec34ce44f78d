package app

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"image-effect-desktop/internal/effects"
	"image-effect-desktop/internal/logger"
	"image-effect-desktop/internal/services"
)

// RenderRequest describes one headless render run
type RenderRequest struct {
	Input   string
	Output  string
	Effects []effects.Name
}

// Render decodes Input once and writes one file per effect. With a single
// effect the output goes to Output; with several, the effect name is added
// before the extension.
func Render(ctx context.Context, req RenderRequest, library effects.Library, log logger.Logger) ([]string, error) {
	if len(req.Effects) == 0 {
		return nil, fmt.Errorf("no effects requested")
	}

	in, err := os.Open(req.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", req.Input, err)
	}
	defer in.Close()

	images := services.NewImageService(log)
	src, err := images.Decode(ctx, filepath.Base(req.Input), in)
	if err != nil {
		return nil, err
	}

	filters := services.NewFilterService(library, log)
	written := make([]string, 0, len(req.Effects))

	for _, name := range req.Effects {
		result, err := filters.Apply(ctx, src, name)
		if err != nil {
			return written, err
		}

		path := req.Output
		if len(req.Effects) > 1 {
			path = outputPathFor(req.Output, name)
		}

		if err := writeImage(images, path, result.Image); err != nil {
			return written, err
		}
		written = append(written, path)

		log.Info("Render", "effect written", map[string]interface{}{
			"effect":      string(name),
			"output":      path,
			"duration_ms": result.Duration.Milliseconds(),
		})
	}

	return written, nil
}

func writeImage(images *services.ImageService, path string, img image.Image) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := images.Encode(out, img, services.FormatForPath(path)); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// outputPathFor turns out/result.png into out/result-sepia.png
func outputPathFor(output string, name effects.Name) string {
	ext := filepath.Ext(output)
	base := strings.TrimSuffix(output, ext)
	if ext == "" {
		ext = ".png"
	}
	return fmt.Sprintf("%s-%s%s", base, strings.ToLower(string(name)), ext)
}
