//go:build !imagick

package magickfx

import (
	"fmt"

	"image-effect-desktop/internal/effects"
)

const BackendName = "imagick"

// New reports that this binary was built without ImageMagick support.
// Rebuild with -tags imagick to enable it.
func New() (effects.Library, error) {
	return nil, fmt.Errorf("%s: %w (build with -tags imagick)", BackendName, effects.ErrBackendUnavailable)
}
