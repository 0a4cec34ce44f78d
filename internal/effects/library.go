package effects

import (
	"context"
	"errors"
	"image"
)

// ErrBackendUnavailable is returned when a filter backend was not compiled in
// or its native library could not be initialised.
var ErrBackendUnavailable = errors.New("filter backend unavailable")

// Library applies named filters to decoded images.
//
// Apply must return a new image and leave src untouched. Names outside the
// catalog are passed through: Apply returns src unchanged and a nil error.
type Library interface {
	Name() string
	Apply(ctx context.Context, src image.Image, effect Name) (image.Image, error)
	Close() error
}
