package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"

	"image-effect-desktop/internal/logger"
	"image-effect-desktop/internal/models"
)

// ErrDecode is matched by every DecodeError via errors.Is
var ErrDecode = errors.New("image decode failed")

// ErrUnsupportedFormat is the cause of a DecodeError for formats outside the
// supported set
var ErrUnsupportedFormat = errors.New("unsupported image format")

// DecodeError reports a byte stream that is not a supported raster image
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("cannot decode image: %v", e.Err)
	}
	return fmt.Sprintf("cannot decode %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// SupportedExtensions are offered by the file picker
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".bmp"}

var supportedFormats = map[string]bool{
	"png":  true,
	"jpeg": true,
	"bmp":  true,
}

// ImageService handles image decoding and encoding
type ImageService struct {
	logger logger.Logger
}

func NewImageService(log logger.Logger) *ImageService {
	return &ImageService{logger: log}
}

// Decode reads a whole stream and decodes it. name is used for the extension
// check and error messages and may be empty.
func (is *ImageService) Decode(ctx context.Context, name string, reader io.Reader) (*models.ImageData, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if ext := strings.ToLower(filepath.Ext(name)); ext != "" && !IsSupportedExtension(ext) {
		return nil, &DecodeError{Name: name, Err: fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)}
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &DecodeError{Name: name, Err: fmt.Errorf("failed to read image data: %w", err)}
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Name: name, Err: err}
	}
	if !supportedFormats[format] {
		return nil, &DecodeError{Name: name, Err: fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)}
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Name: name, Err: err}
	}

	imageData := models.NewImageData(img, name, format, int64(len(data)))

	is.logger.Debug("ImageService", "image decoded", map[string]interface{}{
		"name":   name,
		"format": format,
		"width":  imageData.Width,
		"height": imageData.Height,
		"bytes":  imageData.Size,
	})

	return imageData, nil
}

// Encode writes img in the given format ("png", "jpeg"/"jpg", "bmp")
func (is *ImageService) Encode(writer io.Writer, img image.Image, format string) error {
	if img == nil {
		return fmt.Errorf("no image data to encode")
	}

	f, err := formatFor(format)
	if err != nil {
		return err
	}

	return imaging.Encode(writer, img, f, imaging.JPEGQuality(95))
}

// FormatForPath picks the output format from a file name, defaulting to png
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".bmp":
		return "bmp"
	default:
		return "png"
	}
}

// IsSupportedExtension reports whether ext (with leading dot) can be loaded
func IsSupportedExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

func formatFor(format string) (imaging.Format, error) {
	switch strings.ToLower(format) {
	case "", "png":
		return imaging.PNG, nil
	case "jpeg", "jpg":
		return imaging.JPEG, nil
	case "bmp":
		return imaging.BMP, nil
	default:
		return imaging.PNG, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
