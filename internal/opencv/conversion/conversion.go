package conversion

import (
	"fmt"
	"image"
	"image/color"
	"runtime"

	"image-effect-desktop/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ConvertToGrayscale converts multi-channel images to single-channel grayscale
func ConvertToGrayscale(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateChannels(src, "grayscale conversion", 1, 3, 4); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if src.Channels() == 1 {
		return src.Clone()
	}

	dstMat := gocv.NewMat()
	srcMat := src.GetMat()

	switch src.Channels() {
	case 3:
		gocv.CvtColor(srcMat, &dstMat, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(srcMat, &dstMat, gocv.ColorBGRAToGray)
	}

	return safe.Wrap(dstMat, src.Tag()+"_gray")
}

// MatToImage converts GoCV Mat to standard Go image
func MatToImage(src *safe.Mat) (image.Image, error) {
	if err := safe.ValidateChannels(src, "Mat to image conversion", 1, 3, 4); err != nil {
		return nil, err
	}

	rows := src.Rows()
	cols := src.Cols()
	channels := src.Channels()

	data, err := src.Bytes()
	if err != nil {
		return nil, fmt.Errorf("pixel read failed: %w", err)
	}
	if len(data) < rows*cols*channels {
		return nil, fmt.Errorf("short pixel buffer: %d bytes for %dx%dx%d", len(data), cols, rows, channels)
	}

	switch channels {
	case 1:
		img := image.NewGray(image.Rect(0, 0, cols, rows))
		copy(img.Pix, data)
		return img, nil
	case 3:
		return bgrToRGBA(data, rows, cols), nil
	default:
		return bgraToNRGBA(data, rows, cols), nil
	}
}

// ImageToMat converts standard Go image to a 3-channel BGR Mat. Alpha is dropped.
func ImageToMat(img image.Image) (*safe.Mat, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image dimensions: %dx%d", width, height)
	}

	var data []byte
	switch typedImg := img.(type) {
	case *image.Gray:
		data = grayToBGR(typedImg, width, height)
	case *image.NRGBA:
		data = pixToBGR(typedImg.Pix, typedImg.Stride, width, height)
	case *image.RGBA:
		data = pixToBGR(typedImg.Pix, typedImg.Stride, width, height)
	default:
		data = genericToBGR(img, width, height)
	}

	tmp, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, data)
	if err != nil {
		return nil, fmt.Errorf("Mat creation failed: %w", err)
	}
	defer tmp.Close()

	// tmp borrows data; the clone owns its own buffer
	mat, err := safe.NewMatFromMat(tmp, "image")
	runtime.KeepAlive(data)
	return mat, err
}

func grayToBGR(img *image.Gray, width, height int) []byte {
	out := make([]byte, width*height*3)
	i := 0
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width]
		for _, v := range row {
			out[i], out[i+1], out[i+2] = v, v, v
			i += 3
		}
	}
	return out
}

// pixToBGR reorders 4-byte RGBA-like pixel rows into packed BGR
func pixToBGR(pix []byte, stride, width, height int) []byte {
	out := make([]byte, width*height*3)
	i := 0
	for y := 0; y < height; y++ {
		row := pix[y*stride : y*stride+width*4]
		for x := 0; x < len(row); x += 4 {
			out[i] = row[x+2]
			out[i+1] = row[x+1]
			out[i+2] = row[x]
			i += 3
		}
	}
	return out
}

func genericToBGR(img image.Image, width, height int) []byte {
	bounds := img.Bounds()
	out := make([]byte, width*height*3)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out[i], out[i+1], out[i+2] = c.B, c.G, c.R
			i += 3
		}
	}
	return out
}

func bgrToRGBA(data []byte, rows, cols int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cols, rows))
	j := 0
	for i := 0; i < rows*cols*3; i += 3 {
		img.Pix[j] = data[i+2]
		img.Pix[j+1] = data[i+1]
		img.Pix[j+2] = data[i]
		img.Pix[j+3] = 255
		j += 4
	}
	return img
}

func bgraToNRGBA(data []byte, rows, cols int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, cols, rows))
	for i := 0; i < rows*cols*4; i += 4 {
		img.Pix[i] = data[i+2]
		img.Pix[i+1] = data[i+1]
		img.Pix[i+2] = data[i]
		img.Pix[i+3] = data[i+3]
	}
	return img
}
