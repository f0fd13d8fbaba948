// Package images provides cover image validation, variant generation, and
// BlurHash placeholder computation.
package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/audioshelfapp/audioshelf-server/internal/errors"
)

const (
	// MaxCoverBytes is the upload size limit for cover images.
	MaxCoverBytes = 10 << 20
	// MinCoverDimension is the minimum width and height for a usable cover.
	MinCoverDimension = 320

	jpegQuality = 85
)

// Variant names and their target widths. Images are scaled down preserving
// aspect ratio; an image narrower than the target is kept at its own width.
var variantWidths = map[string]int{
	"thumbnail": 320,
	"medium":    640,
	"large":     1280,
}

// Variant is a resized rendition of a cover, encoded as JPEG.
type Variant struct {
	Name  string
	Width int
	Data  []byte
}

// ProcessResult holds everything derived from an uploaded cover.
type ProcessResult struct {
	Variants []Variant
	BlurHash string
	Width    int
	Height   int
}

// Process validates a cover upload, renders its variants, and computes the
// BlurHash placeholder.
func Process(data []byte) (*ProcessResult, error) {
	if len(data) == 0 {
		return nil, errors.Validation("cover image is empty")
	}
	if len(data) > MaxCoverBytes {
		return nil, errors.Validation(fmt.Sprintf("cover image exceeds %d bytes", MaxCoverBytes))
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Validation("cover image could not be decoded")
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < MinCoverDimension || height < MinCoverDimension {
		return nil, errors.Validation(fmt.Sprintf("cover image must be at least %dx%d pixels", MinCoverDimension, MinCoverDimension))
	}

	result := &ProcessResult{
		Width:  width,
		Height: height,
	}

	for name, targetWidth := range variantWidths {
		scaled := scaleToWidth(img, targetWidth)
		encoded, encErr := encodeJPEG(scaled)
		if encErr != nil {
			return nil, fmt.Errorf("encode %s variant: %w", name, encErr)
		}
		result.Variants = append(result.Variants, Variant{
			Name:  name,
			Width: scaled.Bounds().Dx(),
			Data:  encoded,
		})
	}

	hash, err := computeBlurHash(img)
	if err != nil {
		return nil, fmt.Errorf("compute blurhash: %w", err)
	}
	result.BlurHash = hash

	return result, nil
}

// scaleToWidth scales an image down to the target width, preserving aspect
// ratio. Images already at or below the target width are returned unscaled.
func scaleToWidth(img image.Image, targetWidth int) image.Image {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	if srcWidth <= targetWidth {
		return img
	}

	targetHeight := (srcHeight * targetWidth) / srcWidth
	if targetHeight < 1 {
		targetHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
