package ocr

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// DefaultMaxDimension bounds the longest image side sent to the provider
const DefaultMaxDimension = 2048

// Preprocess applies EXIF orientation to JPEG/PNG images and downscales
// oversized ones so the longest side is at most maxDimension, re-encoding
// as JPEG. Upright images already within bounds, and formats the decoder
// does not handle (webp, heic), are returned unchanged.
func Preprocess(data []byte, mimeType string, maxDimension int) ([]byte, string, error) {
	if mimeType != "image/jpeg" && mimeType != "image/png" {
		return data, mimeType, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	if maxDimension <= 0 || (bounds.Dx() <= maxDimension && bounds.Dy() <= maxDimension) {
		// Only JPEG carries EXIF orientation
		if mimeType != "image/jpeg" || !reoriented(data, img) {
			return data, mimeType, nil
		}
		return encodeJPEG(img)
	}

	return encodeJPEG(imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos))
}

// reoriented reports whether EXIF orientation changed the decoded image
func reoriented(data []byte, oriented image.Image) bool {
	raw, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return false
	}
	if raw.Bounds().Size() != oriented.Bounds().Size() {
		return true
	}
	return !bytes.Equal(imaging.Clone(raw).Pix, imaging.Clone(oriented).Pix)
}

func encodeJPEG(img image.Image) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}
