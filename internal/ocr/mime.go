package ocr

import (
	"fmt"
	"mime"
	"net/http"
	"strings"
)

var supportedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
}

// HEIF brands found at offset 8 of the ftyp box
var heicBrands = map[string]bool{
	"heic": true,
	"heix": true,
	"hevc": true,
	"heim": true,
	"heis": true,
	"mif1": true,
	"msf1": true,
}

// DetectMIMEType resolves the image type from the declared content type,
// sniffing the bytes when the declaration is missing or generic
func DetectMIMEType(data []byte, declared string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image", ErrInvalidImage)
	}

	mimeType := canonicalMIMEType(declared)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = sniffMIMEType(data)
	}

	if !supportedMIMETypes[mimeType] {
		return "", fmt.Errorf("%w: unsupported type %q", ErrInvalidImage, mimeType)
	}

	return mimeType, nil
}

func canonicalMIMEType(declared string) string {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return ""
	}

	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		mediaType = declared
	}
	mediaType = strings.ToLower(mediaType)

	switch mediaType {
	case "image/jpg", "image/pjpeg":
		return "image/jpeg"
	case "image/heif":
		return "image/heic"
	}
	return mediaType
}

func sniffMIMEType(data []byte) string {
	if len(data) >= 12 && string(data[4:8]) == "ftyp" && heicBrands[string(data[8:12])] {
		return "image/heic"
	}

	mediaType, _, err := mime.ParseMediaType(http.DetectContentType(data))
	if err != nil {
		return "application/octet-stream"
	}
	return mediaType
}
