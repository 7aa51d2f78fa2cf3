package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultMaxImagePixels bounds the decoded area, about 160 MB as RGBA.
const DefaultMaxImagePixels = 40_000_000

var ErrImageTooLarge = errors.New("image dimensions exceed the pixel limit")

// DecodeImage decodes any registered format (jpeg, png, gif, bmp, webp).
// The header is checked first: images with more than maxPixels pixels are
// rejected with ErrImageTooLarge before any pixel data is decoded.
// maxPixels <= 0 means DefaultMaxImagePixels.
func DecodeImage(data []byte, maxPixels int64) (image.Image, string, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxImagePixels
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// ImageSize reads only the header to get the pixel dimensions.
func ImageSize(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read image size: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// ExtensionFor maps a decoder format name to a file extension.
func ExtensionFor(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "png", "gif", "bmp", "webp":
		return "." + format
	default:
		return ".img"
	}
}

// ContentTypeFor maps a file extension to its MIME type.
func ContentTypeFor(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
