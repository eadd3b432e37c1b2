// Package capture produces still images for the sighting pipeline, either from
// a camera or from bytes supplied by the user.
package capture

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"mime"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"

	"github.com/wildmint-labs/wildmint/internal/models"
)

// MaxImageSize caps uploads and camera frames at 10MB
const MaxImageSize = 10 * 1024 * 1024

// Import validates user supplied bytes and turns them into a CapturedImage.
// The content is sniffed; a declared type that disagrees with it is ignored.
func Import(data []byte, declaredMIME string, at time.Time) (models.CapturedImage, error) {
	if len(data) == 0 {
		return models.CapturedImage{}, models.CaptureError("no image data provided")
	}
	if len(data) > MaxImageSize {
		return models.CapturedImage{}, models.CaptureError("image too large (max 10MB)")
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return models.CapturedImage{}, models.CaptureError("file is not an image (detected %s)", detected.String())
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return models.CapturedImage{}, models.CaptureError("image could not be decoded: %v", err)
	}

	mimeType := detected.String()
	if declared := normalizeMIME(declaredMIME); declared != "" {
		if detected.Is(declared) {
			mimeType = declared
		} else {
			slog.Debug("Declared MIME type does not match content", "declared", declared, "detected", mimeType)
		}
	}

	slog.Debug("Image imported", "format", format, "mime_type", mimeType, "width", cfg.Width, "height", cfg.Height, "size", len(data))

	return models.CapturedImage{
		Data:       data,
		MIMEType:   mimeType,
		Width:      cfg.Width,
		Height:     cfg.Height,
		CapturedAt: at.UTC(),
	}, nil
}

// ImportDataURL imports an image encoded as data:<mime>;base64,<payload>
func ImportDataURL(dataURL string, at time.Time) (models.CapturedImage, error) {
	data, mimeType, err := ParseDataURL(dataURL)
	if err != nil {
		return models.CapturedImage{}, err
	}
	return Import(data, mimeType, at)
}

// ParseDataURL decodes a base64 data URL into its bytes and MIME type
func ParseDataURL(dataURL string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(dataURL), "data:")
	if !ok {
		return nil, "", models.CaptureError("image is not a data URL")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", models.CaptureError("malformed data URL")
	}
	mediaType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return nil, "", models.CaptureError("data URL must be base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", models.CaptureError("invalid base64 image payload: %v", err)
	}
	return data, normalizeMIME(mediaType), nil
}

func normalizeMIME(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return strings.ToLower(value)
	}
	return mediaType
}
