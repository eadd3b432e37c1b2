package capture

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildmint-labs/wildmint/internal/capture/capturetest"
	"github.com/wildmint-labs/wildmint/internal/models"
)

func TestImport(t *testing.T) {
	pngData := capturetest.PNG(t, 4, 3)
	jpegData := capturetest.JPEG(t, 8, 6)
	at := time.Date(2024, 9, 26, 22, 0, 54, 0, time.FixedZone("EST", -5*3600))

	tests := []struct {
		name         string
		data         []byte
		declared     string
		expectedMIME string
		width        int
		height       int
		wantErr      string
	}{
		{
			name:         "png with matching declared type",
			data:         pngData,
			declared:     "image/png",
			expectedMIME: "image/png",
			width:        4,
			height:       3,
		},
		{
			name:         "jpeg without declared type",
			data:         jpegData,
			expectedMIME: "image/jpeg",
			width:        8,
			height:       6,
		},
		{
			name:         "mismatched declared type falls back to content",
			data:         pngData,
			declared:     "image/jpeg",
			expectedMIME: "image/png",
			width:        4,
			height:       3,
		},
		{
			name:         "declared type parameters are dropped",
			data:         jpegData,
			declared:     "image/jpeg; charset=binary",
			expectedMIME: "image/jpeg",
			width:        8,
			height:       6,
		},
		{
			name:    "empty data",
			data:    nil,
			wantErr: "no image data provided",
		},
		{
			name:    "text is not an image",
			data:    []byte("Animal: Red Fox"),
			wantErr: "file is not an image",
		},
		{
			name:    "truncated png cannot be decoded",
			data:    pngData[:16],
			wantErr: "image could not be decoded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Import(tt.data, tt.declared, at)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, models.ErrCapture)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedMIME, img.MIMEType)
			assert.Equal(t, tt.width, img.Width)
			assert.Equal(t, tt.height, img.Height)
			assert.Equal(t, at.UTC(), img.CapturedAt)
			assert.Equal(t, tt.data, img.Data)
		})
	}
}

func TestImportRejectsOversizedData(t *testing.T) {
	data := make([]byte, MaxImageSize+1)
	copy(data, capturetest.PNG(t, 2, 2))

	_, err := Import(data, "image/png", time.Now())

	assert.ErrorIs(t, err, models.ErrCapture)
	assert.Contains(t, err.Error(), "too large")
}

func TestParseDataURL(t *testing.T) {
	pngData := capturetest.PNG(t, 2, 2)
	encoded := base64.StdEncoding.EncodeToString(pngData)

	data, mimeType, err := ParseDataURL("data:image/png;base64," + encoded)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, pngData, data)

	for _, bad := range []string{
		"https://example.com/fox.jpg",
		"data:image/png;base64",
		"data:image/png," + encoded,
		"data:image/png;base64,@@@",
	} {
		_, _, err := ParseDataURL(bad)
		assert.ErrorIs(t, err, models.ErrCapture, bad)
	}
}

func TestImportDataURLRoundTrip(t *testing.T) {
	original, err := Import(capturetest.JPEG(t, 5, 5), "image/jpeg", time.Now())
	require.NoError(t, err)

	again, err := ImportDataURL(original.DataURL(), original.CapturedAt)
	require.NoError(t, err)

	assert.Equal(t, original.Data, again.Data)
	assert.Equal(t, original.MIMEType, again.MIMEType)
}
