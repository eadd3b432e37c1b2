package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		kind     error
		expected string
	}{
		{
			name:     "capture error formats message",
			err:      CaptureError("no active camera stream"),
			kind:     ErrCapture,
			expected: "no active camera stream",
		},
		{
			name:     "classification error surfaces underlying text",
			err:      ClassificationServiceError(errors.New("dial tcp: connection refused")),
			kind:     ErrClassificationService,
			expected: "dial tcp: connection refused",
		},
		{
			name:     "mint error prefers provider message",
			err:      MintServiceError("rate limited", errors.New("status 500")),
			kind:     ErrMintService,
			expected: "rate limited",
		},
		{
			name:     "mint error falls back to kind",
			err:      MintServiceError("", nil),
			kind:     ErrMintService,
			expected: "mint service failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
			assert.ErrorIs(t, tt.err, tt.kind)
			assert.True(t, IsStage(tt.err))
		})
	}
}

func TestNonAnimalErrorIncludesDescription(t *testing.T) {
	err := NonAnimalError("An empty park bench")

	assert.ErrorIs(t, err, ErrNonAnimal)
	assert.Contains(t, err.Error(), "doesn't appear to be an animal")
	assert.Contains(t, err.Error(), "Description: An empty park bench")
}

func TestStageErrorSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("confirm: %w", MintServiceError("boom", nil))

	assert.ErrorIs(t, err, ErrMintService)
	assert.NotErrorIs(t, err, ErrCapture)
	assert.Nil(t, ClassificationServiceError(nil))
}

func TestCapturedImageDataURL(t *testing.T) {
	img := CapturedImage{Data: []byte("abc"), MIMEType: "image/png"}

	assert.Equal(t, "data:image/png;base64,YWJj", img.DataURL())
	assert.Equal(t, 3, img.Summary().SizeBytes)
}
