package ollama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildmint-labs/wildmint/internal/models"
	"github.com/wildmint-labs/wildmint/internal/providers"
)

func TestClassify(t *testing.T) {
	image := models.CapturedImage{Data: []byte("png-bytes"), MIMEType: "image/png"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llava", body["model"])
		assert.Equal(t, providers.SystemInstruction, body["system"])
		assert.Equal(t, false, body["stream"])
		assert.NotContains(t, body, "format")
		assert.Equal(t, []any{base64.StdEncoding.EncodeToString(image.Data)}, body["images"])

		_, _ = w.Write([]byte(`{"response":"No Animal"}`))
	}))
	defer srv.Close()

	text, err := New(srv.URL+"/", providers.Config{Model: "llava"}).Classify(context.Background(), image)

	require.NoError(t, err)
	assert.Equal(t, "No Animal", text)
}

func TestClassifyServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(srv.URL, providers.Config{Model: "missing"}).Classify(context.Background(), models.CapturedImage{})

	assert.ErrorIs(t, err, models.ErrClassificationService)
	assert.Contains(t, err.Error(), "model not found")
}

func TestClassifyTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, providers.Config{}).Classify(context.Background(), models.CapturedImage{})

	assert.ErrorIs(t, err, models.ErrClassificationService)
	assert.Contains(t, err.Error(), "failed to send request")
}
