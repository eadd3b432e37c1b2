package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildmint-labs/wildmint/internal/models"
	"github.com/wildmint-labs/wildmint/internal/providers"
)

var fox = models.CapturedImage{Data: []byte("jpeg-bytes"), MIMEType: "image/jpeg"}

func TestClassifySendsImageAndInstruction(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Animal: Red Fox\nDescription: A fox in a field"}}]}`))
	}))
	defer srv.Close()

	o := New("sk-test", srv.URL, providers.Config{Model: "gpt-4o", Temperature: 0.1, Structured: true})
	text, err := o.Classify(context.Background(), fox)

	require.NoError(t, err)
	assert.Equal(t, "Animal: Red Fox\nDescription: A fox in a field", text)

	assert.Equal(t, "gpt-4o", captured["model"])
	assert.Equal(t, map[string]any{"type": "json_object"}, captured["response_format"])

	messages := captured["messages"].([]any)
	require.Len(t, messages, 2)
	system := messages[0].(map[string]any)
	assert.Equal(t, providers.StructuredInstruction, system["content"])

	parts := messages[1].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	imagePart := parts[1].(map[string]any)["image_url"].(map[string]any)
	assert.Equal(t, fox.DataURL(), imagePart["url"])
}

func TestClassifyFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{
			name:    "non-200 status",
			status:  http.StatusTooManyRequests,
			body:    `{"error":{"message":"slow down"}}`,
			wantErr: "received non-200 status code: 429",
		},
		{
			name:    "api error in body",
			status:  http.StatusOK,
			body:    `{"error":{"message":"invalid image"}}`,
			wantErr: "OpenAI API error: invalid image",
		},
		{
			name:    "no choices",
			status:  http.StatusOK,
			body:    `{"choices":[]}`,
			wantErr: "no choices returned from OpenAI",
		},
		{
			name:    "garbage body",
			status:  http.StatusOK,
			body:    `not json`,
			wantErr: "failed to decode response body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New("sk-test", srv.URL, providers.Config{Model: "gpt-4o"}).Classify(context.Background(), fox)

			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrClassificationService)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClassifyWithoutAPIKey(t *testing.T) {
	_, err := New("", "", providers.Config{}).Classify(context.Background(), fox)

	assert.ErrorIs(t, err, models.ErrClassificationService)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}
