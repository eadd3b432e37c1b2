package mint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildmint-labs/wildmint/internal/models"
)

func TestRemoteMinterPostsSighting(t *testing.T) {
	var received EndpointRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mint", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"id":"nft-9","explorerUrl":"https://explorer/nft-9"}`))
	}))
	defer srv.Close()

	result, err := NewRemoteMinter(srv.URL+"/mint").Mint(context.Background(), Input{
		Image:  testImage(),
		Result: redFox,
		Owner:  ownerAddress,
	})
	require.NoError(t, err)

	assert.Equal(t, "https://explorer/nft-9", result.ExplorerURL)
	assert.Equal(t, "Red Fox", received.Species)
	assert.Equal(t, "A fox in a field", received.Description)
	assert.Equal(t, ownerAddress, received.PublicKey)
	assert.Equal(t, testImage().DataURL(), received.Image)
	require.NotNil(t, received.CapturedAt)
	assert.True(t, testImage().CapturedAt.Equal(*received.CapturedAt))
}

func TestRemoteMinterServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	_, err := NewRemoteMinter(srv.URL).Mint(context.Background(), Input{Result: redFox, Owner: ownerAddress})

	assert.ErrorIs(t, err, models.ErrMintService)
	assert.Equal(t, "rate limited", err.Error())
}

func TestRemoteMinterSkipsNonAnimal(t *testing.T) {
	var called atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
	}))
	defer srv.Close()

	_, err := NewRemoteMinter(srv.URL).Mint(context.Background(), Input{
		Result: models.ClassificationResult{Species: "No Animal", Description: "A lamp"},
	})

	assert.ErrorIs(t, err, models.ErrNonAnimal)
	assert.False(t, called.Load())
}
