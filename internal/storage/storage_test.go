package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildmint-labs/wildmint/internal/mint"
	"github.com/wildmint-labs/wildmint/internal/models"
	"github.com/wildmint-labs/wildmint/internal/pipeline"
)

type nopClassifier struct{}

func (nopClassifier) Classify(context.Context, models.CapturedImage) (string, error) { return "", nil }

type nopMinter struct{}

func (nopMinter) Mint(context.Context, mint.Input) (models.MintResult, error) {
	return models.MintResult{}, nil
}

type countingCamera struct{ released int }

func (c *countingCamera) Acquire(context.Context) error { return nil }

func (c *countingCamera) Frame(context.Context) (models.CapturedImage, error) {
	return models.CapturedImage{Data: []byte{1}, MIMEType: "image/png"}, nil
}

func (c *countingCamera) Release() error {
	c.released++
	return nil
}

func newSession(t *testing.T, at time.Time, cam *countingCamera) *pipeline.Session {
	t.Helper()
	opts := pipeline.Options{
		Classifier: nopClassifier{},
		Minter:     nopMinter{},
		Now:        func() time.Time { return at },
	}
	if cam != nil {
		opts.Camera = cam
	}
	s, err := pipeline.NewSession(opts)
	require.NoError(t, err)
	return s
}

func TestSessionStore(t *testing.T) {
	store := New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	later := newSession(t, base.Add(time.Minute), nil)
	earlier := newSession(t, base, nil)
	store.Set(later)
	store.Set(earlier)

	got, ok := store.Get(earlier.ID())
	require.True(t, ok)
	assert.Same(t, earlier, got)

	list := store.List()
	require.Len(t, list, 2)
	assert.Same(t, earlier, list[0])
	assert.Same(t, later, list[1])

	assert.True(t, store.Delete(later.ID()))
	assert.False(t, store.Delete(later.ID()))
	_, ok = store.Get(later.ID())
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len())
}

func TestSessionStoreReleasesCameras(t *testing.T) {
	store := New()
	cam1, cam2 := &countingCamera{}, &countingCamera{}
	s1 := newSession(t, time.Now(), cam1)
	s2 := newSession(t, time.Now(), cam2)
	require.NoError(t, s1.Capture(context.Background()))
	require.NoError(t, s2.Capture(context.Background()))
	store.Set(s1)
	store.Set(s2)

	store.Delete(s1.ID())
	assert.Equal(t, 1, cam1.released)

	store.Close()
	assert.Equal(t, 1, cam2.released)
	assert.Equal(t, 0, store.Len())
}
