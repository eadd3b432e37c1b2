package capture

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildmint-labs/wildmint/internal/capture/capturetest"
	"github.com/wildmint-labs/wildmint/internal/models"
)

func TestSnapshotCameraLifecycle(t *testing.T) {
	frame := capturetest.JPEG(t, 16, 9)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(frame)
	}))
	defer srv.Close()

	cam := NewSnapshotCamera(srv.URL)
	fixed := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	cam.now = func() time.Time { return fixed }
	ctx := context.Background()

	_, err := cam.Frame(ctx)
	assert.ErrorIs(t, err, models.ErrCapture, "frame before acquire")

	require.NoError(t, cam.Acquire(ctx))
	require.NoError(t, cam.Acquire(ctx), "acquire is idempotent")
	assert.Equal(t, int32(1), hits.Load())

	img, err := cam.Frame(ctx)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MIMEType)
	assert.Equal(t, 16, img.Width)
	assert.Equal(t, 9, img.Height)
	assert.Equal(t, fixed, img.CapturedAt)

	require.NoError(t, cam.Release())
	require.NoError(t, cam.Release())

	_, err = cam.Frame(ctx)
	assert.ErrorIs(t, err, models.ErrCapture, "frame after release")
}

func TestSnapshotCameraUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewSnapshotCamera(srv.URL).Acquire(context.Background())

	assert.ErrorIs(t, err, models.ErrCapture)
	assert.Contains(t, err.Error(), "HTTP 503")
}

func TestSnapshotCameraAcquireHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSnapshotCamera(srv.URL).Acquire(ctx)
	assert.ErrorIs(t, err, models.ErrCapture)
}

func TestSnapshotCameraRejectsNonImageFrame(t *testing.T) {
	var served atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !served.Swap(true) {
			_, _ = w.Write(capturetest.PNG(t, 1, 1))
			return
		}
		_, _ = w.Write([]byte("<html>login required</html>"))
	}))
	defer srv.Close()

	cam := NewSnapshotCamera(srv.URL)
	require.NoError(t, cam.Acquire(context.Background()))

	_, err := cam.Frame(context.Background())
	assert.ErrorIs(t, err, models.ErrCapture)
	assert.Contains(t, err.Error(), "not an image")
}
