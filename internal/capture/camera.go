package capture

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/wildmint-labs/wildmint/internal/models"
)

// Camera is a live image source. It is acquired once per session, read any
// number of times and released on reset or teardown.
type Camera interface {
	Acquire(ctx context.Context) error
	Frame(ctx context.Context) (models.CapturedImage, error)
	Release() error
}

// SnapshotCamera reads frames from an HTTP still-image endpoint, as exposed by
// IP cameras and webcam bridges
type SnapshotCamera struct {
	URL        string
	HTTPClient *http.Client

	now    func() time.Time
	mu     sync.Mutex
	active bool
}

// NewSnapshotCamera creates a camera for the given snapshot URL
func NewSnapshotCamera(url string) *SnapshotCamera {
	return &SnapshotCamera{
		URL: url,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
}

// Acquire checks the camera answers and marks the stream active
func (c *SnapshotCamera) Acquire(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return nil
	}

	resp, err := c.get(ctx)
	if err != nil {
		return models.CaptureError("camera unavailable: %v", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.CaptureError("camera unavailable: HTTP %d", resp.StatusCode)
	}

	c.active = true
	slog.Info("Camera acquired", "url", c.URL)
	return nil
}

// Frame reads one still image from the active stream
func (c *SnapshotCamera) Frame(ctx context.Context) (models.CapturedImage, error) {
	c.mu.Lock()
	active := c.active
	c.mu.Unlock()
	if !active {
		return models.CapturedImage{}, models.CaptureError("no active camera stream")
	}

	resp, err := c.get(ctx)
	if err != nil {
		return models.CapturedImage{}, models.CaptureError("failed to read camera frame: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.CapturedImage{}, models.CaptureError("failed to read camera frame: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageSize+1))
	if err != nil {
		return models.CapturedImage{}, models.CaptureError("failed to read camera frame: %v", err)
	}

	return Import(data, resp.Header.Get("Content-Type"), c.now())
}

// Release stops the stream. Releasing an inactive camera is a no-op.
func (c *SnapshotCamera) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return nil
	}
	c.active = false
	c.HTTPClient.CloseIdleConnections()
	slog.Info("Camera released", "url", c.URL)
	return nil
}

func (c *SnapshotCamera) get(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "image/*")
	return c.HTTPClient.Do(req)
}
