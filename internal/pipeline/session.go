package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wildmint-labs/wildmint/internal/capture"
	"github.com/wildmint-labs/wildmint/internal/classification"
	"github.com/wildmint-labs/wildmint/internal/mint"
	"github.com/wildmint-labs/wildmint/internal/models"
	"github.com/wildmint-labs/wildmint/internal/providers"
)

// Options are the collaborators of a session. Camera and Observer are optional.
// Structured must match the classifier's output mode.
type Options struct {
	Owner      string
	Classifier providers.Classifier
	Structured bool
	Minter     mint.Minter
	Camera     capture.Camera
	Observer   Observer
	Now        func() time.Time
}

// Session drives one user through capture, classification and minting.
// State reads are safe while a stage is running; stage work happens outside
// the lock and a second operation arriving meanwhile gets ErrBusy.
type Session struct {
	id         string
	owner      string
	classifier providers.Classifier
	parse      func(string) models.ClassificationResult
	minter     mint.Minter
	camera     capture.Camera
	observer   Observer
	now        func() time.Time

	mu             sync.Mutex
	state          State
	busy           bool
	cameraAcquired bool
	image          *models.CapturedImage
	classification *models.ClassificationResult
	mintResult     *models.MintResult
	errMsg         string
	createdAt      time.Time
	updatedAt      time.Time
	enteredAt      time.Time
}

// NewSession creates a session in AwaitingCapture
func NewSession(opts Options) (*Session, error) {
	if opts.Classifier == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	if opts.Minter == nil {
		return nil, fmt.Errorf("minter is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	t := now()
	return &Session{
		id:         uuid.NewString(),
		owner:      strings.TrimSpace(opts.Owner),
		classifier: opts.Classifier,
		parse:      classification.Parser(opts.Structured),
		minter:     opts.Minter,
		camera:     opts.Camera,
		observer:   opts.Observer,
		now:        now,
		state:      AwaitingCapture,
		createdAt:  t,
		updatedAt:  t,
		enteredAt:  t,
	}, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) Owner() string { return s.owner }

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Capture reads a frame from the camera, acquiring it on first use
func (s *Session) Capture(ctx context.Context) error {
	if err := s.begin(ReadyToClassify); err != nil {
		return err
	}
	if s.camera == nil {
		s.end()
		return models.CaptureError("no camera configured")
	}

	img, err := s.frame(ctx)
	if err != nil {
		s.mu.Lock()
		s.busy = false
		s.errMsg = err.Error()
		s.updatedAt = s.now()
		s.mu.Unlock()
		slog.Warn("Capture failed", "session_id", s.id, "error", err)
		return err
	}
	return s.store(img)
}

// ImportFile accepts an uploaded image in place of a camera frame
func (s *Session) ImportFile(data []byte, mimeType string) error {
	if err := s.begin(ReadyToClassify); err != nil {
		return err
	}

	img, err := capture.Import(data, mimeType, s.now())
	if err != nil {
		s.mu.Lock()
		s.busy = false
		s.errMsg = err.Error()
		s.updatedAt = s.now()
		s.mu.Unlock()
		slog.Warn("Import failed", "session_id", s.id, "error", err)
		return err
	}
	return s.store(img)
}

// Confirm classifies the captured image and, for an animal, mints it. It
// returns the stage error that moved the session to Failed, if any.
func (s *Session) Confirm(ctx context.Context) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	if err := s.transition(Classifying, nil); err != nil {
		s.mu.Unlock()
		return err
	}
	s.busy = true
	img := *s.image
	s.mu.Unlock()

	defer s.end()

	slog.Info("Classifying image", "session_id", s.id, "mime_type", img.MIMEType, "size", len(img.Data))
	raw, err := s.classifier.Classify(ctx, img)
	if err != nil {
		if !models.IsStage(err) {
			err = models.ClassificationServiceError(err)
		}
		return s.fail(err)
	}

	result := s.parse(raw)
	slog.Info("Classified image", "session_id", s.id, "species", result.Species, "is_animal", result.IsAnimal)

	s.mu.Lock()
	s.classification = &result
	if !result.IsAnimal {
		s.mu.Unlock()
		return s.fail(models.NonAnimalError(result.Description))
	}
	if err := s.transition(Minting, nil); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	minted, err := s.minter.Mint(ctx, mint.Input{Image: img, Result: result, Owner: s.owner})
	if err != nil {
		if !models.IsStage(err) {
			err = models.MintServiceError(err.Error(), err)
		}
		return s.fail(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mintResult = &minted
	return s.transition(Succeeded, nil)
}

// Reset returns to AwaitingCapture, clearing all session data and releasing the camera
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	if err := s.transition(AwaitingCapture, nil); err != nil {
		return err
	}

	s.image = nil
	s.classification = nil
	s.mintResult = nil
	s.errMsg = ""
	s.releaseCamera()
	return nil
}

// Close releases the camera. The session must not be used afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releaseCamera()
}

// Image returns the captured image, if any
func (s *Session) Image() (models.CapturedImage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.image == nil {
		return models.CapturedImage{}, false
	}
	return *s.image, true
}

// Snapshot returns a copy of the session suitable for JSON output
func (s *Session) Snapshot() models.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := models.SessionView{
		ID:        s.id,
		Owner:     s.owner,
		State:     string(s.state),
		Error:     s.errMsg,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
	if s.image != nil {
		summary := s.image.Summary()
		view.Image = &summary
	}
	if s.classification != nil {
		c := *s.classification
		view.Classification = &c
	}
	if s.mintResult != nil {
		m := *s.mintResult
		view.Mint = &m
	}
	return view
}

// begin claims the session for an operation that will move it to target
func (s *Session) begin(target State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	if !isAllowedTransition(s.state, target) {
		return &TransitionError{From: s.state, To: target}
	}
	s.busy = true
	return nil
}

func (s *Session) end() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

func (s *Session) frame(ctx context.Context) (models.CapturedImage, error) {
	s.mu.Lock()
	acquired := s.cameraAcquired
	s.mu.Unlock()

	if !acquired {
		if err := s.camera.Acquire(ctx); err != nil {
			return models.CapturedImage{}, err
		}
		s.mu.Lock()
		s.cameraAcquired = true
		s.mu.Unlock()
	}
	return s.camera.Frame(ctx)
}

func (s *Session) store(img models.CapturedImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err := s.transition(ReadyToClassify, nil); err != nil {
		return err
	}
	s.image = &img
	s.errMsg = ""
	slog.Info("Image captured", "session_id", s.id, "mime_type", img.MIMEType, "width", img.Width, "height", img.Height)
	return nil
}

// fail moves an in-flight session to Failed and returns cause
func (s *Session) fail(cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transition(Failed, cause); err != nil {
		return errors.Join(cause, err)
	}
	s.errMsg = cause.Error()
	slog.Error("Pipeline failed", "session_id", s.id, "error", cause)
	return cause
}

// transition must be called with mu held
func (s *Session) transition(to State, cause error) error {
	from := s.state
	if !isAllowedTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}

	t := s.now()
	elapsed := t.Sub(s.enteredAt)
	s.state = to
	s.enteredAt = t
	s.updatedAt = t

	slog.Debug("Session transition", "session_id", s.id, "from", from, "to", to)
	if s.observer != nil {
		s.observer.OnTransition(Transition{
			SessionID: s.id,
			From:      from,
			To:        to,
			Elapsed:   elapsed,
			Err:       cause,
		})
	}
	return nil
}

// releaseCamera must be called with mu held
func (s *Session) releaseCamera() error {
	if s.camera == nil || !s.cameraAcquired {
		return nil
	}
	s.cameraAcquired = false
	if err := s.camera.Release(); err != nil {
		slog.Warn("Failed to release camera", "session_id", s.id, "error", err)
		return err
	}
	return nil
}
