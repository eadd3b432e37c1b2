package models

import (
	"errors"
	"fmt"
)

// Error kinds raised along the capture -> classify -> mint pipeline.
var (
	ErrCapture               = errors.New("capture failed")
	ErrClassificationService = errors.New("classification service failed")
	ErrNonAnimal             = errors.New("no animal detected")
	ErrMintService           = errors.New("mint service failed")
)

// StageError is a pipeline failure. Error() is the message shown to the user;
// errors.Is matches the Kind.
type StageError struct {
	Kind error
	Msg  string
	Err  error
}

func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.Error()
}

func (e *StageError) Is(target error) bool {
	return e != nil && target == e.Kind
}

func (e *StageError) Unwrap() error { return e.Err }

// CaptureError reports a missing frame or undecodable upload.
func CaptureError(format string, args ...any) error {
	return &StageError{Kind: ErrCapture, Msg: fmt.Sprintf(format, args...)}
}

// ClassificationServiceError wraps a transport or service failure of the classifier.
func ClassificationServiceError(err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Kind: ErrClassificationService, Err: err}
}

// NonAnimalError carries the user-facing message for a photo without an animal.
func NonAnimalError(description string) error {
	return &StageError{
		Kind: ErrNonAnimal,
		Msg:  "This doesn't appear to be an animal. Please try again with an animal photo.\n\nDescription: " + description,
	}
}

// MintServiceError carries the provider's message, or the transport error.
func MintServiceError(msg string, err error) error {
	return &StageError{Kind: ErrMintService, Msg: msg, Err: err}
}

// IsStage reports whether err is any pipeline stage failure.
func IsStage(err error) bool {
	var se *StageError
	return errors.As(err, &se)
}
