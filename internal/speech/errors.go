package speech

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable means the platform offers no driver for the capability.
	ErrUnavailable = errors.New("speech capability unavailable")
	// ErrBusy means the arena is checked out, or the handle already runs an operation.
	ErrBusy = errors.New("speech resource busy")
	// ErrReleased is returned by calls on a handle after Release.
	ErrReleased = errors.New("speech handle released")
	// ErrPlayback wraps synthesis and playback failures.
	ErrPlayback = errors.New("speech playback failed")
)

// Recognition error codes.
const (
	CodeNoSpeech     = "no-speech"
	CodeAudioCapture = "audio-capture"
	CodeNetwork      = "network"
	CodeAborted      = "aborted"
)

// RecognitionError is a failed recognition attempt with a platform code.
type RecognitionError struct {
	Code string
	Err  error
}

func (e *RecognitionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("recognition error: %s", e.Code)
	}
	return fmt.Sprintf("recognition error: %s: %v", e.Code, e.Err)
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}
