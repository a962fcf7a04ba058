package benchmark

import (
	stderrors "errors"
	"fmt"

	"github.com/nvr-ai/go-fps/inference"
)

// Failure kinds. Every runner error matches exactly one of these with
// errors.Is.
var (
	// ErrModelLoad means the model file is missing, unreadable or malformed.
	ErrModelLoad = stderrors.New("model load failed")
	// ErrEngineInit means the runtime could not build an executable for the
	// model and input spec.
	ErrEngineInit = stderrors.New("engine initialization failed")
	// ErrInference means a single inference invocation failed.
	ErrInference = stderrors.New("inference failed")
	// ErrUnsupportedChannelCount means the back-end cannot take the requested
	// number of channels.
	ErrUnsupportedChannelCount = stderrors.New("unsupported channel count")
	// ErrEmptyTimingSample means there was nothing to aggregate.
	ErrEmptyTimingSample = stderrors.New("empty timing sample")
	// ErrImageLoad means an input image could not be decoded.
	ErrImageLoad = stderrors.New("image load failed")
	// ErrInvalidConfig means the run parameters are unusable.
	ErrInvalidConfig = stderrors.New("invalid configuration")
)

// Error is a failed benchmark run.
type Error struct {
	// Kind is one of the Err* sentinels.
	Kind    error
	Backend inference.Backend
	// Path is the model or image path involved, if any.
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Backend != "" {
		msg = fmt.Sprintf("%s: %s", e.Backend, msg)
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the failure kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func newError(kind error, backend inference.Backend, path string, err error) *Error {
	return &Error{Kind: kind, Backend: backend, Path: path, Err: err}
}

// KindOf returns the failure kind of err, or nil if err did not come from a
// benchmark run.
func KindOf(err error) error {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	if stderrors.Is(err, ErrEmptyTimingSample) {
		return ErrEmptyTimingSample
	}
	return nil
}
