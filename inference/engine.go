// Package inference - Inference engine capability interfaces.
//
// Every back-end implements the same three steps: Load deserializes a model
// file, Prepare builds something executable for a given input tensor spec, and
// Invoke runs it once over the prepared input buffer.
package inference

import (
	"github.com/nvr-ai/go-fps/preprocess"
)

// TensorSpec describes the input tensor a benchmark run will feed.
type TensorSpec struct {
	Shape  preprocess.Shape
	Layout preprocess.Layout
}

// Dims returns the batched dimensions of the spec.
func (s TensorSpec) Dims() []int64 {
	return s.Shape.Dims(s.Layout)
}

// Engine loads models for one back-end.
type Engine interface {
	// Backend identifies the runtime behind this engine.
	Backend() Backend
	// Load deserializes the model at path. Errors mean the file is missing,
	// unreadable or malformed.
	Load(path string) (Model, error)
}

// Model is a loaded, not yet executable, model.
type Model interface {
	// Prepare builds an executable for spec. Errors mean the runtime cannot
	// execute this model with that input.
	Prepare(spec TensorSpec) (Executable, error)
	Close() error
}

// Executable is a prepared session, interpreter or module.
//
// Input returns the buffer the next Invoke reads from. The buffer belongs to
// the executable and is only valid until Close.
type Executable interface {
	Input() []float32
	// InputShape is the input shape as declared by the model, which may hold
	// -1 for dynamic dimensions.
	InputShape() []int64
	// Invoke runs the model once. Outputs are discarded.
	Invoke() error
	Close() error
}

// ChannelConstrained is implemented by engines that only accept a fixed set of
// channel counts.
type ChannelConstrained interface {
	SupportedChannels() []int
}

// LayoutPinned is implemented by engines that always consume one layout
// regardless of the requested one.
type LayoutPinned interface {
	PinnedLayout() preprocess.Layout
}

// SupportsChannels reports whether e accepts the given channel count.
func SupportsChannels(e Engine, channels int) bool {
	constrained, ok := e.(ChannelConstrained)
	if !ok {
		return true
	}
	for _, c := range constrained.SupportedChannels() {
		if c == channels {
			return true
		}
	}
	return false
}

// EffectiveLayout returns the layout e will actually receive for requested.
func EffectiveLayout(e Engine, requested preprocess.Layout) preprocess.Layout {
	if pinned, ok := e.(LayoutPinned); ok {
		return pinned.PinnedLayout()
	}
	return requested
}

// ElementCount multiplies static dimensions. The second result is false when
// any dimension is dynamic (<= 0).
func ElementCount(dims []int64) (int64, bool) {
	if len(dims) == 0 {
		return 0, false
	}
	n := int64(1)
	for _, d := range dims {
		if d <= 0 {
			return 0, false
		}
		n *= d
	}
	return n, true
}
