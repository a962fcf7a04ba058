// Package gorgonia - ONNX graphs executed on gorgonia tape machines.
//
// The back-end always receives channel-planar (CHW) input and only accepts
// one or three channels.
package gorgonia

import (
	"fmt"
	"os"

	"github.com/owulveryck/onnx-go"
	"github.com/owulveryck/onnx-go/backend/x/gorgonnx"
	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-fps/inference"
	"github.com/nvr-ai/go-fps/preprocess"
)

func init() {
	inference.Register(inference.BackendGorgonia, func(opts inference.Options) (inference.Engine, error) {
		return New(), nil
	})
}

// Engine compiles ONNX models into gorgonia expression graphs.
type Engine struct{}

// New creates an engine.
func New() *Engine {
	return &Engine{}
}

// Backend implements inference.Engine.
func (e *Engine) Backend() inference.Backend {
	return inference.BackendGorgonia
}

// SupportedChannels implements inference.ChannelConstrained.
func (e *Engine) SupportedChannels() []int {
	return []int{1, 3}
}

// PinnedLayout implements inference.LayoutPinned.
func (e *Engine) PinnedLayout() preprocess.Layout {
	return preprocess.LayoutCHW
}

// Load decodes the protobuf model into a fresh graph.
func (e *Engine) Load(path string) (m inference.Model, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "model not found")
	}

	backend := gorgonnx.NewGraph()
	model := onnx.NewModel(backend)

	defer recoverInto(&err, "decode")
	if err := model.UnmarshalBinary(b); err != nil {
		return nil, errors.Wrapf(err, "failed to decode model %s", path)
	}
	if len(model.Input) == 0 {
		return nil, errors.Errorf("model %s declares no inputs", path)
	}

	return &Model{backend: backend, model: model}, nil
}

// Model is a decoded graph. A graph carries its input, so a model can only
// be prepared once.
type Model struct {
	backend  *gorgonnx.Graph
	model    *onnx.Model
	prepared bool
}

// Prepare binds a 1xCxHxW float32 tensor to the model's first input.
func (m *Model) Prepare(spec inference.TensorSpec) (x inference.Executable, err error) {
	if m.prepared {
		return nil, errors.New("model already prepared")
	}
	if spec.Layout != preprocess.LayoutCHW {
		return nil, errors.Errorf("layout %s not supported, want chw", spec.Layout)
	}

	dims := spec.Dims()
	shape := make([]int, len(dims))
	for i, d := range dims {
		shape[i] = int(d)
	}
	buf := make([]float32, spec.Shape.Size())

	// The graph reads the tensor's backing buffer on every run, so writes
	// into buf are picked up without rebinding.
	input := tensor.New(tensor.WithShape(shape...), tensor.WithBacking(buf))

	defer recoverInto(&err, "prepare")
	if err := m.model.SetInput(0, input); err != nil {
		return nil, errors.Wrap(err, "failed to bind input")
	}

	// Build the expression graph and its tape machine here so unsupported
	// operators fail before any timed run.
	if err := m.backend.PopulateExprgraph(); err != nil {
		return nil, errors.Wrap(err, "failed to build graph")
	}
	exprgraph, err := m.backend.GetExprGraph()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build graph")
	}
	vm := G.NewTapeMachine(exprgraph)
	m.backend.SetVM(vm)
	m.prepared = true

	return &Executable{backend: m.backend, vm: vm, buf: buf, dims: dims}, nil
}

// Close implements inference.Model.
func (m *Model) Close() error {
	m.backend = nil
	m.model = nil
	return nil
}

// Executable runs the bound graph.
type Executable struct {
	backend *gorgonnx.Graph
	vm      G.VM
	buf     []float32
	dims    []int64
}

// Input implements inference.Executable.
func (x *Executable) Input() []float32 {
	return x.buf
}

// InputShape implements inference.Executable.
func (x *Executable) InputShape() []int64 {
	return x.dims
}

// Invoke runs the graph once.
func (x *Executable) Invoke() (err error) {
	defer recoverInto(&err, "run")
	return x.backend.Run()
}

// Close implements inference.Executable.
func (x *Executable) Close() error {
	x.backend = nil
	if x.vm == nil {
		return nil
	}
	err := x.vm.Close()
	x.vm = nil
	return err
}

// recoverInto turns a panic from the graph compiler into an error. Gorgonia
// panics on some shape mismatches instead of returning them.
func recoverInto(err *error, stage string) {
	if r := recover(); r != nil {
		*err = errors.Errorf("gorgonia %s panicked: %s", stage, fmt.Sprint(r))
	}
}
