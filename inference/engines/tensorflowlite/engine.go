// Package tensorflowlite - TensorFlow Lite inference back-end.
package tensorflowlite

import (
	"os"

	"github.com/mattn/go-tflite"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-fps/inference"
)

func init() {
	inference.Register(inference.BackendTFLite, func(opts inference.Options) (inference.Engine, error) {
		return New(opts), nil
	})
}

// Engine loads .tflite flatbuffers into interpreters.
type Engine struct {
	threads int
}

// New creates an engine. Threads defaults to one.
func New(opts inference.Options) *Engine {
	threads := opts.Threads
	if threads <= 0 {
		threads = 1
	}
	return &Engine{threads: threads}
}

// Backend implements inference.Engine.
func (e *Engine) Backend() inference.Backend {
	return inference.BackendTFLite
}

// Load implements inference.Engine.
func (e *Engine) Load(path string) (inference.Model, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(err, "model not found")
	}

	model := tflite.NewModelFromFile(path)
	if model == nil {
		return nil, errors.Errorf("cannot load model %s", path)
	}

	return &Model{model: model, threads: e.threads}, nil
}

// Model is a loaded flatbuffer model.
type Model struct {
	model   *tflite.Model
	threads int
}

// Prepare builds an interpreter and allocates its tensors. If the model's
// input dimensions differ from spec, the input is resized first.
func (m *Model) Prepare(spec inference.TensorSpec) (inference.Executable, error) {
	options := tflite.NewInterpreterOptions()
	options.SetNumThread(m.threads)

	interpreter := tflite.NewInterpreter(m.model, options)
	if interpreter == nil {
		options.Delete()
		return nil, errors.New("cannot create interpreter")
	}

	x := &Executable{interpreter: interpreter, options: options}

	if status := interpreter.AllocateTensors(); status != tflite.OK {
		x.Close()
		return nil, errors.Errorf("allocate tensors failed: status %v", status)
	}

	input := interpreter.GetInputTensor(0)
	if input == nil {
		x.Close()
		return nil, errors.New("model declares no input tensor")
	}
	if input.Type() != tflite.Float32 {
		x.Close()
		return nil, errors.Errorf("input tensor has type %v, want float32", input.Type())
	}

	want := spec.Dims()
	if !sameDims(tensorDims(input), want) {
		dims := make([]int32, len(want))
		for i, d := range want {
			dims[i] = int32(d)
		}
		if status := interpreter.ResizeInputTensor(0, dims); status != tflite.OK {
			x.Close()
			return nil, errors.Errorf("resize input to %v failed: status %v", want, status)
		}
		if status := interpreter.AllocateTensors(); status != tflite.OK {
			x.Close()
			return nil, errors.Errorf("allocate tensors after resize failed: status %v", status)
		}
		input = interpreter.GetInputTensor(0)
	}

	x.input = input
	x.shape = tensorDims(input)
	return x, nil
}

// Close implements inference.Model.
func (m *Model) Close() error {
	if m.model != nil {
		m.model.Delete()
		m.model = nil
	}
	return nil
}

// Executable is an interpreter with allocated tensors.
type Executable struct {
	interpreter *tflite.Interpreter
	options     *tflite.InterpreterOptions
	input       *tflite.Tensor
	shape       []int64
}

// Input returns the interpreter's own input buffer.
func (x *Executable) Input() []float32 {
	return x.input.Float32s()
}

// InputShape implements inference.Executable.
func (x *Executable) InputShape() []int64 {
	return x.shape
}

// Invoke implements inference.Executable.
func (x *Executable) Invoke() error {
	if status := x.interpreter.Invoke(); status != tflite.OK {
		return errors.Errorf("invoke failed: status %v", status)
	}
	return nil
}

// Close implements inference.Executable.
func (x *Executable) Close() error {
	if x.interpreter != nil {
		x.interpreter.Delete()
		x.interpreter = nil
	}
	if x.options != nil {
		x.options.Delete()
		x.options = nil
	}
	return nil
}

func tensorDims(t *tflite.Tensor) []int64 {
	dims := make([]int64, t.NumDims())
	for i := range dims {
		dims[i] = int64(t.Dim(i))
	}
	return dims
}

func sameDims(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
