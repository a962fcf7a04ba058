// Package onnxruntime - ONNX Runtime inference back-end.
package onnxruntime

import (
	"os"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/nvr-ai/go-fps/inference"
	"github.com/nvr-ai/go-fps/inference/providers"
)

func init() {
	inference.Register(inference.BackendORT, func(opts inference.Options) (inference.Engine, error) {
		return New(opts)
	})
}

// Engine loads ONNX models into ONNX Runtime sessions.
type Engine struct {
	config providers.Config
}

// New initializes the ONNX Runtime environment and creates an engine.
//
// Arguments:
//   - opts: Threads overrides the intra-op thread count, LibraryPath locates
//     the shared library and Provider selects the execution provider.
//
// Returns:
//   - *Engine: The engine.
//   - error: An error if the provider is unknown or the runtime library
//     cannot be loaded.
func New(opts inference.Options) (*Engine, error) {
	cfg := providers.DefaultConfig()
	if opts.Threads > 0 {
		cfg.Optimization.IntraOpNumThreads = opts.Threads
	}

	backend, err := providers.ParseProviderBackend(opts.Provider)
	if err != nil {
		return nil, err
	}
	cfg.Backend = backend

	return NewWithConfig(opts.LibraryPath, cfg)
}

// NewWithConfig creates an engine with an explicit provider configuration.
func NewWithConfig(libPath string, cfg providers.Config) (*Engine, error) {
	if err := providers.InitializeEnvironment(libPath); err != nil {
		return nil, err
	}
	return &Engine{config: cfg}, nil
}

// Backend implements inference.Engine.
func (e *Engine) Backend() inference.Backend {
	return inference.BackendORT
}

// Load reads the model's input and output metadata. The session itself is
// created by Prepare.
func (e *Engine) Load(path string) (inference.Model, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(err, "model not found")
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read model %s", path)
	}
	if len(inputs) == 0 {
		return nil, errors.Errorf("model %s declares no inputs", path)
	}

	outputNames := make([]string, len(outputs))
	for i, o := range outputs {
		outputNames[i] = o.Name
	}

	return &Model{
		config:      e.config,
		path:        path,
		input:       inputs[0],
		outputNames: outputNames,
	}, nil
}

// Model is a model whose metadata has been read.
type Model struct {
	config      providers.Config
	path        string
	input       ort.InputOutputInfo
	outputNames []string
}

// Prepare creates a session feeding a float32 tensor of spec's dimensions into
// the model's first input.
func (m *Model) Prepare(spec inference.TensorSpec) (inference.Executable, error) {
	if m.input.DataType != ort.TensorElementDataTypeFloat {
		return nil, errors.Errorf("input %q has element type %v, want float32", m.input.Name, m.input.DataType)
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(spec.Dims()...))
	if err != nil {
		return nil, errors.Wrap(err, "error creating input tensor")
	}

	options, err := providers.NewSessionOptions(m.config)
	if err != nil {
		input.Destroy()
		return nil, err
	}
	defer options.Destroy()

	session, err := ort.NewDynamicAdvancedSession(m.path, []string{m.input.Name}, m.outputNames, options)
	if err != nil {
		input.Destroy()
		return nil, errors.Wrap(err, "error creating ORT session")
	}

	return &Executable{
		session:  session,
		input:    input,
		declared: m.input.Dimensions,
		outputs:  make([]ort.Value, len(m.outputNames)),
	}, nil
}

// Close implements inference.Model.
func (m *Model) Close() error {
	return nil
}

// Executable is a live ONNX Runtime session.
type Executable struct {
	session  *ort.DynamicAdvancedSession
	input    *ort.Tensor[float32]
	declared ort.Shape
	outputs  []ort.Value
}

// Input implements inference.Executable.
func (x *Executable) Input() []float32 {
	return x.input.GetData()
}

// InputShape implements inference.Executable.
func (x *Executable) InputShape() []int64 {
	return []int64(x.declared)
}

// Invoke runs the session once. Outputs are allocated by the runtime and
// released straight away.
func (x *Executable) Invoke() error {
	for i := range x.outputs {
		x.outputs[i] = nil
	}

	err := x.session.Run([]ort.Value{x.input}, x.outputs)

	for _, o := range x.outputs {
		if o != nil {
			o.Destroy()
		}
	}
	return err
}

// Close releases the session and the input tensor.
func (x *Executable) Close() error {
	var err error
	if x.session != nil {
		err = x.session.Destroy()
		x.session = nil
	}
	if x.input != nil {
		x.input.Destroy()
		x.input = nil
	}
	return err
}
