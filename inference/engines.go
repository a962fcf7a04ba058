// Package inference - Back-end identifiers and the engine registry.
package inference

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Backend is the identifier of an inference runtime.
type Backend string

const (
	// BackendORT is the ONNX Runtime graph executor.
	BackendORT Backend = "ort"
	// BackendTFLite is the TensorFlow Lite interpreter.
	BackendTFLite Backend = "tflite"
	// BackendGorgonia runs ONNX graphs compiled onto gorgonia tape machines.
	BackendGorgonia Backend = "gorgonia"
)

// Backends lists all known back-ends.
var Backends = []Backend{BackendORT, BackendTFLite, BackendGorgonia}

// ParseBackend parses a back-end name, accepting a few common aliases.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ort", "onnx", "onnxruntime":
		return BackendORT, nil
	case "tflite", "tf-lite", "tensorflow-lite":
		return BackendTFLite, nil
	case "gorgonia", "gorgonnx", "torch", "torchscript":
		return BackendGorgonia, nil
	default:
		return "", fmt.Errorf("unknown inference backend %q", s)
	}
}

// Options carries back-end specific settings. Keys a back-end does not know
// are ignored.
type Options struct {
	// Threads is the number of intra-op threads (0 lets the runtime decide).
	Threads int `json:"threads" yaml:"threads"`
	// LibraryPath points at the native runtime library where one is needed.
	LibraryPath string `json:"libraryPath" yaml:"libraryPath"`
	// Provider names an execution provider for runtimes that have them.
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`
}

// Factory creates an engine.
type Factory func(opts Options) (Engine, error)

var (
	registryMu sync.RWMutex
	registry   = map[Backend]Factory{}
)

// Register makes a back-end available to NewEngine. It panics on duplicates,
// which only happens through a programming error in an init function.
func Register(backend Backend, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, dup := registry[backend]; dup {
		panic(fmt.Sprintf("inference: backend %q registered twice", backend))
	}
	registry[backend] = factory
}

// NewEngine creates an engine for a registered back-end.
//
// Arguments:
//   - backend: The back-end to create.
//   - opts: Back-end options.
//
// Returns:
//   - Engine: The engine.
//   - error: An error if the back-end is not registered or fails to start.
func NewEngine(backend Backend, opts Options) (Engine, error) {
	registryMu.RLock()
	factory, ok := registry[backend]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("inference backend %q is not registered (registered: %v)", backend, Registered())
	}
	return factory(opts)
}

// Registered returns the registered back-ends in sorted order.
func Registered() []Backend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]Backend, 0, len(registry))
	for b := range registry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
