// Package mobile - Benchmark entry points for mobile hosts.
//
// The functions here only take and return types gomobile can bind: strings,
// ints, bools, float64 and error. Image paths arrive as one ';'-delimited
// string and are split once, here.
package mobile

import (
	"context"
	"sync"

	"github.com/nvr-ai/go-fps/benchmark"
	"github.com/nvr-ai/go-fps/images"
	"github.com/nvr-ai/go-fps/inference"
	"github.com/nvr-ai/go-fps/inference/providers"
	"github.com/nvr-ai/go-fps/preprocess"

	// Back-ends register themselves.
	_ "github.com/nvr-ai/go-fps/inference/engines/gorgonia"
	_ "github.com/nvr-ai/go-fps/inference/engines/onnxruntime"
	_ "github.com/nvr-ai/go-fps/inference/engines/tensorflowlite"
)

var (
	settingsMu sync.Mutex
	settings   = struct {
		options inference.Options
		decoder images.Decoder
	}{decoder: images.DefaultDecoder}

	newEngine       = inference.NewEngine
	newCollaborator = images.New
)

// SetLibraryPath sets the ONNX Runtime shared library used by later calls.
func SetLibraryPath(path string) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	settings.options.LibraryPath = path
}

// SetThreads sets the runtime thread count used by later calls. Zero keeps
// each back-end's default.
func SetThreads(n int) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	settings.options.Threads = n
}

// SetProvider selects the ONNX Runtime execution provider ("cpu", "coreml",
// "cuda", "tensorrt" or "openvino").
func SetProvider(name string) error {
	p, err := providers.ParseProviderBackend(name)
	if err != nil {
		return err
	}

	settingsMu.Lock()
	defer settingsMu.Unlock()
	settings.options.Provider = string(p)
	return nil
}

// SetDecoder selects the image decoder ("gocv", "vips" or "native").
func SetDecoder(name string) error {
	d, err := images.ParseDecoder(name)
	if err != nil {
		return err
	}

	settingsMu.Lock()
	defer settingsMu.Unlock()
	settings.decoder = d
	return nil
}

// EstimateORTFPS benchmarks an ONNX model with ONNX Runtime.
//
// torchInputMode selects channel-planar (CHW) input; otherwise the tensor is
// interleaved (HWC).
func EstimateORTFPS(modelPath, paths string, height, width, channels int, torchInputMode bool) (float64, error) {
	return estimate(inference.BackendORT, modelPath, paths, height, width, channels,
		preprocess.LayoutFromTorchMode(torchInputMode))
}

// EstimateTFLiteFPS benchmarks a .tflite model with the TensorFlow Lite
// interpreter.
func EstimateTFLiteFPS(modelPath, paths string, height, width, channels int, torchInputMode bool) (float64, error) {
	return estimate(inference.BackendTFLite, modelPath, paths, height, width, channels,
		preprocess.LayoutFromTorchMode(torchInputMode))
}

// EstimateTorchFPS benchmarks a model on the scripted-module runtime. Input is
// always channel-planar and channels must be 1 or 3.
func EstimateTorchFPS(modelPath, paths string, height, width, channels int) (float64, error) {
	return estimate(inference.BackendGorgonia, modelPath, paths, height, width, channels, preprocess.LayoutCHW)
}

func estimate(
	backend inference.Backend,
	modelPath, paths string,
	height, width, channels int,
	layout preprocess.Layout,
) (float64, error) {
	settingsMu.Lock()
	opts, decoder := settings.options, settings.decoder
	settingsMu.Unlock()

	collaborator, err := newCollaborator(decoder)
	if err != nil {
		return 0, &benchmark.Error{Kind: benchmark.ErrInvalidConfig, Backend: backend, Err: err}
	}

	engine, err := newEngine(backend, opts)
	if err != nil {
		return 0, &benchmark.Error{Kind: benchmark.ErrEngineInit, Backend: backend, Err: err}
	}

	runner := benchmark.NewRunner(benchmark.NewRunnerArgs{
		Engine: engine,
		Images: collaborator,
	})

	shape := preprocess.Shape{Height: height, Width: width, Channels: channels}
	result, err := runner.EstimateFPSFromList(context.Background(), modelPath, paths, shape, layout)
	if err != nil {
		return 0, err
	}
	return result.FPS, nil
}
