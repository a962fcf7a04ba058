// Package benchmark - Frames-per-second benchmarks for inference back-ends.
//
// A run loads a model once, prepares it for a fixed input shape and layout,
// then feeds every image of a path list through it, timing each invocation
// on its own. The reported number is the reciprocal of the mean latency.
package benchmark

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-fps/images"
	"github.com/nvr-ai/go-fps/inference"
	"github.com/nvr-ai/go-fps/logging"
	"github.com/nvr-ai/go-fps/preprocess"
	"github.com/nvr-ai/go-fps/util"
)

// Result is the outcome of one successful benchmark run.
type Result struct {
	// RunID identifies the run in reports.
	RunID string `json:"run_id" yaml:"run_id"`
	// Scenario is the scenario name when the run came from a Suite.
	Scenario  string            `json:"scenario,omitempty" yaml:"scenario,omitempty"`
	Backend   inference.Backend `json:"backend"            yaml:"backend"`
	ModelPath string            `json:"model_path"         yaml:"model_path"`
	Layout    preprocess.Layout `json:"layout"             yaml:"layout"`
	Shape     preprocess.Shape  `json:"shape"              yaml:"shape"`
	// Samples holds one latency per image, in path order.
	Samples     Samples `json:"samples"      yaml:"samples"`
	MeanSeconds float64 `json:"mean_seconds" yaml:"mean_seconds"`
	// FPS is the benchmark's headline number, 1 / MeanSeconds.
	FPS           float64       `json:"fps"            yaml:"fps"`
	Latency       LatencyStats  `json:"latency"        yaml:"latency"`
	TotalDuration time.Duration `json:"total_duration" yaml:"total_duration"`
	MemoryStats   MemoryMetrics `json:"memory_stats"   yaml:"memory_stats"`
	Timestamp     time.Time     `json:"timestamp"      yaml:"timestamp"`
}

// ProgressFunc is called after each timed inference, outside the timed window.
type ProgressFunc func(done, total int, latency time.Duration)

// Runner runs the load, prepare, iterate, aggregate protocol against one
// engine.
type Runner struct {
	engine   inference.Engine
	images   images.Collaborator
	logger   logging.Logger
	progress ProgressFunc
}

// NewRunnerArgs represents the arguments for creating a new runner.
type NewRunnerArgs struct {
	// Engine is the back-end under test. Required.
	Engine inference.Engine
	// Images loads input images. Defaults to the native decoder.
	Images images.Collaborator
	// Logger defaults to a no-op logger.
	Logger logging.Logger
	// Progress is optional.
	Progress ProgressFunc
}

// NewRunner creates a new benchmark runner.
//
// Arguments:
//   - args: The arguments for creating a new runner.
//
// Returns:
//   - *Runner: The runner.
func NewRunner(args NewRunnerArgs) *Runner {
	r := &Runner{
		engine:   args.Engine,
		images:   args.Images,
		logger:   args.Logger,
		progress: args.Progress,
	}
	if r.images == nil {
		r.images = images.NewNative()
	}
	if r.logger == nil {
		r.logger = logging.NewNoop()
	}
	return r
}

// Backend returns the back-end under test.
func (r *Runner) Backend() inference.Backend {
	return r.engine.Backend()
}

// EstimateFPSFromList splits a delimited path list on util.PathSeparator and
// runs EstimateFPS over it.
func (r *Runner) EstimateFPSFromList(
	ctx context.Context,
	modelPath string,
	delimited string,
	shape preprocess.Shape,
	layout preprocess.Layout,
) (*Result, error) {
	return r.EstimateFPS(ctx, modelPath, util.SplitPaths(delimited, util.PathSeparator), shape, layout)
}

// EstimateFPS benchmarks the model at modelPath over paths.
//
// Only the Invoke call is timed. Image loading and layout conversion happen
// before the clock starts, and logging, progress reporting and cancellation
// checks happen after it stops. Any failure aborts the run without a partial
// result.
//
// Arguments:
//   - ctx: Checked between images.
//   - modelPath: The model file.
//   - paths: The images, one inference each.
//   - shape: The input height, width and channel count.
//   - layout: The requested tensor layout. Engines that pin a layout override it.
//
// Returns:
//   - *Result: The result, with one sample per path.
//   - error: A *Error for run failures, or the context error on cancellation.
func (r *Runner) EstimateFPS(
	ctx context.Context,
	modelPath string,
	paths []string,
	shape preprocess.Shape,
	layout preprocess.Layout,
) (*Result, error) {
	if r.engine == nil {
		return nil, newError(ErrInvalidConfig, "", "", errors.New("no inference engine"))
	}

	backend := r.engine.Backend()
	log := r.logger.WithComponent(string(backend))

	if err := shape.Validate(); err != nil {
		return nil, newError(ErrInvalidConfig, backend, "", err)
	}
	if !inference.SupportsChannels(r.engine, shape.Channels) {
		return nil, newError(ErrUnsupportedChannelCount, backend, "",
			errors.Errorf("%d channels requested", shape.Channels))
	}
	if !images.SupportsChannels(r.images, shape.Channels) {
		return nil, newError(ErrUnsupportedChannelCount, backend, "",
			errors.Errorf("image decoder cannot produce %d channels", shape.Channels))
	}

	effective := inference.EffectiveLayout(r.engine, layout)
	if effective != layout {
		log.Debug("layout %s pinned to %s", layout, effective)
	}

	started := time.Now()

	log.Debug("loading model %s", modelPath)
	model, err := r.engine.Load(modelPath)
	if err != nil {
		return nil, newError(ErrModelLoad, backend, modelPath, err)
	}
	defer model.Close()

	spec := inference.TensorSpec{Shape: shape, Layout: effective}
	exec, err := model.Prepare(spec)
	if err != nil {
		return nil, newError(ErrEngineInit, backend, modelPath, err)
	}
	defer exec.Close()

	size := shape.Size()
	if n, static := inference.ElementCount(exec.InputShape()); static && n != int64(size) {
		return nil, newError(ErrEngineInit, backend, modelPath,
			errors.Errorf("model input %v holds %d elements, want %d", exec.InputShape(), n, size))
	}
	input := exec.Input()
	if len(input) < size {
		return nil, newError(ErrEngineInit, backend, modelPath,
			errors.Errorf("input buffer holds %d elements, want %d", len(input), size))
	}
	input = input[:size]
	log.Debug("prepared %v %s input", spec.Dims(), effective)

	startMem := readMemStats()
	samples := make(Samples, 0, len(paths))

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "benchmark cancelled after %d of %d images", i, len(paths))
		}

		img, err := r.images.Load(path, shape.Height, shape.Width, shape.Channels)
		if err != nil {
			return nil, newError(ErrImageLoad, backend, path, err)
		}
		if len(img.Pix) != size {
			return nil, newError(ErrImageLoad, backend, path,
				errors.Errorf("decoded %d bytes, want %d", len(img.Pix), size))
		}

		preprocess.Convert(img.Pix, input, shape, effective)

		start := time.Now()
		err = exec.Invoke()
		elapsed := time.Since(start)

		if err != nil {
			return nil, newError(ErrInference, backend, path, err)
		}
		samples = append(samples, elapsed)

		if r.progress != nil {
			r.progress(i+1, len(paths), elapsed)
		}
	}

	mean, err := samples.Mean()
	if err != nil {
		return nil, newError(ErrEmptyTimingSample, backend, "", nil)
	}
	latency, _ := samples.Stats()

	result := &Result{
		RunID:         uuid.NewString(),
		Backend:       backend,
		ModelPath:     modelPath,
		Layout:        effective,
		Shape:         shape,
		Samples:       samples,
		MeanSeconds:   mean,
		FPS:           FPS(mean),
		Latency:       latency,
		TotalDuration: time.Since(started),
		MemoryStats:   memoryDelta(startMem, readMemStats()),
		Timestamp:     started,
	}
	log.Debug("%d inferences, mean %.6fs, %.2f fps", len(samples), mean, result.FPS)

	return result, nil
}
