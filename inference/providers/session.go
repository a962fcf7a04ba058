package providers

import (
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// NewSessionOptions creates session options for cfg.
//
// Order of operations:
//  1. Threading: intra-op and inter-op thread counts.
//  2. Graph: optimization level, execution mode and memory planning.
//  3. Execution provider: appended last so it sees the final options.
//
// The environment must already be initialized. The caller must Destroy the
// result.
//
// Arguments:
//   - cfg: The provider configuration.
//
// Returns:
//   - *ort.SessionOptions: The session options.
//   - error: An error if any option is rejected by the runtime.
func NewSessionOptions(cfg Config) (*ort.SessionOptions, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "error creating ORT session options")
	}

	if err := applyOptions(options, cfg); err != nil {
		options.Destroy()
		return nil, err
	}

	return options, nil
}

func applyOptions(options *ort.SessionOptions, cfg Config) error {
	opt := cfg.Optimization

	if err := options.SetIntraOpNumThreads(opt.IntraOpNumThreads); err != nil {
		return errors.Wrap(err, "error setting intra-op threads")
	}
	if err := options.SetInterOpNumThreads(opt.InterOpNumThreads); err != nil {
		return errors.Wrap(err, "error setting inter-op threads")
	}
	if err := options.SetGraphOptimizationLevel(opt.GraphOptimizationLevel); err != nil {
		return errors.Wrap(err, "error setting graph optimization level")
	}
	if err := options.SetExecutionMode(opt.ExecutionMode); err != nil {
		return errors.Wrap(err, "error setting execution mode")
	}
	if err := options.SetMemPattern(opt.EnableMemoryPattern); err != nil {
		return errors.Wrap(err, "error setting memory pattern")
	}
	if err := options.SetCpuMemArena(opt.EnableCPUMemArena); err != nil {
		return errors.Wrap(err, "error setting CPU memory arena")
	}

	switch cfg.Backend {
	case CPUProviderBackend, "":
		return nil
	case CoreMLProviderBackend:
		if err := options.AppendExecutionProviderCoreML(cfg.CoreML.flags()); err != nil {
			return errors.Wrap(err, "error enabling CoreML")
		}
	case OpenVINOProviderBackend:
		if err := options.AppendExecutionProviderOpenVINO(cfg.OpenVINO.settings()); err != nil {
			return errors.Wrap(err, "error enabling OpenVINO")
		}
	case CUDAProviderBackend:
		cuda, err := cfg.CUDA.ToNativeProviderOptions()
		if err != nil {
			return errors.Wrap(err, "error converting CUDA options")
		}
		defer cuda.Destroy()
		if err := options.AppendExecutionProviderCUDA(cuda); err != nil {
			return errors.Wrap(err, "error enabling CUDA")
		}
	case TensorRTProviderBackend:
		trt, err := ort.NewTensorRTProviderOptions()
		if err != nil {
			return errors.Wrap(err, "error creating TensorRT options")
		}
		defer trt.Destroy()
		if err := trt.Update(map[string]string{"device_id": "0"}); err != nil {
			return errors.Wrap(err, "error converting TensorRT options")
		}
		if err := options.AppendExecutionProviderTensorRT(trt); err != nil {
			return errors.Wrap(err, "error enabling TensorRT")
		}
	default:
		return errors.Errorf("unsupported execution provider %q", cfg.Backend)
	}

	return nil
}
