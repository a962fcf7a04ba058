package providers

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// CUDAOptions contains arguments for the CUDA provider.
// See:
// https://onnxruntime.ai/docs/execution-providers/CUDA-ExecutionProvider.html#configuration-options
type CUDAOptions struct {
	// The device ID.
	DeviceID int `json:"deviceID"              yaml:"deviceID"`
	// The size limit of the device memory arena in bytes. Zero means no limit.
	GPUMemLimit int64 `json:"gpuMemLimit"           yaml:"gpuMemLimit"`
	// The strategy for extending the device memory arena.
	// 0: kNextPowerOfTwo, 1: kSameAsRequested.
	ArenaExtendStrategy int `json:"arenaExtendStrategy"   yaml:"arenaExtendStrategy"`
	// The type of search done for cuDNN convolution algorithms.
	// 0: EXHAUSTIVE, 1: HEURISTIC, 2: DEFAULT.
	CudnnConvAlgoSearch int `json:"cudnnConvAlgoSearch"   yaml:"cudnnConvAlgoSearch"`
	// Whether to do copies in the default stream or use separate streams.
	DoCopyInDefaultStream bool `json:"doCopyInDefaultStream" yaml:"doCopyInDefaultStream"`
	// Allow TF32 math on Ampere and newer GPUs.
	UseTF32 int `json:"useTF32"               yaml:"useTF32"`
	// Prefer NHWC operators over NCHW.
	PreferNHWC int `json:"preferNHWC"            yaml:"preferNHWC"`
}

// settings returns the options as the key/value pairs ONNX Runtime expects.
func (o CUDAOptions) settings() map[string]string {
	m := map[string]string{
		"device_id":                 fmt.Sprintf("%d", o.DeviceID),
		"arena_extend_strategy":     arenaStrategy(o.ArenaExtendStrategy),
		"cudnn_conv_algo_search":    convAlgoSearch(o.CudnnConvAlgoSearch),
		"do_copy_in_default_stream": fmt.Sprintf("%d", boolToInt(o.DoCopyInDefaultStream)),
		"use_tf32":                  fmt.Sprintf("%d", o.UseTF32),
		"prefer_nhwc":               fmt.Sprintf("%d", o.PreferNHWC),
	}
	if o.GPUMemLimit > 0 {
		m["gpu_mem_limit"] = fmt.Sprintf("%d", o.GPUMemLimit)
	}
	return m
}

// ToNativeProviderOptions converts the CUDA options to native provider
// options. The caller must Destroy the result.
func (o CUDAOptions) ToNativeProviderOptions() (*ort.CUDAProviderOptions, error) {
	opts, err := ort.NewCUDAProviderOptions()
	if err != nil {
		return nil, err
	}

	if err := opts.Update(o.settings()); err != nil {
		opts.Destroy()
		return nil, err
	}

	return opts, nil
}

func arenaStrategy(v int) string {
	if v == 1 {
		return "kSameAsRequested"
	}
	return "kNextPowerOfTwo"
}

func convAlgoSearch(v int) string {
	switch v {
	case 1:
		return "HEURISTIC"
	case 2:
		return "DEFAULT"
	default:
		return "EXHAUSTIVE"
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
