// Package providers - ONNX Runtime execution providers and session options.
package providers

import (
	"fmt"
	"strings"
)

// ProviderBackend represents different ONNX Runtime execution providers
type ProviderBackend string

const (
	// CPUProviderBackend uses the default CPU kernels.
	CPUProviderBackend ProviderBackend = "cpu"
	// CUDAProviderBackend uses NVIDIA CUDA for GPU acceleration.
	CUDAProviderBackend ProviderBackend = "cuda"
	// TensorRTProviderBackend uses NVIDIA TensorRT for optimized inference.
	TensorRTProviderBackend ProviderBackend = "tensorrt"
	// CoreMLProviderBackend uses Apple CoreML for macOS/iOS acceleration.
	CoreMLProviderBackend ProviderBackend = "coreml"
	// OpenVINOProviderBackend uses Intel OpenVINO for inference optimization.
	OpenVINOProviderBackend ProviderBackend = "openvino"
)

// ParseProviderBackend parses an execution provider name. An empty name
// selects the CPU provider.
func ParseProviderBackend(s string) (ProviderBackend, error) {
	switch b := ProviderBackend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return CPUProviderBackend, nil
	case CPUProviderBackend, CUDAProviderBackend, TensorRTProviderBackend,
		CoreMLProviderBackend, OpenVINOProviderBackend:
		return b, nil
	default:
		return "", fmt.Errorf("unknown execution provider %q", s)
	}
}

// Config selects an execution provider and tunes the session.
type Config struct {
	// Backend specifies the execution provider to use.
	Backend ProviderBackend `json:"backend" yaml:"backend"`

	// Provider-specific options. Only the one matching Backend is read.
	CUDA     CUDAOptions     `json:"cuda,omitempty"     yaml:"cuda,omitempty"`
	CoreML   CoreMLOptions   `json:"coreml,omitempty"   yaml:"coreml,omitempty"`
	OpenVINO OpenVINOOptions `json:"openvino,omitempty" yaml:"openvino,omitempty"`

	// Optimization controls threading and graph rewrites.
	Optimization OptimizationConfig `json:"optimization" yaml:"optimization"`
}

// DefaultConfig returns a CPU configuration tuned for latency measurements.
func DefaultConfig() Config {
	return Config{
		Backend:      CPUProviderBackend,
		Optimization: DefaultOptimizationConfig(),
	}
}
