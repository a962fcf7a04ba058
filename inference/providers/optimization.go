package providers

import (
	ort "github.com/yalue/onnxruntime_go"
)

// OptimizationConfig contains ONNX Runtime session tuning.
type OptimizationConfig struct {
	// GraphOptimizationLevel controls the level of graph optimization.
	GraphOptimizationLevel ort.GraphOptimizationLevel `json:"graph_optimization_level" yaml:"graph_optimization_level"`
	// ExecutionMode controls sequential vs parallel execution of graph nodes.
	ExecutionMode ort.ExecutionMode `json:"execution_mode" yaml:"execution_mode"`
	// IntraOpNumThreads sets threads for parallelizing ops. Zero lets the
	// runtime decide.
	IntraOpNumThreads int `json:"intra_op_num_threads" yaml:"intra_op_num_threads"`
	// InterOpNumThreads sets threads for parallelizing independent ops.
	InterOpNumThreads int `json:"inter_op_num_threads" yaml:"inter_op_num_threads"`
	// EnableMemoryPattern enables memory pattern optimization.
	EnableMemoryPattern bool `json:"enable_memory_pattern" yaml:"enable_memory_pattern"`
	// EnableCPUMemArena enables the CPU memory arena.
	EnableCPUMemArena bool `json:"enable_cpu_mem_arena" yaml:"enable_cpu_mem_arena"`
}

// DefaultOptimizationConfig returns the configuration used for benchmark
// runs: extended graph rewrites and a single intra-op thread, the way a
// phone-class device runs a model.
func DefaultOptimizationConfig() OptimizationConfig {
	return OptimizationConfig{
		GraphOptimizationLevel: ort.GraphOptimizationLevelEnableExtended,
		ExecutionMode:          ort.ExecutionModeSequential,
		IntraOpNumThreads:      1,
		InterOpNumThreads:      1,
		EnableMemoryPattern:    true,
		EnableCPUMemArena:      true,
	}
}

// HighThroughputOptimizationConfig lets the runtime use every core.
func HighThroughputOptimizationConfig() OptimizationConfig {
	c := DefaultOptimizationConfig()
	c.GraphOptimizationLevel = ort.GraphOptimizationLevelEnableAll
	c.ExecutionMode = ort.ExecutionModeParallel
	c.IntraOpNumThreads = 0
	c.InterOpNumThreads = 0
	return c
}
