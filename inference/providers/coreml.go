package providers

// CoreML provider flags.
// See: https://onnxruntime.ai/docs/execution-providers/CoreML-ExecutionProvider.html
const (
	coreMLFlagUseCPUOnly          uint32 = 0x001
	coreMLFlagEnableOnSubgraph    uint32 = 0x002
	coreMLFlagOnlyEnableDeviceANE uint32 = 0x004
	coreMLFlagOnlyStaticShapes    uint32 = 0x008
)

// CoreMLOptions contains arguments for the CoreML provider.
type CoreMLOptions struct {
	// Limit CoreML to running on CPU only.
	CPUOnly bool `json:"cpuOnly"                  yaml:"cpuOnly"`
	// Enable CoreML on subgraphs in the body of control flow operators.
	EnableOnSubgraphs bool `json:"enableOnSubgraphs"        yaml:"enableOnSubgraphs"`
	// Only use CoreML on devices with an Apple Neural Engine.
	NeuralEngineOnly bool `json:"neuralEngineOnly"         yaml:"neuralEngineOnly"`
	// Only take nodes whose inputs have static shapes.
	RequireStaticInputShapes bool `json:"requireStaticInputShapes" yaml:"requireStaticInputShapes"`
}

// flags packs the options into the legacy CoreML flag word.
func (o CoreMLOptions) flags() uint32 {
	var f uint32
	if o.CPUOnly {
		f |= coreMLFlagUseCPUOnly
	}
	if o.EnableOnSubgraphs {
		f |= coreMLFlagEnableOnSubgraph
	}
	if o.NeuralEngineOnly {
		f |= coreMLFlagOnlyEnableDeviceANE
	}
	if o.RequireStaticInputShapes {
		f |= coreMLFlagOnlyStaticShapes
	}
	return f
}
