package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/nvr-ai/go-fps/benchmark"
	"github.com/nvr-ai/go-fps/images"
	"github.com/nvr-ai/go-fps/inference"
	"github.com/nvr-ai/go-fps/preprocess"
)

// Example program to create and save benchmark scenario files for the
// benchmark suite command.
func main() {
	var (
		onnxModel   = flag.String("onnx", "../data/mobilenet_v2.onnx", "ONNX model for the ort and gorgonia back-ends")
		tfliteModel = flag.String("tflite", "../data/mobilenet_v2.tflite", "TensorFlow Lite model")
		imagesDir   = flag.String("images", "../data/images", "directory of test images")
	)
	flag.Parse()

	models := map[inference.Backend]string{
		inference.BackendORT:      *onnxModel,
		inference.BackendTFLite:   *tfliteModel,
		inference.BackendGorgonia: *onnxModel,
	}

	// One comparison per common square input size.
	for _, t := range []images.ResolutionType{images.ResolutionType224, images.ResolutionType320} {
		res, _ := images.GetResolutionByType(t)
		shape := preprocess.Shape{Height: res.Pixels.Height, Width: res.Pixels.Width, Channels: 3}

		set := benchmark.BackendComparison(models, *imagesDir, shape, preprocess.LayoutHWC)
		filename := fmt.Sprintf("comparison_%s.yaml", t)
		if err := benchmark.SaveScenarioSet(set, filename); err != nil {
			log.Fatalf("Failed to save %s: %v", filename, err)
		}
		fmt.Printf("Saved %d scenarios to %s\n", len(set.Scenarios), filename)
	}

	// Decoder comparison on the ONNX Runtime back-end.
	decoders := &benchmark.ScenarioSet{
		Name:        "Decoder Comparison",
		Description: "Same model and images through each image decoder",
	}
	for _, d := range []images.Decoder{images.DecoderNative, images.DecoderGoCV, images.DecoderVips} {
		decoders.Scenarios = append(decoders.Scenarios,
			benchmark.NewScenarioBuilder(fmt.Sprintf("ort_%s", d)).
				WithBackend(inference.BackendORT).
				WithModel(*onnxModel).
				WithImagesDir(*imagesDir).
				WithDecoder(d).
				Build())
	}
	if err := benchmark.SaveScenarioSet(decoders, "decoder_scenarios.json"); err != nil {
		log.Fatalf("Failed to save decoder scenarios: %v", err)
	}
	fmt.Printf("Saved %d decoder scenarios\n", len(decoders.Scenarios))
}
