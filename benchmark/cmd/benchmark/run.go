package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-fps/benchmark"
	"github.com/nvr-ai/go-fps/images"
	"github.com/nvr-ai/go-fps/inference"
	"github.com/nvr-ai/go-fps/preprocess"
)

type runFlags struct {
	name       string
	backend    string
	model      string
	images     string
	imagesDir  string
	height     int
	width      int
	channels   int
	resolution string
	layout     string
	decoder    string
	threads    int
	provider   string
}

var (
	runOpts    runFlags
	runOutput  outputFlags
	runCommand = &cobra.Command{
		Use:   "run",
		Short: "Benchmark one model on one back-end",
		Example: `  benchmark run --backend ort --model mobilenet.onnx --images-dir ./frames
  benchmark run --backend tflite --model model.tflite --images "a.jpg;b.jpg" --height 320 --width 320`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := runOpts.scenario()
			if err != nil {
				return err
			}
			return runScenarios(cmd.Context(), cmd.OutOrStdout(), newLogger(),
				[]benchmark.Scenario{scenario}, suiteFlags{}, runOutput)
		},
	}
)

// scenario turns the flags into a validated scenario.
func (f runFlags) scenario() (benchmark.Scenario, error) {
	backend, err := inference.ParseBackend(f.backend)
	if err != nil {
		return benchmark.Scenario{}, err
	}
	layout, err := preprocess.ParseLayout(f.layout)
	if err != nil {
		return benchmark.Scenario{}, err
	}
	decoder, err := images.ParseDecoder(f.decoder)
	if err != nil {
		return benchmark.Scenario{}, err
	}

	height, width, err := sizeFromFlags(f.resolution, f.height, f.width)
	if err != nil {
		return benchmark.Scenario{}, err
	}

	name := f.name
	if name == "" {
		name = fmt.Sprintf("%s_%dx%dx%d_%s", backend, height, width, f.channels, layout)
	}

	b := benchmark.NewScenarioBuilder(name).
		WithBackend(backend).
		WithModel(f.model).
		WithShape(height, width, f.channels).
		WithLayout(layout).
		WithDecoder(decoder).
		WithThreads(f.threads)
	if f.images != "" {
		b = b.WithImages(f.images)
	}
	if f.imagesDir != "" {
		b = b.WithImagesDir(f.imagesDir)
	}

	s := b.Build()
	s.Options.Provider = f.provider

	return s, s.Validate()
}

func init() {
	flags := runCommand.Flags()
	flags.StringVar(&runOpts.name, "name", "", "scenario name (default derived from back-end and shape)")
	flags.StringVarP(&runOpts.backend, "backend", "b", string(inference.BackendORT), "inference back-end (ort, tflite, gorgonia)")
	flags.StringVarP(&runOpts.model, "model", "m", "", "path to the model file")
	flags.StringVar(&runOpts.images, "images", "", "';'-separated image paths")
	flags.StringVar(&runOpts.imagesDir, "images-dir", "", "directory of images, used when --images is empty")
	flags.IntVar(&runOpts.height, "height", 224, "input height")
	flags.IntVar(&runOpts.width, "width", 224, "input width")
	flags.IntVar(&runOpts.channels, "channels", 3, "input channels")
	flags.StringVarP(&runOpts.resolution, "resolution", "r", "", "named input size, WxH, or fit:WxH for the largest named size within a bound; overrides --height and --width")
	flags.StringVar(&runOpts.layout, "layout", "hwc", "input layout (hwc, chw)")
	flags.StringVar(&runOpts.decoder, "decoder", string(images.DefaultDecoder), "image decoder (native, gocv, vips)")
	flags.IntVar(&runOpts.threads, "threads", 0, "inference threads (0 uses the back-end default)")
	flags.StringVar(&runOpts.provider, "provider", "", "ONNX Runtime execution provider (cpu, cuda, tensorrt, coreml, openvino)")
	_ = runCommand.MarkFlagRequired("model")
	addOutputFlags(runCommand, &runOutput)

	rootCmd.AddCommand(runCommand)
}

// sizeFromFlags applies a named resolution over explicit height and width.
func sizeFromFlags(resolution string, height, width int) (int, int, error) {
	if resolution == "" {
		return height, width, nil
	}
	res, err := images.ParseResolution(resolution)
	if err != nil {
		return 0, 0, err
	}
	return res.Pixels.Height, res.Pixels.Width, nil
}
