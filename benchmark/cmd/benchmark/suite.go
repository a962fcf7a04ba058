package main

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-fps/benchmark"
	"github.com/nvr-ai/go-fps/inference"
	"github.com/nvr-ai/go-fps/preprocess"
)

var (
	suiteOpts   suiteFlags
	suiteOutput outputFlags
	suiteFile   string

	suiteCommand = &cobra.Command{
		Use:   "suite",
		Short: "Run every scenario in a YAML or JSON scenario file",
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := benchmark.LoadScenarioSet(suiteFile)
			if err != nil {
				return err
			}
			logger := newLogger()
			logger.Info("loaded %q: %d scenarios", set.Name, len(set.Scenarios))
			return runScenarios(cmd.Context(), cmd.OutOrStdout(), logger, set.Scenarios, suiteOpts, suiteOutput)
		},
	}
)

type compareFlags struct {
	models     map[inference.Backend]*string
	imagesDir  string
	height     int
	width      int
	channels   int
	resolution string
	layout     string
}

var (
	compareOpts   = compareFlags{models: make(map[inference.Backend]*string)}
	compareSuite  suiteFlags
	compareOutput outputFlags

	compareCommand = &cobra.Command{
		Use:   "compare",
		Short: "Run the same input over every back-end that has a model",
		Example: `  benchmark compare --ort model.onnx --tflite model.tflite --gorgonia model.onnx --images-dir ./frames`,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := compareOpts.scenarioSet()
			if err != nil {
				return err
			}
			return runScenarios(cmd.Context(), cmd.OutOrStdout(), newLogger(), set.Scenarios, compareSuite, compareOutput)
		},
	}
)

// scenarioSet builds the comparison set from the per-back-end model flags.
func (f compareFlags) scenarioSet() (*benchmark.ScenarioSet, error) {
	layout, err := preprocess.ParseLayout(f.layout)
	if err != nil {
		return nil, err
	}

	models := make(map[inference.Backend]string)
	for backend, path := range f.models {
		if path != nil && *path != "" {
			models[backend] = *path
		}
	}
	if len(models) == 0 {
		return nil, errors.Wrap(benchmark.ErrInvalidConfig, "no model given for any back-end")
	}

	height, width, err := sizeFromFlags(f.resolution, f.height, f.width)
	if err != nil {
		return nil, err
	}

	shape := preprocess.Shape{Height: height, Width: width, Channels: f.channels}
	set := benchmark.BackendComparison(models, f.imagesDir, shape, layout)
	return set, set.Validate()
}

func addSuiteFlags(cmd *cobra.Command, sf *suiteFlags) {
	cmd.Flags().BoolVar(&sf.parallel, "parallel", false, "run scenarios concurrently")
	cmd.Flags().IntVar(&sf.maxConcurrency, "max-concurrency", 0, "cap on concurrent scenarios (0 means no cap)")
	cmd.Flags().DurationVar(&sf.cooldown, "cooldown", 2*time.Second, "pause between sequential scenarios")
}

func init() {
	suiteCommand.Flags().StringVarP(&suiteFile, "scenarios", "s", "", "path to the scenario file")
	_ = suiteCommand.MarkFlagRequired("scenarios")
	addSuiteFlags(suiteCommand, &suiteOpts)
	addOutputFlags(suiteCommand, &suiteOutput)

	flags := compareCommand.Flags()
	for _, backend := range inference.Backends {
		compareOpts.models[backend] = new(string)
		flags.StringVar(compareOpts.models[backend], string(backend), "", "model file for the "+string(backend)+" back-end")
	}
	flags.StringVar(&compareOpts.imagesDir, "images-dir", "", "directory of images")
	flags.IntVar(&compareOpts.height, "height", 224, "input height")
	flags.IntVar(&compareOpts.width, "width", 224, "input width")
	flags.IntVar(&compareOpts.channels, "channels", 3, "input channels")
	flags.StringVarP(&compareOpts.resolution, "resolution", "r", "", "named input size, WxH, or fit:WxH for the largest named size within a bound; overrides --height and --width")
	flags.StringVar(&compareOpts.layout, "layout", "hwc", "input layout for back-ends that do not pin one")
	_ = compareCommand.MarkFlagRequired("images-dir")
	addSuiteFlags(compareCommand, &compareSuite)
	addOutputFlags(compareCommand, &compareOutput)

	rootCmd.AddCommand(suiteCommand, compareCommand)
}
