package benchmark

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-fps/images"
	"github.com/nvr-ai/go-fps/inference"
	"github.com/nvr-ai/go-fps/preprocess"
	"github.com/nvr-ai/go-fps/util"
)

// Scenario is one benchmark run: a back-end, a model, a path list and an
// input spec.
type Scenario struct {
	Name      string            `json:"name"                 yaml:"name"`
	Backend   inference.Backend `json:"backend"              yaml:"backend"`
	ModelPath string            `json:"model_path"           yaml:"model_path"`
	// Images is a ';'-delimited path list.
	Images string `json:"images,omitempty"     yaml:"images,omitempty"`
	// ImagesDir is scanned for images when Images is empty.
	ImagesDir string            `json:"images_dir,omitempty" yaml:"images_dir,omitempty"`
	Shape     preprocess.Shape  `json:"shape"                yaml:"shape"`
	Layout    preprocess.Layout `json:"layout"               yaml:"layout"`
	Decoder   images.Decoder    `json:"decoder,omitempty"    yaml:"decoder,omitempty"`
	Options   inference.Options `json:"options"              yaml:"options"`
}

// Validate checks that the scenario can be run.
func (s Scenario) Validate() error {
	if s.Name == "" {
		return errors.Wrap(ErrInvalidConfig, "scenario name is required")
	}
	if _, err := inference.ParseBackend(string(s.Backend)); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "scenario %s: %v", s.Name, err)
	}
	if s.ModelPath == "" {
		return errors.Wrapf(ErrInvalidConfig, "scenario %s: model path is required", s.Name)
	}
	if err := s.Shape.Validate(); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "scenario %s: %v", s.Name, err)
	}
	if _, err := images.ParseDecoder(string(s.Decoder)); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "scenario %s: %v", s.Name, err)
	}
	return nil
}

// Paths resolves the scenario's path list. An explicit list wins over a
// directory; with neither the list is empty.
func (s Scenario) Paths() ([]string, error) {
	if s.Images != "" || s.ImagesDir == "" {
		return util.SplitPaths(s.Images, util.PathSeparator), nil
	}
	return util.ListImagePaths(s.ImagesDir)
}

// ScenarioBuilder helps build test scenarios with fluent API
type ScenarioBuilder struct {
	scenario Scenario
}

// NewScenarioBuilder creates a new scenario builder with a 224x224 RGB
// interleaved input and the default decoder.
func NewScenarioBuilder(name string) *ScenarioBuilder {
	return &ScenarioBuilder{
		scenario: Scenario{
			Name:    name,
			Shape:   preprocess.Shape{Height: 224, Width: 224, Channels: 3},
			Layout:  preprocess.LayoutHWC,
			Decoder: images.DefaultDecoder,
		},
	}
}

// WithBackend sets the back-end.
func (sb *ScenarioBuilder) WithBackend(backend inference.Backend) *ScenarioBuilder {
	sb.scenario.Backend = backend
	return sb
}

// WithModel sets the model path.
func (sb *ScenarioBuilder) WithModel(modelPath string) *ScenarioBuilder {
	sb.scenario.ModelPath = modelPath
	return sb
}

// WithImages sets an explicit path list.
func (sb *ScenarioBuilder) WithImages(paths ...string) *ScenarioBuilder {
	sb.scenario.Images = util.JoinPaths(paths, util.PathSeparator)
	return sb
}

// WithImagesDir sets the directory to scan for images.
func (sb *ScenarioBuilder) WithImagesDir(dir string) *ScenarioBuilder {
	sb.scenario.ImagesDir = dir
	return sb
}

// WithShape sets the input height, width and channel count.
func (sb *ScenarioBuilder) WithShape(height, width, channels int) *ScenarioBuilder {
	sb.scenario.Shape = preprocess.Shape{Height: height, Width: width, Channels: channels}
	return sb
}

// WithLayout sets the tensor layout.
func (sb *ScenarioBuilder) WithLayout(layout preprocess.Layout) *ScenarioBuilder {
	sb.scenario.Layout = layout
	return sb
}

// WithDecoder sets the image decoder.
func (sb *ScenarioBuilder) WithDecoder(decoder images.Decoder) *ScenarioBuilder {
	sb.scenario.Decoder = decoder
	return sb
}

// WithThreads sets the runtime thread count.
func (sb *ScenarioBuilder) WithThreads(threads int) *ScenarioBuilder {
	sb.scenario.Options.Threads = threads
	return sb
}

// Build returns the configured test scenario
func (sb *ScenarioBuilder) Build() Scenario {
	return sb.scenario
}

// ScenarioSet represents a collection of related test scenarios
type ScenarioSet struct {
	Name        string     `json:"name"        yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Scenarios   []Scenario `json:"scenarios"   yaml:"scenarios"`
}

// Validate checks every scenario and rejects duplicate names.
func (ss *ScenarioSet) Validate() error {
	seen := make(map[string]bool, len(ss.Scenarios))
	for _, s := range ss.Scenarios {
		if err := s.Validate(); err != nil {
			return err
		}
		if seen[s.Name] {
			return errors.Wrapf(ErrInvalidConfig, "duplicate scenario name %q", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

// BackendComparison returns one scenario per back-end over the same images and
// input shape. Back-ends run in the order of inference.Backends. The
// gorgonia back-end always runs channel-planar.
//
// Arguments:
//   - models: The model file per back-end. Back-ends without a model are skipped.
//   - imagesDir: The directory holding the images.
//   - shape: The input shape.
//   - layout: The layout for back-ends that do not pin one.
//
// Returns:
//   - *ScenarioSet: The scenario set.
func BackendComparison(
	models map[inference.Backend]string,
	imagesDir string,
	shape preprocess.Shape,
	layout preprocess.Layout,
) *ScenarioSet {
	scenarios := make([]Scenario, 0, len(models))

	for _, backend := range inference.Backends {
		path, ok := models[backend]
		if !ok {
			continue
		}

		l := layout
		if backend == inference.BackendGorgonia {
			l = preprocess.LayoutCHW
		}

		scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("%s_%dx%dx%d_%s",
			backend, shape.Height, shape.Width, shape.Channels, l)).
			WithBackend(backend).
			WithModel(path).
			WithImagesDir(imagesDir).
			WithShape(shape.Height, shape.Width, shape.Channels).
			WithLayout(l).
			Build())
	}

	return &ScenarioSet{
		Name:        "Backend Comparison",
		Description: fmt.Sprintf("Compares back-ends at %dx%dx%d", shape.Height, shape.Width, shape.Channels),
		Scenarios:   scenarios,
	}
}

// SaveScenarioSet saves a scenario set as YAML or JSON depending on the file
// extension.
func SaveScenarioSet(scenarioSet *ScenarioSet, filename string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(filename) {
		data, err = yaml.Marshal(scenarioSet)
	} else {
		data, err = json.MarshalIndent(scenarioSet, "", "  ")
	}
	if err != nil {
		return errors.Wrap(err, "failed to marshal scenario set")
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write scenario file")
	}

	return nil
}

// LoadScenarioSet loads and validates a scenario set from a YAML or JSON file.
func LoadScenarioSet(filename string) (*ScenarioSet, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scenario file")
	}

	var scenarioSet ScenarioSet
	if isYAML(filename) {
		err = yaml.Unmarshal(data, &scenarioSet)
	} else {
		err = json.Unmarshal(data, &scenarioSet)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal scenario set")
	}

	for i := range scenarioSet.Scenarios {
		s := &scenarioSet.Scenarios[i]
		if s.Decoder == "" {
			s.Decoder = images.DefaultDecoder
		}
		if b, err := inference.ParseBackend(string(s.Backend)); err == nil {
			s.Backend = b
		}
	}

	if err := scenarioSet.Validate(); err != nil {
		return nil, err
	}

	return &scenarioSet, nil
}

func isYAML(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
