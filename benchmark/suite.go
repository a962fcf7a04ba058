package benchmark

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/nvr-ai/go-fps/images"
	"github.com/nvr-ai/go-fps/inference"
	"github.com/nvr-ai/go-fps/logging"
)

// EngineFactory creates an engine for a scenario.
type EngineFactory func(backend inference.Backend, opts inference.Options) (inference.Engine, error)

// CollaboratorFactory creates an image collaborator for a scenario.
type CollaboratorFactory func(decoder images.Decoder) (images.Collaborator, error)

// ScenarioProgressFunc reports per-image progress of a named scenario.
type ScenarioProgressFunc func(scenario string, done, total int, latency time.Duration)

// Suite manages and executes benchmark scenarios
type Suite struct {
	scenarios  []Scenario
	logger     logging.Logger
	cooldown   time.Duration
	parallel   bool
	limit      int
	newEngine  EngineFactory
	newImages  CollaboratorFactory
	onProgress ScenarioProgressFunc
	mu         sync.RWMutex
	results    []Result
}

// NewSuiteArgs represents the arguments for creating a new benchmark suite.
type NewSuiteArgs struct {
	// Cooldown is the pause between sequential scenarios.
	Cooldown time.Duration `json:"cooldown"        yaml:"cooldown"`
	// Parallel runs scenarios concurrently, each fully isolated.
	Parallel bool `json:"parallel"        yaml:"parallel"`
	// MaxConcurrency caps parallel scenarios. Zero means no cap.
	MaxConcurrency int `json:"max_concurrency" yaml:"max_concurrency"`
	// Logger defaults to a no-op logger.
	Logger logging.Logger `json:"-" yaml:"-"`
	// Engines defaults to inference.NewEngine.
	Engines EngineFactory `json:"-" yaml:"-"`
	// Images defaults to images.New.
	Images CollaboratorFactory `json:"-" yaml:"-"`
	// Progress is optional.
	Progress ScenarioProgressFunc `json:"-" yaml:"-"`
}

// NewSuite creates a new benchmark suite.
//
// Arguments:
//   - args: The arguments for creating a new benchmark suite.
//
// Returns:
//   - *Suite: The benchmark suite.
func NewSuite(args NewSuiteArgs) *Suite {
	s := &Suite{
		scenarios:  make([]Scenario, 0),
		results:    make([]Result, 0),
		logger:     args.Logger,
		cooldown:   args.Cooldown,
		parallel:   args.Parallel,
		limit:      args.MaxConcurrency,
		newEngine:  args.Engines,
		newImages:  args.Images,
		onProgress: args.Progress,
	}
	if s.logger == nil {
		s.logger = logging.NewNoop()
	}
	if s.newEngine == nil {
		s.newEngine = inference.NewEngine
	}
	if s.newImages == nil {
		s.newImages = images.New
	}
	return s
}

// AddScenario adds a test scenario to the benchmark suite
func (bs *Suite) AddScenario(scenario Scenario) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.scenarios = append(bs.scenarios, scenario)
}

// AddScenarioSet adds every scenario of set.
func (bs *Suite) AddScenarioSet(set *ScenarioSet) {
	for _, s := range set.Scenarios {
		bs.AddScenario(s)
	}
}

// Scenarios returns a copy of the queued scenarios.
func (bs *Suite) Scenarios() []Scenario {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return append([]Scenario(nil), bs.scenarios...)
}

// Results returns a copy of the results collected so far.
func (bs *Suite) Results() []Result {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return append([]Result(nil), bs.results...)
}

// RunScenario executes a single benchmark scenario with its own engine,
// collaborator and runner.
func (bs *Suite) RunScenario(ctx context.Context, scenario Scenario) (*Result, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	// Validate accepted the name, so this only canonicalizes aliases.
	scenario.Backend, _ = inference.ParseBackend(string(scenario.Backend))

	paths, err := scenario.Paths()
	if err != nil {
		return nil, newError(ErrInvalidConfig, scenario.Backend, scenario.ImagesDir, err)
	}

	collaborator, err := bs.newImages(scenario.Decoder)
	if err != nil {
		return nil, newError(ErrInvalidConfig, scenario.Backend, "", err)
	}

	engine, err := bs.newEngine(scenario.Backend, scenario.Options)
	if err != nil {
		return nil, newError(ErrEngineInit, scenario.Backend, "", err)
	}

	var progress ProgressFunc
	if bs.onProgress != nil {
		progress = func(done, total int, latency time.Duration) {
			bs.onProgress(scenario.Name, done, total, latency)
		}
	}

	runner := NewRunner(NewRunnerArgs{
		Engine:   engine,
		Images:   collaborator,
		Logger:   bs.logger,
		Progress: progress,
	})

	bs.logger.Info("running %s: %s on %d images", scenario.Name, scenario.Backend, len(paths))
	result, err := runner.EstimateFPS(ctx, scenario.ModelPath, paths, scenario.Shape, scenario.Layout)
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s", scenario.Name)
	}
	result.Scenario = scenario.Name
	bs.logger.Info("%s: %.2f fps (mean %.6fs)", scenario.Name, result.FPS, result.MeanSeconds)

	return result, nil
}

// Run executes every queued scenario.
//
// Sequential runs go in order with the configured cooldown between them and
// stop at the first failure. Parallel runs are cancelled as soon as one
// fails. Results of completed scenarios are returned either way, in queue
// order.
func (bs *Suite) Run(ctx context.Context) ([]Result, error) {
	scenarios := bs.Scenarios()

	var (
		results []Result
		err     error
	)
	if bs.parallel {
		results, err = bs.runParallel(ctx, scenarios)
	} else {
		results, err = bs.runSequential(ctx, scenarios)
	}

	bs.mu.Lock()
	bs.results = append(bs.results, results...)
	bs.mu.Unlock()

	return results, err
}

func (bs *Suite) runSequential(ctx context.Context, scenarios []Scenario) ([]Result, error) {
	results := make([]Result, 0, len(scenarios))

	for i, scenario := range scenarios {
		if i > 0 && bs.cooldown > 0 {
			bs.logger.Debug("cooling down for %s", bs.cooldown)
			if err := sleep(ctx, bs.cooldown); err != nil {
				return results, err
			}
		}

		result, err := bs.RunScenario(ctx, scenario)
		if err != nil {
			return results, err
		}
		results = append(results, *result)
	}

	return results, nil
}

func (bs *Suite) runParallel(ctx context.Context, scenarios []Scenario) ([]Result, error) {
	slots := make([]*Result, len(scenarios))

	g, gctx := errgroup.WithContext(ctx)
	if bs.limit > 0 {
		g.SetLimit(bs.limit)
	}

	for i, scenario := range scenarios {
		i, scenario := i, scenario
		g.Go(func() error {
			result, err := bs.RunScenario(gctx, scenario)
			if err != nil {
				return err
			}
			slots[i] = result
			return nil
		})
	}
	err := g.Wait()

	results := make([]Result, 0, len(scenarios))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results, err
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
