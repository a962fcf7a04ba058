package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-fps/benchmark"
	"github.com/nvr-ai/go-fps/logging"
	"github.com/nvr-ai/go-fps/profiler"
)

type outputFlags struct {
	dir    string
	format string
}

type suiteFlags struct {
	parallel       bool
	maxConcurrency int
	cooldown       time.Duration
}

// progressBars keeps one bar per scenario. Bars are only drawn for sequential
// runs; parallel runs log completions instead.
type progressBars struct {
	w    io.Writer
	mu   sync.Mutex
	bars map[string]*progressbar.ProgressBar
}

func newProgressBars(w io.Writer) *progressBars {
	return &progressBars{w: w, bars: make(map[string]*progressbar.ProgressBar)}
}

func (p *progressBars) update(scenario string, done, total int, latency time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	bar, ok := p.bars[scenario]
	if !ok {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription(scenario),
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionShowCount(),
		)
		p.bars[scenario] = bar
	}
	_ = bar.Add(1)
	if done == total {
		_ = bar.Finish()
		fmt.Fprintln(p.w)
	}
}

// runScenarios executes the scenarios, prints the summary table to out and
// writes the report when an output directory is set.
func runScenarios(
	ctx context.Context,
	out io.Writer,
	logger logging.Logger,
	scenarios []benchmark.Scenario,
	sf suiteFlags,
	of outputFlags,
) error {
	format, err := benchmark.ParseReportFormat(of.format)
	if err != nil {
		return err
	}

	args := benchmark.NewSuiteArgs{
		Cooldown:       sf.cooldown,
		Parallel:       sf.parallel,
		MaxConcurrency: sf.maxConcurrency,
		Logger:         logger,
		Engines:        newEngine,
	}
	var progress []benchmark.ScenarioProgressFunc
	if !sf.parallel {
		progress = append(progress, newProgressBars(os.Stderr).update)
	}
	if profileInterval > 0 {
		rp := profiler.NewRuntimeProfiler(profiler.ProfilingOptions{
			ReportInterval: profileInterval,
			Logger:         logger,
		})
		rp.Start()
		defer rp.Stop()
		progress = append(progress, func(scenario string, _, _ int, latency time.Duration) {
			rp.RecordOperation(scenario, latency)
		})
	}
	if len(progress) > 0 {
		args.Progress = func(scenario string, done, total int, latency time.Duration) {
			for _, fn := range progress {
				fn(scenario, done, total, latency)
			}
		}
	}

	suite := benchmark.NewSuite(args)
	for _, s := range scenarios {
		suite.AddScenario(s)
	}

	results, err := suite.Run(ctx)
	if err != nil {
		return err
	}

	if err := benchmark.WriteSummary(out, results); err != nil {
		return err
	}

	if of.dir != "" {
		path, err := benchmark.WriteReport(of.dir, results, format)
		if err != nil {
			return err
		}
		logger.Info("report written to %s", path)
	}
	return nil
}

func addOutputFlags(cmd *cobra.Command, of *outputFlags) {
	cmd.Flags().StringVarP(&of.dir, "output", "o", "", "directory to write the report to")
	cmd.Flags().StringVarP(&of.format, "format", "f", "json", "report format (json, yaml)")
}
