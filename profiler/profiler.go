// Package profiler samples process runtime statistics while benchmarks run
// and reports them periodically through a logger.
package profiler

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/nvr-ai/go-fps/logging"
)

// RuntimeProfiler tracks heap, goroutine and cgo call counts alongside
// per-operation timings.
//
// Timings are recorded by the caller, typically one entry per inference call
// keyed by scenario name.
type RuntimeProfiler struct {
	reportInterval time.Duration
	sampleInterval time.Duration
	maxSamples     int
	logger         logging.Logger

	mu        sync.RWMutex
	wg        sync.WaitGroup
	done      chan struct{}
	running   bool
	startTime time.Time

	memStats    runtime.MemStats
	samples     []sample
	peakHeap    uint64
	lastGCCount uint32

	operations map[string]*TimeTracker
}

type sample struct {
	timestamp  time.Time
	goroutines int
	cgoCalls   int64
	heapAlloc  uint64
}

// TimeTracker keeps a bounded window of durations for one operation.
type TimeTracker struct {
	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// ProfilingOptions configures the runtime profiler.
type ProfilingOptions struct {
	// ReportInterval specifies how often to emit status reports (default: 2s).
	ReportInterval time.Duration
	// SampleInterval specifies how often to collect samples (default: 100ms).
	SampleInterval time.Duration
	// MaxSamples bounds every sample window (default: 600).
	MaxSamples int
	// Logger receives the reports. Defaults to a no-op logger.
	Logger logging.Logger
}

// OperationStats summarizes the recorded window of one operation.
type OperationStats struct {
	Name  string        `json:"name"  yaml:"name"`
	Count int64         `json:"count" yaml:"count"`
	Avg   time.Duration `json:"avg"   yaml:"avg"`
	Min   time.Duration `json:"min"   yaml:"min"`
	Max   time.Duration `json:"max"   yaml:"max"`
}

// Stats is a point-in-time snapshot of the profiler.
type Stats struct {
	Uptime     time.Duration    `json:"uptime"      yaml:"uptime"`
	Goroutines int              `json:"goroutines"  yaml:"goroutines"`
	CgoCalls   int64            `json:"cgo_calls"   yaml:"cgo_calls"`
	HeapAlloc  uint64           `json:"heap_alloc"  yaml:"heap_alloc"`
	PeakHeap   uint64           `json:"peak_heap"   yaml:"peak_heap"`
	NumGC      uint32           `json:"num_gc"      yaml:"num_gc"`
	Samples    int              `json:"samples"     yaml:"samples"`
	Operations []OperationStats `json:"operations"  yaml:"operations"`
}

// NewRuntimeProfiler creates a new runtime profiler with the specified options.
//
// Arguments:
//   - opts: Configuration options for the profiler.
//
// Returns:
//   - *RuntimeProfiler: A stopped profiler.
func NewRuntimeProfiler(opts ProfilingOptions) *RuntimeProfiler {
	if opts.ReportInterval == 0 {
		opts.ReportInterval = 2 * time.Second
	}
	if opts.SampleInterval == 0 {
		opts.SampleInterval = 100 * time.Millisecond
	}
	if opts.MaxSamples == 0 {
		opts.MaxSamples = 600
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNoop()
	}

	return &RuntimeProfiler{
		reportInterval: opts.ReportInterval,
		sampleInterval: opts.SampleInterval,
		maxSamples:     opts.MaxSamples,
		logger:         opts.Logger.WithComponent("profiler"),
		startTime:      time.Now(),
		samples:        make([]sample, 0, opts.MaxSamples),
		operations:     make(map[string]*TimeTracker),
	}
}

// Start begins sampling and reporting. Calling Start on a running profiler
// does nothing.
func (rp *RuntimeProfiler) Start() {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	if rp.running {
		return
	}

	rp.running = true
	rp.startTime = time.Now()
	rp.done = make(chan struct{})

	rp.wg.Add(2)
	go rp.loop(rp.sampleInterval, rp.collect)
	go rp.loop(rp.reportInterval, rp.emitStatusReport)
}

// Stop halts the background goroutines and waits for them to exit.
func (rp *RuntimeProfiler) Stop() {
	rp.mu.Lock()
	if !rp.running {
		rp.mu.Unlock()
		return
	}
	rp.running = false
	close(rp.done)
	rp.mu.Unlock()

	rp.wg.Wait()
}

func (rp *RuntimeProfiler) loop(interval time.Duration, fn func()) {
	defer rp.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rp.done:
			return
		case <-ticker.C:
			fn()
		}
	}
}

// StartOperation begins timing an operation.
//
// Returns:
//   - func(): Call when the operation completes.
func (rp *RuntimeProfiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		rp.RecordOperation(name, time.Since(start))
	}
}

// RecordOperation records one completed operation.
func (rp *RuntimeProfiler) RecordOperation(name string, duration time.Duration) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	tracker, exists := rp.operations[name]
	if !exists {
		tracker = &TimeTracker{minTime: duration, maxTime: duration}
		rp.operations[name] = tracker
	}

	tracker.durations = append(tracker.durations, duration)
	tracker.totalTime += duration
	if len(tracker.durations) > rp.maxSamples {
		tracker.totalTime -= tracker.durations[0]
		tracker.durations = tracker.durations[1:]
	}
	tracker.count++

	if duration < tracker.minTime {
		tracker.minTime = duration
	}
	if duration > tracker.maxTime {
		tracker.maxTime = duration
	}
}

func (rp *RuntimeProfiler) collect() {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	runtime.ReadMemStats(&rp.memStats)
	if rp.memStats.HeapAlloc > rp.peakHeap {
		rp.peakHeap = rp.memStats.HeapAlloc
	}

	rp.samples = append(rp.samples, sample{
		timestamp:  time.Now(),
		goroutines: runtime.NumGoroutine(),
		cgoCalls:   runtime.NumCgoCall(),
		heapAlloc:  rp.memStats.HeapAlloc,
	})
	if len(rp.samples) > rp.maxSamples {
		rp.samples = rp.samples[1:]
	}
}

func (rp *RuntimeProfiler) emitStatusReport() {
	stats := rp.Stats()

	rp.logger.Info("uptime %v, goroutines %d, cgo calls %d, heap %s (peak %s), gc %d",
		stats.Uptime.Truncate(time.Millisecond), stats.Goroutines, stats.CgoCalls,
		FormatBytes(stats.HeapAlloc), FormatBytes(stats.PeakHeap), stats.NumGC)

	for _, op := range stats.Operations {
		rp.logger.Info("%s: avg=%v min=%v max=%v count=%d", op.Name,
			op.Avg.Truncate(time.Microsecond), op.Min.Truncate(time.Microsecond),
			op.Max.Truncate(time.Microsecond), op.Count)
	}

	rp.mu.Lock()
	if stats.NumGC > rp.lastGCCount {
		rp.logger.Debug("gc cycles: %d new, cpu fraction %.4f%%",
			stats.NumGC-rp.lastGCCount, rp.memStats.GCCPUFraction*100)
		rp.lastGCCount = stats.NumGC
	}
	rp.mu.Unlock()
}

// Stats returns a snapshot of the latest sample and the operation windows,
// ordered by operation name.
func (rp *RuntimeProfiler) Stats() Stats {
	rp.mu.RLock()
	defer rp.mu.RUnlock()

	stats := Stats{
		Uptime:     time.Since(rp.startTime),
		Goroutines: runtime.NumGoroutine(),
		CgoCalls:   runtime.NumCgoCall(),
		HeapAlloc:  rp.memStats.HeapAlloc,
		PeakHeap:   rp.peakHeap,
		NumGC:      rp.memStats.NumGC,
		Samples:    len(rp.samples),
	}

	for name, tracker := range rp.operations {
		if len(tracker.durations) == 0 {
			continue
		}
		stats.Operations = append(stats.Operations, OperationStats{
			Name:  name,
			Count: tracker.count,
			Avg:   tracker.totalTime / time.Duration(len(tracker.durations)),
			Min:   tracker.minTime,
			Max:   tracker.maxTime,
		})
	}
	sort.Slice(stats.Operations, func(i, j int) bool {
		return stats.Operations[i].Name < stats.Operations[j].Name
	})

	return stats
}

// FormatBytes formats byte counts in human-readable form.
func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
