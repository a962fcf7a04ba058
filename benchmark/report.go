package benchmark

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ReportFormat is the encoding of a written report.
type ReportFormat string

const (
	// ReportJSON writes results.json.
	ReportJSON ReportFormat = "json"
	// ReportYAML writes results.yaml.
	ReportYAML ReportFormat = "yaml"
)

// ParseReportFormat parses a report format name.
func ParseReportFormat(s string) (ReportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return ReportJSON, nil
	case "yaml", "yml":
		return ReportYAML, nil
	default:
		return "", errors.Errorf("unknown report format %q", s)
	}
}

// Report is the document written by WriteReport.
type Report struct {
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Results     []Result  `json:"results"      yaml:"results"`
}

// WriteReport writes results to dir as results.json or results.yaml,
// creating dir if needed.
//
// Arguments:
//   - dir: The output directory.
//   - results: The results to write.
//   - format: The encoding.
//
// Returns:
//   - string: The path of the written file.
//   - error: An error if the report cannot be encoded or written.
func WriteReport(dir string, results []Result, format ReportFormat) (string, error) {
	report := Report{GeneratedAt: time.Now().UTC(), Results: results}

	var (
		data []byte
		err  error
	)
	switch format {
	case ReportJSON:
		data, err = json.MarshalIndent(report, "", "  ")
	case ReportYAML:
		data, err = yaml.Marshal(report)
	default:
		return "", errors.Errorf("unknown report format %q", format)
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal report")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create report directory")
	}

	path := filepath.Join(dir, "results."+string(format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, "failed to write report")
	}

	return path, nil
}

// WriteSummary prints one aligned line per result.
func WriteSummary(w io.Writer, results []Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tBACKEND\tINPUT\tLAYOUT\tIMAGES\tMEAN\tP90\tFPS")
	for _, r := range results {
		name := r.Scenario
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%dx%dx%d\t%s\t%d\t%.2fms\t%.2fms\t%.2f\n",
			name, r.Backend,
			r.Shape.Height, r.Shape.Width, r.Shape.Channels,
			r.Layout, len(r.Samples),
			r.MeanSeconds*1000, r.Latency.P90*1000, r.FPS)
	}
	return tw.Flush()
}
