// Command gait-report renders offline PNG reports from a recorded
// session JSONL file (one result object per line, as emitted on the
// WebSocket result stream).
package main

import (
	"flag"
	"log"

	"github.com/stride-data/gait.report/internal/report"
)

var (
	input     = flag.String("input", "", "Path to the recorded session JSONL file (required)")
	outputDir = flag.String("output-dir", "report_output", "Directory to write PNG plots to")
	angles    = flag.Bool("angles", true, "Render the joint angle plot")
	metrics   = flag.Bool("metrics", true, "Render the per-metric plots")
)

func main() {
	flag.Parse()

	if *input == "" {
		log.Fatal("-input is required")
	}

	results, err := report.ReadResultsFile(*input)
	if err != nil {
		log.Fatalf("Failed to read results: %v", err)
	}
	log.Printf("Loaded %d results from %s", len(results), *input)

	if *angles {
		if err := report.RenderAngles(results, *outputDir); err != nil {
			log.Fatalf("Failed to render angle plot: %v", err)
		}
		log.Printf("Wrote joint angle plot to %s", *outputDir)
	}

	if *metrics {
		if err := report.RenderMetrics(results, *outputDir); err != nil {
			log.Fatalf("Failed to render metric plots: %v", err)
		}
		log.Printf("Wrote metric plots to %s", *outputDir)
	}
}
