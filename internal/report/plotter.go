// Package report renders offline PNG plots from recorded session results.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/stride-data/gait.report/internal/pose"
	"github.com/stride-data/gait.report/internal/session"
)

// seriesColors cycles through distinguishable line colors.
var seriesColors = []color.RGBA{
	{R: 0xEF, G: 0x44, B: 0x44, A: 0xFF},
	{R: 0x3B, G: 0x82, B: 0xF6, A: 0xFF},
	{R: 0x22, G: 0xC5, B: 0x5E, A: 0xFF},
	{R: 0xEA, G: 0xB3, B: 0x08, A: 0xFF},
	{R: 0xF9, G: 0x73, B: 0x16, A: 0xFF},
	{R: 0xA8, G: 0x55, B: 0xF7, A: 0xFF},
	{R: 0xEC, G: 0x48, B: 0x99, A: 0xFF},
	{R: 0x06, G: 0xB6, B: 0xD4, A: 0xFF},
}

// plottedJoints are the angle series included in the angle plot.
var plottedJoints = []string{
	pose.LeftShoulder, pose.RightShoulder,
	pose.LeftElbow, pose.RightElbow,
	pose.LeftHip, pose.RightHip,
	pose.LeftKnee, pose.RightKnee,
}

// ReadResults decodes a JSONL stream of recorded session results, one
// result per line. Blank lines are skipped; a malformed line is an error.
func ReadResults(r io.Reader) ([]session.Result, error) {
	var results []session.Result
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var res session.Result
		if err := json.Unmarshal(line, &res); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		results = append(results, res)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	return results, nil
}

// ReadResultsFile reads a recorded session JSONL file.
func ReadResultsFile(path string) ([]session.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}
	defer f.Close()
	return ReadResults(f)
}

// RenderAngles plots all eight joint-angle series against elapsed time
// and saves the result as a PNG in outputDir.
func RenderAngles(results []session.Result, outputDir string) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to plot")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	p := plot.New()
	p.Title.Text = "Joint Angles"
	p.X.Label.Text = "elapsed (s)"
	p.Y.Label.Text = "angle (deg)"
	p.Legend.Top = true

	t0 := results[0].TimestampMs
	for i, joint := range plottedJoints {
		pts := make(plotter.XYs, 0, len(results))
		for _, res := range results {
			pts = append(pts, plotter.XY{
				X: float64(res.TimestampMs-t0) / 1000.0,
				Y: res.JointAngles[joint],
			})
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("failed to build %s series: %w", joint, err)
		}
		line.Color = seriesColors[i%len(seriesColors)]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(joint, line)
	}

	out := filepath.Join(outputDir, "joint_angles.png")
	if err := p.Save(14*vg.Inch, 6*vg.Inch, out); err != nil {
		return fmt.Errorf("failed to save angle plot: %w", err)
	}
	return nil
}

// metricSeries extracts one named metric from the result sequence.
type metricSeries struct {
	name  string
	value func(res session.Result) float64
}

// RenderMetrics plots the five gait metrics, one PNG per metric, against
// elapsed time.
func RenderMetrics(results []session.Result, outputDir string) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to plot")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	series := []metricSeries{
		{name: "speed", value: func(r session.Result) float64 { return r.Metrics.Speed }},
		{name: "stride_length", value: func(r session.Result) float64 { return r.Metrics.StrideLength }},
		{name: "cadence", value: func(r session.Result) float64 { return r.Metrics.Cadence }},
		{name: "symmetry", value: func(r session.Result) float64 { return r.Metrics.Symmetry }},
		{name: "smoothness", value: func(r session.Result) float64 { return r.Metrics.Smoothness }},
	}

	t0 := results[0].TimestampMs
	for i, s := range series {
		pts := make(plotter.XYs, 0, len(results))
		for _, res := range results {
			if res.Metrics == nil {
				continue
			}
			pts = append(pts, plotter.XY{
				X: float64(res.TimestampMs-t0) / 1000.0,
				Y: s.value(res),
			})
		}
		if len(pts) == 0 {
			continue
		}

		p := plot.New()
		p.Title.Text = s.name
		p.X.Label.Text = "elapsed (s)"
		p.Y.Label.Text = s.name

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("failed to build %s series: %w", s.name, err)
		}
		line.Color = seriesColors[i%len(seriesColors)]
		line.Width = vg.Points(1)
		p.Add(line)

		out := filepath.Join(outputDir, fmt.Sprintf("metric_%s.png", s.name))
		if err := p.Save(10*vg.Inch, 4*vg.Inch, out); err != nil {
			return fmt.Errorf("failed to save %s plot: %w", s.name, err)
		}
	}
	return nil
}
