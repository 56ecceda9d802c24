package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/stride-data/gait.report/internal/httputil"
	"github.com/stride-data/gait.report/internal/pose"
)

// angleChartJoints are the series plotted on the live angle chart.
var angleChartJoints = []string{
	pose.LeftShoulder, pose.RightShoulder,
	pose.LeftElbow, pose.RightElbow,
	pose.LeftHip, pose.RightHip,
	pose.LeftKnee, pose.RightKnee,
}

// handleAngleChart renders an HTML line chart of recent joint angles.
// This is a debugging view over the in-memory result log, not a stored
// session report. Query params:
//   - max_points (optional; default 500) caps the rendered window
func (s *Server) handleAngleChart(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		httputil.NotFound(w, "no result log configured")
		return
	}

	results := s.results.Snapshot()
	if len(results) == 0 {
		httputil.NotFound(w, "no results recorded yet")
		return
	}

	maxPoints := 500
	if mp := r.URL.Query().Get("max_points"); mp != "" {
		if v, err := strconv.Atoi(mp); err == nil && v > 10 && v <= 10000 {
			maxPoints = v
		}
	}
	if len(results) > maxPoints {
		results = results[len(results)-maxPoints:]
	}

	xAxis := make([]string, 0, len(results))
	series := make(map[string][]opts.LineData, len(angleChartJoints))
	for _, res := range results {
		xAxis = append(xAxis, strconv.FormatInt(res.TimestampMs, 10))
		for _, joint := range angleChartJoints {
			series[joint] = append(series[joint], opts.LineData{Value: res.JointAngles[joint]})
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Joint Angles", Theme: "dark", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Joint Angles Over Time", Subtitle: fmt.Sprintf("frames=%d", len(results))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "timestamp (ms)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "angle (deg)"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	line.SetXAxis(xAxis)
	for _, joint := range angleChartJoints {
		line.AddSeries(joint, series[joint])
	}

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
