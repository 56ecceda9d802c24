package gait

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/stride-data/gait.report/internal/config"
	"github.com/stride-data/gait.report/internal/pose"
)

// DetectionMode identifies which keypoint producer fed the session. The
// angle computation branches on this closed enum: marker mode has no
// wrist/ankle markers, so elbow and knee angles are forced to the zero
// sentinel instead of being computed from unavailable points.
type DetectionMode string

const (
	// ModeFullPose is the full 24-joint vocabulary from a pose estimator.
	ModeFullPose DetectionMode = "ai_pose"
	// ModeMarker is the 8-joint vocabulary recovered from colored markers.
	ModeMarker DetectionMode = "color_marker"
)

// CalculatorConfig holds the gait engine tuning parameters.
type CalculatorConfig struct {
	HistorySize         int     // Ring buffer capacity
	ConfidenceThreshold float64 // Minimum keypoint confidence for computations
	StrideNoiseFloor    float64 // Minimum displacement for a counted stride
	AngleDecimals       int     // Presentation precision for angles
	MarkerReferenceKey  string  // Stride/cadence reference joint in marker mode
	PoseReferenceKey    string  // Stride/cadence reference joint in full-pose mode
}

// DefaultCalculatorConfig returns the default gait engine tuning.
func DefaultCalculatorConfig() CalculatorConfig {
	return CalculatorConfigFromTuning(config.EmptyTuningConfig())
}

// CalculatorConfigFromTuning builds a CalculatorConfig from a tuning config.
func CalculatorConfigFromTuning(t *config.TuningConfig) CalculatorConfig {
	return CalculatorConfig{
		HistorySize:         t.GetHistorySize(),
		ConfidenceThreshold: t.GetConfidenceThreshold(),
		StrideNoiseFloor:    t.GetStrideNoiseFloor(),
		AngleDecimals:       t.GetAngleDecimals(),
		MarkerReferenceKey:  t.GetMarkerReferenceKey(),
		PoseReferenceKey:    t.GetPoseReferenceKey(),
	}
}

// Metrics are the five locomotion statistics derived from the history
// window. Zero values mean "no signal", not failures.
type Metrics struct {
	Speed        float64 `json:"speed"`
	StrideLength float64 `json:"stride_length"`
	Cadence      float64 `json:"cadence"`
	Symmetry     float64 `json:"symmetry"`
	Smoothness   float64 `json:"smoothness"`
}

// Result bundles the per-frame joint angles with the windowed metrics.
type Result struct {
	JointAngles map[string]float64 `json:"joint_angles"`
	Metrics     Metrics            `json:"gait_metrics"`
}

// Calculator maintains the frame history and computes angles and gait
// statistics on demand. One calculator belongs to one session and is
// driven by that session's single logical thread.
type Calculator struct {
	history *History
	cfg     CalculatorConfig
}

// NewCalculator creates a gait calculator with the given tuning.
func NewCalculator(cfg CalculatorConfig) *Calculator {
	return &Calculator{
		history: NewHistory(cfg.HistorySize),
		cfg:     cfg,
	}
}

// History exposes the underlying frame buffer, primarily for inspection.
func (c *Calculator) History() *History { return c.history }

// AddFrame appends a frame's keypoints to history.
func (c *Calculator) AddFrame(kps pose.Keypoints, timestampMs int64) {
	c.history.Add(Frame{Keypoints: kps, TimestampMs: timestampMs})
}

// Reset clears the history entirely. Invoked on detection-mode switches
// and calibration confirmation so stale cross-mode data never contaminates
// new statistics.
func (c *Calculator) Reset() {
	c.history.Clear()
}

// Angle computes the angle in degrees at p2 formed by p1-p2-p3. The zero
// return is a sentinel for untrustworthy input: any confidence below the
// threshold, or degenerate zero-length vectors.
func (c *Calculator) Angle(p1, p2, p3 pose.Keypoint) float64 {
	th := c.cfg.ConfidenceThreshold
	if p1.Confidence < th || p2.Confidence < th || p3.Confidence < th {
		return 0
	}

	v1x, v1y := p1.X-p2.X, p1.Y-p2.Y
	v2x, v2y := p3.X-p2.X, p3.Y-p2.Y

	mag1 := math.Hypot(v1x, v1y)
	mag2 := math.Hypot(v2x, v2y)
	if mag1 == 0 || mag2 == 0 {
		return 0
	}

	cos := (v1x*v2x + v1y*v2y) / (mag1 * mag2)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// JointAngles computes the eight standard joint angles for one frame.
// Shoulder and hip angles use shoulder-hip-knee/elbow chains in both
// modes; elbow and knee angles use wrist/ankle endpoints only in
// full-pose mode.
func (c *Calculator) JointAngles(kps pose.Keypoints, mode DetectionMode) map[string]float64 {
	angles := map[string]float64{
		pose.LeftShoulder:  c.Angle(kps.Get(pose.LeftElbow), kps.Get(pose.LeftShoulder), kps.Get(pose.LeftHip)),
		pose.RightShoulder: c.Angle(kps.Get(pose.RightElbow), kps.Get(pose.RightShoulder), kps.Get(pose.RightHip)),
		pose.LeftHip:       c.Angle(kps.Get(pose.LeftShoulder), kps.Get(pose.LeftHip), kps.Get(pose.LeftKnee)),
		pose.RightHip:      c.Angle(kps.Get(pose.RightShoulder), kps.Get(pose.RightHip), kps.Get(pose.RightKnee)),
	}

	if mode == ModeMarker {
		angles[pose.LeftElbow] = 0
		angles[pose.RightElbow] = 0
		angles[pose.LeftKnee] = 0
		angles[pose.RightKnee] = 0
		return angles
	}

	angles[pose.LeftElbow] = c.Angle(kps.Get(pose.LeftShoulder), kps.Get(pose.LeftElbow), kps.Get(pose.LeftWrist))
	angles[pose.RightElbow] = c.Angle(kps.Get(pose.RightShoulder), kps.Get(pose.RightElbow), kps.Get(pose.RightWrist))
	angles[pose.LeftKnee] = c.Angle(kps.Get(pose.LeftHip), kps.Get(pose.LeftKnee), kps.Get(pose.LeftAnkle))
	angles[pose.RightKnee] = c.Angle(kps.Get(pose.RightHip), kps.Get(pose.RightKnee), kps.Get(pose.RightAnkle))
	return angles
}

// hipCenter returns the midpoint between the hips, the movement reference
// point. Undefined unless both hips clear the confidence threshold.
func (c *Calculator) hipCenter(kps pose.Keypoints) (pose.Keypoint, bool) {
	left := kps.Get(pose.LeftHip)
	right := kps.Get(pose.RightHip)
	if left.Confidence < c.cfg.ConfidenceThreshold || right.Confidence < c.cfg.ConfidenceThreshold {
		return pose.Keypoint{}, false
	}
	return pose.Keypoint{
		X:          (left.X + right.X) / 2,
		Y:          (left.Y + right.Y) / 2,
		Confidence: (left.Confidence + right.Confidence) / 2,
	}, true
}

func distance(a, b pose.Keypoint) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Speed sums frame-to-frame hip-center displacement across the buffer and
// divides by the elapsed time over the whole window, in units per second.
func (c *Calculator) Speed() float64 {
	frames := c.history.All()
	if len(frames) < 2 {
		return 0
	}

	total := 0.0
	count := 0
	for i := 1; i < len(frames); i++ {
		prev, okPrev := c.hipCenter(frames[i-1].Keypoints)
		curr, okCurr := c.hipCenter(frames[i].Keypoints)
		if okPrev && okCurr {
			total += distance(prev, curr)
			count++
		}
	}
	if count == 0 {
		return 0
	}

	elapsed := float64(c.history.ElapsedMs()) / 1000.0
	if elapsed <= 0 {
		return 0
	}
	return total / elapsed
}

// StrideLength tracks a reference limb point's vertical motion and treats
// each direction reversal as a step boundary. The result is the mean
// horizontal displacement between boundaries, ignoring reversals below
// the noise floor.
func (c *Calculator) StrideLength(refKey string) float64 {
	frames := c.history.All()
	if len(frames) < 10 {
		return 0
	}

	var positions []pose.Keypoint
	for _, f := range frames {
		p := f.Keypoints.Get(refKey)
		if p.Confidence > c.cfg.ConfidenceThreshold {
			positions = append(positions, p)
		}
	}
	if len(positions) < 2 {
		return 0
	}

	var strides []float64
	prevY := positions[0].Y
	direction := 0
	stepStartX := positions[0].X

	for _, p := range positions[1:] {
		currDirection := -1
		if p.Y > prevY {
			currDirection = 1
		}

		// A direction change marks the end of a step.
		if direction != 0 && currDirection != direction {
			stride := math.Abs(p.X - stepStartX)
			if stride > c.cfg.StrideNoiseFloor {
				strides = append(strides, stride)
			}
			stepStartX = p.X
		}

		direction = currDirection
		prevY = p.Y
	}

	if len(strides) == 0 {
		return 0
	}
	return stat.Mean(strides, nil)
}

// Cadence counts vertical direction reversals of the reference point as
// steps and returns steps per minute over the window.
func (c *Calculator) Cadence(refKey string) float64 {
	frames := c.history.All()
	if len(frames) < 20 {
		return 0
	}

	steps := 0
	direction := 0
	havePrev := false
	prevY := 0.0

	for _, f := range frames {
		p := f.Keypoints.Get(refKey)
		if p.Confidence < c.cfg.ConfidenceThreshold {
			continue
		}

		if havePrev {
			currDirection := -1
			if p.Y > prevY {
				currDirection = 1
			}
			if direction != 0 && currDirection != direction {
				steps++
			}
			direction = currDirection
		}

		prevY = p.Y
		havePrev = true
	}

	minutes := float64(c.history.ElapsedMs()) / 60000.0
	if minutes <= 0 {
		return 0
	}
	return float64(steps) / minutes
}

// leftRightPairs are the joint-angle pairs compared for symmetry.
var leftRightPairs = [4][2]string{
	{pose.LeftShoulder, pose.RightShoulder},
	{pose.LeftElbow, pose.RightElbow},
	{pose.LeftHip, pose.RightHip},
	{pose.LeftKnee, pose.RightKnee},
}

// Symmetry scores left-right balance of the joint angles in [0, 1], where
// 1 is perfectly symmetric. Pairs where either angle is the zero sentinel
// are skipped; no valid pair scores 0.
func (c *Calculator) Symmetry(angles map[string]float64) float64 {
	totalDiff := 0.0
	validPairs := 0

	for _, pair := range leftRightPairs {
		left := angles[pair[0]]
		right := angles[pair[1]]
		if left > 0 && right > 0 {
			max := math.Max(left, right)
			totalDiff += math.Abs(left-right) / max
			validPairs++
		}
	}

	if validPairs == 0 {
		return 0
	}
	return math.Max(0, 1-totalDiff/float64(validPairs))
}

// Smoothness measures how steady the hip-center velocity is across the
// window. The absolute frame-to-frame velocity change serves as a jerk
// proxy; its variance is mapped through exp(-var/100) so lower variance
// scores closer to 1.
func (c *Calculator) Smoothness() float64 {
	frames := c.history.All()
	if len(frames) < 4 {
		return 0
	}

	var velocities []float64
	for i := 1; i < len(frames); i++ {
		prev, okPrev := c.hipCenter(frames[i-1].Keypoints)
		curr, okCurr := c.hipCenter(frames[i].Keypoints)
		if !okPrev || !okCurr {
			continue
		}
		dt := float64(frames[i].TimestampMs-frames[i-1].TimestampMs) / 1000.0
		if dt > 0 {
			velocities = append(velocities, distance(prev, curr)/dt)
		}
	}
	if len(velocities) < 2 {
		return 0
	}

	changes := make([]float64, 0, len(velocities)-1)
	for i := 1; i < len(velocities); i++ {
		changes = append(changes, math.Abs(velocities[i]-velocities[i-1]))
	}
	if len(changes) == 0 {
		return 1
	}

	variance := stat.PopVariance(changes, nil)
	smoothness := math.Exp(-variance / 100)
	return math.Min(1, math.Max(0, smoothness))
}

// ReferenceKey returns the stride/cadence reference joint for a mode.
func (c *Calculator) ReferenceKey(mode DetectionMode) string {
	if mode == ModeMarker {
		return c.cfg.MarkerReferenceKey
	}
	return c.cfg.PoseReferenceKey
}

// Calculate appends the frame to history and computes all joint angles
// and gait metrics. Returned values are rounded for presentation; the
// internal computation runs at full precision.
func (c *Calculator) Calculate(kps pose.Keypoints, timestampMs int64, mode DetectionMode) Result {
	c.AddFrame(kps, timestampMs)

	angles := c.JointAngles(kps, mode)
	refKey := c.ReferenceKey(mode)

	metrics := Metrics{
		Speed:        roundTo(c.Speed(), 2),
		StrideLength: roundTo(c.StrideLength(refKey), 2),
		Cadence:      roundTo(c.Cadence(refKey), 2),
		Symmetry:     roundTo(c.Symmetry(angles), 3),
		Smoothness:   roundTo(c.Smoothness(), 3),
	}

	rounded := make(map[string]float64, len(angles))
	for name, a := range angles {
		rounded[name] = roundTo(a, c.cfg.AngleDecimals)
	}

	return Result{JointAngles: rounded, Metrics: metrics}
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
