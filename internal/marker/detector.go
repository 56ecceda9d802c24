package marker

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/stride-data/gait.report/internal/config"
	"github.com/stride-data/gait.report/internal/pose"
	"github.com/stride-data/gait.report/internal/vision"
)

// DetectorConfig holds the tuning parameters of the marker engine. The
// numeric values are empirical; they come from the tuning config rather
// than being fixed invariants.
type DetectorConfig struct {
	MinArea     float64 // Minimum blob area (px²) for a valid marker
	AreaScale   float64 // Blob area divisor for confidence scaling
	MorphKernel int     // Square kernel size for mask open/close
	Decay       float64 // Per-frame confidence decay while occluded
	MinDecay    float64 // Floor for the decay factor
	MaxMissing  int     // Missed frames bridged before the zero sentinel
}

// DefaultDetectorConfig returns the default marker engine tuning.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfigFromTuning(config.EmptyTuningConfig())
}

// DetectorConfigFromTuning builds a DetectorConfig from a tuning config.
func DetectorConfigFromTuning(t *config.TuningConfig) DetectorConfig {
	return DetectorConfig{
		MinArea:     t.GetMinMarkerArea(),
		AreaScale:   t.GetConfidenceAreaScale(),
		MorphKernel: t.GetMorphKernelSize(),
		Decay:       t.GetOcclusionDecay(),
		MinDecay:    t.GetOcclusionMinDecay(),
		MaxMissing:  t.GetMaxMissingFrames(),
	}
}

// Detection is one candidate marker assignment produced in calibration
// mode: a blob centroid tagged with the config that claimed it.
type Detection struct {
	ID             string  `json:"id"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	SuggestedLabel string  `json:"suggested_label"`
	ColorName      string  `json:"color_name"`
	DisplayColor   string  `json:"display_color"`
	Confidence     float64 `json:"confidence"`
	PositionOrder  int     `json:"position_order"`
}

// trackState carries one joint's occlusion bookkeeping across frames.
type trackState struct {
	lastKnown     pose.Keypoint
	hasLast       bool
	framesMissing int
}

// Detector converts frames into keypoints via color segmentation. One
// detector belongs to one session; its tracking state is mutated once per
// processed frame by that session's single logical thread and is reset
// only explicitly.
type Detector struct {
	configs      []Config
	labelMapping map[string]string // legacy single-color color_name -> joint_name
	tracks       map[string]*trackState
	cfg          DetectorConfig
}

// NewDetector creates a detector. A nil or empty configs slice falls back
// to the built-in presets.
func NewDetector(configs []Config, cfg DetectorConfig) *Detector {
	if len(configs) == 0 {
		configs = DefaultConfigs()
	}
	return &Detector{
		configs:      configs,
		labelMapping: make(map[string]string),
		tracks:       make(map[string]*trackState),
		cfg:          cfg,
	}
}

// UpdateConfigs replaces the marker configurations wholesale, e.g. after
// HSV tuning. Safe between any two frame calls.
func (d *Detector) UpdateConfigs(configs []Config) error {
	if err := ValidateConfigs(configs); err != nil {
		return fmt.Errorf("rejecting marker configs: %w", err)
	}
	d.configs = configs
	return nil
}

// Configs returns the active marker configurations.
func (d *Detector) Configs() []Config {
	return d.configs
}

// SetLabelMapping installs a confirmed color_name -> joint_name mapping
// from the legacy single-marker calibration flow. It only overrides
// detections that carry no position_order grouping.
func (d *Detector) SetLabelMapping(mapping map[string]string) {
	if mapping == nil {
		mapping = make(map[string]string)
	}
	d.labelMapping = mapping
}

// ResetTracking discards all per-joint occlusion state. Used on session
// reset and calibration confirmation; tracking state is never dropped
// silently.
func (d *Detector) ResetTracking() {
	d.tracks = make(map[string]*trackState)
}

// DetectAll runs calibration-mode detection: every blob assignment across
// all configured colors, tagged with a synthetic "{color}_{order}" id.
// Supports multiple markers of the same color by sorting each color's
// blobs top to bottom and mapping them by position_order. Temporal
// tracking state is not touched.
func (d *Detector) DetectAll(frame *vision.Image) []Detection {
	// Group configs by color, each group ordered by position_order.
	groups := make(map[string][]Config)
	for _, c := range d.configs {
		groups[c.ColorName] = append(groups[c.ColorName], c)
	}
	for color := range groups {
		g := groups[color]
		sort.Slice(g, func(i, j int) bool { return g[i].PositionOrder < g[j].PositionOrder })
	}

	var detected []Detection
	processed := make(map[string]bool)
	for _, c := range d.configs {
		if processed[c.ColorName] {
			continue
		}
		processed[c.ColorName] = true
		group := groups[c.ColorName]

		blobs := d.segment(frame, c.HSVRange)

		// Top of frame first.
		sort.Slice(blobs, func(i, j int) bool { return blobs[i].CentroidY < blobs[j].CentroidY })

		for i, cfg := range group {
			if i >= len(blobs) {
				// Configs beyond the blob count stay undetected this frame.
				break
			}
			b := blobs[i]
			detected = append(detected, Detection{
				ID:             fmt.Sprintf("%s_%d", cfg.ColorName, cfg.PositionOrder),
				X:              b.CentroidX,
				Y:              b.CentroidY,
				SuggestedLabel: cfg.JointName,
				ColorName:      cfg.ColorName,
				DisplayColor:   cfg.DisplayColor,
				Confidence:     areaConfidence(b.Area, d.cfg.AreaScale),
				PositionOrder:  cfg.PositionOrder,
			})
		}
	}
	return detected
}

// segment builds the cleaned mask for one HSV range and extracts blobs.
func (d *Detector) segment(frame *vision.Image, r vision.HSVRange) []vision.Blob {
	mask := frame.InRange(r)
	// Open first to remove isolated false-positive pixels, then close to
	// merge fragments of the true marker.
	mask = mask.Open(d.cfg.MorphKernel).Close(d.cfg.MorphKernel)
	return mask.Blobs(d.cfg.MinArea)
}

func areaConfidence(area, scale float64) float64 {
	c := area / scale
	if c > 1 {
		return 1
	}
	return c
}

// Detect runs production-mode detection: a complete keypoint set over the
// fixed marker joint vocabulary, with missing joints bridged from last
// known positions at decayed confidence. Returns the set and the average
// over strictly positive confidences; returns (nil, 0) when no markers
// were found at all this frame.
func (d *Detector) Detect(frame *vision.Image) (pose.Keypoints, float64) {
	points := d.DetectAll(frame)
	if len(points) == 0 {
		return nil, 0
	}

	keypoints := make(pose.Keypoints, len(pose.MarkerJoints))
	for _, pt := range points {
		joint := pt.SuggestedLabel
		// Detections without a position_order grouping go through the
		// legacy confirmed color mapping instead.
		if pt.PositionOrder == 0 {
			if mapped, ok := d.labelMapping[pt.ColorName]; ok {
				joint = mapped
			}
		}
		kp := pose.Keypoint{X: pt.X, Y: pt.Y, Confidence: pt.Confidence}
		keypoints[joint] = kp

		ts := d.track(joint)
		ts.lastKnown = kp
		ts.hasLast = true
		ts.framesMissing = 0
	}

	// Occlusion handling: fill undetected marker joints from their last
	// known positions while the gap is short enough.
	for _, joint := range pose.MarkerJoints {
		if _, ok := keypoints[joint]; ok {
			continue
		}
		ts := d.track(joint)
		ts.framesMissing++
		if ts.hasLast && ts.framesMissing < d.cfg.MaxMissing {
			decay := 1 - float64(ts.framesMissing)*d.cfg.Decay
			if decay < d.cfg.MinDecay {
				decay = d.cfg.MinDecay
			}
			keypoints[joint] = pose.Keypoint{
				X:          ts.lastKnown.X,
				Y:          ts.lastKnown.Y,
				Confidence: ts.lastKnown.Confidence * decay,
			}
		} else {
			keypoints[joint] = pose.Keypoint{}
		}
	}

	var confidences []float64
	for _, kp := range keypoints {
		if kp.Confidence > 0 {
			confidences = append(confidences, kp.Confidence)
		}
	}
	if len(confidences) == 0 {
		return keypoints, 0
	}
	return keypoints, stat.Mean(confidences, nil)
}

func (d *Detector) track(joint string) *trackState {
	ts, ok := d.tracks[joint]
	if !ok {
		ts = &trackState{}
		d.tracks[joint] = ts
	}
	return ts
}
