// Package session ties one client connection to its pair of analysis
// engines. Each session owns exactly one marker detector and one gait
// calculator; frames are processed strictly in arrival order by the
// single logical thread that delivers them.
package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/stride-data/gait.report/internal/config"
	"github.com/stride-data/gait.report/internal/gait"
	"github.com/stride-data/gait.report/internal/marker"
	"github.com/stride-data/gait.report/internal/pose"
	"github.com/stride-data/gait.report/internal/vision"
)

// Result is the per-frame analysis bundle relayed to the client.
// Keypoints, JointAngles and Metrics are nil when the frame produced no
// detection; that is "no signal", not an error.
type Result struct {
	TimestampMs int64              `json:"timestamp"`
	Keypoints   pose.Keypoints     `json:"keypoints"`
	JointAngles map[string]float64 `json:"joint_angles,omitempty"`
	Metrics     *gait.Metrics      `json:"gait_metrics,omitempty"`
	Confidence  float64            `json:"confidence"`
}

// Session holds the per-connection engine instances and detection mode.
// Engines across sessions share no mutable state, so sessions may be
// processed concurrently without synchronization.
type Session struct {
	id        string
	mode      gait.DetectionMode
	detector  *marker.Detector
	estimator pose.Estimator
	calc      *gait.Calculator
}

// New creates a session with fresh engine state. estimator may be nil
// when no pose model is available; such a session only supports marker
// mode.
func New(estimator pose.Estimator, tuning *config.TuningConfig) *Session {
	if tuning == nil {
		tuning = config.EmptyTuningConfig()
	}
	return &Session{
		id:        uuid.NewString(),
		mode:      gait.ModeFullPose,
		detector:  marker.NewDetector(nil, marker.DetectorConfigFromTuning(tuning)),
		estimator: estimator,
		calc:      gait.NewCalculator(gait.CalculatorConfigFromTuning(tuning)),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Mode returns the current detection mode.
func (s *Session) Mode() gait.DetectionMode { return s.mode }

// SetMode switches the detection mode and resets both engines so stale
// cross-mode data cannot contaminate new statistics.
func (s *Session) SetMode(mode gait.DetectionMode) error {
	switch mode {
	case gait.ModeFullPose, gait.ModeMarker:
	default:
		return fmt.Errorf("unknown detection mode %q", mode)
	}
	if mode == s.mode {
		return nil
	}
	s.mode = mode
	s.Reset()
	return nil
}

// Reset clears the gait history and marker tracking state.
func (s *Session) Reset() {
	s.calc.Reset()
	s.detector.ResetTracking()
}

// ProcessFrame runs the mode's detector once and the gait engine once,
// per the session contract. A frame with no detection yields an empty
// result carrying only the timestamp.
func (s *Session) ProcessFrame(frame *vision.Image, timestampMs int64) Result {
	var kps pose.Keypoints
	var confidence float64

	switch s.mode {
	case gait.ModeMarker:
		kps, confidence = s.detector.Detect(frame)
	default:
		if s.estimator != nil {
			var ok bool
			kps, confidence, ok = s.estimator.Detect(frame)
			if !ok {
				kps = nil
			}
		}
	}

	if kps == nil {
		return Result{TimestampMs: timestampMs}
	}

	res := s.calc.Calculate(kps, timestampMs, s.mode)
	metrics := res.Metrics
	return Result{
		TimestampMs: timestampMs,
		Keypoints:   kps,
		JointAngles: res.JointAngles,
		Metrics:     &metrics,
		Confidence:  confidence,
	}
}

// Calibrate runs a one-shot calibration-mode detection. Tracking state
// and gait history are untouched.
func (s *Session) Calibrate(frame *vision.Image) []marker.Detection {
	return s.detector.DetectAll(frame)
}

// UpdateMarkerConfigs replaces the marker configuration wholesale after
// validating it.
func (s *Session) UpdateMarkerConfigs(configs []marker.Config) error {
	return s.detector.UpdateConfigs(configs)
}

// MarkerConfigs returns the session's active marker configuration.
func (s *Session) MarkerConfigs() []marker.Config {
	return s.detector.Configs()
}

// ConfirmCalibration installs a confirmed legacy color -> joint mapping
// and resets engine state so statistics restart clean.
func (s *Session) ConfirmCalibration(labels map[string]string) {
	s.detector.SetLabelMapping(labels)
	s.Reset()
}
