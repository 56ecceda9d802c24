package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig holds the empirical constants of the marker and gait
// engines. Fields are pointers so partial JSON configs are safe: any field
// omitted from the file keeps its built-in default via the Get* accessors.
// The decay, area-scale and stride-floor values are operational tuning
// knobs with no derivation, which is why they live here rather than as
// hard-coded invariants.
type TuningConfig struct {
	// Marker engine params
	MinMarkerArea       *float64 `json:"min_marker_area,omitempty"`
	ConfidenceAreaScale *float64 `json:"confidence_area_scale,omitempty"`
	MorphKernelSize     *int     `json:"morph_kernel_size,omitempty"`
	OcclusionDecay      *float64 `json:"occlusion_decay,omitempty"`
	OcclusionMinDecay   *float64 `json:"occlusion_min_decay,omitempty"`
	MaxMissingFrames    *int     `json:"max_missing_frames,omitempty"`

	// Gait engine params
	HistorySize         *int     `json:"history_size,omitempty"`
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty"`
	StrideNoiseFloor    *float64 `json:"stride_noise_floor,omitempty"`
	AngleDecimals       *int     `json:"angle_decimals,omitempty"`
	MarkerReferenceKey  *string  `json:"marker_reference_key,omitempty"`
	PoseReferenceKey    *string  `json:"pose_reference_key,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from a file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must
// have a .json extension and be under the max file size. Fields omitted
// from the JSON retain their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.MinMarkerArea != nil && *c.MinMarkerArea < 0 {
		return fmt.Errorf("min_marker_area must be non-negative, got %f", *c.MinMarkerArea)
	}
	if c.ConfidenceAreaScale != nil && *c.ConfidenceAreaScale <= 0 {
		return fmt.Errorf("confidence_area_scale must be positive, got %f", *c.ConfidenceAreaScale)
	}
	if c.MorphKernelSize != nil && (*c.MorphKernelSize < 1 || *c.MorphKernelSize%2 == 0) {
		return fmt.Errorf("morph_kernel_size must be a positive odd number, got %d", *c.MorphKernelSize)
	}
	if c.OcclusionDecay != nil && (*c.OcclusionDecay < 0 || *c.OcclusionDecay > 1) {
		return fmt.Errorf("occlusion_decay must be between 0 and 1, got %f", *c.OcclusionDecay)
	}
	if c.OcclusionMinDecay != nil && (*c.OcclusionMinDecay < 0 || *c.OcclusionMinDecay > 1) {
		return fmt.Errorf("occlusion_min_decay must be between 0 and 1, got %f", *c.OcclusionMinDecay)
	}
	if c.MaxMissingFrames != nil && *c.MaxMissingFrames < 1 {
		return fmt.Errorf("max_missing_frames must be >= 1, got %d", *c.MaxMissingFrames)
	}
	if c.HistorySize != nil && *c.HistorySize < 2 {
		return fmt.Errorf("history_size must be >= 2, got %d", *c.HistorySize)
	}
	if c.ConfidenceThreshold != nil && (*c.ConfidenceThreshold < 0 || *c.ConfidenceThreshold > 1) {
		return fmt.Errorf("confidence_threshold must be between 0 and 1, got %f", *c.ConfidenceThreshold)
	}
	if c.StrideNoiseFloor != nil && *c.StrideNoiseFloor < 0 {
		return fmt.Errorf("stride_noise_floor must be non-negative, got %f", *c.StrideNoiseFloor)
	}
	if c.AngleDecimals != nil && (*c.AngleDecimals < 0 || *c.AngleDecimals > 6) {
		return fmt.Errorf("angle_decimals must be between 0 and 6, got %d", *c.AngleDecimals)
	}
	return nil
}

// GetMinMarkerArea returns the minimum contour area (px²) for a valid marker.
func (c *TuningConfig) GetMinMarkerArea() float64 {
	if c.MinMarkerArea == nil {
		return 100
	}
	return *c.MinMarkerArea
}

// GetConfidenceAreaScale returns the area divisor used to scale blob
// area into a [0, 1] confidence.
func (c *TuningConfig) GetConfidenceAreaScale() float64 {
	if c.ConfidenceAreaScale == nil {
		return 5000
	}
	return *c.ConfidenceAreaScale
}

// GetMorphKernelSize returns the square kernel size for mask cleanup.
func (c *TuningConfig) GetMorphKernelSize() int {
	if c.MorphKernelSize == nil {
		return 5
	}
	return *c.MorphKernelSize
}

// GetOcclusionDecay returns the per-frame confidence decay applied while a
// marker joint is occluded.
func (c *TuningConfig) GetOcclusionDecay() float64 {
	if c.OcclusionDecay == nil {
		return 0.2
	}
	return *c.OcclusionDecay
}

// GetOcclusionMinDecay returns the floor of the occlusion decay factor.
func (c *TuningConfig) GetOcclusionMinDecay() float64 {
	if c.OcclusionMinDecay == nil {
		return 0.1
	}
	return *c.OcclusionMinDecay
}

// GetMaxMissingFrames returns how many consecutive missed frames are
// bridged by interpolation before a joint falls back to the zero sentinel.
func (c *TuningConfig) GetMaxMissingFrames() int {
	if c.MaxMissingFrames == nil {
		return 5
	}
	return *c.MaxMissingFrames
}

// GetHistorySize returns the metrics history ring buffer capacity.
func (c *TuningConfig) GetHistorySize() int {
	if c.HistorySize == nil {
		return 100
	}
	return *c.HistorySize
}

// GetConfidenceThreshold returns the minimum keypoint confidence for a
// point to participate in angle and gait computations.
func (c *TuningConfig) GetConfidenceThreshold() float64 {
	if c.ConfidenceThreshold == nil {
		return 0.3
	}
	return *c.ConfidenceThreshold
}

// GetStrideNoiseFloor returns the minimum horizontal displacement for a
// direction reversal to count as a stride.
func (c *TuningConfig) GetStrideNoiseFloor() float64 {
	if c.StrideNoiseFloor == nil {
		return 10
	}
	return *c.StrideNoiseFloor
}

// GetAngleDecimals returns the decimal places used when presenting angles.
func (c *TuningConfig) GetAngleDecimals() int {
	if c.AngleDecimals == nil {
		return 1
	}
	return *c.AngleDecimals
}

// GetMarkerReferenceKey returns the limb reference joint used for stride
// and cadence in marker mode. Paws are not tracked by markers, so the
// default falls back to the left elbow.
func (c *TuningConfig) GetMarkerReferenceKey() string {
	if c.MarkerReferenceKey == nil || *c.MarkerReferenceKey == "" {
		return "left_elbow"
	}
	return *c.MarkerReferenceKey
}

// GetPoseReferenceKey returns the limb reference joint used for stride and
// cadence in full-pose mode.
func (c *TuningConfig) GetPoseReferenceKey() string {
	if c.PoseReferenceKey == nil || *c.PoseReferenceKey == "" {
		return "left_front_paw"
	}
	return *c.PoseReferenceKey
}
