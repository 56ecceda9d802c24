// Package marker implements keypoint recovery from colored physical
// markers: HSV color segmentation per configured color group, positional
// assignment of blobs to joints, and per-joint occlusion tracking.
package marker

import (
	"fmt"

	"github.com/stride-data/gait.report/internal/vision"
)

// Config declares that the Nth detected blob of a color, sorted top to
// bottom, is labeled JointName. Several configs may share a ColorName for
// repeated markers of one color at different anatomical positions; their
// PositionOrder values must be distinct within the color group.
type Config struct {
	JointName     string          `json:"joint_name"`
	ColorName     string          `json:"color_name"`
	PositionOrder int             `json:"position_order"`
	HSVRange      vision.HSVRange `json:"hsv_range"`
	DisplayColor  string          `json:"display_color"`
}

// DefaultConfigs returns the built-in marker presets, one per limb joint,
// each with a distinct hue band chosen to contrast with fur. The red band
// wraps through hue 0.
func DefaultConfigs() []Config {
	return []Config{
		{
			JointName: "left_shoulder", ColorName: "Red", PositionOrder: 1,
			HSVRange:     vision.HSVRange{HueLow: 170, HueHigh: 10, SatLow: 120, SatHigh: 255, ValLow: 100, ValHigh: 255},
			DisplayColor: "#EF4444",
		},
		{
			JointName: "right_shoulder", ColorName: "Blue", PositionOrder: 1,
			HSVRange:     vision.HSVRange{HueLow: 100, HueHigh: 130, SatLow: 120, SatHigh: 255, ValLow: 80, ValHigh: 255},
			DisplayColor: "#3B82F6",
		},
		{
			JointName: "left_elbow", ColorName: "Green", PositionOrder: 1,
			HSVRange:     vision.HSVRange{HueLow: 35, HueHigh: 85, SatLow: 120, SatHigh: 255, ValLow: 80, ValHigh: 255},
			DisplayColor: "#22C55E",
		},
		{
			JointName: "right_elbow", ColorName: "Yellow", PositionOrder: 1,
			HSVRange:     vision.HSVRange{HueLow: 20, HueHigh: 35, SatLow: 120, SatHigh: 255, ValLow: 150, ValHigh: 255},
			DisplayColor: "#EAB308",
		},
		{
			JointName: "left_hip", ColorName: "Orange", PositionOrder: 1,
			HSVRange:     vision.HSVRange{HueLow: 10, HueHigh: 20, SatLow: 150, SatHigh: 255, ValLow: 150, ValHigh: 255},
			DisplayColor: "#F97316",
		},
		{
			JointName: "right_hip", ColorName: "Purple", PositionOrder: 1,
			HSVRange:     vision.HSVRange{HueLow: 130, HueHigh: 160, SatLow: 80, SatHigh: 255, ValLow: 60, ValHigh: 255},
			DisplayColor: "#A855F7",
		},
		{
			JointName: "left_knee", ColorName: "Pink", PositionOrder: 1,
			HSVRange:     vision.HSVRange{HueLow: 160, HueHigh: 170, SatLow: 80, SatHigh: 255, ValLow: 100, ValHigh: 255},
			DisplayColor: "#EC4899",
		},
		{
			JointName: "right_knee", ColorName: "Cyan", PositionOrder: 1,
			HSVRange:     vision.HSVRange{HueLow: 85, HueHigh: 100, SatLow: 120, SatHigh: 255, ValLow: 80, ValHigh: 255},
			DisplayColor: "#06B6D4",
		},
	}
}

// ValidateConfigs checks a config list at the caller boundary. The engine
// itself assumes validated config. A duplicate PositionOrder within one
// color group is the hard failure mode: assignment by sorted order would
// be ambiguous.
func ValidateConfigs(configs []Config) error {
	seen := make(map[string]map[int]bool)
	for _, c := range configs {
		if c.JointName == "" {
			return fmt.Errorf("marker config has empty joint_name")
		}
		if c.ColorName == "" {
			return fmt.Errorf("marker config %q has empty color_name", c.JointName)
		}
		if c.PositionOrder < 1 {
			return fmt.Errorf("marker config %q: position_order must be >= 1, got %d", c.JointName, c.PositionOrder)
		}
		if seen[c.ColorName] == nil {
			seen[c.ColorName] = make(map[int]bool)
		}
		if seen[c.ColorName][c.PositionOrder] {
			return fmt.Errorf("duplicate position_order %d for color %q", c.PositionOrder, c.ColorName)
		}
		seen[c.ColorName][c.PositionOrder] = true
	}
	return nil
}
