package marker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigs(t *testing.T) {
	configs := DefaultConfigs()
	require.Len(t, configs, 8)
	require.NoError(t, ValidateConfigs(configs))

	joints := make(map[string]bool)
	colors := make(map[string]bool)
	for _, c := range configs {
		assert.False(t, joints[c.JointName], "duplicate joint %s", c.JointName)
		assert.False(t, colors[c.ColorName], "duplicate color %s", c.ColorName)
		joints[c.JointName] = true
		colors[c.ColorName] = true
		assert.Equal(t, 1, c.PositionOrder)
		assert.NotEmpty(t, c.DisplayColor)
	}

	// Red is the only band that wraps through hue 0.
	for _, c := range configs {
		if c.ColorName == "Red" {
			assert.True(t, c.HSVRange.Wraps())
		} else {
			assert.False(t, c.HSVRange.Wraps(), "color %s", c.ColorName)
		}
	}
}

func TestValidateConfigs(t *testing.T) {
	valid := Config{JointName: "left_elbow", ColorName: "Green", PositionOrder: 1}

	tests := []struct {
		name    string
		configs []Config
		wantErr bool
	}{
		{"empty list", nil, false},
		{"single valid", []Config{valid}, false},
		{
			"empty joint name",
			[]Config{{ColorName: "Green", PositionOrder: 1}},
			true,
		},
		{
			"empty color name",
			[]Config{{JointName: "left_elbow", PositionOrder: 1}},
			true,
		},
		{
			"zero position order",
			[]Config{{JointName: "left_elbow", ColorName: "Green", PositionOrder: 0}},
			true,
		},
		{
			"duplicate order in one color group",
			[]Config{
				{JointName: "left_elbow", ColorName: "Green", PositionOrder: 1},
				{JointName: "right_elbow", ColorName: "Green", PositionOrder: 1},
			},
			true,
		},
		{
			"same order across different colors",
			[]Config{
				{JointName: "left_elbow", ColorName: "Green", PositionOrder: 1},
				{JointName: "right_elbow", ColorName: "Yellow", PositionOrder: 1},
			},
			false,
		},
		{
			"multi-marker color group",
			[]Config{
				{JointName: "left_elbow", ColorName: "Green", PositionOrder: 1},
				{JointName: "left_knee", ColorName: "Green", PositionOrder: 2},
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfigs(tt.configs)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
