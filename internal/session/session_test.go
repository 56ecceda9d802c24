package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stride-data/gait.report/internal/gait"
	"github.com/stride-data/gait.report/internal/marker"
	"github.com/stride-data/gait.report/internal/pose"
	"github.com/stride-data/gait.report/internal/vision"
)

func TestNewSessionDefaults(t *testing.T) {
	s := New(nil, nil)

	assert.NotEmpty(t, s.ID())
	assert.Equal(t, gait.ModeFullPose, s.Mode())
	assert.Len(t, s.MarkerConfigs(), 8, "built-in presets by default")

	other := New(nil, nil)
	assert.NotEqual(t, s.ID(), other.ID())
}

func TestSetMode(t *testing.T) {
	s := New(nil, nil)

	require.NoError(t, s.SetMode(gait.ModeMarker))
	assert.Equal(t, gait.ModeMarker, s.Mode())

	require.NoError(t, s.SetMode(gait.ModeMarker), "same mode is a no-op")

	require.NoError(t, s.SetMode(gait.ModeFullPose))
	assert.Equal(t, gait.ModeFullPose, s.Mode())

	assert.Error(t, s.SetMode("sonar"))
	assert.Equal(t, gait.ModeFullPose, s.Mode(), "invalid mode leaves the session unchanged")
}

func TestProcessFrameFullPose(t *testing.T) {
	s := New(pose.NewDemoEstimator(1), nil)
	frame := vision.NewImage(640, 480)

	res := s.ProcessFrame(frame, 1000)
	assert.Equal(t, int64(1000), res.TimestampMs)
	require.NotNil(t, res.Keypoints)
	assert.Len(t, res.Keypoints, len(pose.AllJoints))
	assert.Equal(t, 0.5, res.Confidence)
	require.NotNil(t, res.Metrics)
	require.NotNil(t, res.JointAngles)
}

func TestProcessFrameNoEstimator(t *testing.T) {
	s := New(nil, nil)

	res := s.ProcessFrame(vision.NewImage(640, 480), 42)
	assert.Equal(t, int64(42), res.TimestampMs)
	assert.Nil(t, res.Keypoints)
	assert.Nil(t, res.Metrics)
	assert.Zero(t, res.Confidence)
}

func TestProcessFrameMarkerModeEmptyFrame(t *testing.T) {
	s := New(nil, nil)
	require.NoError(t, s.SetMode(gait.ModeMarker))

	res := s.ProcessFrame(vision.NewImage(100, 100), 7)
	assert.Equal(t, int64(7), res.TimestampMs)
	assert.Nil(t, res.Keypoints, "no markers means no detection, not an error")
}

func TestCalibrateEmptyFrame(t *testing.T) {
	s := New(nil, nil)
	detections := s.Calibrate(vision.NewImage(50, 50))
	assert.Empty(t, detections)
}

func TestUpdateMarkerConfigs(t *testing.T) {
	s := New(nil, nil)

	err := s.UpdateMarkerConfigs([]marker.Config{
		{JointName: "left_elbow", ColorName: "Green", PositionOrder: 1},
	})
	require.NoError(t, err)
	assert.Len(t, s.MarkerConfigs(), 1)

	err = s.UpdateMarkerConfigs([]marker.Config{{ColorName: "Green", PositionOrder: 1}})
	assert.Error(t, err)
	assert.Len(t, s.MarkerConfigs(), 1, "rejected update keeps the previous configs")
}
