package pose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stride-data/gait.report/internal/vision"
)

func TestDemoEstimatorDetect(t *testing.T) {
	e := NewDemoEstimator(1)
	frame := vision.NewImage(640, 480)

	kps, avg, ok := e.Detect(frame)
	require.True(t, ok)
	assert.Equal(t, 0.5, avg)
	require.Len(t, kps, len(AllJoints))

	for _, joint := range AllJoints {
		kp := kps.Get(joint)
		assert.GreaterOrEqual(t, kp.Confidence, 0.6, "joint %s", joint)
		assert.LessOrEqual(t, kp.Confidence, 0.95, "joint %s", joint)
		assert.InDelta(t, 320, kp.X, 100.0001)
		assert.InDelta(t, 240, kp.Y, 50.0001)
	}
}

func TestDemoEstimatorSeedReproducible(t *testing.T) {
	frame := vision.NewImage(640, 480)

	a, _, _ := NewDemoEstimator(42).Detect(frame)
	b, _, _ := NewDemoEstimator(42).Detect(frame)
	assert.Equal(t, a, b)
}

func TestDemoEstimatorEmptyFrame(t *testing.T) {
	e := NewDemoEstimator(1)

	kps, avg, ok := e.Detect(nil)
	assert.False(t, ok)
	assert.Nil(t, kps)
	assert.Zero(t, avg)

	_, _, ok = e.Detect(vision.NewImage(0, 0))
	assert.False(t, ok)
}
