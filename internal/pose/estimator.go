package pose

import (
	"math/rand"

	"github.com/stride-data/gait.report/internal/vision"
)

// Estimator is the contract for an external pose model. Detect returns
// the keypoint set, the average confidence, and whether anything was
// detected. Failure (model absent, inference error, no detection) yields
// (nil, 0, false), never a panic.
type Estimator interface {
	Detect(frame *vision.Image) (Keypoints, float64, bool)
}

// DemoEstimator produces randomized but plausible keypoints centered in
// the frame. It stands in when no pose model is available so the rest of
// the pipeline can be exercised end to end.
type DemoEstimator struct {
	rng *rand.Rand
}

// NewDemoEstimator creates a demo estimator. The seed makes output
// reproducible in tests.
func NewDemoEstimator(seed int64) *DemoEstimator {
	return &DemoEstimator{rng: rand.New(rand.NewSource(seed))}
}

// Detect generates one keypoint per joint in the full vocabulary, jittered
// around the frame center with confidences in [0.6, 0.95]. The reported
// average confidence is a fixed 0.5 to signal demo-quality output.
func (d *DemoEstimator) Detect(frame *vision.Image) (Keypoints, float64, bool) {
	if frame == nil || frame.Width == 0 || frame.Height == 0 {
		return nil, 0, false
	}

	centerX := float64(frame.Width) / 2
	centerY := float64(frame.Height) / 2

	kps := make(Keypoints, len(AllJoints))
	for _, joint := range AllJoints {
		kps[joint] = Keypoint{
			X:          centerX + (d.rng.Float64()*200 - 100),
			Y:          centerY + (d.rng.Float64()*100 - 50),
			Confidence: 0.6 + d.rng.Float64()*0.35,
		}
	}
	return kps, 0.5, true
}
