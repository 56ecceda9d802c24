// Package pose defines the keypoint vocabulary shared by the marker
// detection engine, the gait metrics engine, and external pose estimators.
package pose

// Joint names for the full 24-point quadruped vocabulary. External pose
// estimators must emit keypoints keyed by these names.
const (
	Nose          = "nose"
	LeftEye       = "left_eye"
	RightEye      = "right_eye"
	LeftEar       = "left_ear"
	RightEar      = "right_ear"
	LeftShoulder  = "left_shoulder"
	RightShoulder = "right_shoulder"
	LeftElbow     = "left_elbow"
	RightElbow    = "right_elbow"
	LeftWrist     = "left_wrist"
	RightWrist    = "right_wrist"
	LeftHip       = "left_hip"
	RightHip      = "right_hip"
	LeftKnee      = "left_knee"
	RightKnee     = "right_knee"
	LeftAnkle     = "left_ankle"
	RightAnkle    = "right_ankle"
	TailBase      = "tail_base"
	TailMid       = "tail_mid"
	TailTip       = "tail_tip"
	LeftFrontPaw  = "left_front_paw"
	RightFrontPaw = "right_front_paw"
	LeftBackPaw   = "left_back_paw"
	RightBackPaw  = "right_back_paw"
)

// MarkerJoints is the fixed vocabulary covered by colored physical markers.
// Wrist, ankle and paw points have no marker equivalent.
var MarkerJoints = []string{
	LeftShoulder, RightShoulder,
	LeftElbow, RightElbow,
	LeftHip, RightHip,
	LeftKnee, RightKnee,
}

// AllJoints is the complete vocabulary in estimator output order.
var AllJoints = []string{
	Nose, LeftEye, RightEye, LeftEar, RightEar,
	LeftShoulder, RightShoulder, LeftElbow, RightElbow,
	LeftWrist, RightWrist, LeftHip, RightHip,
	LeftKnee, RightKnee, LeftAnkle, RightAnkle,
	TailBase, TailMid, TailTip,
	LeftFrontPaw, RightFrontPaw, LeftBackPaw, RightBackPaw,
}

var jointSet = func() map[string]struct{} {
	s := make(map[string]struct{}, len(AllJoints))
	for _, j := range AllJoints {
		s[j] = struct{}{}
	}
	return s
}()

// ValidJoint reports whether name is part of the fixed vocabulary.
func ValidJoint(name string) bool {
	_, ok := jointSet[name]
	return ok
}

// Keypoint is one joint's estimated image-plane position with detector
// certainty in [0, 1]. The zero value is the "absent" sentinel, not an error.
type Keypoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// Present reports whether the keypoint carries any signal.
func (k Keypoint) Present() bool {
	return k.Confidence > 0
}

// Keypoints maps joint names to keypoints for one processed frame.
// A set is immutable once returned by a detector; callers own it.
type Keypoints map[string]Keypoint

// Get returns the keypoint for name, or the zero sentinel if absent.
func (k Keypoints) Get(name string) Keypoint {
	return k[name]
}

// Clone returns an independent copy of the set.
func (k Keypoints) Clone() Keypoints {
	if k == nil {
		return nil
	}
	out := make(Keypoints, len(k))
	for name, kp := range k {
		out[name] = kp
	}
	return out
}
