package domain

// Point is a 2D pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// FaceRegion is an axis-aligned face rectangle in pixel coordinates.
type FaceRegion struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

func (r FaceRegion) Width() int  { return r.Right - r.Left }
func (r FaceRegion) Height() int { return r.Bottom - r.Top }

// Area is never negative for regions produced by a detector.
func (r FaceRegion) Area() int { return r.Width() * r.Height() }

// LandmarkCount is the number of points in the standard 68-point facial
// landmark topology every extractor must produce.
const LandmarkCount = 68

// Indices into the 68-point topology.
const (
	leftEyeStart  = 36
	leftEyeEnd    = 42
	rightEyeStart = 42
	rightEyeEnd   = 48
	noseTipIndex  = 33
	leftJawIndex  = 2
	rightJawIndex = 14
)

// LandmarkSet is an ordered 68-point facial landmark set. It is immutable
// once produced by the extractor and owned by the caller for the duration
// of one verification.
type LandmarkSet [LandmarkCount]Point

// LeftEye returns the 6-point left eye contour (indices 36-41).
func (l *LandmarkSet) LeftEye() []Point { return l[leftEyeStart:leftEyeEnd] }

// RightEye returns the 6-point right eye contour (indices 42-47).
func (l *LandmarkSet) RightEye() []Point { return l[rightEyeStart:rightEyeEnd] }

// NoseTip returns landmark 33.
func (l *LandmarkSet) NoseTip() Point { return l[noseTipIndex] }

// LeftJaw returns landmark 2, the viewer-left jaw edge.
func (l *LandmarkSet) LeftJaw() Point { return l[leftJawIndex] }

// RightJaw returns landmark 14, the viewer-right jaw edge.
func (l *LandmarkSet) RightJaw() Point { return l[rightJawIndex] }
