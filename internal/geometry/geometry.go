// Package geometry computes the landmark-derived ratios used by the
// liveness predicates. All functions are pure.
package geometry

import (
	"math"

	"github.com/veridion-labs/facegate/internal/domain"
)

// EyeContourPoints is the number of points in one eye contour.
const EyeContourPoints = 6

// EyeAspectRatio computes the EAR of a 6-point eye contour:
// the mean of the two vertical eyelid distances over twice the horizontal
// eye width. A closed eye yields a low value.
//
// When the horizontal width is zero (degenerate contour) the ratio is
// defined to be 0.0 rather than an error.
func EyeAspectRatio(eye []domain.Point) float64 {
	if len(eye) != EyeContourPoints {
		return 0.0
	}

	a := distance(eye[1], eye[5])
	b := distance(eye[2], eye[4])
	c := distance(eye[0], eye[3])

	if c == 0 {
		return 0.0
	}
	return (a + b) / (2.0 * c)
}

// TurnRatio returns the horizontal nose-to-left-jaw distance over the
// nose-to-right-jaw distance, a proxy for head yaw. The boolean is false
// when either distance is zero; the ratio is undefined in that case and
// callers must treat it as a failed check.
func TurnRatio(nose, leftJaw, rightJaw domain.Point) (float64, bool) {
	left := math.Abs(float64(nose.X - leftJaw.X))
	right := math.Abs(float64(nose.X - rightJaw.X))

	if left == 0 || right == 0 {
		return 0, false
	}
	return left / right, true
}

// LargestRegion picks the face region with the greatest area. The boolean
// is false when regions is empty.
func LargestRegion(regions []domain.FaceRegion) (domain.FaceRegion, bool) {
	if len(regions) == 0 {
		return domain.FaceRegion{}, false
	}

	best := regions[0]
	for _, r := range regions[1:] {
		if r.Area() > best.Area() {
			best = r
		}
	}
	return best, true
}

func distance(p, q domain.Point) float64 {
	dx := float64(p.X - q.X)
	dy := float64(p.Y - q.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
