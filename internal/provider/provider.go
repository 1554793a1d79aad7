// Package provider defines the collaborator contracts consumed by the
// liveness and enrollment pipelines. Implementations wrap remote models
// (HTTP sidecar, AWS) and are safe for concurrent use once constructed.
package provider

import (
	"context"

	"github.com/veridion-labs/facegate/internal/domain"
)

// FaceDetector finds face regions in an encoded image. An empty slice is
// a valid result, not an error.
type FaceDetector interface {
	DetectFaces(ctx context.Context, image []byte) ([]domain.FaceRegion, error)
}

// LandmarkExtractor produces the fixed 68-point landmark topology for one
// face region of an encoded image.
type LandmarkExtractor interface {
	Landmarks(ctx context.Context, image []byte, region domain.FaceRegion) (*domain.LandmarkSet, error)
}

// EmotionClassifier maps an encoded image to its dominant-emotion label.
// Detection enforcement is disabled: not finding a face yields an empty
// label, not an error. Implementations collapse single-result and
// per-face-sequence response shapes, returning the first element.
type EmotionClassifier interface {
	DominantEmotion(ctx context.Context, image []byte) (string, error)
}

// Match is one ranked candidate from the matcher. Identity is the source
// path of the matched reference image.
type Match struct {
	Identity   string
	Confidence float64
}

// FaceMatcher searches a reference directory for the best matches to the
// probe image, ranked descending by confidence. Detection enforcement is
// disabled. Matchers may cache index artifacts keyed to the directory;
// the cache must be invalidatable through the paired Index.
type FaceMatcher interface {
	Find(ctx context.Context, image []byte, referenceDir string) ([]Match, error)
}

// Index is the invalidatable cache a matcher builds over a reference
// directory. The identity store calls Invalidate after every membership
// change, before the index is queried again.
type Index interface {
	Invalidate(ctx context.Context) error
}
