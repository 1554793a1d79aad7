// Package mock provides a deterministic in-process provider for tests
// and local development. Geometry is synthesized from configurable knobs
// so liveness outcomes are predictable without a real camera frame.
package mock

import (
	"context"
	"crypto/sha256"
	"math"
	"sync/atomic"

	"github.com/veridion-labs/facegate/internal/domain"
	"github.com/veridion-labs/facegate/internal/provider"
)

const (
	embeddingDimension = 128
	minImageBytes      = 1000
)

// Provider implements every provider contract with deterministic output.
type Provider struct {
	// EyeOpenness is the aspect ratio both synthesized eyes exhibit.
	EyeOpenness float64
	// HeadTurn is the synthesized nose-to-jaw distance ratio.
	HeadTurn float64
	// Emotion is the label DominantEmotion returns.
	Emotion string
	// Matches is what Find returns for any probe.
	Matches []provider.Match

	invalidations atomic.Int64
}

// New returns a provider posing as a centered, open-eyed, neutral face.
func New() *Provider {
	return &Provider{
		EyeOpenness: 0.3,
		HeadTurn:    1.0,
		Emotion:     "neutral",
	}
}

// DetectFaces reports a single fixed region for any plausible image.
func (p *Provider) DetectFaces(ctx context.Context, image []byte) ([]domain.FaceRegion, error) {
	if len(image) < minImageBytes {
		return nil, domain.ErrInvalidImage
	}

	return []domain.FaceRegion{
		{Left: 40, Top: 40, Right: 280, Bottom: 320},
	}, nil
}

// Landmarks synthesizes a 68-point set whose eye contours produce
// EyeOpenness as their aspect ratio and whose nose/jaw points produce
// HeadTurn as the turn ratio.
func (p *Provider) Landmarks(ctx context.Context, image []byte, region domain.FaceRegion) (*domain.LandmarkSet, error) {
	if len(image) < minImageBytes {
		return nil, domain.ErrInvalidImage
	}

	var set domain.LandmarkSet

	// Eye contours: horizontal span 200 so an integer vertical offset of
	// EyeOpenness*100 yields the exact ratio.
	rise := int(p.EyeOpenness * 100)
	eye := func(base int, left domain.Point) {
		set[base+0] = left
		set[base+1] = domain.Point{X: left.X + 60, Y: left.Y - rise}
		set[base+2] = domain.Point{X: left.X + 140, Y: left.Y - rise}
		set[base+3] = domain.Point{X: left.X + 200, Y: left.Y}
		set[base+4] = domain.Point{X: left.X + 140, Y: left.Y + rise}
		set[base+5] = domain.Point{X: left.X + 60, Y: left.Y + rise}
	}
	eye(36, domain.Point{X: 60, Y: 120})
	eye(42, domain.Point{X: 320, Y: 120})

	// Jaw endpoints 100 apart horizontally; the nose sits so that
	// nose-to-left over nose-to-right equals HeadTurn.
	leftJaw := domain.Point{X: 100, Y: 220}
	rightJaw := domain.Point{X: 200, Y: 220}
	noseX := (float64(leftJaw.X) + p.HeadTurn*float64(rightJaw.X)) / (1 + p.HeadTurn)
	set[2] = leftJaw
	set[14] = rightJaw
	set[33] = domain.Point{X: int(noseX), Y: 180}

	return &set, nil
}

// DominantEmotion returns the configured label.
func (p *Provider) DominantEmotion(ctx context.Context, image []byte) (string, error) {
	if len(image) < minImageBytes {
		return "", domain.ErrInvalidImage
	}
	return p.Emotion, nil
}

// Find returns the configured matches regardless of the probe.
func (p *Provider) Find(ctx context.Context, image []byte, referenceDir string) ([]provider.Match, error) {
	if len(image) < minImageBytes {
		return nil, domain.ErrInvalidImage
	}
	return p.Matches, nil
}

// Embedding derives a normalized deterministic vector from the image hash.
func (p *Provider) Embedding(ctx context.Context, image []byte) ([]float64, error) {
	if len(image) < minImageBytes {
		return nil, domain.ErrInvalidImage
	}

	hash := sha256.Sum256(image)
	embedding := make([]float64, embeddingDimension)
	for i := range embedding {
		embedding[i] = (float64(hash[i%len(hash)])/255.0)*2 - 1
	}

	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	for i := range embedding {
		embedding[i] /= norm
	}

	return embedding, nil
}

// Invalidate counts invalidations so tests can assert the contract.
func (p *Provider) Invalidate(ctx context.Context) error {
	p.invalidations.Add(1)
	return nil
}

// Invalidations returns how many times the index was purged.
func (p *Provider) Invalidations() int64 {
	return p.invalidations.Load()
}

var (
	_ provider.FaceDetector      = (*Provider)(nil)
	_ provider.LandmarkExtractor = (*Provider)(nil)
	_ provider.EmotionClassifier = (*Provider)(nil)
	_ provider.FaceMatcher       = (*Provider)(nil)
	_ provider.Index             = (*Provider)(nil)
)
