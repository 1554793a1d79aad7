package deepface

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/veridion-labs/facegate/internal/domain"
	"github.com/veridion-labs/facegate/internal/provider"
)

// Provider implements the detector, landmark, classifier and matcher
// contracts against a DeepFace sidecar.
type Provider struct {
	client *Client
}

// NewProvider creates a new DeepFace provider.
func NewProvider(config Config) *Provider {
	return &Provider{
		client: NewClient(config),
	}
}

// DetectFaces returns the face regions the sidecar found via /represent.
func (p *Provider) DetectFaces(ctx context.Context, image []byte) ([]domain.FaceRegion, error) {
	resp, err := p.client.Represent(ctx, encode(image))
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	regions := make([]domain.FaceRegion, 0, len(resp.Results))
	for _, result := range resp.Results {
		regions = append(regions, toRegion(result.FacialArea))
	}
	return regions, nil
}

// Landmarks fetches the 68-point landmark set for one face region.
func (p *Provider) Landmarks(ctx context.Context, image []byte, region domain.FaceRegion) (*domain.LandmarkSet, error) {
	resp, err := p.client.Landmarks(ctx, encode(image), toArea(region))
	if err != nil {
		return nil, fmt.Errorf("extract landmarks: %w", err)
	}

	if len(resp.Points) != domain.LandmarkCount {
		return nil, fmt.Errorf("%w: got %d points", ErrBadLandmarkCount, len(resp.Points))
	}

	var set domain.LandmarkSet
	for i, pt := range resp.Points {
		set[i] = domain.Point{X: pt[0], Y: pt[1]}
	}
	return &set, nil
}

// DominantEmotion classifies the image's expression. An empty label means
// the classifier found nothing usable; that is a result, not an error.
func (p *Provider) DominantEmotion(ctx context.Context, image []byte) (string, error) {
	resp, err := p.client.Analyze(ctx, encode(image))
	if err != nil {
		return "", fmt.Errorf("analyze emotion: %w", err)
	}

	first, ok := resp.First()
	if !ok {
		return "", nil
	}
	if first.DominantEmotion != "" {
		return first.DominantEmotion, nil
	}
	return strongestEmotion(first.Emotion), nil
}

// Embedding returns the representation vector of the first detected face.
func (p *Provider) Embedding(ctx context.Context, image []byte) ([]float64, error) {
	resp, err := p.client.Represent(ctx, encode(image))
	if err != nil {
		return nil, fmt.Errorf("represent face: %w", err)
	}

	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("represent face: %w", ErrInvalidResponse)
	}
	return resp.Results[0].Embedding, nil
}

// Find searches the reference directory, returning candidates ranked
// descending by confidence. The sidecar owns the directory's cached index
// artifacts; pair this matcher with the store's FileIndex.
func (p *Provider) Find(ctx context.Context, image []byte, referenceDir string) ([]provider.Match, error) {
	resp, err := p.client.Find(ctx, encode(image), referenceDir)
	if err != nil {
		return nil, fmt.Errorf("find face: %w", err)
	}

	matches := make([]provider.Match, 0, len(resp.Results))
	for _, result := range resp.Results {
		matches = append(matches, provider.Match{
			Identity:   result.Identity,
			Confidence: confidenceFromDistance(result.Distance),
		})
	}
	return matches, nil
}

// confidenceFromDistance maps a cosine distance onto [0, 1].
func confidenceFromDistance(distance float64) float64 {
	c := 1.0 - distance
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// strongestEmotion picks the label with the highest score when the
// sidecar omits the precomputed dominant label.
func strongestEmotion(scores map[string]float64) string {
	best, bestScore := "", -1.0
	for label, score := range scores {
		if score > bestScore {
			best, bestScore = label, score
		}
	}
	return best
}

func encode(image []byte) string {
	return base64.StdEncoding.EncodeToString(image)
}

func toRegion(a FacialArea) domain.FaceRegion {
	return domain.FaceRegion{
		Left:   a.X,
		Top:    a.Y,
		Right:  a.X + a.W,
		Bottom: a.Y + a.H,
	}
}

func toArea(r domain.FaceRegion) FacialArea {
	return FacialArea{
		X: r.Left,
		Y: r.Top,
		W: r.Width(),
		H: r.Height(),
	}
}

var (
	_ provider.FaceDetector      = (*Provider)(nil)
	_ provider.LandmarkExtractor = (*Provider)(nil)
	_ provider.EmotionClassifier = (*Provider)(nil)
	_ provider.FaceMatcher       = (*Provider)(nil)
)
