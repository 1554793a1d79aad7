// Package rekognition implements the detector and emotion-classifier
// contracts on AWS Rekognition's DetectFaces API. It is the cloud
// alternative to the local DeepFace sidecar.
package rekognition

import (
	"context"
	"fmt"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/veridion-labs/facegate/internal/domain"
	"github.com/veridion-labs/facegate/internal/imaging"
	"github.com/veridion-labs/facegate/internal/provider"
)

const (
	// maxImageSize is the largest payload DetectFaces accepts (5MB).
	maxImageSize = 5 * 1024 * 1024
	// minImageSize rejects obviously truncated payloads before the round trip.
	minImageSize = 100
)

// detectFacesAPI is the slice of the Rekognition client this provider
// uses, extracted for mocking.
type detectFacesAPI interface {
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
}

// Provider implements provider.FaceDetector and provider.EmotionClassifier.
type Provider struct {
	api     detectFacesAPI
	timeout time.Duration
}

// NewProvider creates a Rekognition-backed provider using the AWS default
// credential chain. Construction failure is fatal at startup, never
// per-request.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}

	return &Provider{api: rekognition.NewFromConfig(awsCfg), timeout: timeout}, nil
}

func validateImage(image []byte) error {
	if len(image) < minImageSize {
		return fmt.Errorf("%w: image too small (%d bytes)", ErrInvalidImage, len(image))
	}
	if len(image) > maxImageSize {
		return fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, len(image), maxImageSize)
	}
	return nil
}

// DetectFaces returns pixel-coordinate face regions. Rekognition reports
// relative bounding boxes, so the image is probed locally for its
// dimensions. An empty result is not an error.
func (p *Provider) DetectFaces(ctx context.Context, image []byte) ([]domain.FaceRegion, error) {
	if err := validateImage(image); err != nil {
		return nil, err
	}

	width, height, err := imaging.Size(image)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	output, err := p.detect(ctx, image, types.AttributeDefault)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	regions := make([]domain.FaceRegion, 0, len(output.FaceDetails))
	for _, detail := range output.FaceDetails {
		box := detail.BoundingBox
		if box == nil || box.Left == nil || box.Top == nil || box.Width == nil || box.Height == nil {
			continue
		}
		left := int(float64(*box.Left) * float64(width))
		top := int(float64(*box.Top) * float64(height))
		regions = append(regions, domain.FaceRegion{
			Left:   left,
			Top:    top,
			Right:  left + int(float64(*box.Width)*float64(width)),
			Bottom: top + int(float64(*box.Height)*float64(height)),
		})
	}
	return regions, nil
}

// DominantEmotion classifies the first detected face's expression. An
// image without a face yields an empty label, not an error, matching the
// detection-enforcement-disabled contract.
func (p *Provider) DominantEmotion(ctx context.Context, image []byte) (string, error) {
	if err := validateImage(image); err != nil {
		return "", err
	}

	output, err := p.detect(ctx, image, types.AttributeAll)
	if err != nil {
		return "", fmt.Errorf("analyze emotion: %w", err)
	}

	if len(output.FaceDetails) == 0 {
		return "", nil
	}
	return dominantEmotion(output.FaceDetails[0].Emotions), nil
}

func (p *Provider) detect(ctx context.Context, image []byte, attr types.Attribute) (*rekognition.DetectFacesOutput, error) {
	input := &rekognition.DetectFacesInput{
		Image: &types.Image{
			Bytes: image,
		},
		Attributes: []types.Attribute{attr},
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	output, err := p.api.DetectFaces(ctx, input)
	if err != nil {
		return nil, classifyAPIError(err)
	}
	return output, nil
}

// dominantEmotion returns the lowercase name of the highest-confidence
// emotion, aligning Rekognition's labels ("HAPPY") with the classifier
// contract ("happy").
func dominantEmotion(emotions []types.Emotion) string {
	best := ""
	bestConfidence := float32(-1)
	for _, e := range emotions {
		if e.Confidence == nil {
			continue
		}
		if *e.Confidence > bestConfidence {
			bestConfidence = *e.Confidence
			best = strings.ToLower(string(e.Type))
		}
	}
	return best
}

var (
	_ provider.FaceDetector      = (*Provider)(nil)
	_ provider.EmotionClassifier = (*Provider)(nil)
)
