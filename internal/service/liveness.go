package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/veridion-labs/facegate/internal/challenge"
	"github.com/veridion-labs/facegate/internal/domain"
	"github.com/veridion-labs/facegate/internal/geometry"
	"github.com/veridion-labs/facegate/internal/imaging"
	"github.com/veridion-labs/facegate/internal/liveness"
	"github.com/veridion-labs/facegate/internal/provider"
)

// AttemptRecorderInterface persists audit rows. A nil recorder disables
// auditing; recording failures never fail the request they describe.
type AttemptRecorderInterface interface {
	Create(ctx context.Context, attempt *domain.Attempt) error
}

type LivenessService struct {
	issuer        *challenge.Issuer
	detector      provider.FaceDetector
	landmarks     provider.LandmarkExtractor
	classifier    provider.EmotionClassifier
	verifier      *liveness.Verifier
	attempts      AttemptRecorderInterface
	analysisScale float64
	logger        *slog.Logger
}

func NewLivenessService(
	issuer *challenge.Issuer,
	detector provider.FaceDetector,
	landmarks provider.LandmarkExtractor,
	classifier provider.EmotionClassifier,
	verifier *liveness.Verifier,
	logger *slog.Logger,
) *LivenessService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LivenessService{
		issuer:        issuer,
		detector:      detector,
		landmarks:     landmarks,
		classifier:    classifier,
		verifier:      verifier,
		analysisScale: 0.5,
		logger:        logger,
	}
}

// WithAttemptRecorder enables audit-trail persistence.
func (s *LivenessService) WithAttemptRecorder(recorder AttemptRecorderInterface) *LivenessService {
	s.attempts = recorder
	return s
}

// WithAnalysisScale overrides the downscale factor for continuous
// emotion analysis.
func (s *LivenessService) WithAnalysisScale(scale float64) *LivenessService {
	s.analysisScale = scale
	return s
}

// Challenge issues a random liveness instruction.
func (s *LivenessService) Challenge() domain.Challenge {
	c := s.issuer.Issue()
	s.logger.Info("issuing new challenge", slog.String("challenge", string(c)))
	return c
}

// Verify evaluates one still frame against the issued challenge. Only an
// undecodable image surfaces as an error; a frame with no detectable face
// and any collaborator fault are failed outcomes. Liveness fails closed.
func (s *LivenessService) Verify(ctx context.Context, image []byte, c domain.Challenge) (domain.Outcome, error) {
	start := time.Now()

	if err := imaging.Validate(image); err != nil {
		return domain.Outcome{}, err
	}

	regions, err := s.detector.DetectFaces(ctx, image)
	if err != nil {
		s.logger.Error("face detection failed",
			slog.String("challenge", string(c)),
			slog.String("error", err.Error()),
		)
		outcome := domain.Outcome{Success: false, Reason: "No face detected"}
		s.recordAttempt(ctx, domain.AttemptVerify, "", outcome.Success, 0, outcome.Reason, start)
		return outcome, nil
	}

	region, ok := geometry.LargestRegion(regions)
	if !ok {
		outcome := domain.Outcome{Success: false, Reason: "No face detected"}
		s.recordAttempt(ctx, domain.AttemptVerify, "", outcome.Success, 0, outcome.Reason, start)
		return outcome, nil
	}

	// A landmark fault only dooms the geometric challenges; the smile
	// check classifies the full frame and still works without landmarks.
	landmarks, err := s.landmarks.Landmarks(ctx, image, region)
	if err != nil {
		s.logger.Warn("landmark extraction failed",
			slog.String("challenge", string(c)),
			slog.String("error", err.Error()),
		)
		landmarks = nil
	}

	outcome := s.verifier.Verify(ctx, region, landmarks, c, image)
	s.logger.Info("challenge evaluated",
		slog.String("challenge", string(c)),
		slog.Bool("success", outcome.Success),
	)

	s.recordAttempt(ctx, domain.AttemptVerify, "", outcome.Success, outcome.Score, outcome.Reason, start)
	return outcome, nil
}

// AnalyzeEmotion reports the largest face's box and capitalized dominant
// emotion. The frame is downscaled before classification; any classifier
// fault degrades to "N/A" so the caller's polling loop keeps running.
func (s *LivenessService) AnalyzeEmotion(ctx context.Context, image []byte) (domain.EmotionAnalysis, error) {
	if err := imaging.Validate(image); err != nil {
		return domain.EmotionAnalysis{}, err
	}

	regions, err := s.detector.DetectFaces(ctx, image)
	if err != nil {
		return domain.EmotionAnalysis{}, fmt.Errorf("detect faces: %w", err)
	}

	region, ok := geometry.LargestRegion(regions)
	if !ok {
		return domain.EmotionAnalysis{Emotion: "N/A", Box: []int{}}, nil
	}

	analysis := domain.EmotionAnalysis{
		Emotion: "N/A",
		Box:     []int{region.Left, region.Top, region.Right, region.Bottom},
	}

	frame := image
	if scaled, err := imaging.Downscale(image, s.analysisScale); err == nil {
		frame = scaled
	}

	emotion, err := s.classifier.DominantEmotion(ctx, frame)
	if err != nil {
		s.logger.Warn("emotion analysis failed", slog.String("error", err.Error()))
		return analysis, nil
	}
	if emotion != "" {
		analysis.Emotion = capitalize(emotion)
	}

	return analysis, nil
}

func (s *LivenessService) recordAttempt(ctx context.Context, kind domain.AttemptKind, username string, success bool, score float64, reason string, start time.Time) {
	if s.attempts == nil {
		return
	}

	attempt := &domain.Attempt{
		Kind:      kind,
		Username:  username,
		Success:   success,
		Score:     score,
		Reason:    reason,
		LatencyMs: time.Since(start).Milliseconds(),
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		s.logger.Warn("failed to record attempt",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
	}
}

// capitalize upper-cases the first rune and lower-cases the rest,
// matching how emotion labels are displayed.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
