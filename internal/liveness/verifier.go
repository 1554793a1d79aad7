// Package liveness evaluates challenge/response evidence against a single
// still image. Every path fails closed: an attacker benefits from
// ambiguity, so faults must not pass.
package liveness

import (
	"context"
	"log/slog"
	"strings"

	"github.com/veridion-labs/facegate/internal/domain"
	"github.com/veridion-labs/facegate/internal/geometry"
	"github.com/veridion-labs/facegate/internal/imaging"
	"github.com/veridion-labs/facegate/internal/provider"
)

// happyLabel is the dominant-emotion label that satisfies the Smile
// challenge, compared case-insensitively.
const happyLabel = "happy"

// Config holds the tuned thresholds of the geometric predicates. The
// values are calibration results, not derived quantities; the asymmetry
// between the two turn thresholds is intentional.
type Config struct {
	EARThreshold float64 // mean EAR below this counts as a blink
	TurnLeftMax  float64 // turn ratio below this counts as facing left
	TurnRightMin float64 // turn ratio above this counts as facing right
	SmileScale   float64 // downsample factor before classification
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		EARThreshold: 0.20,
		TurnLeftMax:  0.55,
		TurnRightMin: 1.8,
		SmileScale:   0.6,
	}
}

// Verifier dispatches one challenge against one still image.
type Verifier struct {
	classifier provider.EmotionClassifier
	cfg        Config
	logger     *slog.Logger
}

func NewVerifier(classifier provider.EmotionClassifier, cfg Config, logger *slog.Logger) *Verifier {
	return &Verifier{
		classifier: classifier,
		cfg:        cfg,
		logger:     logger,
	}
}

// Verify evaluates the challenge and returns its outcome. It never
// returns an error: malformed landmarks, collaborator faults, timeouts
// and panics all degrade to Success=false.
func (v *Verifier) Verify(ctx context.Context, region domain.FaceRegion, landmarks *domain.LandmarkSet, c domain.Challenge, image []byte) (out domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.Warn("panic during challenge evaluation",
				slog.Any("panic", r),
				slog.String("challenge", string(c)),
			)
			out = domain.Outcome{Success: false, Reason: "verification fault"}
		}
	}()

	switch c {
	case domain.ChallengeBlink:
		if landmarks == nil {
			return domain.Outcome{Success: false, Reason: "missing landmarks"}
		}
		return v.verifyBlink(landmarks)
	case domain.ChallengeSmile:
		// The smile check classifies the frame directly and does not
		// need landmarks.
		return v.verifySmile(ctx, image)
	case domain.ChallengeLookLeft, domain.ChallengeLookRight:
		if landmarks == nil {
			return domain.Outcome{Success: false, Reason: "missing landmarks"}
		}
		return v.verifyTurn(landmarks, c)
	default:
		return domain.Outcome{Success: false, Reason: "unknown challenge"}
	}
}

func (v *Verifier) verifyBlink(landmarks *domain.LandmarkSet) domain.Outcome {
	left := geometry.EyeAspectRatio(landmarks.LeftEye())
	right := geometry.EyeAspectRatio(landmarks.RightEye())
	ear := (left + right) / 2.0

	v.logger.Debug("blink check", slog.Float64("ear", ear))

	return domain.Outcome{
		Success: ear < v.cfg.EARThreshold,
		Score:   ear,
	}
}

func (v *Verifier) verifySmile(ctx context.Context, image []byte) domain.Outcome {
	small, err := imaging.Downscale(image, v.cfg.SmileScale)
	if err != nil {
		v.logger.Warn("smile check: downscale failed", slog.Any("error", err))
		return domain.Outcome{Success: false, Reason: "image processing failed"}
	}

	dominant, err := v.classifier.DominantEmotion(ctx, small)
	if err != nil {
		// Classifier faults (including not finding a face) are a failed
		// challenge, never an error surfaced to the caller.
		v.logger.Warn("smile check: classifier fault", slog.Any("error", err))
		return domain.Outcome{Success: false, Reason: "expression analysis failed"}
	}

	v.logger.Debug("smile check", slog.String("dominant", dominant))

	return domain.Outcome{
		Success: dominant != "" && strings.EqualFold(dominant, happyLabel),
		Emotion: dominant,
	}
}

func (v *Verifier) verifyTurn(landmarks *domain.LandmarkSet, c domain.Challenge) domain.Outcome {
	ratio, ok := geometry.TurnRatio(landmarks.NoseTip(), landmarks.LeftJaw(), landmarks.RightJaw())
	if !ok {
		// Zero jaw distance: the ratio is undefined and the check fails
		// regardless of which direction was requested.
		return domain.Outcome{Success: false, Reason: "degenerate face geometry"}
	}

	v.logger.Debug("turn check", slog.Float64("ratio", ratio), slog.String("challenge", string(c)))

	success := false
	if c == domain.ChallengeLookLeft {
		success = ratio < v.cfg.TurnLeftMax
	} else {
		success = ratio > v.cfg.TurnRightMin
	}

	return domain.Outcome{Success: success, Score: ratio}
}
