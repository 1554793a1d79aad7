// Package face assembles the configured provider implementations into
// the stacks the services consume.
package face

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/veridion-labs/facegate/internal/config"
	"github.com/veridion-labs/facegate/internal/provider"
	"github.com/veridion-labs/facegate/internal/provider/deepface"
	"github.com/veridion-labs/facegate/internal/provider/mock"
	"github.com/veridion-labs/facegate/internal/provider/pgmatch"
	"github.com/veridion-labs/facegate/internal/provider/rekognition"
	"github.com/veridion-labs/facegate/internal/store"
)

// ProviderType identifies a face analysis backend.
type ProviderType string

const (
	// ProviderTypeDeepFace is the local DeepFace sidecar (dev/test default).
	ProviderTypeDeepFace ProviderType = "deepface"
	// ProviderTypeRekognition is AWS Rekognition (cloud).
	ProviderTypeRekognition ProviderType = "rekognition"
	// ProviderTypeMock is the deterministic in-process provider.
	ProviderTypeMock ProviderType = "mock"
)

// MatcherType identifies an identity matching backend.
type MatcherType string

const (
	// MatcherTypeDeepFace searches via the sidecar's /find endpoint; its
	// on-disk index artifacts are purged by the store's file index.
	MatcherTypeDeepFace MatcherType = "deepface"
	// MatcherTypePgvector caches embeddings in Postgres and searches by
	// cosine distance.
	MatcherTypePgvector MatcherType = "pgvector"
	// MatcherTypeMock returns configured matches.
	MatcherTypeMock MatcherType = "mock"
)

// Stack bundles the analysis contracts the liveness service needs.
type Stack struct {
	Detector   provider.FaceDetector
	Landmarks  provider.LandmarkExtractor
	Classifier provider.EmotionClassifier
}

// NewStack builds the analysis stack selected by FACE_PROVIDER.
// Rekognition covers detection and emotion only, so landmark extraction
// stays on the sidecar even in cloud mode.
func NewStack(ctx context.Context, cfg *config.Config) (*Stack, error) {
	switch ProviderType(cfg.FaceProvider) {
	case ProviderTypeRekognition:
		rekog, err := rekognition.NewProvider(ctx, rekognition.Config{
			Region:  cfg.AWSRegion,
			Timeout: cfg.ProviderTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("create rekognition provider: %w", err)
		}
		return &Stack{
			Detector:   rekog,
			Landmarks:  newDeepFaceProvider(cfg),
			Classifier: rekog,
		}, nil

	case ProviderTypeDeepFace, "":
		df := newDeepFaceProvider(cfg)
		return &Stack{Detector: df, Landmarks: df, Classifier: df}, nil

	case ProviderTypeMock:
		m := mock.New()
		return &Stack{Detector: m, Landmarks: m, Classifier: m}, nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s (supported: %s, %s, %s)",
			cfg.FaceProvider, ProviderTypeDeepFace, ProviderTypeRekognition, ProviderTypeMock)
	}
}

// NewMatcher builds the matcher and its paired index selected by MATCHER.
// The pgvector matcher needs a database pool; pool may be nil for the
// other backends.
func NewMatcher(cfg *config.Config, pool pgmatch.PgxPool, logger *slog.Logger) (provider.FaceMatcher, provider.Index, error) {
	switch MatcherType(cfg.Matcher) {
	case MatcherTypeDeepFace, "":
		return newDeepFaceProvider(cfg), store.NewFileIndex(cfg.FaceDBPath), nil

	case MatcherTypePgvector:
		if pool == nil {
			return nil, nil, fmt.Errorf("pgvector matcher requires DATABASE_URL")
		}
		matcher := pgmatch.New(pool, newDeepFaceProvider(cfg), cfg.FaceDBPath, pgmatch.DefaultConfig(), logger)
		return matcher, matcher, nil

	case MatcherTypeMock:
		m := mock.New()
		return m, m, nil

	default:
		return nil, nil, fmt.Errorf("unknown matcher type: %s (supported: %s, %s, %s)",
			cfg.Matcher, MatcherTypeDeepFace, MatcherTypePgvector, MatcherTypeMock)
	}
}

func newDeepFaceProvider(cfg *config.Config) *deepface.Provider {
	deepfaceConfig := deepface.DefaultConfig()
	if cfg.DeepFaceURL != "" {
		deepfaceConfig.BaseURL = cfg.DeepFaceURL
	}
	if cfg.ProviderTimeout > 0 {
		deepfaceConfig.Timeout = cfg.ProviderTimeout
	}
	return deepface.NewProvider(deepfaceConfig)
}
