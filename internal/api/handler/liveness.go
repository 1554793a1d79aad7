package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/veridion-labs/facegate/internal/domain"
)

// LivenessService interface for the service
type LivenessService interface {
	Challenge() domain.Challenge
	Verify(ctx context.Context, image []byte, c domain.Challenge) (domain.Outcome, error)
	AnalyzeEmotion(ctx context.Context, image []byte) (domain.EmotionAnalysis, error)
}

// LivenessHandler handles challenge issuance and verification requests
type LivenessHandler struct {
	service LivenessService
	logger  *slog.Logger
}

func NewLivenessHandler(service LivenessService, logger *slog.Logger) *LivenessHandler {
	return &LivenessHandler{
		service: service,
		logger:  logger,
	}
}

// ChallengeResponse response for the challenge endpoint
type ChallengeResponse struct {
	Challenge domain.Challenge `json:"challenge"`
}

// VerifyRequest request body for the verify endpoint
type VerifyRequest struct {
	Image     string `json:"image"`
	Challenge string `json:"challenge"`
}

// EmotionRequest request body for the emotion endpoint
type EmotionRequest struct {
	Image string `json:"image"`
}

// Challenge GET /v1/liveness/challenge - issue a random challenge
func (h *LivenessHandler) Challenge(c *fiber.Ctx) error {
	return c.JSON(ChallengeResponse{Challenge: h.service.Challenge()})
}

// Verify POST /v1/liveness/verify - evaluate a frame against a challenge
func (h *LivenessHandler) Verify(c *fiber.Ctx) error {
	var req VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	if req.Image == "" || req.Challenge == "" {
		return domain.ErrMissingData
	}

	image, err := decodeImagePayload(req.Image)
	if err != nil {
		return err
	}

	outcome, err := h.service.Verify(c.Context(), image, domain.Challenge(req.Challenge))
	if err != nil {
		return err
	}

	return c.JSON(outcome)
}

// Emotion POST /v1/liveness/emotion - continuous emotion analysis
func (h *LivenessHandler) Emotion(c *fiber.Ctx) error {
	var req EmotionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	if req.Image == "" {
		return domain.ErrMissingData
	}

	image, err := decodeImagePayload(req.Image)
	if err != nil {
		return err
	}

	analysis, err := h.service.AnalyzeEmotion(c.Context(), image)
	if err != nil {
		// A detector fault mid-polling degrades to N/A so the client's
		// analysis loop keeps running; only a bad payload is a 400.
		if errors.Is(err, domain.ErrInvalidImage) {
			return err
		}
		h.logger.Warn("emotion analysis degraded", slog.Any("error", err))
		return c.JSON(domain.EmotionAnalysis{Emotion: "N/A", Box: []int{}})
	}

	return c.JSON(analysis)
}
