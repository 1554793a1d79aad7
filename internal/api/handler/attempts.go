package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/veridion-labs/facegate/internal/domain"
)

const (
	defaultAttemptLimit = 20
	maxAttemptLimit     = 100
)

// AttemptLister reads back the persisted audit trail.
type AttemptLister interface {
	ListRecent(ctx context.Context, kind domain.AttemptKind, limit int) ([]domain.Attempt, error)
}

// AttemptsHandler exposes the attempt audit trail
type AttemptsHandler struct {
	attempts AttemptLister
}

func NewAttemptsHandler(attempts AttemptLister) *AttemptsHandler {
	return &AttemptsHandler{attempts: attempts}
}

// AttemptResponse is one audit row on the wire
type AttemptResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Username  string    `json:"username,omitempty"`
	Success   bool      `json:"success"`
	Score     float64   `json:"score"`
	Reason    string    `json:"reason,omitempty"`
	LatencyMs int64     `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// AttemptsResponse response for the attempts endpoint
type AttemptsResponse struct {
	Attempts []AttemptResponse `json:"attempts"`
}

// List GET /v1/attempts - most recent attempts of one kind
func (h *AttemptsHandler) List(c *fiber.Ctx) error {
	kind := domain.AttemptKind(c.Query("kind", string(domain.AttemptLogin)))
	if !kind.Valid() {
		return domain.ErrBadRequest
	}

	limit := c.QueryInt("limit", defaultAttemptLimit)
	if limit < 1 || limit > maxAttemptLimit {
		limit = defaultAttemptLimit
	}

	attempts, err := h.attempts.ListRecent(c.Context(), kind, limit)
	if err != nil {
		return domain.ErrInternal.WithError(err)
	}

	resp := AttemptsResponse{Attempts: make([]AttemptResponse, 0, len(attempts))}
	for _, a := range attempts {
		resp.Attempts = append(resp.Attempts, AttemptResponse{
			ID:        a.ID.String(),
			Kind:      string(a.Kind),
			Username:  a.Username,
			Success:   a.Success,
			Score:     a.Score,
			Reason:    a.Reason,
			LatencyMs: a.LatencyMs,
			CreatedAt: a.CreatedAt,
		})
	}

	return c.JSON(resp)
}
