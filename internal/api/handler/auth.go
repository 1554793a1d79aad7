package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/veridion-labs/facegate/internal/domain"
)

// AuthService interface for the service
type AuthService interface {
	Register(ctx context.Context, username string, image []byte) (*domain.UserRecord, error)
	Login(ctx context.Context, image []byte) (domain.LoginResult, error)
	EnrolledUsers() ([]string, error)
}

// AuthHandler handles face enrollment and login requests
type AuthHandler struct {
	service AuthService
	logger  *slog.Logger
}

func NewAuthHandler(service AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRequest request body for the register endpoint
type RegisterRequest struct {
	Image    string `json:"image"`
	Username string `json:"username"`
}

// LoginRequest request body for the login endpoint
type LoginRequest struct {
	Image string `json:"image"`
}

// RegisterResponse response for the register endpoint
type RegisterResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// UsersResponse response for the enrolled users endpoint
type UsersResponse struct {
	Users []string `json:"users"`
}

// Register POST /v1/auth/register - enroll a face for a username
//
// A frame without a face and a persistence fault are definite negative
// results for the enrollment flow, not transport errors: the camera UI
// retries with a fresh capture either way.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	if req.Image == "" || req.Username == "" {
		return domain.ErrMissingData
	}

	image, err := decodeImagePayload(req.Image)
	if err != nil {
		return err
	}

	record, err := h.service.Register(c.Context(), req.Username, image)
	if err != nil {
		if errors.Is(err, domain.ErrNoFaceDetected) {
			return c.JSON(RegisterResponse{Success: false, Reason: "No face detected for registration"})
		}
		if errors.Is(err, domain.ErrStoreIO) {
			h.logger.Error("enrollment persistence failed", slog.Any("error", err))
			return c.JSON(RegisterResponse{Success: false, Reason: "Failed to save user data."})
		}
		return err
	}

	return c.JSON(RegisterResponse{Success: true, Username: record.Username})
}

// Login POST /v1/auth/login - identify a face against enrolled users
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
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

	result, err := h.service.Login(c.Context(), image)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// Users GET /v1/auth/users - list enrolled usernames
func (h *AuthHandler) Users(c *fiber.Ctx) error {
	users, err := h.service.EnrolledUsers()
	if err != nil {
		return err
	}
	if users == nil {
		users = []string{}
	}
	return c.JSON(UsersResponse{Users: users})
}
