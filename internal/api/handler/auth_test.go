package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/veridion-labs/facegate/internal/domain"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username string, image []byte) (*domain.UserRecord, error) {
	args := m.Called(ctx, username, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserRecord), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, image []byte) (domain.LoginResult, error) {
	args := m.Called(ctx, image)
	return args.Get(0).(domain.LoginResult), args.Error(1)
}

func (m *MockAuthService) EnrolledUsers() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func authApp(svc *MockAuthService) *fiber.App {
	return testApp(func(app *fiber.App) {
		h := NewAuthHandler(svc, slog.New(slog.DiscardHandler))
		app.Post("/v1/auth/register", h.Register)
		app.Post("/v1/auth/login", h.Login)
		app.Get("/v1/auth/users", h.Users)
	})
}

func TestAuthHandler_Register(t *testing.T) {
	image := []byte("fake image bytes")

	t.Run("successful enrollment", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Register", mock.Anything, "Alice", image).
			Return(&domain.UserRecord{Username: "Alice"}, nil)

		status, body := postJSON(t, authApp(svc), "/v1/auth/register", RegisterRequest{
			Image:    dataURL(image),
			Username: "Alice",
		})
		assert.Equal(t, 200, status)

		var result RegisterResponse
		require.NoError(t, json.Unmarshal(body, &result))
		assert.True(t, result.Success)
		assert.Equal(t, "Alice", result.Username)
		svc.AssertExpectations(t)
	})

	t.Run("missing username is rejected", func(t *testing.T) {
		svc := new(MockAuthService)

		status, _ := postJSON(t, authApp(svc), "/v1/auth/register", RegisterRequest{
			Image: dataURL(image),
		})
		assert.Equal(t, 400, status)
		svc.AssertNotCalled(t, "Register")
	})

	t.Run("no face is a definite negative, not an error", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Register", mock.Anything, "Bob", image).
			Return(nil, domain.ErrNoFaceDetected)

		status, body := postJSON(t, authApp(svc), "/v1/auth/register", RegisterRequest{
			Image:    dataURL(image),
			Username: "Bob",
		})
		assert.Equal(t, 200, status)

		var result RegisterResponse
		require.NoError(t, json.Unmarshal(body, &result))
		assert.False(t, result.Success)
		assert.Equal(t, "No face detected for registration", result.Reason)
	})

	t.Run("persistence fault reports a generic reason", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Register", mock.Anything, "Bob", image).
			Return(nil, domain.ErrStoreIO)

		status, body := postJSON(t, authApp(svc), "/v1/auth/register", RegisterRequest{
			Image:    dataURL(image),
			Username: "Bob",
		})
		assert.Equal(t, 200, status)

		var result RegisterResponse
		require.NoError(t, json.Unmarshal(body, &result))
		assert.False(t, result.Success)
		assert.Equal(t, "Failed to save user data.", result.Reason)
	})

	t.Run("invalid username maps to 400", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Register", mock.Anything, "!!!", image).
			Return(nil, domain.ErrInvalidUsername)

		status, body := postJSON(t, authApp(svc), "/v1/auth/register", RegisterRequest{
			Image:    dataURL(image),
			Username: "!!!",
		})
		assert.Equal(t, 400, status)
		assert.Contains(t, string(body), "INVALID_USERNAME")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	image := []byte("fake image bytes")

	t.Run("recognized user", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Login", mock.Anything, image).
			Return(domain.LoginResult{Success: true, Username: "Krishna"}, nil)

		status, body := postJSON(t, authApp(svc), "/v1/auth/login", LoginRequest{
			Image: dataURL(image),
		})
		assert.Equal(t, 200, status)

		var result domain.LoginResult
		require.NoError(t, json.Unmarshal(body, &result))
		assert.True(t, result.Success)
		assert.Equal(t, "Krishna", result.Username)
	})

	t.Run("unrecognized user keeps a 200 with reason", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Login", mock.Anything, image).
			Return(domain.LoginResult{Success: false, Reason: "User not recognized"}, nil)

		status, body := postJSON(t, authApp(svc), "/v1/auth/login", LoginRequest{
			Image: dataURL(image),
		})
		assert.Equal(t, 200, status)

		var result domain.LoginResult
		require.NoError(t, json.Unmarshal(body, &result))
		assert.False(t, result.Success)
		assert.Equal(t, "User not recognized", result.Reason)
	})

	t.Run("missing image is rejected", func(t *testing.T) {
		svc := new(MockAuthService)

		status, _ := postJSON(t, authApp(svc), "/v1/auth/login", LoginRequest{})
		assert.Equal(t, 400, status)
		svc.AssertNotCalled(t, "Login")
	})
}

func TestAuthHandler_Users(t *testing.T) {
	t.Run("lists enrolled usernames", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("EnrolledUsers").Return([]string{"Alice", "Bob"}, nil)

		resp, err := authApp(svc).Test(httptest.NewRequest("GET", "/v1/auth/users", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result UsersResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, []string{"Alice", "Bob"}, result.Users)
		svc.AssertExpectations(t)
	})

	t.Run("empty store yields empty list", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("EnrolledUsers").Return([]string(nil), nil)

		resp, err := authApp(svc).Test(httptest.NewRequest("GET", "/v1/auth/users", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result UsersResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.NotNil(t, result.Users)
		assert.Empty(t, result.Users)
	})

	t.Run("store fault is a 500", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("EnrolledUsers").Return(nil, domain.ErrStoreIO)

		resp, err := authApp(svc).Test(httptest.NewRequest("GET", "/v1/auth/users", nil))
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
	})
}
