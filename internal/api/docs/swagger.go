// Package docs builds the OpenAPI description served next to the API.
package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
)

// ChallengeData represents the challenge issuance response
type ChallengeData struct {
	Challenge string `json:"challenge" example:"Blink"`
}

// VerifyRequestData represents the verify request body
type VerifyRequestData struct {
	Image     string `json:"image" example:"data:image/jpeg;base64,/9j/4AAQ..."`
	Challenge string `json:"challenge" example:"Blink"`
}

// OutcomeData represents a challenge verification outcome
type OutcomeData struct {
	Success bool    `json:"success" example:"true"`
	Score   float64 `json:"score,omitempty" example:"0.17"`
	Emotion string  `json:"emotion,omitempty" example:"happy"`
	Reason  string  `json:"reason,omitempty" example:"No face detected"`
}

// EmotionRequestData represents the emotion analysis request body
type EmotionRequestData struct {
	Image string `json:"image" example:"data:image/jpeg;base64,/9j/4AAQ..."`
}

// EmotionData represents the continuous emotion analysis response
type EmotionData struct {
	Emotion string `json:"emotion" example:"Happy"`
	Box     []int  `json:"box" example:"[120,80,360,340]"`
}

// RegisterRequestData represents the enrollment request body
type RegisterRequestData struct {
	Image    string `json:"image" example:"data:image/jpeg;base64,/9j/4AAQ..."`
	Username string `json:"username" example:"Alice"`
}

// RegisterData represents the enrollment response
type RegisterData struct {
	Success  bool   `json:"success" example:"true"`
	Username string `json:"username,omitempty" example:"Alice"`
	Reason   string `json:"reason,omitempty" example:"No face detected for registration"`
}

// LoginRequestData represents the login request body
type LoginRequestData struct {
	Image string `json:"image" example:"data:image/jpeg;base64,/9j/4AAQ..."`
}

// LoginData represents the login response
type LoginData struct {
	Success  bool   `json:"success" example:"true"`
	Username string `json:"username,omitempty" example:"Alice"`
	Reason   string `json:"reason,omitempty" example:"User not recognized"`
}

// UsersData represents the enrolled users response
type UsersData struct {
	Users []string `json:"users" example:"[\"Alice\",\"Bob\"]"`
}

// AttemptData represents one audit trail row
type AttemptData struct {
	ID        string  `json:"id" example:"5b8f7a2e-93a1-4f2a-b9c0-0f0f4f2a93a1"`
	Kind      string  `json:"kind" example:"login"`
	Username  string  `json:"username,omitempty" example:"Alice"`
	Success   bool    `json:"success" example:"true"`
	Score     float64 `json:"score" example:"0.93"`
	Reason    string  `json:"reason,omitempty" example:"User not recognized"`
	LatencyMs int64   `json:"latency_ms" example:"412"`
	CreatedAt string  `json:"created_at" example:"2026-08-30T12:00:00Z"`
}

// AttemptsData represents the recent attempts response
type AttemptsData struct {
	Attempts []AttemptData `json:"attempts"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"INVALID_IMAGE"`
	Message string `json:"message" example:"Invalid image format"`
}

// HealthData represents the health probe response
type HealthData struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version,omitempty" example:"0.1.0"`
}

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Facegate API",
		Version:     "v1.0.0",
		Description: "Camera-based liveness verification and face login service",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// GET /v1/liveness/challenge
		endpoint.New(
			endpoint.GET,
			"/liveness/challenge",
			endpoint.WithTags("Liveness"),
			endpoint.WithSummary("Issue a liveness challenge"),
			endpoint.WithDescription("Returns one uniformly random challenge the client must perform on camera."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ChallengeData{}, "200", "Challenge issued"),
			}),
		),

		// POST /v1/liveness/verify
		endpoint.New(
			endpoint.POST,
			"/liveness/verify",
			endpoint.WithTags("Liveness"),
			endpoint.WithSummary("Verify a frame against a challenge"),
			endpoint.WithDescription("Evaluates one still frame against the issued challenge. A frame with no detectable face yields success=false with a reason, not an error."),
			endpoint.WithBody(VerifyRequestData{}),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(OutcomeData{}, "200", "Outcome computed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "MISSING_DATA", Message: "Missing image or challenge data"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Invalid image format"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// POST /v1/liveness/emotion
		endpoint.New(
			endpoint.POST,
			"/liveness/emotion",
			endpoint.WithTags("Liveness"),
			endpoint.WithSummary("Continuous emotion analysis"),
			endpoint.WithDescription("Reports the largest face's bounding box and capitalized dominant emotion. Classifier faults degrade to N/A."),
			endpoint.WithBody(EmotionRequestData{}),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmotionData{}, "200", "Analysis computed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Invalid image format"}, "400", "Bad Request"),
			}),
		),

		// POST /v1/auth/register
		endpoint.New(
			endpoint.POST,
			"/auth/register",
			endpoint.WithTags("Auth"),
			endpoint.WithSummary("Enroll a face for a username"),
			endpoint.WithDescription("Persists the reference image under the sanitized username and invalidates the matcher index. Re-enrolling an existing username overwrites the prior image."),
			endpoint.WithBody(RegisterRequestData{}),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RegisterData{}, "200", "Enrollment result"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "MISSING_DATA", Message: "Missing image or challenge data"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "INVALID_USERNAME", Message: "Invalid username"}, "400", "Bad Request"),
			}),
		),

		// POST /v1/auth/login
		endpoint.New(
			endpoint.POST,
			"/auth/login",
			endpoint.WithTags("Auth"),
			endpoint.WithSummary("Identify a face against enrolled users"),
			endpoint.WithDescription("Matches the probe image against the reference store. Unrecognized faces and matcher faults are 200 responses with success=false."),
			endpoint.WithBody(LoginRequestData{}),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(LoginData{}, "200", "Login result"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Invalid image format"}, "400", "Bad Request"),
			}),
		),

		// GET /v1/auth/users
		endpoint.New(
			endpoint.GET,
			"/auth/users",
			endpoint.WithTags("Auth"),
			endpoint.WithSummary("List enrolled usernames"),
			endpoint.WithDescription("Returns the usernames with a stored reference image, sorted alphabetically."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(UsersData{}, "200", "Enrolled users"),
			}),
		),

		// GET /v1/attempts
		endpoint.New(
			endpoint.GET,
			"/attempts",
			endpoint.WithTags("Audit"),
			endpoint.WithSummary("Recent attempts of one kind"),
			endpoint.WithDescription("Reads back the audit trail. Available only when a database is configured. Query params: kind (verify|login|register, default login), limit (1-100, default 20)."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AttemptsData{}, "200", "Recent attempts"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid request"}, "400", "Bad Request"),
			}),
		),

		// GET /health
		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Liveness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthData{}, "200", "Service is up"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)
	return sw
}
