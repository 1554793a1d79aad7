package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/veridion-labs/facegate/internal/domain"
	"github.com/veridion-labs/facegate/internal/imaging"
	"github.com/veridion-labs/facegate/internal/provider"
	"github.com/veridion-labs/facegate/internal/store"
)

// IdentityStoreInterface is the slice of the file-backed store the auth
// service uses.
type IdentityStoreInterface interface {
	Enroll(ctx context.Context, username string, image []byte) (*domain.UserRecord, error)
	Usernames() ([]string, error)
	Dir() string
}

type AuthService struct {
	store    IdentityStoreInterface
	matcher  provider.FaceMatcher
	attempts AttemptRecorderInterface
	logger   *slog.Logger
}

func NewAuthService(identityStore IdentityStoreInterface, matcher provider.FaceMatcher, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AuthService{
		store:   identityStore,
		matcher: matcher,
		logger:  logger,
	}
}

// WithAttemptRecorder enables audit-trail persistence.
func (s *AuthService) WithAttemptRecorder(recorder AttemptRecorderInterface) *AuthService {
	s.attempts = recorder
	return s
}

// Register enrolls username with the supplied reference image. Username
// sanitization, face presence, persistence and index invalidation are the
// store's contract; their failures come back as typed errors.
func (s *AuthService) Register(ctx context.Context, username string, image []byte) (*domain.UserRecord, error) {
	start := time.Now()

	if err := imaging.Validate(image); err != nil {
		return nil, err
	}

	record, err := s.store.Enroll(ctx, username, image)
	if err != nil {
		s.recordAttempt(ctx, domain.AttemptRegister, "", false, 0, err.Error(), start)
		return nil, err
	}

	s.logger.Info("user registered", slog.String("username", record.Username))
	s.recordAttempt(ctx, domain.AttemptRegister, record.Username, true, 0, "", start)
	return record, nil
}

// Login matches the probe image against the enrolled references. An empty
// candidate list and a matcher fault are both failed results rather than
// errors: the caller always gets a definite yes or no.
func (s *AuthService) Login(ctx context.Context, image []byte) (domain.LoginResult, error) {
	start := time.Now()

	if err := imaging.Validate(image); err != nil {
		return domain.LoginResult{}, err
	}

	matches, err := s.matcher.Find(ctx, image, s.store.Dir())
	if err != nil {
		s.logger.Error("face matching failed", slog.String("error", err.Error()))
		result := domain.LoginResult{Success: false, Reason: "An error occurred during face matching."}
		s.recordAttempt(ctx, domain.AttemptLogin, "", false, 0, result.Reason, start)
		return result, nil
	}

	if len(matches) == 0 {
		s.logger.Info("login attempt: user not recognized")
		result := domain.LoginResult{Success: false, Reason: "User not recognized"}
		s.recordAttempt(ctx, domain.AttemptLogin, "", false, 0, result.Reason, start)
		return result, nil
	}

	best := matches[0]
	username := store.UsernameFromIdentity(best.Identity)

	s.logger.Info("login successful",
		slog.String("username", username),
		slog.Float64("confidence", best.Confidence),
	)
	s.recordAttempt(ctx, domain.AttemptLogin, username, true, best.Confidence, "", start)

	return domain.LoginResult{Success: true, Username: username}, nil
}

// EnrolledUsers lists the usernames with a stored reference image, sorted
// for stable output.
func (s *AuthService) EnrolledUsers() ([]string, error) {
	users, err := s.store.Usernames()
	if err != nil {
		return nil, domain.ErrStoreIO.WithError(err)
	}
	sort.Strings(users)
	return users, nil
}

func (s *AuthService) recordAttempt(ctx context.Context, kind domain.AttemptKind, username string, success bool, score float64, reason string, start time.Time) {
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
