package liveness

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/veridion-labs/facegate/internal/domain"
)

type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) DominantEmotion(ctx context.Context, image []byte) (string, error) {
	args := m.Called(ctx, image)
	return args.String(0), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// eyeWithEAR writes a 6-point contour with the requested aspect ratio
// into landmarks at the given start index. Width 200 keeps integer
// coordinates exact for two-decimal ratios.
func eyeWithEAR(landmarks *domain.LandmarkSet, start int, ear float64) {
	a := int(ear * 100)
	contour := []domain.Point{
		{X: 0, Y: 0},
		{X: 60, Y: -a},
		{X: 140, Y: -a},
		{X: 200, Y: 0},
		{X: 140, Y: a},
		{X: 60, Y: a},
	}
	copy(landmarks[start:start+6], contour)
}

func landmarksWithEAR(left, right float64) *domain.LandmarkSet {
	var l domain.LandmarkSet
	eyeWithEAR(&l, 36, left)
	eyeWithEAR(&l, 42, right)
	return &l
}

func landmarksWithJaw(noseX, leftJawX, rightJawX int) *domain.LandmarkSet {
	var l domain.LandmarkSet
	l[33] = domain.Point{X: noseX, Y: 50}
	l[2] = domain.Point{X: leftJawX, Y: 60}
	l[14] = domain.Point{X: rightJawX, Y: 60}
	// Non-degenerate eyes so the set looks like a real face.
	eyeWithEAR(&l, 36, 0.30)
	eyeWithEAR(&l, 42, 0.30)
	return &l
}

func TestVerify_Blink(t *testing.T) {
	tests := []struct {
		name        string
		leftEAR     float64
		rightEAR    float64
		wantSuccess bool
	}{
		{"closed eyes pass", 0.15, 0.17, true},
		{"open eyes fail", 0.25, 0.30, false},
		{"boundary at threshold fails", 0.20, 0.20, false},
	}

	v := NewVerifier(&MockClassifier{}, DefaultConfig(), testLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := v.Verify(context.Background(), domain.FaceRegion{}, landmarksWithEAR(tt.leftEAR, tt.rightEAR), domain.ChallengeBlink, nil)
			assert.Equal(t, tt.wantSuccess, out.Success)
			assert.InDelta(t, (tt.leftEAR+tt.rightEAR)/2, out.Score, 1e-9)
		})
	}
}

func TestVerify_Turn(t *testing.T) {
	tests := []struct {
		name        string
		challenge   domain.Challenge
		noseX       int
		leftJawX    int
		rightJawX   int
		wantSuccess bool
	}{
		{"ratio 0.40 passes look left", domain.ChallengeLookLeft, 50, 10, 150, true},
		{"ratio 0.40 fails look right", domain.ChallengeLookRight, 50, 10, 150, false},
		{"ratio 2.0 passes look right", domain.ChallengeLookRight, 110, 10, 160, true},
		{"ratio 2.0 fails look left", domain.ChallengeLookLeft, 110, 10, 160, false},
		{"ratio 1.0 dead zone fails left", domain.ChallengeLookLeft, 80, 30, 130, false},
		{"ratio 1.0 dead zone fails right", domain.ChallengeLookRight, 80, 30, 130, false},
	}

	v := NewVerifier(&MockClassifier{}, DefaultConfig(), testLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := v.Verify(context.Background(), domain.FaceRegion{}, landmarksWithJaw(tt.noseX, tt.leftJawX, tt.rightJawX), tt.challenge, nil)
			assert.Equal(t, tt.wantSuccess, out.Success)
		})
	}
}

func TestVerify_TurnDegenerateJawFailsBothDirections(t *testing.T) {
	v := NewVerifier(&MockClassifier{}, DefaultConfig(), testLogger())

	for _, c := range []domain.Challenge{domain.ChallengeLookLeft, domain.ChallengeLookRight} {
		// Zero left-jaw distance.
		out := v.Verify(context.Background(), domain.FaceRegion{}, landmarksWithJaw(10, 10, 150), c, nil)
		assert.False(t, out.Success, "challenge %s", c)

		// Zero right-jaw distance.
		out = v.Verify(context.Background(), domain.FaceRegion{}, landmarksWithJaw(150, 10, 150), c, nil)
		assert.False(t, out.Success, "challenge %s", c)
	}
}

func TestVerify_Smile(t *testing.T) {
	tests := []struct {
		name        string
		label       string
		err         error
		wantSuccess bool
	}{
		{"happy passes", "happy", nil, true},
		{"case-insensitive happy passes", "Happy", nil, true},
		{"other emotion fails", "neutral", nil, false},
		{"empty label fails", "", nil, false},
		{"classifier fault fails closed", "", errors.New("model unavailable"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := &MockClassifier{}
			classifier.On("DominantEmotion", mock.Anything, mock.Anything).Return(tt.label, tt.err)

			cfg := DefaultConfig()
			cfg.SmileScale = 0 // skip resampling, the payload is synthetic
			v := NewVerifier(classifier, cfg, testLogger())

			out := v.Verify(context.Background(), domain.FaceRegion{}, landmarksWithEAR(0.3, 0.3), domain.ChallengeSmile, []byte("frame"))
			assert.Equal(t, tt.wantSuccess, out.Success)
		})
	}
}

func TestVerify_UnknownChallengeFails(t *testing.T) {
	v := NewVerifier(&MockClassifier{}, DefaultConfig(), testLogger())

	out := v.Verify(context.Background(), domain.FaceRegion{}, landmarksWithEAR(0.1, 0.1), domain.Challenge("Wave"), nil)
	assert.False(t, out.Success)
	assert.Equal(t, "unknown challenge", out.Reason)
}

func TestVerify_NilLandmarks(t *testing.T) {
	t.Run("geometric challenges fail", func(t *testing.T) {
		v := NewVerifier(&MockClassifier{}, DefaultConfig(), testLogger())

		for _, c := range []domain.Challenge{domain.ChallengeBlink, domain.ChallengeLookLeft, domain.ChallengeLookRight} {
			out := v.Verify(context.Background(), domain.FaceRegion{}, nil, c, nil)
			assert.False(t, out.Success, "challenge %s", c)
			assert.Equal(t, "missing landmarks", out.Reason)
		}
	})

	t.Run("smile classifies without landmarks", func(t *testing.T) {
		classifier := &MockClassifier{}
		classifier.On("DominantEmotion", mock.Anything, mock.Anything).Return("happy", nil)

		cfg := DefaultConfig()
		cfg.SmileScale = 0 // skip resampling, the payload is synthetic
		v := NewVerifier(classifier, cfg, testLogger())

		out := v.Verify(context.Background(), domain.FaceRegion{}, nil, domain.ChallengeSmile, []byte("frame"))
		assert.True(t, out.Success)
	})
}

func TestVerify_PanicFailsClosed(t *testing.T) {
	classifier := &MockClassifier{} // no expectations set: Called() panics

	cfg := DefaultConfig()
	cfg.SmileScale = 0
	v := NewVerifier(classifier, cfg, testLogger())

	out := v.Verify(context.Background(), domain.FaceRegion{}, landmarksWithEAR(0.3, 0.3), domain.ChallengeSmile, []byte("frame"))
	assert.False(t, out.Success)
}
