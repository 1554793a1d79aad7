package rekognition

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDetectFacesAPI struct {
	mock.Mock
}

func (m *MockDetectFacesAPI) DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rekognition.DetectFacesOutput), args.Error(1)
}

// testImage renders a PNG with known pixel dimensions so relative
// bounding boxes convert to predictable coordinates.
func testImage(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.GreaterOrEqual(t, buf.Len(), minImageSize)
	return buf.Bytes()
}

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{name: "too small", size: 10, wantErr: true},
		{name: "minimum", size: minImageSize, wantErr: false},
		{name: "too large", size: maxImageSize + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateImage(make([]byte, tt.size))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidImage)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDetectFaces_PixelConversion(t *testing.T) {
	img := testImage(t, 200, 100)

	api := new(MockDetectFacesAPI)
	api.On("DetectFaces", mock.Anything, mock.Anything).Return(&rekognition.DetectFacesOutput{
		FaceDetails: []types.FaceDetail{
			{
				BoundingBox: &types.BoundingBox{
					Left:   aws.Float32(0.1),
					Top:    aws.Float32(0.2),
					Width:  aws.Float32(0.5),
					Height: aws.Float32(0.5),
				},
			},
			{
				// Missing box fields are skipped, not zeroed.
				BoundingBox: &types.BoundingBox{Left: aws.Float32(0.1)},
			},
		},
	}, nil)

	p := &Provider{api: api}

	regions, err := p.DetectFaces(context.Background(), img)
	require.NoError(t, err)
	require.Len(t, regions, 1)

	assert.Equal(t, 20, regions[0].Left)
	assert.Equal(t, 20, regions[0].Top)
	assert.Equal(t, 120, regions[0].Right)
	assert.Equal(t, 70, regions[0].Bottom)
	api.AssertExpectations(t)
}

func TestDetectFaces_RejectsInvalidPayload(t *testing.T) {
	api := new(MockDetectFacesAPI)
	p := &Provider{api: api}

	_, err := p.DetectFaces(context.Background(), []byte("tiny"))
	assert.ErrorIs(t, err, ErrInvalidImage)
	api.AssertNotCalled(t, "DetectFaces")
}

func TestDominantEmotion(t *testing.T) {
	img := testImage(t, 64, 64)

	tests := []struct {
		name     string
		details  []types.FaceDetail
		expected string
	}{
		{
			name: "picks highest confidence and lowercases",
			details: []types.FaceDetail{
				{
					Emotions: []types.Emotion{
						{Type: types.EmotionNameCalm, Confidence: aws.Float32(12.5)},
						{Type: types.EmotionNameHappy, Confidence: aws.Float32(83.1)},
						{Type: types.EmotionNameSurprised, Confidence: aws.Float32(4.4)},
					},
				},
			},
			expected: "happy",
		},
		{
			name: "skips nil confidence entries",
			details: []types.FaceDetail{
				{
					Emotions: []types.Emotion{
						{Type: types.EmotionNameAngry},
						{Type: types.EmotionNameSad, Confidence: aws.Float32(40)},
					},
				},
			},
			expected: "sad",
		},
		{
			name:     "no face yields empty label",
			details:  nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockDetectFacesAPI)
			api.On("DetectFaces", mock.Anything, mock.MatchedBy(func(in *rekognition.DetectFacesInput) bool {
				return len(in.Attributes) == 1 && in.Attributes[0] == types.AttributeAll
			})).Return(&rekognition.DetectFacesOutput{FaceDetails: tt.details}, nil)

			p := &Provider{api: api}

			emotion, err := p.DominantEmotion(context.Background(), img)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, emotion)
		})
	}
}

func TestDetectFaces_AppliesCallTimeout(t *testing.T) {
	img := testImage(t, 100, 100)

	api := new(MockDetectFacesAPI)
	api.On("DetectFaces", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= 5*time.Second
	}), mock.Anything).Return(&rekognition.DetectFacesOutput{}, nil)

	p := &Provider{api: api, timeout: 5 * time.Second}

	_, err := p.DetectFaces(context.Background(), img)
	require.NoError(t, err)
	api.AssertExpectations(t)
}
