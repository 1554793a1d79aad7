package mock

import (
	"context"
	"math"
	"testing"

	"github.com/veridion-labs/facegate/internal/geometry"
)

func TestProvider_DetectFaces(t *testing.T) {
	p := New()
	ctx := context.Background()

	tests := []struct {
		name      string
		image     []byte
		wantFaces int
		wantErr   bool
	}{
		{
			name:      "valid image",
			image:     make([]byte, 5000),
			wantFaces: 1,
			wantErr:   false,
		},
		{
			name:      "image too small",
			image:     make([]byte, 100),
			wantFaces: 0,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			faces, err := p.DetectFaces(ctx, tt.image)
			if (err != nil) != tt.wantErr {
				t.Errorf("DetectFaces() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if len(faces) != tt.wantFaces {
				t.Errorf("DetectFaces() got %d faces, want %d", len(faces), tt.wantFaces)
			}
		})
	}
}

func TestProvider_Landmarks(t *testing.T) {
	p := New()
	p.EyeOpenness = 0.2
	p.HeadTurn = 0.5

	image := make([]byte, 5000)
	regions, err := p.DetectFaces(context.Background(), image)
	if err != nil {
		t.Fatalf("DetectFaces() error = %v", err)
	}

	set, err := p.Landmarks(context.Background(), image, regions[0])
	if err != nil {
		t.Fatalf("Landmarks() error = %v", err)
	}

	left := geometry.EyeAspectRatio(set.LeftEye())
	if math.Abs(left-0.2) > 0.01 {
		t.Errorf("left eye aspect ratio = %v, want ~0.2", left)
	}

	ratio, ok := geometry.TurnRatio(set.NoseTip(), set.LeftJaw(), set.RightJaw())
	if !ok {
		t.Fatal("TurnRatio() reported degenerate geometry")
	}
	if math.Abs(ratio-0.5) > 0.05 {
		t.Errorf("turn ratio = %v, want ~0.5", ratio)
	}
}

func TestProvider_Embedding_Deterministic(t *testing.T) {
	p := New()
	ctx := context.Background()

	image := make([]byte, 5000)
	for i := range image {
		image[i] = byte(i % 256)
	}

	first, err := p.Embedding(ctx, image)
	if err != nil {
		t.Fatalf("Embedding() error = %v", err)
	}
	second, err := p.Embedding(ctx, image)
	if err != nil {
		t.Fatalf("Embedding() error = %v", err)
	}

	if len(first) != embeddingDimension {
		t.Fatalf("Embedding() dimension = %d, want %d", len(first), embeddingDimension)
	}

	norm := 0.0
	for i := range first {
		if first[i] != second[i] {
			t.Fatal("Embedding() is not deterministic")
		}
		norm += first[i] * first[i]
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-9 {
		t.Errorf("Embedding() norm = %v, want 1.0", math.Sqrt(norm))
	}
}

func TestProvider_Invalidations(t *testing.T) {
	p := New()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := p.Invalidate(ctx); err != nil {
			t.Fatalf("Invalidate() error = %v", err)
		}
	}

	if got := p.Invalidations(); got != 3 {
		t.Errorf("Invalidations() = %d, want 3", got)
	}
}
