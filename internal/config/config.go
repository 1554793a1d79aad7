package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database (optional; attempt auditing and the pgvector matcher are
	// disabled when unset)
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Providers
	FaceProvider    string        `envconfig:"FACE_PROVIDER" default:"deepface"`
	Matcher         string        `envconfig:"MATCHER" default:"deepface"`
	DeepFaceURL     string        `envconfig:"DEEPFACE_URL" default:"http://localhost:5005"`
	AWSRegion       string        `envconfig:"AWS_REGION" default:"us-east-1"`
	ProviderTimeout time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"30s"`

	// Identity store
	FaceDBPath string `envconfig:"FACE_DB_PATH" default:"face_database"`

	// Liveness thresholds. These are empirically tuned constants; their
	// correctness is calibration, not derivation. Do not change them
	// without re-running the calibration set.
	EARThreshold  float64 `envconfig:"LIVENESS_EAR_THRESHOLD" default:"0.20"`
	TurnLeftMax   float64 `envconfig:"LIVENESS_TURN_LEFT_MAX" default:"0.55"`
	TurnRightMin  float64 `envconfig:"LIVENESS_TURN_RIGHT_MIN" default:"1.8"`
	SmileScale    float64 `envconfig:"LIVENESS_SMILE_DOWNSCALE" default:"0.6"`
	AnalysisScale float64 `envconfig:"LIVENESS_ANALYSIS_DOWNSCALE" default:"0.5"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AuditEnabled reports whether the Postgres attempt trail is configured.
func (c *Config) AuditEnabled() bool {
	return c.DatabaseURL != ""
}
