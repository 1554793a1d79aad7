package rekognition

import "time"

// Config holds configuration for the AWS Rekognition provider.
type Config struct {
	// Region is the AWS region Rekognition is called in (e.g. "us-east-1").
	Region string
	// Timeout bounds each DetectFaces call.
	Timeout time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Region:  "us-east-1",
		Timeout: 30 * time.Second,
	}
}
