package deepface

import "errors"

var (
	ErrSidecarUnavailable = errors.New("deepface sidecar unavailable")
	ErrInvalidResponse    = errors.New("invalid response from deepface sidecar")
	ErrBadLandmarkCount   = errors.New("landmark set does not match the 68-point topology")
)
