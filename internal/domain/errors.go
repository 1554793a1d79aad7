package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches AppErrors by code so errors.Is sees through WithError copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrMissingData = &AppError{
		Code:       "MISSING_DATA",
		Message:    "Missing image or challenge data",
		StatusCode: 400,
	}

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image format",
		StatusCode: 400,
	}

	ErrInvalidUsername = &AppError{
		Code:       "INVALID_USERNAME",
		Message:    "Invalid username",
		StatusCode: 400,
	}

	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "No face detected",
		StatusCode: 422,
	}

	ErrStoreIO = &AppError{
		Code:       "STORE_IO_FAULT",
		Message:    "Failed to save user data",
		StatusCode: 500,
	}

	ErrRateLimited = &AppError{
		Code:       "RATE_LIMITED",
		Message:    "Too many attempts, slow down",
		StatusCode: 429,
	}

	ErrMatchingFailed = &AppError{
		Code:       "MATCHING_FAILED",
		Message:    "An error occurred during face matching",
		StatusCode: 502,
	}
)
