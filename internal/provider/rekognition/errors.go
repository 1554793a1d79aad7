package rekognition

import (
	"errors"

	"github.com/aws/smithy-go"
)

const (
	errCodeAccessDenied     = "AccessDeniedException"
	errCodeInvalidParameter = "InvalidParameterException"
	errCodeImageTooLarge    = "ImageTooLargeException"
	errCodeInvalidImage     = "InvalidImageFormatException"
)

var (
	// ErrInvalidCredentials indicates the AWS credential chain was rejected.
	ErrInvalidCredentials = errors.New("rekognition: invalid AWS credentials")

	// ErrInvalidImage indicates the payload cannot be processed by Rekognition.
	ErrInvalidImage = errors.New("rekognition: invalid image")
)

// classifyAPIError maps a Rekognition API error onto the provider's
// error values where a stable mapping exists.
func classifyAPIError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.ErrorCode() {
	case errCodeAccessDenied:
		return ErrInvalidCredentials
	case errCodeInvalidParameter, errCodeImageTooLarge, errCodeInvalidImage:
		return ErrInvalidImage
	default:
		return err
	}
}
