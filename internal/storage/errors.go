package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var (
	// ErrInvalidConfig indicates missing or inconsistent storage configuration.
	ErrInvalidConfig = errors.New("storage: invalid config")

	// ErrInvalidPath indicates a path that escapes the bucket namespace.
	ErrInvalidPath = errors.New("storage: invalid object path")

	// ErrObjectNotFound indicates the requested object does not exist.
	ErrObjectNotFound = errors.New("storage: object not found")

	// ErrBucketNotFound indicates the configured bucket does not exist.
	ErrBucketNotFound = errors.New("storage: bucket not found")

	// ErrAccessDenied indicates the provider rejected the credentials.
	ErrAccessDenied = errors.New("storage: access denied")

	// ErrOperationTimeout indicates the provider call exceeded its deadline.
	ErrOperationTimeout = errors.New("storage: operation timeout")

	// ErrOperationCanceled indicates the provider call was canceled.
	ErrOperationCanceled = errors.New("storage: operation canceled")
)

// classifyError converts provider errors to storage sentinels so callers can
// branch on error identity instead of parsing provider messages.
func classifyError(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrOperationTimeout, operation)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s", ErrOperationCanceled, operation)
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, operation)
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return ErrBucketNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied":
			return fmt.Errorf("%w: %s", ErrAccessDenied, operation)
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %s", ErrObjectNotFound, operation)
		case "NoSuchBucket":
			return ErrBucketNotFound
		default:
			return fmt.Errorf("%s failed (code: %s): %w", operation, apiErr.ErrorCode(), err)
		}
	}

	return fmt.Errorf("%s failed: %w", operation, err)
}
