package errors

import (
	"errors"
	"fmt"
)

// Custom error types for the certificate manager

// ErrCertificateNotFound is returned when no record matches the given id or
// verification code. A miss is a normal result for callers, not a failure.
var ErrCertificateNotFound = errors.New("certificate not found")

// ErrEmptyRecipientName is returned by the boundary when the required
// recipient name is missing or blank.
var ErrEmptyRecipientName = errors.New("recipient name must not be empty")

// ErrCodeGenerationFailed is returned when we can't generate a unique
// verification code within the retry budget.
var ErrCodeGenerationFailed = errors.New("failed to generate unique verification code")

// ErrDatabaseConnection is returned when the database connection fails
var ErrDatabaseConnection = errors.New("database connection failed")

// ErrSlotWriteFailed wraps a failed write of the persistent slot. The store
// logs it and keeps the prior persisted state; it never reaches callers.
type ErrSlotWriteFailed struct {
	Key    string
	Reason string
}

func (e ErrSlotWriteFailed) Error() string {
	return fmt.Sprintf("failed to write storage slot %s: %s", e.Key, e.Reason)
}

// ErrVerificationRecordingFailed is returned when persisting a verification
// event fails.
type ErrVerificationRecordingFailed struct {
	CertificateID string
	Reason        string
}

func (e ErrVerificationRecordingFailed) Error() string {
	return fmt.Sprintf("failed to record verification for certificate %s: %s", e.CertificateID, e.Reason)
}

// ErrRenderFailed is returned when drawing or encoding a certificate image
// fails.
type ErrRenderFailed struct {
	CertificateID string
	Reason        string
}

func (e ErrRenderFailed) Error() string {
	return fmt.Sprintf("failed to render certificate %s: %s", e.CertificateID, e.Reason)
}
