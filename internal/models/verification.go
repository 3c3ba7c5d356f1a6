package models

import "time"

// Verification represents one recorded lookup of a certificate by its
// verification code, stored in the database for statistics.
type Verification struct {
	// ID is the primary key with auto-increment functionality
	ID uint `gorm:"primaryKey"`

	// CertificateID references the certificate that was looked up.
	// Indexed so per-certificate counts stay cheap.
	CertificateID string `gorm:"index;size:64"`

	// Code is the verification code as generated (upper-case form),
	// kept alongside the id for log correlation.
	Code string `gorm:"size:16"`

	// Timestamp records the exact moment the lookup occurred.
	Timestamp time.Time

	// UserAgent stores the client information from the HTTP request.
	UserAgent string `gorm:"size:255"`

	// IPAddress stores the address of the client performing the lookup.
	IPAddress string `gorm:"size:50"`
}

// VerificationEvent is the lightweight value passed through the events
// channel between the verify handler and the worker pool. It carries only
// what is needed to create a Verification row later.
type VerificationEvent struct {
	CertificateID string    // Which certificate was looked up
	Code          string    // The code that was used (normalized upper-case)
	Timestamp     time.Time // When the lookup occurred
	UserAgent     string    // Client information
	IPAddress     string    // Client address
}
