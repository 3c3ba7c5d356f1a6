// Package services contains the business logic layer for the certificate manager
package services

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	customerrors "github.com/sicfor/sicfor/internal/errors"
	"github.com/sicfor/sicfor/internal/models"
	"github.com/sicfor/sicfor/internal/repository"
	"github.com/sicfor/sicfor/internal/store"
)

// charset defines the character set used for generating verification codes.
// Codes are upper-case alphanumeric (36 symbols), so lookups can be
// case-normalized. At 12 characters this gives 36^12 ≈ 4.7e18 combinations,
// roughly 62 bits of entropy per code.
const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeLength is the fixed length of every verification code.
const CodeLength = 12

// CertificateInput carries the raw user-supplied fields for a new record.
// No validation happens here; the boundary is responsible for rejecting an
// empty recipient name before anything is persisted.
type CertificateInput struct {
	Name   string
	Title  string
	Issuer string
	Date   string
	Note   string
}

// CertificateService provides business logic methods for managing certificates.
// It acts as an intermediary between the boundary (HTTP handlers, CLI) and the
// record store.
type CertificateService struct {
	store         *store.CertificateStore
	verifications repository.VerificationRepository // May be nil when stats are not needed
}

// NewCertificateService creates and returns a new instance of CertificateService.
// This is a constructor function following Go conventions.
func NewCertificateService(certStore *store.CertificateStore, verifications repository.VerificationRepository) *CertificateService {
	return &CertificateService{
		store:         certStore,
		verifications: verifications,
	}
}

// GenerateVerificationCode generates a cryptographically secure random code.
// Parameters:
//   - length: the desired length of the generated code
//
// Returns:
//   - string: the generated random code
//   - error: any error that occurred during generation
func (s *CertificateService) GenerateVerificationCode(length int) (string, error) {
	// Create a byte slice to hold our random characters
	code := make([]byte, length)

	// Generate each character randomly from our charset
	for i := range code {
		// Use crypto/rand for cryptographically secure random numbers
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		// Map the random number to a character from our charset
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

// NewRecord builds a detached certificate record from the given input: a
// fresh id, a fresh verification code and createdAt set to the current
// instant. The record is not persisted; the caller decides whether to hand it
// to the store or discard it (preview-only use).
//
// The code is checked against the store with a retry loop so accidental
// collisions within one history are ruled out, not just improbable.
func (s *CertificateService) NewRecord(input CertificateInput) (*models.Certificate, error) {
	var verificationCode string
	maxRetries := 5 // Maximum number of attempts to generate a unique code

	// Retry loop to handle verification code collisions
	for i := 0; i < maxRetries; i++ {
		code, err := s.GenerateVerificationCode(CodeLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate verification code: %w", err)
		}

		// Check if the generated code already exists in the store
		if existing := s.store.FindByCode(code); existing == nil {
			verificationCode = code
			break // The code is unique, exit the retry loop
		}
	}

	// If we exhausted all retries without finding a unique code
	if verificationCode == "" {
		return nil, customerrors.ErrCodeGenerationFailed
	}

	return &models.Certificate{
		ID:               uuid.NewString(),
		VerificationCode: verificationCode,
		Name:             input.Name,
		Title:            input.Title,
		Issuer:           input.Issuer,
		Date:             input.Date,
		Note:             input.Note,
		CreatedAt:        time.Now().Format(time.RFC3339),
	}, nil
}

// CreateCertificate builds a new record from the input and persists it at the
// head of the history.
// Parameters:
//   - input: the raw user-supplied fields
//
// Returns:
//   - *models.Certificate: the created record with its id and code
//   - error: any error that occurred during creation
func (s *CertificateService) CreateCertificate(input CertificateInput) (*models.Certificate, error) {
	record, err := s.NewRecord(input)
	if err != nil {
		return nil, err
	}

	// Hand the detached record to the store, which inserts it at the head of
	// the list and writes the slot through synchronously.
	s.store.Add(*record)

	return record, nil
}

// List returns the full history, most-recently-created first.
func (s *CertificateService) List() []models.Certificate {
	return s.store.Load()
}

// GetByID retrieves a record by its id.
// Returns ErrCertificateNotFound when no record matches.
func (s *CertificateService) GetByID(id string) (*models.Certificate, error) {
	record := s.store.FindByID(id)
	if record == nil {
		return nil, customerrors.ErrCertificateNotFound
	}
	return record, nil
}

// VerifyByCode retrieves a record by its verification code. The lookup is
// case-insensitive since codes are generated upper-case. A miss is reported
// as ErrCertificateNotFound; it is a normal result, not a failure.
func (s *CertificateService) VerifyByCode(code string) (*models.Certificate, error) {
	record := s.store.FindByCode(code)
	if record == nil {
		return nil, customerrors.ErrCertificateNotFound
	}
	return record, nil
}

// Delete removes the record with the given id. Removing an unknown id is a
// no-op apart from rewriting the slot.
func (s *CertificateService) Delete(id string) {
	s.store.Remove(id)
}

// DeleteAll clears the whole history and removes the persistent slot.
func (s *CertificateService) DeleteAll() {
	s.store.Clear()
}

// GetVerificationStats retrieves a record together with the total number of
// recorded lookups against its verification code.
// Parameters:
//   - id: the certificate id to get statistics for
//
// Returns:
//   - *models.Certificate: the record
//   - int: total number of recorded verifications
//   - error: ErrCertificateNotFound or a repository error
func (s *CertificateService) GetVerificationStats(id string) (*models.Certificate, int, error) {
	// First, retrieve the record by its id
	record, err := s.GetByID(id)
	if err != nil {
		return nil, 0, err
	}

	if s.verifications == nil {
		return record, 0, nil
	}

	// Count the total number of verifications recorded for this certificate
	total, err := s.verifications.CountByCertificateID(record.ID)
	if err != nil {
		return nil, 0, err
	}

	return record, total, nil
}

// ExportJSON serializes the full history as an indented JSON array along with
// the download file name for it, which embeds the given date.
func (s *CertificateService) ExportJSON(now time.Time) ([]byte, string, error) {
	records := s.store.Load()
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("failed to serialize certificate history: %w", err)
	}
	filename := fmt.Sprintf("certificates-export-%s.json", now.Format("2006-01-02"))
	return data, filename, nil
}
