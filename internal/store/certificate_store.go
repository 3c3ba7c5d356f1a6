// Package store implements the record store owning the persisted certificate
// list. It is the sole writer of the persistent slot: a single versioned key
// holding the full record list as one JSON array, most-recently-added first.
package store

import (
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"

	customerrors "github.com/sicfor/sicfor/internal/errors"
	"github.com/sicfor/sicfor/internal/models"
	"github.com/sicfor/sicfor/internal/repository"
)

// DefaultSlotKey is the versioned slot name. Format changes must be
// introduced under a new key, never by migrating data under this one.
const DefaultSlotKey = "sicfor:certificates:v1"

// CertificateStore owns the in-memory record list and writes every mutation
// through to the persistent slot synchronously. It is constructed explicitly
// and passed to whoever drives the boundary; there is no package-level
// instance.
//
// Storage failures never reach callers: reads degrade to an empty list and
// writes degrade to a logged no-op, leaving the prior persisted state intact.
//
// The store is served through gin, which runs handlers on concurrent
// goroutines, so every method takes the mutex guarding the record list.
type CertificateStore struct {
	slots   repository.SlotRepository
	slotKey string
	mu      sync.RWMutex // Protects records
	records []models.Certificate
}

// NewCertificateStore creates a store bound to the given slot key and primes
// the in-memory list from the persistent slot.
func NewCertificateStore(slots repository.SlotRepository, slotKey string) *CertificateStore {
	if slotKey == "" {
		slotKey = DefaultSlotKey
	}
	s := &CertificateStore{slots: slots, slotKey: slotKey}
	s.records = s.readSlot()
	return s
}

// readSlot decodes the persisted record list. An absent, empty or malformed
// slot yields an empty list with a diagnostic; it never fails upward.
func (s *CertificateStore) readSlot() []models.Certificate {
	raw, err := s.slots.Read(s.slotKey)
	if err != nil {
		if !errors.Is(err, repository.ErrSlotNotFound) {
			log.Printf("WARNING: could not read storage slot %s: %v, starting with empty history", s.slotKey, err)
		}
		return []models.Certificate{}
	}
	if strings.TrimSpace(raw) == "" {
		return []models.Certificate{}
	}
	var records []models.Certificate
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		log.Printf("WARNING: storage slot %s holds malformed JSON: %v, starting with empty history", s.slotKey, err)
		return []models.Certificate{}
	}
	if records == nil {
		records = []models.Certificate{}
	}
	return records
}

// writeSlot serializes the in-memory list and overwrites the slot. On failure
// it logs and returns without touching the previously persisted state.
func (s *CertificateStore) writeSlot() {
	data, err := json.Marshal(s.records)
	if err != nil {
		log.Printf("WARNING: could not serialize certificate history: %v", err)
		return
	}
	if err := s.slots.Write(s.slotKey, string(data)); err != nil {
		log.Printf("WARNING: %v", customerrors.ErrSlotWriteFailed{Key: s.slotKey, Reason: err.Error()})
	}
}

// Load re-reads the persistent slot, refreshes the in-memory list and returns
// it most-recently-added first.
func (s *CertificateStore) Load() []models.Certificate {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = s.readSlot()
	return models.CloneRecords(s.records)
}

// Save replaces the full record list and overwrites the persistent slot.
func (s *CertificateStore) Save(records []models.Certificate) {
	if records == nil {
		records = []models.Certificate{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = models.CloneRecords(records)
	s.writeSlot()
}

// Clear removes the persistent slot entirely and empties the in-memory list.
func (s *CertificateStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = []models.Certificate{}
	if err := s.slots.Delete(s.slotKey); err != nil {
		log.Printf("WARNING: could not clear storage slot %s: %v", s.slotKey, err)
	}
}

// Add inserts the record at the head of the list (most-recent-first ordering)
// and persists the full list.
func (s *CertificateStore) Add(record models.Certificate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]models.Certificate{record}, s.records...)
	s.writeSlot()
}

// Remove filters out the record with the given id and persists the result.
// When no record matches it still persists, which keeps the slot in step with
// the in-memory list.
func (s *CertificateStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	filtered := make([]models.Certificate, 0, len(s.records))
	for _, record := range s.records {
		if record.ID != id {
			filtered = append(filtered, record)
		}
	}
	s.records = filtered
	s.writeSlot()
}

// FindByID returns the first record with the given id, or nil.
func (s *CertificateStore) FindByID(id string) *models.Certificate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.records {
		if s.records[i].ID == id {
			return s.records[i].Clone()
		}
	}
	return nil
}

// FindByCode returns the first record with the given verification code, or
// nil. Codes are generated upper-case, so the input is upper-cased before
// comparison to make the lookup case-insensitive.
func (s *CertificateStore) FindByCode(code string) *models.Certificate {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.records {
		if s.records[i].VerificationCode == normalized {
			return s.records[i].Clone()
		}
	}
	return nil
}

// Len returns the number of records currently held.
func (s *CertificateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
