package monitor

import (
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/sicfor/sicfor/internal/models"
	"github.com/sicfor/sicfor/internal/repository"
)

// SlotMonitor periodically re-reads the persistent certificate slot and
// verifies that it still decodes as a record list. Corruption cannot be
// repaired automatically (the store deliberately degrades to an empty
// history), but a state transition is worth a loud log line.
type SlotMonitor struct {
	slotRepo   repository.SlotRepository // Repository to read the slot from
	slotKey    string                    // Which slot to watch
	interval   time.Duration             // How often to check the slot
	knownState *bool                     // Previous readability state, nil before the first check
	mu         sync.Mutex                // Protects knownState
}

// NewSlotMonitor creates and returns a new instance of SlotMonitor.
// interval determines how frequently the slot is checked.
func NewSlotMonitor(slotRepo repository.SlotRepository, slotKey string, interval time.Duration) *SlotMonitor {
	return &SlotMonitor{
		slotRepo: slotRepo,
		slotKey:  slotKey,
		interval: interval,
	}
}

// Start launches the periodic slot check loop.
// This is a blocking function that runs until the program stops.
func (m *SlotMonitor) Start() {
	log.Printf("[MONITOR] Starting slot monitor for %s with interval of %v...", m.slotKey, m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// Execute an immediate check on startup before the first tick
	m.checkSlot()

	for range ticker.C {
		m.checkSlot()
	}
}

// checkSlot reads the slot once, classifies it and logs state transitions.
func (m *SlotMonitor) checkSlot() {
	readable, count := m.readSlotState()

	m.mu.Lock()
	previous := m.knownState
	m.knownState = &readable
	m.mu.Unlock()

	if previous == nil {
		log.Printf("[MONITOR] Initial state for slot %s: %s (%d record(s))",
			m.slotKey, formatState(readable), count)
		return
	}

	if readable != *previous {
		log.Printf("[NOTIFICATION] Slot %s changed from %s to %s!",
			m.slotKey, formatState(*previous), formatState(readable))
	}
}

// readSlotState reports whether the slot currently decodes and how many
// records it holds. An absent or empty slot counts as readable with zero
// records.
func (m *SlotMonitor) readSlotState() (bool, int) {
	raw, err := m.slotRepo.Read(m.slotKey)
	if err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return true, 0
		}
		log.Printf("[MONITOR] Error reading slot %s: %v", m.slotKey, err)
		return false, 0
	}
	if strings.TrimSpace(raw) == "" {
		return true, 0
	}

	var records []models.Certificate
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		log.Printf("[MONITOR] Slot %s holds malformed JSON: %v", m.slotKey, err)
		return false, 0
	}
	return true, len(records)
}

// formatState is a utility function to make the state more readable in logs.
func formatState(readable bool) string {
	if readable {
		return "READABLE"
	}
	return "CORRUPT"
}
