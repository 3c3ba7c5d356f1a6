package workers

import (
	"log"

	customerrors "github.com/sicfor/sicfor/internal/errors"
	"github.com/sicfor/sicfor/internal/models"
	"github.com/sicfor/sicfor/internal/repository"
)

// StartVerificationWorkers launches a pool of worker goroutines to record
// verification events asynchronously, so the public lookup path never waits
// on the database.
// Parameters:
//   - workerCount: number of concurrent workers to spawn
//   - eventsChan: channel that receives verification events to be recorded
//   - verificationRepo: repository interface for persisting verifications
func StartVerificationWorkers(workerCount int, eventsChan <-chan models.VerificationEvent, verificationRepo repository.VerificationRepository) {
	log.Printf("Starting %d verification worker(s)...", workerCount)

	for i := 0; i < workerCount; i++ {
		go verificationWorker(eventsChan, verificationRepo)
	}
}

// verificationWorker is the function executed by each worker goroutine.
// It continuously listens for events on the channel and persists them.
// When the channel is closed, the worker exits gracefully.
func verificationWorker(eventsChan <-chan models.VerificationEvent, verificationRepo repository.VerificationRepository) {
	for event := range eventsChan {
		verification := &models.Verification{
			CertificateID: event.CertificateID,
			Code:          event.Code,
			Timestamp:     event.Timestamp,
			UserAgent:     event.UserAgent,
			IPAddress:     event.IPAddress,
		}

		// Log failures and keep going; a lost analytics row must never stop
		// the pool from draining further events.
		if err := verificationRepo.CreateVerification(verification); err != nil {
			log.Printf("ERROR: %v (UserAgent: %s, IP: %s)",
				customerrors.ErrVerificationRecordingFailed{CertificateID: event.CertificateID, Reason: err.Error()},
				event.UserAgent, event.IPAddress)
		} else {
			log.Printf("Verification recorded for certificate %s", event.CertificateID)
		}
	}
	// Worker exits when the channel is closed during shutdown
}
