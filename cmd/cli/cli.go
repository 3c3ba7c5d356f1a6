// Package cli holds the interactive subcommands. Each command opens its own
// database handle and closes it when done, mirroring how the server command
// wires the same stack.
package cli

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/sicfor/sicfor/internal/config"
	customerrors "github.com/sicfor/sicfor/internal/errors"
	"github.com/sicfor/sicfor/internal/repository"
	"github.com/sicfor/sicfor/internal/services"
	"github.com/sicfor/sicfor/internal/store"
	"gorm.io/gorm"
)

// openService loads the configuration, connects to the database and builds the
// service over the certificate store. The returned cleanup function closes the
// underlying SQL connection.
func openService() (*services.CertificateService, *config.Config, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", customerrors.ErrDatabaseConnection, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get underlying SQL database: %w", err)
	}
	cleanup := func() { sqlDB.Close() }

	slotRepo := repository.NewSlotRepository(db)
	verificationRepo := repository.NewVerificationRepository(db)
	certStore := store.NewCertificateStore(slotRepo, cfg.Storage.SlotKey)
	certService := services.NewCertificateService(certStore, verificationRepo)

	return certService, cfg, cleanup, nil
}
