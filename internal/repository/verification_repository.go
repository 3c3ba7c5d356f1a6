package repository

import (
	"fmt"

	"github.com/sicfor/sicfor/internal/models"
	"gorm.io/gorm"
)

// VerificationRepository est une interface qui définit les méthodes d'accès aux données
type VerificationRepository interface {
	CreateVerification(verification *models.Verification) error
	CountByCertificateID(certificateID string) (int, error)
}

// GormVerificationRepository est l'implémentation de l'interface VerificationRepository utilisant GORM.
type GormVerificationRepository struct {
	db *gorm.DB
}

// NewVerificationRepository crée et retourne une nouvelle instance de GormVerificationRepository.
func NewVerificationRepository(db *gorm.DB) *GormVerificationRepository {
	return &GormVerificationRepository{db: db}
}

// CreateVerification insère un nouvel enregistrement de vérification dans la base de données.
func (r *GormVerificationRepository) CreateVerification(verification *models.Verification) error {
	if err := r.db.Create(verification).Error; err != nil {
		return fmt.Errorf("failed to create verification: %w", err)
	}
	return nil
}

// CountByCertificateID compte le nombre total de vérifications pour un certificat donné.
func (r *GormVerificationRepository) CountByCertificateID(certificateID string) (int, error) {
	var count int64
	if err := r.db.Model(&models.Verification{}).Where("certificate_id = ?", certificateID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count verifications for certificate %s: %w", certificateID, err)
	}
	return int(count), nil
}
