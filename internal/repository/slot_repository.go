package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Slot is one row of the key-value table backing the certificate store.
// The whole record list lives as a single JSON document under one versioned
// key, so format changes can be introduced under a new key without touching
// old data.
type Slot struct {
	Key   string `gorm:"primaryKey;size:128"`
	Value string
}

// ErrSlotNotFound is returned by Read when the slot key has never been
// written (or was cleared).
var ErrSlotNotFound = errors.New("storage slot not found")

// SlotRepository est une interface qui définit les méthodes d'accès aux données
type SlotRepository interface {
	Read(key string) (string, error)
	Write(key, value string) error
	Delete(key string) error
}

// GormSlotRepository est l'implémentation de l'interface SlotRepository utilisant GORM.
type GormSlotRepository struct {
	db *gorm.DB
}

// NewSlotRepository crée et retourne une nouvelle instance de GormSlotRepository.
func NewSlotRepository(db *gorm.DB) *GormSlotRepository {
	return &GormSlotRepository{db: db}
}

// Read retourne la valeur stockée sous la clé donnée, ou ErrSlotNotFound.
func (r *GormSlotRepository) Read(key string) (string, error) {
	var slot Slot
	if err := r.db.Where("key = ?", key).First(&slot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrSlotNotFound
		}
		return "", fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return slot.Value, nil
}

// Write remplace entièrement la valeur stockée sous la clé donnée.
// Upsert: la clé est créée au premier écrit, écrasée ensuite.
func (r *GormSlotRepository) Write(key, value string) error {
	slot := Slot{Key: key, Value: value}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&slot).Error
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}

// Delete supprime la clé et sa valeur. Idempotent si la clé n'existe pas.
func (r *GormSlotRepository) Delete(key string) error {
	if err := r.db.Where("key = ?", key).Delete(&Slot{}).Error; err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", key, err)
	}
	return nil
}
