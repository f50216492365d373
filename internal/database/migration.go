package database

import (
	"fmt"

	"saha-erp/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.AuditLog{},
		&models.Student{},
		&models.Enquiry{},
		&models.FeedbackEntry{},
		&models.Payment{},
		&models.ReceiptSequence{},
		&models.Batch{},
		&models.Attendance{},
		&models.Certificate{},
		&models.Teacher{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
