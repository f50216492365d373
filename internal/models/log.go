package models

import "time"

// AuditLog records one mutating API call made by a signed-in user.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    *uint     `gorm:"index"`
	Method    string    `gorm:"size:16"`
	Path      string    `gorm:"size:255;index"`
	Status    int       `gorm:"index"`
	IP        string    `gorm:"size:64"`
	UserAgent string    `gorm:"size:255"`
	CreatedAt time.Time `gorm:"index"`
}
