package models

import (
	"time"

	"gorm.io/datatypes"
)

// Batch is a scheduled class time slot.
type Batch struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:64;not null" json:"name"`
	StartTime datatypes.Time `json:"startTime"`
	EndTime   datatypes.Time `json:"endTime"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`

	Students []Student `gorm:"many2many:batch_students" json:"-"`
}
