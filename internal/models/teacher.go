package models

import "time"

const (
	TeacherActive   = "ACTIVE"
	TeacherInactive = "INACTIVE"
)

type Teacher struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Email     string    `gorm:"size:128" json:"email"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Subject   string    `gorm:"size:128" json:"subject"`
	Status    string    `gorm:"size:16;index;not null" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
