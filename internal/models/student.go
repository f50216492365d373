package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Student is an admitted learner and the owner of the fee ledger.
// RemainingAmount is TotalCourseFee - PaidAmount whenever the fee is known.
type Student struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	Name            string           `gorm:"size:128;not null;index" json:"name"`
	FatherName      string           `gorm:"size:128" json:"fatherName"`
	MotherName      string           `gorm:"size:128" json:"motherName"`
	Dob             string           `gorm:"size:10" json:"dob"` // YYYY-MM-DD
	Email           string           `gorm:"size:128;index" json:"email"`
	PhoneNumber     string           `gorm:"size:32;index" json:"phoneNumber"`
	Address         string           `gorm:"size:255" json:"address"`
	Courses         string           `gorm:"size:255" json:"courses"`
	CourseDuration  string           `gorm:"size:64" json:"courseDuration"`
	TotalCourseFee  *decimal.Decimal `gorm:"type:decimal(12,2)" json:"totalCourseFee"`
	PaidAmount      *decimal.Decimal `gorm:"type:decimal(12,2)" json:"paidAmount"`
	RemainingAmount *decimal.Decimal `gorm:"type:decimal(12,2)" json:"remainingAmount"`
	AdmissionDate   time.Time        `gorm:"index" json:"admissionDate"`
	EnquiryID       *uint            `gorm:"index" json:"enquiryId"`
	DocumentPath    string           `gorm:"size:255" json:"documentPath"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`

	Batches []Batch `gorm:"many2many:batch_students" json:"-"`
}
