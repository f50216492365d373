package models

import "time"

// Certificate holds the printable fields of an issued (hard copy) certificate.
type Certificate struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	StudentID          *uint      `gorm:"index" json:"studentId"`
	Type               string     `gorm:"size:64;not null" json:"type"`
	IssueDate          time.Time  `gorm:"not null" json:"issueDate"`
	ValidUntil         *time.Time `json:"validUntil"`
	Remarks            string     `gorm:"type:text" json:"remarks"`
	Status             string     `gorm:"size:32;not null" json:"status"`
	RegistrationNumber string     `gorm:"size:64;index" json:"registrationNumber"`
	RollNumber         string     `gorm:"size:64" json:"rollNumber"`
	ExamRollNumber     string     `gorm:"size:64" json:"examRollNumber"`
	CourseDuration     string     `gorm:"size:64" json:"courseDuration"`
	Performance        string     `gorm:"size:64" json:"performance"`
	Grade              string     `gorm:"size:16" json:"grade"`
	IssueSession       string     `gorm:"size:32" json:"issueSession"`
	IssueDay           *int       `json:"issueDay"`
	IssueMonth         string     `gorm:"size:16" json:"issueMonth"`
	IssueYear          *int       `json:"issueYear"`
	FathersName        string     `gorm:"size:128" json:"fathersName"`
	MothersName        string     `gorm:"size:128" json:"mothersName"`
	DateOfBirth        string     `gorm:"size:16" json:"dateOfBirth"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}
