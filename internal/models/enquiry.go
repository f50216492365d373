package models

import "time"

// Enquiry is a pre-admission record. ConvertedToStudent flips when a student
// is created from it and back when the conversion is reversed.
type Enquiry struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Name               string    `gorm:"size:128;not null" json:"name"`
	FatherName         string    `gorm:"size:128" json:"fatherName"`
	DateOfEnquiry      time.Time `gorm:"index;not null" json:"dateOfEnquiry"`
	PhoneNumber        string    `gorm:"size:32;index;not null" json:"phoneNumber"`
	Course             string    `gorm:"size:128;not null" json:"course"`
	CourseDuration     string    `gorm:"size:64;not null" json:"courseDuration"`
	Remarks            string    `gorm:"type:text" json:"remarks"`
	ConvertedToStudent bool      `gorm:"not null;default:false" json:"convertedToStudent"`
	TakenBy            string    `gorm:"size:64" json:"takenBy"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// FeedbackEntry is one follow-up call note on an enquiry.
type FeedbackEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EnquiryID uint      `gorm:"index;not null" json:"enquiryId"`
	Date      string    `gorm:"size:10" json:"date"` // YYYY-MM-DD
	Time      string    `gorm:"size:5" json:"time"`  // HH:MM
	Feedback  string    `gorm:"type:text;not null" json:"feedback"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}
