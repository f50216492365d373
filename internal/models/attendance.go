package models

import "time"

const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
)

// Attendance is unique per (student, batch, date).
type Attendance struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StudentID   uint      `gorm:"uniqueIndex:idx_attendance_student_batch_date;not null" json:"studentId"`
	BatchID     uint      `gorm:"uniqueIndex:idx_attendance_student_batch_date;index;not null" json:"batchId"`
	Date        string    `gorm:"uniqueIndex:idx_attendance_student_batch_date;size:10;not null" json:"date"` // YYYY-MM-DD
	Status      string    `gorm:"size:16;not null" json:"status"`
	LastUpdated time.Time `json:"lastUpdated"`
}
