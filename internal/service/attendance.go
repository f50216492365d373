package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"saha-erp/internal/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// EditWindow is how long after its last update an attendance row may still
// be changed.
const EditWindow = 24 * time.Hour

const dateLayout = "2006-01-02"

type AttendanceService struct {
	db  *gorm.DB
	log zerolog.Logger
	now func() time.Time
}

// AttendanceEntry is one student's mark in a batch roll call.
type AttendanceEntry struct {
	StudentID uint   `json:"studentId"`
	Status    string `json:"status"`
}

// MarkResult counts what happened to each entry of a Mark call.
type MarkResult struct {
	Marked         int `json:"marked"`
	SkippedUnknown int `json:"skippedUnknown"`
	SkippedLocked  int `json:"skippedLocked"`
}

// Mark records attendance for the batch on date. Entries for unknown students
// are skipped, as are rows whose last update is older than EditWindow.
func (s *AttendanceService) Mark(ctx context.Context, batchID uint, date string, entries []AttendanceEntry) (*MarkResult, error) {
	date = strings.TrimSpace(date)
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, invalid("date", "must be YYYY-MM-DD")
	}
	for i := range entries {
		status := strings.ToLower(strings.TrimSpace(entries[i].Status))
		if status != models.AttendancePresent && status != models.AttendanceAbsent {
			return nil, invalid("status", "must be present or absent")
		}
		entries[i].Status = status
	}

	res := &MarkResult{}
	now := s.now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var batch models.Batch
		if err := tx.Select("id").First(&batch, batchID).Error; err != nil {
			return lookupErr(err, "batch", batchID)
		}
		for _, e := range entries {
			var n int64
			if err := tx.Model(&models.Student{}).Where("id = ?", e.StudentID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				res.SkippedUnknown++
				continue
			}

			var row models.Attendance
			err := tx.Where("student_id = ? AND batch_id = ? AND date = ?", e.StudentID, batchID, date).First(&row).Error
			switch {
			case err == nil:
				if now.Sub(row.LastUpdated) > EditWindow {
					res.SkippedLocked++
					continue
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				row = models.Attendance{}
			default:
				return err
			}

			row.StudentID = e.StudentID
			row.BatchID = batchID
			row.Date = date
			row.Status = e.Status
			row.LastUpdated = now
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
			res.Marked++
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("mark attendance for batch %d on %s: %w", batchID, date, err)
	}
	s.log.Debug().
		Uint("batch_id", batchID).
		Str("date", date).
		Int("marked", res.Marked).
		Int("skipped_unknown", res.SkippedUnknown).
		Int("skipped_locked", res.SkippedLocked).
		Msg("attendance marked")
	return res, nil
}

// Get returns the batch's attendance on date. A missing batch yields an empty
// list.
func (s *AttendanceService) Get(ctx context.Context, batchID uint, date string) ([]models.Attendance, error) {
	list := []models.Attendance{}
	if err := s.db.WithContext(ctx).
		Where("batch_id = ? AND date = ?", batchID, strings.TrimSpace(date)).
		Order("student_id ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return list, nil
}

// ForStudent returns the student's attendance history, latest date first.
func (s *AttendanceService) ForStudent(ctx context.Context, studentID uint) ([]models.Attendance, error) {
	list := []models.Attendance{}
	if err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("date DESC, batch_id ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list attendance of student %d: %w", studentID, err)
	}
	return list, nil
}
