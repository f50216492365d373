package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"saha-erp/internal/models"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Default timetable: one-hour batches from 07:00 until 21:00.
const (
	defaultFirstHour = 7
	defaultLastHour  = 21
)

type BatchService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func (s *BatchService) List(ctx context.Context) ([]models.Batch, error) {
	var list []models.Batch
	if err := s.db.WithContext(ctx).Order("start_time ASC, id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return list, nil
}

func (s *BatchService) Get(ctx context.Context, id uint) (*models.Batch, error) {
	var b models.Batch
	if err := s.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, lookupErr(err, "batch", id)
	}
	return &b, nil
}

func checkBatch(b *models.Batch) error {
	trimAll(&b.Name)
	if b.Name == "" {
		return invalid("name", "is required")
	}
	if b.EndTime <= b.StartTime {
		return invalid("endTime", "must be after start time")
	}
	return nil
}

func (s *BatchService) Create(ctx context.Context, b *models.Batch) (*models.Batch, error) {
	if err := checkBatch(b); err != nil {
		return nil, err
	}
	b.ID = 0
	if err := s.db.WithContext(ctx).Omit("Students").Create(b).Error; err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}
	return b, nil
}

func (s *BatchService) Update(ctx context.Context, id uint, details *models.Batch) (*models.Batch, error) {
	if err := checkBatch(details); err != nil {
		return nil, err
	}
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Name = details.Name
	b.StartTime = details.StartTime
	b.EndTime = details.EndTime
	if err := s.db.WithContext(ctx).Omit("Students").Save(b).Error; err != nil {
		return nil, fmt.Errorf("update batch %d: %w", id, err)
	}
	return b, nil
}

// Delete removes the batch with its memberships and attendance rows.
func (s *BatchService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Batch
		if err := tx.First(&b, id).Error; err != nil {
			return lookupErr(err, "batch", id)
		}
		if err := tx.Model(&b).Association("Students").Clear(); err != nil {
			return err
		}
		if err := tx.Where("batch_id = ?", id).Delete(&models.Attendance{}).Error; err != nil {
			return err
		}
		return tx.Delete(&b).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete batch %d: %w", id, err)
	}
	return nil
}

// AssignStudents replaces the batch's members with the given students.
// Unknown ids are ignored.
func (s *BatchService) AssignStudents(ctx context.Context, batchID uint, studentIDs []uint) ([]models.Student, error) {
	students := []models.Student{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Batch
		if err := tx.First(&b, batchID).Error; err != nil {
			return lookupErr(err, "batch", batchID)
		}
		if len(studentIDs) > 0 {
			if err := tx.Where("id IN ?", studentIDs).Order("id ASC").Find(&students).Error; err != nil {
				return err
			}
		}
		if len(students) == 0 {
			return tx.Model(&b).Association("Students").Clear()
		}
		return tx.Model(&b).Association("Students").Replace(students)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("assign students to batch %d: %w", batchID, err)
	}
	s.log.Info().Uint("batch_id", batchID).Int("students", len(students)).Msg("batch members replaced")
	return students, nil
}

// Students lists the batch members.
func (s *BatchService) Students(ctx context.Context, batchID uint) ([]models.Student, error) {
	b, err := s.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}
	students := []models.Student{}
	if err := s.db.WithContext(ctx).Model(b).Order("students.id ASC").Association("Students").Find(&students); err != nil {
		return nil, fmt.Errorf("list students of batch %d: %w", batchID, err)
	}
	return students, nil
}

// EnsureDefaultBatches creates the hourly timetable when no batch exists yet
// and reports how many batches it created.
func (s *BatchService) EnsureDefaultBatches(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Batch{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count batches: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	batches := DefaultBatches()
	if err := s.db.WithContext(ctx).Omit("Students").Create(&batches).Error; err != nil {
		return 0, fmt.Errorf("seed default batches: %w", err)
	}
	s.log.Info().Int("batches", len(batches)).Msg("default batches created")
	return len(batches), nil
}

// DefaultBatches returns the hourly timetable, e.g. "07:00-08:00 Batch".
func DefaultBatches() []models.Batch {
	batches := make([]models.Batch, 0, defaultLastHour-defaultFirstHour)
	for h := defaultFirstHour; h < defaultLastHour; h++ {
		batches = append(batches, models.Batch{
			Name:      fmt.Sprintf("%02d:00-%02d:00 Batch", h, h+1),
			StartTime: datatypes.NewTime(h, 0, 0, 0),
			EndTime:   datatypes.NewTime(h+1, 0, 0, 0),
		})
	}
	return batches
}

// ParseClock parses "HH:MM" or "HH:MM:SS" into a time of day.
func ParseClock(v string) (datatypes.Time, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0), nil
		}
	}
	return 0, invalid("time", "must be HH:MM")
}
