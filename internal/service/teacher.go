package service

import (
	"context"
	"fmt"
	"strings"

	"saha-erp/internal/models"

	"gorm.io/gorm"
)

type TeacherService struct {
	db *gorm.DB
}

type teacherRequired struct {
	Name   string `validate:"required" label:"name"`
	Status string `validate:"oneof=ACTIVE INACTIVE" label:"status"`
}

func normalizeTeacher(t *models.Teacher) error {
	trimAll(&t.Name, &t.Email, &t.Phone, &t.Subject, &t.Status)
	t.Status = strings.ToUpper(t.Status)
	if t.Status == "" {
		t.Status = models.TeacherActive
	}
	return requireFields(teacherRequired{Name: t.Name, Status: t.Status})
}

func (s *TeacherService) List(ctx context.Context) ([]models.Teacher, error) {
	var list []models.Teacher
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return list, nil
}

func (s *TeacherService) Get(ctx context.Context, id uint) (*models.Teacher, error) {
	var t models.Teacher
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, lookupErr(err, "teacher", id)
	}
	return &t, nil
}

func (s *TeacherService) Create(ctx context.Context, t *models.Teacher) (*models.Teacher, error) {
	if err := normalizeTeacher(t); err != nil {
		return nil, err
	}
	t.ID = 0
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, fmt.Errorf("create teacher: %w", err)
	}
	return t, nil
}

func (s *TeacherService) Update(ctx context.Context, id uint, details *models.Teacher) (*models.Teacher, error) {
	if err := normalizeTeacher(details); err != nil {
		return nil, err
	}
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Name = details.Name
	t.Email = details.Email
	t.Phone = details.Phone
	t.Subject = details.Subject
	t.Status = details.Status
	if err := s.db.WithContext(ctx).Save(t).Error; err != nil {
		return nil, fmt.Errorf("update teacher %d: %w", id, err)
	}
	return t, nil
}

func (s *TeacherService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Teacher{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete teacher %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("teacher", id)
	}
	return nil
}

// ByStatus lists teachers with the given status, matched case-insensitively.
func (s *TeacherService) ByStatus(ctx context.Context, status string) ([]models.Teacher, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status != models.TeacherActive && status != models.TeacherInactive {
		return nil, invalid("status", "must be one of ACTIVE INACTIVE")
	}
	list := []models.Teacher{}
	if err := s.db.WithContext(ctx).Where("status = ?", status).Order("id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list %s teachers: %w", status, err)
	}
	return list, nil
}
