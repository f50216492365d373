package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"saha-erp/internal/models"

	"gorm.io/gorm"
)

// CertificateStatusActive is assigned when a certificate is created without
// a status.
const CertificateStatusActive = "Active"

type CertificateService struct {
	db  *gorm.DB
	now func() time.Time
}

func (s *CertificateService) List(ctx context.Context) ([]models.Certificate, error) {
	var list []models.Certificate
	if err := s.db.WithContext(ctx).Order("issue_date DESC, id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	return list, nil
}

func (s *CertificateService) Get(ctx context.Context, id uint) (*models.Certificate, error) {
	var c models.Certificate
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, lookupErr(err, "certificate", id)
	}
	return &c, nil
}

func (s *CertificateService) check(ctx context.Context, c *models.Certificate) error {
	trimAll(&c.Type, &c.Status, &c.RegistrationNumber, &c.RollNumber, &c.ExamRollNumber)
	if c.Type == "" {
		return invalid("type", "is required")
	}
	if c.IssueDay != nil && (*c.IssueDay < 1 || *c.IssueDay > 31) {
		return invalid("issueDay", "must be between 1 and 31")
	}
	if c.ValidUntil != nil && !c.IssueDate.IsZero() && c.ValidUntil.Before(c.IssueDate) {
		return invalid("validUntil", "must not be before issue date")
	}
	if c.StudentID != nil {
		var st models.Student
		if err := s.db.WithContext(ctx).Select("id").First(&st, *c.StudentID).Error; err != nil {
			return lookupErr(err, "student", *c.StudentID)
		}
	}
	return nil
}

func (s *CertificateService) Create(ctx context.Context, c *models.Certificate) (*models.Certificate, error) {
	if err := s.check(ctx, c); err != nil {
		return nil, err
	}
	c.ID = 0
	if c.Status == "" {
		c.Status = CertificateStatusActive
	}
	if c.IssueDate.IsZero() {
		c.IssueDate = today(s.now())
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}
	return c, nil
}

// Update overwrites every printable field of the certificate. The student
// link is kept.
func (s *CertificateService) Update(ctx context.Context, id uint, details *models.Certificate) (*models.Certificate, error) {
	details.StudentID = nil
	if err := s.check(ctx, details); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Type = details.Type
	if !details.IssueDate.IsZero() {
		c.IssueDate = details.IssueDate
	}
	c.ValidUntil = details.ValidUntil
	c.Remarks = details.Remarks
	if details.Status != "" {
		c.Status = details.Status
	}
	c.RegistrationNumber = details.RegistrationNumber
	c.RollNumber = details.RollNumber
	c.ExamRollNumber = details.ExamRollNumber
	c.CourseDuration = details.CourseDuration
	c.Performance = details.Performance
	c.Grade = details.Grade
	c.IssueSession = details.IssueSession
	c.IssueDay = details.IssueDay
	c.IssueMonth = details.IssueMonth
	c.IssueYear = details.IssueYear
	c.FathersName = details.FathersName
	c.MothersName = details.MothersName
	c.DateOfBirth = details.DateOfBirth
	if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, fmt.Errorf("update certificate %d: %w", id, err)
	}
	return c, nil
}

func (s *CertificateService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Certificate{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete certificate %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("certificate", id)
	}
	return nil
}

// ForStudent lists the student's certificates; a missing student yields an
// empty list.
func (s *CertificateService) ForStudent(ctx context.Context, studentID uint) ([]models.Certificate, error) {
	list := []models.Certificate{}
	if err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("issue_date DESC, id DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list certificates of student %d: %w", studentID, err)
	}
	return list, nil
}

func (s *CertificateService) ByRegistrationNumber(ctx context.Context, number string) ([]models.Certificate, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, invalid("registrationNumber", "is required")
	}
	list := []models.Certificate{}
	if err := s.db.WithContext(ctx).
		Where("registration_number = ?", number).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list certificates by registration number: %w", err)
	}
	return list, nil
}

// Holder returns the student a certificate belongs to, or nil when it is not
// linked or the student is gone.
func (s *CertificateService) Holder(ctx context.Context, c *models.Certificate) (*models.Student, error) {
	if c.StudentID == nil {
		return nil, nil
	}
	var st models.Student
	err := s.db.WithContext(ctx).First(&st, *c.StudentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load holder of certificate %d: %w", c.ID, err)
	}
	return &st, nil
}
