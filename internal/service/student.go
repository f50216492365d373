package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"saha-erp/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StudentService owns the fee ledger of a student and the cascade of
// dependent records on delete.
type StudentService struct {
	db   *gorm.DB
	log  zerolog.Logger
	now  func() time.Time
	docs *DocumentStore
}

// StudentFilter holds the optional search criteria; empty fields are ignored.
type StudentFilter struct {
	Name  string
	Email string
	Phone string
}

// applyLedgerDefaults fills paid amount and admission date and recomputes the
// remaining amount when the total fee is known.
func applyLedgerDefaults(st *models.Student, now time.Time) {
	if st.PaidAmount == nil {
		zero := decimal.Zero
		st.PaidAmount = &zero
	}
	if st.AdmissionDate.IsZero() {
		st.AdmissionDate = today(now)
	}
	if st.TotalCourseFee != nil {
		remaining := st.TotalCourseFee.Sub(*st.PaidAmount)
		st.RemainingAmount = &remaining
	}
}

func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	var list []models.Student
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return list, nil
}

func (s *StudentService) Get(ctx context.Context, id uint) (*models.Student, error) {
	var st models.Student
	if err := s.db.WithContext(ctx).First(&st, id).Error; err != nil {
		return nil, lookupErr(err, "student", id)
	}
	return &st, nil
}

// CreateOrUpdate applies the ledger defaults and persists the student.
func (s *StudentService) CreateOrUpdate(ctx context.Context, st *models.Student) (*models.Student, error) {
	trimAll(&st.Name, &st.Email, &st.PhoneNumber)
	if st.Name == "" {
		return nil, invalid("Name", "is required")
	}
	applyLedgerDefaults(st, s.now())
	if err := s.db.WithContext(ctx).Save(st).Error; err != nil {
		return nil, fmt.Errorf("save student: %w", err)
	}
	return st, nil
}

// Update overwrites the profile and fee fields of an existing student.
// The enquiry link and stored document are kept.
func (s *StudentService) Update(ctx context.Context, id uint, details *models.Student) (*models.Student, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	st.Name = details.Name
	st.FatherName = details.FatherName
	st.MotherName = details.MotherName
	st.Dob = details.Dob
	st.Email = details.Email
	st.PhoneNumber = details.PhoneNumber
	st.Address = details.Address
	st.Courses = details.Courses
	st.CourseDuration = details.CourseDuration
	st.TotalCourseFee = details.TotalCourseFee
	st.PaidAmount = details.PaidAmount
	st.RemainingAmount = details.RemainingAmount
	st.AdmissionDate = details.AdmissionDate
	return s.CreateOrUpdate(ctx, st)
}

// ApplyPayment adds amount to the student's paid total.
func (s *StudentService) ApplyPayment(ctx context.Context, id uint, amount decimal.Decimal) (*models.Student, error) {
	var st models.Student
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&st, id).Error; err != nil {
			return lookupErr(err, "student", id)
		}
		paid := decimal.Zero
		if st.PaidAmount != nil {
			paid = *st.PaidAmount
		}
		paid = paid.Add(amount)
		st.PaidAmount = &paid
		if st.TotalCourseFee != nil {
			remaining := st.TotalCourseFee.Sub(paid)
			st.RemainingAmount = &remaining
		}
		return tx.Save(&st).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("apply payment to student %d: %w", id, err)
	}
	return &st, nil
}

// Delete removes the student together with payments, certificates, linked
// enquiries (and their feedback), attendance and batch memberships.
func (s *StudentService) Delete(ctx context.Context, id uint) error {
	var st models.Student
	var enquiryIDs []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&st, id).Error; err != nil {
			return lookupErr(err, "student", id)
		}
		if err := tx.Where("student_id = ?", id).Delete(&models.Payment{}).Error; err != nil {
			return fmt.Errorf("payments: %w", err)
		}
		if err := tx.Where("student_id = ?", id).Delete(&models.Certificate{}).Error; err != nil {
			return fmt.Errorf("certificates: %w", err)
		}

		q := tx.Model(&models.Enquiry{}).Where("phone_number = ?", st.PhoneNumber)
		if st.EnquiryID != nil {
			q = q.Or("id = ?", *st.EnquiryID)
		}
		if err := q.Pluck("id", &enquiryIDs).Error; err != nil {
			return fmt.Errorf("linked enquiries: %w", err)
		}
		if len(enquiryIDs) > 0 {
			if err := tx.Where("enquiry_id IN ?", enquiryIDs).Delete(&models.FeedbackEntry{}).Error; err != nil {
				return fmt.Errorf("feedback: %w", err)
			}
			if err := tx.Where("id IN ?", enquiryIDs).Delete(&models.Enquiry{}).Error; err != nil {
				return fmt.Errorf("enquiries: %w", err)
			}
		}

		if err := tx.Where("student_id = ?", id).Delete(&models.Attendance{}).Error; err != nil {
			return fmt.Errorf("attendance: %w", err)
		}
		if err := tx.Model(&st).Association("Batches").Clear(); err != nil {
			return fmt.Errorf("batch membership: %w", err)
		}
		return tx.Delete(&st).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete student %d and related records: %w", id, err)
	}

	s.removeDocument(ctx, st.DocumentPath)
	s.log.Info().Uint("student_id", id).Uints("enquiry_ids", enquiryIDs).Msg("student deleted")
	return nil
}

// Search matches name and email case-insensitively and phone as a substring.
func (s *StudentService) Search(ctx context.Context, f StudentFilter) ([]models.Student, error) {
	q := s.db.WithContext(ctx).Model(&models.Student{})
	if name := strings.TrimSpace(f.Name); name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if email := strings.TrimSpace(f.Email); email != "" {
		q = q.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(email)+"%")
	}
	if phone := strings.TrimSpace(f.Phone); phone != "" {
		q = q.Where("phone_number LIKE ?", "%"+phone+"%")
	}
	var list []models.Student
	if err := q.Order("id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("search students: %w", err)
	}
	return list, nil
}

// AttachDocument stores an uploaded file and links it to the student,
// replacing any previous document.
func (s *StudentService) AttachDocument(ctx context.Context, id uint, r io.Reader, originalName string) (*models.Student, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	name, err := s.docs.Save(ctx, r, originalName)
	if err != nil {
		return nil, err
	}
	old := st.DocumentPath
	if err := s.db.WithContext(ctx).Model(st).Update("document_path", name).Error; err != nil {
		s.removeDocument(ctx, name)
		return nil, fmt.Errorf("save document path: %w", err)
	}
	if old != name {
		s.removeDocument(ctx, old)
	}
	st.DocumentPath = name
	return st, nil
}

// DocumentFile opens the student's document. The caller closes its Body.
func (s *StudentService) DocumentFile(ctx context.Context, id uint) (*Document, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if st.DocumentPath == "" {
		return nil, notFound("document of student", id)
	}
	return s.docs.Open(ctx, st.DocumentPath)
}

func (s *StudentService) removeDocument(ctx context.Context, name string) {
	if err := s.docs.Remove(ctx, name); err != nil {
		s.log.Warn().Err(err).Str("document", name).Msg("stored document not removed")
	}
}
