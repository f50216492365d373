package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"saha-erp/internal/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// EnquiryService handles enquiries, their follow-up feedback and the
// conversion of an enquiry into a student.
type EnquiryService struct {
	db  *gorm.DB
	log zerolog.Logger
	now func() time.Time
}

type enquiryRequired struct {
	Name           string `validate:"required" label:"Name"`
	PhoneNumber    string `validate:"required" label:"Phone number"`
	Course         string `validate:"required" label:"Course"`
	CourseDuration string `validate:"required" label:"Course duration"`
}

func (s *EnquiryService) check(e *models.Enquiry) error {
	trimAll(&e.Name, &e.PhoneNumber, &e.Course, &e.CourseDuration)
	return requireFields(enquiryRequired{
		Name:           e.Name,
		PhoneNumber:    e.PhoneNumber,
		Course:         e.Course,
		CourseDuration: e.CourseDuration,
	})
}

func (s *EnquiryService) List(ctx context.Context) ([]models.Enquiry, error) {
	var list []models.Enquiry
	if err := s.db.WithContext(ctx).Order("date_of_enquiry DESC, id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list enquiries: %w", err)
	}
	return list, nil
}

func (s *EnquiryService) Get(ctx context.Context, id uint) (*models.Enquiry, error) {
	var e models.Enquiry
	if err := s.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, lookupErr(err, "enquiry", id)
	}
	return &e, nil
}

func (s *EnquiryService) Create(ctx context.Context, e *models.Enquiry) (*models.Enquiry, error) {
	if err := s.check(e); err != nil {
		return nil, err
	}
	e.ID = 0
	e.ConvertedToStudent = false
	if e.DateOfEnquiry.IsZero() {
		e.DateOfEnquiry = today(s.now())
	}
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, fmt.Errorf("create enquiry: %w", err)
	}
	return e, nil
}

// Update overwrites the editable fields. The conversion flag only changes
// through Convert and Reverse.
func (s *EnquiryService) Update(ctx context.Context, id uint, details *models.Enquiry) (*models.Enquiry, error) {
	if err := s.check(details); err != nil {
		return nil, err
	}
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Name = details.Name
	e.FatherName = details.FatherName
	e.PhoneNumber = details.PhoneNumber
	e.Course = details.Course
	e.CourseDuration = details.CourseDuration
	e.Remarks = details.Remarks
	e.TakenBy = details.TakenBy
	if !details.DateOfEnquiry.IsZero() {
		e.DateOfEnquiry = details.DateOfEnquiry
	}
	if err := s.db.WithContext(ctx).Save(e).Error; err != nil {
		return nil, fmt.Errorf("update enquiry %d: %w", id, err)
	}
	return e, nil
}

// Convert marks the enquiry converted and creates a student linked to it.
// It returns the enquiry, not the new student.
func (s *EnquiryService) Convert(ctx context.Context, id uint) (*models.Enquiry, error) {
	var e models.Enquiry
	var st models.Student
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&e, id).Error; err != nil {
			return lookupErr(err, "enquiry", id)
		}
		if e.ConvertedToStudent {
			return fmt.Errorf("enquiry %d is already converted to student: %w", id, ErrIllegalState)
		}
		e.ConvertedToStudent = true
		if err := tx.Save(&e).Error; err != nil {
			return err
		}

		enquiryID := e.ID
		st = models.Student{
			Name:           e.Name,
			PhoneNumber:    e.PhoneNumber,
			Courses:        e.Course,
			CourseDuration: e.CourseDuration,
			EnquiryID:      &enquiryID,
		}
		return tx.Create(&st).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrIllegalState) {
			return nil, err
		}
		return nil, fmt.Errorf("convert enquiry %d: %w", id, err)
	}
	s.log.Info().Uint("enquiry_id", id).Uint("student_id", st.ID).Msg("enquiry converted")
	return &e, nil
}

// Reverse undoes a conversion by deleting the student created from the
// enquiry. Students carrying the enquiry link are preferred; without one the
// most recently created student with the same phone number is removed. A
// student that already has payments or certificates is never removed here.
func (s *EnquiryService) Reverse(ctx context.Context, id uint) (*models.Enquiry, error) {
	var e models.Enquiry
	var removed uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&e, id).Error; err != nil {
			return lookupErr(err, "enquiry", id)
		}
		if !e.ConvertedToStudent {
			return fmt.Errorf("enquiry %d is not converted to student: %w", id, ErrIllegalState)
		}

		var linked []models.Student
		if err := tx.Where("enquiry_id = ?", e.ID).Order("id DESC").Limit(1).Find(&linked).Error; err != nil {
			return err
		}
		if len(linked) == 0 {
			if err := tx.Where("phone_number = ?", e.PhoneNumber).Order("id DESC").Limit(1).Find(&linked).Error; err != nil {
				return err
			}
		}
		if len(linked) > 0 {
			st := linked[0]
			if err := checkNoLedger(tx, st.ID); err != nil {
				return err
			}
			if err := removeStudentRows(tx, st.ID); err != nil {
				return err
			}
			if err := tx.Delete(&st).Error; err != nil {
				return err
			}
			removed = st.ID
		}

		e.ConvertedToStudent = false
		return tx.Save(&e).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrIllegalState) {
			return nil, err
		}
		return nil, fmt.Errorf("reverse enquiry %d: %w", id, err)
	}
	s.log.Info().Uint("enquiry_id", id).Uint("removed_student_id", removed).Msg("enquiry conversion reversed")
	return &e, nil
}

// checkNoLedger refuses to drop a student whose payments or certificates
// would be left pointing at nothing.
func checkNoLedger(tx *gorm.DB, studentID uint) error {
	var payments, certs int64
	if err := tx.Model(&models.Payment{}).Where("student_id = ?", studentID).Count(&payments).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Certificate{}).Where("student_id = ?", studentID).Count(&certs).Error; err != nil {
		return err
	}
	if payments > 0 || certs > 0 {
		return fmt.Errorf("student %d has %d payments and %d certificates, delete the student instead: %w",
			studentID, payments, certs, ErrIllegalState)
	}
	return nil
}

// removeStudentRows clears rows that reference a student by foreign key and
// would block deleting it.
func removeStudentRows(tx *gorm.DB, studentID uint) error {
	if err := tx.Where("student_id = ?", studentID).Delete(&models.Attendance{}).Error; err != nil {
		return err
	}
	return tx.Model(&models.Student{ID: studentID}).Association("Batches").Clear()
}

// Delete removes the enquiry and its feedback. Students created from it are
// left in place.
func (s *EnquiryService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e models.Enquiry
		if err := tx.First(&e, id).Error; err != nil {
			return lookupErr(err, "enquiry", id)
		}
		if err := tx.Where("enquiry_id = ?", id).Delete(&models.FeedbackEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&e).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete enquiry %d: %w", id, err)
	}
	return nil
}

// AddFeedback appends a follow-up note to the enquiry.
func (s *EnquiryService) AddFeedback(ctx context.Context, enquiryID uint, fb *models.FeedbackEntry) (*models.FeedbackEntry, error) {
	trimAll(&fb.Feedback, &fb.Date, &fb.Time)
	if fb.Feedback == "" {
		return nil, invalid("Feedback", "is required")
	}
	if _, err := s.Get(ctx, enquiryID); err != nil {
		return nil, err
	}
	now := s.now()
	fb.ID = 0
	fb.EnquiryID = enquiryID
	if fb.Date == "" {
		fb.Date = now.Format("2006-01-02")
	}
	if fb.Time == "" {
		fb.Time = now.Format("15:04")
	}
	fb.CreatedAt = now
	if err := s.db.WithContext(ctx).Create(fb).Error; err != nil {
		return nil, fmt.Errorf("add feedback: %w", err)
	}
	return fb, nil
}

// Feedback lists the enquiry's feedback, newest first.
func (s *EnquiryService) Feedback(ctx context.Context, enquiryID uint) ([]models.FeedbackEntry, error) {
	if _, err := s.Get(ctx, enquiryID); err != nil {
		return nil, err
	}
	var list []models.FeedbackEntry
	if err := s.db.WithContext(ctx).
		Where("enquiry_id = ?", enquiryID).
		Order("created_at DESC, id DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return list, nil
}
