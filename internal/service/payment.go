package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"saha-erp/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const receiptSequenceName = "receipt"

// PaymentService issues payments and allocates their receipt numbers.
type PaymentService struct {
	db  *gorm.DB
	log zerolog.Logger
	now func() time.Time
}

// PaymentPatch carries the fields of a payment update; nil fields are kept.
type PaymentPatch struct {
	Amount        *decimal.Decimal
	PaymentMethod *string
	TransactionID *string
	Status        *string
	Description   *string
	ReceiptNumber *string
}

// Receipt is a payment together with the student it was issued to.
type Receipt struct {
	Payment models.Payment  `json:"payment"`
	Student *models.Student `json:"student"`
}

func formatReceipt(day time.Time, seq int64) string {
	return fmt.Sprintf("REC-%s-%04d", day.Format("20060102"), seq)
}

// nextSequence increments the named counter and returns its new value. The
// row is seeded from the number of existing payments on first use.
func nextSequence(tx *gorm.DB, name string) (int64, error) {
	for attempt := 0; attempt < 2; attempt++ {
		res := tx.Model(&models.ReceiptSequence{}).
			Where("name = ?", name).
			Updates(map[string]any{"value": gorm.Expr("value + 1"), "updated_at": time.Now()})
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 1 {
			var seq models.ReceiptSequence
			if err := tx.Where("name = ?", name).First(&seq).Error; err != nil {
				return 0, err
			}
			return seq.Value, nil
		}

		var existing int64
		if err := tx.Model(&models.Payment{}).Count(&existing).Error; err != nil {
			return 0, err
		}
		seed := models.ReceiptSequence{Name: name, Value: existing}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return 0, err
		}
	}
	return 0, errors.New("receipt sequence unavailable")
}

func receiptTaken(tx *gorm.DB, number string, exceptID uint) (bool, error) {
	var n int64
	q := tx.Model(&models.Payment{}).Where("LOWER(receipt_number) = ?", strings.ToLower(number))
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create records a payment for an existing student. A non-blank receipt
// number is kept as a manual receipt; otherwise the next number of the day is
// generated.
func (s *PaymentService) Create(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	trimAll(&p.ReceiptNumber, &p.PaymentMethod, &p.TransactionID, &p.Description)
	if !p.Amount.IsPositive() {
		return nil, invalid("amount", "must be greater than zero")
	}
	now := s.now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var st models.Student
		if err := tx.Select("id").First(&st, p.StudentID).Error; err != nil {
			return lookupErr(err, "student", p.StudentID)
		}

		if p.ReceiptNumber != "" {
			taken, err := receiptTaken(tx, p.ReceiptNumber, 0)
			if err != nil {
				return err
			}
			if taken {
				return invalid("receiptNumber", "already exists")
			}
			p.IsManualReceipt = true
		} else {
			for {
				seq, err := nextSequence(tx, receiptSequenceName)
				if err != nil {
					return fmt.Errorf("next receipt number: %w", err)
				}
				number := formatReceipt(now, seq)
				// a manual receipt may already hold the generated number
				taken, err := receiptTaken(tx, number, 0)
				if err != nil {
					return err
				}
				if !taken {
					p.ReceiptNumber = number
					break
				}
			}
			p.IsManualReceipt = false
		}

		p.ID = 0
		p.PaymentDate = now
		p.Status = models.PaymentStatusPaid
		return tx.Create(p).Error
	})
	if err != nil {
		var verr *ValidationError
		if errors.Is(err, ErrNotFound) || errors.As(err, &verr) {
			return nil, err
		}
		return nil, fmt.Errorf("create payment: %w", err)
	}
	s.log.Info().
		Uint("payment_id", p.ID).
		Uint("student_id", p.StudentID).
		Str("receipt", p.ReceiptNumber).
		Str("amount", p.Amount.StringFixed(2)).
		Msg("payment recorded")
	return p, nil
}

func validPaymentStatus(status string) bool {
	switch status {
	case models.PaymentStatusPaid, models.PaymentStatusPending, models.PaymentStatusFailed:
		return true
	}
	return false
}

// Update applies the non-nil fields of patch. Supplying a receipt number marks
// the receipt as manual.
func (s *PaymentService) Update(ctx context.Context, id uint, patch PaymentPatch) (*models.Payment, error) {
	var p models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			return lookupErr(err, "payment", id)
		}
		if patch.Amount != nil {
			if !patch.Amount.IsPositive() {
				return invalid("amount", "must be greater than zero")
			}
			p.Amount = *patch.Amount
		}
		if patch.PaymentMethod != nil {
			p.PaymentMethod = strings.TrimSpace(*patch.PaymentMethod)
		}
		if patch.TransactionID != nil {
			p.TransactionID = strings.TrimSpace(*patch.TransactionID)
		}
		if patch.Status != nil {
			status := strings.ToUpper(strings.TrimSpace(*patch.Status))
			if !validPaymentStatus(status) {
				return invalid("status", "must be one of PAID PENDING FAILED")
			}
			p.Status = status
		}
		if patch.Description != nil {
			p.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.ReceiptNumber != nil {
			number := strings.TrimSpace(*patch.ReceiptNumber)
			if number == "" {
				return invalid("receiptNumber", "must not be blank")
			}
			taken, err := receiptTaken(tx, number, p.ID)
			if err != nil {
				return err
			}
			if taken {
				return invalid("receiptNumber", "already exists")
			}
			p.ReceiptNumber = number
			p.IsManualReceipt = true
		}
		return tx.Save(&p).Error
	})
	if err != nil {
		var verr *ValidationError
		if errors.Is(err, ErrNotFound) || errors.As(err, &verr) {
			return nil, err
		}
		return nil, fmt.Errorf("update payment %d: %w", id, err)
	}
	return &p, nil
}

// Ledger lists the student's payments, latest first.
func (s *PaymentService) Ledger(ctx context.Context, studentID uint) ([]models.Payment, error) {
	var st models.Student
	if err := s.db.WithContext(ctx).Select("id").First(&st, studentID).Error; err != nil {
		return nil, lookupErr(err, "student", studentID)
	}
	var list []models.Payment
	if err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("payment_date DESC, id DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list payments of student %d: %w", studentID, err)
	}
	return list, nil
}

func (s *PaymentService) List(ctx context.Context) ([]models.Payment, error) {
	var list []models.Payment
	if err := s.db.WithContext(ctx).Order("payment_date DESC, id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return list, nil
}

func (s *PaymentService) Get(ctx context.Context, id uint) (*models.Payment, error) {
	var p models.Payment
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, lookupErr(err, "payment", id)
	}
	return &p, nil
}

func (s *PaymentService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Payment{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete payment %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("payment", id)
	}
	return nil
}

// LookupReceipt finds a payment by receipt number, ignoring case. The student
// is nil when it no longer exists.
func (s *PaymentService) LookupReceipt(ctx context.Context, number string) (*Receipt, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, invalid("receiptNumber", "is required")
	}
	var p models.Payment
	err := s.db.WithContext(ctx).
		Where("LOWER(receipt_number) = ?", strings.ToLower(number)).
		First(&p).Error
	if err != nil {
		return nil, lookupErr(err, "receipt", number)
	}
	return s.withStudent(ctx, p)
}

// Receipt loads payment id together with its student.
func (s *PaymentService) Receipt(ctx context.Context, id uint) (*Receipt, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withStudent(ctx, *p)
}

func (s *PaymentService) withStudent(ctx context.Context, p models.Payment) (*Receipt, error) {
	out := &Receipt{Payment: p}
	var st models.Student
	err := s.db.WithContext(ctx).First(&st, p.StudentID).Error
	switch {
	case err == nil:
		out.Student = &st
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("load student of payment %d: %w", p.ID, err)
	}
	return out, nil
}
