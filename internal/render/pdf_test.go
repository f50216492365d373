package render

import (
	"bytes"
	"testing"
	"time"

	"saha-erp/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHead = Letterhead{Institute: "Saha Institute", Address: "Main Road", Phone: "0000"}

func TestReceipt(t *testing.T) {
	total := decimal.NewFromInt(5000)
	paid := decimal.NewFromInt(1500)
	remaining := decimal.NewFromInt(3500)
	st := &models.Student{ID: 1, Name: "John Doe", Courses: "DCA", TotalCourseFee: &total, PaidAmount: &paid, RemainingAmount: &remaining}
	p := models.Payment{
		ID:            1,
		StudentID:     1,
		Amount:        decimal.RequireFromString("1500.00"),
		PaymentMethod: "Cash",
		PaymentDate:   time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		Status:        models.PaymentStatusPaid,
		ReceiptNumber: "REC-20240115-0001",
	}

	var buf bytes.Buffer
	require.NoError(t, Receipt(&buf, testHead, p, st))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	buf.Reset()
	require.NoError(t, Receipt(&buf, testHead, p, nil), "receipt without student")
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestCertificate(t *testing.T) {
	day, year := 15, 2024
	data := CertificateData{
		Certificate: models.Certificate{
			Type:               "Course Completion",
			RegistrationNumber: "REG-001",
			Grade:              "A",
			IssueDay:           &day,
			IssueMonth:         "January",
			IssueYear:          &year,
		},
		Holder:     &models.Student{Name: "Jane Doe", Courses: "Tally"},
		VerifyCode: "ABCDEFGHIJKLMNOP",
		VerifyURL:  "https://example.org/verify?code=ABCDEFGHIJKLMNOP",
	}

	var buf bytes.Buffer
	require.NoError(t, Certificate(&buf, testHead, data))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestIssuedOn(t *testing.T) {
	day, year := 3, 2023
	assert.Equal(t, "3 March 2023", issuedOn(models.Certificate{IssueDay: &day, IssueMonth: "March", IssueYear: &year}))
	assert.Equal(t, "-", issuedOn(models.Certificate{}))
	assert.Equal(t, "05 Feb 2024", issuedOn(models.Certificate{IssueDate: time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)}))
}
