package service

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"saha-erp/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestCreateOrUpdateComputesRemaining(t *testing.T) {
	f := newFixture(t)

	st, err := f.svc.Students.CreateOrUpdate(f.ctx, &models.Student{
		Name:           "John Doe",
		TotalCourseFee: dec(1000),
		PaidAmount:     dec(300),
	})
	require.NoError(t, err)
	require.NotNil(t, st.RemainingAmount)
	assert.Equal(t, "700.00", st.RemainingAmount.StringFixed(2))

	got, err := f.svc.Students.Get(f.ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, "700.00", got.RemainingAmount.StringFixed(2))
	assert.Equal(t, "2024-01-15", got.AdmissionDate.Format("2006-01-02"))
}

func TestCreateOrUpdateDefaultsPaidToZero(t *testing.T) {
	f := newFixture(t)

	st, err := f.svc.Students.CreateOrUpdate(f.ctx, &models.Student{Name: "No Fee"})
	require.NoError(t, err)
	require.NotNil(t, st.PaidAmount)
	assert.True(t, st.PaidAmount.IsZero())
	assert.Nil(t, st.RemainingAmount, "remaining stays unset without a total fee")

	st, err = f.svc.Students.CreateOrUpdate(f.ctx, &models.Student{Name: "Full Fee", TotalCourseFee: dec(1200)})
	require.NoError(t, err)
	assert.Equal(t, "1200.00", st.RemainingAmount.StringFixed(2))
}

func TestCreateOrUpdateRequiresName(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Students.CreateOrUpdate(f.ctx, &models.Student{Name: "   "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Name", verr.Field)
}

func TestApplyPayment(t *testing.T) {
	f := newFixture(t)
	st := f.student(t, "John Doe", "9000000001", dec(1000))

	st, err := f.svc.Students.ApplyPayment(f.ctx, st.ID, decimal.NewFromInt(250))
	require.NoError(t, err)
	st, err = f.svc.Students.ApplyPayment(f.ctx, st.ID, decimal.RequireFromString("49.50"))
	require.NoError(t, err)

	assert.Equal(t, "299.50", st.PaidAmount.StringFixed(2))
	assert.Equal(t, "700.50", st.RemainingAmount.StringFixed(2))

	_, err = f.svc.Students.ApplyPayment(f.ctx, 999, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateKeepsEnquiryLink(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t, "Jane", "9000000002")
	_, err := f.svc.Enquiries.Convert(f.ctx, e.ID)
	require.NoError(t, err)

	var st models.Student
	require.NoError(t, f.db.Where("enquiry_id = ?", e.ID).First(&st).Error)

	updated, err := f.svc.Students.Update(f.ctx, st.ID, &models.Student{
		Name:           "Jane Roe",
		PhoneNumber:    "9000000002",
		TotalCourseFee: dec(5000),
		PaidAmount:     dec(1000),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", updated.Name)
	require.NotNil(t, updated.EnquiryID)
	assert.Equal(t, e.ID, *updated.EnquiryID)
	assert.Equal(t, "4000.00", updated.RemainingAmount.StringFixed(2))

	_, err = f.svc.Students.Update(f.ctx, 999, &models.Student{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCascades(t *testing.T) {
	f := newFixture(t)
	st := f.student(t, "John Doe", "9000000001", dec(1000))
	other := f.student(t, "Alice", "9000000099", dec(500))

	for i := 0; i < 2; i++ {
		_, err := f.svc.Payments.Create(f.ctx, &models.Payment{StudentID: st.ID, Amount: decimal.NewFromInt(100)})
		require.NoError(t, err)
	}
	_, err := f.svc.Payments.Create(f.ctx, &models.Payment{StudentID: other.ID, Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)

	_, err = f.svc.Certificates.Create(f.ctx, &models.Certificate{StudentID: &st.ID, Type: "Completion"})
	require.NoError(t, err)

	e := f.enquiry(t, "John Doe", "9000000001")
	_, err = f.svc.Enquiries.AddFeedback(f.ctx, e.ID, &models.FeedbackEntry{Feedback: "called back"})
	require.NoError(t, err)
	keep := f.enquiry(t, "Alice", "9000000099")

	b, err := f.svc.Batches.Create(f.ctx, &models.Batch{Name: "Morning", StartTime: datatypes.NewTime(7, 0, 0, 0), EndTime: datatypes.NewTime(8, 0, 0, 0)})
	require.NoError(t, err)
	_, err = f.svc.Batches.AssignStudents(f.ctx, b.ID, []uint{st.ID, other.ID})
	require.NoError(t, err)
	_, err = f.svc.Attendance.Mark(f.ctx, b.ID, "2024-01-15", []AttendanceEntry{{StudentID: st.ID, Status: "present"}})
	require.NoError(t, err)

	require.NoError(t, f.svc.Students.Delete(f.ctx, st.ID))

	_, err = f.svc.Students.Get(f.ctx, st.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, count(t, f.db, &models.Payment{}, "student_id = ?", st.ID))
	assert.Zero(t, count(t, f.db, &models.Certificate{}, "student_id = ?", st.ID))
	assert.Zero(t, count(t, f.db, &models.Enquiry{}, "id = ?", e.ID))
	assert.Zero(t, count(t, f.db, &models.FeedbackEntry{}, "enquiry_id = ?", e.ID))
	assert.Zero(t, count(t, f.db, &models.Attendance{}, "student_id = ?", st.ID))

	// unrelated rows survive
	assert.EqualValues(t, 1, count(t, f.db, &models.Payment{}, "student_id = ?", other.ID))
	assert.EqualValues(t, 1, count(t, f.db, &models.Enquiry{}, "id = ?", keep.ID))
	members, err := f.svc.Batches.Students(f.ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, other.ID, members[0].ID)
}

func TestDeleteMissingStudent(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Students.Delete(f.ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	f.student(t, "John Doe", "9000000001", nil)
	f.student(t, "Johnny", "9000000002", nil)
	f.student(t, "Alice", "8000000003", nil)

	list, err := f.svc.Students.Search(f.ctx, StudentFilter{Name: "john"})
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, st := range list {
		names = append(names, st.Name)
	}
	assert.ElementsMatch(t, []string{"John Doe", "Johnny"}, names)

	list, err = f.svc.Students.Search(f.ctx, StudentFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 3)

	list, err = f.svc.Students.Search(f.ctx, StudentFilter{Phone: "800"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Alice", list[0].Name)
}

func TestDocumentAttachAndReplace(t *testing.T) {
	f := newFixture(t)
	st := f.student(t, "John Doe", "9000000001", nil)

	_, err := f.svc.Students.DocumentFile(f.ctx, st.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	st, err = f.svc.Students.AttachDocument(f.ctx, st.ID, strings.NewReader("first"), "id.PDF")
	require.NoError(t, err)
	first := st.DocumentPath
	assert.True(t, strings.HasSuffix(first, ".pdf"))

	st, err = f.svc.Students.AttachDocument(f.ctx, st.ID, bytes.NewReader(pngOf(t, 20, 10)), "id.png")
	require.NoError(t, err)
	assert.NotEqual(t, first, st.DocumentPath)
	assert.NoFileExists(t, filepath.Join(f.uploads, first))

	doc, err := f.svc.Students.DocumentFile(f.ctx, st.ID)
	require.NoError(t, err)
	defer doc.Body.Close()
	assert.Equal(t, "image/png", doc.ContentType)
	assert.FileExists(t, filepath.Join(f.uploads, st.DocumentPath))

	_, err = f.svc.Students.AttachDocument(f.ctx, 999, strings.NewReader("x"), "a.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}
