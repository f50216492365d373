package service

import (
	"testing"
	"time"

	"saha-erp/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnquiryCreateValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name  string
		in    models.Enquiry
		field string
	}{
		{"missing name", models.Enquiry{PhoneNumber: "1", Course: "C", CourseDuration: "1m"}, "Name"},
		{"missing phone", models.Enquiry{Name: "A", Course: "C", CourseDuration: "1m"}, "Phone number"},
		{"blank course", models.Enquiry{Name: "A", PhoneNumber: "1", Course: "  ", CourseDuration: "1m"}, "Course"},
		{"missing duration", models.Enquiry{Name: "A", PhoneNumber: "1", Course: "C"}, "Course duration"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := tc.in
			_, err := f.svc.Enquiries.Create(f.ctx, &in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestEnquiryCreateDefaults(t *testing.T) {
	f := newFixture(t)

	e, err := f.svc.Enquiries.Create(f.ctx, &models.Enquiry{
		Name:               "Ravi",
		PhoneNumber:        "9000000010",
		Course:             "Tally",
		CourseDuration:     "2 months",
		ConvertedToStudent: true,
	})
	require.NoError(t, err)
	assert.False(t, e.ConvertedToStudent)
	assert.Equal(t, "2024-01-15", e.DateOfEnquiry.Format("2006-01-02"))
}

func TestConvertCreatesLinkedStudent(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t, "Ravi", "9000000010")

	got, err := f.svc.Enquiries.Convert(f.ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, got.ConvertedToStudent)
	assert.Equal(t, e.ID, got.ID)

	var students []models.Student
	require.NoError(t, f.db.Find(&students).Error)
	require.Len(t, students, 1)
	st := students[0]
	assert.Equal(t, "Ravi", st.Name)
	assert.Equal(t, "9000000010", st.PhoneNumber)
	assert.Equal(t, "Python", st.Courses)
	assert.Equal(t, "3 months", st.CourseDuration)
	require.NotNil(t, st.EnquiryID)
	assert.Equal(t, e.ID, *st.EnquiryID)
	assert.Nil(t, st.TotalCourseFee)
	assert.Nil(t, st.PaidAmount)
	assert.Nil(t, st.RemainingAmount)
	assert.True(t, st.AdmissionDate.IsZero())

	stored, err := f.svc.Enquiries.Get(f.ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, stored.ConvertedToStudent)
}

func TestConvertTwiceIsIllegal(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t, "Ravi", "9000000010")

	_, err := f.svc.Enquiries.Convert(f.ctx, e.ID)
	require.NoError(t, err)
	_, err = f.svc.Enquiries.Convert(f.ctx, e.ID)
	assert.ErrorIs(t, err, ErrIllegalState)
	assert.EqualValues(t, 1, count(t, f.db, &models.Student{}, ""))

	_, err = f.svc.Enquiries.Convert(f.ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReverseRemovesConvertedStudent(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t, "Ravi", "9000000010")
	// an older student sharing the phone number must survive
	older := f.student(t, "Ravi Senior", "9000000010", nil)

	_, err := f.svc.Enquiries.Convert(f.ctx, e.ID)
	require.NoError(t, err)

	got, err := f.svc.Enquiries.Reverse(f.ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, got.ConvertedToStudent)

	assert.Zero(t, count(t, f.db, &models.Student{}, "enquiry_id = ?", e.ID))
	_, err = f.svc.Students.Get(f.ctx, older.ID)
	assert.NoError(t, err)

	_, err = f.svc.Enquiries.Reverse(f.ctx, e.ID)
	assert.ErrorIs(t, err, ErrIllegalState)
}

func TestReverseFallsBackToPhone(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t, "Ravi", "9000000010")
	require.NoError(t, f.db.Model(e).Update("converted_to_student", true).Error)
	first := f.student(t, "Ravi A", "9000000010", nil)
	second := f.student(t, "Ravi B", "9000000010", nil)

	_, err := f.svc.Enquiries.Reverse(f.ctx, e.ID)
	require.NoError(t, err)

	_, err = f.svc.Students.Get(f.ctx, second.ID)
	assert.ErrorIs(t, err, ErrNotFound, "most recent student is removed")
	_, err = f.svc.Students.Get(f.ctx, first.ID)
	assert.NoError(t, err)
}

func TestReversePrefersLinkedStudent(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t, "Ravi", "9000000010")
	_, err := f.svc.Enquiries.Convert(f.ctx, e.ID)
	require.NoError(t, err)
	// a newer student without the link shares the phone number
	newer := f.student(t, "Ravi Walk-in", "9000000010", nil)

	_, err = f.svc.Enquiries.Reverse(f.ctx, e.ID)
	require.NoError(t, err)

	assert.Zero(t, count(t, f.db, &models.Student{}, "enquiry_id = ?", e.ID))
	kept, err := f.svc.Students.Get(f.ctx, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ravi Walk-in", kept.Name)
}

func TestReverseRefusesStudentWithLedger(t *testing.T) {
	for _, tc := range []struct {
		name string
		add  func(t *testing.T, f *fixture, studentID uint)
	}{
		{"payment", func(t *testing.T, f *fixture, studentID uint) {
			_, err := f.svc.Payments.Create(f.ctx, &models.Payment{StudentID: studentID, Amount: decimal.NewFromInt(500)})
			require.NoError(t, err)
		}},
		{"certificate", func(t *testing.T, f *fixture, studentID uint) {
			_, err := f.svc.Certificates.Create(f.ctx, &models.Certificate{StudentID: &studentID, Type: "Course Completion"})
			require.NoError(t, err)
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			e := f.enquiry(t, "Ravi", "9000000010")
			_, err := f.svc.Enquiries.Convert(f.ctx, e.ID)
			require.NoError(t, err)
			var st models.Student
			require.NoError(t, f.db.Where("enquiry_id = ?", e.ID).First(&st).Error)
			tc.add(t, f, st.ID)

			_, err = f.svc.Enquiries.Reverse(f.ctx, e.ID)
			assert.ErrorIs(t, err, ErrIllegalState)

			_, err = f.svc.Students.Get(f.ctx, st.ID)
			assert.NoError(t, err)
			stored, err := f.svc.Enquiries.Get(f.ctx, e.ID)
			require.NoError(t, err)
			assert.True(t, stored.ConvertedToStudent)

			// deleting the student is the way out
			require.NoError(t, f.svc.Students.Delete(f.ctx, st.ID))
			assert.Zero(t, count(t, f.db, &models.Payment{}, "student_id = ?", st.ID))
			assert.Zero(t, count(t, f.db, &models.Certificate{}, "student_id = ?", st.ID))
		})
	}
}

func TestConvertReverseConvertAgain(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t, "Ravi", "9000000010")

	_, err := f.svc.Enquiries.Convert(f.ctx, e.ID)
	require.NoError(t, err)
	_, err = f.svc.Enquiries.Reverse(f.ctx, e.ID)
	require.NoError(t, err)
	_, err = f.svc.Enquiries.Convert(f.ctx, e.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count(t, f.db, &models.Student{}, "enquiry_id = ?", e.ID))
}

func TestEnquiryDeleteKeepsStudent(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t, "Ravi", "9000000010")
	_, err := f.svc.Enquiries.Convert(f.ctx, e.ID)
	require.NoError(t, err)
	_, err = f.svc.Enquiries.AddFeedback(f.ctx, e.ID, &models.FeedbackEntry{Feedback: "joined"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Enquiries.Delete(f.ctx, e.ID))
	assert.Zero(t, count(t, f.db, &models.FeedbackEntry{}, ""))
	assert.EqualValues(t, 1, count(t, f.db, &models.Student{}, ""))

	assert.ErrorIs(t, f.svc.Enquiries.Delete(f.ctx, e.ID), ErrNotFound)
}

func TestEnquiryUpdateKeepsFlag(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t, "Ravi", "9000000010")
	_, err := f.svc.Enquiries.Convert(f.ctx, e.ID)
	require.NoError(t, err)

	got, err := f.svc.Enquiries.Update(f.ctx, e.ID, &models.Enquiry{
		Name:           "Ravi Kumar",
		PhoneNumber:    "9000000010",
		Course:         "Tally",
		CourseDuration: "6 months",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", got.Name)
	assert.True(t, got.ConvertedToStudent)
}

func TestFeedbackNewestFirst(t *testing.T) {
	f := newFixture(t)
	e := f.enquiry(t, "Ravi", "9000000010")

	_, err := f.svc.Enquiries.AddFeedback(f.ctx, e.ID, &models.FeedbackEntry{Feedback: "first call"})
	require.NoError(t, err)
	f.clock.advance(2 * time.Hour)
	fb, err := f.svc.Enquiries.AddFeedback(f.ctx, e.ID, &models.FeedbackEntry{Feedback: "second call"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", fb.Date)
	assert.Equal(t, "12:00", fb.Time)

	list, err := f.svc.Enquiries.Feedback(f.ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second call", list[0].Feedback)

	_, err = f.svc.Enquiries.AddFeedback(f.ctx, e.ID, &models.FeedbackEntry{Feedback: " "})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = f.svc.Enquiries.Feedback(f.ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
