package service

import (
	"testing"
	"time"

	"saha-erp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCertificateLifecycle(t *testing.T) {
	f := newFixture(t)
	st := f.student(t, "John Doe", "9000000001", nil)
	day := 15

	c, err := f.svc.Certificates.Create(f.ctx, &models.Certificate{
		StudentID:          &st.ID,
		Type:               "Course Completion",
		RegistrationNumber: " REG-001 ",
		Grade:              "A",
		IssueDay:           &day,
	})
	require.NoError(t, err)
	assert.Equal(t, CertificateStatusActive, c.Status)
	assert.Equal(t, "REG-001", c.RegistrationNumber)
	assert.Equal(t, "2024-01-15", c.IssueDate.Format("2006-01-02"))

	other := f.student(t, "Alice", "9000000002", nil)
	updated, err := f.svc.Certificates.Update(f.ctx, c.ID, &models.Certificate{
		StudentID:          &other.ID,
		Type:               "Course Completion",
		RegistrationNumber: "REG-001",
		Grade:              "A+",
	})
	require.NoError(t, err)
	assert.Equal(t, "A+", updated.Grade)
	require.NotNil(t, updated.StudentID)
	assert.Equal(t, st.ID, *updated.StudentID, "update keeps the student link")

	list, err := f.svc.Certificates.ForStudent(f.ctx, st.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	byReg, err := f.svc.Certificates.ByRegistrationNumber(f.ctx, "REG-001")
	require.NoError(t, err)
	assert.Len(t, byReg, 1)

	holder, err := f.svc.Certificates.Holder(f.ctx, updated)
	require.NoError(t, err)
	require.NotNil(t, holder)
	assert.Equal(t, "John Doe", holder.Name)

	require.NoError(t, f.svc.Certificates.Delete(f.ctx, c.ID))
	assert.ErrorIs(t, f.svc.Certificates.Delete(f.ctx, c.ID), ErrNotFound)
}

func TestCertificateValidation(t *testing.T) {
	f := newFixture(t)
	var verr *ValidationError

	_, err := f.svc.Certificates.Create(f.ctx, &models.Certificate{})
	assert.ErrorAs(t, err, &verr)

	day := 32
	_, err = f.svc.Certificates.Create(f.ctx, &models.Certificate{Type: "X", IssueDay: &day})
	assert.ErrorAs(t, err, &verr)

	issued := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	before := issued.AddDate(0, 0, -1)
	_, err = f.svc.Certificates.Create(f.ctx, &models.Certificate{Type: "X", IssueDate: issued, ValidUntil: &before})
	assert.ErrorAs(t, err, &verr)

	missing := uint(404)
	_, err = f.svc.Certificates.Create(f.ctx, &models.Certificate{Type: "X", StudentID: &missing})
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := f.svc.Certificates.ForStudent(f.ctx, 404)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestHolderOfUnlinkedCertificate(t *testing.T) {
	f := newFixture(t)
	c, err := f.svc.Certificates.Create(f.ctx, &models.Certificate{Type: "Typing"})
	require.NoError(t, err)

	holder, err := f.svc.Certificates.Holder(f.ctx, c)
	require.NoError(t, err)
	assert.Nil(t, holder)
}
