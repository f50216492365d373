package service

import (
	"testing"

	"saha-erp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestEnsureDefaultBatches(t *testing.T) {
	f := newFixture(t)

	n, err := f.svc.Batches.EnsureDefaultBatches(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 14, n)

	n, err = f.svc.Batches.EnsureDefaultBatches(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "seeding only runs on an empty table")

	list, err := f.svc.Batches.List(f.ctx)
	require.NoError(t, err)
	require.Len(t, list, 14)
	assert.Equal(t, "07:00-08:00 Batch", list[0].Name)
	assert.Equal(t, "20:00-21:00 Batch", list[13].Name)
}

func TestBatchValidation(t *testing.T) {
	f := newFixture(t)
	var verr *ValidationError

	_, err := f.svc.Batches.Create(f.ctx, &models.Batch{Name: " ", StartTime: datatypes.NewTime(7, 0, 0, 0), EndTime: datatypes.NewTime(8, 0, 0, 0)})
	assert.ErrorAs(t, err, &verr)

	_, err = f.svc.Batches.Create(f.ctx, &models.Batch{Name: "Late", StartTime: datatypes.NewTime(9, 0, 0, 0), EndTime: datatypes.NewTime(8, 0, 0, 0)})
	assert.ErrorAs(t, err, &verr)
}

func TestAssignStudentsReplacesMembers(t *testing.T) {
	f := newFixture(t)
	b := newBatch(t, f, "Morning", 7)
	a := f.student(t, "A", "1", nil)
	c := f.student(t, "C", "3", nil)

	got, err := f.svc.Batches.AssignStudents(f.ctx, b.ID, []uint{a.ID, 999})
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = f.svc.Batches.AssignStudents(f.ctx, b.ID, []uint{c.ID})
	require.NoError(t, err)
	members, err := f.svc.Batches.Students(f.ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, c.ID, members[0].ID)

	_, err = f.svc.Batches.AssignStudents(f.ctx, b.ID, nil)
	require.NoError(t, err)
	members, err = f.svc.Batches.Students(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, members)

	_, err = f.svc.Batches.AssignStudents(f.ctx, 999, []uint{a.ID})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteBatchRemovesAttendance(t *testing.T) {
	f := newFixture(t)
	b := newBatch(t, f, "Morning", 7)
	st := f.student(t, "A", "1", nil)
	_, err := f.svc.Batches.AssignStudents(f.ctx, b.ID, []uint{st.ID})
	require.NoError(t, err)
	_, err = f.svc.Attendance.Mark(f.ctx, b.ID, "2024-01-15", []AttendanceEntry{{StudentID: st.ID, Status: "present"}})
	require.NoError(t, err)

	require.NoError(t, f.svc.Batches.Delete(f.ctx, b.ID))
	assert.Zero(t, count(t, f.db, &models.Attendance{}, ""))
	_, err = f.svc.Students.Get(f.ctx, st.ID)
	assert.NoError(t, err)
	assert.ErrorIs(t, f.svc.Batches.Delete(f.ctx, b.ID), ErrNotFound)
}

func TestParseClock(t *testing.T) {
	got, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, datatypes.NewTime(9, 30, 0, 0), got)

	got, err = ParseClock("18:05:10")
	require.NoError(t, err)
	assert.Equal(t, datatypes.NewTime(18, 5, 10, 0), got)

	_, err = ParseClock("9.30am")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
