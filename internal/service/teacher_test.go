package service

import (
	"testing"

	"saha-erp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeacherCRUD(t *testing.T) {
	f := newFixture(t)

	tch, err := f.svc.Teachers.Create(f.ctx, &models.Teacher{Name: "Mr. Das", Subject: "Maths"})
	require.NoError(t, err)
	assert.Equal(t, models.TeacherActive, tch.Status)

	tch, err = f.svc.Teachers.Update(f.ctx, tch.ID, &models.Teacher{Name: "Mr. Das", Subject: "Maths", Status: "inactive"})
	require.NoError(t, err)
	assert.Equal(t, models.TeacherInactive, tch.Status)

	_, err = f.svc.Teachers.Create(f.ctx, &models.Teacher{Name: "Ms. Roy"})
	require.NoError(t, err)

	active, err := f.svc.Teachers.ByStatus(f.ctx, "Active")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Ms. Roy", active[0].Name)

	require.NoError(t, f.svc.Teachers.Delete(f.ctx, tch.ID))
	assert.ErrorIs(t, f.svc.Teachers.Delete(f.ctx, tch.ID), ErrNotFound)
}

func TestTeacherValidation(t *testing.T) {
	f := newFixture(t)
	var verr *ValidationError

	_, err := f.svc.Teachers.Create(f.ctx, &models.Teacher{Name: ""})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	_, err = f.svc.Teachers.Create(f.ctx, &models.Teacher{Name: "X", Status: "retired"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)

	_, err = f.svc.Teachers.ByStatus(f.ctx, "retired")
	assert.ErrorAs(t, err, &verr)
}
