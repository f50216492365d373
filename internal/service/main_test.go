package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"saha-erp/internal/config"
	"saha-erp/internal/database"
	"saha-erp/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testClock is a settable clock for services under test.
type testClock struct{ t time.Time }

func (c *testClock) now() time.Time           { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	db      *gorm.DB
	svc     *Services
	clock   *testClock
	ctx     context.Context
	uploads string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	db, err := database.Init(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(dir, "test.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	clock := &testClock{t: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
	uploads := filepath.Join(dir, "uploads")
	svc := New(db, zerolog.Nop(), Options{
		UploadsDir:  uploads,
		MaxUploadMB: 1,
		MaxImagePx:  64,
		BcryptCost:  4,
		Now:         clock.now,
	})
	return &fixture{db: db, svc: svc, clock: clock, ctx: context.Background(), uploads: uploads}
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func (f *fixture) student(t *testing.T, name, phone string, total *decimal.Decimal) *models.Student {
	t.Helper()
	st, err := f.svc.Students.CreateOrUpdate(f.ctx, &models.Student{
		Name:           name,
		PhoneNumber:    phone,
		Courses:        "Python",
		TotalCourseFee: total,
	})
	require.NoError(t, err)
	return st
}

func (f *fixture) enquiry(t *testing.T, name, phone string) *models.Enquiry {
	t.Helper()
	e, err := f.svc.Enquiries.Create(f.ctx, &models.Enquiry{
		Name:           name,
		PhoneNumber:    phone,
		Course:         "Python",
		CourseDuration: "3 months",
	})
	require.NoError(t, err)
	return e
}

func count(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
