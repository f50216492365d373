package service

import (
	"time"

	"saha-erp/internal/storage"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Services bundles every business service over one database handle.
type Services struct {
	Students     *StudentService
	Enquiries    *EnquiryService
	Payments     *PaymentService
	Attendance   *AttendanceService
	Batches      *BatchService
	Teachers     *TeacherService
	Certificates *CertificateService
	Reports      *ReportService
	Users        *UserService
}

type Options struct {
	// Blobs holds student documents; nil means local files under UploadsDir.
	Blobs       storage.Blobs
	UploadsDir  string
	MaxUploadMB int
	MaxImagePx  int
	BcryptCost  int
	Now         func() time.Time
}

func New(db *gorm.DB, log zerolog.Logger, opts Options) *Services {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	blobs := opts.Blobs
	if blobs == nil {
		blobs = storage.NewLocal(opts.UploadsDir)
	}
	docs := NewDocumentStore(blobs, opts.MaxUploadMB, opts.MaxImagePx)
	return &Services{
		Students:     &StudentService{db: db, log: log.With().Str("service", "students").Logger(), now: now, docs: docs},
		Enquiries:    &EnquiryService{db: db, log: log.With().Str("service", "enquiries").Logger(), now: now},
		Payments:     &PaymentService{db: db, log: log.With().Str("service", "payments").Logger(), now: now},
		Attendance:   &AttendanceService{db: db, log: log.With().Str("service", "attendance").Logger(), now: now},
		Batches:      &BatchService{db: db, log: log.With().Str("service", "batches").Logger()},
		Teachers:     &TeacherService{db: db},
		Certificates: &CertificateService{db: db, now: now},
		Reports:      &ReportService{db: db, now: now},
		Users:        &UserService{db: db, now: now, cost: opts.BcryptCost},
	}
}

// today returns midnight of t's calendar day in t's location.
func today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
