package router

import (
	"net/http"
	"time"

	"saha-erp/internal/config"
	"saha-erp/internal/handler"
	"saha-erp/internal/middleware"
	"saha-erp/internal/render"
	"saha-erp/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SetupRouter configures the gin engine and the JSON API.
func SetupRouter(cfg *config.Config, svc *service.Services, log zerolog.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))
	r.MaxMultipartMemory = int64(cfg.Uploads.MaxSizeMB) << 20

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	lh := render.Letterhead{
		Institute: cfg.App.InstituteName,
		Address:   cfg.App.InstituteAddress,
		Phone:     cfg.App.InstitutePhone,
	}

	// ====== API ======
	api := r.Group("/api")

	// no sign-in required
	authHandler := handler.NewAuthHandler(svc.Users, cfg.JWT, log)
	api.POST("/auth/login", authHandler.Login)

	certHandler := handler.NewCertificateHandler(svc.Certificates, lh, cfg.Security.VerifySecret, cfg.App.PublicURL, log)
	api.GET("/public/certificates/verify", certHandler.Verify)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret, cfg.JWT.Issuer, svc.Users),
		middleware.AuditMiddleware(svc.Users, log),
	)

	users := handler.NewUserHandler(svc.Users, log)
	protected.GET("/me", handler.GetMe)
	protected.PUT("/me", users.UpdateProfile)
	protected.PUT("/me/password", users.ChangePassword)

	students := handler.NewStudentHandler(svc.Students, svc.Payments, log)
	exports := handler.NewExportHandler(svc.Students, svc.Payments, log)
	protected.GET("/students", students.List)
	protected.POST("/students", students.Create)
	protected.GET("/students/search", students.Search)
	protected.GET("/students/export", exports.ExportStudents)
	protected.GET("/students/:id", students.Get)
	protected.PUT("/students/:id", students.Update)
	protected.DELETE("/students/:id", students.Delete)
	protected.POST("/students/:id/payment", students.ApplyPayment)
	protected.GET("/students/:id/ledger", students.Ledger)
	protected.GET("/students/:id/ledger/export", exports.ExportLedger)
	protected.POST("/students/:id/document", students.UploadDocument)
	protected.GET("/students/:id/document", students.DownloadDocument)

	enquiries := handler.NewEnquiryHandler(svc.Enquiries, log)
	protected.GET("/enquiries", enquiries.List)
	protected.POST("/enquiries", enquiries.Create)
	protected.GET("/enquiries/:id", enquiries.Get)
	protected.PUT("/enquiries/:id", enquiries.Update)
	protected.DELETE("/enquiries/:id", enquiries.Delete)
	protected.POST("/enquiries/:id/convert", enquiries.Convert)
	protected.POST("/enquiries/:id/reverse", enquiries.Reverse)
	protected.POST("/enquiries/:id/feedback", enquiries.AddFeedback)
	protected.GET("/enquiries/:id/feedback", enquiries.Feedback)

	payments := handler.NewPaymentHandler(svc.Payments, lh, log)
	protected.GET("/payments", payments.List)
	protected.POST("/payments", payments.Create)
	protected.GET("/payments/receipt-lookup", payments.LookupReceipt)
	protected.GET("/payments/student/:id", students.Ledger)
	protected.GET("/payments/:id", payments.Get)
	protected.PUT("/payments/:id", payments.Update)
	protected.DELETE("/payments/:id", payments.Delete)
	protected.GET("/payments/:id/receipt.pdf", payments.ReceiptPDF)

	batches := handler.NewBatchHandler(svc.Batches, log)
	protected.GET("/batches", batches.List)
	protected.POST("/batches", batches.Create)
	protected.GET("/batches/:id", batches.Get)
	protected.PUT("/batches/:id", batches.Update)
	protected.DELETE("/batches/:id", batches.Delete)
	protected.POST("/batches/:id/students", batches.AssignStudents)
	protected.GET("/batches/:id/students", batches.Students)

	attendance := handler.NewAttendanceHandler(svc.Attendance, log)
	protected.POST("/attendance/mark", attendance.Mark)
	protected.GET("/attendance", attendance.Get)
	protected.GET("/attendance/student/:studentId", attendance.ForStudent)

	teachers := handler.NewTeacherHandler(svc.Teachers, log)
	protected.GET("/teachers", teachers.List)
	protected.POST("/teachers", teachers.Create)
	protected.GET("/teachers/status/:status", teachers.ByStatus)
	protected.GET("/teachers/:id", teachers.Get)
	protected.PUT("/teachers/:id", teachers.Update)
	protected.DELETE("/teachers/:id", teachers.Delete)

	protected.GET("/certificates", certHandler.List)
	protected.POST("/certificates", certHandler.Create)
	protected.GET("/certificates/student/:studentId", certHandler.ForStudent)
	protected.GET("/certificates/registration/:number", certHandler.ByRegistration)
	protected.GET("/certificates/:id", certHandler.Get)
	protected.PUT("/certificates/:id", certHandler.Update)
	protected.DELETE("/certificates/:id", certHandler.Delete)
	protected.GET("/certificates/:id/pdf", certHandler.PDF)

	reports := handler.NewReportHandler(svc.Reports, log)
	rep := protected.Group("/reports")
	rep.GET("/monthly-student-admissions", reports.MonthlyAdmissions)
	rep.GET("/monthly-payments", reports.MonthlyPayments)
	rep.GET("/pending-fees", reports.PendingFees)
	rep.GET("/pending-fees-by-month", reports.PendingFees)
	rep.GET("/monthly-enquiries", reports.MonthlyEnquiries)
	rep.GET("/students-by-month", reports.StudentsByMonth)
	rep.GET("/receipt-lookup", payments.LookupReceipt)

	dash := protected.Group("/dashboard")
	dash.GET("/kpis", reports.KPIs)
	dash.GET("/enrollment-trend", reports.EnrollmentTrend)
	dash.GET("/revenue-overview", reports.RevenueOverview)
	dash.GET("/recent-activity", reports.RecentActivity)
	dash.GET("/course-distribution", reports.CourseDistribution)
	dash.GET("/payment-methods", reports.PaymentMethods)

	// admin only
	admin := protected.Group("")
	admin.Use(middleware.RequireRole(service.RoleAdmin))

	admin.POST("/users", users.Create)

	logHandler := handler.NewLogHandler(svc.Users, cfg.App.PageSize, log)
	admin.GET("/audit-logs", logHandler.ListLogs)

	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
