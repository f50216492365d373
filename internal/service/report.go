package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"saha-erp/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const monthLayout = "2006-01"

// ReportService computes the read-only aggregates behind the reports and
// dashboard pages.
type ReportService struct {
	db  *gorm.DB
	now func() time.Time
}

type MonthCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

type MonthAmount struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

type PendingFee struct {
	StudentID     uint            `json:"studentId"`
	StudentName   string          `json:"studentName"`
	Course        string          `json:"course"`
	PendingAmount decimal.Decimal `json:"pendingAmount"`
	AdmissionDate time.Time       `json:"admissionDate"`
}

type StudentOfMonth struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	FatherName string `json:"fatherName"`
	Courses    string `json:"courses"`
}

// KPI is one dashboard tile. Trend compares this month with last month.
type KPI struct {
	Count          int64            `json:"count"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	Trend          string           `json:"trend"`
	TrendDirection string           `json:"trendDirection"`
}

type DashboardKPIs struct {
	TotalStudents  KPI `json:"totalStudents"`
	MonthlyRevenue KPI `json:"monthlyRevenue"`
	PendingFees    KPI `json:"pendingFees"`
	NewEnquiries   KPI `json:"newEnquiries"`
}

// Series is a labelled chart data set.
type Series[T any] struct {
	Labels []string `json:"labels"`
	Data   []T      `json:"data"`
}

type Activity struct {
	ID          uint      `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	At          time.Time `json:"at"`
	TimeAgo     string    `json:"time"`
}

// ParseMonth parses a "YYYY-MM" month.
func ParseMonth(v string) (time.Time, error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, invalid("month", "must be YYYY-MM")
	}
	return t, nil
}

func monthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// lastMonths returns the n month keys ending with the current one, oldest first.
func lastMonths(now time.Time, n int) []string {
	start := monthStart(now)
	keys := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		keys = append(keys, start.AddDate(0, -i, 0).Format(monthLayout))
	}
	return keys
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

// trend formats the relative change as "+12.5%"; growth from zero is "+100%".
func trend(current, previous decimal.Decimal) (string, string) {
	dir := "up"
	if current.LessThan(previous) {
		dir = "down"
	}
	if previous.IsZero() {
		if current.IsPositive() {
			return "+100%", dir
		}
		return "0%", dir
	}
	pct := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(1)
	sign := ""
	if !pct.IsNegative() {
		sign = "+"
	}
	return sign + pct.StringFixed(1) + "%", dir
}

func pendingOf(st models.Student) decimal.Decimal {
	if st.RemainingAmount != nil {
		return *st.RemainingAmount
	}
	if st.TotalCourseFee == nil {
		return decimal.Zero
	}
	paid := decimal.Zero
	if st.PaidAmount != nil {
		paid = *st.PaidAmount
	}
	return st.TotalCourseFee.Sub(paid)
}

func (s *ReportService) students(ctx context.Context) ([]models.Student, error) {
	var list []models.Student
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("load students: %w", err)
	}
	return list, nil
}

func (s *ReportService) payments(ctx context.Context) ([]models.Payment, error) {
	var list []models.Payment
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	return list, nil
}

func (s *ReportService) enquiries(ctx context.Context) ([]models.Enquiry, error) {
	var list []models.Enquiry
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("load enquiries: %w", err)
	}
	return list, nil
}

// MonthlyAdmissions counts admissions for each of the last 12 months.
func (s *ReportService) MonthlyAdmissions(ctx context.Context) ([]MonthCount, error) {
	students, err := s.students(ctx)
	if err != nil {
		return nil, err
	}
	counts := map[string]int64{}
	for _, st := range students {
		if !st.AdmissionDate.IsZero() {
			counts[st.AdmissionDate.Format(monthLayout)]++
		}
	}
	out := []MonthCount{}
	for _, m := range lastMonths(s.now(), 12) {
		out = append(out, MonthCount{Month: m, Count: counts[m]})
	}
	return out, nil
}

// MonthlyPayments totals collected amounts for each of the last 12 months.
func (s *ReportService) MonthlyPayments(ctx context.Context) ([]MonthAmount, error) {
	payments, err := s.payments(ctx)
	if err != nil {
		return nil, err
	}
	totals := map[string]decimal.Decimal{}
	for _, p := range payments {
		if p.PaymentDate.IsZero() {
			continue
		}
		key := p.PaymentDate.In(s.now().Location()).Format(monthLayout)
		totals[key] = totals[key].Add(p.Amount)
	}
	out := []MonthAmount{}
	for _, m := range lastMonths(s.now(), 12) {
		out = append(out, MonthAmount{Month: m, Total: totals[m]})
	}
	return out, nil
}

// MonthlyEnquiries counts enquiries for each of the last 12 months.
func (s *ReportService) MonthlyEnquiries(ctx context.Context) ([]MonthCount, error) {
	enquiries, err := s.enquiries(ctx)
	if err != nil {
		return nil, err
	}
	counts := map[string]int64{}
	for _, e := range enquiries {
		if !e.DateOfEnquiry.IsZero() {
			counts[e.DateOfEnquiry.Format(monthLayout)]++
		}
	}
	out := []MonthCount{}
	for _, m := range lastMonths(s.now(), 12) {
		out = append(out, MonthCount{Month: m, Count: counts[m]})
	}
	return out, nil
}

// PendingFees lists students with an outstanding balance. A non-empty month
// ("YYYY-MM") restricts the list to students admitted in that month.
func (s *ReportService) PendingFees(ctx context.Context, month string) ([]PendingFee, error) {
	var filter string
	if strings.TrimSpace(month) != "" {
		m, err := ParseMonth(month)
		if err != nil {
			return nil, err
		}
		filter = m.Format(monthLayout)
	}
	students, err := s.students(ctx)
	if err != nil {
		return nil, err
	}
	out := []PendingFee{}
	for _, st := range students {
		if st.RemainingAmount == nil || !st.RemainingAmount.IsPositive() {
			continue
		}
		if filter != "" && (st.AdmissionDate.IsZero() || st.AdmissionDate.Format(monthLayout) != filter) {
			continue
		}
		out = append(out, PendingFee{
			StudentID:     st.ID,
			StudentName:   st.Name,
			Course:        st.Courses,
			PendingAmount: *st.RemainingAmount,
			AdmissionDate: st.AdmissionDate,
		})
	}
	return out, nil
}

// StudentsByMonth lists students admitted in the given "YYYY-MM" month.
func (s *ReportService) StudentsByMonth(ctx context.Context, month string) ([]StudentOfMonth, error) {
	m, err := ParseMonth(month)
	if err != nil {
		return nil, err
	}
	key := m.Format(monthLayout)
	students, err := s.students(ctx)
	if err != nil {
		return nil, err
	}
	out := []StudentOfMonth{}
	for _, st := range students {
		if st.AdmissionDate.IsZero() || st.AdmissionDate.Format(monthLayout) != key {
			continue
		}
		out = append(out, StudentOfMonth{ID: st.ID, Name: st.Name, FatherName: st.FatherName, Courses: st.Courses})
	}
	return out, nil
}

// Dashboard computes the headline KPIs for the current month.
func (s *ReportService) Dashboard(ctx context.Context) (*DashboardKPIs, error) {
	students, err := s.students(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments(ctx)
	if err != nil {
		return nil, err
	}
	enquiries, err := s.enquiries(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	thisMonth := monthStart(now)
	lastMonth := thisMonth.AddDate(0, -1, 0)
	nextMonth := thisMonth.AddDate(0, 1, 0)

	var admittedNow, admittedBefore int64
	pending := decimal.Zero
	var pendingNow, pendingBefore decimal.Decimal
	for _, st := range students {
		owed := pendingOf(st)
		if owed.IsPositive() {
			pending = pending.Add(owed)
		}
		switch {
		case inRange(st.AdmissionDate, thisMonth, nextMonth):
			admittedNow++
			if owed.IsPositive() {
				pendingNow = pendingNow.Add(owed)
			}
		case inRange(st.AdmissionDate, lastMonth, thisMonth):
			admittedBefore++
			if owed.IsPositive() {
				pendingBefore = pendingBefore.Add(owed)
			}
		}
	}

	var revenueNow, revenueBefore decimal.Decimal
	for _, p := range payments {
		at := p.PaymentDate.In(now.Location())
		switch {
		case inRange(at, thisMonth, nextMonth):
			revenueNow = revenueNow.Add(p.Amount)
		case inRange(at, lastMonth, thisMonth):
			revenueBefore = revenueBefore.Add(p.Amount)
		}
	}

	var enquiriesNow, enquiriesBefore int64
	for _, e := range enquiries {
		switch {
		case inRange(e.DateOfEnquiry, thisMonth, nextMonth):
			enquiriesNow++
		case inRange(e.DateOfEnquiry, lastMonth, thisMonth):
			enquiriesBefore++
		}
	}

	out := &DashboardKPIs{}
	out.TotalStudents.Count = int64(len(students))
	out.TotalStudents.Trend, out.TotalStudents.TrendDirection = trend(decimal.NewFromInt(admittedNow), decimal.NewFromInt(admittedBefore))
	out.MonthlyRevenue.Count = revenueCount(payments, thisMonth, nextMonth, now.Location())
	out.MonthlyRevenue.Amount = &revenueNow
	out.MonthlyRevenue.Trend, out.MonthlyRevenue.TrendDirection = trend(revenueNow, revenueBefore)
	out.PendingFees.Amount = &pending
	out.PendingFees.Trend, out.PendingFees.TrendDirection = trend(pendingNow, pendingBefore)
	out.NewEnquiries.Count = enquiriesNow
	out.NewEnquiries.Trend, out.NewEnquiries.TrendDirection = trend(decimal.NewFromInt(enquiriesNow), decimal.NewFromInt(enquiriesBefore))
	return out, nil
}

func revenueCount(payments []models.Payment, from, to time.Time, loc *time.Location) int64 {
	var n int64
	for _, p := range payments {
		if inRange(p.PaymentDate.In(loc), from, to) {
			n++
		}
	}
	return n
}

// EnrollmentTrend counts admissions per day over the last days days.
func (s *ReportService) EnrollmentTrend(ctx context.Context, days int) (*Series[int64], error) {
	if days <= 0 || days > 366 {
		return nil, invalid("period", "must be between 1 and 366")
	}
	students, err := s.students(ctx)
	if err != nil {
		return nil, err
	}
	counts := map[string]int64{}
	for _, st := range students {
		if !st.AdmissionDate.IsZero() {
			counts[st.AdmissionDate.Format(dateLayout)]++
		}
	}
	end := today(s.now())
	out := &Series[int64]{Labels: []string{}, Data: []int64{}}
	for d := end.AddDate(0, 0, -(days - 1)); !d.After(end); d = d.AddDate(0, 0, 1) {
		out.Labels = append(out.Labels, d.Format("Jan 02"))
		out.Data = append(out.Data, counts[d.Format(dateLayout)])
	}
	return out, nil
}

// RevenueOverview totals payments per bucket. period is "monthly" (last 6
// months), "weekly" (last 8 weeks) or "daily" (last 7 days).
func (s *ReportService) RevenueOverview(ctx context.Context, period string) (*Series[decimal.Decimal], error) {
	type bucket struct {
		label    string
		from, to time.Time
	}
	now := s.now()
	day := today(now)
	var buckets []bucket
	switch period {
	case "", "monthly":
		start := monthStart(now)
		for i := 5; i >= 0; i-- {
			from := start.AddDate(0, -i, 0)
			buckets = append(buckets, bucket{from.Format("Jan"), from, from.AddDate(0, 1, 0)})
		}
	case "weekly":
		for i := 7; i >= 0; i-- {
			end := day.AddDate(0, 0, -7*i+1)
			buckets = append(buckets, bucket{fmt.Sprintf("Week %d", 8-i), end.AddDate(0, 0, -7), end})
		}
	case "daily":
		for i := 6; i >= 0; i-- {
			from := day.AddDate(0, 0, -i)
			buckets = append(buckets, bucket{from.Format("Mon"), from, from.AddDate(0, 0, 1)})
		}
	default:
		return nil, invalid("period", "must be one of monthly weekly daily")
	}

	payments, err := s.payments(ctx)
	if err != nil {
		return nil, err
	}
	out := &Series[decimal.Decimal]{}
	for _, b := range buckets {
		total := decimal.Zero
		for _, p := range payments {
			if inRange(p.PaymentDate.In(now.Location()), b.from, b.to) {
				total = total.Add(p.Amount)
			}
		}
		out.Labels = append(out.Labels, b.label)
		out.Data = append(out.Data, total)
	}
	return out, nil
}

// CourseDistribution counts students per course, largest first.
func (s *ReportService) CourseDistribution(ctx context.Context) (*Series[int64], error) {
	return s.distribution(ctx, &models.Student{}, "courses")
}

// PaymentMethods counts payments per payment method, largest first.
func (s *ReportService) PaymentMethods(ctx context.Context) (*Series[int64], error) {
	return s.distribution(ctx, &models.Payment{}, "payment_method")
}

func (s *ReportService) distribution(ctx context.Context, model any, column string) (*Series[int64], error) {
	var rows []struct {
		Label string
		Total int64
	}
	err := s.db.WithContext(ctx).Model(model).
		Select(column + " AS label, COUNT(*) AS total").
		Where(column + " IS NOT NULL AND " + column + " <> ''").
		Group(column).
		Order("total DESC, label ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("group by %s: %w", column, err)
	}
	out := &Series[int64]{Labels: []string{}, Data: []int64{}}
	for _, r := range rows {
		out.Labels = append(out.Labels, r.Label)
		out.Data = append(out.Data, r.Total)
	}
	return out, nil
}

// RecentActivity merges the newest admissions, payments and enquiries,
// newest first.
func (s *ReportService) RecentActivity(ctx context.Context, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 10
	}
	db := s.db.WithContext(ctx)
	var students []models.Student
	if err := db.Where("admission_date IS NOT NULL").Order("admission_date DESC, id DESC").Limit(limit).Find(&students).Error; err != nil {
		return nil, fmt.Errorf("recent students: %w", err)
	}
	var payments []models.Payment
	if err := db.Order("payment_date DESC, id DESC").Limit(limit).Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("recent payments: %w", err)
	}
	var enquiries []models.Enquiry
	if err := db.Order("date_of_enquiry DESC, id DESC").Limit(limit).Find(&enquiries).Error; err != nil {
		return nil, fmt.Errorf("recent enquiries: %w", err)
	}

	names := map[uint]string{}
	if len(payments) > 0 {
		ids := make([]uint, 0, len(payments))
		for _, p := range payments {
			ids = append(ids, p.StudentID)
		}
		var owners []models.Student
		if err := db.Select("id", "name").Where("id IN ?", ids).Find(&owners).Error; err != nil {
			return nil, fmt.Errorf("payment owners: %w", err)
		}
		for _, o := range owners {
			names[o.ID] = o.Name
		}
	}

	now := s.now()
	out := make([]Activity, 0, len(students)+len(payments)+len(enquiries))
	for _, st := range students {
		at := st.AdmissionDate
		if at.IsZero() {
			at = st.CreatedAt
		}
		out = append(out, Activity{
			ID:          st.ID,
			Type:        "student",
			Title:       "New student enrolled",
			Description: st.Name + " enrolled in " + st.Courses,
			At:          at,
		})
	}
	for _, p := range payments {
		who, ok := names[p.StudentID]
		if !ok {
			who = "Unknown"
		}
		out = append(out, Activity{
			ID:          p.ID,
			Type:        "payment",
			Title:       "Payment received",
			Description: "₹" + p.Amount.StringFixed(2) + " from " + who,
			At:          p.PaymentDate,
		})
	}
	for _, e := range enquiries {
		out = append(out, Activity{
			ID:          e.ID,
			Type:        "enquiry",
			Title:       "New enquiry",
			Description: e.Name + " interested in " + e.Course,
			At:          e.DateOfEnquiry,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	if len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].TimeAgo = timeAgo(now.Sub(out[i].At))
	}
	return out, nil
}

func timeAgo(d time.Duration) string {
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}
