package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// 单笔金额上限
var maxAmount = decimal.NewFromInt(10_000_000)

// ValidateAmount 验证金额（必须为正数、不超过上限、最多两位小数）
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", amount.String())
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("amount too large, got %s", amount.String())
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("amount has more than two decimal places, got %s", amount.String())
	}
	return nil
}

// ValidateDate 验证日期格式（必须为 YYYY-MM-DD）
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ValidateMonth 验证月份格式（必须为 YYYY-MM）
func ValidateMonth(month string) error {
	if month == "" {
		return fmt.Errorf("month is empty")
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		return fmt.Errorf("invalid month format: %w", err)
	}
	return nil
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

// ParseDate 解析前端传来的几种日期格式，返回本地时区时间；
// 空字符串返回零值。
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
