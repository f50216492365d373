package util

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestValidateAmount_Valid(t *testing.T) {
	testCases := []string{"0.01", "1", "100.5", "9999999.99"}

	for _, v := range testCases {
		if err := ValidateAmount(decimal.RequireFromString(v)); err != nil {
			t.Errorf("ValidateAmount(%s) error = %v, want nil", v, err)
		}
	}
}

func TestValidateAmount_Invalid(t *testing.T) {
	testCases := []string{"0", "-0.01", "-100", "10000000", "100000000", "10.005"}

	for _, v := range testCases {
		if err := ValidateAmount(decimal.RequireFromString(v)); err == nil {
			t.Errorf("ValidateAmount(%s) error = nil, want error", v)
		}
	}
}

func TestValidateDate_Valid(t *testing.T) {
	testCases := []string{
		"2024-01-01",
		"2024-12-31",
		"2024-02-29",
	}

	for _, date := range testCases {
		if err := ValidateDate(date); err != nil {
			t.Errorf("ValidateDate(%q) error = %v, want nil", date, err)
		}
	}
}

func TestValidateDate_InvalidFormat(t *testing.T) {
	testCases := []string{
		"",
		"2024/01/01",
		"01-01-2024",
		"2024-1-1",
		"not-a-date",
		"2024-13-01",
		"2024-01-32",
		"2023-02-29",
	}

	for _, date := range testCases {
		if err := ValidateDate(date); err == nil {
			t.Errorf("ValidateDate(%q) error = nil, want error", date)
		}
	}
}

func TestValidateMonth(t *testing.T) {
	if err := ValidateMonth("2024-06"); err != nil {
		t.Errorf("ValidateMonth(2024-06) error = %v, want nil", err)
	}
	for _, m := range []string{"", "2024-13", "2024/06", "06-2024"} {
		if err := ValidateMonth(m); err == nil {
			t.Errorf("ValidateMonth(%q) error = nil, want error", m)
		}
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.Local)
	for _, s := range []string{"2024-01-15", "15/01/2024", " 2024-01-15 "} {
		got, err := ParseDate(s)
		if err != nil {
			t.Fatalf("ParseDate(%q) error = %v", s, err)
		}
		if !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, want %v", s, got, want)
		}
	}

	got, err := ParseDate("")
	if err != nil || !got.IsZero() {
		t.Errorf("ParseDate(\"\") = %v, %v, want zero time", got, err)
	}

	if _, err := ParseDate("yesterday"); err == nil {
		t.Error("ParseDate(yesterday) error = nil, want error")
	}
}
