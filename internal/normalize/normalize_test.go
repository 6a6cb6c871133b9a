package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPhone(t *testing.T) {
	cases := []struct {
		in    string
		want  string
		valid bool
	}{
		{"84912345678", "0912345678", true},
		{"912345678", "0912345678", true},
		{"0912345678", "0912345678", true},
		{"+84 91 234 5678", "0912345678", true},
		{"091-234-5678", "0912345678", true},
		{"123", "", false},
		{"", "", false},
		{"abc", "", false},
	}
	for _, tc := range cases {
		got, ok := Phone(tc.in)
		assert.Equal(t, tc.valid, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestPhoneShape(t *testing.T) {
	inputs := []string{"84987654321", "987654321", "0351234567", "84 (24) 3936 2626"}
	for _, in := range inputs {
		got, ok := Phone(in)
		if !ok {
			continue
		}
		assert.True(t, len(got) >= 10, "normalized %q too short", got)
		assert.Equal(t, byte('0'), got[0], "normalized %q must start with 0", got)
		for _, r := range got {
			assert.True(t, r >= '0' && r <= '9', "normalized %q must be digits", got)
		}
	}
}

func TestLocalDateVietnamesePattern(t *testing.T) {
	got, ok := LocalDate("01/01/2026 10:59")
	assert.True(t, ok)
	assert.Equal(t, 2026, got.Year())
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, 1, got.Day())
	assert.Equal(t, 10, got.Hour())
	assert.Equal(t, 59, got.Minute())

	got, ok = LocalDate("5/3/2026")
	assert.True(t, ok)
	assert.Equal(t, 2026, got.Year())
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 5, got.Day())
	assert.Equal(t, 0, got.Hour())
}

func TestLocalDateExcelSerial(t *testing.T) {
	// 45292 is 2024-01-01 in the 1900 date system.
	got, ok := LocalDate("45292")
	assert.True(t, ok)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, 1, got.Day())

	// Fractional part carries the time of day.
	got, ok = LocalDate("45292.5")
	assert.True(t, ok)
	assert.Equal(t, 12, got.Hour())
}

func TestLocalDateInvalid(t *testing.T) {
	_, ok := LocalDate("not a date")
	assert.False(t, ok)

	_, ok = LocalDate("")
	assert.False(t, ok)
}

func TestLocalDateFallbackLayouts(t *testing.T) {
	got, ok := LocalDate("2026-03-01 09:00:00")
	assert.True(t, ok)
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 9, got.Hour())
}

func TestReportMonth(t *testing.T) {
	ts := time.Date(2026, time.March, 17, 23, 15, 0, 0, time.Local)
	assert.Equal(t, "2026-03-01", ReportMonth(ts))

	assert.Regexp(t, `^\d{4}-\d{2}-01$`, ReportMonth(time.Now()))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, 1234567.0, Money("1,234,567"))
	assert.Equal(t, 850.5, Money(" 850.5 "))
	assert.Equal(t, 0.0, Money("n/a"))
	assert.Equal(t, 0.0, Money(""))
}

func TestCount(t *testing.T) {
	assert.Equal(t, 3, Count("3", 1))
	assert.Equal(t, 3, Count("3.0", 1))
	assert.Equal(t, 1, Count("", 1))
	assert.Equal(t, 0, Count("x", 0))
}
