package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Report exports carry timestamps as D/M/YYYY with an optional H:mm part.
var viDatePattern = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})(?:\s+(\d{1,2}):(\d{1,2}))?`)

var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// LocalDate parses a Vietnamese report date cell. Purely numeric cells are
// Excel serial dates; otherwise the D/M/YYYY[ H:mm] pattern is tried, then
// a short list of standard layouts. Times are constructed in the process
// local zone, matching how the reports are produced.
func LocalDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		decoded, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(
			decoded.Year(), decoded.Month(), decoded.Day(),
			decoded.Hour(), decoded.Minute(), decoded.Second(),
			0, time.Local,
		), true
	}

	if m := viDatePattern.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		hour := 0
		minute := 0
		if m[4] != "" {
			hour, _ = strconv.Atoi(m[4])
		}
		if m[5] != "" {
			minute, _ = strconv.Atoi(m[5])
		}
		return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local), true
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ReportMonth buckets a timestamp to the first day of its calendar month,
// formatted YYYY-MM-01.
func ReportMonth(t time.Time) string {
	return t.Format("2006-01") + "-01"
}
