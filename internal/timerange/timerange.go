// Package timerange converts (calendar date, wall-clock time) pairs into
// comparable instants and tests interval overlap.
package timerange

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// ToInstant combines a calendar date and an "HH:MM" clock string into a
// single instant in local time. The date may be a plain "YYYY-MM-DD" or an
// ISO datetime string, in which case only the date part is used.
func ToInstant(date, clock string) (time.Time, error) {
	day := date
	if i := strings.IndexByte(day, 'T'); i >= 0 {
		day = day[:i]
	}
	if len(day) > len(dateLayout) {
		day = day[:len(dateLayout)]
	}

	d, err := time.ParseInLocation(dateLayout, day, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	c, err := time.ParseInLocation(clockLayout, clock, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", clock, err)
	}

	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, time.Local), nil
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Intervals that only touch at a boundary do not
// overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if !aEnd.After(bStart) || !bEnd.After(aStart) {
		return false
	}
	return true
}
