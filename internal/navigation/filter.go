package navigation

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of filter dates.
const DateLayout = "2006-01-02"

// Filter narrows a listing to files whose content contains Text and, when
// given, whose modification date lies in [StartDate, EndDate]. Only the
// calendar date of the bounds is used. A zero bound leaves that side open.
type Filter struct {
	Text      string
	StartDate time.Time
	EndDate   time.Time
}

// Active reports whether the filter has a non-blank term. A nil or blank
// filter is the same as no filter at all.
func (f *Filter) Active() bool {
	return f != nil && strings.TrimSpace(f.Text) != ""
}

// HasDateRange reports whether at least one bound is set.
func (f *Filter) HasDateRange() bool {
	return f != nil && (!f.StartDate.IsZero() || !f.EndDate.IsZero())
}

// IncludesDate reports whether the local calendar date of t falls inside the
// inclusive range.
func (f *Filter) IncludesDate(t time.Time) bool {
	if !f.HasDateRange() {
		return true
	}
	day := dayKey(t.Local())
	if !f.StartDate.IsZero() && day < dayKey(f.StartDate) {
		return false
	}
	if !f.EndDate.IsZero() && day > dayKey(f.EndDate) {
		return false
	}
	return true
}

// ParseDate parses a YYYY-MM-DD date in the local time zone. An empty string
// yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
