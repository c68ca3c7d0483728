// Package dates normalizes the date encodings found in sheet payloads into a
// calendar-only value.
//
// Every date is read in UTC: a timestamp such as "2024-06-03T00:00:00.000Z"
// yields 03/06/2024 regardless of the server's local zone.
package dates

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar day without a time-of-day component. The zero value
// means "absent".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

var (
	wrapperRe = regexp.MustCompile(`^Date\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*(?:,[\d\s,]*)?\)$`)
	slashRe   = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// layouts tried, in order, for values that are neither wrapper nor slash text.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"Mon Jan 2 2006 15:04:05 GMT-0700",
	"Mon Jan 02 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// New builds a Date and reports whether the triple is a real calendar day.
func New(year int, month time.Month, day int) (Date, bool) {
	if year <= 0 || month < time.January || month > time.December || day < 1 {
		return Date{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, false
	}
	return Date{Year: year, Month: month, Day: day}, true
}

// MustNew is New for literals in tests and tables.
func MustNew(year int, month time.Month, day int) Date {
	d, ok := New(year, month, day)
	if !ok {
		panic(fmt.Sprintf("dates: invalid date %04d-%02d-%02d", year, month, day))
	}
	return d
}

// FromTime takes the calendar day of t in t's own location.
func FromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Today returns the current calendar day in loc (UTC when loc is nil).
func Today(loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return FromTime(time.Now().In(loc))
}

// Parse accepts the sheet wrapper syntax Date(Y,M,D) with a zero-based
// month, D/M/YYYY text, and the generic layouts above. Empty or
// unparseable input returns ok=false; callers treat that as absent.
func Parse(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}

	if m := wrapperRe.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		return New(y, time.Month(mo+1), d)
	}

	if m := slashRe.FindStringSubmatch(s); m != nil {
		d, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		return New(y, time.Month(mo), d)
	}

	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return FromTime(t.UTC()), true
		}
	}
	return Date{}, false
}

// MustParse panics on input Parse rejects.
func MustParse(s string) Date {
	d, ok := Parse(s)
	if !ok {
		panic("dates: cannot parse " + strconv.Quote(s))
	}
	return d
}

// Normalize renders s in canonical DD/MM/YYYY form, or "" when s is not a date.
func Normalize(s string) string {
	d, ok := Parse(s)
	if !ok {
		return ""
	}
	return d.String()
}

// Format renders d as DD/MM/YYYY; the zero Date renders as "".
func Format(d Date) string {
	return d.String()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

// ISO renders d as YYYY-MM-DD.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) IsZero() bool { return d == Date{} }

// Time is midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

// AddDays, AddMonths and AddYears overflow like time.AddDate:
// 31/01 plus one month lands in March.
func (d Date) AddDays(n int) Date   { return FromTime(d.Time().AddDate(0, 0, n)) }
func (d Date) AddMonths(n int) Date { return FromTime(d.Time().AddDate(0, n, 0)) }
func (d Date) AddYears(n int) Date  { return FromTime(d.Time().AddDate(n, 0, 0)) }

// IsBefore reports whether a falls on a calendar day strictly before today.
func IsBefore(a, today Date) bool { return a.Before(today) }

// IsSameDay compares calendar days only.
func IsSameDay(a, b Date) bool { return a == b }

// Clock extracts HH:MM (UTC) from an ISO datetime; other values pass through.
func Clock(s string) string {
	if !strings.Contains(s, "T") {
		return s
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t.UTC().Format("15:04")
		}
	}
	return s
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, ok := Parse(s)
	if !ok {
		return fmt.Errorf("dates: invalid date %q", s)
	}
	*d = parsed
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
