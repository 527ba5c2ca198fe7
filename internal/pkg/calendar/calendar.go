package calendar

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical calendar-day format. It is fixed-width and zero-padded so
// lexicographic comparison of day strings matches chronological order.
const DateLayout = "2006-01-02"

var (
	ErrInvalidDateFormat = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidTimeOfDay  = errors.New("time of day must be in HH:MM format")
	ErrInvalidUTCOffset  = errors.New("utc offset must be in +HH:MM format")
)

var dayRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
var monthRegex = regexp.MustCompile(`^\d{4}-\d{2}$`)

// TimeOfDay is a wall-clock time in office-local time.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTimeOfDay parses "HH:MM" (a single-digit hour is accepted).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return TimeOfDay{}, ErrInvalidTimeOfDay
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil || hh < 0 || hh > 23 {
		return TimeOfDay{}, ErrInvalidTimeOfDay
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil || mm < 0 || mm > 59 || len(parts[1]) != 2 {
		return TimeOfDay{}, ErrInvalidTimeOfDay
	}
	return TimeOfDay{Hour: hh, Minute: mm}, nil
}

// ParseUTCOffset parses offsets like "+05:00", "-03:30" or "+5".
func ParseUTCOffset(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidUTCOffset
	}
	sign := time.Duration(1)
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		sign = -1
		s = s[1:]
	}
	hourPart, minutePart, hasMinutes := strings.Cut(s, ":")
	hh, err := strconv.Atoi(hourPart)
	if err != nil || hh < 0 || hh > 14 {
		return 0, ErrInvalidUTCOffset
	}
	mm := 0
	if hasMinutes {
		mm, err = strconv.Atoi(minutePart)
		if err != nil || mm < 0 || mm > 59 {
			return 0, ErrInvalidUTCOffset
		}
	}
	return sign * (time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute), nil
}

// Calendar converts between instants and office-local calendar days using a fixed UTC
// offset. It is immutable after construction and safe for concurrent use.
type Calendar struct {
	loc         *time.Location
	officeStart TimeOfDay
	now         func() time.Time
}

// New creates a Calendar. A nil now defaults to time.Now.
func New(offset time.Duration, officeStart TimeOfDay, now func() time.Time) *Calendar {
	if now == nil {
		now = time.Now
	}
	return &Calendar{
		loc:         time.FixedZone(formatOffset(offset), int(offset/time.Second)),
		officeStart: officeStart,
		now:         now,
	}
}

func formatOffset(offset time.Duration) string {
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, int(offset.Hours()), int(offset.Minutes())%60)
}

// Location returns the fixed office-local zone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Now returns the current instant expressed in office-local time.
func (c *Calendar) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the current office-local day.
func (c *Calendar) Today() string {
	return c.DayOf(c.now())
}

// DayOf returns the office-local day containing t.
func (c *Calendar) DayOf(t time.Time) string {
	return t.In(c.loc).Format(DateLayout)
}

// ParseDay validates a day string and returns the office-local midnight that starts it.
func (c *Calendar) ParseDay(day string) (time.Time, error) {
	if !dayRegex.MatchString(day) {
		return time.Time{}, ErrInvalidDateFormat
	}
	t, err := time.ParseInLocation(DateLayout, day, c.loc)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// IsValidDay reports whether day is a well-formed calendar day.
func IsValidDay(day string) bool {
	if !dayRegex.MatchString(day) {
		return false
	}
	_, err := time.Parse(DateLayout, day)
	return err == nil
}

// At returns the instant of the given office-local wall-clock time on day.
func (c *Calendar) At(day string, tod TimeOfDay) (time.Time, error) {
	start, err := c.ParseDay(day)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(start.Year(), start.Month(), start.Day(), tod.Hour, tod.Minute, 0, 0, c.loc), nil
}

// OfficeStartInstant returns the instant the office opens on day.
func (c *Calendar) OfficeStartInstant(day string) (time.Time, error) {
	return c.At(day, c.officeStart)
}

// DayBounds returns the half-open interval [start, end) covering the office-local day.
func (c *Calendar) DayBounds(day string) (time.Time, time.Time, error) {
	start, err := c.ParseDay(day)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 0, 1), nil
}

// MonthBounds returns the first and last day ("YYYY-MM-DD") of a "YYYY-MM" month.
func (c *Calendar) MonthBounds(month string) (string, string, error) {
	if !monthRegex.MatchString(month) {
		return "", "", ErrInvalidDateFormat
	}
	first, err := c.ParseDay(month + "-01")
	if err != nil {
		return "", "", err
	}
	last := first.AddDate(0, 1, -1)
	return first.Format(DateLayout), last.Format(DateLayout), nil
}

// WeekStart returns the Monday of the office-local week containing day.
func (c *Calendar) WeekStart(day string) (string, error) {
	start, err := c.ParseDay(day)
	if err != nil {
		return "", err
	}
	offset := (int(start.Weekday()) + 6) % 7
	return start.AddDate(0, 0, -offset).Format(DateLayout), nil
}

// NextOccurrence returns the first instant strictly after from at which the office-local
// clock reads tod.
func (c *Calendar) NextOccurrence(tod TimeOfDay, from time.Time) time.Time {
	local := from.In(c.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), tod.Hour, tod.Minute, 0, 0, c.loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
