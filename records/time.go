package records

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
	shortClock  = "15:04"
)

// =============================================================================
// DATE - Calendar date without time zone
// =============================================================================

// Date is a calendar day. The zero Date is invalid, which is what an
// unparsable persisted date decodes to.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock and zone of t.
func DateOf(t time.Time) Date { return NewDate(t.Year(), t.Month(), t.Day()) }

func Today() Date { return DateOf(time.Now()) }

// ParseDate reads YYYY-MM-DD. Anything else yields an invalid Date.
func ParseDate(s string) Date {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}
	}
	return Date{t: t}
}

func (d Date) IsValid() bool { return !d.t.IsZero() }

// Comparison
func (d Date) Before(o Date) bool        { return d.t.Before(o.t) }
func (d Date) After(o Date) bool         { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool         { return d.t.Equal(o.t) }
func (d Date) BeforeOrEqual(o Date) bool { return !d.After(o) }
func (d Date) AfterOrEqual(o Date) bool  { return !d.Before(o) }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) Time() time.Time       { return d.t }

// ISOWeekday numbers Monday as 1 through Sunday as 7.
func (d Date) ISOWeekday() int {
	wd := int(d.t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func (d Date) AddDays(n int) Date {
	if !d.IsValid() {
		return d
	}
	return Date{t: d.t.AddDate(0, 0, n)}
}

// WeekStart returns the Monday on or before d.
func (d Date) WeekStart() Date { return d.AddDays(1 - d.ISOWeekday()) }

func (d Date) String() string {
	if !d.IsValid() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON never fails: non-string or unparsable input becomes an
// invalid Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*d = Date{}
		return nil
	}
	*d = ParseDate(s)
	return nil
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// =============================================================================
// CLOCK TIME - Time of day, second resolution
// =============================================================================

const secondsPerDay = 24 * 60 * 60

// ClockTime is a time of day. The zero ClockTime is invalid (unset).
type ClockTime struct {
	secs  int
	valid bool
}

// NewClockTime returns an invalid ClockTime when any component is out of range.
func NewClockTime(hour, minute, second int) ClockTime {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return ClockTime{}
	}
	return ClockTime{secs: hour*3600 + minute*60 + second, valid: true}
}

// ParseClockTime reads HH:MM:SS (or HH:MM). Anything else yields an invalid
// ClockTime.
func ParseClockTime(s string) ClockTime {
	for _, layout := range []string{ClockLayout, shortClock} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewClockTime(t.Hour(), t.Minute(), t.Second())
		}
	}
	return ClockTime{}
}

func (c ClockTime) IsValid() bool { return c.valid }
func (c ClockTime) Hour() int     { return c.secs / 3600 }
func (c ClockTime) Minute() int   { return c.secs % 3600 / 60 }
func (c ClockTime) Second() int   { return c.secs % 60 }

// SecondsTo returns the signed number of seconds from c to other on the same
// day. Invalid operands yield 0.
func (c ClockTime) SecondsTo(other ClockTime) int {
	if !c.valid || !other.valid {
		return 0
	}
	return other.secs - c.secs
}

func (c ClockTime) Before(other ClockTime) bool { return c.secs < other.secs }
func (c ClockTime) After(other ClockTime) bool  { return c.secs > other.secs }

func (c ClockTime) String() string {
	if !c.valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second())
}

// Short formats as HH:MM.
func (c ClockTime) Short() string {
	if !c.valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*c = ClockTime{}
		return nil
	}
	*c = ParseClockTime(s)
	return nil
}

// ShiftHours is the length of a shift from start to end. An end earlier than
// the start is taken to fall on the next day; exactly one midnight crossing is
// modelled. Equal times are a zero-length shift.
func ShiftHours(start, end ClockTime) float64 {
	if !start.IsValid() || !end.IsValid() {
		return 0.0
	}
	seconds := start.SecondsTo(end)
	if seconds < 0 {
		seconds += secondsPerDay
	}
	return float64(seconds) / 3600.0
}
