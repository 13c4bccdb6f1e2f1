package ingest

import (
	"fmt"
	"time"

	apperrors "github.com/Akash-RK/federal-register-rag/pkg/errors"
)

// dayLayout is the ISO calendar-date form used by the upstream API, the
// staging filenames, and the documents table.
const dayLayout = "2006-01-02"

// Day is a single UTC calendar date. It is the unit of work for the
// ingestion pipeline: one Day maps to one upstream request, one pair of
// snapshot files, and one scheduler task.
type Day struct {
	t time.Time
}

// ParseDay parses an ISO YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.ParseInLocation(dayLayout, s, time.UTC)
	if err != nil {
		return Day{}, fmt.Errorf("parsing day %q: %w", s, apperrors.ErrInvalidInput)
	}
	return Day{t: t}, nil
}

// DayOf truncates a time to its UTC calendar date.
func DayOf(t time.Time) Day {
	u := t.UTC()
	return Day{t: time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)}
}

func (d Day) String() string {
	return d.t.Format(dayLayout)
}

// Time returns the midnight UTC instant of the day.
func (d Day) Time() time.Time {
	return d.t
}

// Next returns the following calendar day.
func (d Day) Next() Day {
	return Day{t: d.t.AddDate(0, 0, 1)}
}

// After reports whether d falls after other.
func (d Day) After(other Day) bool {
	return d.t.After(other.t)
}

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool {
	return d.t.IsZero()
}

// MarshalJSON encodes the day as a quoted ISO date.
func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a quoted ISO date.
func (d *Day) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("day must be a JSON string, got %s", s)
	}
	parsed, err := ParseDay(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween enumerates the closed interval [start, end]. It returns
// ErrInvalidRange when start falls after end.
func DaysBetween(start, end Day) ([]Day, error) {
	if start.After(end) {
		return nil, fmt.Errorf("start %s after end %s: %w", start, end, apperrors.ErrInvalidRange)
	}
	var days []Day
	for d := start; !d.After(end); d = d.Next() {
		days = append(days, d)
	}
	return days, nil
}
