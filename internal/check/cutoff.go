// internal/check/cutoff.go
package check

import (
    "fmt"
    "strconv"
    "strings"
    "time"
)

// TimeOfDay is a wall-clock time with minute precision, used as the
// time-of-day component of an asset's tolerance window.
type TimeOfDay struct {
    Hour   int
    Minute int
}

// Midnight is the default tolerance time for assets that only track dates.
var Midnight = TimeOfDay{}

// ParseTimeOfDay parses "HH:MM". An empty string means midnight.
// Trailing content after the minutes is rejected, not ignored.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
    if s == "" {
        return Midnight, nil
    }
    parts := strings.Split(s, ":")
    if len(parts) != 2 {
        return Midnight, fmt.Errorf("invalid time of day %q: want HH:MM", s)
    }
    h, err := strconv.Atoi(parts[0])
    if err != nil {
        return Midnight, fmt.Errorf("invalid time of day %q: %w", s, err)
    }
    m, err := strconv.Atoi(parts[1])
    if err != nil {
        return Midnight, fmt.Errorf("invalid time of day %q: %w", s, err)
    }
    if h < 0 || h > 23 || m < 0 || m > 59 {
        return Midnight, fmt.Errorf("time of day %q out of range", s)
    }
    return TimeOfDay{Hour: h, Minute: m}, nil
}

func (t TimeOfDay) IsMidnight() bool {
    return t.Hour == 0 && t.Minute == 0
}

func (t TimeOfDay) String() string {
    return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// on returns the instant at this time-of-day on the calendar day of ref.
func (t TimeOfDay) on(ref time.Time) time.Time {
    return time.Date(ref.Year(), ref.Month(), ref.Day(), t.Hour, t.Minute, 0, 0, ref.Location())
}

// Cutoff computes the earliest acceptable update instant for an asset.
// An asset whose last update is at or after the cutoff is current.
//
// The expected date is dayTolerance calendar days before now, combined
// with the time-of-day tolerance. With dayTolerance == 0, a check that
// runs before today's deadline must still accept yesterday's cycle, so
// the cutoff slides back one day until the deadline passes. Tolerances
// of one day or more already include whole spare days, so their
// time-of-day is an absolute deadline with no same-day adjustment.
//
// Pure function of its inputs; all math is in now's location, no
// timezone conversion.
func Cutoff(now time.Time, dayTolerance int, timeTolerance TimeOfDay) time.Time {
    expected := now.AddDate(0, 0, -dayTolerance)
    cutoff := timeTolerance.on(expected)
    if dayTolerance == 0 && beforeTimeOfDay(now, timeTolerance) {
        cutoff = cutoff.AddDate(0, 0, -1)
    }
    return cutoff
}

func beforeTimeOfDay(t time.Time, tod TimeOfDay) bool {
    if t.Hour() != tod.Hour {
        return t.Hour() < tod.Hour
    }
    return t.Minute() < tod.Minute
}

// DaysBetween returns the signed number of calendar days from a's date
// to b's date, ignoring the time-of-day components.
func DaysBetween(a, b time.Time) int {
    ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
    bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
    return int(bd.Sub(ad).Hours() / 24)
}
