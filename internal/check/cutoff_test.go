// internal/check/cutoff_test.go
package check

import (
    "testing"
    "time"
)

func at(y int, m time.Month, d, hh, mm int) time.Time {
    return time.Date(y, m, d, hh, mm, 0, 0, time.Local)
}

func TestParseTimeOfDay(t *testing.T) {
    tod, err := ParseTimeOfDay("08:30")
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if tod.Hour != 8 || tod.Minute != 30 {
        t.Fatalf("unexpected value: %v", tod)
    }
    if tod.String() != "08:30" {
        t.Fatalf("unexpected string: %s", tod)
    }
}

func TestParseTimeOfDayEmptyMeansMidnight(t *testing.T) {
    tod, err := ParseTimeOfDay("")
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if !tod.IsMidnight() {
        t.Fatalf("expected midnight, got %v", tod)
    }
}

func TestParseTimeOfDayInvalid(t *testing.T) {
    for _, s := range []string{"25:00", "08:61", "banana", "-1:00", "12:34:56", "12:34xyz", "12:", ":30"} {
        if _, err := ParseTimeOfDay(s); err == nil {
            t.Fatalf("expected error for %q", s)
        }
    }
}

func TestCutoffZeroToleranceBeforeDeadline(t *testing.T) {
    // 07:00 with an 08:00 deadline: yesterday's cycle still applies.
    now := at(2024, time.January, 10, 7, 0)
    tod, _ := ParseTimeOfDay("08:00")

    cutoff := Cutoff(now, 0, tod)
    want := at(2024, time.January, 9, 8, 0)
    if !cutoff.Equal(want) {
        t.Fatalf("cutoff = %v, want %v", cutoff, want)
    }
}

func TestCutoffZeroToleranceAfterDeadline(t *testing.T) {
    now := at(2024, time.January, 10, 9, 15)
    tod, _ := ParseTimeOfDay("08:00")

    cutoff := Cutoff(now, 0, tod)
    want := at(2024, time.January, 10, 8, 0)
    if !cutoff.Equal(want) {
        t.Fatalf("cutoff = %v, want %v", cutoff, want)
    }
}

func TestCutoffZeroToleranceExactlyAtDeadline(t *testing.T) {
    // At the deadline the grace period is over.
    now := at(2024, time.January, 10, 8, 0)
    tod, _ := ParseTimeOfDay("08:00")

    cutoff := Cutoff(now, 0, tod)
    want := at(2024, time.January, 10, 8, 0)
    if !cutoff.Equal(want) {
        t.Fatalf("cutoff = %v, want %v", cutoff, want)
    }
}

func TestCutoffDayToleranceNoAdjustment(t *testing.T) {
    tod, _ := ParseTimeOfDay("17:00")
    want := at(2024, time.January, 9, 17, 0)

    // Any time of day gives the same answer for dayTolerance >= 1.
    for _, now := range []time.Time{
        at(2024, time.January, 10, 2, 0),
        at(2024, time.January, 10, 16, 59),
        at(2024, time.January, 10, 23, 0),
    } {
        cutoff := Cutoff(now, 1, tod)
        if !cutoff.Equal(want) {
            t.Fatalf("cutoff at %v = %v, want %v", now, cutoff, want)
        }
    }
}

func TestCutoffDefaultMidnight(t *testing.T) {
    now := at(2024, time.March, 15, 11, 30)

    cutoff := Cutoff(now, 0, Midnight)
    want := at(2024, time.March, 15, 0, 0)
    if !cutoff.Equal(want) {
        t.Fatalf("cutoff = %v, want %v", cutoff, want)
    }
}

func TestCutoffDeterministic(t *testing.T) {
    now := at(2024, time.June, 1, 7, 45)
    tod, _ := ParseTimeOfDay("09:00")

    a := Cutoff(now, 2, tod)
    b := Cutoff(now, 2, tod)
    if !a.Equal(b) {
        t.Fatalf("cutoff not deterministic: %v vs %v", a, b)
    }
}

func TestDaysBetween(t *testing.T) {
    a := at(2024, time.January, 9, 23, 59)
    b := at(2024, time.January, 10, 0, 1)
    if got := DaysBetween(a, b); got != 1 {
        t.Fatalf("DaysBetween = %d, want 1", got)
    }
    if got := DaysBetween(b, a); got != -1 {
        t.Fatalf("DaysBetween reversed = %d, want -1", got)
    }
    if got := DaysBetween(a, a); got != 0 {
        t.Fatalf("DaysBetween same = %d, want 0", got)
    }
}
