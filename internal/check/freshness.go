// internal/check/freshness.go
package check

import (
    "math"
    "time"
)

// FreshnessResult is the outcome of evaluating one asset against its
// tolerance window.
type FreshnessResult struct {
    Status FreshnessStatus
    // Reference is the reading used for the comparison, after any
    // midnight adjustment. It is what gets logged.
    Reference  *time.Time
    DaysStale  *int
    HoursStale *float64
}

// EvaluateFreshness classifies a single asset's currency.
//
// A nil reading means the source table has no rows. Readings stored at
// exactly midnight with a non-midnight tolerance are reinterpreted at
// the tolerance time: date-only columns would otherwise always compare
// behind a same-day clock cutoff. The adjusted reading is used for both
// the comparison and the logged reference timestamp.
//
// The cutoff comparison is inclusive: a reading equal to the cutoff is
// current.
func EvaluateFreshness(now time.Time, reading *time.Time, cutoff time.Time, timeTolerance TimeOfDay) FreshnessResult {
    if reading == nil {
        return FreshnessResult{Status: FreshnessNoHistory}
    }

    ref := *reading
    if isMidnight(ref) && !timeTolerance.IsMidnight() {
        ref = timeTolerance.on(ref)
    }

    days := DaysBetween(ref, now)
    hours := round2(now.Sub(ref).Hours())

    status := FreshnessStale
    if !ref.Before(cutoff) {
        status = FreshnessCurrent
    }

    return FreshnessResult{
        Status:     status,
        Reference:  &ref,
        DaysStale:  &days,
        HoursStale: &hours,
    }
}

// FreshnessFailure is the result recorded when the source query itself
// failed; all derived fields stay null.
func FreshnessFailure() FreshnessResult {
    return FreshnessResult{Status: FreshnessError}
}

func isMidnight(t time.Time) bool {
    return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

func round2(v float64) float64 {
    return math.Round(v*100) / 100
}
