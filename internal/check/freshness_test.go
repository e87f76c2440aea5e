// internal/check/freshness_test.go
package check

import (
    "testing"
    "time"
)

func TestEvaluateFreshnessNoReading(t *testing.T) {
    now := at(2024, time.January, 10, 9, 0)
    cutoff := Cutoff(now, 0, Midnight)

    res := EvaluateFreshness(now, nil, cutoff, Midnight)
    if res.Status != FreshnessNoHistory {
        t.Fatalf("status = %v, want NoHistory", res.Status)
    }
    if res.Reference != nil || res.DaysStale != nil || res.HoursStale != nil {
        t.Fatalf("derived fields must be null for NoHistory")
    }
}

func TestEvaluateFreshnessCurrentAtBoundary(t *testing.T) {
    // Reading exactly at the cutoff is current (>=, not >).
    now := at(2024, time.January, 10, 9, 0)
    tod, _ := ParseTimeOfDay("08:00")
    cutoff := Cutoff(now, 0, tod)

    reading := cutoff
    res := EvaluateFreshness(now, &reading, cutoff, tod)
    if res.Status != FreshnessCurrent {
        t.Fatalf("status = %v, want Current", res.Status)
    }
}

func TestEvaluateFreshnessStale(t *testing.T) {
    now := at(2024, time.January, 10, 9, 0)
    tod, _ := ParseTimeOfDay("08:00")
    cutoff := Cutoff(now, 0, tod)

    reading := at(2024, time.January, 9, 7, 59)
    res := EvaluateFreshness(now, &reading, cutoff, tod)
    if res.Status != FreshnessStale {
        t.Fatalf("status = %v, want Stale", res.Status)
    }
    if res.DaysStale == nil || *res.DaysStale != 1 {
        t.Fatalf("daysStale = %v, want 1", res.DaysStale)
    }
    if res.HoursStale == nil || *res.HoursStale != 25.02 {
        t.Fatalf("hoursStale = %v, want 25.02", res.HoursStale)
    }
}

func TestEvaluateFreshnessMidnightAdjustment(t *testing.T) {
    // Date-only readings land at midnight; with a 14:00 tolerance the
    // reading is reinterpreted at 14:00 for comparison and logging.
    now := at(2024, time.January, 9, 15, 0)
    tod, _ := ParseTimeOfDay("14:00")
    cutoff := Cutoff(now, 0, tod)

    reading := at(2024, time.January, 9, 0, 0)
    res := EvaluateFreshness(now, &reading, cutoff, tod)

    wantRef := at(2024, time.January, 9, 14, 0)
    if res.Reference == nil || !res.Reference.Equal(wantRef) {
        t.Fatalf("reference = %v, want %v", res.Reference, wantRef)
    }
    if res.Status != FreshnessCurrent {
        t.Fatalf("status = %v, want Current after adjustment", res.Status)
    }
    if res.HoursStale == nil || *res.HoursStale != 1.0 {
        t.Fatalf("hoursStale = %v, want 1.0", res.HoursStale)
    }
}

func TestEvaluateFreshnessNoAdjustmentForMidnightTolerance(t *testing.T) {
    now := at(2024, time.January, 9, 15, 0)
    cutoff := Cutoff(now, 0, Midnight)

    reading := at(2024, time.January, 9, 0, 0)
    res := EvaluateFreshness(now, &reading, cutoff, Midnight)
    if res.Reference == nil || !res.Reference.Equal(reading) {
        t.Fatalf("reference = %v, want unadjusted %v", res.Reference, reading)
    }
    if res.Status != FreshnessCurrent {
        t.Fatalf("status = %v, want Current", res.Status)
    }
}

func TestEvaluateFreshnessIdempotent(t *testing.T) {
    now := at(2024, time.January, 10, 10, 30)
    tod, _ := ParseTimeOfDay("06:00")
    cutoff := Cutoff(now, 1, tod)
    reading := at(2024, time.January, 8, 6, 0)

    a := EvaluateFreshness(now, &reading, cutoff, tod)
    b := EvaluateFreshness(now, &reading, cutoff, tod)
    if a.Status != b.Status || *a.DaysStale != *b.DaysStale || *a.HoursStale != *b.HoursStale {
        t.Fatalf("evaluator is not idempotent: %+v vs %+v", a, b)
    }
}

func TestFreshnessFailure(t *testing.T) {
    res := FreshnessFailure()
    if res.Status != FreshnessError {
        t.Fatalf("status = %v, want EvaluationError", res.Status)
    }
    if res.Reference != nil || res.DaysStale != nil || res.HoursStale != nil {
        t.Fatalf("derived fields must be null on failure")
    }
}
