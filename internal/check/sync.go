// internal/check/sync.go
package check

import (
    "time"
)

// SyncResult is the outcome of comparing a downstream tier against its
// upstream tier.
type SyncResult struct {
    Status      SyncStatus
    Upstream    *time.Time
    Downstream  *time.Time
    // DaysBetween is downstream minus upstream in calendar days;
    // negative means the downstream tier lags.
    DaysBetween *int
}

// CompareSync determines whether a downstream tier (silver or gold) has
// caught up with its upstream tier. Only the date components are
// compared. toleranceDays allows the downstream to lag by up to that
// many days and still count as synced; zero demands same-day or newer.
func CompareSync(upstream, downstream *time.Time, toleranceDays int) SyncResult {
    result := SyncResult{Upstream: upstream, Downstream: downstream}

    if upstream == nil || downstream == nil {
        result.Status = SyncNoHistory
        return result
    }

    days := DaysBetween(*upstream, *downstream)
    result.DaysBetween = &days

    if days+toleranceDays >= 0 {
        result.Status = SyncSynced
    } else {
        result.Status = SyncUnsynced
    }
    return result
}

// SyncFailure is the result recorded when either source query failed.
func SyncFailure() SyncResult {
    return SyncResult{Status: SyncError}
}
