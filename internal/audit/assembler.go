// internal/audit/assembler.go
package audit

import (
    "time"

    "github.com/drogamais/Fiscal-BI/internal/check"
)

// CheckKind labels the check family that produced a log row.
type CheckKind string

const (
    KindScheduled CheckKind = "Scheduled"
    KindSync      CheckKind = "Sync Check"
    KindBase      CheckKind = "Base Check"
)

// Simplified audit statuses. The detailed status vocabulary only exists
// in run-time logs; the persisted row carries a deliberately lossy
// binary for downstream BI consumption.
const (
    StatusOK     = "OK"
    StatusFailed = "Failed"
)

// Row is the normalized, persisted audit record. One row per evaluated
// asset per run, append-only.
type Row struct {
    Workspace  string   `json:"workspace_label"`
    AssetName  string   `json:"asset_name"`
    AssetType  string   `json:"asset_type"`
    Status     string   `json:"status"`
    UpdateDate *string  `json:"update_date"`
    UpdateTime *string  `json:"update_time"`
    CheckKind  CheckKind `json:"check_kind"`
    DaysStale  *int     `json:"days_stale"`
    HoursStale *float64 `json:"hours_stale"`
}

// positiveStatuses is the curated set that projects to OK. Everything
// else, including NoHistory and EvaluationError, is Failed.
var positiveStatuses = map[string]struct{}{
    check.FreshnessCurrent.String(): {},
    check.SyncSynced.String():       {},
    "Completed":                     {},
}

// Simplify projects a detailed status onto the binary audit vocabulary.
func Simplify(status string) string {
    if _, ok := positiveStatuses[status]; ok {
        return StatusOK
    }
    return StatusFailed
}

// FreshnessRow converts a freshness evaluation into an audit row.
func FreshnessRow(workspace, assetName, assetType string, res check.FreshnessResult) Row {
    date, clock := splitTimestamp(res.Reference)
    return Row{
        Workspace:  workspace,
        AssetName:  assetName,
        AssetType:  assetType,
        Status:     Simplify(res.Status.String()),
        UpdateDate: date,
        UpdateTime: clock,
        CheckKind:  KindScheduled,
        DaysStale:  res.DaysStale,
        HoursStale: res.HoursStale,
    }
}

// SyncRow converts a tier-sync comparison into an audit row for the
// downstream asset. The upstream is referenced by the comparison but
// not separately logged.
func SyncRow(workspace, downstreamName, assetType string, res check.SyncResult) Row {
    date, clock := splitTimestamp(res.Downstream)
    return Row{
        Workspace:  workspace,
        AssetName:  downstreamName,
        AssetType:  assetType,
        Status:     Simplify(res.Status.String()),
        UpdateDate: date,
        UpdateTime: clock,
        CheckKind:  KindSync,
        DaysStale:  res.DaysBetween,
    }
}

// BaseRow records an informational reading for a base table. Base
// checks carry no pass/fail decision of their own, so they always
// project to Failed in the simplified column.
func BaseRow(workspace, assetName, assetType string, reading *time.Time, daysStale *int) Row {
    date, clock := splitTimestamp(reading)
    return Row{
        Workspace:  workspace,
        AssetName:  assetName,
        AssetType:  assetType,
        Status:     Simplify("Awaiting"),
        UpdateDate: date,
        UpdateTime: clock,
        CheckKind:  KindBase,
        DaysStale:  daysStale,
    }
}

// RefreshRow converts a BI refresh event into an audit row. The status
// string comes straight from the service ("Completed", "Failed", ...)
// and is projected through the same table as everything else.
func RefreshRow(workspace, datasetName, status string, endTime *time.Time, daysStale *int, hoursStale *float64) Row {
    date, clock := splitTimestamp(endTime)
    return Row{
        Workspace:  workspace,
        AssetName:  datasetName,
        AssetType:  "BI DATASET",
        Status:     Simplify(status),
        UpdateDate: date,
        UpdateTime: clock,
        CheckKind:  KindScheduled,
        DaysStale:  daysStale,
        HoursStale: hoursStale,
    }
}

// splitTimestamp separates an instant into the date and time-of-day
// strings the log schema stores. A nil timestamp yields null in both.
func splitTimestamp(t *time.Time) (*string, *string) {
    if t == nil {
        return nil, nil
    }
    date := t.Format("2006-01-02")
    clock := t.Format("15:04:05")
    return &date, &clock
}
