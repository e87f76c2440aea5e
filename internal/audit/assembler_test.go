// internal/audit/assembler_test.go
package audit

import (
    "testing"
    "time"

    "github.com/drogamais/Fiscal-BI/internal/check"
)

func TestSimplifyProjection(t *testing.T) {
    cases := map[string]string{
        "Current":         StatusOK,
        "Synced":          StatusOK,
        "Completed":       StatusOK,
        "Stale":           StatusFailed,
        "Unsynced":        StatusFailed,
        "NoHistory":       StatusFailed,
        "EvaluationError": StatusFailed,
        "Awaiting":        StatusFailed,
        "anything else":   StatusFailed,
    }
    for detail, want := range cases {
        if got := Simplify(detail); got != want {
            t.Fatalf("Simplify(%q) = %q, want %q", detail, got, want)
        }
    }
}

func TestSimplifyAllFreshnessStatuses(t *testing.T) {
    want := map[check.FreshnessStatus]string{
        check.FreshnessNoHistory: StatusFailed,
        check.FreshnessCurrent:   StatusOK,
        check.FreshnessStale:     StatusFailed,
        check.FreshnessError:     StatusFailed,
    }
    for status, expected := range want {
        if got := Simplify(status.String()); got != expected {
            t.Fatalf("%v projects to %q, want %q", status, got, expected)
        }
    }
}

func TestFreshnessRowSplitsTimestamp(t *testing.T) {
    ref := time.Date(2024, time.January, 9, 14, 30, 5, 0, time.Local)
    days := 1
    hours := 25.5
    res := check.FreshnessResult{
        Status:     check.FreshnessCurrent,
        Reference:  &ref,
        DaysStale:  &days,
        HoursStale: &hours,
    }

    row := FreshnessRow("warehouse", "bronze_sales", "BRONZE", res)
    if row.Status != StatusOK {
        t.Fatalf("status = %q, want OK", row.Status)
    }
    if row.CheckKind != KindScheduled {
        t.Fatalf("check kind = %q, want Scheduled", row.CheckKind)
    }
    if row.UpdateDate == nil || *row.UpdateDate != "2024-01-09" {
        t.Fatalf("update date = %v, want 2024-01-09", row.UpdateDate)
    }
    if row.UpdateTime == nil || *row.UpdateTime != "14:30:05" {
        t.Fatalf("update time = %v, want 14:30:05", row.UpdateTime)
    }
    if *row.DaysStale != 1 || *row.HoursStale != 25.5 {
        t.Fatalf("staleness not carried over: %+v", row)
    }
}

func TestFreshnessRowNullTimestamp(t *testing.T) {
    row := FreshnessRow("warehouse", "bronze_sales", "BRONZE", check.FreshnessResult{Status: check.FreshnessNoHistory})
    if row.Status != StatusFailed {
        t.Fatalf("NoHistory must persist as Failed, got %q", row.Status)
    }
    if row.UpdateDate != nil || row.UpdateTime != nil {
        t.Fatalf("null reading must yield null date and time")
    }
    if row.DaysStale != nil || row.HoursStale != nil {
        t.Fatalf("null reading must yield null staleness fields")
    }
}

func TestSyncRowLogsDownstreamOnly(t *testing.T) {
    up := time.Date(2024, time.January, 9, 0, 0, 0, 0, time.Local)
    down := time.Date(2024, time.January, 8, 6, 0, 0, 0, time.Local)
    res := check.CompareSync(&up, &down, 0)

    row := SyncRow("warehouse", "silver_sales", "SILVER", res)
    if row.Status != StatusFailed {
        t.Fatalf("Unsynced must persist as Failed, got %q", row.Status)
    }
    if row.CheckKind != KindSync {
        t.Fatalf("check kind = %q, want Sync Check", row.CheckKind)
    }
    if row.UpdateDate == nil || *row.UpdateDate != "2024-01-08" {
        t.Fatalf("sync row must carry the downstream timestamp, got %v", row.UpdateDate)
    }
    if row.DaysStale == nil || *row.DaysStale != -1 {
        t.Fatalf("daysBetween = %v, want -1", row.DaysStale)
    }
}

func TestBaseRowAlwaysFailed(t *testing.T) {
    reading := time.Date(2024, time.February, 1, 4, 0, 0, 0, time.Local)
    days := 3
    row := BaseRow("warehouse", "bronze_closeup", "BRONZE", &reading, &days)
    if row.Status != StatusFailed {
        t.Fatalf("base rows carry no positive status, got %q", row.Status)
    }
    if row.CheckKind != KindBase {
        t.Fatalf("check kind = %q, want Base Check", row.CheckKind)
    }
}

func TestRefreshRowCompleted(t *testing.T) {
    end := time.Date(2024, time.March, 2, 5, 45, 0, 0, time.Local)
    row := RefreshRow("Finance", "sales dashboard", "Completed", &end, nil, nil)
    if row.Status != StatusOK {
        t.Fatalf("Completed refresh must persist as OK, got %q", row.Status)
    }
    if row.AssetType != "BI DATASET" {
        t.Fatalf("asset type = %q", row.AssetType)
    }
}
