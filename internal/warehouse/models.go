// internal/warehouse/models.go
package warehouse

import "strings"

// TierType classifies where an asset sits in the medallion layout.
type TierType string

const (
    TierBronze TierType = "BRONZE"
    TierSilver TierType = "SILVER"
    TierGold   TierType = "GOLD"
    TierOther  TierType = "OTHER"
)

// TierForTable derives the tier from the table name prefix. Anything
// without a recognized prefix is reported as OTHER rather than being
// rejected, so ad-hoc tables can still be monitored.
func TierForTable(name string) TierType {
    lower := strings.ToLower(name)
    switch {
    case strings.HasPrefix(lower, "bronze"):
        return TierBronze
    case strings.HasPrefix(lower, "silver"):
        return TierSilver
    case strings.HasPrefix(lower, "gold"):
        return TierGold
    default:
        return TierOther
    }
}

// MonitoredAsset is one row of the asset configuration table: a single
// warehouse table whose freshness is evaluated every run.
type MonitoredAsset struct {
    Name          string   `json:"name"`
    Tier          TierType `json:"tier"`
    DateColumn    string   `json:"date_column"`
    ConnectionKey string   `json:"connection_key"`
    LogGroup      string   `json:"log_group"`
    DayTolerance  int      `json:"day_tolerance"`
    TimeTolerance string   `json:"time_tolerance"` // "HH:MM", empty means midnight
    BaseCheck     bool     `json:"base_check"`
    Enabled       bool     `json:"enabled"`
}

// SyncPair declares that a downstream table must not lag its upstream
// source by more than ToleranceDays calendar days.
type SyncPair struct {
    DownstreamTable string   `json:"downstream_table"`
    UpstreamTable   string   `json:"upstream_table"`
    DownstreamTier  TierType `json:"downstream_tier"`
    DateColumn      string   `json:"date_column"`
    ConnectionKey   string   `json:"connection_key"`
    LogGroup        string   `json:"log_group"`
    ToleranceDays   int      `json:"tolerance_days"`
    Enabled         bool     `json:"enabled"`
}

// AssetFilters narrows configuration listings.
type AssetFilters struct {
    Group       string
    EnabledOnly bool
}

// InsertReport summarizes one audit persistence attempt.
type InsertReport struct {
    Attempted int `json:"attempted"`
    Inserted  int `json:"inserted"`
    Failed    int `json:"failed"`
}
