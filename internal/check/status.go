// internal/check/status.go
package check

// FreshnessStatus classifies a single asset's currency against its
// tolerance window.
type FreshnessStatus int

const (
    FreshnessNoHistory FreshnessStatus = iota
    FreshnessCurrent
    FreshnessStale
    FreshnessError
)

func (s FreshnessStatus) String() string {
    switch s {
    case FreshnessNoHistory:
        return "NoHistory"
    case FreshnessCurrent:
        return "Current"
    case FreshnessStale:
        return "Stale"
    default:
        return "EvaluationError"
    }
}

// SyncStatus classifies the ordering relationship between a downstream
// tier and its upstream tier.
type SyncStatus int

const (
    SyncNoHistory SyncStatus = iota
    SyncSynced
    SyncUnsynced
    SyncError
)

func (s SyncStatus) String() string {
    switch s {
    case SyncNoHistory:
        return "NoHistory"
    case SyncSynced:
        return "Synced"
    case SyncUnsynced:
        return "Unsynced"
    default:
        return "EvaluationError"
    }
}
