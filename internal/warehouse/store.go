// internal/warehouse/store.go
package warehouse

import (
    "context"
    "time"

    "github.com/drogamais/Fiscal-BI/internal/audit"
    "github.com/drogamais/Fiscal-BI/internal/config"
)

// Store is the persistence surface the engine and the admin API work
// against: asset configuration, sync-pair configuration, timestamp
// probes on the monitored sources and the append-only audit sink.
type Store interface {
    GetAssets(ctx context.Context, filters AssetFilters) ([]MonitoredAsset, error)
    CreateAsset(ctx context.Context, asset MonitoredAsset) error
    UpdateAsset(ctx context.Context, asset MonitoredAsset) error
    DeleteAsset(ctx context.Context, name string) error
    ReplaceAssets(ctx context.Context, assets []MonitoredAsset) error

    GetSyncPairs(ctx context.Context, filters AssetFilters) ([]SyncPair, error)
    CreateSyncPair(ctx context.Context, pair SyncPair) error
    UpdateSyncPair(ctx context.Context, pair SyncPair) error
    DeleteSyncPair(ctx context.Context, downstream string) error
    ReplaceSyncPairs(ctx context.Context, pairs []SyncPair) error

    MonitoredTables(ctx context.Context) ([]string, error)
    MaxTimestamp(ctx context.Context, connectionKey, table, column string) (*time.Time, error)
    InsertAuditRows(ctx context.Context, rows []audit.Row) (InsertReport, error)

    ReleaseDataConnections()
    Close() error
}

// Warehouse is the SQL-backed Store. Connections are opened lazily per
// key, so construction never touches the network.
type Warehouse struct {
    pool  *pool
    audit config.AuditConfig
}

var _ Store = (*Warehouse)(nil)

func Open(cfg *config.Config) *Warehouse {
    return &Warehouse{
        pool:  newPool(cfg.Connections),
        audit: cfg.Audit,
    }
}

// auditConn returns the handle for the connection the configuration and
// audit tables live on.
func (w *Warehouse) auditConn(ctx context.Context) (*pooledConn, error) {
    return w.pool.get(ctx, w.audit.ConnectionKey)
}

// ReleaseDataConnections drops every open source handle. The engine
// calls this after each run so idle runs hold no sockets open.
func (w *Warehouse) ReleaseDataConnections() {
    w.pool.closeAll()
}

func (w *Warehouse) Close() error {
    w.pool.closeAll()
    return nil
}
