// internal/warehouse/query.go
package warehouse

import (
    "context"
    "database/sql"
    "fmt"
    "sort"
    "time"
)

// MaxTimestamp probes one table for its most recent reading: the MAX of
// the configured date column. An empty table yields (nil, nil); a NULL
// reading is a legitimate answer, not an error.
func (w *Warehouse) MaxTimestamp(ctx context.Context, connectionKey, table, column string) (*time.Time, error) {
    conn, err := w.pool.get(ctx, connectionKey)
    if err != nil {
        return nil, err
    }

    qtable, err := conn.dialect.quoteTable(table)
    if err != nil {
        return nil, &QueryError{Table: table, Err: err}
    }
    qcol, err := conn.dialect.quoteIdent(column)
    if err != nil {
        return nil, &QueryError{Table: table, Err: err}
    }

    query := fmt.Sprintf("SELECT MAX(%s) FROM %s", qcol, qtable)

    var reading sql.NullTime
    if err := conn.db.QueryRowContext(ctx, query).Scan(&reading); err != nil {
        return nil, &QueryError{Table: table, Err: err}
    }
    if !reading.Valid {
        return nil, nil
    }
    ts := reading.Time
    return &ts, nil
}

// MonitoredTables lists every distinct table referenced by the enabled
// configuration, across both the freshness assets and the sync pairs.
func (w *Warehouse) MonitoredTables(ctx context.Context) ([]string, error) {
    assets, err := w.GetAssets(ctx, AssetFilters{EnabledOnly: true})
    if err != nil {
        return nil, err
    }
    pairs, err := w.GetSyncPairs(ctx, AssetFilters{EnabledOnly: true})
    if err != nil {
        return nil, err
    }

    seen := make(map[string]struct{})
    for _, asset := range assets {
        seen[asset.Name] = struct{}{}
    }
    for _, pair := range pairs {
        seen[pair.DownstreamTable] = struct{}{}
        seen[pair.UpstreamTable] = struct{}{}
    }

    tables := make([]string, 0, len(seen))
    for table := range seen {
        tables = append(tables, table)
    }
    sort.Strings(tables)
    return tables, nil
}
