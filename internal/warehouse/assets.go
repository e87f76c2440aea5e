// internal/warehouse/assets.go
package warehouse

import (
    "context"
    "database/sql"
    "fmt"
    "strings"
)

var assetColumns = []string{
    "name",
    "tier",
    "date_column",
    "connection_key",
    "log_group",
    "day_tolerance",
    "time_tolerance",
    "base_check",
    "enabled",
}

var syncColumns = []string{
    "downstream_table",
    "upstream_table",
    "tier",
    "date_column",
    "connection_key",
    "log_group",
    "tolerance_days",
    "enabled",
}

func assetArgs(a MonitoredAsset) []interface{} {
    return []interface{}{
        a.Name, string(a.Tier), a.DateColumn, a.ConnectionKey, a.LogGroup,
        a.DayTolerance, a.TimeTolerance, a.BaseCheck, a.Enabled,
    }
}

func syncArgs(p SyncPair) []interface{} {
    return []interface{}{
        p.DownstreamTable, p.UpstreamTable, string(p.DownstreamTier), p.DateColumn,
        p.ConnectionKey, p.LogGroup, p.ToleranceDays, p.Enabled,
    }
}

// normalizeAsset fills derivable fields so callers may omit them.
func normalizeAsset(a *MonitoredAsset) {
    if a.Tier == "" {
        a.Tier = TierForTable(a.Name)
    }
}

func normalizePair(p *SyncPair) {
    if p.DownstreamTier == "" {
        p.DownstreamTier = TierForTable(p.DownstreamTable)
    }
}

func (w *Warehouse) buildFilter(d *dialect, filters AssetFilters) (string, []interface{}) {
    var clauses []string
    var args []interface{}
    n := 1
    if filters.EnabledOnly {
        clauses = append(clauses, fmt.Sprintf("enabled = %s", d.placeholder(n)))
        args = append(args, true)
        n++
    }
    if filters.Group != "" {
        clauses = append(clauses, fmt.Sprintf("log_group = %s", d.placeholder(n)))
        args = append(args, filters.Group)
    }
    if len(clauses) == 0 {
        return "", nil
    }
    return " WHERE " + strings.Join(clauses, " AND "), args
}

func (w *Warehouse) GetAssets(ctx context.Context, filters AssetFilters) ([]MonitoredAsset, error) {
    conn, err := w.auditConn(ctx)
    if err != nil {
        return nil, err
    }
    qtable, err := conn.dialect.quoteTable(w.audit.AssetsTable)
    if err != nil {
        return nil, err
    }

    where, args := w.buildFilter(conn.dialect, filters)
    query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY name",
        strings.Join(assetColumns, ", "), qtable, where)

    rows, err := conn.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, &QueryError{Table: w.audit.AssetsTable, Err: err}
    }
    defer rows.Close()

    var assets []MonitoredAsset
    for rows.Next() {
        var a MonitoredAsset
        var tier string
        var timeTol sql.NullString
        if err := rows.Scan(&a.Name, &tier, &a.DateColumn, &a.ConnectionKey, &a.LogGroup,
            &a.DayTolerance, &timeTol, &a.BaseCheck, &a.Enabled); err != nil {
            return nil, &QueryError{Table: w.audit.AssetsTable, Err: err}
        }
        a.Tier = TierType(tier)
        if timeTol.Valid {
            a.TimeTolerance = timeTol.String
        }
        assets = append(assets, a)
    }
    if err := rows.Err(); err != nil {
        return nil, &QueryError{Table: w.audit.AssetsTable, Err: err}
    }
    return assets, nil
}

func (w *Warehouse) CreateAsset(ctx context.Context, asset MonitoredAsset) error {
    normalizeAsset(&asset)
    conn, err := w.auditConn(ctx)
    if err != nil {
        return err
    }
    qtable, err := conn.dialect.quoteTable(w.audit.AssetsTable)
    if err != nil {
        return err
    }
    query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
        qtable, strings.Join(assetColumns, ", "), conn.dialect.placeholderRow(1, len(assetColumns)))
    if _, err := conn.db.ExecContext(ctx, query, assetArgs(asset)...); err != nil {
        return &QueryError{Table: w.audit.AssetsTable, Err: err}
    }
    return nil
}

func (w *Warehouse) UpdateAsset(ctx context.Context, asset MonitoredAsset) error {
    normalizeAsset(&asset)
    conn, err := w.auditConn(ctx)
    if err != nil {
        return err
    }
    qtable, err := conn.dialect.quoteTable(w.audit.AssetsTable)
    if err != nil {
        return err
    }
    d := conn.dialect
    query := fmt.Sprintf(
        "UPDATE %s SET tier = %s, date_column = %s, connection_key = %s, log_group = %s, day_tolerance = %s, time_tolerance = %s, base_check = %s, enabled = %s WHERE name = %s",
        qtable, d.placeholder(1), d.placeholder(2), d.placeholder(3), d.placeholder(4),
        d.placeholder(5), d.placeholder(6), d.placeholder(7), d.placeholder(8), d.placeholder(9))
    res, err := conn.db.ExecContext(ctx, query,
        string(asset.Tier), asset.DateColumn, asset.ConnectionKey, asset.LogGroup,
        asset.DayTolerance, asset.TimeTolerance, asset.BaseCheck, asset.Enabled, asset.Name)
    if err != nil {
        return &QueryError{Table: w.audit.AssetsTable, Err: err}
    }
    if affected, err := res.RowsAffected(); err == nil && affected == 0 {
        return fmt.Errorf("asset %q not found", asset.Name)
    }
    return nil
}

func (w *Warehouse) DeleteAsset(ctx context.Context, name string) error {
    conn, err := w.auditConn(ctx)
    if err != nil {
        return err
    }
    qtable, err := conn.dialect.quoteTable(w.audit.AssetsTable)
    if err != nil {
        return err
    }
    query := fmt.Sprintf("DELETE FROM %s WHERE name = %s", qtable, conn.dialect.placeholder(1))
    res, err := conn.db.ExecContext(ctx, query, name)
    if err != nil {
        return &QueryError{Table: w.audit.AssetsTable, Err: err}
    }
    if affected, err := res.RowsAffected(); err == nil && affected == 0 {
        return fmt.Errorf("asset %q not found", name)
    }
    return nil
}

// ReplaceAssets swaps the full asset configuration in one transaction,
// the same truncate-and-reload semantics the admin UI saves with.
func (w *Warehouse) ReplaceAssets(ctx context.Context, assets []MonitoredAsset) error {
    for i := range assets {
        normalizeAsset(&assets[i])
    }
    conn, err := w.auditConn(ctx)
    if err != nil {
        return err
    }
    qtable, err := conn.dialect.quoteTable(w.audit.AssetsTable)
    if err != nil {
        return err
    }
    insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
        qtable, strings.Join(assetColumns, ", "), conn.dialect.placeholderRow(1, len(assetColumns)))

    tx, err := conn.db.BeginTx(ctx, nil)
    if err != nil {
        return &QueryError{Table: w.audit.AssetsTable, Err: err}
    }
    if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", qtable)); err != nil {
        tx.Rollback()
        return &QueryError{Table: w.audit.AssetsTable, Err: err}
    }
    for _, asset := range assets {
        if _, err := tx.ExecContext(ctx, insert, assetArgs(asset)...); err != nil {
            tx.Rollback()
            return &QueryError{Table: w.audit.AssetsTable, Err: err}
        }
    }
    return tx.Commit()
}

func (w *Warehouse) GetSyncPairs(ctx context.Context, filters AssetFilters) ([]SyncPair, error) {
    conn, err := w.auditConn(ctx)
    if err != nil {
        return nil, err
    }
    qtable, err := conn.dialect.quoteTable(w.audit.SyncTable)
    if err != nil {
        return nil, err
    }

    where, args := w.buildFilter(conn.dialect, filters)
    query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY downstream_table",
        strings.Join(syncColumns, ", "), qtable, where)

    rows, err := conn.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, &QueryError{Table: w.audit.SyncTable, Err: err}
    }
    defer rows.Close()

    var pairs []SyncPair
    for rows.Next() {
        var p SyncPair
        var tier string
        if err := rows.Scan(&p.DownstreamTable, &p.UpstreamTable, &tier, &p.DateColumn,
            &p.ConnectionKey, &p.LogGroup, &p.ToleranceDays, &p.Enabled); err != nil {
            return nil, &QueryError{Table: w.audit.SyncTable, Err: err}
        }
        p.DownstreamTier = TierType(tier)
        pairs = append(pairs, p)
    }
    if err := rows.Err(); err != nil {
        return nil, &QueryError{Table: w.audit.SyncTable, Err: err}
    }
    return pairs, nil
}

func (w *Warehouse) CreateSyncPair(ctx context.Context, pair SyncPair) error {
    normalizePair(&pair)
    conn, err := w.auditConn(ctx)
    if err != nil {
        return err
    }
    qtable, err := conn.dialect.quoteTable(w.audit.SyncTable)
    if err != nil {
        return err
    }
    query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
        qtable, strings.Join(syncColumns, ", "), conn.dialect.placeholderRow(1, len(syncColumns)))
    if _, err := conn.db.ExecContext(ctx, query, syncArgs(pair)...); err != nil {
        return &QueryError{Table: w.audit.SyncTable, Err: err}
    }
    return nil
}

func (w *Warehouse) UpdateSyncPair(ctx context.Context, pair SyncPair) error {
    normalizePair(&pair)
    conn, err := w.auditConn(ctx)
    if err != nil {
        return err
    }
    qtable, err := conn.dialect.quoteTable(w.audit.SyncTable)
    if err != nil {
        return err
    }
    d := conn.dialect
    query := fmt.Sprintf(
        "UPDATE %s SET upstream_table = %s, tier = %s, date_column = %s, connection_key = %s, log_group = %s, tolerance_days = %s, enabled = %s WHERE downstream_table = %s",
        qtable, d.placeholder(1), d.placeholder(2), d.placeholder(3), d.placeholder(4),
        d.placeholder(5), d.placeholder(6), d.placeholder(7), d.placeholder(8))
    res, err := conn.db.ExecContext(ctx, query,
        pair.UpstreamTable, string(pair.DownstreamTier), pair.DateColumn, pair.ConnectionKey,
        pair.LogGroup, pair.ToleranceDays, pair.Enabled, pair.DownstreamTable)
    if err != nil {
        return &QueryError{Table: w.audit.SyncTable, Err: err}
    }
    if affected, err := res.RowsAffected(); err == nil && affected == 0 {
        return fmt.Errorf("sync pair for %q not found", pair.DownstreamTable)
    }
    return nil
}

func (w *Warehouse) DeleteSyncPair(ctx context.Context, downstream string) error {
    conn, err := w.auditConn(ctx)
    if err != nil {
        return err
    }
    qtable, err := conn.dialect.quoteTable(w.audit.SyncTable)
    if err != nil {
        return err
    }
    query := fmt.Sprintf("DELETE FROM %s WHERE downstream_table = %s", qtable, conn.dialect.placeholder(1))
    res, err := conn.db.ExecContext(ctx, query, downstream)
    if err != nil {
        return &QueryError{Table: w.audit.SyncTable, Err: err}
    }
    if affected, err := res.RowsAffected(); err == nil && affected == 0 {
        return fmt.Errorf("sync pair for %q not found", downstream)
    }
    return nil
}

func (w *Warehouse) ReplaceSyncPairs(ctx context.Context, pairs []SyncPair) error {
    for i := range pairs {
        normalizePair(&pairs[i])
    }
    conn, err := w.auditConn(ctx)
    if err != nil {
        return err
    }
    qtable, err := conn.dialect.quoteTable(w.audit.SyncTable)
    if err != nil {
        return err
    }
    insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
        qtable, strings.Join(syncColumns, ", "), conn.dialect.placeholderRow(1, len(syncColumns)))

    tx, err := conn.db.BeginTx(ctx, nil)
    if err != nil {
        return &QueryError{Table: w.audit.SyncTable, Err: err}
    }
    if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", qtable)); err != nil {
        tx.Rollback()
        return &QueryError{Table: w.audit.SyncTable, Err: err}
    }
    for _, pair := range pairs {
        if _, err := tx.ExecContext(ctx, insert, syncArgs(pair)...); err != nil {
            tx.Rollback()
            return &QueryError{Table: w.audit.SyncTable, Err: err}
        }
    }
    return tx.Commit()
}
