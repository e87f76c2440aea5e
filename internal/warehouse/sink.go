// internal/warehouse/sink.go
package warehouse

import (
    "context"
    "fmt"
    "strings"

    log "github.com/sirupsen/logrus"

    "github.com/drogamais/Fiscal-BI/internal/audit"
)

var auditColumns = []string{
    "workspace_label",
    "asset_name",
    "asset_type",
    "status",
    "update_date",
    "update_time",
    "check_kind",
    "days_stale",
    "hours_stale",
}

func auditRowArgs(row audit.Row) []interface{} {
    return []interface{}{
        row.Workspace,
        row.AssetName,
        row.AssetType,
        row.Status,
        row.UpdateDate,
        row.UpdateTime,
        string(row.CheckKind),
        row.DaysStale,
        row.HoursStale,
    }
}

// InsertAuditRows appends a run's rows to the audit log. The whole
// batch goes in as a single multi-row INSERT inside a transaction;
// when that fails the batch is retried row by row so one malformed row
// cannot suppress the rest of the run's evidence.
func (w *Warehouse) InsertAuditRows(ctx context.Context, rows []audit.Row) (InsertReport, error) {
    report := InsertReport{Attempted: len(rows)}
    if len(rows) == 0 {
        return report, nil
    }

    conn, err := w.auditConn(ctx)
    if err != nil {
        return report, err
    }

    qtable, err := conn.dialect.quoteTable(w.audit.LogTable)
    if err != nil {
        return report, err
    }
    qcols := make([]string, len(auditColumns))
    for i, col := range auditColumns {
        qcols[i], err = conn.dialect.quoteIdent(col)
        if err != nil {
            return report, err
        }
    }

    batchErr := w.insertBatch(ctx, conn, qtable, qcols, rows)
    if batchErr == nil {
        report.Inserted = len(rows)
        return report, nil
    }
    log.WithError(batchErr).WithField("rows", len(rows)).Warn("Batch audit insert failed, retrying row by row")

    single := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
        qtable, strings.Join(qcols, ", "), conn.dialect.placeholderRow(1, len(auditColumns)))

    for _, row := range rows {
        if _, err := conn.db.ExecContext(ctx, single, auditRowArgs(row)...); err != nil {
            report.Failed++
            log.WithError(err).WithFields(log.Fields{
                "asset":  row.AssetName,
                "status": row.Status,
                "kind":   row.CheckKind,
            }).Error("Failed to insert audit row")
            continue
        }
        report.Inserted++
    }

    if report.Failed > 0 {
        return report, fmt.Errorf("%d of %d audit rows failed to insert", report.Failed, report.Attempted)
    }
    return report, nil
}

func (w *Warehouse) insertBatch(ctx context.Context, conn *pooledConn, qtable string, qcols []string, rows []audit.Row) error {
    tuples := make([]string, len(rows))
    args := make([]interface{}, 0, len(rows)*len(qcols))
    for i, row := range rows {
        tuples[i] = conn.dialect.placeholderRow(i*len(qcols)+1, len(qcols))
        args = append(args, auditRowArgs(row)...)
    }

    query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
        qtable, strings.Join(qcols, ", "), strings.Join(tuples, ", "))

    tx, err := conn.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    if _, err := tx.ExecContext(ctx, query, args...); err != nil {
        tx.Rollback()
        return err
    }
    return tx.Commit()
}
