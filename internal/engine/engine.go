// internal/engine/engine.go
package engine

import (
    "context"
    "fmt"
    "math"
    "sync"
    "time"

    "github.com/google/uuid"
    log "github.com/sirupsen/logrus"

    "github.com/drogamais/Fiscal-BI/internal/audit"
    "github.com/drogamais/Fiscal-BI/internal/check"
    "github.com/drogamais/Fiscal-BI/internal/config"
    "github.com/drogamais/Fiscal-BI/internal/metrics"
    "github.com/drogamais/Fiscal-BI/internal/powerbi"
    "github.com/drogamais/Fiscal-BI/internal/warehouse"
)

// HistoryStore is the slice of the run-history store the engine needs.
type HistoryStore interface {
    SaveRun(report interface{}) error
}

// BIClient resolves the latest refresh outcome of every visible
// dataset in the BI service.
type BIClient interface {
    LatestRefreshes(ctx context.Context) ([]powerbi.RefreshEvent, error)
}

// RunOptions narrows one run. An empty Groups list means every group.
type RunOptions struct {
    Groups      []string
    SkipPowerBI bool
}

// Report is the outcome of one audit run, persisted to history and
// broadcast to subscribers.
type Report struct {
    ID              string    `json:"id"`
    StartedAt       time.Time `json:"started_at"`
    FinishedAt      time.Time `json:"finished_at"`
    FreshnessChecks int       `json:"freshness_checks"`
    SyncChecks      int       `json:"sync_checks"`
    BaseChecks      int       `json:"base_checks"`
    RefreshChecks   int       `json:"refresh_checks"`
    RowsInserted    int       `json:"rows_inserted"`
    RowsFailed      int       `json:"rows_failed"`
    Errors          []string  `json:"errors,omitempty"`
    OK              bool      `json:"ok"`
}

// Engine runs the three warehouse check families plus the BI refresh
// sweep, writes the audit rows and reports the outcome. Runs are
// serialized; the scheduler and the API trigger share one lock.
type Engine struct {
    cfg       *config.Config
    store     warehouse.Store
    history   HistoryStore
    collector *metrics.Collector
    bi        BIClient
    notifier  func(*Report)

    runMu  sync.Mutex
    mu     sync.Mutex
    cancel context.CancelFunc
    done   chan struct{}
}

func New(cfg *config.Config, store warehouse.Store, history HistoryStore, collector *metrics.Collector, bi BIClient) *Engine {
    return &Engine{
        cfg:       cfg,
        store:     store,
        history:   history,
        collector: collector,
        bi:        bi,
    }
}

// SetNotifier installs the callback invoked after every finished run.
func (e *Engine) SetNotifier(fn func(*Report)) {
    e.notifier = fn
}

// Start launches the periodic scheduler. A non-positive interval
// disables it; runs can still be triggered through the API.
func (e *Engine) Start(ctx context.Context) {
    if e.cfg.Schedule.Interval <= 0 {
        log.Info("Scheduler disabled, runs are trigger-only")
        return
    }

    ctx, cancel := context.WithCancel(ctx)
    e.mu.Lock()
    e.cancel = cancel
    e.done = make(chan struct{})
    e.mu.Unlock()

    log.WithField("interval", e.cfg.Schedule.Interval).Info("Starting audit scheduler")

    go func() {
        defer close(e.done)
        ticker := time.NewTicker(e.cfg.Schedule.Interval)
        defer ticker.Stop()

        for {
            if _, err := e.Run(ctx, RunOptions{}); err != nil && ctx.Err() == nil {
                log.WithError(err).Error("Scheduled audit run failed")
            }
            select {
            case <-ctx.Done():
                return
            case <-ticker.C:
            }
        }
    }()
}

// Stop cancels the scheduler and waits for an in-flight run to finish.
func (e *Engine) Stop() {
    e.mu.Lock()
    cancel, done := e.cancel, e.done
    e.cancel, e.done = nil, nil
    e.mu.Unlock()

    if cancel != nil {
        cancel()
        <-done
    }
}

// Run executes one full audit pass and returns its report. The report
// is returned even when the run failed; the error mirrors report.OK.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*Report, error) {
    e.runMu.Lock()
    defer e.runMu.Unlock()
    defer e.store.ReleaseDataConnections()

    now := time.Now()
    report := &Report{
        ID:        uuid.New().String(),
        StartedAt: now,
    }

    log.WithFields(log.Fields{
        "run":    report.ID,
        "groups": opts.Groups,
    }).Info("Starting audit run")

    rows := e.collectRows(ctx, now, opts, report)

    if len(rows) > 0 {
        ins, err := e.store.InsertAuditRows(ctx, rows)
        report.RowsInserted = ins.Inserted
        report.RowsFailed = ins.Failed
        if err != nil {
            report.Errors = append(report.Errors, err.Error())
        }
    }

    report.FinishedAt = time.Now()
    report.OK = len(report.Errors) == 0

    e.collector.RecordRun(report.FinishedAt.Sub(report.StartedAt), map[string]int{
        string(audit.KindScheduled): report.FreshnessChecks + report.RefreshChecks,
        string(audit.KindSync):      report.SyncChecks,
        string(audit.KindBase):      report.BaseChecks,
    }, report.RowsInserted, report.RowsFailed, report.OK)

    if err := e.history.SaveRun(report); err != nil {
        log.WithError(err).Warn("Failed to persist run report")
    }
    if e.notifier != nil {
        e.notifier(report)
    }

    entry := log.WithFields(log.Fields{
        "run":      report.ID,
        "rows":     report.RowsInserted,
        "failed":   report.RowsFailed,
        "duration": report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond),
    })
    if !report.OK {
        entry.WithField("errors", len(report.Errors)).Warn("Audit run finished with errors")
        return report, fmt.Errorf("audit run finished with %d errors", len(report.Errors))
    }
    entry.Info("Audit run finished")
    return report, nil
}

func (e *Engine) collectRows(ctx context.Context, now time.Time, opts RunOptions, report *Report) []audit.Row {
    var rows []audit.Row

    // Connection keys that already failed this run. Assets on a dead
    // key are skipped without emitting rows; absence of evidence is
    // preferable to rows blaming healthy tables for a dead socket.
    deadKeys := make(map[string]bool)

    groups := make(map[string]bool, len(opts.Groups))
    for _, g := range opts.Groups {
        groups[g] = true
    }
    inScope := func(group string) bool {
        return len(groups) == 0 || groups[group]
    }

    assets, err := e.store.GetAssets(ctx, warehouse.AssetFilters{EnabledOnly: true})
    if err != nil {
        report.Errors = append(report.Errors, fmt.Sprintf("failed to load asset configuration: %v", err))
        return nil
    }
    pairs, err := e.store.GetSyncPairs(ctx, warehouse.AssetFilters{EnabledOnly: true})
    if err != nil {
        report.Errors = append(report.Errors, fmt.Sprintf("failed to load sync configuration: %v", err))
        return nil
    }

    for _, asset := range assets {
        if !inScope(asset.LogGroup) || deadKeys[asset.ConnectionKey] {
            continue
        }

        started := time.Now()
        reading, err := e.probe(ctx, asset.ConnectionKey, asset.Name, asset.DateColumn)
        if err != nil && warehouse.IsConnectionError(err) {
            deadKeys[asset.ConnectionKey] = true
            report.Errors = append(report.Errors, err.Error())
            log.WithError(err).WithField("asset", asset.Name).Error("Skipping connection for the rest of the run")
            continue
        }

        var row audit.Row
        switch {
        case asset.BaseCheck:
            report.BaseChecks++
            if err != nil {
                report.Errors = append(report.Errors, err.Error())
                row = audit.BaseRow(asset.ConnectionKey, asset.Name, string(asset.Tier), nil, nil)
            } else {
                row = audit.BaseRow(asset.ConnectionKey, asset.Name, string(asset.Tier), reading, staleDays(reading, now))
            }
        default:
            report.FreshnessChecks++
            res := e.evaluateFreshness(now, asset, reading, err, report)
            row = audit.FreshnessRow(asset.ConnectionKey, asset.Name, string(asset.Tier), res)
        }
        rows = append(rows, row)
        e.collector.RecordCheck(string(row.CheckKind), row.Status, time.Since(started))
    }

    for _, pair := range pairs {
        if !inScope(pair.LogGroup) || deadKeys[pair.ConnectionKey] {
            continue
        }

        started := time.Now()
        res, connErr := e.evaluateSync(ctx, now, pair, report)
        if connErr != nil {
            deadKeys[pair.ConnectionKey] = true
            report.Errors = append(report.Errors, connErr.Error())
            log.WithError(connErr).WithField("pair", pair.DownstreamTable).Error("Skipping connection for the rest of the run")
            continue
        }

        report.SyncChecks++
        row := audit.SyncRow(pair.ConnectionKey, pair.DownstreamTable, string(pair.DownstreamTier), res)
        rows = append(rows, row)
        e.collector.RecordCheck(string(row.CheckKind), row.Status, time.Since(started))
    }

    if e.cfg.PowerBI.Enabled && !opts.SkipPowerBI && e.bi != nil {
        rows = append(rows, e.collectRefreshRows(ctx, now, report)...)
    }

    return rows
}

// probe runs one MAX(column) query under the configured timeout.
func (e *Engine) probe(ctx context.Context, key, table, column string) (*time.Time, error) {
    qctx, cancel := context.WithTimeout(ctx, e.cfg.Schedule.QueryTimeout)
    defer cancel()
    return e.store.MaxTimestamp(qctx, key, table, column)
}

func (e *Engine) evaluateFreshness(now time.Time, asset warehouse.MonitoredAsset, reading *time.Time, probeErr error, report *Report) check.FreshnessResult {
    if probeErr != nil {
        report.Errors = append(report.Errors, probeErr.Error())
        return check.FreshnessFailure()
    }

    timeTol, err := check.ParseTimeOfDay(asset.TimeTolerance)
    if err != nil {
        // A malformed tolerance is a configuration blemish, not an
        // evaluation failure; the asset is still judged against the
        // default midnight cutoff.
        log.WithError(err).WithField("asset", asset.Name).Warn("Invalid time tolerance, using 00:00")
        timeTol = check.Midnight
    }

    cutoff := check.Cutoff(now, asset.DayTolerance, timeTol)
    res := check.EvaluateFreshness(now, reading, cutoff, timeTol)

    log.WithFields(log.Fields{
        "asset":  asset.Name,
        "status": res.Status.String(),
        "cutoff": cutoff.Format("2006-01-02 15:04"),
    }).Debug("Evaluated freshness")
    return res
}

// evaluateSync probes both sides of one pair. A connection error on
// either probe is returned so the caller can retire the key; query
// errors degrade to an EvaluationError result.
func (e *Engine) evaluateSync(ctx context.Context, now time.Time, pair warehouse.SyncPair, report *Report) (check.SyncResult, error) {
    upstream, err := e.probe(ctx, pair.ConnectionKey, pair.UpstreamTable, pair.DateColumn)
    if err != nil {
        if warehouse.IsConnectionError(err) {
            return check.SyncResult{}, err
        }
        report.Errors = append(report.Errors, err.Error())
        return check.SyncFailure(), nil
    }

    downstream, err := e.probe(ctx, pair.ConnectionKey, pair.DownstreamTable, pair.DateColumn)
    if err != nil {
        if warehouse.IsConnectionError(err) {
            return check.SyncResult{}, err
        }
        report.Errors = append(report.Errors, err.Error())
        return check.SyncFailure(), nil
    }

    return check.CompareSync(upstream, downstream, pair.ToleranceDays), nil
}

func (e *Engine) collectRefreshRows(ctx context.Context, now time.Time, report *Report) []audit.Row {
    events, err := e.bi.LatestRefreshes(ctx)
    if err != nil {
        report.Errors = append(report.Errors, fmt.Sprintf("powerbi sweep failed: %v", err))
        return nil
    }

    rows := make([]audit.Row, 0, len(events))
    for _, ev := range events {
        report.RefreshChecks++
        rows = append(rows, audit.RefreshRow(
            ev.Workspace, ev.Dataset, ev.Status, ev.EndTime,
            staleDays(ev.EndTime, now), staleHours(ev.EndTime, now)))
    }
    return rows
}

func staleDays(reading *time.Time, now time.Time) *int {
    if reading == nil {
        return nil
    }
    days := check.DaysBetween(*reading, now)
    return &days
}

func staleHours(reading *time.Time, now time.Time) *float64 {
    if reading == nil {
        return nil
    }
    hours := math.Round(now.Sub(*reading).Hours()*100) / 100
    return &hours
}
