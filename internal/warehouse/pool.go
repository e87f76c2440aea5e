// internal/warehouse/pool.go
package warehouse

import (
    "context"
    "database/sql"
    "sync"

    log "github.com/sirupsen/logrus"

    "github.com/drogamais/Fiscal-BI/internal/config"

    _ "github.com/go-sql-driver/mysql"
    _ "github.com/lib/pq"
    _ "github.com/microsoft/go-mssqldb"
)

type pooledConn struct {
    db      *sql.DB
    dialect *dialect
}

// pool lazily opens one *sql.DB per configured connection key and keeps
// it for the lifetime of the run. Opening is verified with a ping so a
// dead data source surfaces as a ConnectionError on first use instead
// of on first query.
type pool struct {
    mu      sync.Mutex
    configs map[string]config.ConnectionConfig
    open    map[string]*pooledConn
}

func newPool(configs map[string]config.ConnectionConfig) *pool {
    return &pool{
        configs: configs,
        open:    make(map[string]*pooledConn),
    }
}

func (p *pool) get(ctx context.Context, key string) (*pooledConn, error) {
    p.mu.Lock()
    defer p.mu.Unlock()

    if conn, ok := p.open[key]; ok {
        return conn, nil
    }

    cfg, ok := p.configs[key]
    if !ok {
        return nil, &ConnectionError{Key: key, Err: ErrUnknownConnection}
    }

    d, err := dialectFor(cfg.Driver)
    if err != nil {
        return nil, &ConnectionError{Key: key, Err: err}
    }

    db, err := sql.Open(d.driverName, d.buildDSN(cfg))
    if err != nil {
        return nil, &ConnectionError{Key: key, Err: err}
    }
    if err := db.PingContext(ctx); err != nil {
        db.Close()
        return nil, &ConnectionError{Key: key, Err: err}
    }

    log.WithFields(log.Fields{
        "connection": key,
        "driver":     cfg.Driver,
        "host":       cfg.Host,
    }).Debug("Opened data source connection")

    conn := &pooledConn{db: db, dialect: d}
    p.open[key] = conn
    return conn, nil
}

// closeAll releases every open handle. Safe to call between runs; the
// next access reopens lazily.
func (p *pool) closeAll() {
    p.mu.Lock()
    defer p.mu.Unlock()

    for key, conn := range p.open {
        if err := conn.db.Close(); err != nil {
            log.WithError(err).WithField("connection", key).Warn("Failed to close data source connection")
        }
        delete(p.open, key)
    }
}
