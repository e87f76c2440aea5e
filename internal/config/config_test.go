// internal/config/config_test.go
package config

import (
    "os"
    "path/filepath"
    "testing"
    "time"
)

func writeConfig(t *testing.T, content string) string {
    t.Helper()
    path := filepath.Join(t.TempDir(), "config.yaml")
    if err := os.WriteFile(path, []byte(content), 0644); err != nil {
        t.Fatalf("failed to write config: %v", err)
    }
    return path
}

const minimalConfig = `
connections:
  warehouse:
    host: db.internal
    database: dw
audit:
  connection_key: warehouse
`

func TestLoadAppliesDefaults(t *testing.T) {
    cfg, err := Load(writeConfig(t, minimalConfig))
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }

    if cfg.Server.Port != ":8080" {
        t.Fatalf("port = %q, want :8080", cfg.Server.Port)
    }
    if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
        t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
    }
    if cfg.Audit.LogTable != "fat_fiscal" {
        t.Fatalf("log table = %q", cfg.Audit.LogTable)
    }
    if cfg.Schedule.QueryTimeout != 300*time.Second {
        t.Fatalf("query timeout = %v, want 300s", cfg.Schedule.QueryTimeout)
    }

    conn := cfg.Connections["warehouse"]
    if conn.Driver != "mysql" || conn.Port != 3306 {
        t.Fatalf("unexpected connection defaults: %+v", conn)
    }
}

func TestLoadDriverPortDefaults(t *testing.T) {
    cfg, err := Load(writeConfig(t, `
connections:
  warehouse:
    host: db.internal
    database: dw
  reports:
    driver: sqlserver
    host: mssql.internal
    database: reports
  lake:
    driver: postgres
    host: pg.internal
    database: lake
audit:
  connection_key: warehouse
`))
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if cfg.Connections["reports"].Port != 1433 {
        t.Fatalf("sqlserver port = %d, want 1433", cfg.Connections["reports"].Port)
    }
    if cfg.Connections["lake"].Port != 5432 {
        t.Fatalf("postgres port = %d, want 5432", cfg.Connections["lake"].Port)
    }
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
    _, err := Load(writeConfig(t, `
connections:
  warehouse:
    driver: oracle
    host: db.internal
    database: dw
audit:
  connection_key: warehouse
`))
    if err == nil {
        t.Fatalf("expected error for unsupported driver")
    }
}

func TestLoadRejectsMissingAuditKey(t *testing.T) {
    _, err := Load(writeConfig(t, `
connections:
  warehouse:
    host: db.internal
    database: dw
audit:
  connection_key: nope
`))
    if err == nil {
        t.Fatalf("expected error for unknown audit connection key")
    }
}

func TestLoadRejectsIncompletePowerBI(t *testing.T) {
    _, err := Load(writeConfig(t, minimalConfig+`
powerbi:
  enabled: true
  tenant_id: abc
`))
    if err == nil {
        t.Fatalf("expected error for incomplete powerbi credentials")
    }
}

func TestLoadMissingFile(t *testing.T) {
    if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
        t.Fatalf("expected error for missing file")
    }
}
