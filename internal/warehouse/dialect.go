// internal/warehouse/dialect.go
package warehouse

import (
    "fmt"
    "net/url"
    "regexp"
    "strings"

    "github.com/drogamais/Fiscal-BI/internal/config"
)

// identPattern is the only shape of identifier accepted from
// configuration rows. Table and column names are interpolated into SQL
// text after quoting, so anything outside this set is rejected outright.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// dialect captures the per-driver differences: identifier quoting,
// bind-parameter style and DSN construction.
type dialect struct {
    name       string
    driverName string
}

func dialectFor(driver string) (*dialect, error) {
    switch driver {
    case "mysql":
        return &dialect{name: "mysql", driverName: "mysql"}, nil
    case "postgres":
        return &dialect{name: "postgres", driverName: "postgres"}, nil
    case "sqlserver":
        return &dialect{name: "sqlserver", driverName: "sqlserver"}, nil
    default:
        return nil, fmt.Errorf("unsupported driver %q", driver)
    }
}

// quoteIdent wraps a single validated identifier in the dialect's
// quoting characters.
func (d *dialect) quoteIdent(ident string) (string, error) {
    if !identPattern.MatchString(ident) {
        return "", fmt.Errorf("invalid identifier %q", ident)
    }
    switch d.name {
    case "mysql":
        return "`" + ident + "`", nil
    case "sqlserver":
        return "[" + ident + "]", nil
    default:
        return `"` + ident + `"`, nil
    }
}

// quoteTable accepts a bare table name or a schema-qualified one with a
// single dot, quoting each segment independently.
func (d *dialect) quoteTable(table string) (string, error) {
    parts := strings.Split(table, ".")
    if len(parts) > 2 {
        return "", fmt.Errorf("invalid table reference %q", table)
    }
    quoted := make([]string, 0, len(parts))
    for _, part := range parts {
        q, err := d.quoteIdent(part)
        if err != nil {
            return "", err
        }
        quoted = append(quoted, q)
    }
    return strings.Join(quoted, "."), nil
}

// placeholder renders the 1-based bind parameter n.
func (d *dialect) placeholder(n int) string {
    switch d.name {
    case "postgres":
        return fmt.Sprintf("$%d", n)
    case "sqlserver":
        return fmt.Sprintf("@p%d", n)
    default:
        return "?"
    }
}

// placeholderRow renders one parenthesized VALUES tuple of width cols,
// starting at bind position start.
func (d *dialect) placeholderRow(start, cols int) string {
    marks := make([]string, cols)
    for i := 0; i < cols; i++ {
        marks[i] = d.placeholder(start + i)
    }
    return "(" + strings.Join(marks, ", ") + ")"
}

// buildDSN renders the driver-specific connection string.
func (d *dialect) buildDSN(cfg config.ConnectionConfig) string {
    switch d.name {
    case "postgres":
        sslmode := cfg.SSLMode
        if sslmode == "" {
            sslmode = "disable"
        }
        return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
            cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, sslmode)
    case "sqlserver":
        query := url.Values{}
        query.Set("database", cfg.Database)
        if cfg.SSLMode == "require" {
            query.Set("encrypt", "true")
        } else {
            query.Set("encrypt", "disable")
        }
        u := &url.URL{
            Scheme:   "sqlserver",
            User:     url.UserPassword(cfg.User, cfg.Password),
            Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
            RawQuery: query.Encode(),
        }
        return u.String()
    default:
        dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=Local",
            cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
        if cfg.SSLMode == "require" {
            dsn += "&tls=true"
        }
        return dsn
    }
}
