// internal/config/config.go
package config

import (
    "fmt"
    "os"
    "time"

    "gopkg.in/yaml.v3"
)

type Config struct {
    Server      ServerConfig                `yaml:"server"`
    Logging     LoggingConfig               `yaml:"logging"`
    Connections map[string]ConnectionConfig `yaml:"connections"`
    Audit       AuditConfig                 `yaml:"audit"`
    Schedule    ScheduleConfig              `yaml:"schedule"`
    History     HistoryConfig               `yaml:"history"`
    PowerBI     PowerBIConfig               `yaml:"powerbi"`
    Admin       AdminConfig                 `yaml:"admin"`
    Prometheus  PrometheusConfig            `yaml:"prometheus"`
}

type ServerConfig struct {
    Port         string        `yaml:"port"`
    ReadTimeout  time.Duration `yaml:"read_timeout"`
    WriteTimeout time.Duration `yaml:"write_timeout"`
}

type LoggingConfig struct {
    Level  string `yaml:"level"`
    Format string `yaml:"format"`
}

// ConnectionConfig describes one named data source. The map key is the
// connection key monitored assets refer to.
type ConnectionConfig struct {
    Driver   string `yaml:"driver"` // mysql | postgres | sqlserver
    Host     string `yaml:"host"`
    Port     int    `yaml:"port"`
    User     string `yaml:"user"`
    Password string `yaml:"password"`
    Database string `yaml:"database"`
    SSLMode  string `yaml:"ssl_mode"`
}

// AuditConfig names the sink connection and the tables holding the
// audit log and the monitored-asset configuration.
type AuditConfig struct {
    ConnectionKey string `yaml:"connection_key"`
    LogTable      string `yaml:"log_table"`
    AssetsTable   string `yaml:"assets_table"`
    SyncTable     string `yaml:"sync_table"`
}

type ScheduleConfig struct {
    Interval     time.Duration `yaml:"interval"` // zero disables the scheduler
    QueryTimeout time.Duration `yaml:"query_timeout"`
}

type HistoryConfig struct {
    Path      string `yaml:"path"`
    Retention int    `yaml:"retention"`
}

type PowerBIConfig struct {
    Enabled      bool   `yaml:"enabled"`
    TenantID     string `yaml:"tenant_id"`
    ClientID     string `yaml:"client_id"`
    ClientSecret string `yaml:"client_secret"`
    LoginURL     string `yaml:"login_url"`
    APIURL       string `yaml:"api_url"`
}

type AdminConfig struct {
    Password string `yaml:"password"`
}

type PrometheusConfig struct {
    Enabled     bool   `yaml:"enabled"`
    MetricsPath string `yaml:"metrics_path"`
}

func Load(filename string) (*Config, error) {
    data, err := os.ReadFile(filename)
    if err != nil {
        return nil, fmt.Errorf("failed to read config file: %w", err)
    }

    var config Config
    if err := yaml.Unmarshal(data, &config); err != nil {
        return nil, fmt.Errorf("failed to parse YAML: %w", err)
    }

    setDefaults(&config)

    if err := validate(&config); err != nil {
        return nil, fmt.Errorf("invalid configuration: %w", err)
    }

    return &config, nil
}

func setDefaults(config *Config) {
    if config.Server.Port == "" {
        config.Server.Port = ":8080"
    }
    if config.Server.ReadTimeout == 0 {
        config.Server.ReadTimeout = 30 * time.Second
    }
    if config.Server.WriteTimeout == 0 {
        config.Server.WriteTimeout = 30 * time.Second
    }
    if config.Logging.Level == "" {
        config.Logging.Level = "info"
    }
    if config.Logging.Format == "" {
        config.Logging.Format = "text"
    }
    if config.Audit.LogTable == "" {
        config.Audit.LogTable = "fat_fiscal"
    }
    if config.Audit.AssetsTable == "" {
        config.Audit.AssetsTable = "dim_monitored_assets"
    }
    if config.Audit.SyncTable == "" {
        config.Audit.SyncTable = "dim_sync_pairs"
    }
    if config.Schedule.QueryTimeout == 0 {
        config.Schedule.QueryTimeout = 300 * time.Second
    }
    if config.History.Path == "" {
        config.History.Path = "data/runs.db"
    }
    if config.History.Retention == 0 {
        config.History.Retention = 200
    }
    if config.PowerBI.LoginURL == "" {
        config.PowerBI.LoginURL = "https://login.microsoftonline.com"
    }
    if config.PowerBI.APIURL == "" {
        config.PowerBI.APIURL = "https://api.powerbi.com"
    }
    if config.Prometheus.MetricsPath == "" {
        config.Prometheus.MetricsPath = "/metrics"
    }

    for key, conn := range config.Connections {
        if conn.Driver == "" {
            conn.Driver = "mysql"
        }
        if conn.Port == 0 {
            switch conn.Driver {
            case "postgres":
                conn.Port = 5432
            case "sqlserver":
                conn.Port = 1433
            default:
                conn.Port = 3306
            }
        }
        config.Connections[key] = conn
    }
}

func validate(config *Config) error {
    if len(config.Connections) == 0 {
        return fmt.Errorf("at least one connection must be configured")
    }

    for key, conn := range config.Connections {
        switch conn.Driver {
        case "mysql", "postgres", "sqlserver":
        default:
            return fmt.Errorf("connection %q: unsupported driver %q", key, conn.Driver)
        }
        if conn.Host == "" {
            return fmt.Errorf("connection %q: host is required", key)
        }
        if conn.Database == "" {
            return fmt.Errorf("connection %q: database is required", key)
        }
    }

    if config.Audit.ConnectionKey == "" {
        return fmt.Errorf("audit.connection_key is required")
    }
    if _, ok := config.Connections[config.Audit.ConnectionKey]; !ok {
        return fmt.Errorf("audit.connection_key %q is not a configured connection", config.Audit.ConnectionKey)
    }

    if config.PowerBI.Enabled {
        if config.PowerBI.TenantID == "" || config.PowerBI.ClientID == "" || config.PowerBI.ClientSecret == "" {
            return fmt.Errorf("powerbi requires tenant_id, client_id and client_secret when enabled")
        }
    }

    return nil
}
