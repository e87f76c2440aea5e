// cmd/fiscald/main.go
package main

import (
    "context"
    "flag"
    "fmt"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/sirupsen/logrus"

    "github.com/drogamais/Fiscal-BI/internal/config"
    "github.com/drogamais/Fiscal-BI/internal/engine"
    "github.com/drogamais/Fiscal-BI/internal/history"
    "github.com/drogamais/Fiscal-BI/internal/metrics"
    "github.com/drogamais/Fiscal-BI/internal/powerbi"
    "github.com/drogamais/Fiscal-BI/internal/warehouse"
    "github.com/drogamais/Fiscal-BI/internal/web"
)

const appVersion = "1.0.0"

func main() {
    configFile := flag.String("config", "config.yaml", "Configuration file path")
    version := flag.Bool("version", false, "Show version information")
    flag.Parse()

    if *version {
        fmt.Printf("Fiscal-BI warehouse auditor v%s\n", appVersion)
        os.Exit(0)
    }

    cfg, err := config.Load(*configFile)
    if err != nil {
        logrus.Fatalf("Failed to load config: %v", err)
    }

    setupLogging(cfg.Logging)

    logrus.WithFields(logrus.Fields{
        "config_file": *configFile,
        "port":        cfg.Server.Port,
        "interval":    cfg.Schedule.Interval,
    }).Info("Starting Fiscal-BI auditor")

    runs, err := history.Open(cfg.History.Path, cfg.History.Retention)
    if err != nil {
        logrus.Fatalf("Failed to open run history: %v", err)
    }
    defer runs.Close()

    store := warehouse.Open(cfg)
    defer store.Close()

    collector := metrics.NewCollector()

    var bi engine.BIClient
    if cfg.PowerBI.Enabled {
        bi = powerbi.NewClient(cfg.PowerBI)
    }

    auditor := engine.New(cfg, store, runs, collector, bi)
    webServer := web.NewServer(cfg, store, auditor, runs, collector)

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    auditor.Start(ctx)
    webServer.Start(ctx)

    sigChan := make(chan os.Signal, 1)
    signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

    sig := <-sigChan
    logrus.WithField("signal", sig).Info("Received shutdown signal")

    cancel()
    auditor.Stop()

    shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer shutdownCancel()
    if err := webServer.Stop(shutdownCtx); err != nil {
        logrus.WithError(err).Warn("Web server shutdown failed")
    }

    logrus.Info("Shutdown complete")
}

func setupLogging(cfg config.LoggingConfig) {
    level, err := logrus.ParseLevel(cfg.Level)
    if err != nil {
        level = logrus.InfoLevel
    }
    logrus.SetLevel(level)

    if cfg.Format == "json" {
        logrus.SetFormatter(&logrus.JSONFormatter{})
    } else {
        logrus.SetFormatter(&logrus.TextFormatter{
            FullTimestamp: true,
        })
    }
}
