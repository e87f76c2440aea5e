// cmd/fiscal-check/main.go
package main

import (
    "context"
    "encoding/json"
    "flag"
    "fmt"
    "os"
    "strings"

    "github.com/sirupsen/logrus"

    "github.com/drogamais/Fiscal-BI/internal/config"
    "github.com/drogamais/Fiscal-BI/internal/engine"
    "github.com/drogamais/Fiscal-BI/internal/metrics"
    "github.com/drogamais/Fiscal-BI/internal/powerbi"
    "github.com/drogamais/Fiscal-BI/internal/warehouse"
)

// discardHistory satisfies the engine without a history file; one-shot
// runs report to stdout instead.
type discardHistory struct{}

func (discardHistory) SaveRun(report interface{}) error { return nil }

func main() {
    configFile := flag.String("config", "config.yaml", "Configuration file path")
    groups := flag.String("groups", "", "Comma-separated log groups to audit (default all)")
    skipPowerBI := flag.Bool("skip-powerbi", false, "Skip the BI refresh sweep")
    flag.Parse()

    cfg, err := config.Load(*configFile)
    if err != nil {
        logrus.Fatalf("Failed to load config: %v", err)
    }

    level, err := logrus.ParseLevel(cfg.Logging.Level)
    if err != nil {
        level = logrus.InfoLevel
    }
    logrus.SetLevel(level)

    store := warehouse.Open(cfg)
    defer store.Close()

    var bi engine.BIClient
    if cfg.PowerBI.Enabled {
        bi = powerbi.NewClient(cfg.PowerBI)
    }

    auditor := engine.New(cfg, store, discardHistory{}, metrics.NewCollector(), bi)

    opts := engine.RunOptions{SkipPowerBI: *skipPowerBI}
    if *groups != "" {
        for _, group := range strings.Split(*groups, ",") {
            if trimmed := strings.TrimSpace(group); trimmed != "" {
                opts.Groups = append(opts.Groups, trimmed)
            }
        }
    }

    report, err := auditor.Run(context.Background(), opts)
    if report != nil {
        if encoded, jsonErr := json.MarshalIndent(report, "", "  "); jsonErr == nil {
            fmt.Println(string(encoded))
        }
    }
    if err != nil {
        os.Exit(1)
    }
}
