// internal/web/handlers.go
package web

import (
    "context"
    "net/http"
    "strconv"

    "github.com/gin-gonic/gin"
    "github.com/sirupsen/logrus"

    "github.com/drogamais/Fiscal-BI/internal/engine"
    "github.com/drogamais/Fiscal-BI/internal/warehouse"
)

func (s *Server) getAssets(c *gin.Context) {
    filters := warehouse.AssetFilters{
        Group:       c.Query("group"),
        EnabledOnly: c.Query("enabled") == "true",
    }

    assets, err := s.store.GetAssets(c.Request.Context(), filters)
    if err != nil {
        logrus.WithError(err).Error("Failed to get assets")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get assets"})
        return
    }

    c.JSON(http.StatusOK, gin.H{
        "data":  assets,
        "count": len(assets),
    })
}

func (s *Server) createAsset(c *gin.Context) {
    var req warehouse.MonitoredAsset
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    if req.Name == "" || req.DateColumn == "" || req.ConnectionKey == "" {
        c.JSON(http.StatusBadRequest, gin.H{"error": "name, date_column and connection_key are required"})
        return
    }

    if err := s.store.CreateAsset(c.Request.Context(), req); err != nil {
        logrus.WithError(err).Error("Failed to create asset")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create asset"})
        return
    }

    c.JSON(http.StatusCreated, gin.H{"data": req})
}

func (s *Server) updateAsset(c *gin.Context) {
    var req warehouse.MonitoredAsset
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    req.Name = c.Param("name")

    if err := s.store.UpdateAsset(c.Request.Context(), req); err != nil {
        c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": req})
}

func (s *Server) deleteAsset(c *gin.Context) {
    if err := s.store.DeleteAsset(c.Request.Context(), c.Param("name")); err != nil {
        c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "Asset deleted"})
}

// replaceAssets swaps the whole asset configuration in one shot, the
// save semantics the admin UI uses.
func (s *Server) replaceAssets(c *gin.Context) {
    var req []warehouse.MonitoredAsset
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    if err := s.store.ReplaceAssets(c.Request.Context(), req); err != nil {
        logrus.WithError(err).Error("Failed to replace assets")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace assets"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"count": len(req)})
}

func (s *Server) getSyncPairs(c *gin.Context) {
    filters := warehouse.AssetFilters{
        Group:       c.Query("group"),
        EnabledOnly: c.Query("enabled") == "true",
    }

    pairs, err := s.store.GetSyncPairs(c.Request.Context(), filters)
    if err != nil {
        logrus.WithError(err).Error("Failed to get sync pairs")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get sync pairs"})
        return
    }

    c.JSON(http.StatusOK, gin.H{
        "data":  pairs,
        "count": len(pairs),
    })
}

func (s *Server) createSyncPair(c *gin.Context) {
    var req warehouse.SyncPair
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    if req.DownstreamTable == "" || req.UpstreamTable == "" || req.DateColumn == "" || req.ConnectionKey == "" {
        c.JSON(http.StatusBadRequest, gin.H{"error": "downstream_table, upstream_table, date_column and connection_key are required"})
        return
    }

    if err := s.store.CreateSyncPair(c.Request.Context(), req); err != nil {
        logrus.WithError(err).Error("Failed to create sync pair")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sync pair"})
        return
    }
    c.JSON(http.StatusCreated, gin.H{"data": req})
}

func (s *Server) updateSyncPair(c *gin.Context) {
    var req warehouse.SyncPair
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    req.DownstreamTable = c.Param("downstream")

    if err := s.store.UpdateSyncPair(c.Request.Context(), req); err != nil {
        c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"data": req})
}

func (s *Server) deleteSyncPair(c *gin.Context) {
    if err := s.store.DeleteSyncPair(c.Request.Context(), c.Param("downstream")); err != nil {
        c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "Sync pair deleted"})
}

func (s *Server) replaceSyncPairs(c *gin.Context) {
    var req []warehouse.SyncPair
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    if err := s.store.ReplaceSyncPairs(c.Request.Context(), req); err != nil {
        logrus.WithError(err).Error("Failed to replace sync pairs")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace sync pairs"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"count": len(req)})
}

func (s *Server) getTables(c *gin.Context) {
    tables, err := s.store.MonitoredTables(c.Request.Context())
    if err != nil {
        logrus.WithError(err).Error("Failed to list monitored tables")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list monitored tables"})
        return
    }

    c.JSON(http.StatusOK, gin.H{
        "data":  tables,
        "count": len(tables),
    })
}

type triggerRequest struct {
    Groups      []string `json:"groups"`
    SkipPowerBI bool     `json:"skip_powerbi"`
}

// triggerRun starts one audit run in the background. Runs serialize
// inside the engine, so a second trigger queues behind the first.
func (s *Server) triggerRun(c *gin.Context) {
    var req triggerRequest
    if c.Request.ContentLength > 0 {
        if err := c.ShouldBindJSON(&req); err != nil {
            c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
            return
        }
    }

    opts := engine.RunOptions{Groups: req.Groups, SkipPowerBI: req.SkipPowerBI}
    go func() {
        // Detached from the request context so the run survives the
        // HTTP response.
        if _, err := s.engine.Run(context.Background(), opts); err != nil {
            logrus.WithError(err).Error("Triggered audit run failed")
        }
    }()

    c.JSON(http.StatusAccepted, gin.H{"message": "Run started"})
}

func (s *Server) getRuns(c *gin.Context) {
    limit := 20
    if raw := c.Query("limit"); raw != "" {
        parsed, err := strconv.Atoi(raw)
        if err != nil || parsed < 0 {
            c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
            return
        }
        limit = parsed
    }

    runs, err := s.history.RecentRuns(limit)
    if err != nil {
        logrus.WithError(err).Error("Failed to load run history")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load run history"})
        return
    }

    c.JSON(http.StatusOK, gin.H{
        "data":  runs,
        "count": len(runs),
    })
}
