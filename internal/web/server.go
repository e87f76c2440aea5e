// internal/web/server.go
package web

import (
    "context"
    "encoding/json"
    "net/http"
    "sync"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/prometheus/client_golang/prometheus/promhttp"
    "github.com/sirupsen/logrus"

    "github.com/drogamais/Fiscal-BI/internal/config"
    "github.com/drogamais/Fiscal-BI/internal/engine"
    "github.com/drogamais/Fiscal-BI/internal/metrics"
    "github.com/drogamais/Fiscal-BI/internal/warehouse"
)

// RunHistory is the read side of the run-report store.
type RunHistory interface {
    RecentRuns(limit int) ([]json.RawMessage, error)
}

type Server struct {
    config  *config.Config
    store   warehouse.Store
    engine  *engine.Engine
    history RunHistory
    metrics *metrics.Collector
    router  *gin.Engine
    server  *http.Server

    wsMu      sync.Mutex
    wsClients map[*WSClient]bool

    sessionMu sync.Mutex
    sessions  map[string]time.Time
}

func NewServer(cfg *config.Config, store warehouse.Store, eng *engine.Engine, history RunHistory, collector *metrics.Collector) *Server {
    if cfg.Logging.Level != "debug" {
        gin.SetMode(gin.ReleaseMode)
    }

    router := gin.New()
    router.Use(gin.Logger())
    router.Use(gin.Recovery())
    router.Use(corsMiddleware())

    server := &Server{
        config:    cfg,
        store:     store,
        engine:    eng,
        history:   history,
        metrics:   collector,
        router:    router,
        wsClients: make(map[*WSClient]bool),
        sessions:  make(map[string]time.Time),
    }

    server.setupRoutes()

    if eng != nil {
        eng.SetNotifier(server.BroadcastRun)
    }
    return server
}

func (s *Server) Start(ctx context.Context) error {
    s.server = &http.Server{
        Addr:         s.config.Server.Port,
        Handler:      s.router,
        ReadTimeout:  s.config.Server.ReadTimeout,
        WriteTimeout: s.config.Server.WriteTimeout,
    }

    logrus.WithField("port", s.config.Server.Port).Info("Starting web server")

    go func() {
        if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            logrus.WithError(err).Fatal("Failed to start server")
        }
    }()

    return nil
}

func (s *Server) Stop(ctx context.Context) error {
    if s.server != nil {
        return s.server.Shutdown(ctx)
    }
    return nil
}

func (s *Server) setupRoutes() {
    api := s.router.Group("/api")
    {
        api.POST("/login", s.login)
        api.GET("/health", s.healthCheck)

        api.GET("/assets", s.getAssets)
        api.GET("/sync-pairs", s.getSyncPairs)
        api.GET("/tables", s.getTables)
        api.GET("/runs", s.getRuns)

        protected := api.Group("")
        protected.Use(s.requireAuth())
        {
            protected.POST("/assets", s.createAsset)
            protected.PUT("/assets", s.replaceAssets)
            protected.PUT("/assets/:name", s.updateAsset)
            protected.DELETE("/assets/:name", s.deleteAsset)

            protected.POST("/sync-pairs", s.createSyncPair)
            protected.PUT("/sync-pairs", s.replaceSyncPairs)
            protected.PUT("/sync-pairs/:downstream", s.updateSyncPair)
            protected.DELETE("/sync-pairs/:downstream", s.deleteSyncPair)

            protected.POST("/runs", s.triggerRun)
        }
    }

    // WebSocket endpoint
    s.router.GET("/ws", s.handleWebSocket)

    // Prometheus metrics
    if s.config.Prometheus.Enabled {
        s.router.GET(s.config.Prometheus.MetricsPath, gin.WrapH(promhttp.Handler()))
    }
}

func (s *Server) healthCheck(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{
        "status":    "healthy",
        "timestamp": time.Now(),
    })
}

func corsMiddleware() gin.HandlerFunc {
    return func(c *gin.Context) {
        c.Header("Access-Control-Allow-Origin", "*")
        c.Header("Access-Control-Allow-Credentials", "true")
        c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
        c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

        if c.Request.Method == "OPTIONS" {
            c.AbortWithStatus(204)
            return
        }

        c.Next()
    }
}
