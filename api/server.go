// Package api exposes quantcore's pipeline over HTTP: strategy registry
// CRUD and promotion, backtest/walk-forward execution, paper trading,
// capital allocation, fund risk, correlation and leaderboard endpoints,
// and the alert/agent-event review queues. Handlers follow the teacher's
// gin convention: one method per route on *Server, gin.H JSON bodies,
// errors reported as {"error": "..."}.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"quantcore/allocator"
	"quantcore/alert"
	"quantcore/backtest"
	"quantcore/events"
	"quantcore/logger"
	"quantcore/paper"
	"quantcore/registry"
	"quantcore/risk"
	"quantcore/store"
	"quantcore/walkforward"
)

// requestLogger logs each request's method, path, status and latency
// through the process-wide structured logger, in place of gin's default
// writer-based access log.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Infof("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// Server bundles every in-process component an HTTP handler may need.
// It carries no per-request state; all mutable state lives in the
// packages it wraps, each already safe for concurrent use.
type Server struct {
	Registry *registry.Registry
	Paper    *paper.Engine
	Risk     *risk.Manager
	Alerts   *alert.Store
	Events   *events.Store
	Store    *store.Store

	BacktestDefaults    backtest.Config
	WalkForwardDefaults walkforward.Config
	Constraints         allocator.Constraints
}

// NewServer wires the given components into a Server. Callers (cmd/server)
// are responsible for loading persisted state into Registry/Paper/Alerts/
// Events before serving traffic.
func NewServer(reg *registry.Registry, paperEngine *paper.Engine, riskMgr *risk.Manager, alertStore *alert.Store, eventStore *events.Store, st *store.Store, backtestDefaults backtest.Config, wfDefaults walkforward.Config, constraints allocator.Constraints) *Server {
	return &Server{
		Registry:            reg,
		Paper:               paperEngine,
		Risk:                riskMgr,
		Alerts:              alertStore,
		Events:              eventStore,
		Store:               st,
		BacktestDefaults:     backtestDefaults,
		WalkForwardDefaults:  wfDefaults,
		Constraints:          constraints,
	}
}

// Router builds the gin engine and registers every route group.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	v1 := r.Group("/v1")
	{
		s.registerRegistryRoutes(v1)
		s.registerBacktestRoutes(v1)
		s.registerWalkForwardRoutes(v1)
		s.registerPaperRoutes(v1)
		s.registerAllocatorRoutes(v1)
		s.registerRiskRoutes(v1)
		s.registerCorrelationRoutes(v1)
		s.registerFitnessRoutes(v1)
		s.registerAlertRoutes(v1)
		s.registerEventRoutes(v1)
	}
	return r
}
