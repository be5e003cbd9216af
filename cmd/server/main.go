// Command server runs quantcore's HTTP API: strategy registry, backtest
// and walk-forward execution, paper trading, capital allocation, fund
// risk, correlation and leaderboard endpoints, plus the alert/agent-event
// review queues. State is loaded from sqlite at startup and persisted
// incrementally by the handlers as it changes.
package main

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quantcore/alert"
	"quantcore/allocator"
	"quantcore/api"
	"quantcore/backtest"
	"quantcore/config"
	"quantcore/events"
	"quantcore/logger"
	"quantcore/metrics"
	"quantcore/paper"
	"quantcore/registry"
	"quantcore/risk"
	"quantcore/store"
	"quantcore/types"
	"quantcore/walkforward"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)
	metrics.Init()

	st, err := store.Open(cfg.SQLitePath)
	if err != nil {
		logger.Errorf("server: failed to open store at %s: %v", cfg.SQLitePath, err)
		return
	}
	defer st.Close()

	reg := registry.New()
	recs, loadErr := st.LoadRecords()
	reg.LoadBestEffort(recs, loadErr)

	paperEngine := paper.NewEngine()
	if accounts, err := st.LoadPaperAccounts(); err != nil {
		logger.Warnf("server: failed to load paper accounts: %v", err)
	} else {
		snapshotsByAccount := make(map[string][]types.EquitySnapshot, len(accounts))
		for _, acc := range accounts {
			snaps, err := st.LoadSnapshots(acc.ID)
			if err != nil {
				logger.Warnf("server: failed to load snapshots for %s: %v", acc.ID, err)
				continue
			}
			snapshotsByAccount[acc.ID] = snaps
		}
		paperEngine.Restore(accounts, snapshotsByAccount)
		logger.Infof("server: restored %d paper accounts", len(accounts))
	}

	eventStore := events.New()
	persistedEvents, evErr := st.LoadEvents()
	eventStore.Restore(persistedEvents, evErr)
	eventStore.Subscribe(func(e types.AgentEvent) {
		if err := st.SaveEvent(e); err != nil {
			logger.Warnf("server: failed to persist event %s: %v", e.ID, err)
		}
	})

	alertStore := alert.New(eventStore)
	if persistedAlerts, err := st.LoadAlerts(); err != nil {
		logger.Warnf("server: failed to load alerts: %v", err)
	} else {
		for _, a := range persistedAlerts {
			alertStore.Create(a.ID, a.Condition, a.Message, a.CreatedAt)
		}
	}

	riskMgr := risk.NewManager()

	backtestDefaults := backtest.Config{
		Capital:        100000,
		CommissionRate: 0.001,
		SlippageBps:    5,
	}
	wfDefaults := walkforward.Config{
		Windows:   5,
		Threshold: cfg.WalkForwardGate,
	}
	constraints := allocator.Constraints{
		CashReservePct:       20,
		MaxSingleStrategyPct: 25,
		MaxTotalExposurePct:  80,
		RebalanceFrequency:   "daily",
	}

	srv := api.NewServer(reg, paperEngine, riskMgr, alertStore, eventStore, st, backtestDefaults, wfDefaults, constraints)
	router := srv.Router()
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	logger.Infof("server: listening on %s", cfg.HTTPAddr)
	if err := router.Run(cfg.HTTPAddr); err != nil {
		logger.Errorf("server: exited: %v", err)
	}
}
