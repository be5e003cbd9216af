// Command quantcore runs the background daemon loop: on cfg.SnapshotCron
// it takes an equity snapshot of every paper account and evaluates
// fund-wide drawdown risk, and on a separate daily "0 0 * * *" schedule
// it marks the fund's day-start equity, mirroring
// auto_trader's scan-cycle loop but driven by a cron schedule instead of a
// fixed ticker, since snapshots only need to run on the hour/day boundary
// rather than continuously.
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"quantcore/config"
	"quantcore/events"
	"quantcore/logger"
	"quantcore/metrics"
	"quantcore/paper"
	"quantcore/risk"
	"quantcore/store"
	"quantcore/types"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)
	metrics.Init()

	st, err := store.Open(cfg.SQLitePath)
	if err != nil {
		logger.Errorf("quantcore: failed to open store at %s: %v", cfg.SQLitePath, err)
		return
	}
	defer st.Close()

	paperEngine := paper.NewEngine()
	accounts, err := st.LoadPaperAccounts()
	if err != nil {
		logger.Warnf("quantcore: failed to load paper accounts: %v", err)
	} else {
		snapshotsByAccount := make(map[string][]types.EquitySnapshot, len(accounts))
		for _, acc := range accounts {
			if snaps, err := st.LoadSnapshots(acc.ID); err == nil {
				snapshotsByAccount[acc.ID] = snaps
			}
		}
		paperEngine.Restore(accounts, snapshotsByAccount)
	}

	eventStore := events.New()
	persistedEvents, evErr := st.LoadEvents()
	eventStore.Restore(persistedEvents, evErr)
	eventStore.Subscribe(func(e types.AgentEvent) {
		if err := st.SaveEvent(e); err != nil {
			logger.Warnf("quantcore: failed to persist event %s: %v", e.ID, err)
		}
	})

	riskMgr := risk.NewManager()

	logger.Info("quantcore: daemon starting")
	logger.Infof("quantcore: snapshot schedule %q", cfg.SnapshotCron)

	c := cron.New()
	_, err = c.AddFunc(cfg.SnapshotCron, func() { runSnapshotCycle(st, paperEngine, riskMgr) })
	if err != nil {
		logger.Errorf("quantcore: invalid snapshot cron expression %q: %v", cfg.SnapshotCron, err)
		return
	}
	_, err = c.AddFunc("0 0 * * *", func() { markDayStart(paperEngine, riskMgr) })
	if err != nil {
		logger.Errorf("quantcore: invalid day-start cron expression: %v", err)
		return
	}
	c.Start()
	defer c.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("quantcore: shutting down")
}

// runSnapshotCycle takes an equity snapshot for every known paper
// account, persists it, publishes the decay/equity gauges and evaluates
// fund-wide risk against the aggregate equity.
func runSnapshotCycle(st *store.Store, paperEngine *paper.Engine, riskMgr *risk.Manager) {
	nowMs := time.Now().UnixMilli()
	accounts := paperEngine.ListAccounts()

	var totalEquity float64
	var allocations []risk.Allocation
	for _, acc := range accounts {
		snap, err := paperEngine.RecordSnapshot(acc.ID, nowMs)
		if err != nil {
			logger.Warnf("quantcore: snapshot failed for %s: %v", acc.ID, err)
			continue
		}
		if err := st.AppendSnapshot(snap); err != nil {
			logger.Warnf("quantcore: failed to persist snapshot for %s: %v", acc.ID, err)
		}
		metrics.UpdatePaperEquity(acc.ID, snap.Equity)
		totalEquity += snap.Equity
		allocations = append(allocations, risk.Allocation{CapitalUsd: snap.PositionsValue})

		if decay, err := paperEngine.GetMetrics(acc.ID); err == nil {
			metrics.UpdateDecayMetrics(acc.ID, string(decay.Level))
		}
		if state, err := paperEngine.GetAccountState(acc.ID); err == nil {
			if err := st.SavePaperAccount(state); err != nil {
				logger.Warnf("quantcore: failed to persist account %s: %v", acc.ID, err)
			}
		}
	}

	if len(accounts) == 0 {
		return
	}
	status := riskMgr.Evaluate(totalEquity, allocations)
	metrics.UpdateRiskMetrics(status.ScaleFactor, status.DailyDrawdown)
	logger.Infof("quantcore: snapshot cycle done, %d accounts, fund equity %.2f, risk level %s", len(accounts), totalEquity, status.Level)
}

// markDayStart marks today's fund-wide equity baseline for drawdown
// classification.
func markDayStart(paperEngine *paper.Engine, riskMgr *risk.Manager) {
	var totalEquity float64
	for _, acc := range paperEngine.ListAccounts() {
		totalEquity += acc.Equity
	}
	riskMgr.MarkDayStart(totalEquity)
	logger.Infof("quantcore: day-start equity marked at %.2f", totalEquity)
}
