// Package metrics exposes the process's prometheus gauges/counters/
// histograms on a custom registry, following the teacher's promauto
// convention: one namespace, one subsystem per concern, plain Set/Inc/
// Observe helpers so callers never touch the vectors directly. The
// Update* helpers are guarded by a single mutex; RecordPaperOrder and
// SetPendingEvents are not.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registry is the custom prometheus registry for quantcore metrics.
	Registry = prometheus.NewRegistry()

	mu sync.RWMutex

	// ============================================
	// Backtest / walk-forward metrics
	// ============================================

	BacktestSharpe = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "quantcore",
			Subsystem: "backtest",
			Name:      "sharpe",
			Help:      "Sharpe ratio of the most recent backtest run",
		},
		[]string{"strategy_id"},
	)

	BacktestMaxDrawdownPct = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "quantcore",
			Subsystem: "backtest",
			Name:      "max_drawdown_pct",
			Help:      "Max drawdown percentage of the most recent backtest run",
		},
		[]string{"strategy_id"},
	)

	BacktestRunsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quantcore",
			Subsystem: "backtest",
			Name:      "runs_total",
			Help:      "Total number of backtest runs executed",
		},
		[]string{"strategy_id"},
	)

	BacktestDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "quantcore",
			Subsystem: "backtest",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of a backtest run",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"strategy_id"},
	)

	WalkForwardRatio = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "quantcore",
			Subsystem: "walkforward",
			Name:      "ratio",
			Help:      "Combined test Sharpe / average train Sharpe",
		},
		[]string{"strategy_id"},
	)

	WalkForwardPassed = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "quantcore",
			Subsystem: "walkforward",
			Name:      "passed",
			Help:      "Whether the strategy passed walk-forward validation (1) or not (0)",
		},
		[]string{"strategy_id"},
	)

	// ============================================
	// Fitness / allocator metrics
	// ============================================

	FitnessScore = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "quantcore",
			Subsystem: "fitness",
			Name:      "score",
			Help:      "Composite fitness score used for leaderboard ranking",
		},
		[]string{"strategy_id"},
	)

	LeaderboardRank = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "quantcore",
			Subsystem: "fitness",
			Name:      "rank",
			Help:      "1-indexed leaderboard rank, lower is better",
		},
		[]string{"strategy_id"},
	)

	AllocatedCapitalUSD = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "quantcore",
			Subsystem: "allocator",
			Name:      "capital_usd",
			Help:      "Capital allocated to a strategy in USD",
		},
		[]string{"strategy_id"},
	)

	AllocatedWeightPct = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "quantcore",
			Subsystem: "allocator",
			Name:      "weight_pct",
			Help:      "Percentage of total capital allocated to a strategy",
		},
		[]string{"strategy_id"},
	)

	// ============================================
	// Risk / decay metrics
	// ============================================

	RiskScaleFactor = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: "quantcore",
			Subsystem: "risk",
			Name:      "scale_factor",
			Help:      "Fund-wide position size scale factor from the daily drawdown classification",
		},
	)

	RiskDrawdownPct = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: "quantcore",
			Subsystem: "risk",
			Name:      "daily_drawdown_pct",
			Help:      "Today's fund-wide drawdown from the day-start equity mark",
		},
	)

	DecayLevel = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "quantcore",
			Subsystem: "decay",
			Name:      "level",
			Help:      "Paper-account decay classification: 0=healthy 1=warning 2=degrading 3=critical",
		},
		[]string{"account_id"},
	)

	// ============================================
	// Paper trading metrics
	// ============================================

	PaperEquity = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "quantcore",
			Subsystem: "paper",
			Name:      "equity",
			Help:      "Current paper account equity",
		},
		[]string{"account_id"},
	)

	PaperOrdersTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quantcore",
			Subsystem: "paper",
			Name:      "orders_total",
			Help:      "Total paper orders submitted, by resulting status",
		},
		[]string{"account_id", "status"},
	)

	// ============================================
	// System metrics
	// ============================================

	EventQueuePending = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: "quantcore",
			Subsystem: "events",
			Name:      "pending_count",
			Help:      "Number of agent events awaiting approval",
		},
	)
)

// UpdateBacktestMetrics records a completed backtest run's headline
// metrics.
func UpdateBacktestMetrics(strategyID string, sharpe, maxDrawdownPct, durationSeconds float64) {
	mu.Lock()
	defer mu.Unlock()

	BacktestSharpe.WithLabelValues(strategyID).Set(sharpe)
	BacktestMaxDrawdownPct.WithLabelValues(strategyID).Set(maxDrawdownPct)
	BacktestRunsTotal.WithLabelValues(strategyID).Inc()
	BacktestDuration.WithLabelValues(strategyID).Observe(durationSeconds)
}

// UpdateWalkForwardMetrics records a completed walk-forward validation run.
func UpdateWalkForwardMetrics(strategyID string, ratio float64, passed bool) {
	mu.Lock()
	defer mu.Unlock()

	WalkForwardRatio.WithLabelValues(strategyID).Set(ratio)
	val := 0.0
	if passed {
		val = 1.0
	}
	WalkForwardPassed.WithLabelValues(strategyID).Set(val)
}

// UpdateFitnessMetrics records a strategy's leaderboard standing.
func UpdateFitnessMetrics(strategyID string, score float64, rank int) {
	mu.Lock()
	defer mu.Unlock()

	FitnessScore.WithLabelValues(strategyID).Set(score)
	LeaderboardRank.WithLabelValues(strategyID).Set(float64(rank))
}

// UpdateAllocationMetrics records the capital/weight assigned to a
// strategy by the most recent allocation run.
func UpdateAllocationMetrics(strategyID string, capitalUSD, weightPct float64) {
	mu.Lock()
	defer mu.Unlock()

	AllocatedCapitalUSD.WithLabelValues(strategyID).Set(capitalUSD)
	AllocatedWeightPct.WithLabelValues(strategyID).Set(weightPct)
}

// UpdateRiskMetrics records the fund-wide risk classification.
func UpdateRiskMetrics(scaleFactor, drawdownPct float64) {
	mu.Lock()
	defer mu.Unlock()

	RiskScaleFactor.Set(scaleFactor)
	RiskDrawdownPct.Set(drawdownPct)
}

// decayLevelValue maps a decay classification to an ordinal gauge value.
func decayLevelValue(level string) float64 {
	switch level {
	case "healthy":
		return 0
	case "warning":
		return 1
	case "degrading":
		return 2
	case "critical":
		return 3
	default:
		return -1
	}
}

// UpdateDecayMetrics records a paper account's decay classification.
func UpdateDecayMetrics(accountID, level string) {
	mu.Lock()
	defer mu.Unlock()

	DecayLevel.WithLabelValues(accountID).Set(decayLevelValue(level))
}

// UpdatePaperEquity records a paper account's current equity.
func UpdatePaperEquity(accountID string, equity float64) {
	mu.Lock()
	defer mu.Unlock()

	PaperEquity.WithLabelValues(accountID).Set(equity)
}

// RecordPaperOrder increments the paper order counter for the given
// resulting status ("filled", "pending", "rejected").
func RecordPaperOrder(accountID, status string) {
	PaperOrdersTotal.WithLabelValues(accountID, status).Inc()
}

// SetPendingEvents records the agent event store's pending count.
func SetPendingEvents(count int) {
	EventQueuePending.Set(float64(count))
}

// Init registers the standard go/process collectors alongside the
// domain-specific ones above.
func Init() {
	Registry.MustRegister(prometheus.NewGoCollector())
	Registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
}
