package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"quantcore/backtest"
	"quantcore/metrics"
	"quantcore/types"
)

func (s *Server) registerBacktestRoutes(r *gin.RouterGroup) {
	r.POST("/strategies/:id/backtest", s.handleRunBacktest)
}

// handleRunBacktest runs the registered strategy against the posted bar
// history and records the result on the registry entry.
func (s *Server) handleRunBacktest(c *gin.Context) {
	id := c.Param("id")
	rec, err := s.Registry.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		Bars           []types.Bar `json:"bars" binding:"required"`
		Capital        float64     `json:"capital"`
		CommissionRate float64     `json:"commission_rate"`
		SlippageBps    float64     `json:"slippage_bps"`
		TPlusDays      int         `json:"t_plus_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	cfg := s.BacktestDefaults
	cfg.Market = firstMarket(rec.Definition.Markets)
	if req.Capital > 0 {
		cfg.Capital = req.Capital
	}
	if req.CommissionRate > 0 {
		cfg.CommissionRate = req.CommissionRate
	}
	if req.SlippageBps > 0 {
		cfg.SlippageBps = req.SlippageBps
	}
	if req.TPlusDays > 0 {
		cfg.TPlusDays = req.TPlusDays
	}

	start := time.Now()
	result, err := backtest.Run(c.Request.Context(), rec.Definition, req.Bars, cfg)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	metrics.UpdateBacktestMetrics(id, result.Sharpe, result.MaxDrawdownPct, time.Since(start).Seconds())

	updated, err := s.Registry.UpdateBacktest(id, result, time.Now().UnixMilli())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.persistRecord(updated)
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func firstMarket(markets []types.Market) types.Market {
	if len(markets) == 0 {
		return types.MarketCrypto
	}
	return markets[0]
}
