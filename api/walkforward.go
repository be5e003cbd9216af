package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"quantcore/metrics"
	"quantcore/types"
	"quantcore/walkforward"
)

func (s *Server) registerWalkForwardRoutes(r *gin.RouterGroup) {
	r.POST("/strategies/:id/walkforward", s.handleRunWalkForward)
}

// handleRunWalkForward validates the strategy's out-of-sample robustness
// over the posted bar history and records the verdict on the registry
// entry.
func (s *Server) handleRunWalkForward(c *gin.Context) {
	id := c.Param("id")
	rec, err := s.Registry.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		Bars      []types.Bar `json:"bars" binding:"required"`
		Windows   int         `json:"windows"`
		Threshold float64     `json:"threshold"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	cfg := s.WalkForwardDefaults
	if req.Windows > 0 {
		cfg.Windows = req.Windows
	}
	if req.Threshold > 0 {
		cfg.Threshold = req.Threshold
	}
	backtestCfg := s.BacktestDefaults
	backtestCfg.Market = firstMarket(rec.Definition.Markets)

	result, err := walkforward.Validate(c.Request.Context(), rec.Definition, req.Bars, backtestCfg, cfg)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	metrics.UpdateWalkForwardMetrics(id, result.Ratio, result.Passed)

	updated, err := s.Registry.UpdateWalkForward(id, result, time.Now().UnixMilli())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.persistRecord(updated)
	c.JSON(http.StatusOK, gin.H{"result": result})
}
