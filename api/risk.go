package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quantcore/metrics"
	"quantcore/risk"
)

func (s *Server) registerRiskRoutes(r *gin.RouterGroup) {
	r.POST("/risk/day-start", s.handleMarkDayStart)
	r.POST("/risk/evaluate", s.handleEvaluateRisk)
}

// handleMarkDayStart records the fund's day-start equity mark.
func (s *Server) handleMarkDayStart(c *gin.Context) {
	var req struct {
		Equity float64 `json:"equity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	s.Risk.MarkDayStart(req.Equity)
	c.JSON(http.StatusOK, gin.H{"message": "day start marked"})
}

// handleEvaluateRisk classifies the fund's current drawdown level and
// publishes the scale factor / drawdown gauges.
func (s *Server) handleEvaluateRisk(c *gin.Context) {
	var req struct {
		Equity      float64           `json:"equity" binding:"required"`
		Allocations []risk.Allocation `json:"allocations"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	status := s.Risk.Evaluate(req.Equity, req.Allocations)
	metrics.UpdateRiskMetrics(status.ScaleFactor, status.DailyDrawdown)
	c.JSON(http.StatusOK, gin.H{"status": status})
}
