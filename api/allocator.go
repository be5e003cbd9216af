package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quantcore/allocator"
	"quantcore/metrics"
)

func (s *Server) registerAllocatorRoutes(r *gin.RouterGroup) {
	r.POST("/allocate", s.handleAllocate)
}

// handleAllocate runs the Half-Kelly allocator over the posted candidate
// set and correlation matrix, publishing the resulting per-strategy
// capital/weight gauges.
func (s *Server) handleAllocate(c *gin.Context) {
	var req struct {
		Candidates   []allocator.Candidate `json:"candidates" binding:"required"`
		TotalCapital float64                `json:"total_capital" binding:"required"`
		Constraints  *allocator.Constraints `json:"constraints"`
		Correlations []struct {
			A   string  `json:"a"`
			B   string  `json:"b"`
			Rho float64 `json:"rho"`
		} `json:"correlations"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	constraints := s.Constraints
	if req.Constraints != nil {
		constraints = *req.Constraints
	}
	correlations := make(map[[2]string]float64, len(req.Correlations))
	for _, p := range req.Correlations {
		correlations[[2]string{p.A, p.B}] = p.Rho
	}

	eligible := allocator.Eligible(req.Candidates)
	allocations, err := allocator.Allocate(eligible, req.TotalCapital, constraints, correlations)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	for _, a := range allocations {
		metrics.UpdateAllocationMetrics(a.StrategyID, a.CapitalUsd, a.WeightPct)
	}
	c.JSON(http.StatusOK, gin.H{"allocations": allocations})
}
