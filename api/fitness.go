package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quantcore/fitness"
	"quantcore/metrics"
)

func (s *Server) registerFitnessRoutes(r *gin.RouterGroup) {
	r.POST("/leaderboard", s.handleRankLeaderboard)
}

// handleRankLeaderboard scores and ranks the posted strategy profiles,
// publishing each survivor's fitness/rank gauges.
func (s *Server) handleRankLeaderboard(c *gin.Context) {
	var req struct {
		Profiles []fitness.Profile `json:"profiles" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	entries := fitness.Rank(req.Profiles)
	for _, e := range entries {
		metrics.UpdateFitnessMetrics(e.StrategyID, e.Score, e.Rank)
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
