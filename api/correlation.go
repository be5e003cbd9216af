package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quantcore/correlation"
)

func (s *Server) registerCorrelationRoutes(r *gin.RouterGroup) {
	r.POST("/correlation", s.handleComputeCorrelation)
}

// handleComputeCorrelation computes the pairwise Pearson correlation
// matrix across the posted strategies' daily-return series and reports
// which pairs exceed the high-correlation threshold.
func (s *Server) handleComputeCorrelation(c *gin.Context) {
	var req struct {
		Series []correlation.Series `json:"series" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	matrix, pairs, err := correlation.Compute(c.Request.Context(), req.Series)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matrix": matrix, "high_correlation_pairs": pairs})
}
