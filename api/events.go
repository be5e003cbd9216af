package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"quantcore/metrics"
	"quantcore/types"
)

func (s *Server) registerEventRoutes(r *gin.RouterGroup) {
	g := r.Group("/events")
	g.GET("", s.handleListEvents)
	g.POST("/:id/approve", s.handleApproveEvent)
	g.POST("/:id/reject", s.handleRejectEvent)
}

// handleListEvents returns agent events, optionally filtered by
// ?status=pending|approved|rejected|completed.
func (s *Server) handleListEvents(c *gin.Context) {
	var statusFilter *types.AgentEventStatus
	if st := c.Query("status"); st != "" {
		v := types.AgentEventStatus(st)
		statusFilter = &v
	}
	c.JSON(http.StatusOK, gin.H{
		"events":  s.Events.ListEvents(statusFilter),
		"pending": s.Events.PendingCount(),
	})
}

// handleApproveEvent approves a pending agent event, letting its
// action proceed.
func (s *Server) handleApproveEvent(c *gin.Context) {
	if err := s.Events.Approve(c.Param("id"), time.Now().UnixMilli()); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	metrics.SetPendingEvents(s.Events.PendingCount())
	c.JSON(http.StatusOK, gin.H{"message": "event approved"})
}

// handleRejectEvent rejects a pending agent event with an optional
// reason recorded onto its detail field.
func (s *Server) handleRejectEvent(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	if err := s.Events.Reject(c.Param("id"), req.Reason, time.Now().UnixMilli()); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	metrics.SetPendingEvents(s.Events.PendingCount())
	c.JSON(http.StatusOK, gin.H{"message": "event rejected"})
}
