package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"quantcore/alert"
	"quantcore/logger"
	"quantcore/types"
)

func (s *Server) registerAlertRoutes(r *gin.RouterGroup) {
	g := r.Group("/alerts")
	g.GET("", s.handleListAlerts)
	g.POST("", s.handleCreateAlert)
	g.POST("/:id/rearm", s.handleRearmAlert)
	g.POST("/evaluate", s.handleEvaluateAlerts)
}

func (s *Server) handleListAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"alerts": s.Alerts.List()})
}

// handleCreateAlert registers a new, untriggered alert.
func (s *Server) handleCreateAlert(c *gin.Context) {
	var req struct {
		Condition types.Condition `json:"condition" binding:"required"`
		Message   string          `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	a := s.Alerts.Create(uuid.New().String(), req.Condition, req.Message, time.Now().UnixMilli())
	if s.Store != nil {
		if err := s.Store.SaveAlert(a); err != nil {
			logger.Warnf("api: failed to persist alert %s: %v", a.ID, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"alert": a})
}

// handleRearmAlert resets a triggered alert so it can fire again.
func (s *Server) handleRearmAlert(c *gin.Context) {
	if err := s.Alerts.Rearm(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "alert rearmed"})
}

// handleEvaluateAlerts checks a price/P&L tick against every untriggered
// alert, persisting and returning the ones it fires.
func (s *Server) handleEvaluateAlerts(c *gin.Context) {
	var req struct {
		Symbol    string  `json:"symbol"`
		Price     float64 `json:"price"`
		AccountID string  `json:"account_id"`
		PnLPct    float64 `json:"pnl_pct"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	triggered := s.Alerts.Evaluate(alert.Tick{
		Symbol:    req.Symbol,
		Price:     req.Price,
		AccountID: req.AccountID,
		PnLPct:    req.PnLPct,
	}, time.Now().UnixMilli())

	if s.Store != nil {
		for _, a := range triggered {
			if err := s.Store.SaveAlert(a); err != nil {
				logger.Warnf("api: failed to persist triggered alert %s: %v", a.ID, err)
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"triggered": triggered})
}
