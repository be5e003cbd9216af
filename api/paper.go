package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"quantcore/logger"
	"quantcore/metrics"
	"quantcore/paper"
	"quantcore/types"
)

func (s *Server) registerPaperRoutes(r *gin.RouterGroup) {
	g := r.Group("/paper/accounts")
	g.GET("", s.handleListPaperAccounts)
	g.POST("", s.handleCreatePaperAccount)
	g.GET("/:id", s.handleGetPaperAccount)
	g.GET("/:id/orders", s.handleGetPaperOrders)
	g.POST("/:id/orders", s.handleSubmitPaperOrder)
	g.POST("/:id/prices", s.handleUpdatePaperPrices)
	g.POST("/:id/snapshot", s.handleRecordSnapshot)
	g.GET("/:id/snapshots", s.handleGetSnapshots)
	g.GET("/:id/decay", s.handleGetDecay)
}

func (s *Server) persistPaperAccount(state types.PaperAccountState) {
	if s.Store == nil {
		return
	}
	if err := s.Store.SavePaperAccount(state); err != nil {
		logger.Warnf("api: failed to persist paper account %s: %v", state.ID, err)
	}
}

func (s *Server) handleListPaperAccounts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"accounts": s.Paper.ListAccounts()})
}

// handleCreatePaperAccount opens a new paper account with the posted
// starting capital.
func (s *Server) handleCreatePaperAccount(c *gin.Context) {
	var req struct {
		Name    string  `json:"name" binding:"required"`
		Capital float64 `json:"capital" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	state, err := paper.CreateAccount(s.Paper, uuid.New().String(), req.Name, req.Capital, time.Now().UnixMilli())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.persistPaperAccount(state)
	metrics.UpdatePaperEquity(state.ID, state.Equity)
	c.JSON(http.StatusOK, gin.H{"account": state})
}

func (s *Server) handleGetPaperAccount(c *gin.Context) {
	state, err := s.Paper.GetAccountState(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": state})
}

// handleGetPaperOrders returns an account's order history, newest first,
// optionally capped by ?limit=.
func (s *Server) handleGetPaperOrders(c *gin.Context) {
	limit := 0
	if lv := c.Query("limit"); lv != "" {
		if n, err := strconv.Atoi(lv); err == nil {
			limit = n
		}
	}
	orders, err := s.Paper.GetOrders(c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// handleSubmitPaperOrder submits an order against the caller-supplied
// current price, filling it, rejecting it, or leaving an unsatisfied
// limit order pending.
func (s *Server) handleSubmitPaperOrder(c *gin.Context) {
	id := c.Param("id")
	var req struct {
		Symbol          string          `json:"symbol" binding:"required"`
		Side            types.OrderSide `json:"side" binding:"required"`
		Type            types.OrderType `json:"type" binding:"required"`
		Quantity        float64         `json:"quantity" binding:"required"`
		LimitPrice      float64         `json:"limit_price"`
		StopLoss        float64         `json:"stop_loss"`
		TakeProfit      float64         `json:"take_profit"`
		Reason          string          `json:"reason"`
		StrategyID      string          `json:"strategy_id"`
		Market          types.Market    `json:"market"`
		PrevClose       float64         `json:"prev_close"`
		IsST            bool            `json:"is_st"`
		TPlusDays       int             `json:"t_plus_days"`
		SlippageBps     float64         `json:"slippage_bps"`
		CommissionMaker bool            `json:"commission_maker"`
		CurrentPrice    float64         `json:"current_price" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	order, err := s.Paper.SubmitOrder(id, paper.OrderRequest{
		Symbol:          req.Symbol,
		Side:            req.Side,
		Type:            req.Type,
		Quantity:        req.Quantity,
		LimitPrice:      req.LimitPrice,
		StopLoss:        req.StopLoss,
		TakeProfit:      req.TakeProfit,
		Reason:          req.Reason,
		StrategyID:      req.StrategyID,
		Market:          req.Market,
		PrevClose:       req.PrevClose,
		IsST:            req.IsST,
		TPlusDays:       req.TPlusDays,
		SlippageBps:     req.SlippageBps,
		CommissionMaker: req.CommissionMaker,
	}, req.CurrentPrice, time.Now().UnixMilli())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	metrics.RecordPaperOrder(id, string(order.Status))

	if state, stateErr := s.Paper.GetAccountState(id); stateErr == nil {
		s.persistPaperAccount(state)
		metrics.UpdatePaperEquity(id, state.Equity)
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// handleUpdatePaperPrices marks positions to the posted symbol->price
// map, recomputes account equity, and re-evaluates pending limit orders
// and open positions' stop-loss/take-profit against the new prices.
func (s *Server) handleUpdatePaperPrices(c *gin.Context) {
	id := c.Param("id")
	var req struct {
		Prices map[string]float64 `json:"prices" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if err := s.Paper.UpdatePrices(id, req.Prices); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	acted, err := s.Paper.EvaluatePending(id, req.Prices, time.Now().UnixMilli())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	for _, order := range acted {
		metrics.RecordPaperOrder(id, string(order.Status))
	}
	state, err := s.Paper.GetAccountState(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	s.persistPaperAccount(state)
	metrics.UpdatePaperEquity(id, state.Equity)
	c.JSON(http.StatusOK, gin.H{"account": state, "orders_acted": acted})
}

// handleRecordSnapshot takes an equity snapshot now; cmd/quantcore's cron
// loop is the usual caller but this endpoint lets an operator force one.
func (s *Server) handleRecordSnapshot(c *gin.Context) {
	id := c.Param("id")
	snap, err := s.Paper.RecordSnapshot(id, time.Now().UnixMilli())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if s.Store != nil {
		if err := s.Store.AppendSnapshot(snap); err != nil {
			logger.Warnf("api: failed to persist snapshot for %s: %v", id, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"snapshot": snap})
}

func (s *Server) handleGetSnapshots(c *gin.Context) {
	snaps, err := s.Paper.GetSnapshots(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": snaps})
}

// handleGetDecay reports the account's rolling-statistics health read,
// mirroring it onto the decay gauge.
func (s *Server) handleGetDecay(c *gin.Context) {
	id := c.Param("id")
	decay, err := s.Paper.GetMetrics(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	metrics.UpdateDecayMetrics(id, string(decay.Level))
	c.JSON(http.StatusOK, gin.H{"decay": decay})
}
