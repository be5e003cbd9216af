package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"quantcore/logger"
	"quantcore/types"
)

func (s *Server) registerRegistryRoutes(r *gin.RouterGroup) {
	g := r.Group("/strategies")
	g.GET("", s.handleListStrategies)
	g.POST("", s.handleCreateStrategy)
	g.GET("/:id", s.handleGetStrategy)
	g.PATCH("/:id/level", s.handleUpdateLevel)
	g.PATCH("/:id/status", s.handleUpdateStatus)
}

func (s *Server) persistRecord(rec types.Record) {
	if s.Store == nil {
		return
	}
	if err := s.Store.SaveRecord(rec); err != nil {
		logger.Warnf("api: failed to persist strategy %s: %v", rec.ID, err)
	}
}

// handleListStrategies returns every registered strategy, optionally
// filtered by ?level=.
func (s *Server) handleListStrategies(c *gin.Context) {
	var levelFilter *types.Level
	if lv := c.Query("level"); lv != "" {
		l := types.Level(lv)
		levelFilter = &l
	}
	c.JSON(http.StatusOK, gin.H{"strategies": s.Registry.List(levelFilter)})
}

// handleCreateStrategy registers a new strategy definition at L0_INCUBATE.
func (s *Server) handleCreateStrategy(c *gin.Context) {
	var req struct {
		Name        string                         `json:"name" binding:"required"`
		Version     string                         `json:"version"`
		Tag         string                         `json:"tag" binding:"required"`
		Markets     []types.Market                 `json:"markets" binding:"required"`
		Symbols     []string                       `json:"symbols" binding:"required"`
		Timeframes  []string                       `json:"timeframes"`
		Params      map[string]float64             `json:"params"`
		ParamRanges map[string]types.ParamRange     `json:"param_ranges"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	def := types.Definition{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Version:     req.Version,
		Tag:         req.Tag,
		Markets:     req.Markets,
		Symbols:     req.Symbols,
		Timeframes:  req.Timeframes,
		Params:      req.Params,
		ParamRanges: req.ParamRanges,
	}
	rec, err := s.Registry.Create(def, time.Now().UnixMilli())
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	s.persistRecord(rec)
	c.JSON(http.StatusOK, gin.H{"strategy": rec})
}

// handleGetStrategy returns one strategy's full registry record.
func (s *Server) handleGetStrategy(c *gin.Context) {
	rec, err := s.Registry.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"strategy": rec})
}

// handleUpdateLevel moves a strategy along (or off) the promotion ladder.
func (s *Server) handleUpdateLevel(c *gin.Context) {
	var req struct {
		Level types.Level `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	rec, err := s.Registry.UpdateLevel(c.Param("id"), req.Level, time.Now().UnixMilli())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.persistRecord(rec)
	c.JSON(http.StatusOK, gin.H{"strategy": rec})
}

// handleUpdateStatus pauses/resumes/stops a strategy without touching
// its promotion level.
func (s *Server) handleUpdateStatus(c *gin.Context) {
	var req struct {
		Status types.Status `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	rec, err := s.Registry.UpdateStatus(c.Param("id"), req.Status, time.Now().UnixMilli())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	s.persistRecord(rec)
	c.JSON(http.StatusOK, gin.H{"strategy": rec})
}
