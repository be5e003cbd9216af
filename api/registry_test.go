package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantcore/alert"
	"quantcore/allocator"
	"quantcore/backtest"
	"quantcore/events"
	"quantcore/paper"
	"quantcore/registry"
	"quantcore/risk"
	"quantcore/walkforward"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer() *Server {
	eventStore := events.New()
	return NewServer(
		registry.New(),
		paper.NewEngine(),
		risk.NewManager(),
		alert.New(eventStore),
		eventStore,
		nil,
		backtest.Config{Capital: 100000, CommissionRate: 0.001},
		walkforward.Config{Windows: 3, Threshold: 0.6},
		allocator.Constraints{CashReservePct: 20, MaxSingleStrategyPct: 25, MaxTotalExposurePct: 80},
	)
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndGetStrategy(t *testing.T) {
	router := newTestServer().Router()

	rec := doRequest(t, router, http.MethodPost, "/v1/strategies", map[string]any{
		"name":    "sma cross",
		"tag":     "sma_cross",
		"markets": []string{"crypto"},
		"symbols": []string{"BTCUSDT"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var created struct {
		Strategy struct {
			ID    string `json:"ID"`
			Level string `json:"Level"`
		} `json:"strategy"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "L0_INCUBATE", created.Strategy.Level)
	assert.NotEmpty(t, created.Strategy.ID)

	getRec := doRequest(t, router, http.MethodGet, "/v1/strategies/"+created.Strategy.ID, nil)
	assert.Equal(t, http.StatusOK, getRec.Code)
}

func TestGetUnknownStrategyReturns404(t *testing.T) {
	router := newTestServer().Router()
	rec := doRequest(t, router, http.MethodGet, "/v1/strategies/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateLevelRejectsIllegalDemotion(t *testing.T) {
	router := newTestServer().Router()

	created := doRequest(t, router, http.MethodPost, "/v1/strategies", map[string]any{
		"name":    "rsi",
		"tag":     "rsi_oversold",
		"markets": []string{"crypto"},
		"symbols": []string{"ETHUSDT"},
	})
	var body struct {
		Strategy struct{ ID string } `json:"strategy"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &body))

	promote := doRequest(t, router, http.MethodPatch, "/v1/strategies/"+body.Strategy.ID+"/level", map[string]any{"level": "L2_PAPER"})
	require.Equal(t, http.StatusOK, promote.Code)

	demote := doRequest(t, router, http.MethodPatch, "/v1/strategies/"+body.Strategy.ID+"/level", map[string]any{"level": "L1_BACKTEST"})
	assert.Equal(t, http.StatusBadRequest, demote.Code)
}
