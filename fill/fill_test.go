package fill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantcore/types"
)

func TestSlippageBuyAndSell(t *testing.T) {
	fillPrice, cost := Slippage(100, Buy, 10)
	assert.InDelta(t, 100.1, fillPrice, 1e-9)
	assert.InDelta(t, 0.1, cost, 1e-9)

	fillPrice, cost = Slippage(100, Sell, 10)
	assert.InDelta(t, 99.9, fillPrice, 1e-9)
	assert.InDelta(t, 0.1, cost, 1e-9)
}

func TestCommissionTableByMarket(t *testing.T) {
	assert.InDelta(t, 10, Commission(types.MarketCrypto, Buy, 10000, false), 1e-9)
	assert.InDelta(t, 8, Commission(types.MarketCrypto, Buy, 10000, true), 1e-9)
	assert.InDelta(t, 5, Commission(types.MarketUSEquity, Buy, 10000, false), 1e-9)
	// HK sell: taker 5bps + 10bps stamp duty = 15bps
	assert.InDelta(t, 15, Commission(types.MarketHKEquity, Sell, 10000, false), 1e-9)
	// CN A-share sell: 3bps + 10bps stamp duty
	assert.InDelta(t, 13, Commission(types.MarketCNAShare, Sell, 10000, false), 1e-9)
	// zero notional
	assert.Equal(t, 0.0, Commission(types.MarketCrypto, Buy, 0, false))
	// unknown market falls back to equity
	assert.InDelta(t, 5, Commission(types.Market("unknown"), Buy, 10000, false), 1e-9)
}

func TestValidateLotEnforcesHKAndCNBuyOnly(t *testing.T) {
	assert.NoError(t, ValidateLot(types.MarketHKEquity, Buy, 200))
	assert.Error(t, ValidateLot(types.MarketHKEquity, Buy, 150))
	assert.NoError(t, ValidateLot(types.MarketHKEquity, Sell, 150)) // sell not enforced
	assert.NoError(t, ValidateLot(types.MarketCrypto, Buy, 0.0001))
	assert.NoError(t, ValidateLot(types.MarketUSEquity, Buy, 7)) // declared but not enforced
}

func TestValidatePriceLimitCNAShare(t *testing.T) {
	assert.NoError(t, ValidatePriceLimit(types.MarketCNAShare, "600000.SH", 109, 100, false))
	assert.Error(t, ValidatePriceLimit(types.MarketCNAShare, "600000.SH", 111, 100, false))
	// ChiNext override to +-20%
	assert.NoError(t, ValidatePriceLimit(types.MarketCNAShare, "300750.SZ", 119, 100, false))
	// ST override to +-5% takes priority over ChiNext
	assert.Error(t, ValidatePriceLimit(types.MarketCNAShare, "300999.SZ", 108, 100, true))
	// no prev close means check is skipped
	assert.NoError(t, ValidatePriceLimit(types.MarketCNAShare, "600000.SH", 999, 0, false))
	// non-CN markets unrestricted
	assert.NoError(t, ValidatePriceLimit(types.MarketUSEquity, "AAPL", 999, 100, false))
}

func TestConsumeSettledFIFO(t *testing.T) {
	lots := []types.SettlementLot{
		{Quantity: 10, EntryPrice: 1, SettlableAfter: 1000},
		{Quantity: 5, EntryPrice: 1, SettlableAfter: 2000},
	}
	out, err := ConsumeSettledFIFO(lots, 7, 1500)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.InDelta(t, 3, out[0].Quantity, 1e-9)
	assert.InDelta(t, 5, out[1].Quantity, 1e-9)

	_, err = ConsumeSettledFIFO(lots, 100, 1500)
	assert.Error(t, err)

	_, err = ConsumeSettledFIFO(lots, 12, 1500)
	assert.Error(t, err) // only 10 settlable at t=1500
}
