package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestS9RiskClassificationThresholds(t *testing.T) {
	cases := []struct {
		equityPct float64
		want      Level
	}{
		{87, LevelCritical},
		{93, LevelWarning},
		{96, LevelCaution},
		{100, LevelNormal},
	}
	for _, c := range cases {
		m := NewManager()
		m.MarkDayStart(100)
		status := m.Evaluate(c.equityPct, nil)
		assert.Equal(t, c.want, status.Level, "equityPct=%v", c.equityPct)
	}
}

func TestScaleFactorTable(t *testing.T) {
	assert.Equal(t, 1.0, GetScaleFactor(LevelNormal))
	assert.Equal(t, 0.8, GetScaleFactor(LevelCaution))
	assert.Equal(t, 0.5, GetScaleFactor(LevelWarning))
	assert.Equal(t, 0.0, GetScaleFactor(LevelCritical))
}

func TestExposureAndCashReservePct(t *testing.T) {
	m := NewManager()
	m.MarkDayStart(1000)
	status := m.Evaluate(1000, []Allocation{{CapitalUsd: 300}, {CapitalUsd: 200}})
	assert.InDelta(t, 50.0, status.ExposurePct, 1e-9)
	assert.InDelta(t, 50.0, status.CashReservePct, 1e-9)
}

func TestPeakEquityIsMonotone(t *testing.T) {
	m := NewManager()
	m.MarkDayStart(1000)
	m.Evaluate(1200, nil)
	m.MarkDayStart(1100)
	assert.Equal(t, 1200.0, m.peakEquity)
}
