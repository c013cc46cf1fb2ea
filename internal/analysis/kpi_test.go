package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func series(netVolumes ...float64) []DailyAggregate {
	daily := make([]DailyAggregate, len(netVolumes))
	for i, v := range netVolumes {
		daily[i].Date = day(2025, 9, 1).AddDate(0, 0, i)
		if v >= 0 {
			daily[i].InboundVolume = v
		} else {
			daily[i].OutboundVolume = -v
		}
		daily[i].settle()
	}
	return daily
}

func TestAverageExcludesZeroDays(t *testing.T) {
	daily := series(5, 0, -5)
	k := CalculateKPIs(daily, SumDaily(daily))
	assert.Equal(t, 0.0, k.AvgNetFlowVolume)

	daily = series(6, 0, 0, 2)
	k = CalculateKPIs(daily, SumDaily(daily))
	assert.Equal(t, 4.0, k.AvgNetFlowVolume)

	daily = series(0, 0, 0)
	k = CalculateKPIs(daily, SumDaily(daily))
	assert.Equal(t, 0.0, k.AvgNetFlowVolume)
}

func TestPeakEarliestDayWinsTies(t *testing.T) {
	daily := series(3, 7, 7, 1)
	k := CalculateKPIs(daily, SumDaily(daily))
	assert.Equal(t, "2025-09-02", k.PeakInboundVolume.Date.String())
	assert.Equal(t, 7.0, k.PeakInboundVolume.Value)
}

func TestPeakRequiresPositiveTotal(t *testing.T) {
	daily := series(0, -4, 0)
	k := CalculateKPIs(daily, SumDaily(daily))
	assert.False(t, k.PeakInboundVolume.Date.Valid)
	assert.Zero(t, k.PeakInboundVolume.Value)
	assert.True(t, k.PeakOutboundVolume.Date.Valid)
	assert.Equal(t, "2025-09-02", k.PeakOutboundVolume.Date.String())
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 66.017872, RoundVolume(22.123456+33.456789+10.437627))
	assert.Equal(t, 0.0, RoundVolume(-0.0000001))
	assert.Equal(t, 2.0, RoundQty(2.5))
	assert.Equal(t, 4.0, RoundQty(3.5))
	assert.Equal(t, 0.0, RoundQty(-0.4))
}
