package features

import "math"

const (
	MomentumWindow   = 63
	VolatilityWindow = 20
	CAGRBars         = 756
	SpikeLongWindow  = 63
	SpikeShortWindow = 15
	BreakoutMinBars  = 100

	tradingDaysPerYear = 252
)

// Momentum3M blends the 63-bar price change with the change in average
// volume between the last two 15-bar blocks. The price leg saturates at +50%
// and the volume leg at +100%; declines count as zero. Result is in [0,1].
func Momentum3M(closes, volumes []float64) float64 {
	n := len(closes)
	if n < MomentumWindow || len(volumes) != n {
		return 0
	}
	base := closes[n-MomentumWindow]
	if base <= 0 {
		return 0
	}
	priceChg := (closes[n-1]/base - 1) * 100

	recent := mean(volumes[n-SpikeShortWindow:])
	prior := mean(volumes[n-2*SpikeShortWindow : n-SpikeShortWindow])
	volChg := 0.0
	if prior > 0 {
		volChg = (recent/prior - 1) * 100
	}

	score := 0.7*clamp(priceChg/50, 0, 1) + 0.3*clamp(volChg/100, 0, 1)
	return finiteOr(score, 0)
}

// AnnualizedVolatility is the stdev of daily returns over the trailing
// window scaled by sqrt(252), in percent.
func AnnualizedVolatility(closes []float64, window int) float64 {
	if window < 2 || len(closes) < window {
		return 0
	}
	rets := SimpleReturns(tail(closes, window))
	return finiteOr(stdev(rets)*math.Sqrt(tradingDaysPerYear)*100, 0)
}

// CAGR3Y is the compound annual growth over the last 756 bars, in percent.
func CAGR3Y(closes []float64) float64 {
	n := len(closes)
	if n < CAGRBars {
		return 0
	}
	start, end := closes[n-CAGRBars], closes[n-1]
	if start <= 0 || end <= 0 {
		return 0
	}
	return finiteOr((math.Pow(end/start, 1.0/3)-1)*100, 0)
}

// VolumeSpikeRatio compares 15-bar to 63-bar average volume. 1 means no spike.
func VolumeSpikeRatio(volumes []float64) float64 {
	if len(volumes) < SpikeLongWindow {
		return 1
	}
	long := mean(tail(volumes, SpikeLongWindow))
	if long <= 0 {
		return 1
	}
	return finiteOr(mean(tail(volumes, SpikeShortWindow))/long, 1)
}

// BreakoutScore rewards a stacked EMA ladder and price above the short EMAs.
func BreakoutScore(closes []float64) float64 {
	n := len(closes)
	if n < BreakoutMinBars {
		return 0
	}
	e10 := EMA(closes, 10)
	e20 := EMA(closes, 20)
	e50 := EMA(closes, 50)
	e100 := EMA(closes, 100)
	p := closes[n-1]

	score := 0.0
	if e10 > e20 {
		score += 0.3
	}
	if e20 > e50 {
		score += 0.3
	}
	if e50 > e100 {
		score += 0.2
	}
	if p > e10 {
		score += 0.1
	}
	if p > e20 {
		score += 0.1
	}
	return clamp(score, 0, 1)
}

// NormalizedMomentum is the z-score of the last daily return against the
// mean and stdev of the trailing period returns.
func NormalizedMomentum(closes []float64, period int) float64 {
	if period < 2 || len(closes) < period+1 {
		return 0
	}
	rets := SimpleReturns(tail(closes, period+1))
	sd := stdev(rets)
	if sd == 0 {
		return 0
	}
	return finiteOr((rets[len(rets)-1]-mean(rets))/sd, 0)
}
