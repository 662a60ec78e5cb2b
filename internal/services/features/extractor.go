package features

import (
	"math"

	"SignalDesk/internal/domain/models"
)

// SimpleReturns computes r_t = C_t / C_{t-1} - 1.
// Returns a slice of length len(closes)-1; a non-positive previous close yields 0.
func SimpleReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, closes[i]/prev-1)
	}
	return out
}

// LogReturns computes r_t = ln(C_t / C_{t-1}).
// It returns a slice of length len(closes)-1, or nil if insufficient data.
func LogReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		cur := closes[i]
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// Extract computes every feature for the last bar of series.
// Short series yield neutral values, never NaN.
func Extract(series models.PriceSeries) models.FeatureSet {
	closes := series.Closes()
	highs := series.Highs()
	lows := series.Lows()
	volumes := series.Volumes()

	var fs models.FeatureSet
	if n := len(closes); n > 0 {
		fs.Close = closes[n-1]
	}

	fs.RSI10 = RSI(closes, RSIPeriod)
	fs.ATR14 = ATR(highs, lows, closes, ATRPeriod)
	fs.EMA5 = EMA(closes, 5)
	fs.VWAP20 = VWAP(closes, volumes, VWAPPeriod)
	if fs.ATR14 > 0 {
		fs.VWAPDistance = (fs.Close - fs.VWAP20) / fs.ATR14
	}

	fs.Momentum3M = Momentum3M(closes, volumes)
	fs.Volatility = AnnualizedVolatility(closes, VolatilityWindow)
	fs.CAGR3Y = CAGR3Y(closes)
	fs.VolumeSpike = VolumeSpikeRatio(volumes)
	fs.Breakout = BreakoutScore(closes)

	fs.Hurst = Hurst(closes)
	fs.FractalDim = FractalDimension(closes, FractalKMax)
	fs.KalmanSlope, fs.KalmanSNR = Kalman(closes, KalmanWindow)
	fs.EfficiencyRatio = EfficiencyRatio(closes, EfficiencyPeriod)
	fs.TrendR2 = TrendR2(closes)
	fs.RSRSBeta, fs.RSRSZ = RSRS(highs, lows, RSRSWindow)
	fs.Donchian = DonchianPercent(highs, lows, closes, DonchianWindow)

	fs.NormMom21 = NormalizedMomentum(closes, 21)
	fs.NormMom42 = NormalizedMomentum(closes, 42)
	fs.NormMom63 = NormalizedMomentum(closes, 63)
	fs.Skewness, fs.Kurtosis = Moments(closes, MomentsWindow)

	r := Regime(closes, RegimeWindow)
	fs.RegimeBull, fs.RegimeChop, fs.RegimeBear = r.Bull, r.Chop, r.Bear
	return fs
}

// Finite reports whether every field of fs is a finite number.
func Finite(fs models.FeatureSet) bool {
	for _, v := range []float64{
		fs.Close, fs.RSI10, fs.ATR14, fs.EMA5, fs.VWAP20, fs.VWAPDistance,
		fs.Momentum3M, fs.Volatility, fs.CAGR3Y, fs.VolumeSpike, fs.Breakout,
		fs.Hurst, fs.FractalDim, fs.KalmanSlope, fs.KalmanSNR, fs.EfficiencyRatio,
		fs.TrendR2, fs.RSRSBeta, fs.RSRSZ, fs.Donchian,
		fs.NormMom21, fs.NormMom42, fs.NormMom63, fs.Skewness, fs.Kurtosis,
		fs.RegimeBull, fs.RegimeChop, fs.RegimeBear,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
