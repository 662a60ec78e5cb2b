package features

import "math"

const (
	KalmanWindow     = 20
	EfficiencyPeriod = 10
	TrendR2Window    = 50
	TrendR2MinBars   = 63
	RSRSWindow       = 18

	kalmanQ       = 0.01
	kalmanR       = 0.1
	kalmanHistory = 100
	kalmanMaxSNR  = 10

	rsrsPriorMean = 1.0
	rsrsPriorStd  = 0.2
	rsrsMaxZ      = 5
)

// Kalman runs a level filter (q=0.01, r=0.1) over recent closes. slope is
// the change of the filtered level across the last window bars divided by
// window; snr is |slope| over the stdev of the close-minus-estimate
// residuals in that window, capped at 10.
func Kalman(closes []float64, window int) (slope, snr float64) {
	if window < 2 || len(closes) < window {
		return 0, 0
	}
	xs := tail(closes, max(kalmanHistory, window))

	est := xs[0]
	p := 1.0
	estimates := make([]float64, len(xs))
	residuals := make([]float64, len(xs))
	for i, z := range xs {
		p += kalmanQ
		k := p / (p + kalmanR)
		est += k * (z - est)
		p *= 1 - k
		estimates[i] = est
		residuals[i] = z - est
	}

	n := len(estimates)
	slope = (estimates[n-1] - estimates[n-window]) / float64(window)
	sd := popStdev(residuals[n-window:])
	switch {
	case slope == 0:
		snr = 0
	case sd < 1e-12:
		snr = kalmanMaxSNR
	default:
		snr = math.Min(math.Abs(slope)/sd, kalmanMaxSNR)
	}
	return finiteOr(slope, 0), finiteOr(snr, 0)
}

// EfficiencyRatio is Kaufman's ratio of net movement to total path length
// over the last period bars.
func EfficiencyRatio(closes []float64, period int) float64 {
	n := len(closes)
	if period <= 0 || n < period+1 {
		return 0
	}
	net := math.Abs(closes[n-1] - closes[n-1-period])
	path := 0.0
	for i := n - period; i < n; i++ {
		path += math.Abs(closes[i] - closes[i-1])
	}
	if path == 0 {
		return 0
	}
	return clamp(net/path, 0, 1)
}

// TrendR2 is the R² of an OLS fit of log price against time over the last
// 50 bars. Requires 63 bars of history.
func TrendR2(closes []float64) float64 {
	if len(closes) < TrendR2MinBars {
		return 0
	}
	window := tail(closes, TrendR2Window)
	x := make([]float64, len(window))
	y := make([]float64, len(window))
	for i, c := range window {
		if c <= 0 {
			return 0
		}
		x[i] = float64(i)
		y[i] = math.Log(c)
	}
	_, _, r2 := linreg(x, y)
	return finiteOr(r2, 0)
}

// RSRS regresses highs on lows over the trailing window. beta is the
// support/resistance slope; z standardizes it against a prior of
// mean 1.0 and stdev 0.2, clamped to ±5.
func RSRS(highs, lows []float64, window int) (beta, z float64) {
	if window < 2 || len(highs) < window || len(lows) != len(highs) {
		return rsrsPriorMean, 0
	}
	h := tail(highs, window)
	l := tail(lows, window)
	if stdev(l) == 0 {
		return rsrsPriorMean, 0
	}
	beta, _, _ = linreg(l, h)
	beta = finiteOr(beta, rsrsPriorMean)
	z = clamp((beta-rsrsPriorMean)/rsrsPriorStd, -rsrsMaxZ, rsrsMaxZ)
	return beta, z
}
