package features

import "math"

const (
	RSIPeriod      = 10
	ATRPeriod      = 14
	VWAPPeriod     = 20
	DonchianWindow = 63
)

// RSI is the simple-average relative strength index over the last period
// changes. Returns 50 on short input or a motionless window, 100 when the
// window has no losses.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return 50
	}
	var gains, losses float64
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains += d
		} else {
			losses -= d
		}
	}
	if gains == 0 && losses == 0 {
		return 50
	}
	if losses == 0 {
		return 100
	}
	rs := (gains / float64(period)) / (losses / float64(period))
	return clamp(100-100/(1+rs), 0, 100)
}

// ATR is the mean true range over the trailing period. 0 on short input.
func ATR(highs, lows, closes []float64, period int) float64 {
	n := len(closes)
	if period <= 0 || n < period+1 || len(highs) != n || len(lows) != n {
		return 0
	}
	sum := 0.0
	for i := n - period; i < n; i++ {
		prev := closes[i-1]
		tr := math.Max(highs[i]-lows[i], math.Max(math.Abs(highs[i]-prev), math.Abs(lows[i]-prev)))
		sum += tr
	}
	return finiteOr(sum/float64(period), 0)
}

// EMA smooths values with alpha = 2/(period+1), seeded with the simple mean
// of the first period values. Shorter input returns the plain mean.
func EMA(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0
	}
	if period <= 0 || len(values) < period {
		return mean(values)
	}
	alpha := 2 / float64(period+1)
	ema := mean(values[:period])
	for _, v := range values[period:] {
		ema += alpha * (v - ema)
	}
	return ema
}

// VWAP is the volume-weighted mean close over the trailing period.
// Falls back to the last close on short input and to the plain mean when no
// volume traded.
func VWAP(closes, volumes []float64, period int) float64 {
	n := len(closes)
	if n == 0 {
		return 0
	}
	if period <= 0 || n < period || len(volumes) != n {
		return closes[n-1]
	}
	c := tail(closes, period)
	v := tail(volumes, period)
	var pv, sv float64
	for i := range c {
		pv += c[i] * v[i]
		sv += v[i]
	}
	if sv <= 0 {
		return mean(c)
	}
	return finiteOr(pv/sv, closes[n-1])
}

// DonchianPercent locates the last close inside the trailing high/low
// channel, 0 at the low and 1 at the high. 0.5 on short input or a flat
// channel.
func DonchianPercent(highs, lows, closes []float64, window int) float64 {
	n := len(closes)
	if window <= 0 || n < window || len(highs) != n || len(lows) != n {
		return 0.5
	}
	hi := maxOf(tail(highs, window))
	lo := minOf(tail(lows, window))
	rng := hi - lo
	if rng <= 0 {
		return 0.5
	}
	return clamp((closes[n-1]-lo)/rng, 0, 1)
}
