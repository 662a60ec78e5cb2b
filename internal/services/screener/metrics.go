package screener

import (
	"math"

	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/services/features"
)

const (
	yearBars       = 252
	rangeBars      = 20
	stochasticBars = 20
	shortTermBars  = 5
	avgVolumeShort = 15
	avgVolumeLong  = 30
)

// Measure derives the screening metrics from the last bar of series.
// Values that need more history than available stay at zero.
func Measure(series models.PriceSeries) models.SignalMetrics {
	var m models.SignalMetrics
	n := series.Len()
	if n == 0 {
		return m
	}
	closes := series.Closes()
	opens := series.Opens()
	highs := series.Highs()
	lows := series.Lows()
	volumes := series.Volumes()

	price := closes[n-1]
	m.Price = price
	if n >= 2 && closes[n-2] > 0 {
		m.MovePct = pct(price, closes[n-2])
	}
	m.VolSpikePct = (features.VolumeSpikeRatio(volumes) - 1) * 100

	m.High52W = math.Max(maxTail(highs, yearBars), maxTail(closes, yearBars))
	if m.High52W > 0 {
		m.FromHighPct = pct(price, m.High52W)
	}

	m.AvgVolume15 = avgTail(volumes, avgVolumeShort)
	m.AvgVolume30 = avgTail(volumes, avgVolumeLong)
	m.VolumeRatio = 1
	if m.AvgVolume30 > 0 {
		m.VolumeRatio = m.AvgVolume15 / m.AvgVolume30
	}

	if n > shortTermBars {
		base := closes[n-1-shortTermBars]
		if base > 0 {
			m.Return5DPct = pct(price, base)
		}
		for i := n - shortTermBars; i < n; i++ {
			switch {
			case closes[i] > closes[i-1]:
				m.UpDays5++
			case closes[i] < closes[i-1]:
				m.DownDays5++
			}
		}
		m.StrictlyUp5 = m.UpDays5 == shortTermBars
		m.StrictlyDown5 = m.DownDays5 == shortTermBars
	}

	// 0 is deeply oversold, 1 is stretched
	stoch := features.DonchianPercent(highs, lows, closes, stochasticBars)
	m.OversoldIndex = 0.5*features.RSI(closes, features.RSIPeriod)/100 + 0.5*stoch

	m.BodyRatio = bodyRatio(opens, highs, lows, closes, shortTermBars)

	if n >= rangeBars && price > 0 {
		hi := maxTail(highs, rangeBars)
		lo := minTail(lows, rangeBars)
		m.Range20Pct = (hi - lo) / price * 100
	}
	if n > rangeBars {
		prior := maxTail(highs[:n-1], rangeBars)
		if prior > 0 {
			m.Breakout20Pct = pct(price, prior)
		}
	}
	return m
}

func pct(cur, base float64) float64 {
	return (cur/base - 1) * 100
}

// bodyRatio averages the bullish body share of each bar's range.
func bodyRatio(opens, highs, lows, closes []float64, bars int) float64 {
	n := len(closes)
	if n == 0 {
		return 0
	}
	if bars > n {
		bars = n
	}
	sum := 0.0
	for i := n - bars; i < n; i++ {
		rng := highs[i] - lows[i]
		if rng <= 0 {
			continue
		}
		sum += math.Max(0, closes[i]-opens[i]) / rng
	}
	return math.Min(sum/float64(bars), 1)
}

func window(xs []float64, n int) []float64 {
	if n >= len(xs) {
		return xs
	}
	return xs[len(xs)-n:]
}

func maxTail(xs []float64, n int) float64 {
	m := 0.0
	for _, x := range window(xs, n) {
		if x > m {
			m = x
		}
	}
	return m
}

func minTail(xs []float64, n int) float64 {
	w := window(xs, n)
	if len(w) == 0 {
		return 0
	}
	m := w[0]
	for _, x := range w[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func avgTail(xs []float64, n int) float64 {
	w := window(xs, n)
	if len(w) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range w {
		sum += x
	}
	return sum / float64(len(w))
}
