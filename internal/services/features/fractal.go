package features

import "math"

const (
	HurstMinBars   = 200
	HurstWindow    = 100
	FractalMinBars = 50
	FractalWindow  = 100
	FractalKMax    = 10
)

// Hurst estimates the Hurst exponent by rescaled range on the last 100 log
// returns: H = 0.5 + 0.5*log(R/S+1)/log(n/2), clamped to [0,1].
// 0.5 on short or motionless input.
func Hurst(closes []float64) float64 {
	if len(closes) < HurstMinBars {
		return 0.5
	}
	rets := LogReturns(tail(closes, HurstWindow+1))
	n := len(rets)
	m := mean(rets)

	cum, lo, hi := 0.0, 0.0, 0.0
	for _, r := range rets {
		cum += r - m
		lo = math.Min(lo, cum)
		hi = math.Max(hi, cum)
	}
	s := popStdev(rets)
	if s == 0 {
		return 0.5
	}
	h := 0.5 + 0.5*math.Log(((hi-lo)/s)+1)/math.Log(float64(n)/2)
	return clamp(finiteOr(h, 0.5), 0, 1)
}

// FractalDimension is a Higuchi-style estimate: the mean absolute increment
// at lag k, averaged over the k offset sub-series, is regressed against k on
// a log-log scale and FD = 2 - slope, clamped to [1,2]. A straight line
// gives 1, a random walk about 1.5. 1.5 on short or motionless input.
func FractalDimension(closes []float64, kmax int) float64 {
	if len(closes) < FractalMinBars || kmax < 2 {
		return 1.5
	}
	xs := tail(closes, FractalWindow)
	n := len(xs)
	if kmax > n/2 {
		kmax = n / 2
	}

	logK := make([]float64, 0, kmax)
	logL := make([]float64, 0, kmax)
	for k := 1; k <= kmax; k++ {
		total, curves := 0.0, 0
		for m := 0; m < k; m++ {
			sum, steps := 0.0, 0
			for i := m + k; i < n; i += k {
				sum += math.Abs(xs[i] - xs[i-k])
				steps++
			}
			if steps > 0 {
				total += sum / float64(steps)
				curves++
			}
		}
		if curves == 0 {
			continue
		}
		l := total / float64(curves)
		if l <= 0 {
			continue
		}
		logK = append(logK, math.Log(float64(k)))
		logL = append(logL, math.Log(l))
	}
	if len(logK) < 2 {
		return 1.5
	}
	slope, _, _ := linreg(logK, logL)
	return clamp(finiteOr(2-slope, 1.5), 1, 2)
}
