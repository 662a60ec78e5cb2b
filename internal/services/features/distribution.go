package features

import "math"

const (
	MomentsWindow = 20
	RegimeWindow  = 60

	regimeSubWindow = 10
	regimeThreshold = 0.2
	regimeEpsilon   = 1e-12

	kurtosisMin = -3
	kurtosisMax = 10
)

// RegimeProbs are Laplace-smoothed pseudo-probabilities of each regime.
type RegimeProbs struct {
	Bull float64
	Chop float64
	Bear float64
}

// Moments returns skewness and excess kurtosis of the daily returns in the
// trailing window. Kurtosis is clamped to [-3,10].
func Moments(closes []float64, window int) (skew, kurt float64) {
	if window < 3 || len(closes) < window {
		return 0, 0
	}
	rets := SimpleReturns(tail(closes, window))
	m := mean(rets)
	sd := popStdev(rets)
	if sd == 0 {
		return 0, 0
	}
	var m3, m4 float64
	for _, r := range rets {
		d := (r - m) / sd
		m3 += d * d * d
		m4 += d * d * d * d
	}
	n := float64(len(rets))
	skew = finiteOr(m3/n, 0)
	kurt = clamp(finiteOr(m4/n-3, 0), kurtosisMin, kurtosisMax)
	return skew, kurt
}

// Regime classifies each bar of the trailing window as bull, chop or bear by
// comparing the rolling 10-bar mean return with a fraction of the window's
// return stdev, then converts the counts to (count+1)/(total+3).
func Regime(closes []float64, window int) RegimeProbs {
	neutral := RegimeProbs{Bull: 1.0 / 3, Chop: 1.0 / 3, Bear: 1.0 / 3}
	if window <= regimeSubWindow || len(closes) < window {
		return neutral
	}
	rets := SimpleReturns(tail(closes, window))
	tol := math.Max(regimeThreshold*stdev(rets), regimeEpsilon)

	var bull, chop, bear int
	for j := regimeSubWindow; j <= len(rets); j++ {
		m := mean(rets[j-regimeSubWindow : j])
		switch {
		case m > tol:
			bull++
		case m < -tol:
			bear++
		default:
			chop++
		}
	}
	total := float64(bull + chop + bear + 3)
	return RegimeProbs{
		Bull: float64(bull+1) / total,
		Chop: float64(chop+1) / total,
		Bear: float64(bear+1) / total,
	}
}
