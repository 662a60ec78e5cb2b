package prediction

import (
	"math"

	"SignalDesk/internal/domain/models"
)

// Normalized holds model inputs scaled to [-1,1] or [0,1].
type Normalized struct {
	TrendSNR     float64 // signed SNR / 10
	TrendR2      float64 // R² signed by the Kalman slope
	Regime       float64 // bull - bear
	Bull         float64
	Efficiency   float64
	Hurst        float64 // (H - 0.5) * 2
	Fractal      float64 // (1.5 - FD) * 2
	RSRS         float64 // z / 5
	VolumeSpike  float64 // ratio capped at 3x, / 3
	Donchian     float64 // 2d - 1
	NormMomentum float64
	RSI          float64 // (rsi - 50) / 50
	Volatility   float64 // annualized % / 100, capped at 1
	Skew         float64
	Kurtosis     float64
	Breakout     float64
	Momentum     float64
}

func Normalize(fs models.FeatureSet) Normalized {
	dir := 0.0
	switch {
	case fs.KalmanSlope > 0:
		dir = 1
	case fs.KalmanSlope < 0:
		dir = -1
	}
	return Normalized{
		TrendSNR:     dir * clamp(fs.KalmanSNR/10, 0, 1),
		TrendR2:      dir * clamp(fs.TrendR2, 0, 1),
		Regime:       clamp(fs.RegimeBull-fs.RegimeBear, -1, 1),
		Bull:         clamp(fs.RegimeBull, 0, 1),
		Efficiency:   clamp(fs.EfficiencyRatio, 0, 1),
		Hurst:        clamp((fs.Hurst-0.5)*2, -1, 1),
		Fractal:      clamp((1.5-fs.FractalDim)*2, -1, 1),
		RSRS:         clamp(fs.RSRSZ/5, -1, 1),
		VolumeSpike:  math.Min(math.Max(fs.VolumeSpike, 0), 3) / 3,
		Donchian:     clamp(2*fs.Donchian-1, -1, 1),
		NormMomentum: clamp((fs.NormMom21+fs.NormMom42+fs.NormMom63)/9, -1, 1),
		RSI:          clamp((fs.RSI10-50)/50, -1, 1),
		Volatility:   clamp(fs.Volatility/100, 0, 1),
		Skew:         clamp(fs.Skewness/3, -1, 1),
		Kurtosis:     clamp(fs.Kurtosis/10, 0, 1),
		Breakout:     clamp(fs.Breakout, 0, 1),
		Momentum:     clamp(fs.Momentum3M, 0, 1),
	}
}
