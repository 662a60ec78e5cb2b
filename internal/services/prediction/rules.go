package prediction

import "SignalDesk/internal/domain/models"

type rule struct {
	name  string
	delta float64
	when  func(fs models.FeatureSet, n Normalized) bool
}

// rules is the fixed ensemble. Each rule adds delta when its features
// jointly clear the thresholds.
var rules = []rule{
	{"clean_trend", 0.15, func(_ models.FeatureSet, n Normalized) bool {
		return n.TrendSNR > 0.5 && n.TrendR2 > 0.3
	}},
	{"bull_support", 0.12, func(fs models.FeatureSet, _ Normalized) bool {
		return fs.RegimeBull > 0.55 && fs.RSRSZ > 0
	}},
	{"persistent_move", 0.10, func(fs models.FeatureSet, _ Normalized) bool {
		return fs.EfficiencyRatio > 0.4 && fs.Hurst > 0.55
	}},
	{"volume_breakout", 0.10, func(fs models.FeatureSet, _ Normalized) bool {
		return fs.VolumeSpike >= 1.3 && fs.Donchian > 0.8
	}},
	{"ema_ladder", 0.10, func(fs models.FeatureSet, _ Normalized) bool {
		return fs.Breakout >= 0.8 && fs.Momentum3M > 0.3
	}},
	{"bear_regime", -0.15, func(fs models.FeatureSet, _ Normalized) bool {
		return fs.RegimeBear > 0.5
	}},
	{"overextended", -0.10, func(fs models.FeatureSet, _ Normalized) bool {
		return fs.RSI10 > 80 && fs.Donchian > 0.95
	}},
	{"high_volatility", -0.08, func(fs models.FeatureSet, _ Normalized) bool {
		return fs.Volatility > 60
	}},
	{"crash_tail", -0.07, func(fs models.FeatureSet, _ Normalized) bool {
		return fs.Kurtosis > 6 && fs.Skewness < -0.5
	}},
}
