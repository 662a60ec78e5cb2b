package models

// FeatureSet is the indicator snapshot of one instrument as of its last bar.
// It is built once per pass and never updated in place.
type FeatureSet struct {
	Close float64 `json:"close"`

	RSI10        float64 `json:"rsi10"`
	ATR14        float64 `json:"atr14"`
	EMA5         float64 `json:"ema5"`
	VWAP20       float64 `json:"vwap20"`
	VWAPDistance float64 `json:"vwap_distance_atr"`

	Momentum3M  float64 `json:"momentum_3m"`
	Volatility  float64 `json:"volatility_pct"`
	CAGR3Y      float64 `json:"cagr_3y_pct"`
	VolumeSpike float64 `json:"volume_spike_ratio"`
	Breakout    float64 `json:"breakout_score"`

	Hurst           float64 `json:"hurst"`
	FractalDim      float64 `json:"fractal_dimension"`
	KalmanSlope     float64 `json:"kalman_slope"`
	KalmanSNR       float64 `json:"kalman_snr"`
	EfficiencyRatio float64 `json:"efficiency_ratio"`
	TrendR2         float64 `json:"trend_r2"`
	RSRSBeta        float64 `json:"rsrs_beta"`
	RSRSZ           float64 `json:"rsrs_z"`
	Donchian        float64 `json:"donchian_pct"`

	NormMom21 float64 `json:"norm_mom_21"`
	NormMom42 float64 `json:"norm_mom_42"`
	NormMom63 float64 `json:"norm_mom_63"`
	Skewness  float64 `json:"skewness"`
	Kurtosis  float64 `json:"kurtosis"`

	RegimeBull float64 `json:"regime_bull"`
	RegimeChop float64 `json:"regime_chop"`
	RegimeBear float64 `json:"regime_bear"`
}

// Action is the execution recommendation derived from filter flags.
type Action string

const (
	ActionBuy           Action = "Buy"
	ActionWatchPullback Action = "Watch Pullback"
	ActionWatch         Action = "Watch"
	ActionAvoid         Action = "Avoid"
)

// FilterFlag names a failed or warning execution filter.
type FilterFlag string

const (
	FlagRegime       FilterFlag = "Regime"
	FlagTrendQuality FilterFlag = "TrendQuality"
	FlagEnergy       FilterFlag = "Energy"
	FlagOverheat     FilterFlag = "Overheat"
)

// PredictionResult is the 3-month forecast for one instrument.
type PredictionResult struct {
	Instrument     Instrument   `json:"instrument"`
	Probability12  float64      `json:"probability12"`
	ExpectedReturn float64      `json:"expected_return"`
	FiltersPass    bool         `json:"filters_pass"`
	FilterFlags    []FilterFlag `json:"filter_flags"`
	Action         Action       `json:"action"`
}
