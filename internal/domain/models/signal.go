package models

// Category names one of the six screener buckets.
type Category string

const (
	CategoryVolumeSpikes  Category = "volume_spikes"
	CategoryDeepPullbacks Category = "deep_pullbacks"
	CategoryCapitulated   Category = "capitulated"
	CategoryDecliners5D   Category = "decliners_5d"
	CategoryClimbers5D    Category = "climbers_5d"
	CategoryTightRange    Category = "tight_range"
)

// Categories lists every bucket in output order.
var Categories = []Category{
	CategoryVolumeSpikes,
	CategoryDeepPullbacks,
	CategoryCapitulated,
	CategoryDecliners5D,
	CategoryClimbers5D,
	CategoryTightRange,
}

// SignalMetrics are the derived screening values of one instrument.
type SignalMetrics struct {
	Price         float64 `json:"price"`
	MovePct       float64 `json:"move_pct"`
	VolSpikePct   float64 `json:"vol_spike_pct"`
	High52W       float64 `json:"high_52w"`
	FromHighPct   float64 `json:"from_high_pct"`
	AvgVolume15   float64 `json:"avg_volume_15"`
	AvgVolume30   float64 `json:"avg_volume_30"`
	Return5DPct   float64 `json:"return_5d_pct"`
	UpDays5       int     `json:"up_days_5"`
	DownDays5     int     `json:"down_days_5"`
	StrictlyUp5   bool    `json:"strictly_up_5"`
	StrictlyDown5 bool    `json:"strictly_down_5"`
	OversoldIndex float64 `json:"oversold_index"`
	VolumeRatio   float64 `json:"volume_ratio_15_30"`
	BodyRatio     float64 `json:"body_ratio"`
	Range20Pct    float64 `json:"range_20_pct"`
	Breakout20Pct float64 `json:"breakout_20_pct"`
}

// SignalResult is one instrument admitted to one category.
type SignalResult struct {
	Instrument   Instrument    `json:"instrument"`
	Category     Category      `json:"category"`
	Score        float64       `json:"score"`
	StrategyHint string        `json:"strategy_hint"`
	Metrics      SignalMetrics `json:"metrics"`
}
