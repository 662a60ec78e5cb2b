package screener

// Thresholds configures the six categories. Omitted keys take the default
// tag values once passed through usecase.Thresholds.Normalize.
type Thresholds struct {
	TopN          int           `yaml:"top_n" json:"top_n" default:"6" validate:"gte=1,lte=100"`
	VolumeSpikes  VolumeSpikes  `yaml:"volume_spikes" json:"volume_spikes"`
	DeepPullbacks DeepPullbacks `yaml:"deep_pullbacks" json:"deep_pullbacks"`
	Capitulated   Capitulated   `yaml:"capitulated" json:"capitulated"`
	Decliners     Decliners     `yaml:"decliners_5d" json:"decliners_5d"`
	Climbers      Climbers      `yaml:"climbers_5d" json:"climbers_5d"`
	TightRange    TightRange    `yaml:"tight_range" json:"tight_range"`
}

type VolumeSpikes struct {
	MinVolSpikePct float64 `yaml:"min_vol_spike_pct" json:"min_vol_spike_pct" default:"30"`
	MinMovePct     float64 `yaml:"min_move_pct" json:"min_move_pct" default:"0.5" validate:"gte=0"`
	MinPrice       float64 `yaml:"min_price" json:"min_price" default:"30" validate:"gte=0"`
}

type DeepPullbacks struct {
	MaxFromHighPct float64 `yaml:"max_from_high_pct" json:"max_from_high_pct" default:"-50" validate:"lte=0"`
	MinAvgVolume   float64 `yaml:"min_avg_volume" json:"min_avg_volume" default:"5000" validate:"gte=0"`
	MinPrice       float64 `yaml:"min_price" json:"min_price" default:"30" validate:"gte=0"`
}

type Capitulated struct {
	MaxFromHighPct float64 `yaml:"max_from_high_pct" json:"max_from_high_pct" default:"-90" validate:"lte=0"`
	MinVolSpikePct float64 `yaml:"min_vol_spike_pct" json:"min_vol_spike_pct"`
	MinPrice       float64 `yaml:"min_price" json:"min_price" default:"10" validate:"gte=0"`
}

type Decliners struct {
	MinDownDays  int     `yaml:"min_down_days" json:"min_down_days" default:"3" validate:"gte=1,lte=5"`
	MaxReturnPct float64 `yaml:"max_return_pct" json:"max_return_pct" default:"-1.5"`
	MinPrice     float64 `yaml:"min_price" json:"min_price" default:"30" validate:"gte=0"`
}

type Climbers struct {
	MinUpDays    int     `yaml:"min_up_days" json:"min_up_days" default:"3" validate:"gte=1,lte=5"`
	MinReturnPct float64 `yaml:"min_return_pct" json:"min_return_pct" default:"1.5"`
	MinPrice     float64 `yaml:"min_price" json:"min_price" default:"30" validate:"gte=0"`
}

type TightRange struct {
	MaxRangePct    float64 `yaml:"max_range_pct" json:"max_range_pct" default:"15" validate:"gt=0"`
	MinBreakoutPct float64 `yaml:"min_breakout_pct" json:"min_breakout_pct"`
	MinVolSpikePct float64 `yaml:"min_vol_spike_pct" json:"min_vol_spike_pct" default:"50"`
	MinPrice       float64 `yaml:"min_price" json:"min_price" default:"30" validate:"gte=0"`
}

// DefaultThresholds returns the documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TopN:          6,
		VolumeSpikes:  VolumeSpikes{MinVolSpikePct: 30, MinMovePct: 0.5, MinPrice: 30},
		DeepPullbacks: DeepPullbacks{MaxFromHighPct: -50, MinAvgVolume: 5000, MinPrice: 30},
		Capitulated:   Capitulated{MaxFromHighPct: -90, MinVolSpikePct: 0, MinPrice: 10},
		Decliners:     Decliners{MinDownDays: 3, MaxReturnPct: -1.5, MinPrice: 30},
		Climbers:      Climbers{MinUpDays: 3, MinReturnPct: 1.5, MinPrice: 30},
		TightRange:    TightRange{MaxRangePct: 15, MinBreakoutPct: 0, MinVolSpikePct: 50, MinPrice: 30},
	}
}
