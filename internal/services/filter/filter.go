package filter

import "SignalDesk/internal/domain/models"

// Rules are the execution filter thresholds.
type Rules struct {
	MinRegimeBull    float64 `yaml:"min_regime_bull" default:"0.55" validate:"gte=0,lte=1"`
	ChopRegime       float64 `yaml:"chop_regime" default:"0.5" validate:"gte=0,lte=1"`
	ChopRSRSZ        float64 `yaml:"chop_rsrs_z" default:"1"`
	MinEfficiency    float64 `yaml:"min_efficiency" default:"0.4" validate:"gte=0,lte=1"`
	MinTrendR2       float64 `yaml:"min_trend_r2" default:"0.3" validate:"gte=0,lte=1"`
	MinVolumeSpike   float64 `yaml:"min_volume_spike" default:"1.3" validate:"gte=0"`
	OverheatRSI      float64 `yaml:"overheat_rsi" default:"78" validate:"gte=0,lte=100"`
	OverheatDonchian float64 `yaml:"overheat_donchian" default:"0.95" validate:"gte=0,lte=1"`
}

func DefaultRules() Rules {
	return Rules{
		MinRegimeBull:    0.55,
		ChopRegime:       0.5,
		ChopRSRSZ:        1,
		MinEfficiency:    0.4,
		MinTrendR2:       0.3,
		MinVolumeSpike:   1.3,
		OverheatRSI:      78,
		OverheatDonchian: 0.95,
	}
}

// Result of evaluating one instrument. Passed is false when any
// disqualifying filter failed; Overheat alone never fails it.
type Result struct {
	Passed bool
	Flags  []models.FilterFlag
}

// Evaluate runs the four filters in a fixed order so flags are deterministic.
func Evaluate(fs models.FeatureSet, r Rules) Result {
	var flags []models.FilterFlag

	regimeOK := fs.RegimeBull >= r.MinRegimeBull ||
		(fs.RegimeChop > r.ChopRegime && fs.RSRSZ > r.ChopRSRSZ)
	if !regimeOK {
		flags = append(flags, models.FlagRegime)
	}

	if fs.KalmanSNR <= 0 || fs.EfficiencyRatio < r.MinEfficiency || fs.TrendR2 < r.MinTrendR2 {
		flags = append(flags, models.FlagTrendQuality)
	}

	if fs.VolumeSpike < r.MinVolumeSpike || fs.VWAPDistance < 0 {
		flags = append(flags, models.FlagEnergy)
	}

	passed := len(flags) == 0

	if fs.RSI10 > r.OverheatRSI && fs.Donchian > r.OverheatDonchian && fs.Close >= fs.EMA5 {
		flags = append(flags, models.FlagOverheat)
	}

	if flags == nil {
		flags = []models.FilterFlag{}
	}
	return Result{Passed: passed, Flags: flags}
}

// ActionFor applies the priority cascade: a Regime failure or two
// disqualifying flags mean Avoid, one means Watch, a passing instrument
// that is overheated is a Watch Pullback, anything else is a Buy.
func ActionFor(passed bool, flags []models.FilterFlag) models.Action {
	hard := false
	disqualifying := 0
	overheat := false
	for _, f := range flags {
		switch f {
		case models.FlagOverheat:
			overheat = true
		case models.FlagRegime:
			hard = true
			disqualifying++
		default:
			disqualifying++
		}
	}

	switch {
	case hard || disqualifying >= 2:
		return models.ActionAvoid
	case disqualifying == 1 || !passed:
		return models.ActionWatch
	case overheat:
		return models.ActionWatchPullback
	default:
		return models.ActionBuy
	}
}
