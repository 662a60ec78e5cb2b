package prediction

import (
	"errors"
	"math"

	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/services/features"
)

var ErrNonFinite = errors.New("prediction: non-finite input or output")

// Params are the tunable constants of the model.
type Params struct {
	BlendWeight    float64 `yaml:"blend_weight" default:"0.5" validate:"gte=0,lte=1"`
	Steepness      float64 `yaml:"steepness" default:"5" validate:"gt=0"`
	UpsideReturn   float64 `yaml:"upside_return" default:"18"`
	DownsideReturn float64 `yaml:"downside_return" default:"-5"`
	EnsembleBase   float64 `yaml:"ensemble_base" default:"0.3" validate:"gte=0,lte=1"`
}

func DefaultParams() Params {
	return Params{
		BlendWeight:    0.5,
		Steepness:      5,
		UpsideReturn:   18,
		DownsideReturn: -5,
		EnsembleBase:   0.3,
	}
}

// Forecast is the model output for one instrument.
type Forecast struct {
	Logit          float64
	Ensemble       float64
	Probability    float64
	ExpectedReturn float64
	Rules          []string
}

// Model blends a logistic score with a rule ensemble.
type Model struct {
	p Params
}

func NewModel(p Params) *Model {
	return &Model{p: p}
}

// Predict scores fs. It fails only when fs or the result is not finite.
func (m *Model) Predict(fs models.FeatureSet) (Forecast, error) {
	if !features.Finite(fs) {
		return Forecast{}, ErrNonFinite
	}
	n := Normalize(fs)

	logit := m.logit(n)
	ens, fired := m.ensemble(fs, n)
	prob := clamp(m.p.BlendWeight*logit+(1-m.p.BlendWeight)*ens, 0, 1)
	exp := prob*m.p.UpsideReturn + (1-prob)*m.p.DownsideReturn

	out := Forecast{
		Logit:          logit,
		Ensemble:       ens,
		Probability:    prob,
		ExpectedReturn: math.Round(exp*10) / 10,
		Rules:          fired,
	}
	for _, v := range []float64{out.Logit, out.Ensemble, out.Probability, out.ExpectedReturn} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Forecast{}, ErrNonFinite
		}
	}
	return out, nil
}

// logit maps the weighted feature sum from [-1,1] onto [0,1] and applies a
// sigmoid centred at 0.5.
func (m *Model) logit(n Normalized) float64 {
	z := 0.20*n.TrendSNR +
		0.15*n.TrendR2 +
		0.20*n.Regime +
		0.08*n.Efficiency +
		0.06*n.Hurst +
		0.04*n.Fractal +
		0.07*n.RSRS +
		0.04*n.VolumeSpike +
		0.04*n.Donchian +
		0.05*n.NormMomentum +
		0.03*n.RSI -
		0.05*n.Volatility +
		0.02*n.Skew -
		0.02*n.Kurtosis +
		0.05*n.Breakout +
		0.05*n.Momentum +
		0.10*n.RSRS*n.Bull +
		0.10*n.TrendSNR*n.Efficiency

	x := 0.5 + 0.5*clamp(z, -1, 1)
	return 1 / (1 + math.Exp(-m.p.Steepness*(x-0.5)))
}

func (m *Model) ensemble(fs models.FeatureSet, n Normalized) (float64, []string) {
	score := m.p.EnsembleBase
	var fired []string
	for _, r := range rules {
		if r.when(fs, n) {
			score += r.delta
			fired = append(fired, r.name)
		}
	}
	return clamp(score, 0, 1), fired
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
