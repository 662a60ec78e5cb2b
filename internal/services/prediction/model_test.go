package prediction

import (
	"errors"
	"math"
	"testing"

	"SignalDesk/internal/domain/models"
)

func neutralFeatures() models.FeatureSet {
	return models.FeatureSet{
		Close:       100,
		RSI10:       50,
		VolumeSpike: 1,
		Hurst:       0.5,
		FractalDim:  1.5,
		RSRSBeta:    1,
		Donchian:    0.5,
		RegimeBull:  1.0 / 3,
		RegimeChop:  1.0 / 3,
		RegimeBear:  1.0 / 3,
	}
}

func strongFeatures() models.FeatureSet {
	fs := neutralFeatures()
	fs.KalmanSlope = 0.8
	fs.KalmanSNR = 10
	fs.TrendR2 = 0.95
	fs.RegimeBull, fs.RegimeChop, fs.RegimeBear = 0.9, 0.05, 0.05
	fs.EfficiencyRatio = 0.8
	fs.Hurst = 0.8
	fs.FractalDim = 1.1
	fs.RSRSZ = 3
	fs.VolumeSpike = 2
	fs.Donchian = 0.9
	fs.Breakout = 1
	fs.Momentum3M = 0.8
	fs.RSI10 = 65
	return fs
}

func TestPredictBounds(t *testing.T) {
	m := NewModel(DefaultParams())
	for name, fs := range map[string]models.FeatureSet{
		"zero":    {},
		"neutral": neutralFeatures(),
		"strong":  strongFeatures(),
	} {
		t.Run(name, func(t *testing.T) {
			f, err := m.Predict(fs)
			if err != nil {
				t.Fatalf("predict: %v", err)
			}
			if f.Probability < 0 || f.Probability > 1 {
				t.Fatalf("probability = %v out of [0,1]", f.Probability)
			}
			if f.Ensemble < 0 || f.Ensemble > 1 || f.Logit < 0 || f.Logit > 1 {
				t.Fatalf("component out of [0,1]: logit=%v ensemble=%v", f.Logit, f.Ensemble)
			}
			if f.ExpectedReturn < -5 || f.ExpectedReturn > 18 {
				t.Fatalf("expected return = %v out of [-5,18]", f.ExpectedReturn)
			}
		})
	}
}

func TestPredictNeutralNearBaseline(t *testing.T) {
	m := NewModel(DefaultParams())
	f, err := m.Predict(neutralFeatures())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if math.Abs(f.Logit-0.5) > 0.05 {
		t.Errorf("logit = %v, want about 0.5", f.Logit)
	}
	if f.Ensemble != 0.3 {
		t.Errorf("ensemble = %v, want baseline 0.3", f.Ensemble)
	}
	if len(f.Rules) != 0 {
		t.Errorf("rules fired on neutral input: %v", f.Rules)
	}
}

func TestPredictStrongBeatsNeutral(t *testing.T) {
	m := NewModel(DefaultParams())
	weak, _ := m.Predict(neutralFeatures())
	strong, err := m.Predict(strongFeatures())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if strong.Probability <= weak.Probability {
		t.Fatalf("strong %v <= neutral %v", strong.Probability, weak.Probability)
	}
	if strong.ExpectedReturn <= weak.ExpectedReturn {
		t.Fatalf("strong return %v <= neutral %v", strong.ExpectedReturn, weak.ExpectedReturn)
	}
}

func TestExpectedReturnFormula(t *testing.T) {
	m := NewModel(DefaultParams())
	f, err := m.Predict(strongFeatures())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	want := math.Round((f.Probability*18+(1-f.Probability)*-5)*10) / 10
	if f.ExpectedReturn != want {
		t.Fatalf("expected return = %v, want %v", f.ExpectedReturn, want)
	}
}

func TestPredictRejectsNonFinite(t *testing.T) {
	m := NewModel(DefaultParams())
	fs := neutralFeatures()
	fs.KalmanSNR = math.NaN()
	if _, err := m.Predict(fs); !errors.Is(err, ErrNonFinite) {
		t.Fatalf("err = %v, want ErrNonFinite", err)
	}
	fs = neutralFeatures()
	fs.Volatility = math.Inf(1)
	if _, err := m.Predict(fs); !errors.Is(err, ErrNonFinite) {
		t.Fatalf("err = %v, want ErrNonFinite", err)
	}
}

func TestEnsembleClamped(t *testing.T) {
	p := DefaultParams()
	p.EnsembleBase = 0.95
	f, err := NewModel(p).Predict(strongFeatures())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if f.Ensemble != 1 {
		t.Fatalf("ensemble = %v, want clamped to 1", f.Ensemble)
	}
}
