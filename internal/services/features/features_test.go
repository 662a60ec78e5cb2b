package features

import (
	"math"
	"testing"
	"time"

	"SignalDesk/internal/domain/models"
)

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func assertClose(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %.6f, want %.6f (±%g)", name, got, want, tol)
	}
}

func seriesFrom(closes, volumes []float64) models.PriceSeries {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	pts := make([]models.PricePoint, len(closes))
	for i, c := range closes {
		pts[i] = models.PricePoint{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: volumes[i],
		}
	}
	return models.PriceSeries{ISIN: "TEST0000001", Points: pts}
}

func TestNeutralDefaultsOnShortInput(t *testing.T) {
	c := ramp(5, 10, 1)
	v := flat(5, 1000)

	assertClose(t, "RSI", RSI(c, RSIPeriod), 50, 0)
	assertClose(t, "ATR", ATR(c, c, c, ATRPeriod), 0, 0)
	assertClose(t, "Momentum3M", Momentum3M(c, v), 0, 0)
	assertClose(t, "Volatility", AnnualizedVolatility(c, VolatilityWindow), 0, 0)
	assertClose(t, "CAGR3Y", CAGR3Y(c), 0, 0)
	assertClose(t, "VolumeSpikeRatio", VolumeSpikeRatio(v), 1, 0)
	assertClose(t, "BreakoutScore", BreakoutScore(c), 0, 0)
	assertClose(t, "Hurst", Hurst(c), 0.5, 0)
	assertClose(t, "FractalDimension", FractalDimension(c, FractalKMax), 1.5, 0)
	assertClose(t, "EfficiencyRatio", EfficiencyRatio(c, EfficiencyPeriod), 0, 0)
	assertClose(t, "TrendR2", TrendR2(c), 0, 0)
	assertClose(t, "Donchian", DonchianPercent(c, c, c, DonchianWindow), 0.5, 0)
	assertClose(t, "NormalizedMomentum", NormalizedMomentum(c, 21), 0, 0)

	slope, snr := Kalman(c, KalmanWindow)
	assertClose(t, "Kalman slope", slope, 0, 0)
	assertClose(t, "Kalman snr", snr, 0, 0)

	beta, z := RSRS(c, c, RSRSWindow)
	assertClose(t, "RSRS beta", beta, 1, 0)
	assertClose(t, "RSRS z", z, 0, 0)

	skew, kurt := Moments(c, MomentsWindow)
	assertClose(t, "skew", skew, 0, 0)
	assertClose(t, "kurt", kurt, 0, 0)

	r := Regime(c, RegimeWindow)
	assertClose(t, "regime bull", r.Bull, 1.0/3, 1e-12)
	assertClose(t, "regime chop", r.Chop, 1.0/3, 1e-12)
	assertClose(t, "regime bear", r.Bear, 1.0/3, 1e-12)
}

func TestEmptyInputDoesNotPanic(t *testing.T) {
	fs := Extract(models.PriceSeries{})
	if !Finite(fs) {
		t.Fatalf("non-finite features on empty series: %+v", fs)
	}
	if fs.RSI10 != 50 || fs.Hurst != 0.5 || fs.Donchian != 0.5 {
		t.Fatalf("unexpected defaults: rsi=%v hurst=%v donchian=%v", fs.RSI10, fs.Hurst, fs.Donchian)
	}
}

func TestExtractFlatSeries(t *testing.T) {
	start := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	pts := make([]models.PricePoint, 800)
	for i := range pts {
		pts[i] = models.PricePoint{Date: start.AddDate(0, 0, i), Open: 100, High: 100, Low: 100, Close: 100, Volume: 1000}
	}
	fs := Extract(models.PriceSeries{ISIN: "FLAT0000001", Points: pts})
	if !Finite(fs) {
		t.Fatalf("non-finite features on flat series: %+v", fs)
	}

	assertClose(t, "Volatility", fs.Volatility, 0, 1e-12)
	assertClose(t, "Momentum3M", fs.Momentum3M, 0, 1e-12)
	assertClose(t, "RSI", fs.RSI10, 50, 1e-12)
	assertClose(t, "Hurst", fs.Hurst, 0.5, 1e-12)
	assertClose(t, "Donchian", fs.Donchian, 0.5, 1e-12)
	assertClose(t, "Kalman slope", fs.KalmanSlope, 0, 1e-12)
}

func TestRSI(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   float64
	}{
		{"rising", ramp(20, 10, 1), 100},
		{"flat", flat(20, 10), 50},
		{"alternating", []float64{1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1}, 50},
		{"falling", ramp(20, 40, -1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertClose(t, "RSI", RSI(tt.closes, RSIPeriod), tt.want, 1e-9)
		})
	}
}

func TestEMA(t *testing.T) {
	assertClose(t, "constant", EMA(flat(30, 7), 10), 7, 1e-12)
	assertClose(t, "short input is mean", EMA([]float64{1, 2, 3}, 10), 2, 1e-12)
	assertClose(t, "empty", EMA(nil, 10), 0, 0)

	// seed = mean(1,2,3) = 2; alpha = 0.5; next = 0.5*4 + 0.5*2 = 3
	assertClose(t, "one step", EMA([]float64{1, 2, 3, 4}, 3), 3, 1e-12)
}

func TestATRConstantRange(t *testing.T) {
	n := 30
	closes := flat(n, 10)
	highs := flat(n, 11)
	lows := flat(n, 9)
	assertClose(t, "ATR", ATR(highs, lows, closes, ATRPeriod), 2, 1e-12)
}

func TestDonchianPercent(t *testing.T) {
	c := ramp(70, 10, 1)
	assertClose(t, "at channel high", DonchianPercent(c, c, c, DonchianWindow), 1, 1e-12)

	f := flat(70, 10)
	assertClose(t, "flat channel", DonchianPercent(f, f, f, DonchianWindow), 0.5, 0)
}

func TestVWAP(t *testing.T) {
	closes := []float64{10, 20}
	volumes := []float64{1, 3}
	assertClose(t, "weighted", VWAP(closes, volumes, 2), 17.5, 1e-12)
	assertClose(t, "no volume", VWAP(closes, []float64{0, 0}, 2), 15, 1e-12)
	assertClose(t, "short", VWAP(closes, volumes, 5), 20, 0)
}

func TestMomentum3M(t *testing.T) {
	closes := ramp(63, 100, 50.0/62)
	volumes := flat(63, 1000)
	// +50% price saturates the price leg; flat volume adds nothing
	assertClose(t, "momentum", Momentum3M(closes, volumes), 0.7, 1e-9)

	assertClose(t, "flat", Momentum3M(flat(63, 100), volumes), 0, 0)
}

func TestCAGR3Y(t *testing.T) {
	closes := flat(CAGRBars, 100)
	closes[len(closes)-1] = 800
	assertClose(t, "doubling per year", CAGR3Y(closes), 100, 1e-9)
}

func TestVolumeSpikeRatio(t *testing.T) {
	v := flat(63, 100)
	for i := 48; i < 63; i++ {
		v[i] = 300
	}
	// long mean = (48*100 + 15*300)/63
	want := 300 / ((48*100 + 15*300) / 63.0)
	assertClose(t, "spike", VolumeSpikeRatio(v), want, 1e-9)
}

func TestBreakoutScoreRising(t *testing.T) {
	assertClose(t, "rising", BreakoutScore(ramp(120, 10, 1)), 1, 1e-12)
	assertClose(t, "flat", BreakoutScore(flat(120, 10)), 0, 0)
}

func TestTrendR2ExponentialIsOne(t *testing.T) {
	closes := make([]float64, 70)
	for i := range closes {
		closes[i] = 100 * math.Pow(1.01, float64(i))
	}
	assertClose(t, "R2", TrendR2(closes), 1, 1e-9)
	assertClose(t, "flat R2", TrendR2(flat(70, 5)), 0, 0)
}

func TestEfficiencyRatio(t *testing.T) {
	assertClose(t, "monotonic", EfficiencyRatio(ramp(20, 1, 1), EfficiencyPeriod), 1, 1e-12)
	zigzag := []float64{1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1}
	assertClose(t, "zigzag", EfficiencyRatio(zigzag, EfficiencyPeriod), 0, 1e-12)
}

func TestRSRS(t *testing.T) {
	lows := ramp(30, 10, 1)
	highs := make([]float64, len(lows))
	for i, l := range lows {
		highs[i] = l + 1
	}
	beta, z := RSRS(highs, lows, RSRSWindow)
	assertClose(t, "parallel beta", beta, 1, 1e-9)
	assertClose(t, "parallel z", z, 0, 1e-9)

	for i, l := range lows {
		highs[i] = 2 * l
	}
	beta, z = RSRS(highs, lows, RSRSWindow)
	assertClose(t, "steep beta", beta, 2, 1e-9)
	assertClose(t, "steep z clamped", z, 5, 0)
}

func TestKalmanTrend(t *testing.T) {
	slope, snr := Kalman(ramp(120, 10, 1), KalmanWindow)
	if slope <= 0 {
		t.Fatalf("slope = %v, want > 0", slope)
	}
	if snr <= 0 || snr > 10 {
		t.Fatalf("snr = %v, want in (0,10]", snr)
	}

	slope, snr = Kalman(flat(120, 10), KalmanWindow)
	assertClose(t, "flat slope", slope, 0, 0)
	assertClose(t, "flat snr", snr, 0, 0)
}

func TestFractalDimension(t *testing.T) {
	assertClose(t, "line", FractalDimension(ramp(120, 10, 0.5), FractalKMax), 1, 1e-6)
	assertClose(t, "flat", FractalDimension(flat(120, 10), FractalKMax), 1.5, 0)

	zigzag := make([]float64, 120)
	for i := range zigzag {
		zigzag[i] = 10 + float64(i%2)
	}
	fd := FractalDimension(zigzag, FractalKMax)
	if fd < 1 || fd > 2 {
		t.Fatalf("fd = %v out of [1,2]", fd)
	}
}

func TestHurstBounds(t *testing.T) {
	assertClose(t, "flat", Hurst(flat(250, 10)), 0.5, 0)

	zigzag := make([]float64, 250)
	for i := range zigzag {
		zigzag[i] = 10 + float64(i%3)
	}
	h := Hurst(zigzag)
	if h < 0 || h > 1 {
		t.Fatalf("hurst = %v out of [0,1]", h)
	}
}

func TestMomentsKurtosisClamped(t *testing.T) {
	closes := flat(40, 100)
	closes[len(closes)-1] = 200
	skew, kurt := Moments(closes, MomentsWindow)
	if skew <= 0 {
		t.Fatalf("skew = %v, want > 0 for a single up jump", skew)
	}
	if kurt < -3 || kurt > 10 {
		t.Fatalf("kurtosis = %v out of [-3,10]", kurt)
	}
}

func TestRegime(t *testing.T) {
	up := Regime(ramp(60, 100, 1), RegimeWindow)
	if up.Bull <= 0.5 {
		t.Fatalf("rising bull = %v, want > 0.5", up.Bull)
	}
	down := Regime(ramp(60, 200, -1), RegimeWindow)
	if down.Bear <= 0.5 {
		t.Fatalf("falling bear = %v, want > 0.5", down.Bear)
	}
	still := Regime(flat(60, 100), RegimeWindow)
	if still.Chop <= 0.5 {
		t.Fatalf("flat chop = %v, want > 0.5", still.Chop)
	}
	for _, r := range []RegimeProbs{up, down, still} {
		assertClose(t, "sum", r.Bull+r.Chop+r.Bear, 1, 1e-12)
	}
}

func TestExtractFiniteOnDegenerateSeries(t *testing.T) {
	cases := map[string][]float64{
		"zeros":  flat(800, 0),
		"flat":   flat(800, 50),
		"rising": ramp(800, 1, 0.5),
		"tiny":   ramp(3, 1, 1),
	}
	for name, closes := range cases {
		t.Run(name, func(t *testing.T) {
			fs := Extract(seriesFrom(closes, flat(len(closes), 0)))
			if !Finite(fs) {
				t.Fatalf("non-finite features: %+v", fs)
			}
			if fs.Donchian < 0 || fs.Donchian > 1 {
				t.Fatalf("donchian = %v", fs.Donchian)
			}
			if fs.KalmanSNR < 0 || fs.KalmanSNR > 10 {
				t.Fatalf("snr = %v", fs.KalmanSNR)
			}
		})
	}
}
