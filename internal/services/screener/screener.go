package screener

import (
	"math"
	"sort"

	"SignalDesk/internal/domain/models"
)

var hints = map[models.Category]string{
	models.CategoryVolumeSpikes:  "Momentum continuation on heavy volume",
	models.CategoryDeepPullbacks: "Mean reversion from a deep drawdown",
	models.CategoryCapitulated:   "Contrarian entry after capitulation selling",
	models.CategoryDecliners5D:   "Short-term weakness, wait for stabilization",
	models.CategoryClimbers5D:    "Short-term strength, trail the move",
	models.CategoryTightRange:    "Volatility contraction breakout",
}

// Hint returns the strategy hint attached to a category.
func Hint(c models.Category) string { return hints[c] }

// Screen tests one instrument against every category and returns the
// admissions. Categories are independent: one instrument can land in several.
func Screen(inst models.Instrument, m models.SignalMetrics, th Thresholds) []models.SignalResult {
	var out []models.SignalResult
	add := func(c models.Category, score float64) {
		out = append(out, models.SignalResult{
			Instrument:   inst,
			Category:     c,
			Score:        finite(score),
			StrategyHint: hints[c],
			Metrics:      m,
		})
	}

	absMove := math.Abs(m.MovePct)
	absRet5 := math.Abs(m.Return5DPct)

	if vs := th.VolumeSpikes; m.VolSpikePct > vs.MinVolSpikePct && absMove > vs.MinMovePct && m.Price > vs.MinPrice {
		add(models.CategoryVolumeSpikes, 0.7*norm(m.VolSpikePct, 500)+0.3*norm(absMove, 10))
	}

	if dp := th.DeepPullbacks; m.FromHighPct <= dp.MaxFromHighPct &&
		(m.AvgVolume30 > dp.MinAvgVolume || m.AvgVolume15 > dp.MinAvgVolume) && m.Price > dp.MinPrice {
		add(models.CategoryDeepPullbacks, m.OversoldIndex)
	}

	if cp := th.Capitulated; m.FromHighPct <= cp.MaxFromHighPct && m.VolSpikePct > cp.MinVolSpikePct && m.Price > cp.MinPrice {
		add(models.CategoryCapitulated, 0.6*norm(m.VolSpikePct, 500)+0.4*norm(absRet5, 20))
	}

	if dc := th.Decliners; (m.DownDays5 >= dc.MinDownDays || m.StrictlyDown5) &&
		m.Return5DPct < dc.MaxReturnPct && m.Price > dc.MinPrice {
		add(models.CategoryDecliners5D, 0.6*absRet5/10+0.4*math.Min(m.VolumeRatio, 2))
	}

	if cl := th.Climbers; (m.UpDays5 >= cl.MinUpDays || m.StrictlyUp5) &&
		m.Return5DPct > cl.MinReturnPct && m.Price > cl.MinPrice {
		add(models.CategoryClimbers5D, 0.5*norm(m.Return5DPct, 15)+0.3*norm(m.VolSpikePct, 300)+0.2*m.BodyRatio)
	}

	if tr := th.TightRange; m.Range20Pct > 0 && m.Range20Pct < tr.MaxRangePct &&
		m.Breakout20Pct > tr.MinBreakoutPct && m.VolSpikePct > tr.MinVolSpikePct && m.Price > tr.MinPrice {
		tightness := 1 - m.Range20Pct/tr.MaxRangePct
		add(models.CategoryTightRange, 0.4*tightness+0.3*norm(m.Breakout20Pct, 5)+0.3*norm(m.VolSpikePct, 300))
	}
	return out
}

// Rank sorts every bucket and truncates it to topN. Deep pullbacks sort
// ascending (most oversold first); all others descending. Ties fall back to
// ISIN so the order is deterministic.
func Rank(buckets map[models.Category][]models.SignalResult, topN int) {
	for c, list := range buckets {
		asc := c == models.CategoryDeepPullbacks
		sort.SliceStable(list, func(i, j int) bool {
			a, b := list[i], list[j]
			if a.Score != b.Score {
				if asc {
					return a.Score < b.Score
				}
				return a.Score > b.Score
			}
			return a.Instrument.ISIN < b.Instrument.ISIN
		})
		if topN > 0 && len(list) > topN {
			list = list[:topN]
		}
		buckets[c] = list
	}
}

func norm(x, scale float64) float64 {
	return math.Max(0, math.Min(1, x/scale))
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
