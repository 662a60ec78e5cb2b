package models

import (
	"errors"
	"math"
	"sort"
	"time"
)

var ErrEmptySeries = errors.New("empty price series")

// Instrument is immutable reference data for a tradable security.
type Instrument struct {
	ISIN   string `json:"isin"`
	Name   string `json:"name"`
	Ticker string `json:"ticker,omitempty"`
	Sector string `json:"sector,omitempty"`
	Venue  string `json:"venue,omitempty"`
}

// PricePoint is one daily bar.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries is the ordered daily history of one instrument.
// Dates are strictly increasing and unique.
type PriceSeries struct {
	ISIN   string       `json:"isin"`
	Points []PricePoint `json:"points"`
}

// NormalizeSeries sorts points by date, keeps the last point for a repeated
// date and drops rows with non-finite values.
func NormalizeSeries(isin string, points []PricePoint) PriceSeries {
	clean := make([]PricePoint, 0, len(points))
	for _, p := range points {
		if !finite(p.Open) || !finite(p.High) || !finite(p.Low) || !finite(p.Close) || !finite(p.Volume) {
			continue
		}
		p.Date = dayOf(p.Date)
		clean = append(clean, p)
	}
	sort.SliceStable(clean, func(i, j int) bool { return clean[i].Date.Before(clean[j].Date) })

	out := clean[:0]
	for _, p := range clean {
		if n := len(out); n > 0 && out[n-1].Date.Equal(p.Date) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return PriceSeries{ISIN: isin, Points: out}
}

func (s PriceSeries) Len() int { return len(s.Points) }

// Last returns the most recent bar.
func (s PriceSeries) Last() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Since returns the tail of the series starting at from (inclusive).
func (s PriceSeries) Since(from time.Time) PriceSeries {
	i := sort.Search(len(s.Points), func(i int) bool { return !s.Points[i].Date.Before(from) })
	return PriceSeries{ISIN: s.ISIN, Points: s.Points[i:]}
}

func (s PriceSeries) Closes() []float64 {
	return s.column(func(p PricePoint) float64 { return p.Close })
}

func (s PriceSeries) Opens() []float64 {
	return s.column(func(p PricePoint) float64 { return p.Open })
}

func (s PriceSeries) Highs() []float64 {
	return s.column(func(p PricePoint) float64 { return p.High })
}

func (s PriceSeries) Lows() []float64 {
	return s.column(func(p PricePoint) float64 { return p.Low })
}

func (s PriceSeries) Volumes() []float64 {
	return s.column(func(p PricePoint) float64 { return p.Volume })
}

func (s PriceSeries) column(f func(PricePoint) float64) []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = f(p)
	}
	return out
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
