package models

import "time"

// RunSummary describes the outcome of one engine pass.
type RunSummary struct {
	StartedAt      time.Time        `json:"started_at"`
	Elapsed        time.Duration    `json:"elapsed"`
	Universe       int              `json:"universe"`
	Processed      int              `json:"processed"`
	Skipped        int              `json:"skipped"`
	Failed         int              `json:"failed"`
	Predicted      int              `json:"predicted"`
	BudgetExceeded bool             `json:"budget_exceeded"`
	CategoryCounts map[Category]int `json:"category_counts"`
}

// RunResult is everything a pass produces.
type RunResult struct {
	Signals     map[Category][]SignalResult `json:"signals"`
	Predictions []PredictionResult          `json:"predictions"`
	Summary     RunSummary                  `json:"summary"`
}

// NewRunResult returns a result with an empty list for every category.
func NewRunResult() *RunResult {
	r := &RunResult{
		Signals:     make(map[Category][]SignalResult, len(Categories)),
		Predictions: []PredictionResult{},
		Summary:     RunSummary{CategoryCounts: make(map[Category]int, len(Categories))},
	}
	for _, c := range Categories {
		r.Signals[c] = []SignalResult{}
		r.Summary.CategoryCounts[c] = 0
	}
	return r
}
