package scanner

import (
	"fmt"
	"sort"
	"time"

	"SwingScanner/internal/fund"
	"SwingScanner/internal/model"
)

// Report is the outcome of one scan run.
type Report struct {
	RunID        string          `json:"run_id"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   time.Time       `json:"finished_at"`
	AnalysisDate time.Time       `json:"analysis_date"`
	Risk         fund.RiskParams `json:"risk"`
	Total        int             `json:"total"`
	Strong       int             `json:"strong"`
	Rows         []model.ScanRow `json:"rows"`
}

// Filters accepted by Report.Filter.
const (
	FilterAll    = ""
	FilterStrong = "strong"
)

// Filter returns a copy of the report keeping only the matching rows.
// Total and Strong still describe the whole run.
func (r *Report) Filter(filter string) (*Report, error) {
	out := *r
	switch filter {
	case FilterAll, "all":
		out.Rows = append([]model.ScanRow(nil), r.Rows...)
	case FilterStrong:
		out.Rows = nil
		for _, row := range r.Rows {
			if row.IsStrong() {
				out.Rows = append(out.Rows, row)
			}
		}
	default:
		return nil, fmt.Errorf("unknown filter %q", filter)
	}
	return &out, nil
}

// numericKeys are the sortable result columns besides symbol.
var numericKeys = map[string]func(*model.SignalResult) model.Value{
	"price":         func(r *model.SignalResult) model.Value { return model.Some(r.Price) },
	"volume_zscore": func(r *model.SignalResult) model.Value { return r.Indicators.VolumeZScore },
	"rsi":           func(r *model.SignalResult) model.Value { return r.Indicators.RSI },
	"atr_percent":   func(r *model.SignalResult) model.Value { return r.Indicators.ATRPercent },
	"recommended_lot": func(r *model.SignalResult) model.Value {
		if r.RecommendedLot == nil {
			return model.None()
		}
		return model.Some(float64(*r.RecommendedLot))
	},
}

// SortColumns lists the columns accepted by Report.Sort.
func SortColumns() []string {
	cols := []string{"symbol"}
	for c := range numericKeys {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Sort returns a copy of the report ordered by column. Error rows and rows
// without a value for the column keep their relative order at the end.
func (r *Report) Sort(column string, desc bool) (*Report, error) {
	key, numeric := numericKeys[column]
	if !numeric && column != "symbol" {
		return nil, fmt.Errorf("unknown sort column %q", column)
	}

	var sortable, rest []model.ScanRow
	for _, row := range r.Rows {
		if row.Result == nil || (numeric && !key(row.Result).Valid()) {
			rest = append(rest, row)
			continue
		}
		sortable = append(sortable, row)
	}

	sort.SliceStable(sortable, func(i, j int) bool {
		a, b := sortable[i], sortable[j]
		if !numeric {
			if desc {
				return a.Symbol > b.Symbol
			}
			return a.Symbol < b.Symbol
		}
		x, y := key(a.Result).Or(0), key(b.Result).Or(0)
		if desc {
			return x > y
		}
		return x < y
	})

	out := *r
	out.Rows = append(sortable, rest...)
	return &out, nil
}
