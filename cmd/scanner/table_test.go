package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"SwingScanner/internal/collector"
	"SwingScanner/internal/fund"
	"SwingScanner/internal/model"
	"SwingScanner/internal/scanner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintReport(t *testing.T) {
	lot := int64(244)
	rep := &scanner.Report{
		RunID:        "run-1",
		AnalysisDate: time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC),
		Risk:         fund.DefaultRiskParams(),
		Total:        2,
		Strong:       1,
		Rows: []model.ScanRow{
			{Symbol: "THYAO", Status: model.StatusStrong, Result: &model.SignalResult{
				Price:          148.5,
				Indicators:     model.IndicatorRow{RSI: model.Some(54.27), VolumeZScore: model.Some(4.2), ATRPercent: model.Some(2.2975)},
				Reasons:        []string{"Trend ok.", "Pullback ok."},
				StopLoss:       model.Some(143.38),
				RecommendedLot: &lot,
			}},
			{Symbol: "SHORT", Error: string(model.StatusInsufficientData)},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, printReport(&buf, rep))
	out := buf.String()

	assert.Contains(t, out, "data 2024-06-07 | 2 symbols | 1 strong | risk 2.50% of 50000.00")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, []string{"SYMBOL", "PRICE", "RSI", "Z", "ATR%", "STOP", "LOT", "SIGNAL", "REASONS"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"THYAO", "148.50", "54.3", "4.20", "2.30", "143.38", "244", "STRONG", "Trend", "ok.", "|", "Pullback", "ok."}, strings.Fields(lines[3]))
	assert.Equal(t, []string{"SHORT", "-", "-", "-", "-", "-", "-", "insufficient", "data", "(<", "200", "bars)"}, strings.Fields(lines[4]))
}

func TestPrintSyncAndRisk(t *testing.T) {
	var buf bytes.Buffer
	printSync(&buf, []collector.SyncResult{
		{Symbol: "AAA", OK: true, Inserted: 3, Message: "ok inserted: 3 rows"},
		{Symbol: "BBB", Message: "no data returned"},
	})
	assert.Contains(t, buf.String(), "2 symbols, 1 failed")

	buf.Reset()
	require.NoError(t, printRisk(&buf, fund.RiskParams{PortfolioSize: 1000, RiskPerTrade: 0.02}))
	assert.Contains(t, buf.String(), "risk_amount:    20.00")
}
