package notifier

import (
	"fmt"
	"html"
	"strings"

	"SwingScanner/internal/fund"
	"SwingScanner/internal/model"
	"SwingScanner/internal/recorder"
	"SwingScanner/internal/scanner"
)

// FormatScanSummary formats the strong and moderate signals of a scan run.
// At most limit signals are listed; a non-positive limit lists all of them.
func FormatScanSummary(rep *scanner.Report, limit int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>Swing scan</b> | %s\n", dateOf(rep)))
	b.WriteString(fmt.Sprintf("Symbols: %d | Strong: %d\n", rep.Total, rep.Strong))
	b.WriteString(fmt.Sprintf("Risk: %.2f%% of %.2f\n\n", rep.Risk.RiskPerTrade*100, rep.Risk.PortfolioSize))

	var strong, moderate []model.ScanRow
	for _, row := range rep.Rows {
		switch {
		case row.IsStrong():
			strong = append(strong, row)
		case row.Result != nil && row.Status == model.StatusModerate:
			moderate = append(moderate, row)
		}
	}
	if len(strong)+len(moderate) == 0 {
		b.WriteString("No swing signals today.")
		return b.String()
	}

	shown := 0
	write := func(title string, rows []model.ScanRow) {
		if limit > 0 && len(rows) > limit-shown {
			rows = rows[:max(limit-shown, 0)]
		}
		if len(rows) == 0 {
			return
		}
		b.WriteString(title + "\n")
		for _, row := range rows {
			b.WriteString(formatSignal(row.Result))
			shown++
		}
		b.WriteString("\n")
	}
	write("🟢 <b>Strong</b>", strong)
	write("🟡 <b>Moderate</b> (volume missing)", moderate)
	if rest := len(strong) + len(moderate) - shown; rest > 0 {
		b.WriteString(fmt.Sprintf("… and %d more\n", rest))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSignal(r *model.SignalResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s</b> %.2f", html.EscapeString(r.Symbol), r.Price))
	if rsi, ok := r.Indicators.RSI.Get(); ok {
		b.WriteString(fmt.Sprintf(" | RSI %.1f", rsi))
	}
	if z, ok := r.Indicators.VolumeZScore.Get(); ok {
		b.WriteString(fmt.Sprintf(" | Z %.2f", z))
	}
	b.WriteString("\n")
	if stop, ok := r.StopLoss.Get(); ok {
		b.WriteString(fmt.Sprintf("   Stop: %.2f (×%.1f ATR)", stop, r.DynamicMultiplier))
	} else {
		b.WriteString("   Stop: n/a")
	}
	if r.RecommendedLot != nil {
		b.WriteString(fmt.Sprintf(" | Lot: %d", *r.RecommendedLot))
	}
	b.WriteString("\n")
	for _, reason := range r.Reasons {
		b.WriteString("   • " + html.EscapeString(reason) + "\n")
	}
	return b.String()
}

func dateOf(rep *scanner.Report) string {
	if rep.AnalysisDate.IsZero() {
		return rep.StartedAt.Format(model.DateLayout)
	}
	return rep.AnalysisDate.Format(model.DateLayout)
}

// FormatRisk formats the active risk parameters.
func FormatRisk(p fund.RiskParams) string {
	var b strings.Builder
	b.WriteString("⚖️ <b>Risk settings</b>\n\n")
	b.WriteString(fmt.Sprintf("Portfolio size: %.2f\n", p.PortfolioSize))
	b.WriteString(fmt.Sprintf("Risk per trade: %.2f%%\n", p.RiskPerTrade*100))
	b.WriteString(fmt.Sprintf("Risk amount: %.2f", p.RiskAmount()))
	return b.String()
}

// FormatStatus formats the last recorded run and cache state.
func FormatStatus(last *recorder.RunSummary, cached int, p fund.RiskParams) string {
	var b strings.Builder
	b.WriteString("📦 <b>Scanner status</b>\n\n")
	b.WriteString(fmt.Sprintf("Cached symbols: %d\n", cached))
	if last == nil {
		b.WriteString("Last scan: none\n")
	} else {
		b.WriteString(fmt.Sprintf("Last scan: %s (data %s)\n", last.StartedAt.Format("2006-01-02 15:04"), last.AnalysisDate))
		b.WriteString(fmt.Sprintf("Strong signals: %d of %d\n", last.Strong, last.Total))
	}
	b.WriteString(fmt.Sprintf("Risk: %.2f%% of %.2f", p.RiskPerTrade*100, p.PortfolioSize))
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return strings.Join([]string{
		"Commands:",
		"/scan - run a scan and list signals",
		"/strong - list strong signals of the last scan",
		"/risk &lt;portfolio&gt; &lt;percent&gt; - update risk settings",
		"/risk - show risk settings",
		"/status - scanner status",
	}, "\n")
}
