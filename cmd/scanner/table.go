package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"SwingScanner/internal/collector"
	"SwingScanner/internal/fund"
	"SwingScanner/internal/model"
	"SwingScanner/internal/scanner"
)

func printReport(w io.Writer, rep *scanner.Report) error {
	fmt.Fprintf(w, "Run %s | data %s | %d symbols | %d strong | risk %.2f%% of %.2f\n\n",
		rep.RunID, rep.AnalysisDate.Format(model.DateLayout), rep.Total, rep.Strong,
		rep.Risk.RiskPerTrade*100, rep.Risk.PortfolioSize)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tPRICE\tRSI\tZ\tATR%\tSTOP\tLOT\tSIGNAL\tREASONS")
	for _, row := range rep.Rows {
		if row.Result == nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\t-\t%s\t\n", row.Symbol, row.Error)
			continue
		}
		r := row.Result
		fmt.Fprintf(tw, "%s\t%.2f\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.Symbol, r.Price,
			cell(r.Indicators.RSI, 1), cell(r.Indicators.VolumeZScore, 2), cell(r.Indicators.ATRPercent, 2),
			cell(r.StopLoss, 2), lotCell(r.RecommendedLot), signalLabel(row), r.ReasonText())
	}
	return tw.Flush()
}

func cell(v model.Value, prec int) string {
	f, ok := v.Get()
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(f, 'f', prec, 64)
}

func lotCell(lot *int64) string {
	if lot == nil {
		return "-"
	}
	return strconv.FormatInt(*lot, 10)
}

func signalLabel(row model.ScanRow) string {
	switch row.Status {
	case model.StatusStrong:
		return "STRONG"
	case model.StatusModerate:
		return "MODERATE"
	case model.StatusTrendOnly:
		return "TREND"
	default:
		return "-"
	}
}

func printSync(w io.Writer, results []collector.SyncResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tOK\tINSERTED\tMESSAGE")
	failed := 0
	for _, r := range results {
		if !r.OK {
			failed++
		}
		fmt.Fprintf(tw, "%s\t%v\t%d\t%s\n", r.Symbol, r.OK, r.Inserted, r.Message)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d symbols, %d failed\n", len(results), failed)
}

func printRisk(w io.Writer, p fund.RiskParams) error {
	_, err := fmt.Fprintf(w, "portfolio_size: %.2f\nrisk_per_trade: %.2f%%\nrisk_amount:    %.2f\n",
		p.PortfolioSize, p.RiskPerTrade*100, p.RiskAmount())
	return err
}
