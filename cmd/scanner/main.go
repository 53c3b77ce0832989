// scanner - swing-trading signal scanner for Borsa Istanbul equities
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"SwingScanner/internal/notifier"
	"SwingScanner/internal/scanner"
	"SwingScanner/internal/scheduler"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "scanner",
		Short: "Swing-trading signal scanner",
		Long: `scanner keeps a daily price store up to date, evaluates trend,
pullback, momentum and volume criteria per symbol, and proposes an
ATR-based stop-loss and position size.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (defaults to $CONFIG_PATH or configs/config.yaml)")

	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(bootstrapCmd())
	rootCmd.AddCommand(updateCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(settingsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withApp loads config, builds the app and runs fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(cmd.Context(), a)
}

func scanCmd() *cobra.Command {
	var (
		filter    string
		sortBy    string
		asc       bool
		portfolio float64
		riskPct   float64
		update    bool
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Evaluate every symbol and print the signals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				syms, err := a.symbols()
				if err != nil {
					return err
				}
				if update {
					// Update reloads the cache itself.
					printSync(cmd.OutOrStdout(), a.collector.Update(ctx, syms))
				} else if err := a.warmCache(ctx, syms); err != nil {
					return err
				}

				risk := a.settings.Params()
				if cmd.Flags().Changed("portfolio") {
					risk.PortfolioSize = portfolio
				}
				if cmd.Flags().Changed("risk") {
					risk.RiskPerTrade = riskPct / 100.0
				}

				rep, err := a.scanner.Scan(ctx, syms, risk)
				if err != nil {
					return err
				}
				if err := a.recorder.RecordScan(ctx, rep); err != nil {
					log.Error().Err(err).Msg("record scan")
				}
				if rep, err = rep.Filter(filter); err != nil {
					return err
				}
				if sortBy != "" {
					if rep, err = rep.Sort(sortBy, !asc); err != nil {
						return err
					}
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(rep)
				}
				return printReport(cmd.OutOrStdout(), rep)
			})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "all", "row filter: all or strong")
	cmd.Flags().StringVar(&sortBy, "sort", "", fmt.Sprintf("sort column, one of %v", scanner.SortColumns()))
	cmd.Flags().BoolVar(&asc, "asc", false, "sort ascending (default descending)")
	cmd.Flags().Float64Var(&portfolio, "portfolio", 0, "portfolio size for this scan only")
	cmd.Flags().Float64Var(&riskPct, "risk", 0, "risk per trade in percent for this scan only")
	cmd.Flags().BoolVar(&update, "update", false, "update prices before scanning")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func bootstrapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Download the full price history of every symbol",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				syms, err := a.symbols()
				if err != nil {
					return err
				}
				printSync(cmd.OutOrStdout(), a.collector.Bootstrap(ctx, syms))
				return ctx.Err()
			})
		},
	}
}

func updateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Download bars missing since the last stored date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				syms, err := a.symbols()
				if err != nil {
					return err
				}
				printSync(cmd.OutOrStdout(), a.collector.Update(ctx, syms))
				return ctx.Err()
			})
		},
	}
}

func watchCmd() *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run scheduled updates and scans, answering Telegram commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				syms, err := a.symbols()
				if err != nil {
					return err
				}
				if err := a.warmCache(ctx, syms); err != nil {
					return err
				}

				var tn *notifier.TelegramNotifier
				var n scheduler.Notifier
				if a.cfg.TelegramEnabled() {
					tn, err = notifier.NewTelegramNotifier(notifier.Options{
						Token:  a.cfg.Telegram.BotToken,
						ChatID: a.cfg.Telegram.ChatID,
						Proxy:  a.cfg.DataSource.Proxy,
					})
					if err != nil {
						return err
					}
					n = tn
				} else {
					log.Warn().Msg("telegram not configured, notifications disabled")
				}

				sched := scheduler.NewScheduler(ctx, a.collector, a.scanner, a.settings, n, a.recorder, a.cache, a.symbols)
				if err := sched.RegisterAll(a.cfg.Schedule.UpdateCron, a.cfg.Schedule.ScanCron); err != nil {
					return err
				}
				sched.Start()
				defer sched.Stop()

				if tn != nil {
					go tn.StartPolling(ctx, sched.HandleCommand)
					log.Info().Msg("telegram polling started")
				}
				if runOnStart {
					go func() {
						if _, err := sched.RunUpdate(ctx); err != nil {
							log.Error().Err(err).Msg("startup update")
						}
						if _, err := sched.RunScan(ctx); err != nil {
							log.Error().Err(err).Msg("startup scan")
						}
					}()
				}

				log.Info().Msg("scanner is running, press Ctrl+C to stop")
				<-ctx.Done()
				log.Info().Msg("shutdown signal received, stopping")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "run an update and a scan immediately")
	return cmd
}

func settingsCmd() *cobra.Command {
	var (
		portfolio float64
		riskPct   float64
	)
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or update the saved risk settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			settings, err := newSettings(cfg)
			if err != nil {
				return err
			}
			p := settings.Params()
			if cmd.Flags().Changed("portfolio") || cmd.Flags().Changed("risk") {
				if !cmd.Flags().Changed("portfolio") {
					portfolio = p.PortfolioSize
				}
				if !cmd.Flags().Changed("risk") {
					riskPct = p.RiskPerTrade * 100
				}
				if p, err = settings.Update(portfolio, riskPct); err != nil {
					return err
				}
			}
			return printRisk(cmd.OutOrStdout(), p)
		},
	}
	cmd.Flags().Float64Var(&portfolio, "portfolio", 0, "portfolio size")
	cmd.Flags().Float64Var(&riskPct, "risk", 0, "risk per trade in percent, e.g. 2.5")
	return cmd
}
