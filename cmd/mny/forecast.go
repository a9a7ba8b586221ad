package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mny-engine/mny/internal/cli"
	"github.com/mny-engine/mny/internal/forecast"
	"github.com/mny-engine/mny/internal/model"
	"github.com/mny-engine/mny/internal/report"
)

func forecastCmd() *cobra.Command {
	var (
		days     int
		starting string
	)

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Project balances forward from scheduled transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, ldg, user, err := ledgerFor(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			opts := forecast.Options{Days: days}
			if starting != "" {
				cents, err := parseSignedCents(starting)
				if err != nil {
					return err
				}
				opts.StartingBalance = &cents
			}

			fc := ldg.Forecast(user.ID, opts)
			rows, err := fc.Rows(ctx)
			if err != nil {
				return err
			}

			cmd.Println(cli.TitleStyle.Render(fmt.Sprintf(
				"Forecast %s through %s",
				fc.StartDate().Format("2006-01-02"),
				fc.EndDate().Format("2006-01-02"),
			)))
			cmd.Print(cli.RenderRows(rows))

			balance, err := fc.Balance(ctx, time.Time{})
			if errors.Is(err, report.ErrEmptySet) {
				return nil
			}
			if err != nil {
				return err
			}
			low, err := fc.Low(ctx, time.Time{})
			if err != nil {
				return err
			}

			cmd.Println()
			cmd.Println(fmt.Sprintf("Projected balance: %s", model.DisplayCents(balance, model.DefaultCurrency)))
			cmd.Println(fmt.Sprintf("Projected low:     %s", model.DisplayCents(low, model.DefaultCurrency)))

			negatives, err := fc.NegativeBalances(ctx, time.Time{})
			if err != nil {
				return err
			}
			if len(negatives) > 0 {
				printNegativeDays(cmd, negatives)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", forecast.DefaultHorizonDays, "projection horizon in days")
	cmd.Flags().StringVar(&starting, "starting-balance", "", "override the opening balance (default: current net worth)")
	return cmd
}
