package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mny-engine/mny/internal/cli"
	"github.com/mny-engine/mny/internal/ledger"
	"github.com/mny-engine/mny/internal/model"
	"github.com/mny-engine/mny/internal/schedule"
)

type scheduleFlags struct {
	account    string
	category   string
	currency   string
	on         string
	starting   string
	every      string
	interval   int
	dayOfMonth int
}

func (f *scheduleFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.account, "account", "", "account name (default: your default account)")
	cmd.Flags().StringVar(&f.category, "category", "", "category name")
	cmd.Flags().StringVar(&f.currency, "currency", "", "currency tag (default: usd)")
	cmd.Flags().StringVar(&f.on, "on", "", "single occurrence date YYYY-MM-DD")
	cmd.Flags().StringVar(&f.starting, "starting", "", "recurrence anchor date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&f.every, "every", "", "recurrence frequency: daily, weekly, monthly or yearly")
	cmd.Flags().IntVar(&f.interval, "interval", 1, "repeat every N frequency units")
	cmd.Flags().IntVar(&f.dayOfMonth, "day-of-month", 0, "pin monthly occurrences to this day")
	cmd.MarkFlagsMutuallyExclusive("on", "every")
}

func (f *scheduleFlags) params() (ledger.ScheduleParams, error) {
	p := ledger.ScheduleParams{
		Account:  f.account,
		Category: f.category,
		Currency: f.currency,
	}

	switch {
	case f.on != "":
		on, err := parseDateFlag(f.on)
		if err != nil {
			return p, err
		}
		p.On = &on
	case f.every != "":
		anchor := model.DayOf(time.Now())
		if f.starting != "" {
			at, err := parseDateFlag(f.starting)
			if err != nil {
				return p, err
			}
			anchor = model.DayOf(at)
		}
		sched := schedule.New(anchor, schedule.Rule{
			Every:      schedule.Frequency(f.every),
			Interval:   f.interval,
			DayOfMonth: f.dayOfMonth,
		})
		if err := sched.Validate(); err != nil {
			return p, err
		}
		p.Schedule = sched
	default:
		return p, fmt.Errorf("either --on or --every is required")
	}
	return p, nil
}

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Schedule future transactions",
	}
	cmd.AddCommand(scheduleDepositCmd(), scheduleWithdrawCmd(), scheduleTransferCmd())
	return cmd
}

func scheduleDepositCmd() *cobra.Command {
	var flags scheduleFlags
	var from string

	cmd := &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Schedule a future deposit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd, args[0], flags, func(p ledger.ScheduleParams) ledger.ScheduleParams {
				p.From = from
				return p
			}, func(l *ledger.Ledger, userID string, amount int64, p ledger.ScheduleParams) (*model.ScheduledTransaction, error) {
				return l.WillDeposit(cmd.Context(), userID, amount, p)
			})
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&from, "from", "", "payer endpoint (required)")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func scheduleWithdrawCmd() *cobra.Command {
	var flags scheduleFlags
	var to string

	cmd := &cobra.Command{
		Use:   "withdraw <amount>",
		Short: "Schedule a future withdrawal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd, args[0], flags, func(p ledger.ScheduleParams) ledger.ScheduleParams {
				p.To = to
				return p
			}, func(l *ledger.Ledger, userID string, amount int64, p ledger.ScheduleParams) (*model.ScheduledTransaction, error) {
				return l.WillWithdraw(cmd.Context(), userID, amount, p)
			})
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&to, "to", "", "payee endpoint (required)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func scheduleTransferCmd() *cobra.Command {
	var flags scheduleFlags
	var to string

	cmd := &cobra.Command{
		Use:   "transfer <amount>",
		Short: "Schedule a future transfer between accounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd, args[0], flags, func(p ledger.ScheduleParams) ledger.ScheduleParams {
				p.To = to
				return p
			}, func(l *ledger.Ledger, userID string, amount int64, p ledger.ScheduleParams) (*model.ScheduledTransaction, error) {
				return l.WillTransfer(cmd.Context(), userID, amount, p)
			})
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&to, "to", "", "destination account name (required)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

type scheduleFn func(*ledger.Ledger, string, int64, ledger.ScheduleParams) (*model.ScheduledTransaction, error)

func runSchedule(cmd *cobra.Command, amountArg string, flags scheduleFlags, finish func(ledger.ScheduleParams) ledger.ScheduleParams, do scheduleFn) error {
	ctx := cmd.Context()
	amount, err := parseCents(amountArg)
	if err != nil {
		return err
	}
	params, err := flags.params()
	if err != nil {
		return err
	}
	params = finish(params)

	store, ldg, user, err := ledgerFor(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	st, err := do(ldg, user.ID, amount, params)
	if err != nil {
		return err
	}

	var when string
	if st.On != nil {
		when = st.On.Format("2006-01-02")
	} else {
		when = fmt.Sprintf("every %d %s from %s", flags.interval, flags.every, st.Schedule.Anchor.Format("2006-01-02"))
	}
	cmd.Println(cli.SuccessStyle.Render(fmt.Sprintf(
		"Scheduled %s of %s on %s", st.Type, model.DisplayCents(st.Amount, st.Currency), when,
	)))
	return nil
}
