package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mny-engine/mny/internal/cli"
	"github.com/mny-engine/mny/internal/ledger"
	"github.com/mny-engine/mny/internal/model"
)

type transactFlags struct {
	account  string
	category string
	date     string
	currency string
}

func (f *transactFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.account, "account", "", "account name (default: your default account)")
	cmd.Flags().StringVar(&f.category, "category", "", "category name")
	cmd.Flags().StringVar(&f.date, "date", "", "occurrence date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&f.currency, "currency", "", "currency tag (default: usd)")
}

func (f *transactFlags) params() (ledger.TransactionParams, error) {
	at, err := parseDateFlag(f.date)
	if err != nil {
		return ledger.TransactionParams{}, err
	}
	return ledger.TransactionParams{
		Account:  f.account,
		Category: f.category,
		Currency: f.currency,
		At:       at,
	}, nil
}

func depositCmd() *cobra.Command {
	var flags transactFlags
	var from string

	cmd := &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Record a deposit into an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			amount, err := parseCents(args[0])
			if err != nil {
				return err
			}
			params, err := flags.params()
			if err != nil {
				return err
			}
			params.From = from

			store, ldg, user, err := ledgerFor(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txn, err := ldg.Deposit(ctx, user.ID, amount, params)
			if err != nil {
				return err
			}
			printRecorded(cmd, txn)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&from, "from", "", "payer endpoint (required)")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func withdrawCmd() *cobra.Command {
	var flags transactFlags
	var to string

	cmd := &cobra.Command{
		Use:   "withdraw <amount>",
		Short: "Record a withdrawal from an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			amount, err := parseCents(args[0])
			if err != nil {
				return err
			}
			params, err := flags.params()
			if err != nil {
				return err
			}
			params.To = to

			store, ldg, user, err := ledgerFor(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txn, err := ldg.Withdraw(ctx, user.ID, amount, params)
			if err != nil {
				return err
			}
			printRecorded(cmd, txn)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&to, "to", "", "payee endpoint (required)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func transferCmd() *cobra.Command {
	var flags transactFlags
	var to string

	cmd := &cobra.Command{
		Use:   "transfer <amount>",
		Short: "Move money between two of your accounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			amount, err := parseCents(args[0])
			if err != nil {
				return err
			}
			params, err := flags.params()
			if err != nil {
				return err
			}
			params.To = to

			store, ldg, user, err := ledgerFor(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txn, err := ldg.Transfer(ctx, user.ID, amount, params)
			if err != nil {
				return err
			}
			printRecorded(cmd, txn)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&to, "to", "", "destination account name (required)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func printRecorded(cmd *cobra.Command, txn *model.Transaction) {
	cmd.Println(cli.SuccessStyle.Render(fmt.Sprintf(
		"Recorded %s of %s (%s -> %s)",
		txn.Type,
		model.DisplayCents(txn.Amount, txn.Currency),
		txn.FromName(),
		txn.ToName(),
	)))
}
