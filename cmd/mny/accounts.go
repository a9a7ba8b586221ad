package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mny-engine/mny/internal/cli"
	"github.com/mny-engine/mny/internal/model"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
	}
	cmd.AddCommand(accountsListCmd())
	cmd.AddCommand(accountsAddCmd())
	return cmd
}

func accountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts with their current balances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, ldg, user, err := ledgerFor(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			accounts, err := store.ListAccounts(ctx, user.ID)
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				cmd.Println(cli.SubtleStyle.Render("No accounts yet. Create one with: mny accounts add <name>"))
				return nil
			}

			now := time.Now()
			for _, a := range accounts {
				balance, err := store.AccountBalance(ctx, a.ID, now)
				if err != nil {
					return err
				}
				marker := "  "
				if a.IsDefault {
					marker = "* "
				}
				cmd.Printf("%s%-20s %s\n", marker, a.Name, model.DisplayCents(balance, model.DefaultCurrency))
			}

			net, err := ldg.NetWorth(ctx, user.ID, now)
			if err != nil {
				return err
			}
			cmd.Println(cli.TitleStyle.Render(fmt.Sprintf("Net worth: %s", model.DisplayCents(net, model.DefaultCurrency))))
			return nil
		},
	}
}

func accountsAddCmd() *cobra.Command {
	var isDefault bool

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, user, err := ledgerFor(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			account := &model.Account{UserID: user.ID, Name: args[0], IsDefault: isDefault}
			if err := store.CreateAccount(ctx, account); err != nil {
				return err
			}
			cmd.Println(cli.SuccessStyle.Render(fmt.Sprintf("Created account %q", account.Name)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&isDefault, "default", false, "make this the default account")
	return cmd
}
