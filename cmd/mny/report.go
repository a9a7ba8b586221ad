package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/mny-engine/mny/internal/cli"
	"github.com/mny-engine/mny/internal/common"
	"github.com/mny-engine/mny/internal/filter"
	"github.com/mny-engine/mny/internal/model"
	"github.com/mny-engine/mny/internal/report"
	"github.com/mny-engine/mny/internal/service"
)

type reportFlags struct {
	account   string
	endpoint  string
	category  string
	txnType   string
	status    string
	after     string
	before    string
	amount    string
	minAmount string
	maxAmount string
}

func (f *reportFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.account, "account", "", "restrict to one account by name")
	cmd.Flags().StringVar(&f.endpoint, "endpoint", "", "restrict to one counterparty by label")
	cmd.Flags().StringVar(&f.category, "category", "", "restrict to one category by name")
	cmd.Flags().StringVar(&f.txnType, "type", "", "restrict to a transaction type")
	cmd.Flags().StringVar(&f.status, "status", "", "restrict to a status (reconciled or cleared)")
	cmd.Flags().StringVar(&f.after, "after", "", "only transactions on or after YYYY-MM-DD")
	cmd.Flags().StringVar(&f.before, "before", "", "only transactions on or before YYYY-MM-DD")
	cmd.Flags().StringVar(&f.amount, "amount", "", "only transactions of exactly this amount")
	cmd.Flags().StringVar(&f.minAmount, "min-amount", "", "only transactions of at least this amount")
	cmd.Flags().StringVar(&f.maxAmount, "max-amount", "", "only transactions of at most this amount")
	cmd.MarkFlagsMutuallyExclusive("amount", "min-amount")
	cmd.MarkFlagsMutuallyExclusive("amount", "max-amount")
}

// spec resolves the name-based flags against stored entities and builds
// the corresponding filter specification.
func (f *reportFlags) spec(ctx context.Context, store service.Storage, userID string) (filter.Spec, error) {
	spec := filter.Spec{}

	if f.account != "" {
		account, err := store.GetAccountByName(ctx, userID, f.account)
		if err != nil {
			return spec, fmt.Errorf("could not find an account named %q: %w", f.account, err)
		}
		spec.AccountIDs = []string{account.ID}
	}
	if f.endpoint != "" {
		id, err := endpointIDByLabel(ctx, store, userID, f.endpoint)
		if err != nil {
			return spec, err
		}
		spec.EndpointIDs = []string{id}
	}
	if f.category != "" {
		category, err := store.GetCategoryByName(ctx, userID, f.category)
		if err != nil {
			return spec, fmt.Errorf("could not find a category named %q: %w", f.category, err)
		}
		spec.CategoryIDs = []string{category.ID}
	}
	if f.txnType != "" {
		spec.Types = []model.TransactionType{model.TransactionType(f.txnType)}
	}
	if f.status != "" {
		spec.Statuses = []model.Status{model.Status(f.status)}
	}
	if f.after != "" {
		at, err := parseDateFlag(f.after)
		if err != nil {
			return spec, err
		}
		spec.After = &at
	}
	if f.before != "" {
		at, err := parseDateFlag(f.before)
		if err != nil {
			return spec, err
		}
		spec.Before = &at
	}

	switch {
	case f.amount != "":
		cents, err := parseCents(f.amount)
		if err != nil {
			return spec, err
		}
		spec.Amount = filter.Exactly(cents)
	case f.minAmount != "" || f.maxAmount != "":
		var min, max *int64
		if f.minAmount != "" {
			cents, err := parseCents(f.minAmount)
			if err != nil {
				return spec, err
			}
			min = filter.Cents(cents)
		}
		if f.maxAmount != "" {
			cents, err := parseCents(f.maxAmount)
			if err != nil {
				return spec, err
			}
			max = filter.Cents(cents)
		}
		spec.Amount = filter.Between(min, max)
	}

	return spec, nil
}

func endpointIDByLabel(ctx context.Context, store service.Storage, userID, label string) (string, error) {
	endpoints, err := store.ListEndpoints(ctx, userID)
	if err != nil {
		return "", err
	}
	for _, ep := range endpoints {
		if ep.Label == label {
			return ep.ID, nil
		}
	}
	return "", fmt.Errorf("could not find an endpoint labeled %q: %w", label, common.ErrNotFound)
}

func reportCmd() *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show transactions and running balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, ldg, user, err := ledgerFor(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			spec, err := flags.spec(ctx, store, user.ID)
			if err != nil {
				return err
			}

			set := ldg.TransactionSet(user.ID, spec)
			rows, err := set.Rows(ctx)
			if err != nil {
				return err
			}

			cmd.Println(cli.TitleStyle.Render("Transactions"))
			cmd.Print(cli.RenderRows(rows))

			return printSetSummary(ctx, cmd, set)
		},
	}
	flags.bind(cmd)
	return cmd
}

func printSetSummary(ctx context.Context, cmd *cobra.Command, set *filter.Set) error {
	balance, err := set.Balance(ctx, time.Time{})
	if errors.Is(err, report.ErrEmptySet) {
		return nil
	}
	if err != nil {
		return err
	}
	high, err := set.High(ctx, time.Time{})
	if err != nil {
		return err
	}
	low, err := set.Low(ctx, time.Time{})
	if err != nil {
		return err
	}

	currency := model.DefaultCurrency
	cmd.Println()
	cmd.Println(fmt.Sprintf("Balance:   %s", model.DisplayCents(balance, currency)))
	cmd.Println(fmt.Sprintf("High:      %s", model.DisplayCents(high, currency)))
	cmd.Println(fmt.Sprintf("Low:       %s", model.DisplayCents(low, currency)))
	cmd.Println(fmt.Sprintf("Variation: %s", model.DisplayCents(high-low, currency)))

	negatives, err := set.NegativeBalances(ctx, time.Time{})
	if err != nil {
		return err
	}
	if len(negatives) > 0 {
		printNegativeDays(cmd, negatives)
	}
	return nil
}

func printNegativeDays(cmd *cobra.Command, negatives map[time.Time]int64) {
	days := make([]time.Time, 0, len(negatives))
	for day := range negatives {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	cmd.Println()
	cmd.Println(cli.ErrorStyle.Render("Days with a negative balance:"))
	for _, day := range days {
		cmd.Println(cli.ErrorStyle.Render(fmt.Sprintf(
			"  %s  %s", day.Format("2006-01-02"), model.DisplayCents(negatives[day], model.DefaultCurrency),
		)))
	}
}
