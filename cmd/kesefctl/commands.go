package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"kesef/internal/analytics"
	"kesef/internal/core"
	"kesef/internal/services"
)

func newSeedCmd(a *app) *cobra.Command {
	var (
		userID string
		months int
		seed   uint64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo transactions for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.ctx(cmd)
			if _, err := a.repo.GetUser(ctx, userID); err != nil {
				return fmt.Errorf("user %s: %w", userID, err)
			}
			if !cmd.Flags().Changed("seed") {
				seed = uint64(time.Now().UnixNano())
			}
			report, err := services.NewSeeder(a.repo, seed).Seed(ctx, userID, months)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Inserted %d transactions over %d months\n", report.Transactions, months)
			fmt.Fprintf(out, "  income:   %s\n", humanize.CommafWithDigits(report.TotalIncome.Units(), 2))
			fmt.Fprintf(out, "  expenses: %s\n", humanize.CommafWithDigits(report.TotalExpenses.Units(), 2))
			balance := report.TotalIncome.Units() - report.TotalExpenses.Units()
			fmt.Fprintf(out, "  balance:  %s\n", humanize.CommafWithDigits(balance, 2))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id to seed")
	cmd.Flags().IntVar(&months, "months", 3, "number of months, the current one included")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for reproducible data")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newSummaryCmd(a *app) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print a user's recommended budget as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := services.NewBudgetService(a.repo).Summary(a.ctx(cmd), userID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// newDetectCmd judges a hypothetical expense against stored history
// without saving it.
func newDetectCmd(a *app) *cobra.Command {
	var (
		userID   string
		amount   string
		category string
		date     string
	)
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Dry-run outlier detection for an expense",
		RunE: func(cmd *cobra.Command, args []string) error {
			money, err := core.ParseAmount(amount)
			if err != nil {
				return fmt.Errorf("--amount %q: %w", amount, err)
			}
			if _, ok := core.ParseDate(date); !ok {
				return fmt.Errorf("--date %q: %w", date, core.ErrInvalidDate)
			}

			history, err := a.repo.ListTransactions(a.ctx(cmd), userID, 0)
			if err != nil {
				return err
			}
			verdict := analytics.Detect(analytics.Candidate{
				Amount:   money.Units(),
				Category: category,
				Date:     date,
				Type:     core.Expense,
			}, analytics.Collect(history))
			return writeJSON(cmd.OutOrStdout(), verdict)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id whose history is the baseline")
	cmd.Flags().StringVar(&amount, "amount", "", "expense amount")
	cmd.Flags().StringVar(&category, "category", "", "expense category")
	cmd.Flags().StringVar(&date, "date", time.Now().Format(core.DateLayout), "expense date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newMakeAdminCmd(a *app) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "make-admin",
		Short: "Grant admin rights to a registered user",
		RunE: func(cmd *cobra.Command, args []string) error {
			users := services.NewUserService(a.repo, nil, nil)
			u, err := users.MakeAdmin(a.ctx(cmd), email)
			if errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("no user registered with %s", email)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now an admin\n", u.Name, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the user to promote")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
