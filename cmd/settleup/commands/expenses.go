package commands

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/ledger"
)

func (c *cli) expenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Record and list group expenses",
	}
	cmd.AddCommand(c.expenseAddCmd(), c.expenseListCmd())
	return cmd
}

// expense add <group> --payer <user> --amount <amount> [--split equal|percentage|custom]
func (c *cli) expenseAddCmd() *cobra.Command {
	var (
		payer        string
		amount       string
		split        string
		participants []string
		weights      []string
		description  string
	)
	cmd := &cobra.Command{
		Use:   "add <group>",
		Short: "Record an expense paid by one member",
		Long: `Record an expense paid by one member.

The equal split divides the amount among --participant (every member when
omitted). The percentage and custom splits take one --weight user=value per
participant: a percentage for the former, an owed amount for the latter.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			method, err := calculator.ParseSplitMethod(split)
			if err != nil {
				return err
			}
			total, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			payerID, err := c.resolveUser(ctx, payer)
			if err != nil {
				return err
			}
			participantIDs, err := c.resolveUsers(ctx, participants)
			if err != nil {
				return err
			}
			byRef, err := parseWeights(weights)
			if err != nil {
				return err
			}
			byID := make(map[string]decimal.Decimal, len(byRef))
			for ref, w := range byRef {
				id, err := c.resolveUser(ctx, ref)
				if err != nil {
					return err
				}
				byID[id] = w
			}

			expense, err := c.ledger.AddExpense(ctx, ledger.ExpenseInput{
				GroupID:      args[0],
				PayerID:      payerID,
				Amount:       total,
				Method:       method,
				Participants: participantIDs,
				Weights:      byID,
				Description:  description,
			})
			if err != nil {
				return err
			}

			names, err := c.ledger.DisplayNames(ctx, append(slices.Collect(maps.Keys(expense.Shares)), expense.PayerID))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Expense recorded")
			fmt.Fprintf(out, "  ID:      %s\n", expense.ID)
			fmt.Fprintf(out, "  Paid by: %s\n", names[expense.PayerID])
			fmt.Fprintf(out, "  Amount:  %s\n", expense.Amount.StringFixed(2))
			fmt.Fprintf(out, "  Split:   %s\n", expense.SplitMethod)
			fmt.Fprintln(out, "  Shares:")
			for _, id := range slices.Sorted(maps.Keys(expense.Shares)) {
				fmt.Fprintf(out, "    - %s: %s\n", names[id], expense.Shares[id].StringFixed(2))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&payer, "payer", "", "user ID or email of the member who paid")
	cmd.Flags().StringVar(&amount, "amount", "", "total amount paid")
	cmd.Flags().StringVar(&split, "split", string(calculator.SplitEqual), "split method: equal, percentage or custom")
	cmd.Flags().StringSliceVar(&participants, "participant", nil, "participant for the equal split (repeatable)")
	cmd.Flags().StringSliceVar(&weights, "weight", nil, "user=value for percentage and custom splits (repeatable)")
	cmd.Flags().StringVar(&description, "description", "", "what the expense was for")
	_ = cmd.MarkFlagRequired("payer")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (c *cli) expenseListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <group>",
		Short: "List a group's expenses in the order they were recorded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			group, err := c.ledger.GetGroup(ctx, args[0])
			if err != nil {
				return err
			}
			expenses, err := c.ledger.ListExpenses(ctx, group.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(expenses) == 0 {
				fmt.Fprintln(out, "No expenses recorded for this group.")
				return nil
			}

			ids := slices.Clone(group.Members)
			for _, e := range expenses {
				ids = append(ids, e.PayerID)
				ids = slices.AppendSeq(ids, maps.Keys(e.Shares))
			}
			slices.Sort(ids)
			names, err := c.ledger.DisplayNames(ctx, slices.Compact(ids))
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Expenses for %s\n", group.Name)
			for _, e := range expenses {
				fmt.Fprintf(out, "%s  %s paid %s (%s)", e.ID, names[e.PayerID], e.Amount.StringFixed(2), e.SplitMethod)
				if e.Description != "" {
					fmt.Fprintf(out, " %s", e.Description)
				}
				fmt.Fprintln(out)
				for _, id := range slices.Sorted(maps.Keys(e.Shares)) {
					fmt.Fprintf(out, "    - %s: %s\n", names[id], e.Shares[id].StringFixed(2))
				}
			}
			return nil
		},
	}
}

// parseWeights turns "user=value" pairs into a map keyed by the user reference.
func parseWeights(pairs []string) (map[string]decimal.Decimal, error) {
	weights := make(map[string]decimal.Decimal, len(pairs))
	for _, pair := range pairs {
		ref, value, ok := strings.Cut(pair, "=")
		ref = strings.TrimSpace(ref)
		if !ok || ref == "" {
			return nil, fmt.Errorf("invalid weight %q: want user=value", pair)
		}
		if _, dup := weights[ref]; dup {
			return nil, fmt.Errorf("duplicate weight for %s", ref)
		}
		w, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid weight %q: %w", pair, err)
		}
		weights[ref] = w
	}
	return weights, nil
}
